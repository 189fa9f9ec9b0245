package resources

import (
	"github.com/glennmatthews/cot/errors"
	"github.com/glennmatthews/cot/ovf"
)

// AddFileRequest describes a file to add to a descriptor's References.
type AddFileRequest struct {
	ID   string
	Href string
	Size uint64
}

// AddFile creates a new File entry, or - if id already exists - replaces
// it after the caller's confirmation callback has approved doing so
// (spec.md section 4.4: "Replacing an existing file-id prompts
// confirmation"). confirmReplace is nil-safe: a nil confirmer refuses any
// replacement.
func AddFile(d *ovf.Descriptor, req AddFileRequest, confirmReplace func(existing ovf.File) bool) error {
	refs := d.References()
	if existing, exists := refs.FileByID(req.ID); exists {
		if confirmReplace == nil || !confirmReplace(existing) {
			return errors.New(errors.Conflict, "file id %q already exists and replacement was not confirmed", req.ID)
		}
		return refs.Replace(ovf.File{ID: req.ID, Href: req.Href, Size: req.Size})
	}
	return refs.Add(ovf.File{ID: req.ID, Href: req.Href, Size: req.Size})
}

// RemoveFile removes a File and any Disk referencing it, identified by
// fileID and/or href. Per spec.md section 4.4: it is an error if exactly
// one of fileID/href is given and matches no entry, or if both are given
// and they identify different entries.
func RemoveFile(d *ovf.Descriptor, fileID, href string) (ovf.File, error) {
	refs := d.References()
	var target ovf.File
	var found bool

	if fileID != "" {
		target, found = refs.FileByID(fileID)
		if !found {
			return ovf.File{}, errors.New(errors.NotFound, "no file with id %q", fileID)
		}
	}
	if href != "" {
		byHref, ok := findFileByHref(refs, href)
		if !ok {
			return ovf.File{}, errors.New(errors.NotFound, "no file with href %q", href)
		}
		if found && byHref.ID != target.ID {
			return ovf.File{}, errors.New(errors.InvalidInput,
				"file id %q and href %q refer to different files", fileID, href)
		}
		target, found = byHref, true
	}
	if !found {
		return ovf.File{}, errors.New(errors.InvalidInput, "one of file id or href is required")
	}

	if disks := d.DiskSection(); disks != nil {
		for _, disk := range disks.DisksReferencing(target.ID) {
			_, _ = disks.Remove(disk.DiskID)
		}
	}
	removed, err := refs.Remove(target.ID)
	return removed, err
}

func findFileByHref(refs *ovf.References, href string) (ovf.File, bool) {
	for _, f := range refs.Files() {
		if f.Href == href {
			return f, true
		}
	}
	return ovf.File{}, false
}
