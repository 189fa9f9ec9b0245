package editor

import (
	"github.com/glennmatthews/cot/ovf"
	"github.com/glennmatthews/cot/ovfpkg"
	"github.com/glennmatthews/cot/resources"
)

// AddFileRequest describes a file to add or replace in the package's
// References section (spec.md section 4.4). SourcePath is the on-disk file
// to copy in on Save; the package's own copy is left untouched until then.
type AddFileRequest struct {
	ID         string
	Href       string
	SourcePath string
	Size       uint64
}

// AddFile registers req's file in the descriptor, prompting via the
// session for confirmation if it replaces an existing file-id, and records
// req's local source so Save copies it into the output package.
func (e *Editor) AddFile(req AddFileRequest) error {
	confirmReplace := func(existing ovf.File) bool {
		return e.sess.Warn("file id %q already references %q; replace with %q?", req.ID, existing.Href, req.Href)
	}
	if err := resources.AddFile(e.d, resources.AddFileRequest{ID: req.ID, Href: req.Href, Size: req.Size}, confirmReplace); err != nil {
		return err
	}
	e.pendingMembers[req.Href] = ovfpkg.MemberSource{Name: req.Href, SourcePath: req.SourcePath}
	return nil
}
