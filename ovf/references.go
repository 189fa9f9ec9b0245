package ovf

import (
	"strconv"

	"github.com/beevik/etree"
	"github.com/glennmatthews/cot/errors"
)

// File is a file reference in the descriptor's References section.
// Field shape mirrors github.com/vmware/govmomi/ovf.File.
type File struct {
	ID          string
	Href        string
	Size        uint64
	Compression *string
	ChunkSize   *int
}

func fileFromElement(el *etree.Element) File {
	f := File{
		ID:   el.SelectAttrValue("id", ""),
		Href: el.SelectAttrValue("href", ""),
	}
	if sizeStr := el.SelectAttrValue("size", ""); sizeStr != "" {
		if v, err := strconv.ParseUint(sizeStr, 10, 64); err == nil {
			f.Size = v
		}
	}
	f.Compression = optAttr(el, "compression")
	if cs := optAttr(el, "chunkSize"); cs != nil {
		if v, err := strconv.Atoi(*cs); err == nil {
			f.ChunkSize = &v
		}
	}
	return f
}

func (f File) writeTo(el *etree.Element) {
	el.CreateAttr("id", f.ID)
	el.CreateAttr("href", f.Href)
	el.CreateAttr("size", strconv.FormatUint(f.Size, 10))
	setOptAttr(el, "compression", f.Compression)
	if f.ChunkSize != nil {
		v := strconv.Itoa(*f.ChunkSize)
		setOptAttr(el, "chunkSize", &v)
	} else {
		el.RemoveAttr("chunkSize")
	}
}

// References wraps the descriptor's References section (spec.md section 3:
// "File resource").
type References struct {
	d  *Descriptor
	el *etree.Element
}

// References returns the References section handle, creating an empty
// section if none exists yet.
func (d *Descriptor) References() *References {
	return &References{d: d, el: d.section("References", true, sectionOrder)}
}

// Files returns every File currently in the References section, in
// document order.
func (r *References) Files() []File {
	var out []File
	for _, el := range r.el.SelectElements("File") {
		out = append(out, fileFromElement(el))
	}
	return out
}

// FileByID returns the File with the given id, if present.
func (r *References) FileByID(id string) (File, bool) {
	for _, f := range r.Files() {
		if f.ID == id {
			return f, true
		}
	}
	return File{}, false
}

// Add appends a new File element. Returns a Conflict error if id is
// already in use (spec.md section 4.4: "Replacing an existing file-id
// prompts confirmation" - callers wanting replace-on-conflict should call
// Remove first).
func (r *References) Add(f File) error {
	if _, exists := r.FileByID(f.ID); exists {
		return errors.New(errors.Conflict, "file id %q already exists in References", f.ID)
	}
	el := etree.NewElement(qualifyWith(r.d.prefix, "File"))
	f.writeTo(el)
	r.el.AddChild(el)
	return nil
}

// Remove deletes the File with the given id. Returns NotFound if absent.
func (r *References) Remove(id string) (File, error) {
	for _, el := range r.el.SelectElements("File") {
		if el.SelectAttrValue("id", "") == id {
			f := fileFromElement(el)
			r.el.RemoveChild(el)
			return f, nil
		}
	}
	return File{}, errors.New(errors.NotFound, "no file with id %q", id)
}

// Replace overwrites the File with the given id in place, preserving
// document position (spec.md section 4.1's replace-rather-than-add rule
// for add-disk onto an existing file-id).
func (r *References) Replace(f File) error {
	for _, el := range r.el.SelectElements("File") {
		if el.SelectAttrValue("id", "") == f.ID {
			f.writeTo(el)
			return nil
		}
	}
	return errors.New(errors.NotFound, "no file with id %q", f.ID)
}
