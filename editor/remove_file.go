package editor

import (
	"github.com/glennmatthews/cot/ovf"
	"github.com/glennmatthews/cot/resources"
)

// RemoveFile removes the File (and any Disk referencing it) identified by
// fileID and/or href, per spec.md section 4.4.
func (e *Editor) RemoveFile(fileID, href string) (ovf.File, error) {
	removed, err := resources.RemoveFile(e.d, fileID, href)
	if err != nil {
		return ovf.File{}, err
	}
	delete(e.pendingMembers, removed.Href)
	return removed, nil
}
