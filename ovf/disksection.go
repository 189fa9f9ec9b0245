package ovf

import (
	"strconv"

	"github.com/beevik/etree"
	"github.com/glennmatthews/cot/errors"
)

// Disk is a virtual disk description in the descriptor's DiskSection.
// Field shape mirrors github.com/vmware/govmomi/ovf.VirtualDiskDesc.
type Disk struct {
	DiskID                  string
	FileRef                 *string
	Capacity                string
	CapacityAllocationUnits *string
	Format                  *string
	PopulatedSize           *int64
	ParentRef               *string
}

func diskFromElement(el *etree.Element) Disk {
	d := Disk{
		DiskID:   el.SelectAttrValue("diskId", ""),
		Capacity: el.SelectAttrValue("capacity", ""),
	}
	d.FileRef = optAttr(el, "fileRef")
	d.CapacityAllocationUnits = optAttr(el, "capacityAllocationUnits")
	d.Format = optAttr(el, "format")
	d.ParentRef = optAttr(el, "parentRef")
	if ps := optAttr(el, "populatedSize"); ps != nil {
		if v, err := strconv.ParseInt(*ps, 10, 64); err == nil {
			d.PopulatedSize = &v
		}
	}
	return d
}

func (d Disk) writeTo(el *etree.Element) {
	el.CreateAttr("diskId", d.DiskID)
	el.CreateAttr("capacity", d.Capacity)
	setOptAttr(el, "fileRef", d.FileRef)
	setOptAttr(el, "capacityAllocationUnits", d.CapacityAllocationUnits)
	setOptAttr(el, "format", d.Format)
	setOptAttr(el, "parentRef", d.ParentRef)
	if d.PopulatedSize != nil {
		v := strconv.FormatInt(*d.PopulatedSize, 10)
		setOptAttr(el, "populatedSize", &v)
	} else {
		el.RemoveAttr("populatedSize")
	}
}

// DiskSection wraps the descriptor's DiskSection (spec.md section 3: "Disk
// resource").
type DiskSection struct {
	d  *Descriptor
	el *etree.Element
}

// DiskSection returns the DiskSection handle, creating an empty section if
// none exists yet.
func (d *Descriptor) DiskSection() *DiskSection {
	return &DiskSection{d: d, el: d.section("DiskSection", true, sectionOrder)}
}

// Disks returns every Disk in document order.
func (s *DiskSection) Disks() []Disk {
	var out []Disk
	for _, el := range s.el.SelectElements("Disk") {
		out = append(out, diskFromElement(el))
	}
	return out
}

// DiskByID returns the Disk with the given diskId, if present.
func (s *DiskSection) DiskByID(id string) (Disk, bool) {
	for _, d := range s.Disks() {
		if d.DiskID == id {
			return d, true
		}
	}
	return Disk{}, false
}

// Add appends a new Disk element. Returns Conflict if diskId is in use.
func (s *DiskSection) Add(disk Disk) error {
	if _, exists := s.DiskByID(disk.DiskID); exists {
		return errors.New(errors.Conflict, "disk id %q already exists in DiskSection", disk.DiskID)
	}
	el := etree.NewElement(qualifyWith(s.d.prefix, "Disk"))
	disk.writeTo(el)
	s.el.AddChild(el)
	return nil
}

// Remove deletes the Disk with the given diskId. Returns NotFound if
// absent.
func (s *DiskSection) Remove(id string) (Disk, error) {
	for _, el := range s.el.SelectElements("Disk") {
		if el.SelectAttrValue("diskId", "") == id {
			d := diskFromElement(el)
			s.el.RemoveChild(el)
			return d, nil
		}
	}
	return Disk{}, errors.New(errors.NotFound, "no disk with id %q", id)
}

// DisksReferencing returns every Disk whose FileRef points at the given
// file id - used to cascade a File removal onto its Disk (spec.md section
// 3's "removing a File with a referencing Disk removes or detaches the
// Disk accordingly").
func (s *DiskSection) DisksReferencing(fileID string) []Disk {
	var out []Disk
	for _, d := range s.Disks() {
		if d.FileRef != nil && *d.FileRef == fileID {
			out = append(out, d)
		}
	}
	return out
}
