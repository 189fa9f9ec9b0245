package ovf

import (
	"github.com/beevik/etree"
	"github.com/glennmatthews/cot/errors"
)

// VirtualSystem wraps the descriptor's single VirtualSystem element. cot
// assumes one VirtualSystem per descriptor rather than a
// VirtualSystemCollection of several - the single-appliance case is the
// only one the retrieved reference tooling (original_source/COT) ever
// edits, and none of the sample descriptors in the corpus carry a
// collection, so supporting it was decided against as speculative
// generality (recorded as an Open Question decision).
type VirtualSystem struct {
	d  *Descriptor
	el *etree.Element
}

// VirtualSystem returns the descriptor's VirtualSystem handle. Returns
// NotFound if the descriptor has no VirtualSystem child, or Capability if
// it has a VirtualSystemCollection instead (unsupported; see the type doc
// comment).
func (d *Descriptor) VirtualSystem() (*VirtualSystem, error) {
	if d.envelope.SelectElement("VirtualSystemCollection") != nil {
		return nil, errors.New(errors.Capability,
			"descriptor uses VirtualSystemCollection, multi-VM OVF packages are not supported")
	}
	el := d.envelope.SelectElement("VirtualSystem")
	if el == nil {
		return nil, errors.New(errors.NotFound, "descriptor has no VirtualSystem element")
	}
	return &VirtualSystem{d: d, el: el}, nil
}

// EnsureVirtualSystem returns the existing VirtualSystem, or creates an
// empty one with the given id if none exists.
func (d *Descriptor) EnsureVirtualSystem(id string) (*VirtualSystem, error) {
	vs, err := d.VirtualSystem()
	if err == nil {
		return vs, nil
	}
	if !errors.Is(err, errors.NotFound) {
		return nil, err
	}
	el := etree.NewElement(d.qualify("VirtualSystem"))
	el.CreateAttr("ovf:id", id)
	d.envelope.InsertChildAt(len(d.envelope.ChildElements()), el)
	return &VirtualSystem{d: d, el: el}, nil
}

// ID returns the VirtualSystem's ovf:id attribute.
func (vs *VirtualSystem) ID() string {
	return vs.el.SelectAttrValue("ovf:id", vs.el.SelectAttrValue("id", ""))
}

// Element returns the underlying etree.Element, for callers that need
// direct etree access to the VirtualSystem's children.
func (vs *VirtualSystem) Element() *etree.Element {
	return vs.el
}

// virtualSystemChildOrder is the canonical child order within a
// VirtualSystem, used by VirtualHardwareSection/ProductSection to find
// their insertion point.
var virtualSystemChildOrder = []string{
	"Info",
	"Name",
	"OperatingSystemSection",
	"VirtualHardwareSection",
	"ProductSection",
	"EulaSection",
	"AnnotationSection",
}

// VirtualHardwareSection returns the VirtualSystem's VirtualHardwareSection
// element, creating an empty one if absent.
func (vs *VirtualSystem) VirtualHardwareSection() *etree.Element {
	if el := vs.el.SelectElement("VirtualHardwareSection"); el != nil {
		return el
	}
	el := etree.NewElement(qualifyWith(vs.d.prefix, "VirtualHardwareSection"))
	insertQualifiedChild(vs.el, el, "VirtualHardwareSection", virtualSystemChildOrder)
	return el
}

// Name returns the VirtualSystem's Name element text, if present.
func (vs *VirtualSystem) Name() *string {
	return optChildText(vs.el, "Name")
}

// SetName sets the VirtualSystem's Name element text.
func (vs *VirtualSystem) SetName(name string) {
	setOrCreateChildText(vs.el, vs.d.prefix, "Name", name, virtualSystemChildOrder)
}
