// Package ovf implements the OVF descriptor model: a typed, editable
// in-memory representation of the descriptor XML, grounded on the shape of
// github.com/vmware/govmomi/ovf's Envelope/VirtualSystem/ProductSection
// structs (vendor/github.com/vmware/govmomi/ovf/envelope.go in the
// retrieval pack) but backed by github.com/beevik/etree rather than
// encoding/xml structs, so that elements and attributes this package does
// not know about round-trip untouched - spec.md section 1's "no editing of
// XML beyond the recognized sections" and section 4.2's "unknown elements
// are preserved" requirements are not expressible with plain struct tags,
// since encoding/xml has no notion of "the rest of the document, in
// order."
package ovf

import (
	"fmt"

	"github.com/beevik/etree"
	"github.com/glennmatthews/cot/errors"
)

// Descriptor is the parsed OVF XML tree plus the strongly-typed section
// handles spec.md section 3 describes. Mutation goes through the typed
// handles, which write back into the same etree.Element the Descriptor
// holds, so unknown siblings are never disturbed.
type Descriptor struct {
	doc      *etree.Document
	envelope *etree.Element
	version  Version
	// prefix is the namespace prefix bound to the envelope namespace in
	// this document ("" for a default/unprefixed namespace). New elements
	// this package creates reuse it so output stays self-consistent.
	prefix string
}

// qualify returns localTag prefixed for element creation, matching this
// descriptor's envelope namespace prefix convention.
func (d *Descriptor) qualify(localTag string) string {
	if d.prefix == "" {
		return localTag
	}
	return d.prefix + ":" + localTag
}

// Parse parses an OVF descriptor from bytes. Namespace-aware: the OVF
// namespace URI on the root Envelope element determines the Version
// (spec.md section 4.2).
func Parse(data []byte) (*Descriptor, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, errors.Wrap(errors.InvalidInput, err, "malformed OVF descriptor XML")
	}
	root := doc.Root()
	if root == nil || root.Tag != "Envelope" {
		return nil, errors.New(errors.InvalidInput, "descriptor has no Envelope root element")
	}
	version, prefix := detectVersion(root)
	if version == VersionUnknown {
		return nil, errors.New(errors.InvalidInput, "unrecognized or missing OVF envelope namespace")
	}
	return &Descriptor{doc: doc, envelope: root, version: version, prefix: prefix}, nil
}

// Serialize renders the descriptor back to bytes. Canonical section order
// is maintained incrementally as edits are applied, rather than by a
// global reordering pass at serialization time. Attributes are not
// reordered: existing ones keep their position and ones added by an edit
// follow them. The whole document is re-indented (two spaces per level)
// before writing, so whitespace between elements, including in untouched
// sections, is not preserved byte for byte.
func (d *Descriptor) Serialize() ([]byte, error) {
	d.doc.Indent(2)
	b, err := d.doc.WriteToBytes()
	if err != nil {
		return nil, errors.Wrap(errors.Internal, err, "serializing OVF descriptor")
	}
	return b, nil
}

// Version returns the OVF specification version this descriptor was
// parsed as, or that a newly-built descriptor will be emitted as.
func (d *Descriptor) Version() Version {
	return d.version
}

// Envelope returns the root Envelope element, for callers (such as the
// editor package) that need direct etree access.
func (d *Descriptor) Envelope() *etree.Element {
	return d.envelope
}

// Prefix returns the namespace prefix bound to the OVF envelope namespace
// in this document.
func (d *Descriptor) Prefix() string {
	return d.prefix
}

// section returns the Envelope's direct child with the given local tag,
// creating and inserting it at the canonical position if create is true
// and it does not already exist. order lists every recognized section's
// local tag in OVF-schema order, used to find the correct insertion point.
func (d *Descriptor) section(localTag string, create bool, order []string) *etree.Element {
	if el := d.envelope.SelectElement(localTag); el != nil {
		return el
	}
	if !create {
		return nil
	}
	el := etree.NewElement(d.qualify(localTag))
	insertAt := len(d.envelope.ChildElements())
	myIdx := indexOf(order, localTag)
	for i, sibling := range d.envelope.ChildElements() {
		if idx := indexOf(order, localSibling(sibling)); idx >= 0 && idx > myIdx {
			insertAt = i
			break
		}
	}
	d.envelope.InsertChildAt(insertAt, el)
	return el
}

func localSibling(el *etree.Element) string {
	return el.Tag
}

func indexOf(order []string, tag string) int {
	for i, t := range order {
		if t == tag {
			return i
		}
	}
	return -1
}

// sectionOrder is the canonical child order of Envelope per the OVF
// schema: References, then package-level metadata sections, then
// VirtualSystem/VirtualSystemCollection.
var sectionOrder = []string{
	"References",
	"AnnotationSection",
	"ProductSection",
	"NetworkSection",
	"DiskSection",
	"OperatingSystemSection",
	"EulaSection",
	"VirtualHardwareSection",
	"ResourceAllocationSection",
	"DeploymentOptionSection",
	"VirtualSystem",
}

// String implements fmt.Stringer for debugging/log messages.
func (d *Descriptor) String() string {
	return fmt.Sprintf("OVF descriptor (version %s)", d.version)
}
