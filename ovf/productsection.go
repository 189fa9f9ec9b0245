package ovf

import (
	"github.com/beevik/etree"
	"github.com/glennmatthews/cot/errors"
)

// Property is a single ovf:Property element inside ProductSection - the
// descriptor's mechanism for declaring deployment-time configuration
// inputs (spec.md section 3: "Environment property").
type Property struct {
	Key              string
	Type             *string
	Value            *string
	Password         bool
	UserConfigurable *bool
	Label            *string
	Description      *string
	// Qualifiers is the raw ovf:qualifiers string (e.g. "MaxLen(255)",
	// "ValueMap{1,2,3}") - parsed on demand by resources.ValidateAndCanonicalize
	// rather than here, so this package stays free of qualifier-grammar
	// knowledge.
	Qualifiers *string
}

func propertyFromElement(el *etree.Element) Property {
	p := Property{Key: el.SelectAttrValue("key", "")}
	p.Type = optAttr(el, "type")
	p.Value = optAttr(el, "value")
	p.Password = el.SelectAttrValue("password", "false") == "true"
	if uc := optAttr(el, "userConfigurable"); uc != nil {
		v := *uc == "true"
		p.UserConfigurable = &v
	}
	p.Qualifiers = optAttr(el, "qualifiers")
	p.Label = optChildText(el, "Label")
	p.Description = optChildText(el, "Description")
	return p
}

func (p Property) writeTo(el *etree.Element, prefix string) {
	el.CreateAttr("key", p.Key)
	setOptAttr(el, "type", p.Type)
	setOptAttr(el, "value", p.Value)
	if p.Password {
		el.CreateAttr("password", "true")
	} else {
		el.RemoveAttr("password")
	}
	if p.UserConfigurable != nil {
		if *p.UserConfigurable {
			el.CreateAttr("userConfigurable", "true")
		} else {
			el.CreateAttr("userConfigurable", "false")
		}
	} else {
		el.RemoveAttr("userConfigurable")
	}
	setOptAttr(el, "qualifiers", p.Qualifiers)
	if p.Label != nil {
		setOrCreateChildText(el, prefix, "Label", *p.Label, []string{"Label", "Description"})
	}
	if p.Description != nil {
		setOrCreateChildText(el, prefix, "Description", *p.Description, []string{"Label", "Description"})
	}
}

// ProductSection wraps a ProductSection element - either the single one
// nested in VirtualSystem (the common case cot's editor package targets)
// or, in principle, one per Configuration-qualified variant. Field
// selection mirrors github.com/vmware/govmomi/ovf.ProductSection.
type ProductSection struct {
	d  *Descriptor
	el *etree.Element
}

var productSectionChildOrder = []string{
	"Info", "Product", "Vendor", "Version", "FullVersion",
	"ProductUrl", "VendorUrl", "AppUrl", "Category", "Property",
}

// ProductSection returns the VirtualSystem's ProductSection, creating an
// empty one if absent.
func (vs *VirtualSystem) ProductSection() *ProductSection {
	el := vs.el.SelectElement("ProductSection")
	if el == nil {
		el = etree.NewElement(qualifyWith(vs.d.prefix, "ProductSection"))
		insertQualifiedChild(vs.el, el, "ProductSection", virtualSystemChildOrder)
	}
	return &ProductSection{d: vs.d, el: el}
}

// HasProductSection reports whether vs actually has a ProductSection,
// without creating one as a side effect.
func (vs *VirtualSystem) HasProductSection() bool {
	return vs.el.SelectElement("ProductSection") != nil
}

func (ps *ProductSection) simpleField(name string) *string {
	return optChildText(ps.el, name)
}

func (ps *ProductSection) setSimpleField(name, value string) {
	setOrCreateChildText(ps.el, ps.d.prefix, name, value, productSectionChildOrder)
}

// Product returns the Product element's text, if present.
func (ps *ProductSection) Product() *string { return ps.simpleField("Product") }

// SetProduct sets the Product element's text.
func (ps *ProductSection) SetProduct(v string) { ps.setSimpleField("Product", v) }

// Vendor returns the Vendor element's text, if present.
func (ps *ProductSection) Vendor() *string { return ps.simpleField("Vendor") }

// SetVendor sets the Vendor element's text.
func (ps *ProductSection) SetVendor(v string) { ps.setSimpleField("Vendor", v) }

// Version returns the Version element's text, if present.
func (ps *ProductSection) Version() *string { return ps.simpleField("Version") }

// SetVersion sets the Version element's text.
func (ps *ProductSection) SetVersion(v string) { ps.setSimpleField("Version", v) }

// FullVersion returns the FullVersion element's text, if present.
func (ps *ProductSection) FullVersion() *string { return ps.simpleField("FullVersion") }

// SetFullVersion sets the FullVersion element's text.
func (ps *ProductSection) SetFullVersion(v string) { ps.setSimpleField("FullVersion", v) }

// ProductURL returns the ProductUrl element's text, if present.
func (ps *ProductSection) ProductURL() *string { return ps.simpleField("ProductUrl") }

// SetProductURL sets the ProductUrl element's text.
func (ps *ProductSection) SetProductURL(v string) { ps.setSimpleField("ProductUrl", v) }

// VendorURL returns the VendorUrl element's text, if present.
func (ps *ProductSection) VendorURL() *string { return ps.simpleField("VendorUrl") }

// SetVendorURL sets the VendorUrl element's text.
func (ps *ProductSection) SetVendorURL(v string) { ps.setSimpleField("VendorUrl", v) }

// AppURL returns the AppUrl element's text, if present.
func (ps *ProductSection) AppURL() *string { return ps.simpleField("AppUrl") }

// SetAppURL sets the AppUrl element's text.
func (ps *ProductSection) SetAppURL(v string) { ps.setSimpleField("AppUrl", v) }

// Class returns the ProductSection's ovf:class attribute, used to
// distinguish multiple ProductSections under a single VirtualSystem.
func (ps *ProductSection) Class() *string { return optAttr(ps.el, "class") }

// SetClass sets the ProductSection's ovf:class attribute.
func (ps *ProductSection) SetClass(class string) { ps.el.CreateAttr("class", class) }

// Instance returns the ProductSection's ovf:instance attribute.
func (ps *ProductSection) Instance() *string { return optAttr(ps.el, "instance") }

// Properties returns every Property in document order.
func (ps *ProductSection) Properties() []Property {
	var out []Property
	for _, el := range ps.el.SelectElements("Property") {
		out = append(out, propertyFromElement(el))
	}
	return out
}

// PropertyByKey returns the Property with the given key, if present.
func (ps *ProductSection) PropertyByKey(key string) (Property, bool) {
	for _, p := range ps.Properties() {
		if p.Key == key {
			return p, true
		}
	}
	return Property{}, false
}

// SetProperty creates or updates a Property, preserving its document
// position if it already existed.
func (ps *ProductSection) SetProperty(p Property) {
	for _, el := range ps.el.SelectElements("Property") {
		if el.SelectAttrValue("key", "") == p.Key {
			p.writeTo(el, ps.d.prefix)
			return
		}
	}
	el := etree.NewElement(qualifyWith(ps.d.prefix, "Property"))
	p.writeTo(el, ps.d.prefix)
	insertQualifiedChild(ps.el, el, "Property", productSectionChildOrder)
}

// RemoveProperty deletes the Property with the given key. Returns NotFound
// if absent.
func (ps *ProductSection) RemoveProperty(key string) error {
	for _, el := range ps.el.SelectElements("Property") {
		if el.SelectAttrValue("key", "") == key {
			ps.el.RemoveChild(el)
			return nil
		}
	}
	return errors.New(errors.NotFound, "no property %q", key)
}
