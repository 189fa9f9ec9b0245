package ovf

import (
	"github.com/beevik/etree"
	"github.com/glennmatthews/cot/errors"
)

// Configuration is a single Configuration entry in the
// DeploymentOptionSection - a named configuration profile that Item
// elements elsewhere in the descriptor bind to via their
// ovf:configuration attribute. Field shape follows
// DeploymentOptionSection_Type.Configuration from the OVF schema.
type Configuration struct {
	ID          string
	Label       *string
	Description *string
	// Default marks this Configuration as the one applied when no
	// configuration is explicitly selected. At most one Configuration in a
	// section may have Default set (spec.md section 3's DeploymentOption
	// invariant).
	Default bool
}

func configurationFromElement(el *etree.Element) Configuration {
	c := Configuration{ID: el.SelectAttrValue("id", "")}
	c.Label = optChildText(el, "Label")
	c.Description = optChildText(el, "Description")
	c.Default = el.SelectAttrValue("default", "false") == "true"
	return c
}

func (c Configuration) writeTo(el *etree.Element, prefix string) {
	el.CreateAttr("id", c.ID)
	if c.Default {
		el.CreateAttr("default", "true")
	} else {
		el.RemoveAttr("default")
	}
	if c.Label != nil {
		setOrCreateChildText(el, prefix, "Label", *c.Label, []string{"Label", "Description"})
	}
	if c.Description != nil {
		setOrCreateChildText(el, prefix, "Description", *c.Description, []string{"Label", "Description"})
	}
}

// DeploymentOptionSection wraps the descriptor's DeploymentOptionSection -
// the profile catalog that hardware.ProfileSet values are drawn from
// (spec.md section 3: "Configuration profile").
type DeploymentOptionSection struct {
	d  *Descriptor
	el *etree.Element
}

// DeploymentOptionSection returns the section handle, creating an empty
// section if none exists yet.
func (d *Descriptor) DeploymentOptionSection() *DeploymentOptionSection {
	return &DeploymentOptionSection{d: d, el: d.section("DeploymentOptionSection", true, sectionOrder)}
}

// HasDeploymentOptionSection reports whether a DeploymentOptionSection is
// present in the document; a section created empty by the accessor above
// counts as present. Descriptors with no configuration profiles at all are
// legal (spec.md section 3: profile support is optional).
func (d *Descriptor) HasDeploymentOptionSection() bool {
	return d.envelope.SelectElement("DeploymentOptionSection") != nil
}

// Configurations returns every Configuration in document order.
func (s *DeploymentOptionSection) Configurations() []Configuration {
	var out []Configuration
	for _, el := range s.el.SelectElements("Configuration") {
		out = append(out, configurationFromElement(el))
	}
	return out
}

// ConfigurationByID returns the Configuration with the given id, if
// present.
func (s *DeploymentOptionSection) ConfigurationByID(id string) (Configuration, bool) {
	for _, c := range s.Configurations() {
		if c.ID == id {
			return c, true
		}
	}
	return Configuration{}, false
}

// Add appends a new Configuration. Returns Conflict if id is in use, and
// InvalidInput if c.Default is set while another Configuration is already
// the default - callers that want to promote a new default must first
// clear the old one with SetDefault.
func (s *DeploymentOptionSection) Add(c Configuration) error {
	if _, exists := s.ConfigurationByID(c.ID); exists {
		return errors.New(errors.Conflict, "configuration %q already exists", c.ID)
	}
	if c.Default {
		for _, existing := range s.Configurations() {
			if existing.Default {
				return errors.New(errors.InvalidInput,
					"configuration %q is already the default; clear it before adding another default", existing.ID)
			}
		}
	}
	el := etree.NewElement(qualifyWith(s.d.prefix, "Configuration"))
	c.writeTo(el, s.d.prefix)
	s.el.AddChild(el)
	return nil
}

// Remove deletes the Configuration with the given id. Returns NotFound if
// absent. Callers are responsible for first removing any Item bindings to
// this profile (hardware.Engine.RemoveProfile does this).
func (s *DeploymentOptionSection) Remove(id string) (Configuration, error) {
	for _, el := range s.el.SelectElements("Configuration") {
		if el.SelectAttrValue("id", "") == id {
			c := configurationFromElement(el)
			s.el.RemoveChild(el)
			return c, nil
		}
	}
	return Configuration{}, errors.New(errors.NotFound, "no configuration %q", id)
}

// SetDefault marks id as the default Configuration and clears the default
// flag on every other Configuration. Returns NotFound if id is absent.
func (s *DeploymentOptionSection) SetDefault(id string) error {
	if _, exists := s.ConfigurationByID(id); !exists {
		return errors.New(errors.NotFound, "no configuration %q", id)
	}
	for _, el := range s.el.SelectElements("Configuration") {
		if el.SelectAttrValue("id", "") == id {
			el.CreateAttr("default", "true")
		} else {
			el.RemoveAttr("default")
		}
	}
	return nil
}
