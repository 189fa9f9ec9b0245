package ovf

import (
	"github.com/beevik/etree"
	"github.com/glennmatthews/cot/errors"
)

// Network is a named network in the descriptor's NetworkSection, mapped by
// hardware.Item's Connection attribute values.
type Network struct {
	Name        string
	Description *string
}

func networkFromElement(el *etree.Element) Network {
	n := Network{Name: el.SelectAttrValue("name", "")}
	n.Description = optChildText(el, "Description")
	return n
}

func (n Network) writeTo(el *etree.Element, prefix string) {
	el.CreateAttr("name", n.Name)
	if n.Description != nil {
		setOrCreateChildText(el, prefix, "Description", *n.Description, nil)
	} else if d := el.SelectElement("Description"); d != nil {
		el.RemoveChild(d)
	}
}

// NetworkSection wraps the descriptor's NetworkSection (spec.md section 3:
// "Network resource").
type NetworkSection struct {
	d  *Descriptor
	el *etree.Element
}

// NetworkSection returns the NetworkSection handle, creating an empty
// section if none exists yet.
func (d *Descriptor) NetworkSection() *NetworkSection {
	return &NetworkSection{d: d, el: d.section("NetworkSection", true, sectionOrder)}
}

// Networks returns every Network in document order.
func (s *NetworkSection) Networks() []Network {
	var out []Network
	for _, el := range s.el.SelectElements("Network") {
		out = append(out, networkFromElement(el))
	}
	return out
}

// NetworkByName returns the Network with the given name, if present.
func (s *NetworkSection) NetworkByName(name string) (Network, bool) {
	for _, n := range s.Networks() {
		if n.Name == name {
			return n, true
		}
	}
	return Network{}, false
}

// Add appends a new Network. Returns Conflict if the name is in use.
func (s *NetworkSection) Add(n Network) error {
	if _, exists := s.NetworkByName(n.Name); exists {
		return errors.New(errors.Conflict, "network %q already exists in NetworkSection", n.Name)
	}
	el := etree.NewElement(qualifyWith(s.d.prefix, "Network"))
	n.writeTo(el, s.d.prefix)
	s.el.AddChild(el)
	return nil
}

// Remove deletes the Network with the given name. Returns NotFound if
// absent.
func (s *NetworkSection) Remove(name string) (Network, error) {
	for _, el := range s.el.SelectElements("Network") {
		if el.SelectAttrValue("name", "") == name {
			n := networkFromElement(el)
			s.el.RemoveChild(el)
			return n, nil
		}
	}
	return Network{}, errors.New(errors.NotFound, "no network named %q", name)
}

// Rename changes a Network's name in place, without disturbing its
// position or Description.
func (s *NetworkSection) Rename(oldName, newName string) error {
	if _, exists := s.NetworkByName(newName); exists {
		return errors.New(errors.Conflict, "network %q already exists in NetworkSection", newName)
	}
	for _, el := range s.el.SelectElements("Network") {
		if el.SelectAttrValue("name", "") == oldName {
			el.CreateAttr("name", newName)
			return nil
		}
	}
	return errors.New(errors.NotFound, "no network named %q", oldName)
}
