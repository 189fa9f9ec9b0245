package ovf

import "github.com/beevik/etree"

// setOrCreateChildText sets the text of el's first child with local tag
// name to value, creating it (qualified with prefix) if absent and
// inserting it at the position implied by order (a list of local tags in
// schema order). An empty order leaves new children appended at the end.
// Grounded on COT.xml_file.XML.set_or_make_child's "create-or-update,
// respecting a known child ordering" behavior (original_source/COT/ovf/item.py).
func setOrCreateChildText(el *etree.Element, prefix, name, value string, order []string) *etree.Element {
	child := el.SelectElement(name)
	if child == nil {
		child = etree.NewElement(qualifyWith(prefix, name))
		insertQualifiedChild(el, child, name, order)
	}
	child.SetText(value)
	return child
}

func qualifyWith(prefix, local string) string {
	if prefix == "" {
		return local
	}
	return prefix + ":" + local
}

// insertQualifiedChild inserts child into parent at the position implied
// by order, appending at the end if name is not present in order or no
// later sibling is found.
func insertQualifiedChild(parent, child *etree.Element, name string, order []string) {
	myIdx := indexOf(order, name)
	if myIdx < 0 {
		parent.AddChild(child)
		return
	}
	for i, sibling := range parent.ChildElements() {
		if idx := indexOf(order, sibling.Tag); idx >= 0 && idx > myIdx {
			parent.InsertChildAt(i, child)
			return
		}
	}
	parent.AddChild(child)
}

// childText returns the text of el's first child with the given local
// tag, and whether it was present.
func childText(el *etree.Element, name string) (string, bool) {
	child := el.SelectElement(name)
	if child == nil {
		return "", false
	}
	return child.Text(), true
}

// optChildText returns a *string for an optional child element, nil if
// absent - mirroring govmomi/ovf's use of pointer fields for optional
// attributes and elements.
func optChildText(el *etree.Element, name string) *string {
	if v, ok := childText(el, name); ok {
		return &v
	}
	return nil
}

// optAttr returns a *string for an optional attribute, nil if absent.
func optAttr(el *etree.Element, key string) *string {
	if a := el.SelectAttr(key); a != nil {
		v := a.Value
		return &v
	}
	return nil
}

// setOptAttr sets key to *value if non-nil, else removes it.
func setOptAttr(el *etree.Element, key string, value *string) {
	if value == nil {
		el.RemoveAttr(key)
		return
	}
	el.CreateAttr(key, *value)
}
