package hardware

import (
	"sort"

	"github.com/beevik/etree"
)

// itemAttrNames lists the RASD child element names the engine tracks per
// Item. Anything else on an Item element (vmw: extension elements,
// Address, HostResource, etc.) is carried through verbatim by emit.go
// rather than factored, since the spec's partitioning concern is the
// handful of attributes configuration profiles actually vary - trying to
// factor every possible RASD child would multiply bookkeeping for no
// client-visible benefit.
var itemAttrNames = []string{
	"ElementName",
	"Description",
	"ResourceSubType",
	"VirtualQuantity",
	"AllocationUnits",
	"Connection",
	"Address",
	"AddressOnParent",
	"Parent",
	"HostResource",
	"AutomaticAllocation",
	"Limit",
	"Reservation",
}

// attrValue returns el's attribute value for key, ignoring namespace
// prefix - Item attributes like "configuration" appear both bare and
// ovf-prefixed across the descriptors in the wild.
func attrValue(el *etree.Element, key string) (string, bool) {
	for _, a := range el.Attr {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}

func childElementText(el *etree.Element, name string) (string, bool) {
	child := el.SelectElement(name)
	if child == nil {
		return "", false
	}
	return child.Text(), true
}

// groupKey identifies a set of flat Items as representing the same
// logical hardware element, per spec.md section 4.3: "Two Items with the
// same InstanceID represent the same logical piece of hardware."
type groupKey struct {
	resourceType string
	instanceID   string
}

// Ingest groups the flat Item elements of a VirtualHardwareSection into
// LogicalItems, per spec.md section 4.3.2. universe is the full set of
// configuration profile IDs the descriptor declares; items with no
// configuration attribute at all contribute to universe minus the union
// of their siblings' explicit profile-sets.
func Ingest(items []*etree.Element, universe ProfileSet) []*LogicalItem {
	groups := make(map[groupKey][]*etree.Element)
	var order []groupKey
	for _, item := range items {
		rt, _ := childElementText(item, "ResourceType")
		id, _ := childElementText(item, "InstanceID")
		key := groupKey{resourceType: rt, instanceID: id}
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], item)
	}

	logicalItems := make([]*LogicalItem, 0, len(order))
	for _, key := range order {
		logicalItems = append(logicalItems, ingestGroup(key, groups[key], universe))
	}
	return logicalItems
}

func ingestGroup(key groupKey, items []*etree.Element, universe ProfileSet) *LogicalItem {
	li := NewLogicalItem(key.resourceType, key.instanceID)

	// Resolve each Item's effective profile-set first: explicit
	// configuration attribute, or universe minus the union of every
	// sibling's explicit set if absent.
	explicitUnion := NewProfileSet()
	for _, item := range items {
		if raw, ok := attrValue(item, "configuration"); ok {
			explicitUnion = explicitUnion.Union(ParseProfileSet(raw))
		}
	}
	profilesOf := make([]ProfileSet, len(items))
	for i, item := range items {
		if raw, ok := attrValue(item, "configuration"); ok {
			profilesOf[i] = ParseProfileSet(raw)
		} else {
			profilesOf[i] = universe.Difference(explicitUnion)
		}
	}

	for _, name := range itemAttrNames {
		var entries []valueEntry
		for i, item := range items {
			value, ok := childElementText(item, name)
			if !ok {
				continue
			}
			entries = append(entries, valueEntry{Value: value, Profiles: profilesOf[i]})
		}
		for _, e := range normalizeEntries(entries, universe) {
			li.ingestEntry(name, e.Value, e.Profiles)
		}
	}
	return li
}

// SortByInstanceID returns items sorted by numeric InstanceID ascending,
// the order VirtualHardwareSection conventionally presents Items in.
func SortByInstanceID(items []*LogicalItem) []*LogicalItem {
	out := make([]*LogicalItem, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool {
		return lessNatural(out[i].InstanceID, out[j].InstanceID)
	})
	return out
}
