package hardware

import (
	"regexp"
	"strconv"
	"strings"
)

// Dependency placeholders ElementName/Description values may carry, so
// that changing VirtualQuantity/ResourceSubType/Connection/ElementName
// regenerates any text that referenced the old value. Grounded on
// OVFItem.value_add_wildcards/value_replace_wildcards in
// original_source/COT/ovf/item.py.
const (
	placeholderVirtualQuantity  = "_VQ_"
	placeholderResourceSubType  = "_RST_"
	placeholderConnection       = "_CONN_"
	placeholderElementName      = "_EN_"
)

// AddWildcards scans value (about to be stored under name for the given
// profile) for substrings matching this item's current VirtualQuantity,
// ResourceSubType, Connection (when name is ElementName or Description) or
// ElementName (when name is Description), and replaces them with the
// matching placeholder token. This is the write-time half of the
// dependency-wildcard mechanism: later changes to the referenced attribute
// propagate into value without the caller re-editing it explicitly.
func (li *LogicalItem) AddWildcards(name, value, profile string) string {
	if name != "ElementName" && name != "Description" {
		return value
	}
	if vq, ok := li.Get("VirtualQuantity", profile); ok && vq != "" {
		value = replaceLiteral(value, vq, placeholderVirtualQuantity)
	}
	if rst, ok := li.Get("ResourceSubType", profile); ok && rst != "" {
		value = replaceLiteral(value, rst, placeholderResourceSubType)
	}
	if conn, ok := li.Get("Connection", profile); ok && conn != "" {
		value = replaceLiteral(value, conn, placeholderConnection)
	}
	if name == "Description" {
		if en, ok := li.Get("ElementName", profile); ok && en != "" {
			value = replaceLiteral(value, en, placeholderElementName)
		}
	}
	return value
}

// ReplaceWildcards is the read-time/emit-time inverse of AddWildcards: it
// substitutes each placeholder token in value with the item's current
// value for the attribute it stands in for, under the given profile.
func (li *LogicalItem) ReplaceWildcards(name, value, profile string) string {
	if value == "" || (name != "ElementName" && name != "Description") {
		return value
	}
	if rst, ok := li.Get("ResourceSubType", profile); ok {
		value = strings.ReplaceAll(value, placeholderResourceSubType, rst)
	}
	if vq, ok := li.Get("VirtualQuantity", profile); ok {
		value = strings.ReplaceAll(value, placeholderVirtualQuantity, vq)
	}
	if conn, ok := li.Get("Connection", profile); ok {
		value = strings.ReplaceAll(value, placeholderConnection, conn)
	}
	if name == "Description" {
		if en, ok := li.Get("ElementName", profile); ok {
			value = strings.ReplaceAll(value, placeholderElementName, en)
		}
	}
	return value
}

func replaceLiteral(haystack, literal, placeholder string) string {
	if literal == "" {
		return haystack
	}
	return strings.ReplaceAll(haystack, literal, placeholder)
}

// numericWildcardPattern matches a literal "{N}" sequence wildcard such as
// the NIC naming pattern "Ethernet0/{10}" (spec.md section 4.3.3).
var numericWildcardPattern = regexp.MustCompile(`\{(\d+)\}`)

// SequenceExpander substitutes {N} numeric-sequence wildcards across a
// batch of values sharing the same template, incrementing a per-template
// counter that starts at the integer the template's braces contained.
// Used when emitting multiple new items from one templated name (e.g.
// naming several newly-added NICs "Ethernet0/{10}" -> "Ethernet0/10",
// "Ethernet0/11", ...).
type SequenceExpander struct {
	counters map[string]int
}

// NewSequenceExpander returns an expander with no counters seeded yet.
func NewSequenceExpander() *SequenceExpander {
	return &SequenceExpander{counters: make(map[string]int)}
}

// Expand substitutes template's {N} wildcard, if any, with the next value
// in that template's sequence, and returns the result. Templates without
// a {N} wildcard are returned unchanged every time.
func (e *SequenceExpander) Expand(template string) string {
	match := numericWildcardPattern.FindStringSubmatchIndex(template)
	if match == nil {
		return template
	}
	start, end := match[0], match[1]
	capStart, capEnd := match[2], match[3]
	seed, _ := strconv.Atoi(template[capStart:capEnd])

	n, seen := e.counters[template]
	if !seen {
		n = seed
	}
	e.counters[template] = n + 1

	return template[:start] + strconv.Itoa(n) + template[end:]
}
