// Package hardware implements the factorization engine: the translation
// between a flat list of VirtualHardwareSection Item elements and logical
// items whose attribute values vary per configuration profile. Grounded on
// original_source/COT/ovf/item.py's OVFItem class, with the Python
// "dict of dicts of profile-sets" reshaped into Go's explicit ProfileSet
// and LogicalItem types.
package hardware

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// ProfileSet is a set of configuration profile IDs. The zero value is the
// empty set. A ProfileSet that, once resolved against a descriptor's full
// profile universe, covers every profile is rendered as the OVF schema's
// implicit "no configuration attribute" case rather than spelled out -
// this package calls that condition IsUniverse rather than carrying a
// separate "ALL" sentinel value, since the set of profile IDs a
// descriptor declares can change as profiles are added or removed and a
// static sentinel would need to be re-resolved anyway.
type ProfileSet map[string]struct{}

// DefaultProfile is the implicit profile ID used internally when a
// descriptor has no DeploymentOptionSection at all - i.e. exactly one
// configuration exists and it has no name. Keeping a non-empty sentinel
// rather than using the literal empty ProfileSet as "the universe" means
// ProfileSet.Contains/Equals never need to special-case emptiness: a
// descriptor with no profiles behaves like one with exactly one profile,
// because it is.
const DefaultProfile = "\x00default"

// UniverseFrom builds the profile universe ProfileSet for a descriptor
// from its declared configuration profile IDs, falling back to
// DefaultProfile when none are declared.
func UniverseFrom(profileIDs []string) ProfileSet {
	if len(profileIDs) == 0 {
		return NewProfileSet(DefaultProfile)
	}
	return NewProfileSet(profileIDs...)
}

// NewProfileSet builds a ProfileSet from the given profile IDs.
func NewProfileSet(ids ...string) ProfileSet {
	s := make(ProfileSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Clone returns an independent copy of s.
func (s ProfileSet) Clone() ProfileSet {
	out := make(ProfileSet, len(s))
	for id := range s {
		out[id] = struct{}{}
	}
	return out
}

// Contains reports whether id is a member of s.
func (s ProfileSet) Contains(id string) bool {
	_, ok := s[id]
	return ok
}

// IsEmpty reports whether s has no members.
func (s ProfileSet) IsEmpty() bool {
	return len(s) == 0
}

// Union returns the set union of s and other, leaving both unmodified.
func (s ProfileSet) Union(other ProfileSet) ProfileSet {
	out := s.Clone()
	for id := range other {
		out[id] = struct{}{}
	}
	return out
}

// Intersect returns the set intersection of s and other.
func (s ProfileSet) Intersect(other ProfileSet) ProfileSet {
	out := make(ProfileSet)
	for id := range s {
		if other.Contains(id) {
			out[id] = struct{}{}
		}
	}
	return out
}

// Difference returns the members of s that are not in other.
func (s ProfileSet) Difference(other ProfileSet) ProfileSet {
	out := make(ProfileSet)
	for id := range s {
		if !other.Contains(id) {
			out[id] = struct{}{}
		}
	}
	return out
}

// Equals reports whether s and other contain exactly the same members.
func (s ProfileSet) Equals(other ProfileSet) bool {
	if len(s) != len(other) {
		return false
	}
	for id := range s {
		if !other.Contains(id) {
			return false
		}
	}
	return true
}

// IsUniverse reports whether s covers every profile in universe - the
// condition under which an emitted Item omits its configuration attribute
// entirely (spec.md section 4.3's "ALL" profile-set).
func (s ProfileSet) IsUniverse(universe ProfileSet) bool {
	return s.Equals(universe)
}

// SortedIDs returns s's members in natural sort order (numeric runs
// compare as numbers, so "profile10" sorts after "profile9"), grounded on
// original_source/COT/data_validation.py's natural_sort - used wherever a
// profile-set is rendered into a stable, deterministic string (the
// ovf:configuration attribute's space-separated profile list).
func (s ProfileSet) SortedIDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	naturalSort(ids)
	return ids
}

// ConfigurationAttr renders s as the space-separated ovf:configuration
// attribute value, or "" if s covers the full profile universe (in which
// case the attribute should be omitted rather than written empty).
func (s ProfileSet) ConfigurationAttr(universe ProfileSet) string {
	if s.IsUniverse(universe) {
		return ""
	}
	return strings.Join(s.SortedIDs(), " ")
}

// ParseProfileSet parses a space-separated ovf:configuration attribute
// value into a ProfileSet. An empty string parses to the empty set, not
// the universe - callers resolving an Item with no configuration
// attribute at all should use universe.Difference(unionOfSiblings)
// instead of calling this on "".
func ParseProfileSet(attr string) ProfileSet {
	fields := strings.Fields(attr)
	return NewProfileSet(fields...)
}

var naturalSortRunPattern = regexp.MustCompile(`([0-9]+)`)

// naturalSort sorts ids in place using the same "split into alternating
// text/number runs" comparison as the Python original.
func naturalSort(ids []string) {
	sort.SliceStable(ids, func(i, j int) bool {
		return lessNatural(ids[i], ids[j])
	})
}

func lessNatural(a, b string) bool {
	as := splitNatural(a)
	bs := splitNatural(b)
	for i := 0; i < len(as) && i < len(bs); i++ {
		an, aIsNum := as[i].num, as[i].isNum
		bn, bIsNum := bs[i].num, bs[i].isNum
		if aIsNum && bIsNum {
			if an != bn {
				return an < bn
			}
			continue
		}
		if as[i].text != bs[i].text {
			return as[i].text < bs[i].text
		}
	}
	return len(as) < len(bs)
}

type naturalToken struct {
	text  string
	num   int
	isNum bool
}

func splitNatural(s string) []naturalToken {
	var tokens []naturalToken
	parts := naturalSortRunPattern.Split(s, -1)
	nums := naturalSortRunPattern.FindAllString(s, -1)
	for i, part := range parts {
		if part != "" {
			tokens = append(tokens, naturalToken{text: part})
		}
		if i < len(nums) {
			if n, err := strconv.Atoi(nums[i]); err == nil {
				tokens = append(tokens, naturalToken{num: n, isNum: true})
			}
		}
	}
	return tokens
}
