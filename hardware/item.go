package hardware

import "sort"

// valueEntry is one (profile-set -> value) partition of an attribute's
// value space. Grounded on OVFItem.properties[name][value] = set(profiles)
// in original_source/COT/ovf/item.py, with the Python value->profiles
// dict reshaped into an ordered slice of entries so emission can iterate
// deterministically.
type valueEntry struct {
	Value    string
	Profiles ProfileSet
}

// LogicalItem is the factorization engine's unit of hardware: every flat
// Item XML element sharing a (ResourceType, InstanceID) is folded into one
// LogicalItem whose attributes hold a profile-partitioned value space
// (spec.md section 4.3.1).
type LogicalItem struct {
	ResourceType string
	InstanceID   string
	// attrs holds every other tracked attribute (including
	// ResourceSubType, e.g. E1000 vs VMXNET3 for Ethernet adapters) as a
	// profile-partitioned value list.
	attrs map[string][]valueEntry
}

// NewLogicalItem creates an empty LogicalItem for the given resource type
// and instance ID.
func NewLogicalItem(resourceType, instanceID string) *LogicalItem {
	return &LogicalItem{
		ResourceType: resourceType,
		InstanceID:   instanceID,
		attrs:        make(map[string][]valueEntry),
	}
}

// AttributeNames returns the names of every attribute this item has any
// value for, sorted for deterministic iteration.
func (li *LogicalItem) AttributeNames() []string {
	names := make([]string, 0, len(li.attrs))
	for name := range li.attrs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get resolves attribute name's value for the given profile. ok is false
// if no entry covers that profile (the attribute is entirely absent for
// this item under that profile).
func (li *LogicalItem) Get(name, profile string) (value string, ok bool) {
	for _, e := range li.attrs[name] {
		if e.Profiles.Contains(profile) {
			return e.Value, true
		}
	}
	return "", false
}

// ingestEntry records a raw (value, profile-set) partition read directly
// from the descriptor, bypassing the merge/normalize logic Set uses -
// ingest already guarantees disjointness across the Items being grouped,
// so no re-partitioning is needed here.
func (li *LogicalItem) ingestEntry(name, value string, profiles ProfileSet) {
	li.attrs[name] = append(li.attrs[name], valueEntry{Value: value, Profiles: profiles})
}

// Set applies the value_replace_wildcards partitioning algorithm
// (spec.md section 4.3.3) to attribute name: after Set returns, every
// profile in target resolves to value, every profile not in target keeps
// its prior value, and the entry set is minimized.
func (li *LogicalItem) Set(name, value string, target ProfileSet, universe ProfileSet) {
	existing := li.attrs[name]
	var next []valueEntry
	for _, e := range existing {
		remainder := e.Profiles.Difference(target)
		if !remainder.IsEmpty() {
			next = append(next, valueEntry{Value: e.Value, Profiles: remainder})
		}
	}
	if !target.IsEmpty() {
		next = append(next, valueEntry{Value: value, Profiles: target.Clone()})
	}
	li.attrs[name] = normalizeEntries(next, universe)
}

// normalizeEntries merges entries that share a value (union of their
// profile-sets) and collapses a single entry covering the full universe -
// step 3 of the value_replace_wildcards algorithm.
func normalizeEntries(entries []valueEntry, universe ProfileSet) []valueEntry {
	merged := make(map[string]ProfileSet)
	var order []string
	for _, e := range entries {
		if set, ok := merged[e.Value]; ok {
			merged[e.Value] = set.Union(e.Profiles)
		} else {
			merged[e.Value] = e.Profiles.Clone()
			order = append(order, e.Value)
		}
	}
	out := make([]valueEntry, 0, len(order))
	for _, v := range order {
		set := merged[v]
		if set.IsEmpty() {
			continue
		}
		out = append(out, valueEntry{Value: v, Profiles: set})
	}
	return out
}

// Shards returns the distinct profile-sets appearing across every
// attribute of li - the partitions spec.md section 4.3.4 says emission
// produces one Item XML element per shard.
func (li *LogicalItem) Shards(universe ProfileSet) []ProfileSet {
	var shards []ProfileSet
	seen := func(s ProfileSet) bool {
		for _, existing := range shards {
			if existing.Equals(s) {
				return true
			}
		}
		return false
	}
	for _, entries := range li.attrs {
		for _, e := range entries {
			if !seen(e.Profiles) {
				shards = append(shards, e.Profiles)
			}
		}
	}
	if len(shards) == 0 {
		shards = []ProfileSet{universe.Clone()}
	}
	sort.Slice(shards, func(i, j int) bool {
		return shards[i].ConfigurationAttr(universe) < shards[j].ConfigurationAttr(universe)
	})
	return shards
}

// AddProfile clones every attribute value that the source profile
// currently resolves to onto the new profile - grounded on
// OVFItem.add_profile in original_source/COT/ovf/item.py, which clones an
// existing profile's entries onto a newly-declared configuration profile
// so it starts out identical to its template rather than undefined.
func (li *LogicalItem) AddProfile(newProfile, sourceProfile string, universe ProfileSet) {
	target := NewProfileSet(newProfile)
	for name, entries := range li.attrs {
		for _, e := range entries {
			if e.Profiles.Contains(sourceProfile) {
				li.Set(name, e.Value, target, universe)
				break
			}
		}
	}
}

// RemoveProfile strips profile from every attribute's profile-sets,
// folding any profile-set that becomes the full remaining universe back
// into coverage of the now-smaller universe. Grounded on
// OVFItem.remove_profile in original_source/COT/ovf/item.py.
func (li *LogicalItem) RemoveProfile(profile string, oldUniverse, newUniverse ProfileSet) {
	removed := NewProfileSet(profile)
	for name, entries := range li.attrs {
		var next []valueEntry
		for _, e := range entries {
			remainder := e.Profiles.Difference(removed)
			if !remainder.IsEmpty() {
				next = append(next, valueEntry{Value: e.Value, Profiles: remainder})
			}
		}
		li.attrs[name] = normalizeEntries(next, newUniverse)
	}
}

// RestrictToProfile drops every attribute-map entry that does not cover
// profile, then relabels the remaining (profile-covering) entry as
// covering the full universe - the per-item half of "delete all other
// profiles" (spec.md section 4.3.5).
func (li *LogicalItem) RestrictToProfile(profile string, universe ProfileSet) {
	for name, entries := range li.attrs {
		var kept *valueEntry
		for i := range entries {
			if entries[i].Profiles.Contains(profile) {
				kept = &entries[i]
				break
			}
		}
		if kept == nil {
			li.attrs[name] = nil
			continue
		}
		li.attrs[name] = []valueEntry{{Value: kept.Value, Profiles: universe.Clone()}}
	}
}

// Clone returns a deep copy of li.
func (li *LogicalItem) Clone() *LogicalItem {
	out := NewLogicalItem(li.ResourceType, li.InstanceID)
	for name, entries := range li.attrs {
		cloned := make([]valueEntry, len(entries))
		for i, e := range entries {
			cloned[i] = valueEntry{Value: e.Value, Profiles: e.Profiles.Clone()}
		}
		out.attrs[name] = cloned
	}
	return out
}
