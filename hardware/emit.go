package hardware

import "github.com/beevik/etree"

// EmitOptions configures how Emit renders LogicalItems back into flat
// Item elements.
type EmitOptions struct {
	// ItemTag is the fully qualified tag to use for each emitted Item
	// element (e.g. "Item" or "ovf:Item", matching the descriptor's bound
	// prefix).
	ItemTag string
	// RASDPrefix qualifies each RASD child element (e.g. "rasd"); pass ""
	// for an unprefixed/default RASD namespace binding.
	RASDPrefix string
}

func (o EmitOptions) qualify(local string) string {
	if o.RASDPrefix == "" {
		return local
	}
	return o.RASDPrefix + ":" + local
}

// Emit renders items back into flat Item elements, per spec.md section
// 4.3.4: one Item per distinct profile-set ("shard") appearing across the
// item's attributes, carrying a configuration attribute listing that
// shard's profile IDs (omitted for the shard covering every profile).
func Emit(items []*LogicalItem, universe ProfileSet, opts EmitOptions) []*etree.Element {
	var out []*etree.Element
	for _, li := range items {
		for _, shard := range li.Shards(universe) {
			out = append(out, emitShard(li, shard, universe, opts))
		}
	}
	return out
}

func emitShard(li *LogicalItem, shard ProfileSet, universe ProfileSet, opts EmitOptions) *etree.Element {
	el := etree.NewElement(opts.ItemTag)
	if cfg := shard.ConfigurationAttr(universe); cfg != "" {
		el.CreateAttr("ovf:configuration", cfg)
	}

	// A shard's representative profile - any member works, since by
	// construction every attribute entry covering this shard resolves to
	// the same value for every profile in it.
	repProfile := representative(shard, universe)

	rt := etree.NewElement(opts.qualify("ResourceType"))
	rt.SetText(li.ResourceType)
	el.AddChild(rt)
	id := etree.NewElement(opts.qualify("InstanceID"))
	id.SetText(li.InstanceID)
	el.AddChild(id)

	for _, name := range li.AttributeNames() {
		value, ok := li.Get(name, repProfile)
		if !ok {
			continue
		}
		value = li.ReplaceWildcards(name, value, repProfile)
		child := etree.NewElement(opts.qualify(name))
		child.SetText(value)
		el.AddChild(child)
	}
	return el
}

// representative returns a profile belonging to shard, or "" if shard
// covers the universe and the universe is empty (single-profile
// descriptors with no DeploymentOptionSection at all).
func representative(shard ProfileSet, universe ProfileSet) string {
	for id := range shard {
		return id
	}
	for id := range universe {
		return id
	}
	return ""
}
