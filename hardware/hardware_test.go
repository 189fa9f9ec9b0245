package hardware

import (
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileSetOperations(t *testing.T) {
	a := NewProfileSet("p1", "p2")
	b := NewProfileSet("p2", "p3")

	assert.True(t, a.Union(b).Equals(NewProfileSet("p1", "p2", "p3")))
	assert.True(t, a.Intersect(b).Equals(NewProfileSet("p2")))
	assert.True(t, a.Difference(b).Equals(NewProfileSet("p1")))
	assert.True(t, a.Union(b).IsUniverse(NewProfileSet("p1", "p2", "p3")))
	assert.False(t, a.IsUniverse(NewProfileSet("p1", "p2", "p3")))
}

func TestNaturalSort(t *testing.T) {
	s := NewProfileSet("p9", "p10", "p2")
	assert.Equal(t, []string{"p2", "p9", "p10"}, s.SortedIDs())
}

func TestLogicalItemSetMinimizesEntries(t *testing.T) {
	universe := NewProfileSet("small", "medium", "large")
	li := NewLogicalItem(ResourceTypeCPU, "1")

	li.Set("VirtualQuantity", "1", universe, universe)
	assert.Equal(t, []valueEntry{{Value: "1", Profiles: universe}}, li.attrs["VirtualQuantity"])

	li.Set("VirtualQuantity", "2", NewProfileSet("large"), universe)
	v, ok := li.Get("VirtualQuantity", "large")
	require.True(t, ok)
	assert.Equal(t, "2", v)
	v, ok = li.Get("VirtualQuantity", "small")
	require.True(t, ok)
	assert.Equal(t, "1", v)

	// Collapsing medium onto "2" as well should merge with large's entry.
	li.Set("VirtualQuantity", "2", NewProfileSet("medium"), universe)
	assert.Len(t, li.attrs["VirtualQuantity"], 2)

	// Setting every profile back to "1" should collapse to a single ALL entry.
	li.Set("VirtualQuantity", "1", universe, universe)
	require.Len(t, li.attrs["VirtualQuantity"], 1)
	assert.True(t, li.attrs["VirtualQuantity"][0].Profiles.IsUniverse(universe))
}

func TestShardsCoverUniverseWhenNoVariance(t *testing.T) {
	universe := NewProfileSet("a", "b")
	li := NewLogicalItem(ResourceTypeMemory, "2")
	li.Set("VirtualQuantity", "2048", universe, universe)

	shards := li.Shards(universe)
	require.Len(t, shards, 1)
	assert.True(t, shards[0].IsUniverse(universe))
}

func buildItem(tag string, configuration string, children map[string]string) *etree.Element {
	el := etree.NewElement(tag)
	if configuration != "" {
		el.CreateAttr("ovf:configuration", configuration)
	}
	for name, value := range children {
		child := etree.NewElement(name)
		child.SetText(value)
		el.AddChild(child)
	}
	return el
}

func TestIngestAndEmitRoundTrip(t *testing.T) {
	universe := NewProfileSet("small", "large")

	items := []*etree.Element{
		buildItem("Item", "small", map[string]string{
			"ResourceType": ResourceTypeMemory,
			"InstanceID":   "2",
			"VirtualQuantity": "1024",
		}),
		buildItem("Item", "large", map[string]string{
			"ResourceType": ResourceTypeMemory,
			"InstanceID":   "2",
			"VirtualQuantity": "4096",
		}),
	}

	logical := Ingest(items, universe)
	require.Len(t, logical, 1)
	li := logical[0]
	assert.Equal(t, ResourceTypeMemory, li.ResourceType)
	assert.Equal(t, "2", li.InstanceID)

	v, ok := li.Get("VirtualQuantity", "small")
	require.True(t, ok)
	assert.Equal(t, "1024", v)

	emitted := Emit(logical, universe, EmitOptions{ItemTag: "ovf:Item", RASDPrefix: "rasd"})
	assert.Len(t, emitted, 2)

	configs := map[string]bool{}
	for _, el := range emitted {
		cfg := el.SelectAttrValue("ovf:configuration", "")
		configs[cfg] = true
	}
	assert.True(t, configs["small"])
	assert.True(t, configs["large"])
}

func TestEngineSetCPUCount(t *testing.T) {
	universe := NewProfileSet(DefaultProfile)
	cpu := NewLogicalItem(ResourceTypeCPU, "1")
	cpu.Set("VirtualQuantity", "1", universe, universe)
	e := NewEngine([]*LogicalItem{cpu}, universe)

	require.NoError(t, e.SetCPUCount(universe, 4))
	v, ok := cpu.Get("VirtualQuantity", DefaultProfile)
	require.True(t, ok)
	assert.Equal(t, "4", v)
}

func TestEngineAddAndRemoveNIC(t *testing.T) {
	universe := NewProfileSet(DefaultProfile)
	e := NewEngine(nil, universe)

	nic := e.AddNIC(universe, "VM Network", NICDefaults{ResourceSubType: "E1000"})
	assert.Equal(t, ResourceTypeEthernet, nic.ResourceType)
	require.Len(t, e.NICs(), 1)

	require.NoError(t, e.RemoveNIC(nic.InstanceID))
	assert.Len(t, e.NICs(), 0)
}

func TestEngineSetNICCountGrows(t *testing.T) {
	universe := NewProfileSet(DefaultProfile)
	e := NewEngine(nil, universe)

	require.NoError(t, e.SetNICCount(universe, 3, "GigabitEthernet{1}", NICDefaults{ResourceSubType: "VMXNET3"}))
	assert.Len(t, e.NICs(), 3)

	conns := []string{}
	for _, nic := range e.NICs() {
		v, _ := nic.Get("Connection", DefaultProfile)
		conns = append(conns, v)
	}
	assert.Equal(t, []string{"GigabitEthernet1", "GigabitEthernet2", "GigabitEthernet3"}, conns)
}

func TestEngineDeleteAllOtherProfiles(t *testing.T) {
	universe := NewProfileSet("small", "large")
	cpu := NewLogicalItem(ResourceTypeCPU, "1")
	cpu.Set("VirtualQuantity", "1", NewProfileSet("small"), universe)
	cpu.Set("VirtualQuantity", "4", NewProfileSet("large"), universe)
	e := NewEngine([]*LogicalItem{cpu}, universe)

	require.NoError(t, e.DeleteAllOtherProfiles("large"))
	v, ok := cpu.Get("VirtualQuantity", "large")
	require.True(t, ok)
	assert.Equal(t, "4", v)
	assert.True(t, e.Universe.Equals(NewProfileSet("large")))
}

func TestWildcardRoundTrip(t *testing.T) {
	universe := NewProfileSet(DefaultProfile)
	nic := NewLogicalItem(ResourceTypeEthernet, "5")
	nic.Set("Connection", "GigabitEthernet1", universe, universe)

	raw := "Interface " + "GigabitEthernet1"
	withPlaceholder := nic.AddWildcards("ElementName", raw, DefaultProfile)
	assert.Contains(t, withPlaceholder, placeholderConnection)

	restored := nic.ReplaceWildcards("ElementName", withPlaceholder, DefaultProfile)
	assert.Equal(t, raw, restored)
}

func TestSequenceExpander(t *testing.T) {
	e := NewSequenceExpander()
	assert.Equal(t, "Ethernet0/10", e.Expand("Ethernet0/{10}"))
	assert.Equal(t, "Ethernet0/11", e.Expand("Ethernet0/{10}"))
	assert.Equal(t, "NoWildcard", e.Expand("NoWildcard"))
}
