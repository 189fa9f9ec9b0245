package hardware

import (
	"strconv"

	"github.com/glennmatthews/cot/errors"
)

// Engine holds the full set of LogicalItems ingested from one
// VirtualHardwareSection plus the profile universe they are partitioned
// against, and exposes the high-level edit operations spec.md section
// 4.3.5 describes. Everything below operates purely on LogicalItems; the
// XML-level wiring (reading Items in, writing Items back out, touching
// References/DiskSection/NetworkSection) lives in the resources and
// editor packages, which hold the ovf.Descriptor this Engine's results
// get serialized back into.
type Engine struct {
	Items    []*LogicalItem
	Universe ProfileSet
}

// NewEngine wraps an already-ingested item list.
func NewEngine(items []*LogicalItem, universe ProfileSet) *Engine {
	return &Engine{Items: items, Universe: universe}
}

// ByResourceType returns every item of the given resource type, sorted by
// InstanceID.
func (e *Engine) ByResourceType(resourceType string) []*LogicalItem {
	var out []*LogicalItem
	for _, li := range e.Items {
		if li.ResourceType == resourceType {
			out = append(out, li)
		}
	}
	return SortByInstanceID(out)
}

// MaxInstanceID returns the highest numeric InstanceID in use, or 0 if
// there are no items yet.
func (e *Engine) MaxInstanceID() int {
	max := 0
	for _, li := range e.Items {
		if n, err := strconv.Atoi(li.InstanceID); err == nil && n > max {
			max = n
		}
	}
	return max
}

// AllocateInstanceID returns a new InstanceID strictly greater than every
// InstanceID currently in use (spec.md section 4.3.5: "New items'
// InstanceIDs must be strictly greater than all existing InstanceIDs").
func (e *Engine) AllocateInstanceID() string {
	return strconv.Itoa(e.MaxInstanceID() + 1)
}

// soleItem returns the single item of the given resource type, erroring
// if there is not exactly one - the shape CPU and Memory always take.
func (e *Engine) soleItem(resourceType, label string) (*LogicalItem, error) {
	items := e.ByResourceType(resourceType)
	switch len(items) {
	case 0:
		return nil, errors.New(errors.NotFound, "no %s item present", label)
	case 1:
		return items[0], nil
	default:
		return nil, errors.New(errors.Internal, "descriptor has %d %s items, expected exactly 1", len(items), label)
	}
}

// SetCPUCount sets the VirtualQuantity of the CPU item for the given
// profile-set.
func (e *Engine) SetCPUCount(profiles ProfileSet, count int) error {
	item, err := e.soleItem(ResourceTypeCPU, "CPU")
	if err != nil {
		return err
	}
	item.Set("VirtualQuantity", strconv.Itoa(count), profiles, e.Universe)
	return nil
}

// SetMemoryMB sets the VirtualQuantity of the Memory item (in megabytes,
// matching rasd:AllocationUnits="byte * 2^20") for the given profile-set.
func (e *Engine) SetMemoryMB(profiles ProfileSet, mb int) error {
	item, err := e.soleItem(ResourceTypeMemory, "memory")
	if err != nil {
		return err
	}
	item.Set("VirtualQuantity", strconv.Itoa(mb), profiles, e.Universe)
	return nil
}

// NICDefaults supplies the attribute values a newly-created NIC item
// should start with, sourced from Platform when no sibling NIC exists to
// clone.
type NICDefaults struct {
	ResourceSubType string
	AllocationUnits string
}

// NICs returns every Ethernet adapter item, sorted by InstanceID.
func (e *Engine) NICs() []*LogicalItem {
	return e.ByResourceType(ResourceTypeEthernet)
}

// AddNIC creates a new Ethernet adapter item, cloning attribute values
// (other than identity and naming) from an existing NIC if one exists,
// or from defaults otherwise, per spec.md section 4.3.5.
func (e *Engine) AddNIC(profiles ProfileSet, connection string, defaults NICDefaults) *LogicalItem {
	id := e.AllocateInstanceID()
	item := NewLogicalItem(ResourceTypeEthernet, id)

	existing := e.NICs()
	if len(existing) > 0 {
		template := existing[len(existing)-1]
		for _, name := range []string{"ResourceSubType", "AllocationUnits", "AutomaticAllocation"} {
			rep := representative(profiles, e.Universe)
			if v, ok := template.Get(name, rep); ok {
				item.Set(name, v, e.Universe, e.Universe)
			}
		}
	} else {
		item.Set("ResourceSubType", defaults.ResourceSubType, e.Universe, e.Universe)
		if defaults.AllocationUnits != "" {
			item.Set("AllocationUnits", defaults.AllocationUnits, e.Universe, e.Universe)
		}
	}
	item.Set("Connection", connection, profiles, e.Universe)
	e.Items = append(e.Items, item)
	return item
}

// RemoveNIC deletes the Ethernet adapter item with the given InstanceID.
func (e *Engine) RemoveNIC(instanceID string) error {
	return e.removeByInstanceID(ResourceTypeEthernet, instanceID)
}

func (e *Engine) removeByInstanceID(resourceType, instanceID string) error {
	for i, li := range e.Items {
		if li.ResourceType == resourceType && li.InstanceID == instanceID {
			e.Items = append(e.Items[:i], e.Items[i+1:]...)
			return nil
		}
	}
	return errors.New(errors.NotFound, "no %s item with instance id %q", resourceType, instanceID)
}

// SetNICCount grows or shrinks the NIC list to the requested count for
// every profile in profiles, adding new NICs via AddNIC (named using
// nameTemplate, a {N} sequence wildcard expanded per new NIC) or removing
// the highest-InstanceID NICs first when shrinking.
func (e *Engine) SetNICCount(profiles ProfileSet, count int, nameTemplate string, defaults NICDefaults) error {
	current := e.NICs()
	if count < 0 {
		return errors.New(errors.InvalidInput, "NIC count must not be negative")
	}
	expander := NewSequenceExpander()
	for len(current) < count {
		e.AddNIC(profiles, expander.Expand(nameTemplate), defaults)
		current = e.NICs()
	}
	for len(current) > count {
		last := current[len(current)-1]
		if err := e.RemoveNIC(last.InstanceID); err != nil {
			return err
		}
		current = current[:len(current)-1]
	}
	return nil
}

// SetNICNetworkMapping assigns Connection values to NICs in InstanceID
// order from names. If fewer names than NICs are given, the last name
// applies to every remaining NIC (spec.md section 4.3.5). Returns the set
// of network names actually referenced afterward, so the caller can
// reconcile NetworkSection entries (deleting any Network no NIC
// references any more).
func (e *Engine) SetNICNetworkMapping(names []string) ([]string, error) {
	nics := e.NICs()
	if len(names) == 0 {
		return nil, errors.New(errors.InvalidInput, "at least one network name is required")
	}
	used := make(map[string]struct{})
	for i, nic := range nics {
		name := names[len(names)-1]
		if i < len(names) {
			name = names[i]
		}
		nic.Set("Connection", name, e.Universe, e.Universe)
		used[name] = struct{}{}
	}
	out := make([]string, 0, len(used))
	for name := range used {
		out = append(out, name)
	}
	return out, nil
}

// SetSerialCount grows or shrinks the serial-port list to count,
// mirroring SetNICCount's logic for a resource type with no network
// mapping concern.
func (e *Engine) SetSerialCount(profiles ProfileSet, count int) error {
	current := e.ByResourceType(ResourceTypeSerial)
	if count < 0 {
		return errors.New(errors.InvalidInput, "serial port count must not be negative")
	}
	for len(current) < count {
		id := e.AllocateInstanceID()
		item := NewLogicalItem(ResourceTypeSerial, id)
		item.Set("ResourceSubType", "serial", e.Universe, e.Universe)
		e.Items = append(e.Items, item)
		current = e.ByResourceType(ResourceTypeSerial)
	}
	for len(current) > count {
		last := current[len(current)-1]
		if err := e.removeByInstanceID(ResourceTypeSerial, last.InstanceID); err != nil {
			return err
		}
		current = current[:len(current)-1]
	}
	return nil
}

// AddDiskItem creates a disk-drive Item (hard disk or CD-ROM, per
// resourceType) attached to the given controller at the given address,
// and referencing the given Disk's HostResource-style ovf:/disk/<diskID>
// anchor. The caller (editor.AddDisk) is responsible for creating the
// matching File/Disk descriptor entries.
func (e *Engine) AddDiskItem(resourceType, controllerInstanceID string, addressOnParent int, diskRef string, profiles ProfileSet) *LogicalItem {
	id := e.AllocateInstanceID()
	item := NewLogicalItem(resourceType, id)
	item.Set("Parent", controllerInstanceID, profiles, e.Universe)
	item.Set("AddressOnParent", strconv.Itoa(addressOnParent), profiles, e.Universe)
	item.Set("HostResource", diskRef, profiles, e.Universe)
	e.Items = append(e.Items, item)
	return item
}

// UsedAddresses returns the AddressOnParent values already occupied on
// the given controller, across every profile - used to pick the first
// unused address for AddDiskItem (spec.md section 4.4's "Add disk").
func (e *Engine) UsedAddresses(controllerInstanceID string) map[int]struct{} {
	used := make(map[int]struct{})
	for _, li := range e.Items {
		parent, ok := li.Get("Parent", DefaultProfile)
		if !ok {
			for p := range e.Universe {
				if v, ok2 := li.Get("Parent", p); ok2 {
					parent = v
					break
				}
			}
		}
		if parent != controllerInstanceID {
			continue
		}
		for p := range e.Universe {
			if v, ok := li.Get("AddressOnParent", p); ok {
				if n, err := strconv.Atoi(v); err == nil {
					used[n] = struct{}{}
				}
			}
		}
	}
	return used
}

// DeleteAllOtherProfiles collapses every item to the single named
// profile, relabeling its entries as covering the (now singleton)
// profile universe. Per spec.md section 4.3.5, callers are responsible
// for also removing every other Configuration from
// DeploymentOptionSection.
func (e *Engine) DeleteAllOtherProfiles(keep string) error {
	if !e.Universe.Contains(keep) {
		return errors.New(errors.NotFound, "no configuration profile %q", keep)
	}
	newUniverse := NewProfileSet(keep)
	for _, li := range e.Items {
		li.RestrictToProfile(keep, newUniverse)
	}
	e.Universe = newUniverse
	return nil
}

// AddProfile clones every item's values from sourceProfile onto
// newProfile and grows the Engine's Universe to include it.
func (e *Engine) AddProfile(newProfile, sourceProfile string) {
	e.Universe = e.Universe.Union(NewProfileSet(newProfile))
	for _, li := range e.Items {
		li.AddProfile(newProfile, sourceProfile, e.Universe)
	}
}

// RemoveProfile strips profile from every item and shrinks the Engine's
// Universe accordingly.
func (e *Engine) RemoveProfile(profile string) {
	newUniverse := e.Universe.Difference(NewProfileSet(profile))
	for _, li := range e.Items {
		li.RemoveProfile(profile, e.Universe, newUniverse)
	}
	e.Universe = newUniverse
}
