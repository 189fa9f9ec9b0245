package editor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glennmatthews/cot/hardware"
	"github.com/glennmatthews/cot/ovfpkg"
	"github.com/glennmatthews/cot/resources"
	"github.com/glennmatthews/cot/session"
)

var minimalOVF = []byte(`<?xml version="1.0" encoding="UTF-8"?>
<Envelope xmlns="http://schemas.dmtf.org/ovf/envelope/1" xmlns:ovf="http://schemas.dmtf.org/ovf/envelope/1" xmlns:rasd="http://schemas.dmtf.org/wbem/wscim/1/cim-schema/2/CIM_ResourceAllocationSettingData">
  <References/>
  <DiskSection/>
  <NetworkSection/>
  <VirtualSystem ovf:id="vm1">
    <Name>vm1</Name>
    <VirtualHardwareSection>
      <Item>
        <rasd:ResourceType>3</rasd:ResourceType>
        <rasd:InstanceID>1</rasd:InstanceID>
        <rasd:VirtualQuantity>1</rasd:VirtualQuantity>
      </Item>
      <Item>
        <rasd:ResourceType>4</rasd:ResourceType>
        <rasd:InstanceID>2</rasd:InstanceID>
        <rasd:VirtualQuantity>512</rasd:VirtualQuantity>
      </Item>
      <Item>
        <rasd:ResourceType>6</rasd:ResourceType>
        <rasd:InstanceID>3</rasd:InstanceID>
      </Item>
    </VirtualHardwareSection>
    <ProductSection ovf:class="com.cisco.csr1000v">
      <Info>Product information</Info>
    </ProductSection>
  </VirtualSystem>
</Envelope>`)

func openTestEditor(t *testing.T) *Editor {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "box.ovf")
	require.NoError(t, os.WriteFile(path, minimalOVF, 0o644))
	sess := session.New(session.NopLogger{}, session.AlwaysConfirm, true)
	e, err := Open(path, sess)
	require.NoError(t, err)
	return e
}

func TestOpenParsesDescriptorAndHardware(t *testing.T) {
	e := openTestEditor(t)
	engine := e.ensureEngine()
	assert.Len(t, engine.Items, 3)
	assert.Equal(t, "com.cisco.csr1000v", *e.vs.ProductSection().Class())
}

func TestEditHardwareSetsCPUAndMemory(t *testing.T) {
	e := openTestEditor(t)
	cpus := 2
	mem := 4096
	require.NoError(t, e.EditHardware(EditHardwareRequest{CPUs: &cpus, MemoryMB: &mem}))

	engine := e.engine
	cpus2 := engine.ByResourceType("3")
	require.Len(t, cpus2, 1)
	v, ok := cpus2[0].Get("VirtualQuantity", engine.Universe.SortedIDs()[0])
	require.True(t, ok)
	assert.Equal(t, "2", v)

	mems := engine.ByResourceType("4")
	require.Len(t, mems, 1)
	m, ok := mems[0].Get("VirtualQuantity", engine.Universe.SortedIDs()[0])
	require.True(t, ok)
	assert.Equal(t, "4096", m)
}

func TestEditHardwareGrowsNICsUsingPlatformNaming(t *testing.T) {
	e := openTestEditor(t)
	count := 3
	require.NoError(t, e.EditHardware(EditHardwareRequest{NICCount: &count}))

	nics := e.engine.NICs()
	require.Len(t, nics, 3)
	expected := []string{"GigabitEthernet1", "GigabitEthernet2", "GigabitEthernet3"}
	for i, nic := range nics {
		v, ok := nic.Get("Connection", hardwareDefaultProfile(e))
		require.True(t, ok)
		assert.Equal(t, expected[i], v)
	}
	assert.Len(t, e.d.NetworkSection().Networks(), 3)
}

func hardwareDefaultProfile(e *Editor) string {
	for p := range e.engine.Universe {
		return p
	}
	return ""
}

func TestAddAndRemoveFile(t *testing.T) {
	e := openTestEditor(t)
	src := filepath.Join(t.TempDir(), "disk.vmdk")
	require.NoError(t, os.WriteFile(src, []byte("payload"), 0o644))

	require.NoError(t, e.AddFile(AddFileRequest{ID: "file1", Href: "disk.vmdk", SourcePath: src, Size: 7}))
	_, ok := e.d.References().FileByID("file1")
	assert.True(t, ok)
	assert.Contains(t, e.pendingMembers, "disk.vmdk")

	removed, err := e.RemoveFile("file1", "")
	require.NoError(t, err)
	assert.Equal(t, "disk.vmdk", removed.Href)
	assert.NotContains(t, e.pendingMembers, "disk.vmdk")
}

func TestAddDiskAttachesToFirstSCSIController(t *testing.T) {
	e := openTestEditor(t)
	src := filepath.Join(t.TempDir(), "disk.vmdk")
	require.NoError(t, os.WriteFile(src, []byte("payload"), 0o644))

	item, err := e.AddDisk(AddDiskRequest{SourcePath: src, Href: "disk.vmdk", Capacity: "10", CapacityUnits: "byte * 2^30"})
	require.NoError(t, err)
	assert.Equal(t, "17", item.ResourceType)
	parent, ok := item.Get("Parent", hardwareDefaultProfile(e))
	require.True(t, ok)
	assert.Equal(t, "3", parent)

	disks := e.d.DiskSection().Disks()
	require.Len(t, disks, 1)
	assert.Equal(t, "10", disks[0].Capacity)
}

func TestAddDiskFailsWithoutMatchingController(t *testing.T) {
	e := openTestEditor(t)
	src := filepath.Join(t.TempDir(), "cdrom.iso")
	require.NoError(t, os.WriteFile(src, []byte("x"), 0o644))

	_, err := e.AddDisk(AddDiskRequest{SourcePath: src, Href: "cdrom.iso", ControllerType: "ide"})
	assert.Error(t, err)
}

func TestEditProductUpdatesFields(t *testing.T) {
	e := openTestEditor(t)
	product := "My Appliance"
	e.EditProduct(resources.EditProductRequest{Product: &product})
	assert.Equal(t, "My Appliance", *e.vs.ProductSection().Product())
}

func TestEditPropertiesAppliesEdits(t *testing.T) {
	e := openTestEditor(t)
	edits := []PropertyEdit{
		ParsePropertyEdit("hostname=router1"),
		ParsePropertyEdit("enabled=yes+boolean"),
	}
	require.NoError(t, e.EditProperties(edits))

	ps := e.vs.ProductSection()
	hostname, ok := ps.PropertyByKey("hostname")
	require.True(t, ok)
	assert.Equal(t, "router1", *hostname.Value)

	enabled, ok := ps.PropertyByKey("enabled")
	require.True(t, ok)
	assert.Equal(t, "true", *enabled.Value)
}

func TestParsePropertyEditWithoutEquals(t *testing.T) {
	edit := ParsePropertyEdit("bare-key")
	assert.Equal(t, "bare-key", edit.Key)
	assert.Nil(t, edit.Value)
}

func TestInjectConfigAttachesBootstrapDisk(t *testing.T) {
	e := openTestEditor(t)
	src := filepath.Join(t.TempDir(), "config.txt")
	require.NoError(t, os.WriteFile(src, []byte("hostname router1\n"), 0o644))
	// The CSR1000V bootstrap CD-ROM attaches to an IDE controller, which
	// minimalOVF lacks.
	engine := e.ensureEngine()
	engine.Items = append(engine.Items, hardware.NewLogicalItem(hardware.ResourceTypeIDEController, "4"))

	item, err := e.InjectConfig(InjectConfigRequest{PrimaryConfigPath: src})
	require.NoError(t, err)
	require.NotNil(t, item)

	plat := e.Platform()
	files := e.d.References().Files()
	require.Len(t, files, 1)
	assert.Equal(t, plat.BootstrapFilename, files[0].Href)
}

func TestEditHardwareKeepOnlyProfileCollapsesUniverse(t *testing.T) {
	e := openTestEditor(t)
	engine := e.ensureEngine()
	engine.AddProfile("2CPU-4GB", engine.Universe.SortedIDs()[0])

	require.NoError(t, e.EditHardware(EditHardwareRequest{KeepOnlyProfile: "2CPU-4GB"}))

	assert.True(t, e.engine.Universe.Equals(hardwareNewProfileSet(t, "2CPU-4GB")))
}

func hardwareNewProfileSet(t *testing.T, id string) hardware.ProfileSet {
	t.Helper()
	return hardware.NewProfileSet(id)
}

func TestSaveRoundTripsToDirectoryForm(t *testing.T) {
	e := openTestEditor(t)
	cpus := 4
	require.NoError(t, e.EditHardware(EditHardwareRequest{CPUs: &cpus}))

	outDir := t.TempDir()
	outPath := filepath.Join(outDir, "out.ovf")
	require.NoError(t, e.Save(outPath, ovfpkg.FormDirectory))

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<rasd:VirtualQuantity>4</rasd:VirtualQuantity>")
}
