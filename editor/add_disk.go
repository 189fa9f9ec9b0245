package editor

import (
	"github.com/glennmatthews/cot/errors"
	"github.com/glennmatthews/cot/hardware"
	"github.com/glennmatthews/cot/ovf"
)

// AddDiskRequest describes a disk to attach (spec.md section 4.3.5's "Add
// disk"). SourcePath is copied into the package under Href on Save.
type AddDiskRequest struct {
	SourcePath string
	Href       string
	FileID     string
	Size       uint64

	DiskID        string
	Capacity      string
	CapacityUnits string
	Format        string
	IsCDROM       bool

	// ControllerInstanceID pins the attachment point directly, taking
	// precedence over ControllerType ("ide"/"scsi"/"sata") when set.
	ControllerInstanceID string
	ControllerType       string
	// Address picks a specific AddressOnParent; nil picks the first
	// unused address on the chosen controller.
	Address *int

	Profile string
}

// AddDisk creates (or, for a matching file-id, replaces) the File entry,
// adds a Disk entry referencing it, and attaches a disk-drive Item to the
// chosen controller at the chosen address. A Disk or drive Item that
// already refers to the file is not replaced: every call adds a new Disk
// entry and a new Item.
func (e *Editor) AddDisk(req AddDiskRequest) (*hardware.LogicalItem, error) {
	engine := e.ensureEngine()
	profiles, err := e.ResolveProfiles(req.Profile)
	if err != nil {
		return nil, err
	}

	controllerID, err := e.resolveController(engine, req)
	if err != nil {
		return nil, err
	}

	address := 0
	if req.Address != nil {
		address = *req.Address
	} else {
		used := engine.UsedAddresses(controllerID)
		for _, ok := used[address]; ok; _, ok = used[address] {
			address++
		}
	}

	fileID := req.FileID
	if fileID == "" {
		fileID = "file" + engine.AllocateInstanceID()
	}
	if err := e.AddFile(AddFileRequest{ID: fileID, Href: req.Href, SourcePath: req.SourcePath, Size: req.Size}); err != nil {
		return nil, err
	}

	diskID := req.DiskID
	if diskID == "" {
		diskID = "disk" + engine.AllocateInstanceID()
	}
	capacity := req.Capacity
	if capacity == "" {
		capacity = "0"
	}
	disk := ovf.Disk{DiskID: diskID, FileRef: &fileID, Capacity: capacity}
	if req.CapacityUnits != "" {
		disk.CapacityAllocationUnits = &req.CapacityUnits
	}
	if req.Format != "" {
		disk.Format = &req.Format
	}
	if err := e.d.DiskSection().Add(disk); err != nil {
		return nil, err
	}

	resourceType := hardware.ResourceTypeHardDisk
	if req.IsCDROM {
		resourceType = hardware.ResourceTypeCDROM
	}
	diskRef := "ovf:/disk/" + diskID
	return engine.AddDiskItem(resourceType, controllerID, address, diskRef, profiles), nil
}

// resolveController picks the attachment controller: the caller's pinned
// InstanceID, or the first controller of the caller's/platform's
// requested type.
func (e *Editor) resolveController(engine *hardware.Engine, req AddDiskRequest) (string, error) {
	if req.ControllerInstanceID != "" {
		return req.ControllerInstanceID, nil
	}
	controllerType := req.ControllerType
	if controllerType == "" {
		plat := e.Platform()
		deviceType := "harddisk"
		if req.IsCDROM {
			deviceType = "cdrom"
		}
		if plat.ControllerTypeForDevice != nil {
			controllerType = plat.ControllerTypeForDevice(deviceType)
		}
	}
	resourceType := controllerResourceType(controllerType)
	controllers := engine.ByResourceType(resourceType)
	if len(controllers) == 0 {
		return "", errors.New(errors.NotFound, "no %s controller present", controllerType)
	}
	return controllers[0].InstanceID, nil
}

func controllerResourceType(controllerType string) string {
	switch controllerType {
	case "ide":
		return hardware.ResourceTypeIDEController
	case "sata":
		return hardware.ResourceTypeSATAController
	default:
		return hardware.ResourceTypeSCSIController
	}
}
