package hardware

// ResourceType string values for the rasd:ResourceType codes this package
// needs to recognize, grounded on RES_MAP in
// original_source/COT/ovf/name_helper.py (itself quoting the DMTF
// CIM_ResourceAllocationSettingData schema).
const (
	ResourceTypeCPU       = "3"
	ResourceTypeMemory    = "4"
	ResourceTypeIDEController  = "5"
	ResourceTypeSCSIController = "6"
	ResourceTypeEthernet  = "10"
	ResourceTypeFloppy    = "14"
	ResourceTypeCDROM     = "15"
	ResourceTypeDVD       = "16"
	ResourceTypeHardDisk  = "17"
	ResourceTypeSATAController = "20"
	ResourceTypeSerial    = "21"
	ResourceTypeParallel  = "22"
	ResourceTypeUSB       = "23"
)
