package platform

import "strconv"

// IOSXRv is Cisco's IOS XRv platform, with an independent admin-plane
// bootstrap configuration alongside the main one.
var IOSXRv = Platform{
	Name:                       "Cisco IOS XRv",
	DefaultNICType:             "E1000",
	SupportedNICTypes:          []string{"E1000", "VIRTIO"},
	CPUMin:                     1,
	CPUMax:                     8,
	MemoryMinMB:                3072,
	MemoryMaxMB:                8192,
	NICCountMin:                1,
	SerialCountMin:             1,
	SerialCountMax:             4,
	BootstrapDiskType:          BootstrapCDROM,
	BootstrapFilename:          "iosxr_config.txt",
	SecondaryBootstrapFilename: "iosxr_config_admin.txt",
	GuessNICName: func(n int) string {
		if n == 1 {
			return "MgmtEth0/0/CPU0/0"
		}
		return "GigabitEthernet0/0/0/" + strconv.Itoa(n-2)
	},
	ControllerTypeForDevice: func(deviceType string) string {
		return "ide"
	},
}

// IOSXRvRP is the IOS XRv HA-capable route-processor card variant: only a
// fabric interface plus one management NIC.
var IOSXRvRP = Platform{
	Name:                       "Cisco IOS XRv route processor card",
	DefaultNICType:             IOSXRv.DefaultNICType,
	SupportedNICTypes:          IOSXRv.SupportedNICTypes,
	CPUMin:                     IOSXRv.CPUMin,
	CPUMax:                     IOSXRv.CPUMax,
	MemoryMinMB:                IOSXRv.MemoryMinMB,
	MemoryMaxMB:                IOSXRv.MemoryMaxMB,
	NICCountMin:                1,
	NICCountMax:                2,
	SerialCountMin:             IOSXRv.SerialCountMin,
	SerialCountMax:             IOSXRv.SerialCountMax,
	BootstrapDiskType:          IOSXRv.BootstrapDiskType,
	BootstrapFilename:          IOSXRv.BootstrapFilename,
	SecondaryBootstrapFilename: IOSXRv.SecondaryBootstrapFilename,
	GuessNICName: func(n int) string {
		if n == 1 {
			return "fabric"
		}
		return "MgmtEth0/{SLOT}/CPU0/" + strconv.Itoa(n-2)
	},
	ControllerTypeForDevice: IOSXRv.ControllerTypeForDevice,
}

// IOSXRvLC is the IOS XRv line card variant: no bootstrap config of its
// own, since line cards inherit configuration from the route processor.
var IOSXRvLC = Platform{
	Name:              "Cisco IOS XRv line card",
	DefaultNICType:    IOSXRv.DefaultNICType,
	SupportedNICTypes: IOSXRv.SupportedNICTypes,
	CPUMin:            IOSXRv.CPUMin,
	CPUMax:            IOSXRv.CPUMax,
	MemoryMinMB:       IOSXRv.MemoryMinMB,
	MemoryMaxMB:       IOSXRv.MemoryMaxMB,
	NICCountMin:       IOSXRv.NICCountMin,
	SerialCountMin:    0,
	SerialCountMax:    4,
	BootstrapDiskType: IOSXRv.BootstrapDiskType,
	// No bootstrap file for line cards.
	BootstrapFilename: "",
	GuessNICName: func(n int) string {
		if n == 1 {
			return "fabric"
		}
		return "GigabitEthernet0/{SLOT}/0/" + strconv.Itoa(n-2)
	},
	ControllerTypeForDevice: IOSXRv.ControllerTypeForDevice,
}
