package platform

import "strconv"

// IOSv is Cisco's IOSv virtual router platform. It has no CD-ROM driver,
// so its bootstrap configuration must be delivered on a hard disk rather
// than the usual CD-ROM.
var IOSv = Platform{
	Name:              "Cisco IOSv",
	DefaultNICType:    "E1000",
	SupportedNICTypes: []string{"E1000"},
	CPUMin:            1,
	CPUMax:            1,
	MemoryMinMB:       192,
	MemoryMaxMB:       3072,
	NICCountMin:       0,
	NICCountMax:       16,
	SerialCountMin:    1,
	SerialCountMax:    2,
	BootstrapDiskType: BootstrapHardDisk,
	BootstrapFilename: "ios_config.txt",
	GuessNICName: func(n int) string {
		return "GigabitEthernet0/" + strconv.Itoa(n-1)
	},
	ControllerTypeForDevice: func(deviceType string) string {
		return "ide"
	},
}

// NXOSv is Cisco's NX-OSv (Titanium) virtual switch platform.
var NXOSv = Platform{
	Name:              "Cisco NX-OSv",
	DefaultNICType:    "E1000",
	SupportedNICTypes: []string{"E1000", "VIRTIO"},
	CPUMin:            1,
	CPUMax:            8,
	MemoryMinMB:       2048,
	MemoryMaxMB:       8192,
	NICCountMin:       0,
	SerialCountMin:    1,
	SerialCountMax:    2,
	BootstrapDiskType: BootstrapCDROM,
	BootstrapFilename: "nxos_config.txt",
	GuessNICName: func(n int) string {
		if n == 1 {
			return "mgmt0"
		}
		group := (n-2)/48 + 2
		port := (n-2)%48 + 1
		return "Ethernet" + strconv.Itoa(group) + "/" + strconv.Itoa(port)
	},
	ControllerTypeForDevice: func(deviceType string) string {
		return "ide"
	},
}
