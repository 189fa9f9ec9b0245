package platform

import "strconv"

// CSR1000V is Cisco's CSR1000V virtual router platform.
var CSR1000V = Platform{
	Name:               "Cisco CSR1000V",
	DefaultNICType:     "VIRTIO",
	SupportedNICTypes:  nil,
	CPUMin:             1,
	CPUMax:             4,
	SupportedCPUCounts: []int{1, 2, 4},
	MemoryMinMB:        2560,
	MemoryMaxMB:        8192,
	NICCountMin:        3,
	NICCountMax:        26,
	SerialCountMin:     0,
	SerialCountMax:     2,
	BootstrapDiskType:  BootstrapCDROM,
	BootstrapFilename:  "iosxe_config.txt",
	GuessNICName: func(n int) string {
		// NIC names start at GigabitEthernet1; there is no
		// GigabitEthernet0 on current CSR1000V releases.
		return "GigabitEthernet" + strconv.Itoa(n)
	},
	ControllerTypeForDevice: func(deviceType string) string {
		switch deviceType {
		case "harddisk":
			return "scsi"
		case "cdrom":
			return "ide"
		default:
			return "ide"
		}
	},
}
