package platform

import "strconv"

// Generic is the permissive default used for an unrecognized product
// class (spec.md section 4.5: "An unknown product-class resolves to a
// permissive default"). Bounds are the widest the hardware package's
// own invariants allow; there is effectively no upper bound.
var Generic = Platform{
	Name:              "(unrecognized platform, generic)",
	DefaultNICType:    "E1000",
	CPUMin:            1,
	MemoryMinMB:       1,
	NICCountMin:       0,
	SerialCountMin:    0,
	BootstrapDiskType: BootstrapCDROM,
	BootstrapFilename: "config.txt",
	GuessNICName: func(n int) string {
		return "Ethernet" + strconv.Itoa(n)
	},
	ControllerTypeForDevice: func(deviceType string) string {
		return "ide"
	},
}
