// Package platform provides a small registry of guest-platform-specific
// bounds and defaults, keyed by OVF product-class string. Grounded on
// original_source/COT/platforms.py's GenericPlatform/CSR1000V/IOSv/
// IOSXRv family, with Python's classmethod-override inheritance reshaped
// into Go's explicit struct-of-callbacks Platform value (spec.md section
// 4.5).
package platform

import (
	"fmt"

	"github.com/glennmatthews/cot/errors"
)

// BootstrapDisk identifies the medium a platform expects its bootstrap
// configuration file to be delivered on.
type BootstrapDisk string

// Bootstrap disk media recognized by cot.
const (
	BootstrapCDROM    BootstrapDisk = "CD-ROM"
	BootstrapHardDisk BootstrapDisk = "HARD-DISK"
)

// Platform describes one guest platform's hardware bounds, defaults, and
// validators. Construct one with a literal composite (see generic.go,
// csr1000v.go, iosv.go, iosxrv.go) rather than via a constructor function -
// every field is just data, and the validators are methods on Platform that
// read it.
type Platform struct {
	// Name is a human-readable platform name for diagnostics.
	Name string

	// DefaultNICType is the rasd:ResourceSubType this platform's NICs
	// default to when no existing NIC can be cloned.
	DefaultNICType string
	// SupportedNICTypes enumerates the only NIC subtypes this platform
	// accepts; nil means any type is accepted.
	SupportedNICTypes []string

	// CPUMin/CPUMax bound the CPU count.
	CPUMin, CPUMax int
	// SupportedCPUCounts, if non-nil, further restricts CPUMin..CPUMax to
	// an enumerated set (e.g. CSR1000V's {1, 2, 4}).
	SupportedCPUCounts []int

	// MemoryMinMB/MemoryMaxMB bound RAM in megabytes.
	MemoryMinMB, MemoryMaxMB int

	// NICCountMin/NICCountMax bound the NIC count.
	NICCountMin, NICCountMax int

	// SerialCountMin/SerialCountMax bound the serial port count.
	SerialCountMin, SerialCountMax int

	// BootstrapDiskType is the medium this platform's bootstrap
	// configuration is delivered on.
	BootstrapDiskType BootstrapDisk
	// BootstrapFilename is the default file name the bootstrap
	// configuration is written under inside the guest-visible disk/ISO.
	BootstrapFilename string
	// SecondaryBootstrapFilename is the default file name for a second
	// bootstrap configuration file, for platforms with independent admin
	// and line-card configs (e.g. IOS XRv); "" if unsupported.
	SecondaryBootstrapFilename string

	// GuessNICName returns this platform's conventional name for the
	// Nth NIC (1-indexed) - used when extending a discernible numeric
	// naming sequence (spec.md section 4.3.5).
	GuessNICName func(nicNumber int) string

	// ControllerTypeForDevice returns the default controller type
	// ("ide", "scsi", ...) this platform uses for the given device type
	// ("harddisk", "cdrom", ...).
	ControllerTypeForDevice func(deviceType string) string
}

// Warning is a non-fatal platform bounds violation, surfaced through the
// session.Confirmer path rather than failing the operation outright
// (spec.md section 4.3.5: "Platform bounds violation emits a warning and
// continues unless --force is not set and no confirmation callback
// confirms").
type Warning struct {
	Message string
}

func warn(format string, a ...interface{}) *Warning {
	return &Warning{Message: fmt.Sprintf(format, a...)}
}

// ValidateCPUCount checks cpus against CPUMin/CPUMax/SupportedCPUCounts.
// A value outside Min/Max is an InvalidInput error (not just a warning) -
// the original raises ValueTooLowError/ValueTooHighError unconditionally
// for these, reserving warnings for the enumerated-but-not-hard-bounded
// case. A value within range but absent from SupportedCPUCounts returns a
// Warning instead, since "supported" counts are a recommendation, not a
// hard hypervisor limit.
func (p Platform) ValidateCPUCount(cpus int) (*Warning, error) {
	if cpus < p.CPUMin {
		return nil, errors.TooLow("CPUs", cpus, p.CPUMin)
	}
	if p.CPUMax > 0 && cpus > p.CPUMax {
		return nil, errors.TooHigh("CPUs", cpus, p.CPUMax)
	}
	if len(p.SupportedCPUCounts) > 0 && !intIn(cpus, p.SupportedCPUCounts) {
		return warn("%d CPUs is not a standard count for %s (expected one of %v)", cpus, p.Name, p.SupportedCPUCounts), nil
	}
	return nil, nil
}

// ValidateMemoryMB checks megabytes against MemoryMinMB/MemoryMaxMB.
func (p Platform) ValidateMemoryMB(megabytes int) (*Warning, error) {
	if megabytes < p.MemoryMinMB {
		return nil, errors.TooLow("RAM (MB)", megabytes, p.MemoryMinMB)
	}
	if p.MemoryMaxMB > 0 && megabytes > p.MemoryMaxMB {
		return nil, errors.TooHigh("RAM (MB)", megabytes, p.MemoryMaxMB)
	}
	return nil, nil
}

// ValidateNICCount checks count against NICCountMin/NICCountMax.
func (p Platform) ValidateNICCount(count int) (*Warning, error) {
	if count < p.NICCountMin {
		return nil, errors.TooLow("NIC count", count, p.NICCountMin)
	}
	if p.NICCountMax > 0 && count > p.NICCountMax {
		return nil, errors.TooHigh("NIC count", count, p.NICCountMax)
	}
	return nil, nil
}

// ValidateNICType checks nicType against SupportedNICTypes.
func (p Platform) ValidateNICType(nicType string) error {
	if len(p.SupportedNICTypes) == 0 {
		return nil
	}
	if !stringIn(nicType, p.SupportedNICTypes) {
		return errors.Unsupported("NIC type", nicType, p.SupportedNICTypes)
	}
	return nil
}

// ValidateSerialCount checks count against SerialCountMin/SerialCountMax.
func (p Platform) ValidateSerialCount(count int) (*Warning, error) {
	if count < p.SerialCountMin {
		return nil, errors.TooLow("serial port count", count, p.SerialCountMin)
	}
	if p.SerialCountMax > 0 && count > p.SerialCountMax {
		return nil, errors.TooHigh("serial port count", count, p.SerialCountMax)
	}
	return nil, nil
}

func intIn(v int, list []int) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func stringIn(v string, list []string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
