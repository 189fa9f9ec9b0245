package platform

// registry maps an OVF product-class string (ProductSection's ovf:class,
// e.g. "com.cisco.csr1000v") to its Platform. Grounded on
// original_source/COT/platforms.py's PLATFORM_TYPES dispatch, which COT
// selected by inspecting an OVF's Product string.
var registry = map[string]Platform{
	"com.cisco.csr1000v": CSR1000V,
	"com.cisco.iosv":     IOSv,
	"com.cisco.nx-osv":   NXOSv,
	"com.cisco.iosxrv":   IOSXRv,
	"com.cisco.iosxrv-rp": IOSXRvRP,
	"com.cisco.iosxrv-lc": IOSXRvLC,
}

// Lookup returns the Platform registered for productClass, or Generic if
// productClass is unrecognized (spec.md section 4.5).
func Lookup(productClass string) Platform {
	if p, ok := registry[productClass]; ok {
		return p
	}
	return Generic
}

// Register adds or overrides a product-class mapping. Exposed so the CLI
// layer or tests can extend the registry without modifying this package.
func Register(productClass string, p Platform) {
	registry[productClass] = p
}
