package ovf

import "github.com/beevik/etree"

// Version identifies which revision of the OVF specification a descriptor
// was written against. cot never transforms between versions - spec.md
// section 1's Non-goals are explicit about this - it only needs to
// recognize which one it loaded so it can pick the right manifest digest
// algorithm (spec.md section 6) and emit the matching envelope namespace.
type Version int

// Recognized OVF specification versions.
const (
	// VersionUnknown is returned when no recognized envelope namespace was
	// found; callers should treat the descriptor as invalid.
	VersionUnknown Version = iota
	Version0_9
	Version1_0
	Version2_0
)

func (v Version) String() string {
	switch v {
	case Version0_9:
		return "0.9"
	case Version1_0:
		return "1.x"
	case Version2_0:
		return "2.x"
	default:
		return "unknown"
	}
}

// UsesSHA256 reports whether manifests for this version use SHA-256
// (OVF 2.x) rather than SHA-1 (OVF 0.9/1.x), per spec.md section 6.
func (v Version) UsesSHA256() bool {
	return v == Version2_0
}

// namespace URIs for the OVF envelope element, by version. 0.9 was
// VMware-proprietary and predates the DMTF schema URIs.
const (
	nsEnvelope0_9 = "http://www.vmware.com/schema/ovf/1/envelope"
	nsEnvelope1_0 = "http://schemas.dmtf.org/ovf/envelope/1"
	nsEnvelope2_0 = "http://schemas.dmtf.org/ovf/envelope/2"

	// NSRASD is the CIM Resource Allocation Setting Data namespace used by
	// VirtualHardwareSection Item children.
	NSRASD = "http://schemas.dmtf.org/wbem/wscim/1/cim-schema/2/CIM_ResourceAllocationSettingData"
	// NSVSSD is the CIM Virtual System Setting Data namespace.
	NSVSSD = "http://schemas.dmtf.org/wbem/wscim/1/cim-schema/2/CIM_VirtualSystemSettingData"
	// NSVMW is VMware's extension namespace (e.g. vmw:Config elements).
	NSVMW = "http://www.vmware.com/schema/ovf"
)

var envelopeNamespacesByVersion = map[string]Version{
	nsEnvelope0_9: Version0_9,
	nsEnvelope1_0: Version1_0,
	nsEnvelope2_0: Version2_0,
}

// detectVersion inspects root's xmlns declarations for a recognized OVF
// envelope namespace and returns the corresponding Version plus the prefix
// bound to it (possibly "" for a default/unprefixed namespace).
func detectVersion(root *etree.Element) (Version, string) {
	for _, attr := range root.Attr {
		switch {
		case attr.Space == "xmlns":
			// xmlns:prefix="uri"
			if v, ok := envelopeNamespacesByVersion[attr.Value]; ok {
				return v, attr.Key
			}
		case attr.Space == "" && attr.Key == "xmlns":
			// default (unprefixed) namespace
			if v, ok := envelopeNamespacesByVersion[attr.Value]; ok {
				return v, ""
			}
		}
	}
	return VersionUnknown, ""
}
