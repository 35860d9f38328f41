package netcfg

import (
	"fmt"
	"net/netip"
)

// Origin is the provenance of a configured address.
type Origin uint8

const (
	OriginStatic Origin = iota
	OriginDHCP
	OriginSLAAC
	OriginLinkLocal
)

var originNames = map[Origin]string{
	OriginStatic:    "static",
	OriginDHCP:      "dhcp",
	OriginSLAAC:     "slaac",
	OriginLinkLocal: "link-local",
}

func (o Origin) String() string {
	if s, ok := originNames[o]; ok {
		return s
	}
	return fmt.Sprintf("origin(%d)", uint8(o))
}

// ParseOrigin converts the network service's origin string. Unrecognized
// strings are an internal error: the service and this daemon must agree.
func ParseOrigin(s string) (Origin, error) {
	for o, name := range originNames {
		if name == s {
			return o, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown address origin %q", ErrInternal, s)
}

// OriginSet is a small bitmask of Origins used to filter address queries.
type OriginSet uint8

// NewOriginSet builds a set from its members.
func NewOriginSet(origins ...Origin) OriginSet {
	var s OriginSet
	for _, o := range origins {
		s |= 1 << o
	}
	return s
}

// Has reports membership.
func (s OriginSet) Has(o Origin) bool {
	return s&(1<<o) != 0
}

// Origin filters used by the LAN parameter handlers. IPv4 treats DHCP-leased
// addresses as reportable alongside static ones; IPv6 splits static and
// dynamic queries into separate parameters.
var (
	OriginsV4        = NewOriginSet(OriginStatic, OriginDHCP)
	OriginsV6Static  = NewOriginSet(OriginStatic)
	OriginsV6Dynamic = NewOriginSet(OriginDHCP, OriginSLAAC)
)

// Family is the capability set shared by all address-family-polymorphic
// operations. Address, neighbor and gateway logic is written once against
// this descriptor instead of branching on the family.
type Family struct {
	// Protocol is the tag the network service uses for this family.
	Protocol string
	// DefaultPrefix is the prefix length assumed when none is configured.
	DefaultPrefix uint8
	// WireSize is the on-wire address size in bytes (network byte order).
	WireSize int
	// GatewayProperty is the interface property holding this family's
	// default gateway.
	GatewayProperty string
	is4 bool
}

var (
	IPv4 = Family{Protocol: "ipv4", DefaultPrefix: 32, WireSize: 4, GatewayProperty: PropDefaultGateway, is4: true}
	IPv6 = Family{Protocol: "ipv6", DefaultPrefix: 128, WireSize: 16, GatewayProperty: PropDefaultGateway6}
)

// Matches reports whether the address belongs to this family.
func (f Family) Matches(a netip.Addr) bool {
	if f.is4 {
		return a.Is4() || a.Is4In6()
	}
	return a.Is6() && !a.Is4In6()
}

// AddrToWire renders the address in network byte order.
func (f Family) AddrToWire(a netip.Addr) []byte {
	if f.is4 {
		b := a.As4()
		return b[:]
	}
	b := a.As16()
	return b[:]
}

// AddrFromWire parses a network-byte-order address of this family's size.
func (f Family) AddrFromWire(b []byte) (netip.Addr, error) {
	if len(b) != f.WireSize {
		return netip.Addr{}, fmt.Errorf("wire address is %d bytes, want %d", len(b), f.WireSize)
	}
	a, ok := netip.AddrFromSlice(b)
	if !ok {
		return netip.Addr{}, fmt.Errorf("invalid %s wire address", f.Protocol)
	}
	return a, nil
}
