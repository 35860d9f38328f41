package netcfg

import (
	"encoding/binary"
	"fmt"
	"math/bits"
	"net"
)

// IsValidMAC rejects the all-zero address and any address with the multicast
// bit (LSB of the first octet) set; only unicast addresses are assignable.
func IsValidMAC(mac net.HardwareAddr) bool {
	if len(mac) != 6 {
		return false
	}
	zero := true
	for _, b := range mac {
		if b != 0 {
			zero = false
			break
		}
	}
	if zero {
		return false
	}
	return mac[0]&1 == 0
}

// MAC reads the physical interface's MAC address.
func (c *Client) MAC(params *ChannelParams) (net.HardwareAddr, error) {
	s, err := stringProp(c.bus, params.Service, params.IfPath, InterfaceEthernet, PropMACAddress)
	if err != nil {
		return nil, fmt.Errorf("reading MAC: %w", err)
	}
	mac, err := net.ParseMAC(s)
	if err != nil {
		return nil, fmt.Errorf("%w: interface reports MAC %q: %v", ErrInternal, s, err)
	}
	return mac, nil
}

// SetMAC writes the physical interface's MAC address.
func (c *Client) SetMAC(params *ChannelParams, mac net.HardwareAddr) error {
	err := c.bus.SetProperty(params.Service, params.IfPath, InterfaceEthernet, PropMACAddress, mac.String())
	if err != nil {
		return fmt.Errorf("writing MAC %s: %w", mac, err)
	}
	return nil
}

// PrefixToNetmask turns a prefix length into a dotted netmask in network
// byte order. Prefixes above 32 are rejected.
func PrefixToNetmask(prefix uint8) ([4]byte, error) {
	var mask [4]byte
	if prefix > 32 {
		return mask, fmt.Errorf("invalid prefix %d", prefix)
	}
	if prefix == 0 {
		return mask, nil
	}
	binary.BigEndian.PutUint32(mask[:], ^uint32(0)<<(32-prefix))
	return mask, nil
}

// NetmaskToPrefix counts the leading one-bits of a netmask, rejecting any
// mask whose set bits are not a contiguous high-order run.
func NetmaskToPrefix(mask [4]byte) (uint8, error) {
	x := binary.BigEndian.Uint32(mask[:])
	if (^x)&(^x+1) != 0 {
		return 0, fmt.Errorf("invalid netmask %d.%d.%d.%d", mask[0], mask[1], mask[2], mask[3])
	}
	return uint8(bits.OnesCount32(x)), nil
}
