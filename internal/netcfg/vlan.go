package netcfg

import (
	"fmt"
	"strings"
)

const (
	// VLANMask covers the valid 12-bit VLAN id range; the all-ones value is
	// reserved by 802.1q.
	VLANMask uint16 = 0x0fff
	// VLANEnableFlag is set in the wire encoding when a VLAN is active.
	VLANEnableFlag uint16 = 0x8000

	// MaxIPv6StaticAddresses bounds the static address table; slots are
	// assumed densely packed from 0.
	MaxIPv6StaticAddresses uint8 = 16
	// MaxIPv6DynamicAddresses bounds the reported dynamic address list.
	MaxIPv6DynamicAddresses uint8 = 16
)

// VLANID reads the channel's VLAN id, 0 when no VLAN is layered on the
// physical interface.
func (c *Client) VLANID(params *ChannelParams) (uint16, error) {
	// VLAN devices always have a separate logical object
	if params.IfPath == params.LogicalPath {
		return 0, nil
	}
	vlan, err := uint32Prop(c.bus, params.Service, params.LogicalPath, InterfaceVLAN, PropVLANID)
	if err != nil {
		return 0, fmt.Errorf("reading VLAN id: %w", err)
	}
	if vlan&uint32(VLANMask) != vlan {
		return 0, fmt.Errorf("%w: network service returned VLAN id %d", ErrInternal, vlan)
	}
	return uint16(vlan), nil
}

// deconfigureChannel deletes every deletable object under the interface name
// (addresses, neighbors, the VLAN object itself) and forces DHCP off on the
// physical interface, leaving a clean slate for recreation.
func (c *Client) deconfigureChannel(params *ChannelParams) error {
	tree, err := c.bus.GetSubTree(InterfaceDeletable)
	if err != nil {
		return fmt.Errorf("enumerating deletable objects: %w", err)
	}
	for _, path := range sortedPaths(tree) {
		if !strings.Contains(path, params.IfName) {
			continue
		}
		for service := range tree[path] {
			if err := c.deleteObjectIfExists(service, path); err != nil {
				return err
			}
		}
		// Deleting the vlan reverts the channel to the physical interface
		if path == params.LogicalPath {
			params.LogicalPath = params.IfPath
		}
	}

	return c.SetDHCPv6Mode(params, DHCPNone, false)
}

// createVLAN layers a new VLAN sub-interface on the channel and adopts its
// object path as the logical path. A zero id means VLAN disabled and is a
// no-op.
func (c *Client) createVLAN(params *ChannelParams, vlan uint16) error {
	if vlan == 0 {
		return nil
	}
	path, err := c.bus.CreateVLAN(params.Service, params.IfName, uint32(vlan))
	if err != nil {
		return fmt.Errorf("creating VLAN %d on %s: %w", vlan, params.IfName, err)
	}
	params.LogicalPath = path
	return nil
}

// ReconfigureVLAN changes the channel's VLAN id (0 disables). The network
// stack cannot migrate interface configuration onto a new VLAN device, so
// the current state is snapshotted, the topology torn down and recreated,
// and the snapshot restored. Restoration is best effort: a failure part-way
// through surfaces as an error with no rollback.
func (c *Client) ReconfigureVLAN(params *ChannelParams, vlan uint16) error {
	ips, err := c.bus.GetSubTree(InterfaceIP)
	if err != nil {
		return fmt.Errorf("enumerating addresses: %w", err)
	}
	ifaddr4, err := c.findIfAddr(params, IPv4, 0, OriginsV4, ips)
	if err != nil {
		return err
	}
	var ifaddrs6 []IfAddr
	for i := uint8(0); i < MaxIPv6StaticAddresses; i++ {
		ifaddr6, err := c.findIfAddr(params, IPv6, i, OriginsV6Static, ips)
		if err != nil {
			return err
		}
		if ifaddr6 == nil {
			break
		}
		ifaddrs6 = append(ifaddrs6, *ifaddr6)
	}
	dhcp, err := c.DHCPMode(params)
	if err != nil {
		return err
	}
	neighTree, err := c.bus.GetSubTree(InterfaceNeighbor)
	if err != nil {
		return fmt.Errorf("enumerating neighbors: %w", err)
	}
	neighbor4, err := c.findGatewayNeighbor(params, IPv4, neighTree)
	if err != nil {
		return err
	}
	neighbor6, err := c.findGatewayNeighbor(params, IPv6, neighTree)
	if err != nil {
		return err
	}

	if err := c.deconfigureChannel(params); err != nil {
		return err
	}
	if err := c.createVLAN(params, vlan); err != nil {
		return err
	}

	// Re-establish the saved settings on the new logical interface. The
	// verbatim DHCP write restores both families exactly as snapshotted.
	if err := c.SetDHCPv6Mode(params, dhcp, false); err != nil {
		return err
	}
	if ifaddr4 != nil {
		if err := c.createIfAddr(params, IPv4, ifaddr4.Address, ifaddr4.Prefix); err != nil {
			return err
		}
	}
	for _, ifaddr6 := range ifaddrs6 {
		if err := c.createIfAddr(params, IPv6, ifaddr6.Address, ifaddr6.Prefix); err != nil {
			return err
		}
	}
	if neighbor4 != nil {
		if err := c.createNeighbor(params, neighbor4.IP, neighbor4.MAC); err != nil {
			return err
		}
	}
	if neighbor6 != nil {
		if err := c.createNeighbor(params, neighbor6.IP, neighbor6.MAC); err != nil {
			return err
		}
	}
	return nil
}
