package netcfg

import (
	"fmt"
	"net"
	"net/netip"
)

// IfNeigh is a static neighbor table entry. The gateway's MAC is modeled as
// the neighbor entry whose IP equals the configured gateway.
type IfNeigh struct {
	IP   netip.Addr
	MAC  net.HardwareAddr
	Path string
}

// Gateway reads the family's configured default gateway. The second return
// is false when none is configured.
func (c *Client) Gateway(params *ChannelParams, family Family) (netip.Addr, bool, error) {
	s, err := stringProp(c.bus, params.Service, SystemConfigPath, InterfaceSystemConfig, family.GatewayProperty)
	if err != nil {
		return netip.Addr{}, false, fmt.Errorf("reading %s gateway: %w", family.Protocol, err)
	}
	if s == "" {
		return netip.Addr{}, false, nil
	}
	gw, err := netip.ParseAddr(s)
	if err != nil {
		return netip.Addr{}, false, fmt.Errorf("%w: gateway property holds %q: %v", ErrInternal, s, err)
	}
	return gw, true, nil
}

// SetGateway writes the family's default gateway.
func (c *Client) SetGateway(params *ChannelParams, family Family, gateway netip.Addr) error {
	err := c.bus.SetProperty(params.Service, SystemConfigPath, InterfaceSystemConfig, family.GatewayProperty, gateway.String())
	if err != nil {
		return fmt.Errorf("writing %s gateway %s: %w", family.Protocol, gateway, err)
	}
	return nil
}

func (c *Client) readNeighbor(service, path string) (*IfNeigh, error) {
	ipStr, err := stringProp(c.bus, service, path, InterfaceNeighbor, PropNeighIPAddress)
	if err != nil {
		return nil, err
	}
	ip, err := netip.ParseAddr(ipStr)
	if err != nil {
		return nil, fmt.Errorf("%w: neighbor object %s holds %q: %v", ErrInternal, path, ipStr, err)
	}
	macStr, err := stringProp(c.bus, service, path, InterfaceNeighbor, PropNeighMACAddress)
	if err != nil {
		return nil, err
	}
	mac, err := net.ParseMAC(macStr)
	if err != nil {
		return nil, fmt.Errorf("%w: neighbor object %s holds MAC %q: %v", ErrInternal, path, macStr, err)
	}
	return &IfNeigh{IP: ip, MAC: mac, Path: path}, nil
}

// findStaticNeighbor locates the neighbor entry for the given IP in a
// pre-fetched neighbor tree. Returns nil when absent.
func (c *Client) findStaticNeighbor(params *ChannelParams, ip netip.Addr, tree ObjectTree) (*IfNeigh, error) {
	for _, path := range c.objectsFor(tree, params.IfPath) {
		neigh, err := c.readNeighbor(params.Service, path)
		if err != nil {
			return nil, err
		}
		if neigh.IP == ip {
			return neigh, nil
		}
	}
	return nil, nil
}

// findGatewayNeighbor resolves the family's gateway and looks up its pinned
// neighbor entry, if both exist.
func (c *Client) findGatewayNeighbor(params *ChannelParams, family Family, tree ObjectTree) (*IfNeigh, error) {
	gateway, ok, err := c.Gateway(params, family)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return c.findStaticNeighbor(params, gateway, tree)
}

// GatewayNeighbor fetches the neighbor entry pinning the family's gateway
// MAC, or nil when the gateway or its entry is absent.
func (c *Client) GatewayNeighbor(params *ChannelParams, family Family) (*IfNeigh, error) {
	tree, err := c.bus.GetSubTree(InterfaceNeighbor)
	if err != nil {
		return nil, fmt.Errorf("enumerating neighbors: %w", err)
	}
	return c.findGatewayNeighbor(params, family, tree)
}

func (c *Client) createNeighbor(params *ChannelParams, ip netip.Addr, mac net.HardwareAddr) error {
	err := c.bus.CreateNeighbor(params.Service, params.IfPath, ip.String(), mac.String())
	if err != nil {
		return fmt.Errorf("creating neighbor %s -> %s: %w", ip, mac, err)
	}
	return nil
}

// ReconfigureGatewayMAC pins the family's gateway to the given MAC by
// replacing its static neighbor entry. Fails when no gateway is configured.
func (c *Client) ReconfigureGatewayMAC(params *ChannelParams, family Family, mac net.HardwareAddr) error {
	gateway, ok, err := c.Gateway(params, family)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: tried to set gateway MAC without a gateway", ErrInternal)
	}

	tree, err := c.bus.GetSubTree(InterfaceNeighbor)
	if err != nil {
		return fmt.Errorf("enumerating neighbors: %w", err)
	}
	neighbor, err := c.findStaticNeighbor(params, gateway, tree)
	if err != nil {
		return err
	}
	if neighbor != nil {
		if err := c.deleteObjectIfExists(params.Service, neighbor.Path); err != nil {
			return err
		}
	}
	return c.createNeighbor(params, gateway, mac)
}
