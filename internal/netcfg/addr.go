package netcfg

import (
	"errors"
	"fmt"
	"net/netip"
)

// IfAddr is one configured interface address.
type IfAddr struct {
	Address netip.Addr
	Prefix  uint8
	Path    string
	Origin  Origin
}

// deleteObjectIfExists deletes the object, tolerating the two races where the
// service reports it already gone or fails internally mid-teardown. All other
// delete errors propagate.
func (c *Client) deleteObjectIfExists(service, path string) error {
	if path == "" {
		return nil
	}
	err := c.bus.Delete(service, path)
	if err != nil && !errors.Is(err, ErrNoSuchObject) && !errors.Is(err, ErrInternal) {
		return fmt.Errorf("deleting %s: %w", path, err)
	}
	return nil
}

// findIfAddr walks the pre-fetched address tree for the idx-th address of the
// family with an allowed origin. Returns nil when no such entry exists;
// absence is not an error.
func (c *Client) findIfAddr(params *ChannelParams, family Family, idx uint8, origins OriginSet, tree ObjectTree) (*IfAddr, error) {
	var seen uint8
	for _, path := range c.objectsFor(tree, params.LogicalPath) {
		addr, err := c.readIfAddr(params.Service, path)
		if err != nil {
			return nil, err
		}
		if !family.Matches(addr.Address) || !origins.Has(addr.Origin) {
			continue
		}
		if seen == idx {
			return addr, nil
		}
		seen++
	}
	return nil, nil
}

func (c *Client) readIfAddr(service, path string) (*IfAddr, error) {
	addrStr, err := stringProp(c.bus, service, path, InterfaceIP, PropAddrAddress)
	if err != nil {
		return nil, err
	}
	address, err := netip.ParseAddr(addrStr)
	if err != nil {
		return nil, fmt.Errorf("%w: address object %s holds %q: %v", ErrInternal, path, addrStr, err)
	}
	prefix, err := uint8Prop(c.bus, service, path, InterfaceIP, PropAddrPrefix)
	if err != nil {
		return nil, err
	}
	originStr, err := stringProp(c.bus, service, path, InterfaceIP, PropAddrOrigin)
	if err != nil {
		return nil, err
	}
	origin, err := ParseOrigin(originStr)
	if err != nil {
		return nil, err
	}
	return &IfAddr{Address: address, Prefix: prefix, Path: path, Origin: origin}, nil
}

// IfAddr fetches the idx-th address of the family with an allowed origin,
// or nil when none is configured.
func (c *Client) IfAddr(params *ChannelParams, family Family, idx uint8, origins OriginSet) (*IfAddr, error) {
	tree, err := c.bus.GetSubTree(InterfaceIP)
	if err != nil {
		return nil, fmt.Errorf("enumerating addresses: %w", err)
	}
	return c.findIfAddr(params, family, idx, origins, tree)
}

// IfAddr4 is the single IPv4 slot.
func (c *Client) IfAddr4(params *ChannelParams) (*IfAddr, error) {
	return c.IfAddr(params, IPv4, 0, OriginsV4)
}

// createIfAddr adds a new address object under the logical interface. The
// network service has no in-place address mutation, so callers always delete
// the old entry first.
func (c *Client) createIfAddr(params *ChannelParams, family Family, address netip.Addr, prefix uint8) error {
	err := c.bus.CreateIP(params.Service, params.LogicalPath, family.Protocol, address.String(), prefix)
	if err != nil {
		return fmt.Errorf("creating %s address %s/%d: %w", family.Protocol, address, prefix, err)
	}
	return nil
}

// ReconfigureIfAddr4 replaces the IPv4 address, carrying over whichever of
// address/prefix the caller left nil from the existing entry.
func (c *Client) ReconfigureIfAddr4(params *ChannelParams, address *netip.Addr, prefix *uint8) error {
	ifaddr, err := c.IfAddr4(params)
	if err != nil {
		return err
	}
	if ifaddr == nil && address == nil {
		return fmt.Errorf("%w: missing address for IPv4 assignment", ErrInternal)
	}
	fallbackPrefix := IPv4.DefaultPrefix
	var fallbackAddr netip.Addr
	if ifaddr != nil {
		fallbackAddr = ifaddr.Address
		fallbackPrefix = ifaddr.Prefix
		if err := c.deleteObjectIfExists(params.Service, ifaddr.Path); err != nil {
			return err
		}
	}
	a := fallbackAddr
	if address != nil {
		a = *address
	}
	p := fallbackPrefix
	if prefix != nil {
		p = *prefix
	}
	return c.createIfAddr(params, IPv4, a, p)
}

// DeconfigureIfAddr6 removes the IPv6 static address at the given slot, if
// one exists.
func (c *Client) DeconfigureIfAddr6(params *ChannelParams, idx uint8) error {
	ifaddr, err := c.IfAddr(params, IPv6, idx, OriginsV6Static)
	if err != nil {
		return err
	}
	if ifaddr == nil {
		return nil
	}
	return c.deleteObjectIfExists(params.Service, ifaddr.Path)
}

// ReconfigureIfAddr6 replaces the IPv6 static address at the given slot.
func (c *Client) ReconfigureIfAddr6(params *ChannelParams, idx uint8, address netip.Addr, prefix uint8) error {
	if err := c.DeconfigureIfAddr6(params, idx); err != nil {
		return err
	}
	return c.createIfAddr(params, IPv6, address, prefix)
}
