// Package netcfg reads and writes per-channel network state (DHCP mode, MAC,
// addresses, gateways, static neighbors, VLAN topology) through a narrow
// object/property client owned by the host's network-management service.
package netcfg

import (
	"errors"
	"fmt"
)

// Errors surfaced by netcfg operations. ErrNoSuchObject and ErrInternal are
// the two delete races tolerated by deleteObjectIfExists; everything else
// propagates.
var (
	ErrNotFound     = errors.New("channel interface not found")
	ErrNoSuchObject = errors.New("no such object")
	ErrInternal     = errors.New("internal failure")
)

// Capability interfaces implemented by network service objects.
const (
	InterfaceEthernet     = "network.EthernetInterface"
	InterfaceVLAN         = "network.VLANInterface"
	InterfaceIP           = "network.IPAddress"
	InterfaceNeighbor     = "network.Neighbor"
	InterfaceSystemConfig = "network.SystemConfiguration"
	InterfaceDeletable    = "object.Delete"
)

// SystemConfigPath is the service-global configuration object. Default
// gateways live here, not on the per-interface objects, which is what lets
// them survive a VLAN teardown.
const SystemConfigPath = "/network/config"

// Property names understood by the network service.
const (
	PropDHCPEnabled     = "DHCPEnabled"
	PropMACAddress      = "MACAddress"
	PropDefaultGateway  = "DefaultGateway"
	PropDefaultGateway6 = "DefaultGateway6"
	PropVLANID          = "Id"
	PropAddrType        = "Type"
	PropAddrAddress     = "Address"
	PropAddrPrefix      = "PrefixLength"
	PropAddrOrigin      = "Origin"
	PropNeighIPAddress  = "IPAddress"
	PropNeighMACAddress = "MACAddress"
)

// ObjectTree maps object path to the services implementing it and the
// capability interfaces each service provides on that path.
type ObjectTree map[string]map[string][]string

// ObjectClient is the verb set this package needs from the network service:
// enumerate objects by capability, read/write properties, and create/delete
// address, VLAN and neighbor objects. Implementations must return
// ErrNoSuchObject from Delete when the object is already gone.
type ObjectClient interface {
	GetSubTree(interfaces ...string) (ObjectTree, error)
	GetProperty(service, path, iface, name string) (any, error)
	SetProperty(service, path, iface, name string, value any) error
	Delete(service, path string) error
	CreateIP(service, ifPath, protocol, address string, prefix uint8) error
	CreateVLAN(service, ifname string, id uint32) (string, error)
	CreateNeighbor(service, ifPath, ip, mac string) error
}

func stringProp(c ObjectClient, service, path, iface, name string) (string, error) {
	v, err := c.GetProperty(service, path, iface, name)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: property %s on %s is %T, want string", ErrInternal, name, path, v)
	}
	return s, nil
}

func uint32Prop(c ObjectClient, service, path, iface, name string) (uint32, error) {
	v, err := c.GetProperty(service, path, iface, name)
	if err != nil {
		return 0, err
	}
	u, ok := v.(uint32)
	if !ok {
		return 0, fmt.Errorf("%w: property %s on %s is %T, want uint32", ErrInternal, name, path, v)
	}
	return u, nil
}

func uint8Prop(c ObjectClient, service, path, iface, name string) (uint8, error) {
	v, err := c.GetProperty(service, path, iface, name)
	if err != nil {
		return 0, err
	}
	u, ok := v.(uint8)
	if !ok {
		return 0, fmt.Errorf("%w: property %s on %s is %T, want uint8", ErrInternal, name, path, v)
	}
	return u, nil
}
