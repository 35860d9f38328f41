// Package netcfgtest provides an in-memory ObjectClient for tests.
package netcfgtest

import (
	"fmt"
	"strings"

	"github.com/openbmc-go/netipmid/internal/netcfg"
)

// Service is the bus name owning every object in the fake.
const Service = "fake.network"

type object struct {
	interfaces []string
	props      map[string]any // "iface.name" -> value
}

// Fake is an in-memory network service. Object paths follow the live
// backend's scheme: /network/<ifname> for devices, <device>/ip/NN and
// <device>/neigh/NN for addresses and neighbors, zero-padded so lexical
// order matches creation order.
type Fake struct {
	objects  map[string]*object
	ipSeq    int
	neighSeq int

	// DeleteErr injects an error for Delete on a given path.
	DeleteErr map[string]error
}

// New creates an empty fake holding only the system configuration object.
func New() *Fake {
	f := &Fake{
		objects:   make(map[string]*object),
		DeleteErr: make(map[string]error),
	}
	f.addObject(netcfg.SystemConfigPath, []string{netcfg.InterfaceSystemConfig})
	f.setProp(netcfg.SystemConfigPath, netcfg.InterfaceSystemConfig, netcfg.PropDefaultGateway, "")
	f.setProp(netcfg.SystemConfigPath, netcfg.InterfaceSystemConfig, netcfg.PropDefaultGateway6, "")
	return f
}

func (f *Fake) addObject(path string, interfaces []string) *object {
	o := &object{interfaces: interfaces, props: make(map[string]any)}
	f.objects[path] = o
	return o
}

func (f *Fake) setProp(path, iface, name string, value any) {
	f.objects[path].props[iface+"."+name] = value
}

// AddEthernet seeds a physical ethernet device and returns its path.
func (f *Fake) AddEthernet(ifname, mac string) string {
	path := "/network/" + ifname
	f.addObject(path, []string{netcfg.InterfaceEthernet})
	f.setProp(path, netcfg.InterfaceEthernet, netcfg.PropDHCPEnabled, netcfg.DHCPNone.String())
	f.setProp(path, netcfg.InterfaceEthernet, netcfg.PropMACAddress, mac)
	return path
}

// AddAddress seeds an address object with an explicit origin and returns its
// path.
func (f *Fake) AddAddress(ifPath, protocol, address string, prefix uint8, origin netcfg.Origin) string {
	f.ipSeq++
	path := fmt.Sprintf("%s/ip/%02d", ifPath, f.ipSeq)
	f.addObject(path, []string{netcfg.InterfaceIP, netcfg.InterfaceDeletable})
	f.setProp(path, netcfg.InterfaceIP, netcfg.PropAddrType, protocol)
	f.setProp(path, netcfg.InterfaceIP, netcfg.PropAddrAddress, address)
	f.setProp(path, netcfg.InterfaceIP, netcfg.PropAddrPrefix, prefix)
	f.setProp(path, netcfg.InterfaceIP, netcfg.PropAddrOrigin, origin.String())
	return path
}

// GetSubTree returns all objects implementing any of the given interfaces.
func (f *Fake) GetSubTree(interfaces ...string) (netcfg.ObjectTree, error) {
	tree := make(netcfg.ObjectTree)
	for path, o := range f.objects {
		for _, want := range interfaces {
			if contains(o.interfaces, want) {
				tree[path] = map[string][]string{Service: o.interfaces}
				break
			}
		}
	}
	return tree, nil
}

// GetProperty reads a property.
func (f *Fake) GetProperty(service, path, iface, name string) (any, error) {
	o, ok := f.objects[path]
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, netcfg.ErrNoSuchObject)
	}
	v, ok := o.props[iface+"."+name]
	if !ok {
		return nil, fmt.Errorf("%s has no property %s.%s: %w", path, iface, name, netcfg.ErrInternal)
	}
	return v, nil
}

// SetProperty writes a property, which must already exist.
func (f *Fake) SetProperty(service, path, iface, name string, value any) error {
	o, ok := f.objects[path]
	if !ok {
		return fmt.Errorf("%s: %w", path, netcfg.ErrNoSuchObject)
	}
	if _, ok := o.props[iface+"."+name]; !ok {
		return fmt.Errorf("%s has no property %s.%s: %w", path, iface, name, netcfg.ErrInternal)
	}
	o.props[iface+"."+name] = value
	return nil
}

// Delete removes an object. Deleting a device cascades to the objects under
// its path, the way removing a VLAN link removes its addresses.
func (f *Fake) Delete(service, path string) error {
	if err, ok := f.DeleteErr[path]; ok {
		return err
	}
	if _, ok := f.objects[path]; !ok {
		return fmt.Errorf("%s: %w", path, netcfg.ErrNoSuchObject)
	}
	delete(f.objects, path)
	for p := range f.objects {
		if strings.HasPrefix(p, path+"/") {
			delete(f.objects, p)
		}
	}
	return nil
}

// CreateIP adds an address object under the interface with origin static.
func (f *Fake) CreateIP(service, ifPath, protocol, address string, prefix uint8) error {
	if _, ok := f.objects[ifPath]; !ok {
		return fmt.Errorf("%s: %w", ifPath, netcfg.ErrNoSuchObject)
	}
	f.AddAddress(ifPath, protocol, address, prefix, netcfg.OriginStatic)
	return nil
}

// CreateVLAN layers a VLAN device on the named interface.
func (f *Fake) CreateVLAN(service, ifname string, id uint32) (string, error) {
	path := fmt.Sprintf("/network/%s.%d", ifname, id)
	if _, ok := f.objects[path]; ok {
		return "", fmt.Errorf("%s already exists: %w", path, netcfg.ErrInternal)
	}
	f.addObject(path, []string{netcfg.InterfaceEthernet, netcfg.InterfaceVLAN, netcfg.InterfaceDeletable})
	f.setProp(path, netcfg.InterfaceEthernet, netcfg.PropDHCPEnabled, netcfg.DHCPNone.String())
	f.setProp(path, netcfg.InterfaceVLAN, netcfg.PropVLANID, id)
	return path, nil
}

// CreateNeighbor adds a static neighbor entry under the interface.
func (f *Fake) CreateNeighbor(service, ifPath, ip, mac string) error {
	if _, ok := f.objects[ifPath]; !ok {
		return fmt.Errorf("%s: %w", ifPath, netcfg.ErrNoSuchObject)
	}
	f.neighSeq++
	path := fmt.Sprintf("%s/neigh/%02d", ifPath, f.neighSeq)
	f.addObject(path, []string{netcfg.InterfaceNeighbor, netcfg.InterfaceDeletable})
	f.setProp(path, netcfg.InterfaceNeighbor, netcfg.PropNeighIPAddress, ip)
	f.setProp(path, netcfg.InterfaceNeighbor, netcfg.PropNeighMACAddress, mac)
	return nil
}

// HasObject reports whether a path still exists.
func (f *Fake) HasObject(path string) bool {
	_, ok := f.objects[path]
	return ok
}

func contains(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}
