// Package hostnet exposes the host's links, addresses and neighbors as the
// object/property surface consumed by netcfg, backed by netlink. Object
// paths encode the entity identity so Delete and property reads can map back
// to the underlying netlink handle.
package hostnet

import (
	"fmt"
	"log/slog"
	"net"
	"net/netip"
	"strconv"
	"strings"

	"github.com/vishvananda/netlink"
	"golang.org/x/sys/unix"

	"github.com/openbmc-go/netipmid/internal/netcfg"
)

// Service is the bus name this client reports as the owner of every object.
const Service = "hostnet"

const pathRoot = "/network/"

// Client implements netcfg.ObjectClient over netlink plus a small state file
// for the settings netlink has no home for (DHCP intent, default gateways).
type Client struct {
	state *stateFile
	log   *slog.Logger
}

// New creates a Client persisting non-kernel state under stateDir.
func New(stateDir string, log *slog.Logger) *Client {
	return &Client{state: newStateFile(stateDir), log: log}
}

func linkPath(name string) string {
	return pathRoot + name
}

func addrPath(link string, a netip.Prefix) string {
	return fmt.Sprintf("%s/ip/%s-%d", linkPath(link), a.Addr(), a.Bits())
}

func neighPath(link string, ip netip.Addr) string {
	return fmt.Sprintf("%s/neigh/%s", linkPath(link), ip)
}

// parsePath splits an object path into the link name and the entity suffix.
// The suffix is empty for link objects.
func parsePath(path string) (link, kind, id string, err error) {
	rest, ok := strings.CutPrefix(path, pathRoot)
	if !ok {
		return "", "", "", fmt.Errorf("%w: %s", netcfg.ErrNoSuchObject, path)
	}
	parts := strings.SplitN(rest, "/", 3)
	switch len(parts) {
	case 1:
		return parts[0], "", "", nil
	case 3:
		return parts[0], parts[1], parts[2], nil
	}
	return "", "", "", fmt.Errorf("%w: %s", netcfg.ErrNoSuchObject, path)
}

func isVLANLink(link netlink.Link) bool {
	_, ok := link.(*netlink.Vlan)
	return ok
}

// GetSubTree enumerates all objects implementing any of the requested
// capability interfaces.
func (c *Client) GetSubTree(interfaces ...string) (netcfg.ObjectTree, error) {
	tree := make(netcfg.ObjectTree)
	add := func(path string, ifaces ...string) {
		if tree[path] == nil {
			tree[path] = make(map[string][]string)
		}
		tree[path][Service] = append(tree[path][Service], ifaces...)
	}

	want := make(map[string]bool, len(interfaces))
	for _, i := range interfaces {
		want[i] = true
	}

	links, err := netlink.LinkList()
	if err != nil {
		return nil, fmt.Errorf("listing links: %w", err)
	}
	// Deletable is not a kind of its own: it selects the VLAN links,
	// addresses and neighbors that also advertise it.
	deletable := want[netcfg.InterfaceDeletable]

	for _, link := range links {
		attrs := link.Attrs()
		if attrs.Flags&net.FlagLoopback != 0 {
			continue
		}
		if want[netcfg.InterfaceEthernet] || want[netcfg.InterfaceVLAN] || (deletable && isVLANLink(link)) {
			ifaces := []string{netcfg.InterfaceEthernet}
			if isVLANLink(link) {
				ifaces = append(ifaces, netcfg.InterfaceVLAN, netcfg.InterfaceDeletable)
			}
			add(linkPath(attrs.Name), ifaces...)
		}
		if want[netcfg.InterfaceIP] || deletable {
			addrs, err := c.linkAddrs(link)
			if err != nil {
				return nil, err
			}
			for _, a := range addrs {
				add(addrPath(attrs.Name, a.prefix), netcfg.InterfaceIP, netcfg.InterfaceDeletable)
			}
		}
		if want[netcfg.InterfaceNeighbor] || deletable {
			neighs, err := c.linkNeighbors(link)
			if err != nil {
				return nil, err
			}
			for _, n := range neighs {
				add(neighPath(attrs.Name, n.ip), netcfg.InterfaceNeighbor, netcfg.InterfaceDeletable)
			}
		}
	}
	if want[netcfg.InterfaceSystemConfig] {
		add(netcfg.SystemConfigPath, netcfg.InterfaceSystemConfig)
	}
	return tree, nil
}

type hostAddr struct {
	prefix netip.Prefix
	origin netcfg.Origin
}

func (c *Client) linkAddrs(link netlink.Link) ([]hostAddr, error) {
	raw, err := netlink.AddrList(link, netlink.FAMILY_ALL)
	if err != nil {
		return nil, fmt.Errorf("listing addresses on %s: %w", link.Attrs().Name, err)
	}
	out := make([]hostAddr, 0, len(raw))
	for _, a := range raw {
		addr, ok := netip.AddrFromSlice(a.IP)
		if !ok {
			continue
		}
		addr = addr.Unmap()
		if addr.IsLinkLocalUnicast() {
			continue
		}
		ones, _ := a.Mask.Size()
		out = append(out, hostAddr{
			prefix: netip.PrefixFrom(addr, ones),
			origin: addrOrigin(addr, a.Flags),
		})
	}
	return out, nil
}

// addrOrigin derives the configuration origin from kernel address flags.
// Permanent addresses were explicitly configured; the rest were learned, by
// SLAAC for IPv6 and by a DHCP lease for IPv4.
func addrOrigin(addr netip.Addr, flags int) netcfg.Origin {
	if flags&unix.IFA_F_PERMANENT != 0 {
		return netcfg.OriginStatic
	}
	if addr.Is6() && !addr.Is4In6() {
		return netcfg.OriginSLAAC
	}
	return netcfg.OriginDHCP
}

type hostNeigh struct {
	ip  netip.Addr
	mac net.HardwareAddr
}

func (c *Client) linkNeighbors(link netlink.Link) ([]hostNeigh, error) {
	raw, err := netlink.NeighList(link.Attrs().Index, netlink.FAMILY_ALL)
	if err != nil {
		return nil, fmt.Errorf("listing neighbors on %s: %w", link.Attrs().Name, err)
	}
	out := make([]hostNeigh, 0, len(raw))
	for _, n := range raw {
		if n.State&netlink.NUD_PERMANENT == 0 {
			continue
		}
		ip, ok := netip.AddrFromSlice(n.IP)
		if !ok {
			continue
		}
		out = append(out, hostNeigh{ip: ip.Unmap(), mac: n.HardwareAddr})
	}
	return out, nil
}

func (c *Client) findAddr(link netlink.Link, want netip.Prefix) (*netlink.Addr, error) {
	raw, err := netlink.AddrList(link, netlink.FAMILY_ALL)
	if err != nil {
		return nil, fmt.Errorf("listing addresses on %s: %w", link.Attrs().Name, err)
	}
	for i, a := range raw {
		addr, ok := netip.AddrFromSlice(a.IP)
		if !ok {
			continue
		}
		ones, _ := a.Mask.Size()
		if addr.Unmap() == want.Addr() && ones == want.Bits() {
			return &raw[i], nil
		}
	}
	return nil, fmt.Errorf("%w: no address %s on %s", netcfg.ErrNoSuchObject, want, link.Attrs().Name)
}

func (c *Client) findNeigh(link netlink.Link, want netip.Addr) (*netlink.Neigh, error) {
	raw, err := netlink.NeighList(link.Attrs().Index, netlink.FAMILY_ALL)
	if err != nil {
		return nil, fmt.Errorf("listing neighbors on %s: %w", link.Attrs().Name, err)
	}
	for i, n := range raw {
		ip, ok := netip.AddrFromSlice(n.IP)
		if ok && ip.Unmap() == want {
			return &raw[i], nil
		}
	}
	return nil, fmt.Errorf("%w: no neighbor %s on %s", netcfg.ErrNoSuchObject, want, link.Attrs().Name)
}

func parseAddrID(id string) (netip.Prefix, error) {
	addrStr, prefixStr, ok := strings.Cut(id, "-")
	if !ok {
		return netip.Prefix{}, fmt.Errorf("%w: malformed address id %q", netcfg.ErrNoSuchObject, id)
	}
	addr, err := netip.ParseAddr(addrStr)
	if err != nil {
		return netip.Prefix{}, fmt.Errorf("%w: %s", netcfg.ErrNoSuchObject, id)
	}
	bits, err := strconv.Atoi(prefixStr)
	if err != nil {
		return netip.Prefix{}, fmt.Errorf("%w: %s", netcfg.ErrNoSuchObject, id)
	}
	return netip.PrefixFrom(addr, bits), nil
}

// GetProperty reads one property of the object at path.
func (c *Client) GetProperty(service, path, iface, name string) (any, error) {
	if path == netcfg.SystemConfigPath {
		return c.state.gateway(name)
	}
	linkName, kind, id, err := parsePath(path)
	if err != nil {
		return nil, err
	}
	switch kind {
	case "":
		return c.linkProperty(linkName, name)
	case "ip":
		return c.addrProperty(linkName, id, name)
	case "neigh":
		return c.neighProperty(linkName, id, name)
	}
	return nil, fmt.Errorf("%w: %s", netcfg.ErrNoSuchObject, path)
}

func (c *Client) linkProperty(linkName, name string) (any, error) {
	link, err := netlink.LinkByName(linkName)
	if err != nil {
		return nil, fmt.Errorf("%w: link %s", netcfg.ErrNoSuchObject, linkName)
	}
	switch name {
	case netcfg.PropDHCPEnabled:
		return c.state.dhcpMode(linkName)
	case netcfg.PropMACAddress:
		return link.Attrs().HardwareAddr.String(), nil
	case netcfg.PropVLANID:
		vlan, ok := link.(*netlink.Vlan)
		if !ok {
			return nil, fmt.Errorf("%w: %s is not a VLAN link", netcfg.ErrInternal, linkName)
		}
		return uint32(vlan.VlanId), nil
	}
	return nil, fmt.Errorf("%w: unknown link property %s", netcfg.ErrInternal, name)
}

func (c *Client) addrProperty(linkName, id, name string) (any, error) {
	prefix, err := parseAddrID(id)
	if err != nil {
		return nil, err
	}
	switch name {
	case netcfg.PropAddrType:
		if prefix.Addr().Is4() {
			return "ipv4", nil
		}
		return "ipv6", nil
	case netcfg.PropAddrAddress:
		return prefix.Addr().String(), nil
	case netcfg.PropAddrPrefix:
		return uint8(prefix.Bits()), nil
	case netcfg.PropAddrOrigin:
		link, err := netlink.LinkByName(linkName)
		if err != nil {
			return nil, fmt.Errorf("%w: link %s", netcfg.ErrNoSuchObject, linkName)
		}
		a, err := c.findAddr(link, prefix)
		if err != nil {
			return nil, err
		}
		return addrOrigin(prefix.Addr(), a.Flags).String(), nil
	}
	return nil, fmt.Errorf("%w: unknown address property %s", netcfg.ErrInternal, name)
}

func (c *Client) neighProperty(linkName, id, name string) (any, error) {
	ip, err := netip.ParseAddr(id)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed neighbor id %q", netcfg.ErrNoSuchObject, id)
	}
	switch name {
	case netcfg.PropNeighIPAddress:
		return ip.String(), nil
	case netcfg.PropNeighMACAddress:
		link, err := netlink.LinkByName(linkName)
		if err != nil {
			return nil, fmt.Errorf("%w: link %s", netcfg.ErrNoSuchObject, linkName)
		}
		n, err := c.findNeigh(link, ip)
		if err != nil {
			return nil, err
		}
		return n.HardwareAddr.String(), nil
	}
	return nil, fmt.Errorf("%w: unknown neighbor property %s", netcfg.ErrInternal, name)
}

// SetProperty writes one property of the object at path.
func (c *Client) SetProperty(service, path, iface, name string, value any) error {
	if path == netcfg.SystemConfigPath {
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("%w: gateway value must be a string", netcfg.ErrInternal)
		}
		return c.state.setGateway(name, s)
	}
	linkName, kind, _, err := parsePath(path)
	if err != nil {
		return err
	}
	if kind != "" {
		return fmt.Errorf("%w: no writable properties on %s", netcfg.ErrInternal, path)
	}
	switch name {
	case netcfg.PropDHCPEnabled:
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("%w: DHCP mode must be a string", netcfg.ErrInternal)
		}
		c.log.Info("setting DHCP mode", "link", linkName, "mode", s)
		return c.state.setDHCPMode(linkName, s)
	case netcfg.PropMACAddress:
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("%w: MAC must be a string", netcfg.ErrInternal)
		}
		mac, err := net.ParseMAC(s)
		if err != nil {
			return fmt.Errorf("%w: %v", netcfg.ErrInternal, err)
		}
		link, err := netlink.LinkByName(linkName)
		if err != nil {
			return fmt.Errorf("%w: link %s", netcfg.ErrNoSuchObject, linkName)
		}
		c.log.Info("setting MAC address", "link", linkName, "mac", s)
		if err := netlink.LinkSetHardwareAddr(link, mac); err != nil {
			return fmt.Errorf("setting MAC on %s: %w", linkName, err)
		}
		return nil
	}
	return fmt.Errorf("%w: unknown property %s", netcfg.ErrInternal, name)
}

// Delete removes the address, neighbor or VLAN link at path.
func (c *Client) Delete(service, path string) error {
	linkName, kind, id, err := parsePath(path)
	if err != nil {
		return err
	}
	link, err := netlink.LinkByName(linkName)
	if err != nil {
		return fmt.Errorf("%w: link %s", netcfg.ErrNoSuchObject, linkName)
	}
	switch kind {
	case "":
		if !isVLANLink(link) {
			return fmt.Errorf("%w: refusing to delete physical link %s", netcfg.ErrInternal, linkName)
		}
		c.log.Info("deleting VLAN link", "link", linkName)
		if err := netlink.LinkDel(link); err != nil {
			return fmt.Errorf("deleting link %s: %w", linkName, err)
		}
		return c.state.deleteDHCPMode(linkName)
	case "ip":
		prefix, err := parseAddrID(id)
		if err != nil {
			return err
		}
		a, err := c.findAddr(link, prefix)
		if err != nil {
			return err
		}
		if err := netlink.AddrDel(link, a); err != nil {
			return fmt.Errorf("deleting address %s: %w", prefix, err)
		}
		return nil
	case "neigh":
		ip, err := netip.ParseAddr(id)
		if err != nil {
			return fmt.Errorf("%w: malformed neighbor id %q", netcfg.ErrNoSuchObject, id)
		}
		n, err := c.findNeigh(link, ip)
		if err != nil {
			return err
		}
		if err := netlink.NeighDel(n); err != nil {
			return fmt.Errorf("deleting neighbor %s: %w", ip, err)
		}
		return nil
	}
	return fmt.Errorf("%w: %s", netcfg.ErrNoSuchObject, path)
}

// CreateIP adds an address to the link at ifPath.
func (c *Client) CreateIP(service, ifPath, protocol, address string, prefix uint8) error {
	linkName, kind, _, err := parsePath(ifPath)
	if err != nil || kind != "" {
		return fmt.Errorf("%w: %s is not a link", netcfg.ErrNoSuchObject, ifPath)
	}
	link, err := netlink.LinkByName(linkName)
	if err != nil {
		return fmt.Errorf("%w: link %s", netcfg.ErrNoSuchObject, linkName)
	}
	addr, err := netlink.ParseAddr(fmt.Sprintf("%s/%d", address, prefix))
	if err != nil {
		return fmt.Errorf("%w: %v", netcfg.ErrInternal, err)
	}
	c.log.Info("adding address", "link", linkName, "address", address, "prefix", prefix)
	if err := netlink.AddrAdd(link, addr); err != nil {
		return fmt.Errorf("adding address %s/%d: %w", address, prefix, err)
	}
	return nil
}

// CreateVLAN creates a VLAN sub-interface on the named link and returns its
// object path.
func (c *Client) CreateVLAN(service, ifname string, id uint32) (string, error) {
	parent, err := netlink.LinkByName(ifname)
	if err != nil {
		return "", fmt.Errorf("%w: link %s", netcfg.ErrNoSuchObject, ifname)
	}
	name := fmt.Sprintf("%s.%d", ifname, id)
	vlan := &netlink.Vlan{
		LinkAttrs: netlink.LinkAttrs{Name: name, ParentIndex: parent.Attrs().Index},
		VlanId:    int(id),
	}
	c.log.Info("creating VLAN link", "link", name, "id", id)
	if err := netlink.LinkAdd(vlan); err != nil {
		return "", fmt.Errorf("creating VLAN %s: %w", name, err)
	}
	if err := netlink.LinkSetUp(vlan); err != nil {
		return "", fmt.Errorf("bringing up VLAN %s: %w", name, err)
	}
	return linkPath(name), nil
}

// CreateNeighbor pins a permanent neighbor entry on the link at ifPath.
func (c *Client) CreateNeighbor(service, ifPath, ip, mac string) error {
	linkName, kind, _, err := parsePath(ifPath)
	if err != nil || kind != "" {
		return fmt.Errorf("%w: %s is not a link", netcfg.ErrNoSuchObject, ifPath)
	}
	link, err := netlink.LinkByName(linkName)
	if err != nil {
		return fmt.Errorf("%w: link %s", netcfg.ErrNoSuchObject, linkName)
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return fmt.Errorf("%w: %v", netcfg.ErrInternal, err)
	}
	hw, err := net.ParseMAC(mac)
	if err != nil {
		return fmt.Errorf("%w: %v", netcfg.ErrInternal, err)
	}
	family := netlink.FAMILY_V4
	if addr.Is6() && !addr.Is4In6() {
		family = netlink.FAMILY_V6
	}
	c.log.Info("pinning neighbor", "link", linkName, "ip", ip, "mac", mac)
	err = netlink.NeighSet(&netlink.Neigh{
		LinkIndex:    link.Attrs().Index,
		Family:       family,
		State:        netlink.NUD_PERMANENT,
		IP:           net.IP(addr.AsSlice()),
		HardwareAddr: hw,
	})
	if err != nil {
		return fmt.Errorf("pinning neighbor %s: %w", ip, err)
	}
	return nil
}
