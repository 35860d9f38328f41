package netcfg_test

import (
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openbmc-go/netipmid/internal/netcfg"
	"github.com/openbmc-go/netipmid/internal/netcfg/netcfgtest"
)

// channelMap is a static ChannelLookup for tests.
type channelMap map[uint8]string

func (m channelMap) Name(channel uint8) string { return m[channel] }

func newTestClient(f *netcfgtest.Fake, channels channelMap) *netcfg.Client {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return netcfg.NewClient(f, channels, log)
}

func TestResolveChannel_PhysicalOnly(t *testing.T) {
	f := netcfgtest.New()
	ethPath := f.AddEthernet("eth0", "02:00:00:00:00:01")
	c := newTestClient(f, channelMap{1: "eth0"})

	params, err := c.ResolveChannel(1)
	require.NoError(t, err)
	assert.Equal(t, uint8(1), params.ID)
	assert.Equal(t, "eth0", params.IfName)
	assert.Equal(t, netcfgtest.Service, params.Service)
	assert.Equal(t, ethPath, params.IfPath)
	assert.Equal(t, ethPath, params.LogicalPath, "logical path falls back to physical")
}

func TestResolveChannel_WithVLAN(t *testing.T) {
	f := netcfgtest.New()
	ethPath := f.AddEthernet("eth0", "02:00:00:00:00:01")
	vlanPath, err := f.CreateVLAN(netcfgtest.Service, "eth0", 100)
	require.NoError(t, err)
	c := newTestClient(f, channelMap{1: "eth0"})

	params, err := c.ResolveChannel(1)
	require.NoError(t, err)
	assert.Equal(t, ethPath, params.IfPath)
	assert.Equal(t, vlanPath, params.LogicalPath)
}

func TestResolveChannel_NotFound(t *testing.T) {
	f := netcfgtest.New()
	f.AddEthernet("eth0", "02:00:00:00:00:01")
	c := newTestClient(f, channelMap{1: "eth0"})

	_, err := c.ResolveChannel(9)
	assert.ErrorIs(t, err, netcfg.ErrNotFound, "unknown channel")

	c2 := newTestClient(netcfgtest.New(), channelMap{1: "eth0"})
	_, err = c2.ResolveChannel(1)
	assert.ErrorIs(t, err, netcfg.ErrNotFound, "no interface object")
}

func TestDHCPModeReadWrite(t *testing.T) {
	f := netcfgtest.New()
	f.AddEthernet("eth0", "02:00:00:00:00:01")
	c := newTestClient(f, channelMap{1: "eth0"})
	params, err := c.ResolveChannel(1)
	require.NoError(t, err)

	mode, err := c.DHCPMode(params)
	require.NoError(t, err)
	assert.Equal(t, netcfg.DHCPNone, mode)

	require.NoError(t, c.SetDHCPv4Mode(params, netcfg.DHCPv4))
	mode, err = c.DHCPMode(params)
	require.NoError(t, err)
	assert.Equal(t, netcfg.DHCPv4, mode)

	// v6 enable merges with the v4 bit
	require.NoError(t, c.SetDHCPv6Mode(params, netcfg.DHCPv6, true))
	mode, err = c.DHCPMode(params)
	require.NoError(t, err)
	assert.Equal(t, netcfg.DHCPBoth, mode)

	// non-merged write is verbatim
	require.NoError(t, c.SetDHCPv6Mode(params, netcfg.DHCPv6, false))
	mode, err = c.DHCPMode(params)
	require.NoError(t, err)
	assert.Equal(t, netcfg.DHCPv6, mode)
}

func TestMACReadWrite(t *testing.T) {
	f := netcfgtest.New()
	f.AddEthernet("eth0", "02:00:00:00:00:01")
	c := newTestClient(f, channelMap{1: "eth0"})
	params, err := c.ResolveChannel(1)
	require.NoError(t, err)

	mac, err := c.MAC(params)
	require.NoError(t, err)
	assert.Equal(t, "02:00:00:00:00:01", mac.String())

	newMAC, _ := net.ParseMAC("02:00:00:00:00:02")
	require.NoError(t, c.SetMAC(params, newMAC))
	mac, err = c.MAC(params)
	require.NoError(t, err)
	assert.Equal(t, newMAC, mac)
}

func TestIfAddr4(t *testing.T) {
	f := netcfgtest.New()
	ethPath := f.AddEthernet("eth0", "02:00:00:00:00:01")
	c := newTestClient(f, channelMap{1: "eth0"})
	params, err := c.ResolveChannel(1)
	require.NoError(t, err)

	ifaddr, err := c.IfAddr4(params)
	require.NoError(t, err)
	assert.Nil(t, ifaddr, "absence is not an error")

	f.AddAddress(ethPath, "ipv4", "192.168.0.10", 24, netcfg.OriginStatic)
	ifaddr, err = c.IfAddr4(params)
	require.NoError(t, err)
	require.NotNil(t, ifaddr)
	assert.Equal(t, netip.MustParseAddr("192.168.0.10"), ifaddr.Address)
	assert.Equal(t, uint8(24), ifaddr.Prefix)
	assert.Equal(t, netcfg.OriginStatic, ifaddr.Origin)
}

func TestIfAddr_IPv6IndexAndOriginFilter(t *testing.T) {
	f := netcfgtest.New()
	ethPath := f.AddEthernet("eth0", "02:00:00:00:00:01")
	f.AddAddress(ethPath, "ipv6", "fd00::1", 64, netcfg.OriginStatic)
	f.AddAddress(ethPath, "ipv6", "2001:db8::5", 64, netcfg.OriginSLAAC)
	f.AddAddress(ethPath, "ipv6", "fd00::2", 64, netcfg.OriginStatic)
	c := newTestClient(f, channelMap{1: "eth0"})
	params, err := c.ResolveChannel(1)
	require.NoError(t, err)

	// static query skips the SLAAC entry
	ifaddr, err := c.IfAddr(params, netcfg.IPv6, 1, netcfg.OriginsV6Static)
	require.NoError(t, err)
	require.NotNil(t, ifaddr)
	assert.Equal(t, netip.MustParseAddr("fd00::2"), ifaddr.Address)

	// dynamic query sees only the SLAAC entry
	ifaddr, err = c.IfAddr(params, netcfg.IPv6, 0, netcfg.OriginsV6Dynamic)
	require.NoError(t, err)
	require.NotNil(t, ifaddr)
	assert.Equal(t, netip.MustParseAddr("2001:db8::5"), ifaddr.Address)

	ifaddr, err = c.IfAddr(params, netcfg.IPv6, 2, netcfg.OriginsV6Static)
	require.NoError(t, err)
	assert.Nil(t, ifaddr)
}

func TestReconfigureIfAddr4_CarriesOverMissingFields(t *testing.T) {
	f := netcfgtest.New()
	ethPath := f.AddEthernet("eth0", "02:00:00:00:00:01")
	f.AddAddress(ethPath, "ipv4", "192.168.0.10", 24, netcfg.OriginStatic)
	c := newTestClient(f, channelMap{1: "eth0"})
	params, err := c.ResolveChannel(1)
	require.NoError(t, err)

	// new address, prefix carried over
	addr := netip.MustParseAddr("192.168.0.20")
	require.NoError(t, c.ReconfigureIfAddr4(params, &addr, nil))
	ifaddr, err := c.IfAddr4(params)
	require.NoError(t, err)
	require.NotNil(t, ifaddr)
	assert.Equal(t, addr, ifaddr.Address)
	assert.Equal(t, uint8(24), ifaddr.Prefix)

	// new prefix, address carried over
	prefix := uint8(16)
	require.NoError(t, c.ReconfigureIfAddr4(params, nil, &prefix))
	ifaddr, err = c.IfAddr4(params)
	require.NoError(t, err)
	require.NotNil(t, ifaddr)
	assert.Equal(t, addr, ifaddr.Address)
	assert.Equal(t, uint8(16), ifaddr.Prefix)
}

func TestReconfigureIfAddr4_NoAddressAnywhere(t *testing.T) {
	f := netcfgtest.New()
	f.AddEthernet("eth0", "02:00:00:00:00:01")
	c := newTestClient(f, channelMap{1: "eth0"})
	params, err := c.ResolveChannel(1)
	require.NoError(t, err)

	prefix := uint8(24)
	err = c.ReconfigureIfAddr4(params, nil, &prefix)
	assert.Error(t, err, "prefix-only write needs an existing address")
}

func TestReconfigureIfAddr4_ToleratesDeleteRaces(t *testing.T) {
	for _, injected := range []error{netcfg.ErrNoSuchObject, netcfg.ErrInternal} {
		f := netcfgtest.New()
		ethPath := f.AddEthernet("eth0", "02:00:00:00:00:01")
		addrPath := f.AddAddress(ethPath, "ipv4", "192.168.0.10", 24, netcfg.OriginStatic)
		f.DeleteErr[addrPath] = fmt.Errorf("delete: %w", injected)
		c := newTestClient(f, channelMap{1: "eth0"})
		params, err := c.ResolveChannel(1)
		require.NoError(t, err)

		addr := netip.MustParseAddr("192.168.0.20")
		assert.NoError(t, c.ReconfigureIfAddr4(params, &addr, nil), "injected %v", injected)
	}
}

func TestReconfigureIfAddr4_PropagatesOtherDeleteErrors(t *testing.T) {
	f := netcfgtest.New()
	ethPath := f.AddEthernet("eth0", "02:00:00:00:00:01")
	addrPath := f.AddAddress(ethPath, "ipv4", "192.168.0.10", 24, netcfg.OriginStatic)
	denied := fmt.Errorf("access denied")
	f.DeleteErr[addrPath] = denied
	c := newTestClient(f, channelMap{1: "eth0"})
	params, err := c.ResolveChannel(1)
	require.NoError(t, err)

	addr := netip.MustParseAddr("192.168.0.20")
	err = c.ReconfigureIfAddr4(params, &addr, nil)
	assert.ErrorIs(t, err, denied)
}

func TestReconfigureIfAddr6_ReplacesSlot(t *testing.T) {
	f := netcfgtest.New()
	ethPath := f.AddEthernet("eth0", "02:00:00:00:00:01")
	f.AddAddress(ethPath, "ipv6", "fd00::1", 64, netcfg.OriginStatic)
	f.AddAddress(ethPath, "ipv6", "fd00::2", 64, netcfg.OriginStatic)
	c := newTestClient(f, channelMap{1: "eth0"})
	params, err := c.ResolveChannel(1)
	require.NoError(t, err)

	addr := netip.MustParseAddr("fd00::99")
	require.NoError(t, c.ReconfigureIfAddr6(params, 1, addr, 80))

	ifaddr, err := c.IfAddr(params, netcfg.IPv6, 1, netcfg.OriginsV6Static)
	require.NoError(t, err)
	require.NotNil(t, ifaddr)
	assert.Equal(t, addr, ifaddr.Address)
	assert.Equal(t, uint8(80), ifaddr.Prefix)

	// slot 0 untouched
	ifaddr, err = c.IfAddr(params, netcfg.IPv6, 0, netcfg.OriginsV6Static)
	require.NoError(t, err)
	require.NotNil(t, ifaddr)
	assert.Equal(t, netip.MustParseAddr("fd00::1"), ifaddr.Address)
}

func TestDeconfigureIfAddr6(t *testing.T) {
	f := netcfgtest.New()
	ethPath := f.AddEthernet("eth0", "02:00:00:00:00:01")
	f.AddAddress(ethPath, "ipv6", "fd00::1", 64, netcfg.OriginStatic)
	c := newTestClient(f, channelMap{1: "eth0"})
	params, err := c.ResolveChannel(1)
	require.NoError(t, err)

	require.NoError(t, c.DeconfigureIfAddr6(params, 0))
	ifaddr, err := c.IfAddr(params, netcfg.IPv6, 0, netcfg.OriginsV6Static)
	require.NoError(t, err)
	assert.Nil(t, ifaddr)

	// removing an empty slot is a no-op
	require.NoError(t, c.DeconfigureIfAddr6(params, 0))
}

func TestGatewayReadWrite(t *testing.T) {
	f := netcfgtest.New()
	f.AddEthernet("eth0", "02:00:00:00:00:01")
	c := newTestClient(f, channelMap{1: "eth0"})
	params, err := c.ResolveChannel(1)
	require.NoError(t, err)

	_, ok, err := c.Gateway(params, netcfg.IPv4)
	require.NoError(t, err)
	assert.False(t, ok, "no gateway configured yet")

	gw4 := netip.MustParseAddr("192.168.0.1")
	require.NoError(t, c.SetGateway(params, netcfg.IPv4, gw4))
	got, ok, err := c.Gateway(params, netcfg.IPv4)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, gw4, got)

	gw6 := netip.MustParseAddr("fd00::1")
	require.NoError(t, c.SetGateway(params, netcfg.IPv6, gw6))
	got, ok, err = c.Gateway(params, netcfg.IPv6)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, gw6, got)
}

func TestReconfigureGatewayMAC(t *testing.T) {
	f := netcfgtest.New()
	f.AddEthernet("eth0", "02:00:00:00:00:01")
	c := newTestClient(f, channelMap{1: "eth0"})
	params, err := c.ResolveChannel(1)
	require.NoError(t, err)

	mac, _ := net.ParseMAC("02:aa:bb:cc:dd:ee")
	err = c.ReconfigureGatewayMAC(params, netcfg.IPv4, mac)
	assert.Error(t, err, "no gateway configured")

	require.NoError(t, c.SetGateway(params, netcfg.IPv4, netip.MustParseAddr("192.168.0.1")))
	require.NoError(t, c.ReconfigureGatewayMAC(params, netcfg.IPv4, mac))

	neighbor, err := c.GatewayNeighbor(params, netcfg.IPv4)
	require.NoError(t, err)
	require.NotNil(t, neighbor)
	assert.Equal(t, mac, neighbor.MAC)
	assert.Equal(t, netip.MustParseAddr("192.168.0.1"), neighbor.IP)

	// re-pinning replaces the entry
	mac2, _ := net.ParseMAC("02:11:22:33:44:55")
	require.NoError(t, c.ReconfigureGatewayMAC(params, netcfg.IPv4, mac2))
	neighbor, err = c.GatewayNeighbor(params, netcfg.IPv4)
	require.NoError(t, err)
	require.NotNil(t, neighbor)
	assert.Equal(t, mac2, neighbor.MAC)
}

func TestVLANID(t *testing.T) {
	f := netcfgtest.New()
	f.AddEthernet("eth0", "02:00:00:00:00:01")
	c := newTestClient(f, channelMap{1: "eth0"})
	params, err := c.ResolveChannel(1)
	require.NoError(t, err)

	vlan, err := c.VLANID(params)
	require.NoError(t, err)
	assert.Equal(t, uint16(0), vlan)

	_, err = f.CreateVLAN(netcfgtest.Service, "eth0", 100)
	require.NoError(t, err)
	params, err = c.ResolveChannel(1)
	require.NoError(t, err)
	vlan, err = c.VLANID(params)
	require.NoError(t, err)
	assert.Equal(t, uint16(100), vlan)
}

func TestReconfigureVLAN_PreservesState(t *testing.T) {
	f := netcfgtest.New()
	ethPath := f.AddEthernet("eth0", "02:00:00:00:00:01")
	f.AddAddress(ethPath, "ipv4", "192.168.0.10", 24, netcfg.OriginStatic)
	f.AddAddress(ethPath, "ipv6", "fd00::10", 64, netcfg.OriginStatic)
	f.AddAddress(ethPath, "ipv6", "fd00::11", 64, netcfg.OriginStatic)
	c := newTestClient(f, channelMap{1: "eth0"})
	params, err := c.ResolveChannel(1)
	require.NoError(t, err)

	require.NoError(t, c.SetDHCPv6Mode(params, netcfg.DHCPBoth, false))
	mac4, _ := net.ParseMAC("02:aa:00:00:00:04")
	mac6, _ := net.ParseMAC("02:aa:00:00:00:06")
	require.NoError(t, c.SetGateway(params, netcfg.IPv4, netip.MustParseAddr("192.168.0.1")))
	require.NoError(t, c.SetGateway(params, netcfg.IPv6, netip.MustParseAddr("fd00::1")))
	require.NoError(t, c.ReconfigureGatewayMAC(params, netcfg.IPv4, mac4))
	require.NoError(t, c.ReconfigureGatewayMAC(params, netcfg.IPv6, mac6))

	require.NoError(t, c.ReconfigureVLAN(params, 100))
	assert.Equal(t, "/network/eth0.100", params.LogicalPath)
	assert.Equal(t, ethPath, params.IfPath)

	// everything reads back identically under the new logical path
	mode, err := c.DHCPMode(params)
	require.NoError(t, err)
	assert.Equal(t, netcfg.DHCPBoth, mode)

	ifaddr, err := c.IfAddr4(params)
	require.NoError(t, err)
	require.NotNil(t, ifaddr)
	assert.Equal(t, netip.MustParseAddr("192.168.0.10"), ifaddr.Address)
	assert.Equal(t, uint8(24), ifaddr.Prefix)
	assert.Contains(t, ifaddr.Path, "eth0.100", "address recreated under the VLAN")

	for i, want := range []string{"fd00::10", "fd00::11"} {
		ifaddr6, err := c.IfAddr(params, netcfg.IPv6, uint8(i), netcfg.OriginsV6Static)
		require.NoError(t, err)
		require.NotNil(t, ifaddr6, "slot %d", i)
		assert.Equal(t, netip.MustParseAddr(want), ifaddr6.Address)
	}

	neighbor4, err := c.GatewayNeighbor(params, netcfg.IPv4)
	require.NoError(t, err)
	require.NotNil(t, neighbor4)
	assert.Equal(t, mac4, neighbor4.MAC)

	neighbor6, err := c.GatewayNeighbor(params, netcfg.IPv6)
	require.NoError(t, err)
	require.NotNil(t, neighbor6)
	assert.Equal(t, mac6, neighbor6.MAC)
}

func TestReconfigureVLAN_DisableRevertsToPhysical(t *testing.T) {
	f := netcfgtest.New()
	ethPath := f.AddEthernet("eth0", "02:00:00:00:00:01")
	c := newTestClient(f, channelMap{1: "eth0"})
	params, err := c.ResolveChannel(1)
	require.NoError(t, err)

	require.NoError(t, c.ReconfigureVLAN(params, 100))
	vlanPath := params.LogicalPath
	require.NotEqual(t, ethPath, vlanPath)

	require.NoError(t, c.ReconfigureVLAN(params, 0))
	assert.Equal(t, ethPath, params.LogicalPath)
	assert.False(t, f.HasObject(vlanPath), "VLAN object deleted")
}
