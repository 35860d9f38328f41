package hostnet

import (
	"io"
	"log/slog"
	"net/netip"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/openbmc-go/netipmid/internal/netcfg"
)

func TestPaths(t *testing.T) {
	assert.Equal(t, "/network/eth0", linkPath("eth0"))
	assert.Equal(t, "/network/eth0/ip/192.168.0.10-24",
		addrPath("eth0", netip.MustParsePrefix("192.168.0.10/24")))
	assert.Equal(t, "/network/eth0/neigh/fd00::1",
		neighPath("eth0", netip.MustParseAddr("fd00::1")))
}

func TestParsePath(t *testing.T) {
	link, kind, id, err := parsePath("/network/eth0")
	require.NoError(t, err)
	assert.Equal(t, "eth0", link)
	assert.Empty(t, kind)
	assert.Empty(t, id)

	link, kind, id, err = parsePath("/network/eth0.100/ip/fd00::10-64")
	require.NoError(t, err)
	assert.Equal(t, "eth0.100", link)
	assert.Equal(t, "ip", kind)
	assert.Equal(t, "fd00::10-64", id)

	link, kind, id, err = parsePath("/network/eth0/neigh/192.168.0.1")
	require.NoError(t, err)
	assert.Equal(t, "eth0", link)
	assert.Equal(t, "neigh", kind)
	assert.Equal(t, "192.168.0.1", id)

	_, _, _, err = parsePath("/other/eth0")
	assert.ErrorIs(t, err, netcfg.ErrNoSuchObject)
	_, _, _, err = parsePath("/network/eth0/ip")
	assert.ErrorIs(t, err, netcfg.ErrNoSuchObject)
}

func TestParseAddrID(t *testing.T) {
	prefix, err := parseAddrID("192.168.0.10-24")
	require.NoError(t, err)
	assert.Equal(t, netip.MustParsePrefix("192.168.0.10/24"), prefix)

	prefix, err = parseAddrID("fd00::10-64")
	require.NoError(t, err)
	assert.Equal(t, netip.MustParsePrefix("fd00::10/64"), prefix)

	for _, id := range []string{"192.168.0.10", "notanip-24", "fd00::10-big"} {
		_, err = parseAddrID(id)
		assert.ErrorIs(t, err, netcfg.ErrNoSuchObject, "id %q", id)
	}
}

func TestAddrOrigin(t *testing.T) {
	v4 := netip.MustParseAddr("192.168.0.10")
	v6 := netip.MustParseAddr("2001:db8::5")

	assert.Equal(t, netcfg.OriginStatic, addrOrigin(v4, unix.IFA_F_PERMANENT))
	assert.Equal(t, netcfg.OriginStatic, addrOrigin(v6, unix.IFA_F_PERMANENT))
	assert.Equal(t, netcfg.OriginDHCP, addrOrigin(v4, 0))
	assert.Equal(t, netcfg.OriginSLAAC, addrOrigin(v6, 0))
}

// A Deletable-only query must return every object the per-capability queries
// report as deletable. ReconfigureVLAN tears down the old configuration by
// enumerating exactly this set, so reads go against the live kernel here.
func TestGetSubTree_DeletableMatchesPerCapabilityQueries(t *testing.T) {
	c := New(t.TempDir(), slog.New(slog.NewTextHandler(io.Discard, nil)))

	want := make(map[string][]string)
	for _, iface := range []string{
		netcfg.InterfaceVLAN, netcfg.InterfaceIP, netcfg.InterfaceNeighbor,
	} {
		tree, err := c.GetSubTree(iface)
		require.NoError(t, err)
		for path, services := range tree {
			if slices.Contains(services[Service], netcfg.InterfaceDeletable) {
				want[path] = services[Service]
			}
		}
	}

	tree, err := c.GetSubTree(netcfg.InterfaceDeletable)
	require.NoError(t, err)

	got := make(map[string][]string)
	for path, services := range tree {
		assert.Contains(t, services[Service], netcfg.InterfaceDeletable, "path %s", path)
		got[path] = services[Service]
	}
	assert.Equal(t, want, got)
}

func TestAddrPathRoundTrip(t *testing.T) {
	for _, prefix := range []string{"192.168.0.10/24", "fd00::10/64", "10.0.0.1/32"} {
		p := netip.MustParsePrefix(prefix)
		path := addrPath("eth0", p)
		_, kind, id, err := parsePath(path)
		require.NoError(t, err)
		require.Equal(t, "ip", kind)
		got, err := parseAddrID(id)
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}
}
