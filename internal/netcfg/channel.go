package netcfg

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

// ChannelParams identifies the network objects backing an IPMI channel.
// Resolved fresh for every command: the topology can change between calls,
// so these are never cached.
type ChannelParams struct {
	ID      uint8
	IfName  string
	Service string
	// IfPath is the physical ethernet interface object.
	IfPath string
	// LogicalPath is the addressable object: the VLAN sub-interface when one
	// exists, otherwise equal to IfPath.
	LogicalPath string
}

// ChannelLookup maps an IPMI channel number to its interface name. An empty
// name means the channel has no LAN interface.
type ChannelLookup interface {
	Name(channel uint8) string
}

// Client performs all per-channel network state operations against an
// ObjectClient.
type Client struct {
	bus      ObjectClient
	channels ChannelLookup
	log      *slog.Logger
}

// NewClient wires a Client to the network service and channel metadata.
func NewClient(bus ObjectClient, channels ChannelLookup, log *slog.Logger) *Client {
	return &Client{bus: bus, channels: channels, log: log}
}

// sortedPaths returns the tree's object paths in discovery order. The object
// tree has no stored order, so lexical path order stands in for it and keeps
// set-selector indexing stable across queries.
func sortedPaths(tree ObjectTree) []string {
	paths := make([]string, 0, len(tree))
	for p := range tree {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// ResolveChannel maps a channel number to its interface objects. The first
// Ethernet-but-not-VLAN object containing the interface name is the physical
// path, the first VLAN object is the logical path. Returns ErrNotFound when
// no physical interface object exists; a missing VLAN object is normal and
// the logical path falls back to the physical one.
func (c *Client) ResolveChannel(channel uint8) (*ChannelParams, error) {
	ifname := c.channels.Name(channel)
	if ifname == "" {
		return nil, fmt.Errorf("channel %d: %w", channel, ErrNotFound)
	}

	tree, err := c.bus.GetSubTree(InterfaceVLAN, InterfaceEthernet)
	if err != nil {
		return nil, fmt.Errorf("enumerating interfaces: %w", err)
	}

	params := ChannelParams{ID: channel, IfName: ifname}
	for _, path := range sortedPaths(tree) {
		if !strings.Contains(path, ifname) {
			continue
		}
		for service, intfs := range tree[path] {
			var vlan, ethernet bool
			for _, intf := range intfs {
				switch intf {
				case InterfaceVLAN:
					vlan = true
				case InterfaceEthernet:
					ethernet = true
				}
			}
			if params.Service == "" && (vlan || ethernet) {
				params.Service = service
			}
			if params.IfPath == "" && !vlan && ethernet {
				params.IfPath = path
			}
			if params.LogicalPath == "" && vlan {
				params.LogicalPath = path
			}
		}
	}

	if params.IfPath == "" {
		return nil, fmt.Errorf("channel %d (%s): %w", channel, ifname, ErrNotFound)
	}
	if params.LogicalPath == "" {
		params.LogicalPath = params.IfPath
	}
	return &params, nil
}

// objectsFor enumerates objects implementing iface whose path sits under the
// given parent path.
func (c *Client) objectsFor(tree ObjectTree, parent string) []string {
	var out []string
	for _, path := range sortedPaths(tree) {
		if strings.HasPrefix(path, parent+"/") {
			out = append(out, path)
		}
	}
	return out
}
