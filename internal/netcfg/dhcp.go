package netcfg

import "fmt"

// DHCPMode is the union of protocol families currently managed by DHCP.
// Static addressing for a family is implied by its absence.
type DHCPMode uint8

const (
	DHCPNone DHCPMode = iota
	DHCPv4
	DHCPv6
	DHCPBoth
)

var dhcpModeNames = map[DHCPMode]string{
	DHCPNone: "none",
	DHCPv4:   "v4",
	DHCPv6:   "v6",
	DHCPBoth: "both",
}

func (m DHCPMode) String() string {
	if s, ok := dhcpModeNames[m]; ok {
		return s
	}
	return fmt.Sprintf("dhcp(%d)", uint8(m))
}

// ParseDHCPMode converts the network service's mode string.
func ParseDHCPMode(s string) (DHCPMode, error) {
	for m, name := range dhcpModeNames {
		if name == s {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown DHCP mode %q", ErrInternal, s)
}

// V4 reports whether IPv4 is DHCP-managed in this mode.
func (m DHCPMode) V4() bool { return m == DHCPv4 || m == DHCPBoth }

// V6 reports whether IPv6 is DHCP-managed in this mode.
func (m DHCPMode) V6() bool { return m == DHCPv6 || m == DHCPBoth }

// NextDHCPv4Mode merges an IPv4-only request (DHCPv4 to enable, DHCPNone to
// disable) into the combined mode. The IPMI "IP Address Source" command only
// ever targets IPv4, so the other family's bit must survive the toggle.
func NextDHCPv4Mode(current, requested DHCPMode) DHCPMode {
	switch {
	case requested == DHCPv4 && current == DHCPv6:
		return DHCPBoth
	case requested == DHCPv4 && current == DHCPNone:
		return DHCPv4
	case requested == DHCPNone && current == DHCPBoth:
		return DHCPv6
	case requested == DHCPNone && current == DHCPv4:
		return DHCPNone
	default:
		return current
	}
}

// NextDHCPv6Mode is the v6 counterpart of NextDHCPv4Mode.
func NextDHCPv6Mode(current, requested DHCPMode) DHCPMode {
	switch {
	case requested == DHCPv6 && current == DHCPv4:
		return DHCPBoth
	case requested == DHCPv6 && current == DHCPNone:
		return DHCPv6
	case requested == DHCPNone && current == DHCPBoth:
		return DHCPv4
	case requested == DHCPNone && current == DHCPv6:
		return DHCPNone
	default:
		return current
	}
}

// DHCPMode reads the channel's combined DHCP mode.
func (c *Client) DHCPMode(params *ChannelParams) (DHCPMode, error) {
	s, err := stringProp(c.bus, params.Service, params.LogicalPath, InterfaceEthernet, PropDHCPEnabled)
	if err != nil {
		return 0, fmt.Errorf("reading DHCP mode: %w", err)
	}
	return ParseDHCPMode(s)
}

func (c *Client) writeDHCPMode(params *ChannelParams, mode DHCPMode) error {
	err := c.bus.SetProperty(params.Service, params.LogicalPath, InterfaceEthernet, PropDHCPEnabled, mode.String())
	if err != nil {
		return fmt.Errorf("writing DHCP mode %s: %w", mode, err)
	}
	return nil
}

// SetDHCPv4Mode applies an IPv4 DHCP request through the merge table.
func (c *Client) SetDHCPv4Mode(params *ChannelParams, requested DHCPMode) error {
	current, err := c.DHCPMode(params)
	if err != nil {
		return err
	}
	return c.writeDHCPMode(params, NextDHCPv4Mode(current, requested))
}

// SetDHCPv6Mode applies an IPv6 DHCP request. With merge set the request goes
// through the merge table; without it the requested mode is written verbatim,
// which is how VLAN reconfiguration forces an exact restore instead of
// merging against transient intermediate state.
func (c *Client) SetDHCPv6Mode(params *ChannelParams, requested DHCPMode, merge bool) error {
	next := requested
	if merge {
		current, err := c.DHCPMode(params)
		if err != nil {
			return err
		}
		next = NextDHCPv6Mode(current, requested)
	}
	return c.writeDHCPMode(params, next)
}
