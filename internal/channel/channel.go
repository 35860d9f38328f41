// Package channel maps IPMI channel numbers to network interfaces and their
// session/medium capabilities.
package channel

import "github.com/openbmc-go/netipmid/internal/config"

// Provider answers channel metadata queries from a static channel map.
type Provider struct {
	channels map[uint8]config.ChannelConfig
}

// NewProvider creates a Provider over the parsed channel map.
func NewProvider(channels map[uint8]config.ChannelConfig) *Provider {
	return &Provider{channels: channels}
}

// Name returns the channel's interface name, empty for unknown channels.
func (p *Provider) Name(channel uint8) string {
	return p.channels[channel].Name
}

// IsValid reports whether the channel is configured.
func (p *Provider) IsValid(channel uint8) bool {
	_, ok := p.channels[channel]
	return ok
}

// IsLAN reports whether the channel's medium is 802.3 LAN.
func (p *Provider) IsLAN(channel uint8) bool {
	ch, ok := p.channels[channel]
	return ok && ch.Medium == "lan"
}

// HasSession reports whether the channel supports sessions.
func (p *Provider) HasSession(channel uint8) bool {
	ch, ok := p.channels[channel]
	return ok && ch.Session != "none" && ch.Session != ""
}
