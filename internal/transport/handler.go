package transport

import (
	"log/slog"
	"sync"

	"github.com/openbmc-go/netipmid/internal/cipher"
	"github.com/openbmc-go/netipmid/internal/ipmi"
	"github.com/openbmc-go/netipmid/internal/netcfg"
)

// ChannelMetadata is the channel lookup surface the host IPMI stack
// provides: number to interface name, validity, and session support.
type ChannelMetadata interface {
	Name(channel uint8) string
	IsValid(channel uint8) bool
	IsLAN(channel uint8) bool
	HasSession(channel uint8) bool
}

// SOLService reads and writes the serial-over-LAN settings owned by the host
// console service.
type SOLService interface {
	Progress(channel uint8) (uint8, error)
	SetProgress(channel uint8, v uint8) error
	Enabled(channel uint8) (bool, error)
	SetEnabled(channel uint8, v bool) error
	Privilege(channel uint8) (uint8, error)
	SetPrivilege(channel uint8, v uint8) error
	ForceAuthentication(channel uint8) (bool, error)
	ForceEncryption(channel uint8) (bool, error)
	Accumulate(channel uint8) (interval, threshold uint8, err error)
	SetAccumulate(channel uint8, interval, threshold uint8) error
	Retry(channel uint8) (count, intervalMS uint8, err error)
	SetRetry(channel uint8, count, intervalMS uint8) error
	BaudRate() (uint32, error)
}

// CipherStore persists the cipher-suite list and per-channel privilege table.
type CipherStore interface {
	Suites() ([]byte, error)
	Privileges(channel uint8) ([cipher.MaxRecords]uint8, error)
	SetPrivileges(channel uint8, privs [cipher.MaxRecords]uint8) error
}

// Handler dispatches Set/Get LAN and SOL configuration parameter commands.
// The Set-In-Progress status and last-disabled-VLAN memo are volatile,
// daemon-lifetime state owned here, keyed by channel.
type Handler struct {
	net      *netcfg.Client
	channels ChannelMetadata
	sol      SOLService
	ciphers  CipherStore
	oem      OEMHandler
	log      *slog.Logger

	mu               sync.Mutex
	setStatus        map[uint8]SetStatus
	lastDisabledVlan map[uint8]uint16
}

// Option configures a Handler.
type Option func(*Handler)

// WithOEMHandler installs a handler for OEM parameter ids 192-255.
func WithOEMHandler(oem OEMHandler) Option {
	return func(h *Handler) { h.oem = oem }
}

// NewHandler creates a Handler. The OEM hook defaults to "parameter not
// supported".
func NewHandler(net *netcfg.Client, channels ChannelMetadata, sol SOLService, ciphers CipherStore, log *slog.Logger, opts ...Option) *Handler {
	h := &Handler{
		net:              net,
		channels:         channels,
		sol:              sol,
		ciphers:          ciphers,
		oem:              notSupportedOEM{},
		log:              log,
		setStatus:        make(map[uint8]SetStatus),
		lastDisabledVlan: make(map[uint8]uint16),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register installs the Transport netfn commands on the router.
func (h *Handler) Register(r *ipmi.Router) {
	r.Register(ipmi.NetFnTransport, ipmi.CmdSetLANConfigParams, h.SetLAN)
	r.Register(ipmi.NetFnTransport, ipmi.CmdGetLANConfigParams, h.GetLAN)
	r.Register(ipmi.NetFnTransport, ipmi.CmdSetSOLConfigParams, h.SetSOL)
	r.Register(ipmi.NetFnTransport, ipmi.CmdGetSOLConfigParams, h.GetSOL)
}

func (h *Handler) getSetStatus(channel uint8) SetStatus {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.setStatus[channel]
}

func (h *Handler) putSetStatus(channel uint8, s SetStatus) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.setStatus[channel] = s
}

func (h *Handler) getLastDisabledVlan(channel uint8) uint16 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.lastDisabledVlan[channel]
}

func (h *Handler) putLastDisabledVlan(channel uint8, vlan uint16) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lastDisabledVlan[channel] = vlan
}

// channelLog returns a logger carrying channel identity for collaborator
// failure reports.
func (h *Handler) channelLog(channel uint8) *slog.Logger {
	return h.log.With("channel", channel, "ifname", h.channels.Name(channel))
}
