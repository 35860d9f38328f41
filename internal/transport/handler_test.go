package transport

import (
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/openbmc-go/netipmid/internal/cipher"
	"github.com/openbmc-go/netipmid/internal/ipmi"
	"github.com/openbmc-go/netipmid/internal/netcfg"
	"github.com/openbmc-go/netipmid/internal/netcfg/netcfgtest"
	"github.com/openbmc-go/netipmid/internal/sol"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type testChannel struct {
	name    string
	lan     bool
	session bool
}

type testChannels map[uint8]testChannel

func (m testChannels) Name(channel uint8) string { return m[channel].name }

func (m testChannels) IsValid(channel uint8) bool {
	_, ok := m[channel]
	return ok
}

func (m testChannels) IsLAN(channel uint8) bool { return m[channel].lan }

func (m testChannels) HasSession(channel uint8) bool { return m[channel].session }

// testCiphers is an in-memory CipherStore with the persistent store's
// validation rules.
type testCiphers struct {
	suites []byte
	privs  map[uint8][cipher.MaxRecords]uint8
}

func newTestCiphers() *testCiphers {
	return &testCiphers{
		suites: []byte{0x00, 0x03, 0x11},
		privs:  make(map[uint8][cipher.MaxRecords]uint8),
	}
}

func (c *testCiphers) Suites() ([]byte, error) { return c.suites, nil }

func (c *testCiphers) Privileges(channel uint8) ([cipher.MaxRecords]uint8, error) {
	return c.privs[channel], nil
}

func (c *testCiphers) SetPrivileges(channel uint8, privs [cipher.MaxRecords]uint8) error {
	for i, p := range privs {
		if p > cipher.PrivOEM {
			return fmt.Errorf("%w: slot %d has level %d", cipher.ErrInvalidPrivilege, i, p)
		}
	}
	c.privs[channel] = privs
	return nil
}

type fixture struct {
	h       *Handler
	fake    *netcfgtest.Fake
	net     *netcfg.Client
	sol     *sol.State
	ciphers *testCiphers
	ethPath string
}

// newFixture builds a handler over an in-memory network service. Channel 1
// is a session-capable LAN channel on eth0, channel 2 a LAN channel without
// session support, channel 3 a non-LAN channel.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	fake := netcfgtest.New()
	ethPath := fake.AddEthernet("eth0", "02:00:00:00:00:01")
	fake.AddEthernet("eth1", "02:00:00:00:00:02")
	channels := testChannels{
		1: {name: "eth0", lan: true, session: true},
		2: {name: "eth1", lan: true, session: false},
		3: {name: "ipmb0", lan: false, session: false},
	}
	log := testLogger()
	net := netcfg.NewClient(fake, channels, log)
	solState := sol.NewState(115200)
	ciphers := newTestCiphers()
	return &fixture{
		h:       NewHandler(net, channels, solState, ciphers, log),
		fake:    fake,
		net:     net,
		sol:     solState,
		ciphers: ciphers,
		ethPath: ethPath,
	}
}

func setLANMsg(channel uint8, param LanParam, data ...byte) *ipmi.IPMIMessage {
	return &ipmi.IPMIMessage{
		Command: ipmi.CmdSetLANConfigParams,
		Data:    append([]byte{channel, uint8(param)}, data...),
	}
}

func getLANMsg(channel uint8, param LanParam, set, block uint8) *ipmi.IPMIMessage {
	return &ipmi.IPMIMessage{
		Command: ipmi.CmdGetLANConfigParams,
		Data:    []byte{channel, uint8(param), set, block},
	}
}

func setSOLMsg(channel uint8, param SolParam, data ...byte) *ipmi.IPMIMessage {
	return &ipmi.IPMIMessage{
		Command: ipmi.CmdSetSOLConfigParams,
		Data:    append([]byte{channel, uint8(param)}, data...),
	}
}

func getSOLMsg(channel uint8, param SolParam) *ipmi.IPMIMessage {
	return &ipmi.IPMIMessage{
		Command: ipmi.CmdGetSOLConfigParams,
		Data:    []byte{channel, uint8(param), 0, 0},
	}
}
