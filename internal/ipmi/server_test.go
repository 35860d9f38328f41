package ipmi

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestServer_HandleMessage_DispatchesCommand(t *testing.T) {
	router := NewRouter()
	router.Register(NetFnTransport, CmdGetLANConfigParams, func(msg *IPMIMessage) (CompletionCode, []byte) {
		assert.Equal(t, []byte{0x01, 0x00, 0x00, 0x00}, msg.Data)
		return CompletionCodeOK, []byte{0x11, 0x00}
	})
	server := NewServer(router, testLogger())

	req := SerializeIPMIRequest(NetFnTransport, CmdGetLANConfigParams, []byte{0x01, 0x00, 0x00, 0x00}, 0)
	resp, err := server.HandleMessage(req)
	require.NoError(t, err)
	require.NotNil(t, resp)

	assert.Equal(t, byte(RMCPVersion1), resp[0])
	assert.Equal(t, byte(RMCPClassIPMI), resp[3])

	_, payload, err := ParseRMCPMessage(resp)
	require.NoError(t, err)
	_, msg, err := ParseIPMI15Message(payload)
	require.NoError(t, err)
	assert.Equal(t, uint8(NetFnTransport|0x01), msg.GetNetFn())
	assert.Equal(t, uint8(CompletionCodeOK), msg.Data[0])
	assert.Equal(t, []byte{0x11, 0x00}, msg.Data[1:])
}

func TestServer_HandleMessage_ASFPing(t *testing.T) {
	server := NewServer(NewRouter(), testLogger())

	ping := []byte{
		RMCPVersion1, 0x00, 0xFF, RMCPClassASF,
		0x00, 0x00, 0x11, 0xBE, // IANA
		0x80, // Presence Ping
		0x42, // tag
		0x00, 0x00,
	}
	resp, err := server.HandleMessage(ping)
	require.NoError(t, err)
	require.Len(t, resp, 28)
	assert.Equal(t, byte(RMCPClassASF), resp[3])
	assert.Equal(t, byte(0x40), resp[8], "presence pong")
	assert.Equal(t, byte(0x42), resp[9], "tag echoed")
}

func TestServer_HandleMessage_Garbage(t *testing.T) {
	server := NewServer(NewRouter(), testLogger())
	_, err := server.HandleMessage([]byte{0x01, 0x02})
	assert.Error(t, err)
}
