// Package console bridges the host serial console to WebSocket clients,
// giving the SOL settings served over IPMI a live console to govern.
package console

import (
	"log/slog"
	"net"
	"net/http"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin:     func(r *http.Request) bool { return true },
	Subprotocols:    []string{"binary"},
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
}

// EnableChecker gates console access on the channel's SOL enable setting.
type EnableChecker interface {
	Enabled(channel uint8) (bool, error)
}

// Handler proxies WebSocket connections to the host console unix socket.
type Handler struct {
	socketPath string
	channel    uint8
	sol        EnableChecker
	log        *slog.Logger
}

// NewHandler creates a Handler bridging to the console socket, honoring the
// SOL enable flag of the given channel.
func NewHandler(socketPath string, channel uint8, sol EnableChecker, log *slog.Logger) *Handler {
	return &Handler{socketPath: socketPath, channel: channel, sol: sol, log: log}
}

// ServeWebSocket upgrades the HTTP connection and proxies data
// bidirectionally to the console socket.
func (h *Handler) ServeWebSocket(w http.ResponseWriter, r *http.Request) {
	enabled, err := h.sol.Enabled(h.channel)
	if err != nil {
		h.log.Error("console: reading SOL enable", "error", err)
		http.Error(w, "console unavailable", http.StatusInternalServerError)
		return
	}
	if !enabled {
		http.Error(w, "serial over LAN is disabled", http.StatusForbidden)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("console: WebSocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	serial, err := net.Dial("unix", h.socketPath)
	if err != nil {
		h.log.Error("console: connecting to console socket", "path", h.socketPath, "error", err)
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "console unavailable"))
		return
	}
	defer serial.Close()

	done := make(chan struct{}, 2)

	// console -> WebSocket
	go func() {
		defer func() { done <- struct{}{} }()
		buf := make([]byte, 4096)
		for {
			n, err := serial.Read(buf)
			if n > 0 {
				if werr := conn.WriteMessage(websocket.BinaryMessage, buf[:n]); werr != nil {
					return
				}
			}
			if err != nil {
				return
			}
		}
	}()

	// WebSocket -> console
	go func() {
		defer func() { done <- struct{}{} }()
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if _, werr := serial.Write(msg); werr != nil {
				return
			}
		}
	}()

	<-done
}
