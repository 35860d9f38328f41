package main

import (
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/openbmc-go/netipmid/internal/channel"
	"github.com/openbmc-go/netipmid/internal/cipher"
	"github.com/openbmc-go/netipmid/internal/config"
	"github.com/openbmc-go/netipmid/internal/console"
	"github.com/openbmc-go/netipmid/internal/hostnet"
	"github.com/openbmc-go/netipmid/internal/ipmi"
	"github.com/openbmc-go/netipmid/internal/netcfg"
	"github.com/openbmc-go/netipmid/internal/sol"
	"github.com/openbmc-go/netipmid/internal/transport"
)

func main() {
	cfg := config.Load()
	log := newLogger(cfg.LogLevel)
	log.Info("netipmid starting")

	channels, err := config.LoadChannels(cfg.ChannelFile)
	if err != nil {
		log.Error("loading channel map", "file", cfg.ChannelFile, "error", err)
		os.Exit(1)
	}
	provider := channel.NewProvider(channels)

	bus := hostnet.New(cfg.StateDir, log.With("component", "hostnet"))
	netClient := netcfg.NewClient(bus, provider, log.With("component", "netcfg"))
	solState := sol.NewState(cfg.BaudRate)
	ciphers := cipher.NewStore(cfg.CipherFile, cfg.CipherDefaultFile, log.With("component", "cipher"))

	router := ipmi.NewRouter()
	ipmi.RegisterApp(router)
	handler := transport.NewHandler(netClient, provider, solState, ciphers, log.With("component", "transport"))
	handler.Register(router)

	server := ipmi.NewServer(router, log.With("component", "ipmi"))
	go func() {
		if err := server.ListenAndServe(cfg.IPMIAddr); err != nil {
			log.Error("IPMI server error", "error", err)
			os.Exit(1)
		}
	}()

	// SOL console bridge and metrics share one HTTP listener. The bridge is
	// mounted per LAN channel so the enable flag of the right channel gates
	// each path.
	r := mux.NewRouter()
	for id := range channels {
		if !provider.IsLAN(id) {
			continue
		}
		h := console.NewHandler(cfg.ConsoleSocket, id, solState, log.With("component", "console", "channel", id))
		r.HandleFunc("/console/"+provider.Name(id), h.ServeWebSocket)
	}
	r.Handle("/metrics", promhttp.Handler())

	httpServer := &http.Server{Addr: cfg.HTTPAddr, Handler: r}
	go func() {
		log.Info("HTTP server listening", "addr", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("netipmid shutting down")
	server.Close()
	httpServer.Close()
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
