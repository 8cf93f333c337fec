// Command dnsrelayd runs a minimal authoritative-style DNS relay: it binds
// a single UDP socket, decodes each inbound datagram, forwards every
// question to one configured upstream resolver, and replies with the
// aggregated answers.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/arlobridge/dnsrelay/internal/dns/common/log"
	"github.com/arlobridge/dnsrelay/internal/dns/config"
	"github.com/arlobridge/dnsrelay/internal/dns/gateways/transport"
	"github.com/arlobridge/dnsrelay/internal/dns/services/forwarder"
)

const version = "0.1.0-dev"

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", version, err)
		os.Exit(1)
	}

	if err := log.Configure(cfg.Env, cfg.Log.Level); err != nil {
		fmt.Fprintf(os.Stderr, "logging configuration error: %v\n", err)
		os.Exit(1)
	}
	logger := log.GetLogger()

	logger.Info(map[string]any{
		"version":  version,
		"listen":   cfg.Listen,
		"upstream": cfg.Upstream.Address,
		"timeout":  cfg.Upstream.Timeout.String(),
		"buffer":   cfg.Buffer,
	}, "starting dns relay")

	fwd, err := forwarder.New(forwarder.Options{
		Upstream:   cfg.Upstream.Address,
		Timeout:    cfg.Upstream.Timeout,
		BufferSize: cfg.Buffer,
		Logger:     logger,
	})
	if err != nil {
		logger.Fatal(map[string]any{"error": err.Error()}, "failed to build forwarder")
	}

	server := transport.NewUDPTransport(cfg.Listen, cfg.Buffer, fwd, logger)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info(map[string]any{"signal": sig.String()}, "shutdown signal received")
		_ = server.Stop()
	}()

	if err := server.Serve(); err != nil {
		logger.Fatal(map[string]any{"error": err.Error()}, "dns relay stopped unexpectedly")
	}

	logger.Info(nil, "dns relay stopped")
}
