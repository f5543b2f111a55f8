// Package main implements the Door Control Container entry point: it
// wires config, audit, registry, pulse controller and the AGI server
// together and owns the process-wide logging setup.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/door-control/dcc/internal/agi"
	"github.com/door-control/dcc/internal/api"
	"github.com/door-control/dcc/internal/audit"
	"github.com/door-control/dcc/internal/auth"
	"github.com/door-control/dcc/internal/config"
	"github.com/door-control/dcc/internal/door"
)

// Version is the service version reported on the ops surface.
const Version = "1.0.0"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := pflag.String("config", config.DefaultPath, "path to the TOML configuration file")
	logLevel := pflag.String("log-level", "info", "log level: debug, info, warn or error")
	auditDir := pflag.String("audit-dir", "logs", "directory for the actuation audit trail")
	pflag.Parse()

	logger, err := newLogger(*logLevel)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	logger.Info("starting Door Control Container", "version", Version)

	// Startup failures are fatal: the container never serves requests
	// with a partial configuration.
	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	timing := config.LoadTiming()
	logger.Info("configuration loaded", "doors", len(cfg.Doors), "pulseHold", timing.PulseHold)

	auditLogger, err := audit.NewLogger(*auditDir)
	if err != nil {
		return err
	}

	registry := door.NewRegistry(cfg.Doors)
	controller := door.NewController(door.NewUDPSender, timing.PulseHold, logger)
	openHandler := door.NewOpenHandler(registry, controller, auditLogger, logger)

	// The digest pre-stage gates every route; the door and room paths
	// are one feature behind two historical names.
	router := agi.NewRouter().
		Use(auth.NewDigest(cfg.AGI.DigestSecret, timing.AuthTimeout, logger)).
		Route("/open_door/:name", openHandler).
		Route("/open_room/:name", openHandler)

	agiServer := agi.NewServer(router, logger, timing.SessionReadTimeout)

	serverErr := make(chan error, 2)
	go func() {
		logger.Info("AGI server listening", "addr", cfg.AGI.ListenAddr())
		if err := agiServer.ListenAndServe(cfg.AGI.ListenAddr()); err != nil {
			serverErr <- fmt.Errorf("AGI server: %w", err)
		}
	}()

	var opsServer *api.Server
	if cfg.Ops != nil {
		opsServer = api.NewServer(registry, Version, logger)
		go func() {
			logger.Info("ops HTTP server listening", "addr", cfg.Ops.ListenAddr())
			if err := opsServer.Start(cfg.Ops.ListenAddr()); err != nil {
				serverErr <- err
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-serverErr:
		logger.Error("server failed", "err", err)
	}

	// Graceful shutdown: let in-flight pulses finish their close frame.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timing.ShutdownGrace)
	defer cancel()

	if err := agiServer.Stop(shutdownCtx); err != nil {
		logger.Warn("AGI server did not drain cleanly", "err", err)
	}
	if opsServer != nil {
		if err := opsServer.Stop(shutdownCtx); err != nil {
			logger.Warn("ops server did not stop cleanly", "err", err)
		}
	}
	if err := auditLogger.Close(); err != nil {
		logger.Warn("closing audit log", "err", err)
	}

	logger.Info("Door Control Container shutdown complete")
	return nil
}

func newLogger(level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q", level)
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	return slog.New(handler), nil
}
