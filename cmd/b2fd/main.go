// Command b2fd runs a Winlink B2F forwarding server: it accepts inbound
// TCP connections, walks peers through the callsign/password/proposal
// dialog, and persists accepted messages under a mailbox directory.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/n0call/b2fd/internal/b2f"
	"github.com/n0call/b2fd/internal/config"
	"github.com/n0call/b2fd/internal/logging"
	"github.com/n0call/b2fd/internal/mailbox"
	"github.com/n0call/b2fd/internal/metrics"
	"github.com/n0call/b2fd/internal/server"
	"github.com/n0call/b2fd/internal/users"
)

func main() {
	flags := config.ParseFlags()

	cfg, err := config.LoadWithFlags(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg.LogLevel)

	var collector metrics.Collector = &metrics.NoopCollector{}
	if cfg.Metrics.Enabled {
		collector = metrics.NewPrometheusCollector(prometheus.DefaultRegisterer)
	}

	userDir, err := users.Load(cfg.Users)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading user directory: %v\n", err)
		os.Exit(1)
	}
	logger.Info("user directory loaded", slog.String("path", cfg.Users), slog.Int("count", userDir.Len()))

	store, err := mailbox.New(cfg.Mailbox.Path, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error opening mailbox store: %v\n", err)
		os.Exit(1)
	}
	logger.Info("mailbox store ready", slog.String("path", cfg.Mailbox.Path))

	srv, err := server.New(server.Config{
		Cfg:    &cfg,
		Logger: logger,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error creating server: %v\n", err)
		os.Exit(2)
	}

	handler := b2f.Handler(cfg.Hostname, userDir, store, collector, cfg.Mailbox.KeepRawFrames)
	srv.SetHandler(handler)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Info("received signal, shutting down", slog.String("signal", sig.String()))
		cancel()
	}()

	if cfg.Metrics.Enabled {
		metricsServer := metrics.NewPrometheusServer(cfg.Metrics.Address, cfg.Metrics.Path)
		go func() {
			if err := metricsServer.Start(ctx); err != nil && err != context.Canceled {
				logger.Error("metrics server error", slog.Any("error", err))
			}
		}()
		logger.Info("metrics server started", slog.String("address", cfg.Metrics.Address), slog.String("path", cfg.Metrics.Path))
	}

	logger.Info("starting b2fd", slog.String("hostname", cfg.Hostname), slog.String("listen", cfg.Listen))

	if err := srv.Run(ctx); err != nil && err != context.Canceled {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(2)
	}

	logger.Info("b2fd stopped")
}
