package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fidde/cisco_log_triage/internal/api"
	"github.com/fidde/cisco_log_triage/internal/feed"
	"github.com/fidde/cisco_log_triage/internal/receiver"
	"github.com/fidde/cisco_log_triage/internal/storage"
	"github.com/fidde/cisco_log_triage/internal/summarizer"
	"github.com/fidde/cisco_log_triage/internal/usage"
	"github.com/spf13/cobra"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard, REST API and OTLP live feed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve()
		},
	}

	cmd.Flags().String("addr", "0.0.0.0:8080", "REST API listen address")
	a.v.BindPFlag("server.api_addr", cmd.Flags().Lookup("addr"))

	return cmd
}

func (a *app) serve() error {
	cfg := a.cfg
	slog.Info("starting Cisco log triage", "version", version)

	c, err := a.newClassifier()
	if err != nil {
		return fmt.Errorf("loading rules: %w", err)
	}
	slog.Info("rule set loaded", "name", c.Rules().Name, "tiers", c.Rules().TierNames(), "dedup", c.Rules().Dedup)

	store, err := storage.NewUsageStore(cfg.Usage)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.Error("error closing usage store", "error", err)
		}
	}()
	counter := usage.NewCounter(store)

	ai := summarizer.NewService(summarizer.Keys{
		Log:  cfg.AI.APIKeyLog,
		Spec: cfg.AI.APIKeySpec,
		OS:   cfg.AI.APIKeyOS,
	}, summarizer.GeminiFactory, counter, cfg.AI.Timeout)
	for feature, ok := range ai.Configured() {
		if !ok {
			slog.Warn("no API key configured, AI feature disabled", "feature", feature)
		}
	}

	deps := api.Deps{
		Classifier:     c,
		AI:             ai,
		Usage:          counter,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
		RequestTimeout: cfg.Server.RequestTimeout,
		Version:        version,
	}

	var (
		httpReceiver *receiver.HTTPReceiver
		grpcReceiver *receiver.GRPCReceiver
	)
	if cfg.Server.LiveEnabled {
		live := feed.New(c)
		deps.Live = live
		httpReceiver = receiver.NewHTTPReceiver(cfg.Server.OTLPHTTPAddr, live)
		grpcReceiver = receiver.NewGRPCReceiver(cfg.Server.OTLPGRPCAddr, live)
	}

	apiServer := api.NewServer(cfg.Server.APIAddr, deps)

	// Start pprof server for profiling (separate port)
	if cfg.Server.PprofAddr != "" {
		go func() {
			slog.Info("starting pprof server", "url", "http://"+cfg.Server.PprofAddr+"/debug/pprof")
			if err := http.ListenAndServe(cfg.Server.PprofAddr, nil); err != nil {
				slog.Error("pprof server error", "error", err)
			}
		}()
	}

	// Start servers in goroutines
	errChan := make(chan error, 3)

	if httpReceiver != nil {
		go func() {
			slog.Info("starting OTLP HTTP receiver", "addr", cfg.Server.OTLPHTTPAddr, "endpoint", "/v1/logs")
			if err := httpReceiver.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- fmt.Errorf("OTLP HTTP receiver error: %w", err)
			}
		}()

		go func() {
			if err := grpcReceiver.Start(); err != nil {
				errChan <- fmt.Errorf("OTLP gRPC receiver error: %w", err)
			}
		}()
	}

	go func() {
		slog.Info("starting REST API server", "addr", cfg.Server.APIAddr)
		if err := apiServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	var runErr error
	select {
	case runErr = <-errChan:
		slog.Error("server error", "error", runErr)
	case sig := <-sigChan:
		slog.Info("received signal, shutting down", "signal", sig.String())
	}

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if httpReceiver != nil {
		if err := httpReceiver.Shutdown(shutdownCtx); err != nil {
			slog.Error("error shutting down OTLP HTTP receiver", "error", err)
		}
		if err := grpcReceiver.Shutdown(shutdownCtx); err != nil {
			slog.Error("error shutting down OTLP gRPC receiver", "error", err)
		}
	}
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("error shutting down API server", "error", err)
	}

	slog.Info("shutdown complete")
	return runErr
}
