package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"model-gateway/internal/gateway"
	"model-gateway/internal/httpserver"
)

const shutdownTimeout = 15 * time.Second

func newServeCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP gateway",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGateway(cmd.Context(), flags)
		},
	}
}

func runGateway(ctx context.Context, flags *globalFlags) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := newLogger(flags.logLevel)

	cfg, err := loadConfig(flags.configPath)
	if err != nil {
		return err
	}

	creds, err := newCredentialStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("credential store: %w", err)
	}

	service := gateway.NewService(
		cfg.Registry(),
		creds,
		logger,
		gateway.WithTimeout(cfg.UpstreamTimeout),
		gateway.WithDefaultTemperature(cfg.Temperature()),
		gateway.WithMaxBodyBytes(cfg.MaxBodyBytes),
	)
	server := httpserver.New(cfg.Listen, logger, service, httpserver.Options{AllowedOrigins: cfg.CORS.AllowedOrigins})

	errCh := make(chan error, 1)
	go func() {
		logger.Info("gateway starting", "listen", cfg.Listen, "models", cfg.Registry().Len())
		errCh <- server.ListenAndServe()
	}()

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case <-sigCtx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server exited unexpectedly: %w", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	logger.Info("gateway stopped")
	return nil
}
