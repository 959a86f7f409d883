package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/byebilly/waitlist-api/internal/app"
	"github.com/byebilly/waitlist-api/pkg/config"
	"github.com/byebilly/waitlist-api/pkg/logger"
)

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logr, version)
	if err != nil {
		logr.Error("startup failed", zap.Error(err))
		return err
	}
	defer a.Close() //nolint:errcheck

	if err := a.Serve(ctx); err != nil {
		logr.Error("server failed", zap.Error(err))
		return err
	}
	logr.Info("server stopped")
	return nil
}
