package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/BlieNuckel/tunarr/internal/api"
	"github.com/BlieNuckel/tunarr/internal/config"
	"github.com/BlieNuckel/tunarr/internal/metrics"
	"github.com/BlieNuckel/tunarr/internal/telemetry"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "tunarr",
		Short:         "Torznab indexer and SABnzbd download client backed by slskd",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context())
		},
	}

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), api.Version)
		},
	})

	return root
}

func run(parent context.Context) error {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// 2. Build the dependency graph
	app, err := initializeApp(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	logger := app.Logger
	logger.WithFields(logrus.Fields{
		"slskd_url":     cfg.SlskdURL,
		"download_path": cfg.SlskdDownloadPath,
	}).Info("Starting tunarr")

	// 3. Observability
	metrics.Register(prometheus.DefaultRegisterer)

	shutdownTracing, err := telemetry.Init(parent, "tunarr", logger)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.WithError(err).Warn("Failed to flush traces")
		}
	}()

	// 4. Start scheduler
	if err := app.Scheduler.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer app.Scheduler.Stop()

	// 5. Start HTTP server until a shutdown signal arrives
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("tunarr is running")

	if err := app.Server.Start(ctx); err != nil {
		return err
	}

	logger.Info("tunarr stopped")
	return nil
}
