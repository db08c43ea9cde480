package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/jonathan/docstudio/internal/server"
	"github.com/jonathan/docstudio/internal/server/ratelimit"
)

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes REST endpoints for generation, export, preview and history.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&servePort, "port", "", "Port to listen on (overrides SERVER_PORT)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(true)
	if err != nil {
		return err
	}
	if servePort != "" {
		cfg.Server.Port = servePort
	}
	rateLimit, err := ratelimit.LoadConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	logger := slog.Default()

	generator, client, err := newGenerator(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	cache, closeHistory, err := openHistory(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer closeHistory()
	logger.Info("history loaded", "backend", cfg.History.Backend, "entries", cache.Len())

	srv := server.New(server.Config{
		Port:            cfg.Server.Port,
		MaxLogoBytes:    cfg.MaxLogoBytes,
		MaxSessions:     cfg.Server.MaxSessions,
		AllowedOrigin:   cfg.Server.AllowedOrigin,
		RequestTimeout:  cfg.Server.RequestTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		RateLimit:       rateLimit,
		Logger:          logger,
	}, generator, cache)

	return srv.Start(ctx)
}
