package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/docstudio/internal/config"
	"github.com/jonathan/docstudio/internal/db"
	"github.com/jonathan/docstudio/internal/generation"
	"github.com/jonathan/docstudio/internal/history"
	"github.com/jonathan/docstudio/internal/llm"
	"github.com/jonathan/docstudio/internal/types"
)

// customizationFlags are shared by every command that produces an exported file.
type customizationFlags struct {
	header     string
	footer     string
	logo       string
	fontFamily string
	fontSize   int
}

func (f *customizationFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.header, "header", "", "Header text on every page")
	cmd.Flags().StringVar(&f.footer, "footer", "", `Footer text; "Page Number" prints the page number`)
	cmd.Flags().StringVar(&f.logo, "logo", "", "Path to a PNG, JPEG or GIF logo for the header")
	cmd.Flags().StringVar(&f.fontFamily, "font", "", "Font family (Calibri, Arial, Times New Roman, Courier New, Georgia, Verdana)")
	cmd.Flags().IntVar(&f.fontSize, "font-size", 0, "Font size in points")
}

func (f *customizationFlags) preferences() config.Preferences {
	return config.Preferences{
		HeaderText: f.header,
		FooterText: f.footer,
		Logo:       f.logo,
		FontFamily: f.fontFamily,
		FontSize:   f.fontSize,
	}
}

// loadPreferences merges flag values over the --config file, if any.
func loadPreferences(flags config.Preferences) (config.Preferences, error) {
	if configFile == "" {
		return flags, flags.Validate()
	}
	fromFile, err := config.LoadConfig(configFile)
	if err != nil {
		return config.Preferences{}, err
	}
	merged := flags.MergeWithDefaults(*fromFile)
	return merged, merged.Validate()
}

// buildBundle turns preferences into a customization bundle, reading the logo file.
func buildBundle(prefs config.Preferences, maxLogoBytes int64) (types.CustomizationBundle, error) {
	bundle := types.CustomizationBundle{
		HeaderText: prefs.HeaderText,
		FooterText: prefs.FooterText,
		FontFamily: types.FontFamily(prefs.FontFamily),
		FontSize:   types.FontSize(prefs.FontSize),
	}
	if prefs.Logo == "" {
		return bundle, nil
	}

	data, err := os.ReadFile(prefs.Logo)
	if err != nil {
		return bundle, fmt.Errorf("failed to read logo: %w", err)
	}
	if maxLogoBytes > 0 && int64(len(data)) > maxLogoBytes {
		return bundle, fmt.Errorf("logo %s exceeds %d bytes", prefs.Logo, maxLogoBytes)
	}
	mimeType := http.DetectContentType(data)
	if !strings.HasPrefix(mimeType, "image/") {
		return bundle, fmt.Errorf("logo %s is not an image (%s)", prefs.Logo, mimeType)
	}
	bundle.Logo = &types.Image{Data: data, MIMEType: mimeType}
	return bundle, nil
}

// readInput returns the contents of path, or stdin when path is "-".
func readInput(cmd *cobra.Command, path string) (string, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return string(data), nil
}

// writeOutput writes data to path, creating the directory first.
func writeOutput(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

// newGenerator builds the generation service over a retrying model client.
func newGenerator(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*generation.Service, llm.Client, error) {
	if err := generation.CheckInstructions(); err != nil {
		return nil, nil, err
	}
	llmCfg, err := cfg.LLMClientConfig()
	if err != nil {
		return nil, nil, err
	}
	client, err := llm.NewClient(ctx, llmCfg, cfg.APIKey(llmCfg.Provider))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	retrying := llm.NewRetryingClient(client, llm.WithLogger(logger))
	svc := generation.New(retrying,
		generation.WithLogger(logger),
		generation.WithModel(llmCfg.ModelOrDefault()),
	)
	return svc, retrying, nil
}

// openHistory opens the configured history backend and loads its cache.
// The returned function releases the backend connection.
func openHistory(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*history.Cache, func(), error) {
	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	cache := history.NewCache(store, history.WithLogger(logger))
	cache.Load(ctx)
	return cache, closeStore, nil
}

func openStore(ctx context.Context, cfg *config.Config) (history.Store, func(), error) {
	noop := func() {}
	switch cfg.History.Backend {
	case config.BackendMemory:
		return history.NewMemoryStore(), noop, nil
	case config.BackendFile:
		return history.NewFileStore(cfg.History.File), noop, nil
	case config.BackendRedis:
		client, err := history.ConnectRedis(ctx, cfg.History.RedisAddr, cfg.History.RedisPassword, cfg.History.RedisDB)
		if err != nil {
			return nil, nil, err
		}
		return history.NewRedisStore(client, cfg.HistoryKeyOrDefault()), func() { _ = client.Close() }, nil
	case config.BackendPostgres:
		database, err := db.Connect(ctx, cfg.History.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := database.Migrate(ctx); err != nil {
			database.Close()
			return nil, nil, err
		}
		return database.HistoryStore(cfg.HistoryKeyOrDefault()), database.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown history backend %q", cfg.History.Backend)
	}
}

// loadConfig reads the environment configuration. Model-backed commands also require an API key.
func loadConfig(needsModel bool) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if needsModel {
		err = cfg.Validate()
	} else {
		err = cfg.ValidateHistory()
	}
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// logoLimit reads MAX_LOGO_BYTES for commands that export without a model or history.
func logoLimit() (int64, error) {
	cfg, err := config.Load()
	if err != nil {
		return 0, err
	}
	if err := cfg.ValidateLogo(); err != nil {
		return 0, err
	}
	return cfg.MaxLogoBytes, nil
}

func preferencesFor(language, tone string) config.Preferences {
	return config.Preferences{Language: language, Tone: tone}
}
