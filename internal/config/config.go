// Package config provides configuration loading and validation for the service and the CLI.
//
// Service settings come from the environment (a .env file is loaded by main). CLI defaults
// such as language, tone and branding can additionally be kept in a JSON file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/jonathan/docstudio/internal/history"
	"github.com/jonathan/docstudio/internal/llm"
	"github.com/jonathan/docstudio/internal/types"
)

// History backends
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// DefaultMaxLogoBytes is the largest accepted logo upload.
const DefaultMaxLogoBytes = 2 << 20

// Config is the service configuration read from the environment.
type Config struct {
	LLM     LLMConfig
	Server  ServerConfig
	History HistoryConfig

	MaxLogoBytes int64 `env:"MAX_LOGO_BYTES" envDefault:"2097152"`
}

// LLMConfig selects the model provider.
type LLMConfig struct {
	Provider      string `env:"LLM_PROVIDER" envDefault:"gemini"`
	Model         string `env:"LLM_MODEL"`
	GeminiAPIKey  string `env:"GEMINI_API_KEY"`
	OpenAIAPIKey  string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL string `env:"OPENAI_BASE_URL"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Port            string        `env:"SERVER_PORT" envDefault:"8080"`
	RequestTimeout  time.Duration `env:"SERVER_REQUEST_TIMEOUT" envDefault:"2m"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	MaxSessions     int           `env:"SERVER_MAX_SESSIONS" envDefault:"1024"`
	AllowedOrigin   string        `env:"CORS_ALLOWED_ORIGIN" envDefault:"*"`
}

// HistoryConfig selects where the history slot is persisted.
type HistoryConfig struct {
	Backend       string `env:"HISTORY_BACKEND" envDefault:"file"`
	Key           string `env:"HISTORY_KEY" envDefault:"documentHistory"`
	File          string `env:"HISTORY_FILE" envDefault:".docstudio/history.json"`
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	DatabaseURL   string `env:"DATABASE_URL"`
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}

// Validate checks that the selected provider and history backend have what they need.
func (c *Config) Validate() error {
	provider, err := llm.ParseProvider(c.LLM.Provider)
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if c.APIKey(provider) == "" {
		return fmt.Errorf("config error: an API key is required for provider %s", provider)
	}

	if err := c.ValidateHistory(); err != nil {
		return err
	}
	return c.ValidateLogo()
}

// ValidateLogo checks the logo size limit, for commands that only export.
func (c *Config) ValidateLogo() error {
	if c.MaxLogoBytes <= 0 {
		return fmt.Errorf("config error: MAX_LOGO_BYTES must be positive")
	}
	return nil
}

// ValidateHistory checks only the history backend settings, for commands that never call a model.
func (c *Config) ValidateHistory() error {
	switch c.History.Backend {
	case BackendMemory:
	case BackendFile:
		if c.History.File == "" {
			return fmt.Errorf("config error: HISTORY_FILE is required for the file backend")
		}
	case BackendRedis:
		if c.History.RedisAddr == "" {
			return fmt.Errorf("config error: REDIS_ADDR is required for the redis backend")
		}
	case BackendPostgres:
		if c.History.DatabaseURL == "" {
			return fmt.Errorf("config error: DATABASE_URL is required for the postgres backend")
		}
	default:
		return fmt.Errorf("config error: unknown history backend %q", c.History.Backend)
	}

	if c.History.Key == "" {
		return fmt.Errorf("config error: HISTORY_KEY must not be empty")
	}
	return nil
}

// APIKey returns the key configured for provider.
func (c *Config) APIKey(provider llm.Provider) string {
	if provider == llm.ProviderOpenAI {
		return c.LLM.OpenAIAPIKey
	}
	return c.LLM.GeminiAPIKey
}

// LLMClientConfig returns the client configuration for the selected provider.
func (c *Config) LLMClientConfig() (*llm.Config, error) {
	provider, err := llm.ParseProvider(c.LLM.Provider)
	if err != nil {
		return nil, err
	}
	cfg := llm.DefaultGeminiConfig()
	if provider == llm.ProviderOpenAI {
		cfg = llm.DefaultOpenAIConfig()
		cfg.BaseURL = c.LLM.OpenAIBaseURL
	}
	if c.LLM.Model != "" {
		cfg = cfg.WithModel(c.LLM.Model)
	}
	return cfg, nil
}

// HistoryKeyOrDefault returns the slot name.
func (c *Config) HistoryKeyOrDefault() string {
	if c.History.Key == "" {
		return history.DefaultKey
	}
	return c.History.Key
}

// Preferences are CLI defaults that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Preferences struct {
	Kind       string `json:"kind,omitempty"`        // Output kind: text, docx, pdf or xlsx
	Language   string `json:"language,omitempty"`    // Target language
	Tone       string `json:"tone,omitempty"`        // Tone of the generated text
	HeaderText string `json:"header_text,omitempty"` // Header on every exported page
	FooterText string `json:"footer_text,omitempty"` // Footer; "Page Number" becomes the page number
	Logo       string `json:"logo,omitempty"`        // Path to a logo image
	FontFamily string `json:"font_family,omitempty"` // Export font family
	FontSize   int    `json:"font_size,omitempty"`   // Export font size in points
	OutputDir  string `json:"output_dir,omitempty"`  // Directory for exported files
}

// LoadConfig loads CLI preferences from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Preferences, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var prefs Preferences
	if err := json.Unmarshal(data, &prefs); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &prefs, nil
}

// Validate checks that the preferences name supported options.
func (p *Preferences) Validate() error {
	if p.Kind != "" {
		if _, err := types.ParseOutputKind(p.Kind); err != nil {
			return fmt.Errorf("config error: %w", err)
		}
	}
	if p.Language != "" && !types.Language(p.Language).IsValid() {
		return fmt.Errorf("config error: unsupported language %q", p.Language)
	}
	if p.Tone != "" && !types.Tone(p.Tone).IsValid() {
		return fmt.Errorf("config error: unsupported tone %q", p.Tone)
	}
	if p.FontFamily != "" && !types.FontFamily(p.FontFamily).IsValid() {
		return fmt.Errorf("config error: unsupported font family %q", p.FontFamily)
	}
	if p.FontSize != 0 && !types.FontSize(p.FontSize).IsValid() {
		return fmt.Errorf("config error: unsupported font size %d", p.FontSize)
	}
	if p.Logo != "" {
		if _, err := os.Stat(p.Logo); os.IsNotExist(err) {
			return fmt.Errorf("config error: logo file not found: %s", p.Logo)
		}
	}
	return nil
}

// MergeWithDefaults returns a copy with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (p *Preferences) MergeWithDefaults(defaults Preferences) Preferences {
	result := *p

	if result.Kind == "" {
		result.Kind = defaults.Kind
	}
	if result.Language == "" {
		result.Language = defaults.Language
	}
	if result.Tone == "" {
		result.Tone = defaults.Tone
	}
	if result.HeaderText == "" {
		result.HeaderText = defaults.HeaderText
	}
	if result.FooterText == "" {
		result.FooterText = defaults.FooterText
	}
	if result.Logo == "" {
		result.Logo = defaults.Logo
	}
	if result.FontFamily == "" {
		result.FontFamily = defaults.FontFamily
	}
	if result.OutputDir == "" {
		result.OutputDir = defaults.OutputDir
	}
	if result.FontSize == 0 {
		result.FontSize = defaults.FontSize
	}

	return result
}
