// Package llm provides centralized LLM configuration and client abstractions.
// Generation calls go through the Client interface so the provider can be switched by configuration.
package llm

import "fmt"

// Provider represents an LLM provider
type Provider string

// Provider constants define supported LLM providers
const (
	// ProviderGemini is the Google Gemini provider
	ProviderGemini Provider = "gemini"
	// ProviderOpenAI is the OpenAI provider, or any OpenAI-compatible endpoint via BaseURL
	ProviderOpenAI Provider = "openai"
)

// Config holds the model configuration for the application
type Config struct {
	Provider Provider
	Model    string
	// BaseURL overrides the provider endpoint. Only used by ProviderOpenAI.
	BaseURL string
}

// DefaultConfig returns the default configuration (currently Gemini)
func DefaultConfig() *Config {
	return DefaultGeminiConfig()
}

// DefaultGeminiConfig returns the default Gemini configuration
func DefaultGeminiConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Model:    "gemini-2.5-flash",
	}
}

// DefaultOpenAIConfig returns the default OpenAI configuration
func DefaultOpenAIConfig() *Config {
	return &Config{
		Provider: ProviderOpenAI,
		Model:    "gpt-4o-mini",
	}
}

// ParseProvider parses a provider name. An empty name selects ProviderGemini.
func ParseProvider(name string) (Provider, error) {
	switch Provider(name) {
	case "", ProviderGemini:
		return ProviderGemini, nil
	case ProviderOpenAI:
		return ProviderOpenAI, nil
	}
	return "", fmt.Errorf("unsupported LLM provider %q", name)
}

// WithModel returns a copy of the Config using model
func (c *Config) WithModel(model string) *Config {
	newConfig := *c
	newConfig.Model = model
	return &newConfig
}

// ModelOrDefault returns the configured model, falling back to the provider default
func (c *Config) ModelOrDefault() string {
	if c.Model != "" {
		return c.Model
	}
	if c.Provider == ProviderOpenAI {
		return DefaultOpenAIConfig().Model
	}
	return DefaultGeminiConfig().Model
}
