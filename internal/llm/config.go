// Package llm provides the LLM client abstraction used by LLM evaluators.
// Two transports are supported: any OpenAI-compatible endpoint and Google Gemini.
package llm

import "strings"

// Provider represents an LLM provider
type Provider string

// Provider constants define supported LLM providers
const (
	// ProviderOpenAI covers OpenAI and every OpenAI-compatible server reachable through APIURL
	ProviderOpenAI Provider = "openai"
	// ProviderGemini is the Google Gemini provider
	ProviderGemini Provider = "gemini"
)

// DefaultModels holds the model used when Config.Model is empty
var DefaultModels = map[Provider]string{
	ProviderOpenAI: "gpt-4o-mini",
	ProviderGemini: "gemini-2.5-flash",
}

// Config is the per-evaluator LLM configuration. Every field may be empty
// until the first call is made.
type Config struct {
	Provider Provider `json:"provider,omitempty" yaml:"provider,omitempty" validate:"omitempty,oneof=openai gemini"`
	Key      string   `json:"key" yaml:"key"`
	APIURL   string   `json:"api_url" yaml:"api_url" validate:"omitempty,url"`
	Model    string   `json:"model" yaml:"model"`
}

// WithDefaults returns a copy with the provider and model filled in
func (c Config) WithDefaults() Config {
	if c.Provider == "" {
		c.Provider = ProviderOpenAI
	}
	c.Provider = Provider(strings.ToLower(string(c.Provider)))
	if c.Model == "" {
		c.Model = DefaultModels[c.Provider]
	}
	return c
}

// Redacted returns a copy safe to log
func (c Config) Redacted() Config {
	if c.Key != "" {
		c.Key = "***"
	}
	return c
}
