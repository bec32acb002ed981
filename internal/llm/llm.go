// Package llm turns a case transcript into a structured clinical analysis
// through interchangeable chat-completion providers. Adapters return the
// vendor's raw response; mapping into the canonical shape is the
// normalizer's job.
package llm

import (
	"context"
	"fmt"

	"github.com/nelsonlabs/morningreport/internal/provider"
)

// Adapter is one LLM vendor capable of case analysis.
type Adapter interface {
	Analyze(ctx context.Context, transcript string) (string, error)
}

// Config holds the settings one adapter instance is built from.
type Config struct {
	Provider string
	APIKey   string
	Model    string
}

// NewAdapter constructs the adapter for cfg.Provider. A missing credential
// is a ConfigurationError so chain construction can skip this provider.
func NewAdapter(cfg Config) (Adapter, error) {
	p := provider.Get(cfg.Provider)
	if p == nil {
		return nil, &provider.ConfigurationError{Provider: cfg.Provider, Reason: "unknown provider"}
	}
	if !p.SupportsLLM() {
		return nil, &provider.ConfigurationError{Provider: cfg.Provider, Reason: "does not support LLM analysis"}
	}
	if p.RequiresAPIKey() && cfg.APIKey == "" {
		return nil, &provider.ConfigurationError{
			Provider: cfg.Provider,
			Reason:   fmt.Sprintf("API key required: set %s or providers.%s.api_key", provider.EnvVarForProvider(cfg.Provider), cfg.Provider),
		}
	}
	if cfg.Model == "" {
		cfg.Model = p.DefaultLLMModel()
	}

	switch cfg.Provider {
	case provider.ProviderOpenAI:
		return NewOpenAIAdapter(cfg), nil
	case provider.ProviderGroq:
		return NewGroqAdapter(cfg), nil
	case provider.ProviderOpenRouter:
		return NewOpenRouterAdapter(cfg), nil
	default:
		return nil, &provider.ConfigurationError{Provider: cfg.Provider, Reason: "no LLM adapter"}
	}
}
