// Package transcriber converts audio payloads to text through
// interchangeable vendor adapters.
package transcriber

import (
	"context"
	"fmt"

	"github.com/nelsonlabs/morningreport/internal/analysis"
	"github.com/nelsonlabs/morningreport/internal/models/whisper"
	"github.com/nelsonlabs/morningreport/internal/provider"
)

// BatchAdapter transcribes a complete audio payload in one call.
// Adapters tag failures with the provider error taxonomy so the
// orchestrator can decide whether to fall back.
type BatchAdapter interface {
	Transcribe(ctx context.Context, audio []byte) (analysis.TranscriptionResult, error)
}

// Config holds the settings one adapter instance is built from.
type Config struct {
	Provider string
	APIKey   string
	Model    string
	Language string

	// whisper-cpp only
	ModelPath string
	Threads   int
}

// NewBatchAdapter constructs the adapter for cfg.Provider. A missing
// required credential is a ConfigurationError so chain construction can
// skip this provider without failing the chain.
func NewBatchAdapter(cfg Config) (BatchAdapter, error) {
	p := provider.Get(cfg.Provider)
	if p == nil {
		return nil, &provider.ConfigurationError{Provider: cfg.Provider, Reason: "unknown provider"}
	}
	if !p.SupportsTranscription() {
		return nil, &provider.ConfigurationError{Provider: cfg.Provider, Reason: "does not support transcription"}
	}
	if p.RequiresAPIKey() && cfg.APIKey == "" {
		return nil, &provider.ConfigurationError{
			Provider: cfg.Provider,
			Reason:   fmt.Sprintf("API key required: set %s or providers.%s.api_key", provider.EnvVarForProvider(cfg.Provider), cfg.Provider),
		}
	}
	if cfg.Model == "" {
		cfg.Model = p.DefaultTranscriptionModel()
	}

	switch cfg.Provider {
	case provider.ProviderOpenAI:
		return NewOpenAIAdapter(cfg), nil
	case provider.ProviderGroq:
		return NewGroqAdapter(cfg), nil
	case provider.ProviderWhisperCpp:
		path, err := whisper.Resolve(cfg.ModelPath)
		if err != nil {
			return nil, &provider.ConfigurationError{Provider: cfg.Provider, Reason: err.Error()}
		}
		cfg.ModelPath = path
		return NewWhisperCppAdapter(cfg), nil
	default:
		return nil, &provider.ConfigurationError{Provider: cfg.Provider, Reason: "no batch transcription adapter"}
	}
}
