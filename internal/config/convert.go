package config

import (
	"os"

	"github.com/nelsonlabs/morningreport/internal/language"
	"github.com/nelsonlabs/morningreport/internal/orchestrator"
	"github.com/nelsonlabs/morningreport/internal/provider"
	"github.com/nelsonlabs/morningreport/internal/realtime"
	"github.com/nelsonlabs/morningreport/internal/transcriber"
)

// FactorySettings converts the providers section into the shape the
// chain factory expects. The chain language setting applies to every
// transcription provider.
func (c *Config) FactorySettings() map[string]orchestrator.ProviderSettings {
	settings := make(map[string]orchestrator.ProviderSettings, len(c.Providers))
	for name, pc := range c.Providers {
		settings[name] = orchestrator.ProviderSettings{
			APIKey:             pc.APIKey,
			TranscriptionModel: pc.TranscriptionModel,
			LLMModel:           pc.LLMModel,
			Language:           c.Transcription.Language,
			ModelPath:          pc.ModelPath,
			Threads:            pc.Threads,
		}
	}
	return settings
}

// SessionConfig converts the realtime section into session settings.
func (c *Config) SessionConfig() realtime.Config {
	return realtime.Config{
		MaxReconnects:      c.Realtime.MaxReconnects,
		BaseBackoff:        c.Realtime.BaseBackoff,
		MaxBackoff:         c.Realtime.MaxBackoff,
		MinTranscriptChars: c.Realtime.MinTranscriptChars,
		BufferLimit:        c.Realtime.BufferLimit,
		InputSampleRate:    c.Realtime.InputSampleRate,
	}
}

// StreamDialer builds the streaming dialer for the configured realtime
// provider.
func (c *Config) StreamDialer() (transcriber.StreamDialer, error) {
	rc := c.Realtime
	apiKey := c.Providers[rc.Provider].APIKey
	if apiKey == "" {
		if envVar := provider.EnvVarForProvider(rc.Provider); envVar != "" {
			apiKey = os.Getenv(envVar)
		}
	}

	p := provider.Get(rc.Provider)
	if p == nil {
		return nil, &provider.ConfigurationError{Provider: rc.Provider, Reason: "unknown provider"}
	}
	if !p.SupportsStreaming() {
		return nil, &provider.ConfigurationError{
			Provider: rc.Provider,
			Reason:   "does not support streaming transcription",
		}
	}
	if apiKey == "" && p.RequiresAPIKey() {
		return nil, &provider.ConfigurationError{
			Provider: rc.Provider,
			Reason:   "no API key configured for realtime transcription",
		}
	}

	model := rc.Model
	if model == "" {
		model = p.DefaultTranscriptionModel()
	}
	lang := language.ToProviderFormat(rc.Language, rc.Provider)

	switch rc.Provider {
	case provider.ProviderDeepgram:
		return transcriber.NewDeepgramDialer(nil, apiKey, model, lang, rc.Keywords), nil
	default:
		return nil, &provider.ConfigurationError{Provider: rc.Provider, Reason: "no streaming adapter"}
	}
}
