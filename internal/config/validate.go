package config

import (
	"fmt"

	"github.com/nelsonlabs/morningreport/internal/language"
	"github.com/nelsonlabs/morningreport/internal/provider"
)

// Validate checks the configuration for mistakes that would only
// surface at request time otherwise.
func (c *Config) Validate() error {
	for _, name := range c.Transcription.Providers {
		p := provider.Get(name)
		if p == nil {
			return fmt.Errorf("transcription providers: unknown provider %q", name)
		}
		if !p.SupportsTranscription() {
			return fmt.Errorf("transcription providers: %q does not transcribe", name)
		}
	}

	for _, name := range c.LLM.Providers {
		p := provider.Get(name)
		if p == nil {
			return fmt.Errorf("llm providers: unknown provider %q", name)
		}
		if !p.SupportsLLM() {
			return fmt.Errorf("llm providers: %q is not an llm provider", name)
		}
	}

	if c.Realtime.Provider != "" {
		p := provider.Get(c.Realtime.Provider)
		if p == nil {
			return fmt.Errorf("realtime provider: unknown provider %q", c.Realtime.Provider)
		}
		if !p.SupportsStreaming() {
			return fmt.Errorf("realtime provider: %q does not support streaming transcription", c.Realtime.Provider)
		}
	}

	for name := range c.Providers {
		if provider.Get(name) == nil {
			return fmt.Errorf("providers section: unknown provider %q", name)
		}
	}

	if !language.IsValidCode(c.Transcription.Language) {
		return fmt.Errorf("transcription: unsupported language %q", c.Transcription.Language)
	}
	if !language.IsValidCode(c.Realtime.Language) {
		return fmt.Errorf("realtime: unsupported language %q", c.Realtime.Language)
	}

	if c.Realtime.BaseBackoff > c.Realtime.MaxBackoff {
		return fmt.Errorf("realtime: base_backoff %s exceeds max_backoff %s",
			c.Realtime.BaseBackoff, c.Realtime.MaxBackoff)
	}
	return nil
}
