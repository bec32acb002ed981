package orchestrator

import (
	"fmt"
	"os"
	"time"

	"github.com/nelsonlabs/morningreport/internal/llm"
	"github.com/nelsonlabs/morningreport/internal/logging"
	"github.com/nelsonlabs/morningreport/internal/provider"
	"github.com/nelsonlabs/morningreport/internal/transcriber"
)

// ProviderSettings carries the per-provider knobs the factory needs to
// construct adapters. Zero values mean "use the provider default".
type ProviderSettings struct {
	APIKey             string
	TranscriptionModel string
	LLMModel           string
	Language           string
	ModelPath          string
	Threads            int
}

// Factory resolves configured provider names into adapter chains.
// Construction is purely local: no network calls are made until a
// chain is executed, so a provider with bad credentials only fails
// when it is actually tried.
type Factory struct {
	transcriptionOrder []string
	llmOrder           []string
	settings           map[string]ProviderSettings
	attemptTimeout     time.Duration
}

// NewFactory builds a factory from ordered provider name lists and
// per-provider settings. Order is priority: the first name in each
// list is the primary provider.
func NewFactory(transcriptionOrder, llmOrder []string, settings map[string]ProviderSettings, attemptTimeout time.Duration) *Factory {
	if settings == nil {
		settings = map[string]ProviderSettings{}
	}
	return &Factory{
		transcriptionOrder: transcriptionOrder,
		llmOrder:           llmOrder,
		settings:           settings,
		attemptTimeout:     attemptTimeout,
	}
}

// apiKey resolves the key for a provider, falling back to the
// provider's well-known environment variable when the settings leave
// it empty.
func (f *Factory) apiKey(name string) string {
	if s, ok := f.settings[name]; ok && s.APIKey != "" {
		return s.APIKey
	}
	if envVar := provider.EnvVarForProvider(name); envVar != "" {
		return os.Getenv(envVar)
	}
	return ""
}

// Transcriber constructs a batch transcription adapter for a single
// named provider.
func (f *Factory) Transcriber(name string) (transcriber.BatchAdapter, error) {
	s := f.settings[name]
	return transcriber.NewBatchAdapter(transcriber.Config{
		Provider:  name,
		APIKey:    f.apiKey(name),
		Model:     s.TranscriptionModel,
		Language:  s.Language,
		ModelPath: s.ModelPath,
		Threads:   s.Threads,
	})
}

// LLM constructs a case-analysis adapter for a single named provider.
func (f *Factory) LLM(name string) (llm.Adapter, error) {
	s := f.settings[name]
	return llm.NewAdapter(llm.Config{
		Provider: name,
		APIKey:   f.apiKey(name),
		Model:    s.LLMModel,
	})
}

// TranscriberChain builds the transcription fallback chain. Providers
// that cannot be constructed (unknown name, missing key) are skipped
// with a warning rather than failing the whole chain; an error is
// returned only when no provider at all could be built.
func (f *Factory) TranscriberChain() (*Chain[transcriber.BatchAdapter], error) {
	log := logging.WithComponent("factory")
	entries := make([]Entry[transcriber.BatchAdapter], 0, len(f.transcriptionOrder))
	for _, name := range f.transcriptionOrder {
		adapter, err := f.Transcriber(name)
		if err != nil {
			log.Warn().Str("provider", name).Err(err).Msg("skipping transcription provider")
			continue
		}
		entries = append(entries, Entry[transcriber.BatchAdapter]{Name: name, Provider: adapter})
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("no usable transcription providers among %v", f.transcriptionOrder)
	}
	return NewChain("transcription", f.attemptTimeout, entries)
}

// LLMChain builds the case-analysis fallback chain with the same
// skip-on-misconfiguration behavior as TranscriberChain.
func (f *Factory) LLMChain() (*Chain[llm.Adapter], error) {
	log := logging.WithComponent("factory")
	entries := make([]Entry[llm.Adapter], 0, len(f.llmOrder))
	for _, name := range f.llmOrder {
		adapter, err := f.LLM(name)
		if err != nil {
			log.Warn().Str("provider", name).Err(err).Msg("skipping llm provider")
			continue
		}
		entries = append(entries, Entry[llm.Adapter]{Name: name, Provider: adapter})
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("no usable llm providers among %v", f.llmOrder)
	}
	return NewChain("llm", f.attemptTimeout, entries)
}
