// Package config loads and watches the service's TOML configuration.
package config

import (
	"time"

	"github.com/nelsonlabs/morningreport/internal/logging"
)

// Config is the full service configuration.
type Config struct {
	Server        ServerConfig              `toml:"server"`
	Logging       logging.Config            `toml:"logging"`
	Transcription TranscriptionConfig       `toml:"transcription"`
	LLM           LLMConfig                 `toml:"llm"`
	Realtime      RealtimeConfig            `toml:"realtime"`
	PubMed        PubMedConfig              `toml:"pubmed"`
	Storage       StorageConfig             `toml:"storage"`
	Providers     map[string]ProviderConfig `toml:"providers"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	ListenAddr      string        `toml:"listen_addr"`
	MaxUploadBytes  int64         `toml:"max_upload_bytes"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout"`
}

// TranscriptionConfig configures the batch transcription chain.
// Providers is the fallback order; the first entry is primary.
type TranscriptionConfig struct {
	Providers      []string      `toml:"providers"`
	Language       string        `toml:"language"`
	AttemptTimeout time.Duration `toml:"attempt_timeout"`
}

// LLMConfig configures the case-analysis chain.
type LLMConfig struct {
	Providers      []string      `toml:"providers"`
	AttemptTimeout time.Duration `toml:"attempt_timeout"`
}

// RealtimeConfig configures live transcription sessions.
type RealtimeConfig struct {
	Provider           string        `toml:"provider"`
	Model              string        `toml:"model"`
	Language           string        `toml:"language"`
	Keywords           []string      `toml:"keywords"`
	MaxReconnects      int           `toml:"max_reconnects"`
	BaseBackoff        time.Duration `toml:"base_backoff"`
	MaxBackoff         time.Duration `toml:"max_backoff"`
	MinTranscriptChars int           `toml:"min_transcript_chars"`
	BufferLimit        int           `toml:"buffer_limit"`
	InputSampleRate    int           `toml:"input_sample_rate"`
}

// PubMedConfig configures literature enrichment.
type PubMedConfig struct {
	Enabled bool   `toml:"enabled"`
	RetMax  int    `toml:"retmax"`
	Tool    string `toml:"tool"`
	Email   string `toml:"email"`
}

// StorageConfig configures the case library database.
type StorageConfig struct {
	Path string `toml:"path"`
}

// ProviderConfig holds per-provider credentials and model overrides.
// An empty api_key falls back to the provider's environment variable.
type ProviderConfig struct {
	APIKey             string `toml:"api_key"`
	TranscriptionModel string `toml:"transcription_model"`
	LLMModel           string `toml:"llm_model"`
	ModelPath          string `toml:"model_path"` // local whisper.cpp model file
	Threads            int    `toml:"threads"`    // CPU threads for local transcription (0 = auto)
}
