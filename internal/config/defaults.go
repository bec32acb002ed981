package config

import (
	"runtime"
	"time"

	"github.com/nelsonlabs/morningreport/internal/logging"
	"github.com/nelsonlabs/morningreport/internal/provider"
)

// Default returns the configuration used when no config file exists.
// Every provider with a key in the environment is usable out of the box.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			ListenAddr:      ":8080",
			MaxUploadBytes:  25 << 20, // matches the smallest vendor upload cap
			ShutdownTimeout: 10 * time.Second,
		},
		Logging: logging.DefaultConfig(),
		Transcription: TranscriptionConfig{
			Providers:      []string{provider.ProviderOpenAI, provider.ProviderGroq},
			AttemptTimeout: 60 * time.Second,
		},
		LLM: LLMConfig{
			Providers:      []string{provider.ProviderOpenAI, provider.ProviderGroq, provider.ProviderOpenRouter},
			AttemptTimeout: 60 * time.Second,
		},
		Realtime: RealtimeConfig{
			Provider:           provider.ProviderDeepgram,
			MaxReconnects:      10,
			BaseBackoff:        500 * time.Millisecond,
			MaxBackoff:         10 * time.Second,
			MinTranscriptChars: 10,
			InputSampleRate:    16000,
		},
		PubMed: PubMedConfig{
			Enabled: true,
			RetMax:  3,
			Tool:    "morningreport",
		},
		Storage: StorageConfig{
			Path: "./data/morningreport.db",
		},
		Providers: map[string]ProviderConfig{},
	}
}

func (c *Config) applyDefaults() {
	def := Default()
	if c.Server.ListenAddr == "" {
		c.Server.ListenAddr = def.Server.ListenAddr
	}
	if c.Server.MaxUploadBytes <= 0 {
		c.Server.MaxUploadBytes = def.Server.MaxUploadBytes
	}
	if c.Server.ShutdownTimeout <= 0 {
		c.Server.ShutdownTimeout = def.Server.ShutdownTimeout
	}
	if c.Logging.Level == "" {
		c.Logging.Level = def.Logging.Level
	}
	if c.Logging.Format == "" {
		c.Logging.Format = def.Logging.Format
	}
	if len(c.Transcription.Providers) == 0 {
		c.Transcription.Providers = def.Transcription.Providers
	}
	if c.Transcription.AttemptTimeout <= 0 {
		c.Transcription.AttemptTimeout = def.Transcription.AttemptTimeout
	}
	if len(c.LLM.Providers) == 0 {
		c.LLM.Providers = def.LLM.Providers
	}
	if c.LLM.AttemptTimeout <= 0 {
		c.LLM.AttemptTimeout = def.LLM.AttemptTimeout
	}
	if c.Realtime.Provider == "" {
		c.Realtime.Provider = def.Realtime.Provider
	}
	if c.Realtime.MaxReconnects <= 0 {
		c.Realtime.MaxReconnects = def.Realtime.MaxReconnects
	}
	if c.Realtime.BaseBackoff <= 0 {
		c.Realtime.BaseBackoff = def.Realtime.BaseBackoff
	}
	if c.Realtime.MaxBackoff <= 0 {
		c.Realtime.MaxBackoff = def.Realtime.MaxBackoff
	}
	if c.Realtime.MinTranscriptChars <= 0 {
		c.Realtime.MinTranscriptChars = def.Realtime.MinTranscriptChars
	}
	if c.Realtime.InputSampleRate <= 0 {
		c.Realtime.InputSampleRate = def.Realtime.InputSampleRate
	}
	if c.PubMed.RetMax <= 0 {
		c.PubMed.RetMax = def.PubMed.RetMax
	}
	if c.PubMed.Tool == "" {
		c.PubMed.Tool = def.PubMed.Tool
	}
	if c.Storage.Path == "" {
		c.Storage.Path = def.Storage.Path
	}
	if c.Providers == nil {
		c.Providers = map[string]ProviderConfig{}
	}
	c.applyThreadsDefault()
}

// applyThreadsDefault fills in CPU threads for local transcription.
func (c *Config) applyThreadsDefault() {
	local, ok := c.Providers[provider.ProviderWhisperCpp]
	if !ok || local.Threads != 0 {
		return
	}
	threads := runtime.NumCPU() - 1
	if threads < 1 {
		threads = 1
	}
	local.Threads = threads
	c.Providers[provider.ProviderWhisperCpp] = local
}
