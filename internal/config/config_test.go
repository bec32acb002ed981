package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nelsonlabs/morningreport/internal/provider"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.ListenAddr != ":8080" {
		t.Errorf("ListenAddr = %q, want :8080", cfg.Server.ListenAddr)
	}
	if len(cfg.Transcription.Providers) == 0 {
		t.Error("default transcription chain should not be empty")
	}
	if cfg.Realtime.MaxReconnects != 10 {
		t.Errorf("MaxReconnects = %d, want 10", cfg.Realtime.MaxReconnects)
	}
}

func TestLoad_FullFile(t *testing.T) {
	path := writeConfig(t, `
[server]
listen_addr = ":9090"

[logging]
level = "debug"
format = "console"

[transcription]
providers = ["groq", "openai"]
language = "en"

[llm]
providers = ["openrouter"]

[realtime]
provider = "deepgram"
keywords = ["tachypnea", "stridor"]

[pubmed]
enabled = true
email = "resident@example.org"

[storage]
path = "/tmp/cases.db"

[providers.groq]
api_key = "gsk-test"
transcription_model = "whisper-large-v3"

[providers.openrouter]
api_key = "or-test"
llm_model = "meta-llama/llama-3.3-70b-instruct"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.ListenAddr != ":9090" {
		t.Errorf("ListenAddr = %q", cfg.Server.ListenAddr)
	}
	if cfg.Transcription.Providers[0] != "groq" {
		t.Errorf("primary transcription provider = %q, want groq", cfg.Transcription.Providers[0])
	}
	if cfg.Providers["groq"].TranscriptionModel != "whisper-large-v3" {
		t.Errorf("groq model = %q", cfg.Providers["groq"].TranscriptionModel)
	}
	if len(cfg.Realtime.Keywords) != 2 {
		t.Errorf("keywords = %v", cfg.Realtime.Keywords)
	}
	// Unset fields still get defaults.
	if cfg.Realtime.MaxReconnects != 10 {
		t.Errorf("MaxReconnects = %d, want default 10", cfg.Realtime.MaxReconnects)
	}
	if cfg.Transcription.AttemptTimeout != 60*time.Second {
		t.Errorf("AttemptTimeout = %s, want default 60s", cfg.Transcription.AttemptTimeout)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults valid", func(c *Config) {}, false},
		{"unknown transcription provider", func(c *Config) {
			c.Transcription.Providers = []string{"nonexistent"}
		}, true},
		{"llm-only provider in transcription chain", func(c *Config) {
			c.Transcription.Providers = []string{"openrouter"}
		}, true},
		{"transcription-only provider in llm chain", func(c *Config) {
			c.LLM.Providers = []string{"deepgram"}
		}, true},
		{"unknown realtime provider", func(c *Config) {
			c.Realtime.Provider = "nonexistent"
		}, true},
		{"non-streaming realtime provider", func(c *Config) {
			c.Realtime.Provider = "openai"
		}, true},
		{"keyless non-streaming realtime provider", func(c *Config) {
			c.Realtime.Provider = "whisper-cpp"
		}, true},
		{"unknown provider section", func(c *Config) {
			c.Providers["nonexistent"] = ProviderConfig{APIKey: "x"}
		}, true},
		{"backoff inversion", func(c *Config) {
			c.Realtime.BaseBackoff = time.Minute
			c.Realtime.MaxBackoff = time.Second
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestResolvePath(t *testing.T) {
	if got := ResolvePath("/etc/mr.toml"); got != "/etc/mr.toml" {
		t.Errorf("explicit path ignored, got %q", got)
	}
	t.Setenv(EnvConfigPath, "/env/mr.toml")
	if got := ResolvePath(""); got != "/env/mr.toml" {
		t.Errorf("env path ignored, got %q", got)
	}
	t.Setenv(EnvConfigPath, "")
	if got := ResolvePath(""); got != DefaultPath {
		t.Errorf("default path = %q, want %q", got, DefaultPath)
	}
}

func TestManager_ReloadOnChange(t *testing.T) {
	path := writeConfig(t, `
[server]
listen_addr = ":9090"
`)
	m, err := NewManager(path)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := m.StartWatching(ctx); err != nil {
		t.Fatalf("StartWatching() error = %v", err)
	}
	defer m.Stop()

	if got := m.Get().Server.ListenAddr; got != ":9090" {
		t.Fatalf("initial ListenAddr = %q", got)
	}

	if err := os.WriteFile(path, []byte("[server]\nlisten_addr = \":7070\"\n"), 0644); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for m.Get().Server.ListenAddr != ":7070" {
		select {
		case <-deadline:
			t.Fatalf("config never reloaded, ListenAddr = %q", m.Get().Server.ListenAddr)
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
}

func TestManager_KeepsConfigOnInvalidReload(t *testing.T) {
	path := writeConfig(t, `
[server]
listen_addr = ":9090"
`)
	m, err := NewManager(path)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := m.StartWatching(ctx); err != nil {
		t.Fatalf("StartWatching() error = %v", err)
	}
	defer m.Stop()

	bad := "[transcription]\nproviders = [\"nonexistent\"]\n"
	if err := os.WriteFile(path, []byte(bad), 0644); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}

	time.Sleep(100 * time.Millisecond)
	if got := m.Get().Server.ListenAddr; got != ":9090" {
		t.Errorf("ListenAddr = %q, invalid reload should keep previous config", got)
	}
}

func TestFactorySettings(t *testing.T) {
	cfg := Default()
	cfg.Transcription.Language = "en"
	cfg.Providers["groq"] = ProviderConfig{APIKey: "gsk-test", LLMModel: "llama-3.1-8b-instant"}

	settings := cfg.FactorySettings()
	s, ok := settings["groq"]
	if !ok {
		t.Fatal("groq settings missing")
	}
	if s.APIKey != "gsk-test" || s.LLMModel != "llama-3.1-8b-instant" || s.Language != "en" {
		t.Errorf("settings = %+v", s)
	}
}

func TestStreamDialer_MissingKey(t *testing.T) {
	t.Setenv("DEEPGRAM_API_KEY", "")
	cfg := Default()
	if _, err := cfg.StreamDialer(); err == nil {
		t.Fatal("StreamDialer() without a key should fail")
	}

	cfg.Providers["deepgram"] = ProviderConfig{APIKey: "dg-test"}
	if _, err := cfg.StreamDialer(); err != nil {
		t.Fatalf("StreamDialer() error = %v", err)
	}
}

func TestStreamDialer_NonStreamingProvider(t *testing.T) {
	cfg := Default()
	cfg.Realtime.Provider = "openai"
	cfg.Providers["openai"] = ProviderConfig{APIKey: "sk-test"}

	_, err := cfg.StreamDialer()
	if err == nil {
		t.Fatal("StreamDialer() should reject a provider without a streaming adapter")
	}
	if !provider.IsConfiguration(err) {
		t.Errorf("error should be a ConfigurationError, got %T: %v", err, err)
	}
}
