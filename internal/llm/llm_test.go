package llm

import (
	"testing"

	"github.com/nelsonlabs/morningreport/internal/provider"
)

func TestNewAdapter(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name:   "openai with key",
			config: Config{Provider: "openai", APIKey: "sk-test"},
		},
		{
			name:   "groq with key",
			config: Config{Provider: "groq", APIKey: "gsk-test"},
		},
		{
			name:   "openrouter with key",
			config: Config{Provider: "openrouter", APIKey: "or-test"},
		},
		{
			name:    "missing key",
			config:  Config{Provider: "groq"},
			wantErr: true,
		},
		{
			name:    "unknown provider",
			config:  Config{Provider: "nonexistent", APIKey: "x"},
			wantErr: true,
		},
		{
			name:    "transcription-only provider",
			config:  Config{Provider: "deepgram", APIKey: "dg-test"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adapter, err := NewAdapter(tt.config)
			if tt.wantErr {
				if err == nil {
					t.Fatal("NewAdapter() expected error, got nil")
				}
				if !provider.IsConfiguration(err) {
					t.Errorf("error should be a ConfigurationError, got %T: %v", err, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewAdapter() error = %v", err)
			}
			if adapter == nil {
				t.Fatal("NewAdapter() returned nil adapter")
			}
		})
	}
}

func TestNewAdapter_DefaultModel(t *testing.T) {
	adapter, err := NewAdapter(Config{Provider: "groq", APIKey: "gsk-test"})
	if err != nil {
		t.Fatalf("NewAdapter() error = %v", err)
	}
	groq, ok := adapter.(*GroqAdapter)
	if !ok {
		t.Fatalf("adapter = %T, want *GroqAdapter", adapter)
	}
	if groq.config.Model != "llama-3.3-70b-versatile" {
		t.Errorf("model = %q, want default %q", groq.config.Model, "llama-3.3-70b-versatile")
	}
}
