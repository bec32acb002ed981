package orchestrator

import (
	"testing"
	"time"
)

func testSettings() map[string]ProviderSettings {
	return map[string]ProviderSettings{
		"openai":     {APIKey: "sk-test"},
		"groq":       {APIKey: "gsk-test"},
		"openrouter": {APIKey: "or-test"},
	}
}

func TestFactory_TranscriberChain(t *testing.T) {
	f := NewFactory([]string{"openai", "groq"}, nil, testSettings(), time.Second)
	chain, err := f.TranscriberChain()
	if err != nil {
		t.Fatalf("TranscriberChain() error = %v", err)
	}
	names := chain.Names()
	if len(names) != 2 || names[0] != "openai" || names[1] != "groq" {
		t.Errorf("Names() = %v, want [openai groq]", names)
	}
}

func TestFactory_SkipsUnconstructibleProviders(t *testing.T) {
	// openai has no key configured and no env fallback in this test,
	// so only groq should make it into the chain.
	t.Setenv("OPENAI_API_KEY", "")
	f := NewFactory([]string{"openai", "groq"}, nil, map[string]ProviderSettings{
		"groq": {APIKey: "gsk-test"},
	}, time.Second)
	chain, err := f.TranscriberChain()
	if err != nil {
		t.Fatalf("TranscriberChain() error = %v", err)
	}
	names := chain.Names()
	if len(names) != 1 || names[0] != "groq" {
		t.Errorf("Names() = %v, want [groq]", names)
	}
}

func TestFactory_EmptyChainFails(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("GROQ_API_KEY", "")
	f := NewFactory([]string{"openai", "groq"}, nil, nil, time.Second)
	if _, err := f.TranscriberChain(); err == nil {
		t.Fatal("TranscriberChain() with no usable providers should fail")
	}
}

func TestFactory_APIKeyFromEnv(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "gsk-from-env")
	f := NewFactory(nil, []string{"groq"}, nil, time.Second)
	chain, err := f.LLMChain()
	if err != nil {
		t.Fatalf("LLMChain() error = %v", err)
	}
	if chain.Primary() != "groq" {
		t.Errorf("Primary() = %q, want groq", chain.Primary())
	}
}

func TestFactory_LLMChainOrder(t *testing.T) {
	f := NewFactory(nil, []string{"groq", "openrouter", "openai"}, testSettings(), time.Second)
	chain, err := f.LLMChain()
	if err != nil {
		t.Fatalf("LLMChain() error = %v", err)
	}
	names := chain.Names()
	want := []string{"groq", "openrouter", "openai"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("Names() = %v, want %v", names, want)
		}
	}
}
