package orchestrator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nelsonlabs/morningreport/internal/provider"
)

type fakeProvider struct {
	calls  int
	result string
	err    error
}

func (f *fakeProvider) run(ctx context.Context) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.result, nil
}

func runChain(t *testing.T, entries []Entry[*fakeProvider]) (string, string, error) {
	t.Helper()
	chain, err := NewChain("transcription", time.Second, entries)
	if err != nil {
		t.Fatalf("NewChain() error = %v", err)
	}
	return Execute(context.Background(), chain, func(ctx context.Context, p *fakeProvider) (string, error) {
		return p.run(ctx)
	})
}

func TestExecute_FallbackOnTransient(t *testing.T) {
	first := &fakeProvider{err: provider.Transient(errors.New("rate limited"))}
	second := &fakeProvider{result: "transcript"}

	result, name, err := runChain(t, []Entry[*fakeProvider]{
		{Name: "openai", Provider: first},
		{Name: "groq", Provider: second},
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if result != "transcript" {
		t.Errorf("result = %q, want %q", result, "transcript")
	}
	if name != "groq" {
		t.Errorf("provider = %q, want %q", name, "groq")
	}
	if first.calls != 1 || second.calls != 1 {
		t.Errorf("calls = %d/%d, want 1/1", first.calls, second.calls)
	}
}

func TestExecute_AllTransientExhaustsChain(t *testing.T) {
	first := &fakeProvider{err: provider.Transient(errors.New("timeout"))}
	second := &fakeProvider{err: provider.Transient(errors.New("unavailable"))}

	_, _, err := runChain(t, []Entry[*fakeProvider]{
		{Name: "openai", Provider: first},
		{Name: "groq", Provider: second},
	})
	if !IsExhausted(err) {
		t.Fatalf("err = %v, want ExhaustedError", err)
	}
	var exhausted *ExhaustedError
	errors.As(err, &exhausted)
	if len(exhausted.Attempts) != 2 {
		t.Errorf("attempts = %d, want 2", len(exhausted.Attempts))
	}
	if first.calls != 1 || second.calls != 1 {
		t.Errorf("calls = %d/%d, want each provider invoked exactly once", first.calls, second.calls)
	}
	if !errors.Is(err, exhausted.Attempts[1].Err) {
		t.Error("Unwrap should expose the last attempt's error")
	}
}

func TestExecute_PermanentInputAbortsChain(t *testing.T) {
	first := &fakeProvider{err: provider.PermanentInput(errors.New("unsupported format"))}
	second := &fakeProvider{result: "never reached"}

	_, _, err := runChain(t, []Entry[*fakeProvider]{
		{Name: "openai", Provider: first},
		{Name: "groq", Provider: second},
	})
	if err == nil {
		t.Fatal("Execute() expected error")
	}
	if !provider.IsPermanentInput(err) {
		t.Errorf("err = %v, want permanent input error", err)
	}
	if IsExhausted(err) {
		t.Error("permanent input abort should not report chain exhaustion")
	}
	if second.calls != 0 {
		t.Errorf("second provider invoked %d times, want 0", second.calls)
	}
}

func TestExecute_AuthAdvancesChain(t *testing.T) {
	first := &fakeProvider{err: provider.Auth(errors.New("invalid api key"))}
	second := &fakeProvider{result: "transcript"}

	result, name, err := runChain(t, []Entry[*fakeProvider]{
		{Name: "openai", Provider: first},
		{Name: "groq", Provider: second},
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if result != "transcript" || name != "groq" {
		t.Errorf("got (%q, %q), want fallback success from groq", result, name)
	}
}

func TestExecute_ConfigurationAdvancesChain(t *testing.T) {
	// A config error can surface at execution time, e.g. a local model
	// file deleted after the chain was built.
	first := &fakeProvider{err: &provider.ConfigurationError{Provider: "whisper-cpp", Reason: "model file missing"}}
	second := &fakeProvider{result: "transcript"}

	result, name, err := runChain(t, []Entry[*fakeProvider]{
		{Name: "whisper-cpp", Provider: first},
		{Name: "groq", Provider: second},
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if result != "transcript" || name != "groq" {
		t.Errorf("got (%q, %q), want fallback success from groq", result, name)
	}
	if first.calls != 1 || second.calls != 1 {
		t.Errorf("calls = %d/%d, want 1/1", first.calls, second.calls)
	}
}

func TestExecute_UnclassifiedErrorTreatedAsTransient(t *testing.T) {
	first := &fakeProvider{err: errors.New("something odd")}
	second := &fakeProvider{result: "transcript"}

	result, _, err := runChain(t, []Entry[*fakeProvider]{
		{Name: "openai", Provider: first},
		{Name: "groq", Provider: second},
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if result != "transcript" {
		t.Errorf("result = %q, want fallback success", result)
	}
}

func TestExecute_CanceledContext(t *testing.T) {
	p := &fakeProvider{result: "transcript"}
	chain, err := NewChain("transcription", time.Second, []Entry[*fakeProvider]{{Name: "openai", Provider: p}})
	if err != nil {
		t.Fatalf("NewChain() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err = Execute(ctx, chain, func(ctx context.Context, p *fakeProvider) (string, error) {
		return p.run(ctx)
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if p.calls != 0 {
		t.Errorf("provider invoked %d times after cancellation, want 0", p.calls)
	}
}

func TestNewChain_Empty(t *testing.T) {
	if _, err := NewChain[*fakeProvider]("llm", time.Second, nil); err == nil {
		t.Fatal("NewChain() with no entries should fail")
	}
}

func TestChain_Names(t *testing.T) {
	chain, err := NewChain("llm", 0, []Entry[*fakeProvider]{
		{Name: "groq", Provider: &fakeProvider{}},
		{Name: "openrouter", Provider: &fakeProvider{}},
	})
	if err != nil {
		t.Fatalf("NewChain() error = %v", err)
	}
	names := chain.Names()
	if len(names) != 2 || names[0] != "groq" || names[1] != "openrouter" {
		t.Errorf("Names() = %v, want [groq openrouter]", names)
	}
	if chain.Primary() != "groq" {
		t.Errorf("Primary() = %q, want groq", chain.Primary())
	}
}
