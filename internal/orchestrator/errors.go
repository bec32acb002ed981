package orchestrator

import (
	"errors"
	"fmt"
	"strings"
)

// Attempt records one failed provider invocation inside a chain.
type Attempt struct {
	Provider string
	Err      error
}

// ExhaustedError is returned when every provider in a fallback chain
// failed. It carries the full attempt history so callers can report
// which providers were tried and why each one failed.
type ExhaustedError struct {
	Capability string
	Attempts   []Attempt
}

func (e *ExhaustedError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "all %s providers exhausted after %d attempts", e.Capability, len(e.Attempts))
	for _, a := range e.Attempts {
		fmt.Fprintf(&b, "; %s: %v", a.Provider, a.Err)
	}
	return b.String()
}

// Unwrap exposes the last attempt's error, which is usually the most
// relevant one for callers inspecting the failure.
func (e *ExhaustedError) Unwrap() error {
	if len(e.Attempts) == 0 {
		return nil
	}
	return e.Attempts[len(e.Attempts)-1].Err
}

// IsExhausted reports whether err means a whole fallback chain failed.
func IsExhausted(err error) bool {
	var e *ExhaustedError
	return errors.As(err, &e)
}
