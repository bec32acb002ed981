// Package orchestrator walks ordered provider chains, falling back to
// the next provider when the current one fails transiently and
// aborting early on errors that retrying cannot fix.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/nelsonlabs/morningreport/internal/logging"
	"github.com/nelsonlabs/morningreport/internal/metrics"
	"github.com/nelsonlabs/morningreport/internal/provider"
)

// DefaultAttemptTimeout bounds a single provider invocation so one
// hung vendor cannot stall the whole chain.
const DefaultAttemptTimeout = 60 * time.Second

// Entry pairs a provider name with its constructed adapter.
type Entry[P any] struct {
	Name     string
	Provider P
}

// Chain is an ordered list of same-capability providers. Position in
// the list is priority: earlier entries are tried first.
type Chain[P any] struct {
	capability string
	timeout    time.Duration
	entries    []Entry[P]
}

// NewChain builds a chain for the given capability ("transcription" or
// "llm"). At least one entry is required; a timeout of zero falls back
// to DefaultAttemptTimeout.
func NewChain[P any](capability string, timeout time.Duration, entries []Entry[P]) (*Chain[P], error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("%s chain: no providers configured", capability)
	}
	if timeout <= 0 {
		timeout = DefaultAttemptTimeout
	}
	return &Chain[P]{capability: capability, timeout: timeout, entries: entries}, nil
}

// Names returns the provider names in chain order.
func (c *Chain[P]) Names() []string {
	names := make([]string, len(c.entries))
	for i, e := range c.entries {
		names[i] = e.Name
	}
	return names
}

// Primary returns the name of the first provider in the chain.
func (c *Chain[P]) Primary() string {
	return c.entries[0].Name
}

// Execute runs op against each provider in order until one succeeds.
// It returns the successful result together with the name of the
// provider that produced it.
//
// Failure handling per attempt:
//   - permanent input errors abort the chain immediately, since no
//     other provider can succeed on the same bad input
//   - auth and configuration errors advance to the next provider and
//     are logged at error level so operators notice broken credentials
//     or setups
//   - everything else is treated as transient and advances the chain
//
// Each provider is invoked at most once per Execute call.
func Execute[P, R any](ctx context.Context, c *Chain[P], op func(context.Context, P) (R, error)) (R, string, error) {
	var zero R
	log := logging.WithComponent("orchestrator")
	attempts := make([]Attempt, 0, len(c.entries))

	for i, entry := range c.entries {
		if err := ctx.Err(); err != nil {
			return zero, "", fmt.Errorf("%s chain canceled: %w", c.capability, err)
		}

		attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
		result, err := op(attemptCtx, entry.Provider)
		cancel()

		if err == nil {
			metrics.Default.ProviderAttempts.WithLabelValues(entry.Name, c.capability, "success").Inc()
			if i > 0 {
				log.Info().
					Str("capability", c.capability).
					Str("provider", entry.Name).
					Int("fallback_depth", i).
					Msg("fallback provider succeeded")
			}
			return result, entry.Name, nil
		}

		switch {
		case provider.IsPermanentInput(err):
			metrics.Default.ProviderAttempts.WithLabelValues(entry.Name, c.capability, "permanent").Inc()
			log.Warn().
				Str("capability", c.capability).
				Str("provider", entry.Name).
				Err(err).
				Msg("input rejected, not retrying on other providers")
			return zero, "", fmt.Errorf("%s via %s: %w", c.capability, entry.Name, err)
		case provider.IsAuth(err):
			metrics.Default.ProviderAttempts.WithLabelValues(entry.Name, c.capability, "auth").Inc()
			metrics.Default.AuthFailures.WithLabelValues(entry.Name).Inc()
			log.Error().
				Str("capability", c.capability).
				Str("provider", entry.Name).
				Err(err).
				Msg("provider rejected credentials, advancing to next provider")
		case provider.IsConfiguration(err):
			// Construction-time checks cannot catch everything, e.g. a
			// local model file removed while the chain is live.
			metrics.Default.ProviderAttempts.WithLabelValues(entry.Name, c.capability, "configuration").Inc()
			log.Error().
				Str("capability", c.capability).
				Str("provider", entry.Name).
				Err(err).
				Msg("provider misconfigured, advancing to next provider")
		default:
			metrics.Default.ProviderAttempts.WithLabelValues(entry.Name, c.capability, "transient").Inc()
			log.Warn().
				Str("capability", c.capability).
				Str("provider", entry.Name).
				Err(err).
				Msg("provider failed, advancing to next provider")
		}
		attempts = append(attempts, Attempt{Provider: entry.Name, Err: err})
	}

	metrics.Default.ChainExhausted.WithLabelValues(c.capability).Inc()
	log.Error().
		Str("capability", c.capability).
		Strs("providers", c.Names()).
		Msg("all providers exhausted")
	return zero, "", &ExhaustedError{Capability: c.capability, Attempts: attempts}
}
