package provider

import (
	"errors"
	"fmt"
	"net/http"
)

// ConfigurationError marks a provider as unconstructible: unknown name,
// missing credential, or unusable settings. It excludes that provider from
// a chain without failing the chain as a whole.
type ConfigurationError struct {
	Provider string
	Reason   string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("provider %s: %s", e.Provider, e.Reason)
}

// TransientError marks a failure worth retrying on another provider:
// timeouts, rate limits, transport failures, 5xx responses.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string { return e.Err.Error() }
func (e *TransientError) Unwrap() error { return e.Err }

// PermanentInputError marks a payload the provider rejected as structurally
// invalid. Every other provider would reject it identically, so the whole
// chain aborts.
type PermanentInputError struct {
	Err error
}

func (e *PermanentInputError) Error() string { return e.Err.Error() }
func (e *PermanentInputError) Unwrap() error { return e.Err }

// AuthError marks rejected or missing credentials. A different provider may
// still have valid credentials, so the chain advances, but the failure is
// flagged loudly for operators.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string { return e.Err.Error() }
func (e *AuthError) Unwrap() error { return e.Err }

func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &TransientError{Err: err}
}

func PermanentInput(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentInputError{Err: err}
}

func Auth(err error) error {
	if err == nil {
		return nil
	}
	return &AuthError{Err: err}
}

func IsTransient(err error) bool {
	var t *TransientError
	return errors.As(err, &t)
}

func IsPermanentInput(err error) bool {
	var p *PermanentInputError
	return errors.As(err, &p)
}

func IsAuth(err error) bool {
	var a *AuthError
	return errors.As(err, &a)
}

func IsConfiguration(err error) bool {
	var c *ConfigurationError
	return errors.As(err, &c)
}

// FromHTTPStatus classifies an API failure by its HTTP status code.
// Unknown codes are wrapped as transient so a hung or misbehaving provider
// never stalls the fallback chain.
func FromHTTPStatus(status int, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return Auth(err)
	case status == http.StatusBadRequest ||
		status == http.StatusRequestEntityTooLarge ||
		status == http.StatusUnsupportedMediaType ||
		status == http.StatusUnprocessableEntity:
		return PermanentInput(err)
	default:
		return Transient(err)
	}
}
