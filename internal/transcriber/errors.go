package transcriber

import (
	"errors"

	"github.com/sashabaranov/go-openai"

	"github.com/nelsonlabs/morningreport/internal/provider"
)

// classifyAPIError maps a go-openai failure onto the provider error
// taxonomy. Context expiry and transport errors count as transient so the
// orchestrator moves on instead of hanging the chain.
func classifyAPIError(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return provider.FromHTTPStatus(apiErr.HTTPStatusCode, err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return provider.FromHTTPStatus(reqErr.HTTPStatusCode, err)
	}
	return provider.Transient(err)
}
