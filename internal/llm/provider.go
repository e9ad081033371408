// Package llm talks to chat-completion backends. Every backend implements
// Provider; wrappers add rate limiting and usage logging.
package llm

import (
	"context"
	"fmt"
)

// Provider defines the interface for LLM providers.
type Provider interface {
	// Complete sends a completion request and returns the response.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
	// Name returns the name of this provider.
	Name() string
}

// defaultMaxTokens caps replies when the request does not say otherwise.
const defaultMaxTokens = 4096

func statusError(provider string, status int, body []byte) error {
	const maxBody = 512
	if len(body) > maxBody {
		body = body[:maxBody]
	}
	return fmt.Errorf("%s returned status %d: %s", provider, status, string(body))
}
