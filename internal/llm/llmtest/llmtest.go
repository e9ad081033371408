// Package llmtest provides a scripted llm.Provider for tests.
package llmtest

import (
	"context"
	"sync"

	"github.com/kakuhq/kaku/internal/llm"
)

// Mock records requests and replays canned replies in order. When the
// script runs out the last reply repeats.
type Mock struct {
	mu      sync.Mutex
	calls   []llm.CompletionRequest
	replies []string
	Err     error
}

// New returns a Mock answering with replies.
func New(replies ...string) *Mock {
	return &Mock{replies: replies}
}

func (m *Mock) Name() string { return "mock" }

func (m *Mock) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, req)
	if m.Err != nil {
		return nil, m.Err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	content := "mock response"
	if n := len(m.replies); n > 0 {
		idx := min(len(m.calls)-1, n-1)
		content = m.replies[idx]
	}
	return &llm.CompletionResponse{
		Content:      content,
		InputTokens:  10,
		OutputTokens: 20,
		Model:        "mock-model",
		FinishReason: "stop",
	}, nil
}

// Calls returns a copy of the recorded requests.
func (m *Mock) Calls() []llm.CompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]llm.CompletionRequest(nil), m.calls...)
}

// CallCount returns the number of completions requested.
func (m *Mock) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}
