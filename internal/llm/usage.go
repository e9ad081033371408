package llm

import (
	"context"
	"time"

	"github.com/kakuhq/kaku/internal/logger"
)

// LoggingProvider logs latency, token usage and estimated cost of every call.
type LoggingProvider struct {
	provider Provider
	log      *logger.Logger
}

// NewLoggingProvider wraps provider so each completion is logged at debug
// level and each failure at warn level.
func NewLoggingProvider(provider Provider, log *logger.Logger) Provider {
	return &LoggingProvider{provider: provider, log: log}
}

func (p *LoggingProvider) Name() string {
	return p.provider.Name()
}

func (p *LoggingProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	start := time.Now()
	resp, err := p.provider.Complete(ctx, req)
	if err != nil {
		p.log.Warn("completion failed", "provider", p.provider.Name(), "elapsed", time.Since(start), "error", err)
		return nil, err
	}
	p.log.Debug("completion",
		"provider", p.provider.Name(),
		"model", resp.Model,
		"input_tokens", resp.InputTokens,
		"output_tokens", resp.OutputTokens,
		"cost_usd", EstimateCost(resp.Model, resp.InputTokens, resp.OutputTokens),
		"elapsed", time.Since(start),
	)
	return resp, nil
}
