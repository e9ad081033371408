package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/kakuhq/kaku/internal/llm"
	"github.com/kakuhq/kaku/internal/logger"
	"github.com/kakuhq/kaku/internal/prompt"
	"github.com/kakuhq/kaku/internal/retrieval"
	"github.com/kakuhq/kaku/internal/style"
)

// MaxSuggestions caps the follow-up suggestions of a reply.
const MaxSuggestions = 3

// ProfileSource provides the style profile of an owner's corpus.
type ProfileSource interface {
	Profile(ctx context.Context, owner string) (style.Profile, error)
}

// ContextSource retrieves grounding text for a query.
type ContextSource interface {
	RelevantContext(ctx context.Context, owner, query string, maxTokens int) (string, error)
}

// LLMBackend answers with a language model, grounded in the owner's corpus.
type LLMBackend struct {
	provider         llm.Provider
	profiles         ProfileSource
	contexts         ContextSource
	log              *logger.Logger
	model            string
	maxContextTokens int
	temperature      float64
	maxRetries       int
	backoff          time.Duration
}

// Option configures an LLMBackend.
type Option func(*LLMBackend)

// WithModel overrides the provider's default model.
func WithModel(model string) Option {
	return func(b *LLMBackend) { b.model = model }
}

// WithMaxContextTokens bounds the retrieved context.
func WithMaxContextTokens(n int) Option {
	return func(b *LLMBackend) { b.maxContextTokens = n }
}

// WithRetry sets how often rate-limited calls are retried and the first
// backoff delay, which doubles per attempt.
func WithRetry(maxRetries int, backoff time.Duration) Option {
	return func(b *LLMBackend) {
		b.maxRetries = maxRetries
		b.backoff = backoff
	}
}

// NewLLMBackend creates a backend. contexts may be nil to disable retrieval.
func NewLLMBackend(provider llm.Provider, profiles ProfileSource, contexts ContextSource, log *logger.Logger, opts ...Option) *LLMBackend {
	b := &LLMBackend{
		provider:         provider,
		profiles:         profiles,
		contexts:         contexts,
		log:              log,
		maxContextTokens: 2000,
		temperature:      0.7,
		maxRetries:       3,
		backoff:          2 * time.Second,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Reply implements Backend. A thin writing request gets a clarifying
// question without a model call.
func (b *LLMBackend) Reply(ctx context.Context, req Request) (*Response, error) {
	last := lastUserMessage(req.Messages)
	if last < 0 {
		return nil, ErrNoUserMessage
	}
	message := req.Messages[last].Content

	history := make([]prompt.Turn, 0, last)
	for _, m := range req.Messages[:last] {
		history = append(history, prompt.Turn{Role: m.Role, Content: m.Content})
	}
	if prompt.NeedsFollowUp(message, history) {
		b.log.Debug("asking follow-up", "owner", req.Owner)
		return &Response{Message: prompt.FollowUpQuestion(message), FollowUp: true}, nil
	}

	opts := prompt.Options{
		Profile: style.Profile{FormalityScore: style.NeutralFormality},
		Style:   prompt.StylePreset(req.Style),
		Purpose: prompt.PurposePreset(req.Purpose),
	}
	if req.HasCorpus {
		profile, err := b.profiles.Profile(ctx, req.Owner)
		if err != nil {
			return nil, fmt.Errorf("loading style profile: %w", err)
		}
		opts.Profile = profile

		if b.contexts != nil {
			text, err := b.contexts.RelevantContext(ctx, req.Owner, message, b.maxContextTokens)
			if err != nil {
				// Retrieval is best effort; the reply can go ahead without it.
				b.log.Warn("retrieving context", "owner", req.Owner, "error", err)
			} else if text != retrieval.NoRelevantDocuments {
				opts.Context = text
			}
		}
	}

	messages := make([]llm.Message, 0, len(req.Messages)+1)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: prompt.SystemPrompt(opts)})
	for _, m := range req.Messages {
		if m.Role == RoleSystem || strings.TrimSpace(m.Content) == "" {
			continue
		}
		messages = append(messages, llm.Message{Role: llm.Role(m.Role), Content: m.Content})
	}

	resp, err := b.complete(ctx, llm.CompletionRequest{
		Model:       b.model,
		Messages:    messages,
		Temperature: b.temperature,
		JSONMode:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("llm completion: %w", err)
	}
	return parseReply(resp.Content), nil
}

// complete calls the provider with exponential backoff on rate limit errors.
func (b *LLMBackend) complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	backoff := b.backoff
	for attempt := 0; ; attempt++ {
		resp, err := b.provider.Complete(ctx, req)
		if err == nil {
			return resp, nil
		}
		if !retryable(err) {
			return nil, err
		}
		if attempt >= b.maxRetries {
			return nil, fmt.Errorf("rate limited after %d retries: %w", b.maxRetries, err)
		}

		b.log.Debug("retrying completion", "attempt", attempt+1, "backoff", backoff, "error", err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
			backoff = min(backoff*2, 30*time.Second)
		}
	}
}

func retryable(err error) bool {
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "rate_limit") || strings.Contains(s, "rate limit") ||
		strings.Contains(s, "429") || strings.Contains(s, "too many requests") ||
		strings.Contains(s, "overloaded")
}

type modelReply struct {
	Message      string   `json:"message"`
	Title        string   `json:"title"`
	DraftContent *Draft   `json:"draftContent"`
	Suggestions  []string `json:"suggestions"`
}

// parseReply reads the model's JSON reply. Output that is not a JSON object
// with a message becomes the message itself.
func parseReply(raw string) *Response {
	raw = strings.TrimSpace(raw)

	jsonStr := raw
	if idx := strings.Index(jsonStr, "{"); idx >= 0 {
		jsonStr = jsonStr[idx:]
	}
	if idx := strings.LastIndex(jsonStr, "}"); idx >= 0 {
		jsonStr = jsonStr[:idx+1]
	}

	var reply modelReply
	if err := json.Unmarshal([]byte(jsonStr), &reply); err != nil || strings.TrimSpace(reply.Message) == "" {
		return &Response{Message: raw}
	}

	out := &Response{
		Message: strings.TrimSpace(reply.Message),
		Title:   strings.TrimSpace(reply.Title),
	}
	if d := reply.DraftContent; d != nil && strings.TrimSpace(d.Content) != "" {
		out.DraftContent = &Draft{Title: strings.TrimSpace(d.Title), Content: d.Content}
		if out.DraftContent.Title == "" {
			out.DraftContent.Title = out.Title
		}
	}
	for _, s := range reply.Suggestions {
		if s = strings.TrimSpace(s); s != "" && len(out.Suggestions) < MaxSuggestions {
			out.Suggestions = append(out.Suggestions, s)
		}
	}
	return out
}
