package chat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/kakuhq/kaku/internal/auth"
	"github.com/kakuhq/kaku/internal/llm"
	"github.com/kakuhq/kaku/internal/llm/llmtest"
	"github.com/kakuhq/kaku/internal/logger"
	"github.com/kakuhq/kaku/internal/prompt"
	"github.com/kakuhq/kaku/internal/retrieval"
	"github.com/kakuhq/kaku/internal/style"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProfiles struct {
	profile style.Profile
	owners  []string
}

func (f *fakeProfiles) Profile(_ context.Context, owner string) (style.Profile, error) {
	f.owners = append(f.owners, owner)
	return f.profile, nil
}

type fakeContexts struct {
	text string
	err  error
}

func (f fakeContexts) RelevantContext(context.Context, string, string, int) (string, error) {
	return f.text, f.err
}

func userRequest(content string) Request {
	return Request{Owner: "user-1", Messages: []Message{{Role: RoleUser, Content: content}}}
}

const detailedRequest = "Summarize our meeting notes about the launch, focusing on the risks we discussed."

func TestReplyAsksFollowUpWithoutModelCall(t *testing.T) {
	mock := llmtest.New()
	b := NewLLMBackend(mock, &fakeProfiles{}, nil, logger.Nop())

	resp, err := b.Reply(context.Background(), userRequest("write an email"))
	require.NoError(t, err)
	assert.True(t, resp.FollowUp)
	assert.True(t, prompt.IsFollowUpQuestion(resp.Message))
	assert.Equal(t, 0, mock.CallCount())
}

func TestReplyParsesJSON(t *testing.T) {
	mock := llmtest.New(`{"message":"Here you go.","title":"Launch summary","draftContent":{"title":"","content":"The launch..."},"suggestions":["Shorter","More formal","Add bullets","Translate"]}`)
	b := NewLLMBackend(mock, &fakeProfiles{}, nil, logger.Nop(), WithModel("gpt-4o"))

	resp, err := b.Reply(context.Background(), userRequest(detailedRequest))
	require.NoError(t, err)
	assert.Equal(t, "Here you go.", resp.Message)
	assert.Equal(t, "Launch summary", resp.Title)
	require.NotNil(t, resp.DraftContent)
	assert.Equal(t, "Launch summary", resp.DraftContent.Title)
	assert.Equal(t, []string{"Shorter", "More formal", "Add bullets"}, resp.Suggestions)
	assert.False(t, resp.FollowUp)

	calls := mock.Calls()
	require.Len(t, calls, 1)
	assert.True(t, calls[0].JSONMode)
	assert.Equal(t, "gpt-4o", calls[0].Model)
	assert.Equal(t, llm.RoleSystem, calls[0].Messages[0].Role)
	assert.Equal(t, detailedRequest, calls[0].Messages[1].Content)
}

func TestReplyFallsBackToRawText(t *testing.T) {
	b := NewLLMBackend(llmtest.New("  Just plain prose.  "), &fakeProfiles{}, nil, logger.Nop())
	resp, err := b.Reply(context.Background(), userRequest(detailedRequest))
	require.NoError(t, err)
	assert.Equal(t, "Just plain prose.", resp.Message)
	assert.Nil(t, resp.DraftContent)
}

func TestReplyUsesCorpusWhenAvailable(t *testing.T) {
	mock := llmtest.New(`{"message":"ok"}`)
	profiles := &fakeProfiles{profile: style.Profile{HasDocuments: true, FormalityScore: 9}}
	b := NewLLMBackend(mock, profiles, fakeContexts{text: "[Source: Notes (similarity: 0.80)]\nLaunch risks"}, logger.Nop())

	req := userRequest(detailedRequest)
	req.HasCorpus = true
	req.Style = "Casual"
	_, err := b.Reply(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, []string{"user-1"}, profiles.owners)
	system := mock.Calls()[0].Messages[0].Content
	assert.Contains(t, system, "very formal")
	assert.Contains(t, system, "Launch risks")
	assert.Contains(t, system, "Casual: ")
}

func TestReplyPlainPathSkipsCorpus(t *testing.T) {
	mock := llmtest.New(`{"message":"ok"}`)
	profiles := &fakeProfiles{profile: style.Profile{HasDocuments: true}}
	b := NewLLMBackend(mock, profiles, fakeContexts{text: "should not appear"}, logger.Nop())

	_, err := b.Reply(context.Background(), userRequest(detailedRequest))
	require.NoError(t, err)
	assert.Empty(t, profiles.owners)
	system := mock.Calls()[0].Messages[0].Content
	assert.NotContains(t, system, "should not appear")
	assert.Contains(t, system, "natural, conversational tone")
}

func TestReplyIgnoresRetrievalFailure(t *testing.T) {
	mock := llmtest.New(`{"message":"ok"}`)
	profiles := &fakeProfiles{profile: style.Profile{HasDocuments: true}}
	b := NewLLMBackend(mock, profiles, fakeContexts{err: errors.New("index down")}, logger.Nop())

	req := userRequest(detailedRequest)
	req.HasCorpus = true
	resp, err := b.Reply(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Message)
	assert.NotContains(t, mock.Calls()[0].Messages[0].Content, retrieval.NoRelevantDocuments)
}

func TestReplyRequiresUserMessage(t *testing.T) {
	b := NewLLMBackend(llmtest.New(), &fakeProfiles{}, nil, logger.Nop())
	_, err := b.Reply(context.Background(), Request{Messages: []Message{{Role: RoleAssistant, Content: "hi"}}})
	assert.ErrorIs(t, err, ErrNoUserMessage)
}

type flakyProvider struct {
	failures int
	calls    int
}

func (f *flakyProvider) Name() string { return "flaky" }

func (f *flakyProvider) Complete(context.Context, llm.CompletionRequest) (*llm.CompletionResponse, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, errors.New("status 429: too many requests")
	}
	return &llm.CompletionResponse{Content: `{"message":"finally"}`}, nil
}

func TestReplyRetriesRateLimits(t *testing.T) {
	p := &flakyProvider{failures: 2}
	b := NewLLMBackend(p, &fakeProfiles{}, nil, logger.Nop(), WithRetry(3, time.Millisecond))

	resp, err := b.Reply(context.Background(), userRequest(detailedRequest))
	require.NoError(t, err)
	assert.Equal(t, "finally", resp.Message)
	assert.Equal(t, 3, p.calls)

	p = &flakyProvider{failures: 5}
	b = NewLLMBackend(p, &fakeProfiles{}, nil, logger.Nop(), WithRetry(1, time.Millisecond))
	_, err = b.Reply(context.Background(), userRequest(detailedRequest))
	assert.Error(t, err)
	assert.Equal(t, 2, p.calls)
}

func TestReplyDoesNotRetryOtherErrors(t *testing.T) {
	mock := llmtest.New()
	mock.Err = errors.New("invalid api key")
	b := NewLLMBackend(mock, &fakeProfiles{}, nil, logger.Nop(), WithRetry(3, time.Millisecond))
	_, err := b.Reply(context.Background(), userRequest(detailedRequest))
	assert.Error(t, err)
	assert.Equal(t, 1, mock.CallCount())
}

func TestParseReplyCodeFence(t *testing.T) {
	resp := parseReply("```json\n{\"message\":\"fenced\",\"draftContent\":{\"title\":\"T\",\"content\":\"  \"}}\n```")
	assert.Equal(t, "fenced", resp.Message)
	assert.Nil(t, resp.DraftContent)
}

func TestChatRoute(t *testing.T) {
	mock := llmtest.New(`{"message":"routed"}`)
	r := chi.NewRouter()
	r.Use(auth.Static(auth.Session{Kind: auth.KindAuthenticated, UserID: "user-1"}))
	RegisterRoutes(r, NewLLMBackend(mock, &fakeProfiles{}, nil, logger.Nop()))

	body := `{"messages":[{"role":"user","content":"` + detailedRequest + `"}],"style":"Original","purpose":"General","hasCorpus":false}`
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "routed", resp.Message)

	req = httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"messages":[]}`))
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"messages":[{"role":"robot","content":"x"}]}`))
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
