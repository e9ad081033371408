package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kakuhq/kaku/internal/auth"
	"github.com/kakuhq/kaku/internal/chat"
	"github.com/kakuhq/kaku/internal/conversation"
	"github.com/kakuhq/kaku/internal/corpus"
	"github.com/kakuhq/kaku/internal/embeddings/embeddingstest"
	"github.com/kakuhq/kaku/internal/llm/llmtest"
	"github.com/kakuhq/kaku/internal/logger"
	"github.com/kakuhq/kaku/internal/retrieval"
)

func newDeps(issuer *auth.Issuer) Deps {
	log := logger.Nop()
	svc := corpus.NewService(corpus.NewMemoryRepository(), embeddingstest.NewHash(16), log)
	engine := retrieval.New(svc, svc.Embedder())
	backend := chat.NewLLMBackend(llmtest.New(`{"message":"hello"}`), svc, engine, log)
	return Deps{
		Corpus:        svc,
		Retrieval:     engine,
		Chat:          backend,
		Conversations: conversation.NewManager(conversation.NewMemoryRepository(), backend, svc, log),
		Issuer:        issuer,
	}
}

func do(t *testing.T, h http.Handler, method, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHealthCheck(t *testing.T) {
	srv := New(Config{}, Deps{}, logger.Nop())

	w := do(t, srv.Router(), http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestCORSHeaders(t *testing.T) {
	srv := New(Config{AllowAllOrigins: true}, Deps{}, logger.Nop())

	req := httptest.NewRequest(http.MethodOptions, "/healthz", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	assert.NotEmpty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestSingleUserMode(t *testing.T) {
	deps := newDeps(nil)
	_, err := deps.Corpus.AddText(context.Background(), auth.LocalOwner, "Sample", "A short sample of prose. It has two sentences.")
	require.NoError(t, err)
	srv := New(Config{}, deps, logger.Nop())

	w := do(t, srv.Router(), http.MethodGet, "/api/documents", "")
	require.Equal(t, http.StatusOK, w.Code)
	var docs []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &docs))
	assert.Len(t, docs, 1)

	w = do(t, srv.Router(), http.MethodPost, "/api/conversations", "")
	assert.Equal(t, http.StatusCreated, w.Code)

	// Session routes only exist when tokens are issued.
	w = do(t, srv.Router(), http.MethodPost, "/api/auth/demo", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTokenMode(t *testing.T) {
	issuer, err := auth.NewIssuer("secret", time.Hour)
	require.NoError(t, err)
	deps := newDeps(issuer)
	_, err = deps.Corpus.AddText(context.Background(), "u-1", "Sample", "A short sample of prose. It has two sentences.")
	require.NoError(t, err)
	srv := New(Config{Auth: auth.RouteOptions{DemoEnabled: true}}, deps, logger.Nop())

	assert.Equal(t, http.StatusOK, do(t, srv.Router(), http.MethodGet, "/healthz", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(t, srv.Router(), http.MethodGet, "/api/documents", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(t, srv.Router(), http.MethodGet, "/api/conversations", "").Code)

	owner, _, err := issuer.Issue(auth.Session{Kind: auth.KindAuthenticated, UserID: "u-1"})
	require.NoError(t, err)
	w := do(t, srv.Router(), http.MethodGet, "/api/documents", owner)
	require.Equal(t, http.StatusOK, w.Code)
	var docs []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &docs))
	assert.Len(t, docs, 1)

	w = do(t, srv.Router(), http.MethodPost, "/api/auth/demo", "")
	require.Equal(t, http.StatusCreated, w.Code)
	var demo struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &demo))

	w = do(t, srv.Router(), http.MethodGet, "/api/documents", demo.Token)
	require.Equal(t, http.StatusOK, w.Code)
	docs = nil
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &docs))
	assert.Empty(t, docs)
}
