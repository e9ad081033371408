package conversation

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/kakuhq/kaku/internal/auth"
	"github.com/kakuhq/kaku/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(m *Manager) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.Static(auth.Session{Kind: auth.KindAuthenticated, UserID: owner1}))
	RegisterRoutes(r, m)
	RegisterWebSocket(r, m, logger.Nop(), true)
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestConversationRoutes(t *testing.T) {
	m, _ := newManager(NewMemoryRepository(), draftBackend())
	r := newRouter(m)

	rec := do(t, r, http.MethodPost, "/api/conversations", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	var c Conversation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &c))
	require.NotEmpty(t, c.ID)

	rec = do(t, r, http.MethodPost, "/api/conversations/"+c.ID+"/messages", `{"content":"Summarize my garden diary","style":"Casual"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &c))
	require.Len(t, c.Messages, 3)
	require.NotNil(t, c.Draft)

	rec = do(t, r, http.MethodPost, "/api/conversations/"+c.ID+"/messages", `{"content":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, r, http.MethodPost, "/api/conversations/"+c.ID+"/draft/confirm", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var confirmed struct {
		Conversation Conversation `json:"conversation"`
		Document     struct {
			ID    string `json:"id"`
			Title string `json:"title"`
		} `json:"document"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &confirmed))
	assert.Equal(t, "Garden notes", confirmed.Document.Title)
	assert.Equal(t, DraftSaved, confirmed.Conversation.Draft.State)

	rec = do(t, r, http.MethodPost, "/api/conversations/"+c.ID+"/draft/discard", "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, r, http.MethodGet, "/api/conversations", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Conversations []Conversation `json:"conversations"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Conversations, 1)

	rec = do(t, r, http.MethodGet, "/api/conversations/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, r, http.MethodDelete, "/api/conversations/"+c.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var deleted struct {
		Next Conversation `json:"next"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &deleted))
	assert.NotEqual(t, c.ID, deleted.Next.ID)
	assert.Equal(t, DefaultTitle, deleted.Next.Title)
}

func TestWebSocketSend(t *testing.T) {
	m, _ := newManager(NewMemoryRepository(), echoBackend())
	server := httptest.NewServer(newRouter(m))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/chat"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()
	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)

	require.NoError(t, conn.WriteJSON(wsRequest{Type: "new"}))
	var created wsResponse
	require.NoError(t, conn.ReadJSON(&created))
	require.Equal(t, "conversation", created.Type)
	id := created.Conversation.ID

	require.NoError(t, conn.WriteJSON(wsRequest{Type: "send", ConversationID: id, Content: "hello"}))
	var pending, reply wsResponse
	require.NoError(t, conn.ReadJSON(&pending))
	require.Equal(t, "pending", pending.Type)
	assert.True(t, pending.Conversation.Messages[len(pending.Conversation.Messages)-1].IsLoading)

	require.NoError(t, conn.ReadJSON(&reply))
	require.Equal(t, "reply", reply.Type)
	assert.Equal(t, "echo: hello", reply.Conversation.Messages[len(reply.Conversation.Messages)-1].Content)

	require.NoError(t, conn.WriteJSON(wsRequest{Type: "load", ConversationID: "missing"}))
	var failed wsResponse
	require.NoError(t, conn.ReadJSON(&failed))
	assert.Equal(t, "error", failed.Type)

	require.NoError(t, conn.WriteJSON(wsRequest{Type: "dance"}))
	require.NoError(t, conn.ReadJSON(&failed))
	assert.Contains(t, failed.Error, "unknown message type")
}
