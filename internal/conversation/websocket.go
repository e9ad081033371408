package conversation

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/kakuhq/kaku/internal/logger"
)

// wsRequest is the incoming WebSocket message format.
type wsRequest struct {
	Type           string `json:"type"` // "send", "new" or "load"
	ConversationID string `json:"conversationId"`
	Content        string `json:"content"`
	Style          string `json:"style"`
	Purpose        string `json:"purpose"`
}

// wsResponse is the outgoing WebSocket message format.
type wsResponse struct {
	Type         string        `json:"type"` // "pending", "reply", "conversation" or "error"
	Conversation *Conversation `json:"conversation,omitempty"`
	Error        string        `json:"error,omitempty"`
}

// RegisterWebSocket mounts the /ws/chat endpoint. Each send produces a
// "pending" frame with the loading placeholder, then a "reply" frame.
func RegisterWebSocket(r chi.Router, m *Manager, log *logger.Logger, allowAllOrigins bool) {
	upgrader := websocket.Upgrader{}
	if allowAllOrigins {
		upgrader.CheckOrigin = func(r *http.Request) bool { return true }
	}
	r.Get("/ws/chat", handleWebSocket(m, log, upgrader))
}

func handleWebSocket(m *Manager, log *logger.Logger, upgrader websocket.Upgrader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warn("websocket upgrade", "error", err)
			return
		}
		defer conn.Close()

		ctx := r.Context()
		user := owner(r)
		send := func(resp wsResponse) {
			if err := conn.WriteJSON(resp); err != nil {
				log.Debug("websocket write", "error", err)
			}
		}

		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Warn("websocket read", "error", err)
				}
				return
			}

			var req wsRequest
			if err := json.Unmarshal(msg, &req); err != nil {
				send(wsResponse{Type: "error", Error: "invalid message format"})
				continue
			}

			switch req.Type {
			case "new":
				c, err := m.New(ctx, user)
				if err != nil {
					send(wsResponse{Type: "error", Error: err.Error()})
					continue
				}
				send(wsResponse{Type: "conversation", Conversation: c})
			case "load":
				c, err := m.Load(ctx, user, req.ConversationID)
				if err != nil {
					send(wsResponse{Type: "error", Error: err.Error()})
					continue
				}
				send(wsResponse{Type: "conversation", Conversation: c})
			case "send":
				c, err := m.SendObserved(ctx, user, req.ConversationID, req.Content,
					Selection{Style: req.Style, Purpose: req.Purpose},
					func(p *Conversation) { send(wsResponse{Type: "pending", Conversation: p}) })
				if err != nil {
					send(wsResponse{Type: "error", Error: err.Error()})
					continue
				}
				send(wsResponse{Type: "reply", Conversation: c})
			default:
				send(wsResponse{Type: "error", Error: "unknown message type: " + req.Type})
			}
		}
	}
}
