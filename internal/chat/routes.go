package chat

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kakuhq/kaku/internal/auth"
	"github.com/kakuhq/kaku/internal/httpx"
)

// RegisterRoutes mounts the stateless chat endpoint.
func RegisterRoutes(r chi.Router, backend Backend) {
	r.Post("/api/chat", handleReply(backend))
}

func handleReply(backend Backend) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req Request
		if err := httpx.Decode(r, &req); err != nil {
			httpx.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		req.Owner = auth.FromContext(r.Context()).UserID

		resp, err := backend.Reply(r.Context(), req)
		if err != nil {
			if errors.Is(err, ErrNoUserMessage) {
				httpx.WriteError(w, http.StatusBadRequest, err.Error())
				return
			}
			httpx.WriteError(w, http.StatusBadGateway, err.Error())
			return
		}
		httpx.WriteJSON(w, http.StatusOK, resp)
	}
}
