package conversation

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kakuhq/kaku/internal/auth"
	"github.com/kakuhq/kaku/internal/corpus"
	"github.com/kakuhq/kaku/internal/httpx"
)

// RegisterRoutes mounts the conversation API routes.
func RegisterRoutes(r chi.Router, m *Manager) {
	r.Route("/api/conversations", func(r chi.Router) {
		r.Post("/", handleNew(m))
		r.Get("/", handleList(m))
		r.Get("/{id}", handleLoad(m))
		r.Delete("/{id}", handleDelete(m))
		r.Post("/{id}/messages", handleSend(m))
		r.Post("/{id}/draft/confirm", handleConfirm(m))
		r.Post("/{id}/draft/discard", handleDiscard(m))
	})
}

func owner(r *http.Request) string {
	return auth.FromContext(r.Context()).UserID
}

// writeError maps manager errors to status codes.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrNoDraft):
		httpx.WriteError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrEmptyMessage), errors.Is(err, httpx.ErrValidation):
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
	default:
		httpx.WriteError(w, http.StatusInternalServerError, err.Error())
	}
}

func handleNew(m *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := m.New(r.Context(), owner(r))
		if err != nil {
			writeError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusCreated, c)
	}
}

func handleList(m *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := m.List(r.Context(), owner(r))
		if err != nil {
			writeError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, map[string]any{"conversations": list})
	}
}

func handleLoad(m *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := m.Load(r.Context(), owner(r), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, c)
	}
}

func handleDelete(m *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		next, err := m.Delete(r.Context(), owner(r), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, map[string]any{"next": next})
	}
}

type sendRequest struct {
	Content string `json:"content" validate:"required,max=20000"`
	Style   string `json:"style" validate:"max=40"`
	Purpose string `json:"purpose" validate:"max=40"`
}

func handleSend(m *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req sendRequest
		if err := httpx.Decode(r, &req); err != nil {
			writeError(w, err)
			return
		}
		c, err := m.Send(r.Context(), owner(r), chi.URLParam(r, "id"), req.Content,
			Selection{Style: req.Style, Purpose: req.Purpose})
		if err != nil {
			writeError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, c)
	}
}

type confirmResponse struct {
	Conversation *Conversation  `json:"conversation"`
	Document     corpusDocument `json:"document"`
}

// corpusDocument is the saved document without its chunks.
type corpusDocument struct {
	ID    string          `json:"id"`
	Title string          `json:"title"`
	Meta  corpus.Metadata `json:"metadata"`
}

func handleConfirm(m *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, doc, err := m.ConfirmDraft(r.Context(), owner(r), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, confirmResponse{
			Conversation: c,
			Document:     corpusDocument{ID: doc.ID, Title: doc.Title, Meta: doc.Metadata},
		})
	}
}

func handleDiscard(m *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := m.DiscardDraft(r.Context(), owner(r), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, c)
	}
}
