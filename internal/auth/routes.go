package auth

import (
	"crypto/subtle"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kakuhq/kaku/internal/httpx"
)

// RouteOptions controls which session endpoints are available.
type RouteOptions struct {
	DemoEnabled bool
	// AdminKey lets a trusted frontend mint authenticated sessions. Empty
	// disables POST /api/auth/token.
	AdminKey string
}

// RegisterRoutes mounts the session API routes.
func RegisterRoutes(r chi.Router, issuer *Issuer, opts RouteOptions) {
	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/demo", handleDemo(issuer, opts))
		r.Post("/token", handleToken(issuer, opts))
		r.Get("/session", handleSession())
	})
}

type tokenResponse struct {
	Token   string  `json:"token"`
	Session Session `json:"session"`
}

func handleDemo(issuer *Issuer, opts RouteOptions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !opts.DemoEnabled {
			httpx.WriteError(w, http.StatusForbidden, ErrDemoDisabled.Error())
			return
		}
		token, s, err := issuer.Issue(NewDemoSession())
		if err != nil {
			httpx.WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		httpx.WriteJSON(w, http.StatusCreated, tokenResponse{Token: token, Session: s})
	}
}

type tokenRequest struct {
	UserID string `json:"userId" validate:"required,max=128"`
	Email  string `json:"email" validate:"omitempty,email"`
}

func handleToken(issuer *Issuer, opts RouteOptions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get("X-Admin-Key")
		if opts.AdminKey == "" || subtle.ConstantTimeCompare([]byte(key), []byte(opts.AdminKey)) != 1 {
			httpx.WriteError(w, http.StatusForbidden, "token issuing is not permitted")
			return
		}
		var req tokenRequest
		if err := httpx.Decode(r, &req); err != nil {
			httpx.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		token, s, err := issuer.Issue(Session{Kind: KindAuthenticated, UserID: req.UserID, Email: req.Email})
		if err != nil {
			httpx.WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		httpx.WriteJSON(w, http.StatusCreated, tokenResponse{Token: token, Session: s})
	}
}

func handleSession() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, FromContext(r.Context()))
	}
}
