package auth

import (
	"net/http"
	"strings"

	"github.com/kakuhq/kaku/internal/httpx"
)

// Middleware resolves the session from an "Authorization: Bearer" header or
// a "token" query parameter (browsers cannot set headers on WebSocket
// upgrades). Requests without credentials continue as anonymous; invalid
// credentials are rejected.
func (i *Issuer) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), Anonymous())))
			return
		}
		s, err := i.Verify(token)
		if err != nil {
			httpx.WriteError(w, http.StatusUnauthorized, ErrInvalidToken.Error())
			return
		}
		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
	})
}

// RequireUser rejects anonymous sessions.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if FromContext(r.Context()).IsAnonymous() {
			httpx.WriteError(w, http.StatusUnauthorized, ErrUnauthenticated.Error())
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Static returns middleware that attaches a fixed session to every request.
// The single-user CLI server uses it in place of token verification.
func Static(s Session) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
		})
	}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return r.URL.Query().Get("token")
}
