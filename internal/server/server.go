package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/kakuhq/kaku/internal/audit"
	"github.com/kakuhq/kaku/internal/auth"
	"github.com/kakuhq/kaku/internal/chat"
	"github.com/kakuhq/kaku/internal/conversation"
	"github.com/kakuhq/kaku/internal/corpus"
	"github.com/kakuhq/kaku/internal/logger"
	"github.com/kakuhq/kaku/internal/retrieval"
)

// Config holds server configuration.
type Config struct {
	Port            int
	AllowAllOrigins bool
	// RequestTimeout bounds REST handlers. WebSocket connections are exempt.
	RequestTimeout time.Duration
	Auth           auth.RouteOptions
}

// Deps are the services the API exposes. A nil Issuer runs the server in
// single-user mode where every request acts as auth.Local().
type Deps struct {
	Corpus        *corpus.Service
	Retrieval     *retrieval.Engine
	Chat          chat.Backend
	Conversations *conversation.Manager
	Audit         *audit.Store
	Issuer        *auth.Issuer
}

// Server is the Kaku HTTP API.
type Server struct {
	cfg        Config
	deps       Deps
	log        *logger.Logger
	router     chi.Router
	httpServer *http.Server
}

// New creates a server and mounts every route.
func New(cfg Config, deps Deps, log *logger.Logger) *Server {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 90 * time.Second
	}
	s := &Server{cfg: cfg, deps: deps, log: log}
	s.router = s.buildRouter()
	s.httpServer = &http.Server{
		Addr:              s.Addr(),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Admin-Key"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.AllowAllOrigins {
		corsOpts.AllowedOrigins = []string{"*"}
		corsOpts.AllowCredentials = false
	}
	r.Use(cors.Handler(corsOpts))

	if s.deps.Issuer != nil {
		r.Use(s.deps.Issuer.Middleware)
	} else {
		r.Use(auth.Static(auth.Local()))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	if s.deps.Issuer != nil {
		auth.RegisterRoutes(r, s.deps.Issuer, s.cfg.Auth)
	}

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireUser)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(s.cfg.RequestTimeout))
			if s.deps.Corpus != nil {
				corpus.RegisterRoutes(r, s.deps.Corpus)
			}
			if s.deps.Retrieval != nil {
				retrieval.RegisterRoutes(r, s.deps.Retrieval)
			}
			if s.deps.Chat != nil {
				chat.RegisterRoutes(r, s.deps.Chat)
			}
			if s.deps.Conversations != nil {
				conversation.RegisterRoutes(r, s.deps.Conversations)
			}
			if s.deps.Audit != nil {
				audit.RegisterRoutes(r, s.deps.Audit)
			}
		})

		if s.deps.Conversations != nil {
			conversation.RegisterWebSocket(r, s.deps.Conversations, s.log, s.cfg.AllowAllOrigins)
		}
	})

	return r
}

// Router returns the chi router.
func (s *Server) Router() chi.Router { return s.router }

// Addr is the listen address derived from the configured port.
func (s *Server) Addr() string { return fmt.Sprintf(":%d", s.cfg.Port) }

// Start begins listening on the configured port. It returns
// http.ErrServerClosed after Shutdown.
func (s *Server) Start() error {
	s.log.Info("kaku server listening", "addr", s.Addr(), "single_user", s.deps.Issuer == nil)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
