package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/kakuhq/kaku/internal/auth"
	"github.com/kakuhq/kaku/internal/server"
)

const shutdownTimeout = 15 * time.Second

var serverPort int

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the Kaku HTTP API",
	Long: `Starts the REST and WebSocket API for a web frontend.

Without auth.jwt_secret the server runs in single-user mode and every request
acts on your local corpus. With a secret, requests need a bearer token.`,
	Args: cobra.NoArgs,
	RunE: runServer,
}

func init() {
	serverCmd.Flags().IntVar(&serverPort, "port", 0, "port to listen on (overrides server.port)")
	rootCmd.AddCommand(serverCmd)
}

func runServer(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	backend, err := a.chatBackend()
	if err != nil {
		return err
	}

	deps := server.Deps{
		Corpus:        a.corpus,
		Retrieval:     a.retrieval,
		Chat:          backend,
		Conversations: a.conversations(backend),
		Audit:         a.audit,
	}
	if secret := a.cfg.Auth.JWTSecret; secret != "" {
		deps.Issuer, err = auth.NewIssuer(secret, a.cfg.Auth.TokenTTL)
		if err != nil {
			return fmt.Errorf("creating token issuer: %w", err)
		}
	}

	port := a.cfg.Server.Port
	if serverPort != 0 {
		port = serverPort
	}
	srv := server.New(server.Config{
		Port:            port,
		AllowAllOrigins: a.cfg.Server.AllowAllOrigins,
		RequestTimeout:  a.cfg.RequestTimeout,
		Auth: auth.RouteOptions{
			DemoEnabled: a.cfg.Auth.DemoEnabled,
			AdminKey:    a.cfg.Auth.AdminKey,
		},
	}, deps, a.log)

	fmt.Fprintf(os.Stderr, "kaku server %s starting on port %d\n", Version, port)
	if deps.Issuer == nil {
		if stats, err := a.corpus.Stats(cmd.Context(), localOwner); err == nil {
			fmt.Fprintf(os.Stderr, "  single-user mode, %d documents in corpus\n", stats.DocumentCount)
		}
	}

	g, ctx := errgroup.WithContext(cmd.Context())
	g.Go(func() error {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		a.log.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
