package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/kakuhq/kaku/internal/audit"
	"github.com/kakuhq/kaku/internal/auth"
	"github.com/kakuhq/kaku/internal/chat"
	"github.com/kakuhq/kaku/internal/chunker"
	"github.com/kakuhq/kaku/internal/config"
	"github.com/kakuhq/kaku/internal/conversation"
	"github.com/kakuhq/kaku/internal/corpus"
	"github.com/kakuhq/kaku/internal/credentials"
	"github.com/kakuhq/kaku/internal/db"
	"github.com/kakuhq/kaku/internal/embeddings"
	"github.com/kakuhq/kaku/internal/llm"
	"github.com/kakuhq/kaku/internal/logger"
	"github.com/kakuhq/kaku/internal/retrieval"
	"github.com/kakuhq/kaku/internal/vectordb"
)

// localOwner owns everything the CLI stores.
const localOwner = auth.LocalOwner

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `kaku init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

// createLogger builds the zap logger. --verbose forces development output.
func createLogger(cfg *config.Config) (*logger.Logger, error) {
	mode := cfg.Log.Mode
	if verbose {
		mode = "dev"
	}
	return logger.New(mode)
}

// apiKey resolves a provider key from the environment or the credentials file.
func apiKey(provider string) string {
	store, err := credentials.DefaultStore()
	if err != nil {
		return os.Getenv(credentials.EnvVar(provider))
	}
	return store.APIKey(provider)
}

// createEmbedderFromConfig creates the embedder used for chunks and queries.
func createEmbedderFromConfig(cfg *config.Config) (embeddings.Embedder, error) {
	provider := cfg.EmbeddingProvider
	model := cfg.EmbeddingModel
	if model == "" {
		model = config.GetPreset(cfg.Provider, cfg.Quality).EmbeddingModel
	}
	return embeddings.New(provider, model, embeddings.Options{
		BaseURL:    cfg.EmbeddingBaseURL,
		Dimensions: cfg.EmbeddingDimensions,
		APIKey:     apiKey(provider),
	})
}

// createLLMProviderFromConfig creates the chat model client, rate limited and
// logging token usage.
func createLLMProviderFromConfig(cfg *config.Config, log *logger.Logger) (llm.Provider, error) {
	opts := []llm.Option{llm.WithBaseURL(cfg.BaseURL)}
	if key := apiKey(cfg.Provider); key != "" {
		opts = append(opts, llm.WithAPIKey(key))
	}
	p, err := llm.NewProvider(cfg.Provider, cfg.Model, opts...)
	if err != nil {
		return nil, err
	}
	return llm.NewLoggingProvider(llm.NewRateLimitedProvider(p, cfg.RateLimitRPM), log), nil
}

// app holds the services a command works with.
type app struct {
	cfg       *config.Config
	log       *logger.Logger
	db        *db.DB
	corpus    *corpus.Service
	retrieval *retrieval.Engine
	audit     *audit.Store
	index     *vectordb.Index
	indexPath string
}

// repoChunks adapts a corpus repository to retrieval.ChunkSource so the
// vector index can hydrate before the service exists.
type repoChunks struct {
	repo corpus.Repository
}

func (r repoChunks) Chunks(ctx context.Context, owner string) ([]corpus.Chunk, error) {
	return r.repo.ListChunks(ctx, owner)
}

// openApp opens the database and builds the corpus and retrieval services.
func openApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	log, err := createLogger(cfg)
	if err != nil {
		return nil, err
	}

	embedder, err := createEmbedderFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating embedder: %w", err)
	}

	dbPath, err := cfg.DatabasePath()
	if err != nil {
		return nil, err
	}
	database, err := db.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	a := &app{cfg: cfg, log: log, db: database, audit: audit.NewStore(database)}
	repo := corpus.NewSQLiteRepository(database)

	corpusOpts := []corpus.Option{
		corpus.WithChunker(chunker.New(chunker.WithChunkSize(cfg.ChunkSize), chunker.WithOverlap(cfg.ChunkOverlap))),
		corpus.WithHook(audit.NewRecorder(a.audit)),
	}
	var retrievalOpts []retrieval.Option
	if cfg.Retrieval.Backend == config.BackendChromem {
		a.indexPath, err = cfg.VectorIndexPath()
		if err != nil {
			database.Close()
			return nil, err
		}
		a.index = vectordb.NewIndex(embedder, repoChunks{repo: repo})
		if err := a.index.Load(a.indexPath); err != nil {
			log.Warn("could not load vector index, rebuilding from database", "path", a.indexPath, "error", err)
			a.index = vectordb.NewIndex(embedder, repoChunks{repo: repo})
		} else if stale, err := a.index.Reconcile(context.Background()); err != nil {
			log.Warn("could not verify vector index", "error", err)
		} else if len(stale) > 0 {
			log.Info("vector index out of date, rebuilding", "owners", len(stale))
		}
		corpusOpts = append(corpusOpts, corpus.WithHook(a.index))
		retrievalOpts = append(retrievalOpts, retrieval.WithIndex(a.index))
	}

	a.corpus = corpus.NewService(repo, embedder, log, corpusOpts...)
	a.retrieval = retrieval.New(a.corpus, embedder, retrievalOpts...)
	return a, nil
}

// chatBackend builds the model-backed chat backend.
func (a *app) chatBackend() (chat.Backend, error) {
	provider, err := createLLMProviderFromConfig(a.cfg, a.log)
	if err != nil {
		return nil, fmt.Errorf("creating LLM provider: %w", err)
	}
	return chat.NewLLMBackend(provider, a.corpus, a.retrieval, a.log,
		chat.WithModel(a.cfg.Model),
		chat.WithMaxContextTokens(a.cfg.Retrieval.MaxContextTokens),
	), nil
}

// conversations builds the conversation manager on the same database.
func (a *app) conversations(backend chat.Backend) *conversation.Manager {
	return conversation.NewManager(conversation.NewSQLiteRepository(a.db), backend, a.corpus, a.log,
		conversation.WithTimeout(a.cfg.RequestTimeout))
}

// Close persists the vector index and closes the database.
func (a *app) Close() {
	if a.index != nil {
		if err := a.index.Persist(a.indexPath); err != nil {
			a.log.Warn("could not persist vector index", "path", a.indexPath, "error", err)
		}
	}
	if err := a.db.Close(); err != nil {
		a.log.Warn("closing database", "error", err)
	}
	a.log.Sync()
}
