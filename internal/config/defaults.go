package config

import (
	"time"

	"github.com/kakuhq/kaku/internal/embeddings"
	"github.com/kakuhq/kaku/internal/llm"
)

// QualityPreset describes the models to use for a given quality tier.
type QualityPreset struct {
	Model          string
	EmbeddingModel string
}

var qualityPresets = map[string]map[QualityTier]QualityPreset{
	llm.ProviderAnthropic: {
		QualityLite:   {Model: "claude-haiku-4-5-20251001", EmbeddingModel: "text-embedding-3-small"},
		QualityNormal: {Model: "claude-sonnet-4-5-20250929", EmbeddingModel: "text-embedding-3-small"},
		QualityMax:    {Model: "claude-opus-4-1-20250805", EmbeddingModel: "text-embedding-3-large"},
	},
	llm.ProviderOpenAI: {
		QualityLite:   {Model: "gpt-4o-mini", EmbeddingModel: "text-embedding-3-small"},
		QualityNormal: {Model: "gpt-4o", EmbeddingModel: "text-embedding-3-small"},
		QualityMax:    {Model: "gpt-4.1", EmbeddingModel: "text-embedding-3-large"},
	},
	llm.ProviderOpenRouter: {
		QualityLite:   {Model: "openai/gpt-4o-mini", EmbeddingModel: "text-embedding-3-small"},
		QualityNormal: {Model: "anthropic/claude-sonnet-4.5", EmbeddingModel: "text-embedding-3-small"},
		QualityMax:    {Model: "anthropic/claude-opus-4.1", EmbeddingModel: "text-embedding-3-large"},
	},
	llm.ProviderGoogle: {
		QualityLite:   {Model: "gemini-2.5-flash", EmbeddingModel: "gemini-embedding-001"},
		QualityNormal: {Model: "gemini-2.5-pro", EmbeddingModel: "gemini-embedding-001"},
		QualityMax:    {Model: "gemini-2.5-pro", EmbeddingModel: "gemini-embedding-001"},
	},
	llm.ProviderOllama: {
		QualityLite:   {Model: "llama3.2", EmbeddingModel: "nomic-embed-text"},
		QualityNormal: {Model: "llama3.1", EmbeddingModel: "nomic-embed-text"},
		QualityMax:    {Model: "llama3.1:70b", EmbeddingModel: "nomic-embed-text"},
	},
}

// DefaultExcludes are glob patterns skipped when uploading a directory.
var DefaultExcludes = []string{
	".git/**",
	"node_modules/**",
	"vendor/**",
	"**/~$*",
	"**/.DS_Store",
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Provider:          llm.ProviderAnthropic,
		Model:             "claude-sonnet-4-5-20250929",
		EmbeddingProvider: embeddings.ProviderOpenAI,
		EmbeddingModel:    "text-embedding-3-small",
		Quality:           QualityNormal,
		DataDir:           "~/.kaku",
		ChunkSize:         1000,
		ChunkOverlap:      200,
		Retrieval: RetrievalConfig{
			Backend:          BackendScan,
			TopK:             5,
			MaxContextTokens: 2000,
		},
		Server: ServerConfig{
			Port: 8080,
		},
		Auth: AuthConfig{
			TokenTTL: 24 * time.Hour,
		},
		Log:            LogConfig{Mode: "dev"},
		RequestTimeout: 60 * time.Second,
		RateLimitRPM:   60,
		Include:        []string{"**"},
		Exclude:        DefaultExcludes,
	}
}

// GetPreset returns the quality preset for the given provider and tier.
// Unknown combinations fall back to the normal Anthropic preset.
func GetPreset(provider string, tier QualityTier) QualityPreset {
	if tiers, ok := qualityPresets[provider]; ok {
		if preset, ok := tiers[tier]; ok {
			return preset
		}
	}
	return qualityPresets[llm.ProviderAnthropic][QualityNormal]
}

// EmbeddingProviderFor returns the default embedding provider for a chat
// provider. Providers without an embeddings API use OpenAI.
func EmbeddingProviderFor(provider string) string {
	switch provider {
	case llm.ProviderOllama:
		return embeddings.ProviderOllama
	case llm.ProviderGoogle:
		return embeddings.ProviderGoogle
	default:
		return embeddings.ProviderOpenAI
	}
}
