// Package embeddings turns text into fixed-length vectors. Every Embedder
// returns one vector per input text, all of length Dimensions().
package embeddings

import (
	"context"
	"fmt"
	"os"
)

// Embedder defines the interface for generating text embeddings.
type Embedder interface {
	// Embed generates one embedding per text, in input order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the number of dimensions in the embedding vectors.
	Dimensions() int

	// Name returns the name/identifier of the embedding model.
	Name() string
}

// Provider names accepted by New.
const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
	ProviderGoogle = "google"
)

// Options carries the provider-specific settings for New.
type Options struct {
	// BaseURL overrides the provider endpoint (OpenAI-compatible gateways,
	// remote Ollama hosts).
	BaseURL string
	// Dimensions is required for Ollama models, which do not report it.
	Dimensions int
	// APIKey takes precedence over the provider's environment variable.
	APIKey string
}

// New creates an Embedder for the named provider. API keys come from opts or
// the conventional environment variables.
func New(provider, model string, opts Options) (Embedder, error) {
	switch provider {
	case ProviderOpenAI:
		apiKey := keyOrEnv(opts.APIKey, "OPENAI_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is required for OpenAI embeddings")
		}
		if model == "" {
			model = string(ModelTextEmbedding3Small)
		}
		return NewOpenAIEmbedder(apiKey, OpenAIModel(model), opts.BaseURL), nil
	case ProviderOllama:
		if model == "" {
			model = "nomic-embed-text"
		}
		dims := opts.Dimensions
		if dims <= 0 {
			dims = 768
		}
		baseURL := opts.BaseURL
		if baseURL == "" {
			baseURL = os.Getenv("OLLAMA_HOST")
		}
		return NewOllamaEmbedder(model, dims, baseURL), nil
	case ProviderGoogle:
		apiKey := keyOrEnv(opts.APIKey, "GOOGLE_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("GOOGLE_API_KEY environment variable is required for Google embeddings")
		}
		if model == "" {
			model = string(ModelGeminiEmbedding001)
		}
		return NewGoogleEmbedder(apiKey, GoogleModel(model), opts.BaseURL), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", provider)
	}
}

func keyOrEnv(key, env string) string {
	if key != "" {
		return key
	}
	return os.Getenv(env)
}

// checkBatch verifies a provider answered with one vector per text.
func checkBatch(provider string, got, want int) error {
	if got != want {
		return fmt.Errorf("%s returned %d embeddings, expected %d", provider, got, want)
	}
	return nil
}
