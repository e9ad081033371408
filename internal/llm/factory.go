package llm

import (
	"fmt"
	"os"
)

// Supported provider types.
const (
	ProviderAnthropic  = "anthropic"
	ProviderOpenAI     = "openai"
	ProviderOpenRouter = "openrouter"
	ProviderGoogle     = "google"
	ProviderOllama     = "ollama"
)

// Providers lists the accepted provider types.
var Providers = []string{ProviderAnthropic, ProviderOpenAI, ProviderOpenRouter, ProviderGoogle, ProviderOllama}

// Option customizes NewProvider.
type Option func(*factoryOptions)

type factoryOptions struct {
	baseURL string
	apiKey  string
}

// WithBaseURL points the provider at a different endpoint.
func WithBaseURL(url string) Option {
	return func(o *factoryOptions) { o.baseURL = url }
}

// WithAPIKey sets the key instead of reading the provider's environment variable.
func WithAPIKey(key string) Option {
	return func(o *factoryOptions) { o.apiKey = key }
}

func (o factoryOptions) key(env string) string {
	if o.apiKey != "" {
		return o.apiKey
	}
	return os.Getenv(env)
}

// NewProvider creates a new LLM provider based on the given provider type and
// model. API keys come from WithAPIKey or the environment.
func NewProvider(providerType string, model string, opts ...Option) (Provider, error) {
	var o factoryOptions
	for _, opt := range opts {
		opt(&o)
	}

	switch providerType {
	case ProviderAnthropic:
		apiKey := o.key("ANTHROPIC_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable is not set")
		}
		return NewAnthropicProvider(apiKey, model, o.baseURL), nil

	case ProviderOpenAI:
		apiKey := o.key("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is not set")
		}
		return NewOpenAIProvider(apiKey, model, o.baseURL), nil

	case ProviderOpenRouter:
		apiKey := o.key("OPENROUTER_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("OPENROUTER_API_KEY environment variable is not set")
		}
		return NewOpenRouterProvider(apiKey, model, o.baseURL), nil

	case ProviderGoogle:
		apiKey := o.key("GOOGLE_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("GOOGLE_API_KEY environment variable is not set")
		}
		return NewGoogleProvider(apiKey, model, o.baseURL), nil

	case ProviderOllama:
		host := o.baseURL
		if host == "" {
			host = os.Getenv("OLLAMA_HOST")
		}
		if host == "" {
			host = "http://localhost:11434"
		}
		return NewOllamaProvider(host, model), nil

	default:
		return nil, fmt.Errorf("unsupported provider type: %s", providerType)
	}
}
