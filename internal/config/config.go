// Package config loads .kaku.yml overlaid with KAKU_* environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/kakuhq/kaku/internal/embeddings"
	"github.com/kakuhq/kaku/internal/llm"
)

// DefaultFile is the config file looked up in the working directory.
const DefaultFile = ".kaku.yml"

// EnvPrefix prefixes environment overrides. A double underscore separates
// nested keys: KAKU_SERVER__PORT sets server.port.
const EnvPrefix = "KAKU_"

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	cfg := DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

var embeddingProviders = []string{embeddings.ProviderOpenAI, embeddings.ProviderOllama, embeddings.ProviderGoogle}

var logModes = []string{"dev", "development", "prod", "production"}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.Provider == "" {
		return fmt.Errorf("provider is required")
	}
	if !slices.Contains(llm.Providers, c.Provider) {
		return fmt.Errorf("invalid provider %q: must be one of %s", c.Provider, strings.Join(llm.Providers, ", "))
	}
	if c.Model == "" {
		return fmt.Errorf("model is required")
	}
	if !slices.Contains(embeddingProviders, c.EmbeddingProvider) {
		return fmt.Errorf("invalid embedding_provider %q: must be one of %s", c.EmbeddingProvider, strings.Join(embeddingProviders, ", "))
	}
	switch c.Quality {
	case "", QualityLite, QualityNormal, QualityMax:
	default:
		return fmt.Errorf("invalid quality %q: must be one of lite, normal, max", c.Quality)
	}
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("chunk_size must be positive")
	}
	if c.ChunkOverlap < 0 {
		return fmt.Errorf("chunk_overlap must be non-negative")
	}
	switch c.Retrieval.Backend {
	case BackendScan, BackendChromem:
	default:
		return fmt.Errorf("invalid retrieval.backend %q: must be %s or %s", c.Retrieval.Backend, BackendScan, BackendChromem)
	}
	if c.Retrieval.TopK <= 0 {
		return fmt.Errorf("retrieval.top_k must be positive")
	}
	if c.Retrieval.MaxContextTokens <= 0 {
		return fmt.Errorf("retrieval.max_context_tokens must be positive")
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d is out of range", c.Server.Port)
	}
	if c.Auth.TokenTTL < 0 {
		return fmt.Errorf("auth.token_ttl must be non-negative")
	}
	if c.Auth.DemoEnabled && c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.demo_enabled requires auth.jwt_secret")
	}
	if c.Log.Mode != "" && !slices.Contains(logModes, strings.ToLower(c.Log.Mode)) {
		return fmt.Errorf("invalid log.mode %q: must be dev or prod", c.Log.Mode)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive")
	}
	if c.RateLimitRPM < 0 {
		return fmt.Errorf("rate_limit_rpm must be non-negative")
	}
	return nil
}

// DataPath returns DataDir with a leading "~" expanded to the home directory.
func (c *Config) DataPath() (string, error) {
	dir := c.DataDir
	if dir == "~" || strings.HasPrefix(dir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		dir = filepath.Join(home, strings.TrimPrefix(dir, "~"))
	}
	return dir, nil
}

// DatabasePath is the SQLite file inside the data directory.
func (c *Config) DatabasePath() (string, error) {
	dir, err := c.DataPath()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "kaku.db"), nil
}

// VectorIndexPath is the persisted chromem index inside the data directory.
func (c *Config) VectorIndexPath() (string, error) {
	dir, err := c.DataPath()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "vectors.gob.gz"), nil
}
