package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kakuhq/kaku/internal/llm"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Provider != llm.ProviderAnthropic {
		t.Errorf("expected default provider %q, got %q", llm.ProviderAnthropic, cfg.Provider)
	}
	if cfg.ChunkSize != 1000 || cfg.ChunkOverlap != 200 {
		t.Errorf("expected chunking 1000/200, got %d/%d", cfg.ChunkSize, cfg.ChunkOverlap)
	}
	if cfg.Retrieval.Backend != BackendScan {
		t.Errorf("expected default backend %q, got %q", BackendScan, cfg.Retrieval.Backend)
	}
	if cfg.Retrieval.MaxContextTokens != 2000 {
		t.Errorf("expected max_context_tokens 2000, got %d", cfg.Retrieval.MaxContextTokens)
	}
	if cfg.RequestTimeout != 60*time.Second {
		t.Errorf("expected request_timeout 60s, got %s", cfg.RequestTimeout)
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kaku.yml")

	original := DefaultConfig()
	original.Provider = llm.ProviderOpenAI
	original.Model = "gpt-4o"
	original.Quality = QualityMax
	original.DataDir = "/tmp/kaku-data"
	original.Retrieval.Backend = BackendChromem
	original.Retrieval.TopK = 8
	original.Server.Port = 9090
	original.Auth.TokenTTL = 2 * time.Hour
	original.RequestTimeout = 45 * time.Second
	original.Exclude = []string{"drafts/**"}

	if err := original.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.Provider != original.Provider {
		t.Errorf("provider: got %q, want %q", loaded.Provider, original.Provider)
	}
	if loaded.Model != original.Model {
		t.Errorf("model: got %q, want %q", loaded.Model, original.Model)
	}
	if loaded.Quality != original.Quality {
		t.Errorf("quality: got %q, want %q", loaded.Quality, original.Quality)
	}
	if loaded.DataDir != original.DataDir {
		t.Errorf("data_dir: got %q, want %q", loaded.DataDir, original.DataDir)
	}
	if loaded.Retrieval != original.Retrieval {
		t.Errorf("retrieval: got %+v, want %+v", loaded.Retrieval, original.Retrieval)
	}
	if loaded.Server.Port != 9090 {
		t.Errorf("server.port: got %d, want 9090", loaded.Server.Port)
	}
	if loaded.Auth.TokenTTL != 2*time.Hour {
		t.Errorf("auth.token_ttl: got %s, want 2h", loaded.Auth.TokenTTL)
	}
	if loaded.RequestTimeout != 45*time.Second {
		t.Errorf("request_timeout: got %s, want 45s", loaded.RequestTimeout)
	}
	if len(loaded.Exclude) != 1 || loaded.Exclude[0] != "drafts/**" {
		t.Errorf("exclude: got %v", loaded.Exclude)
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nonexistent.yml"))
	if err != nil {
		t.Fatalf("Load should not fail for missing file: %v", err)
	}
	if cfg.Provider != llm.ProviderAnthropic {
		t.Errorf("expected default provider, got %q", cfg.Provider)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kaku.yml")
	if err := DefaultConfig().Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	t.Setenv("KAKU_PROVIDER", "ollama")
	t.Setenv("KAKU_SERVER__PORT", "7000")
	t.Setenv("KAKU_RETRIEVAL__TOP_K", "12")
	t.Setenv("KAKU_AUTH__DEMO_ENABLED", "true")

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Provider != llm.ProviderOllama {
		t.Errorf("provider override failed: got %q", loaded.Provider)
	}
	if loaded.Server.Port != 7000 {
		t.Errorf("server.port override failed: got %d", loaded.Server.Port)
	}
	if loaded.Retrieval.TopK != 12 {
		t.Errorf("retrieval.top_k override failed: got %d", loaded.Retrieval.TopK)
	}
	if !loaded.Auth.DemoEnabled {
		t.Error("auth.demo_enabled override failed")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"defaults", func(*Config) {}, ""},
		{"empty provider", func(c *Config) { c.Provider = "" }, "provider is required"},
		{"unknown provider", func(c *Config) { c.Provider = "invalid" }, "invalid provider"},
		{"openrouter", func(c *Config) { c.Provider = llm.ProviderOpenRouter }, ""},
		{"empty model", func(c *Config) { c.Model = "" }, "model is required"},
		{"embedding provider", func(c *Config) { c.EmbeddingProvider = "anthropic" }, "invalid embedding_provider"},
		{"quality", func(c *Config) { c.Quality = "ultra" }, "invalid quality"},
		{"data dir", func(c *Config) { c.DataDir = "" }, "data_dir is required"},
		{"chunk size", func(c *Config) { c.ChunkSize = 0 }, "chunk_size"},
		{"chunk overlap", func(c *Config) { c.ChunkOverlap = -1 }, "chunk_overlap"},
		{"backend", func(c *Config) { c.Retrieval.Backend = "qdrant" }, "invalid retrieval.backend"},
		{"top k", func(c *Config) { c.Retrieval.TopK = 0 }, "retrieval.top_k"},
		{"port", func(c *Config) { c.Server.Port = 70000 }, "out of range"},
		{"demo without secret", func(c *Config) { c.Auth.DemoEnabled = true }, "requires auth.jwt_secret"},
		{"demo with secret", func(c *Config) { c.Auth.DemoEnabled = true; c.Auth.JWTSecret = "s" }, ""},
		{"log mode", func(c *Config) { c.Log.Mode = "verbose" }, "invalid log.mode"},
		{"timeout", func(c *Config) { c.RequestTimeout = 0 }, "request_timeout"},
		{"rate limit", func(c *Config) { c.RateLimitRPM = -1 }, "rate_limit_rpm"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				if err != nil {
					t.Errorf("expected valid config, got: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("expected error containing %q, got %v", tt.errMsg, err)
			}
		})
	}
}

func TestDataPaths(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	cfg := DefaultConfig()
	dir, err := cfg.DataPath()
	if err != nil {
		t.Fatalf("DataPath: %v", err)
	}
	if dir != filepath.Join(home, ".kaku") {
		t.Errorf("DataPath = %q, want %q", dir, filepath.Join(home, ".kaku"))
	}

	cfg.DataDir = "/var/lib/kaku"
	dbPath, _ := cfg.DatabasePath()
	if dbPath != "/var/lib/kaku/kaku.db" {
		t.Errorf("DatabasePath = %q", dbPath)
	}
	vecPath, _ := cfg.VectorIndexPath()
	if vecPath != "/var/lib/kaku/vectors.gob.gz" {
		t.Errorf("VectorIndexPath = %q", vecPath)
	}
}

func TestGetPreset(t *testing.T) {
	p := GetPreset(llm.ProviderAnthropic, QualityLite)
	if p.Model != "claude-haiku-4-5-20251001" {
		t.Errorf("expected haiku model, got %q", p.Model)
	}

	p = GetPreset(llm.ProviderOllama, QualityNormal)
	if p.EmbeddingModel != "nomic-embed-text" {
		t.Errorf("expected nomic-embed-text, got %q", p.EmbeddingModel)
	}

	p = GetPreset("unknown", QualityLite)
	if p.Model != "claude-sonnet-4-5-20250929" {
		t.Errorf("expected fallback to sonnet, got %q", p.Model)
	}
}

func TestEmbeddingProviderFor(t *testing.T) {
	tests := map[string]string{
		llm.ProviderAnthropic:  "openai",
		llm.ProviderOpenRouter: "openai",
		llm.ProviderGoogle:     "google",
		llm.ProviderOllama:     "ollama",
	}
	for provider, want := range tests {
		if got := EmbeddingProviderFor(provider); got != want {
			t.Errorf("EmbeddingProviderFor(%q) = %q, want %q", provider, got, want)
		}
	}
}

func TestSplitAndTrim(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"a,b,c", []string{"a", "b", "c"}},
		{" a , b , c ", []string{"a", "b", "c"}},
		{"drafts/**", []string{"drafts/**"}},
		{"", nil},
		{"  ,  , ", nil},
	}
	for _, tt := range tests {
		got := splitAndTrim(tt.input)
		if len(got) != len(tt.want) {
			t.Errorf("splitAndTrim(%q) len = %d, want %d", tt.input, len(got), len(tt.want))
			continue
		}
		for i, v := range got {
			if v != tt.want[i] {
				t.Errorf("splitAndTrim(%q)[%d] = %q, want %q", tt.input, i, v, tt.want[i])
			}
		}
	}
}
