package config

import "time"

// QualityTier picks a model preset trading cost for quality.
type QualityTier string

const (
	QualityLite   QualityTier = "lite"
	QualityNormal QualityTier = "normal"
	QualityMax    QualityTier = "max"
)

// Retrieval backends.
const (
	// BackendScan ranks every stored chunk on each query.
	BackendScan = "scan"
	// BackendChromem keeps an in-process ANN index persisted next to the database.
	BackendChromem = "chromem"
)

// Config is the top-level Kaku configuration, corresponding to .kaku.yml.
type Config struct {
	Provider            string          `yaml:"provider" koanf:"provider"`
	Model               string          `yaml:"model" koanf:"model"`
	BaseURL             string          `yaml:"base_url,omitempty" koanf:"base_url"`
	EmbeddingProvider   string          `yaml:"embedding_provider" koanf:"embedding_provider"`
	EmbeddingModel      string          `yaml:"embedding_model" koanf:"embedding_model"`
	EmbeddingBaseURL    string          `yaml:"embedding_base_url,omitempty" koanf:"embedding_base_url"`
	EmbeddingDimensions int             `yaml:"embedding_dimensions,omitempty" koanf:"embedding_dimensions"`
	Quality             QualityTier     `yaml:"quality" koanf:"quality"`
	DataDir             string          `yaml:"data_dir" koanf:"data_dir"`
	ChunkSize           int             `yaml:"chunk_size" koanf:"chunk_size"`
	ChunkOverlap        int             `yaml:"chunk_overlap" koanf:"chunk_overlap"`
	Retrieval           RetrievalConfig `yaml:"retrieval" koanf:"retrieval"`
	Server              ServerConfig    `yaml:"server" koanf:"server"`
	Auth                AuthConfig      `yaml:"auth" koanf:"auth"`
	Log                 LogConfig       `yaml:"log" koanf:"log"`
	RequestTimeout      time.Duration   `yaml:"request_timeout" koanf:"request_timeout"`
	RateLimitRPM        int             `yaml:"rate_limit_rpm" koanf:"rate_limit_rpm"`
	Include             []string        `yaml:"include" koanf:"include"`
	Exclude             []string        `yaml:"exclude" koanf:"exclude"`
}

// RetrievalConfig controls how context is found for a chat turn.
type RetrievalConfig struct {
	Backend          string `yaml:"backend" koanf:"backend"`
	TopK             int    `yaml:"top_k" koanf:"top_k"`
	MaxContextTokens int    `yaml:"max_context_tokens" koanf:"max_context_tokens"`
}

// ServerConfig holds `kaku server` settings.
type ServerConfig struct {
	Port            int  `yaml:"port" koanf:"port"`
	AllowAllOrigins bool `yaml:"allow_all_origins" koanf:"allow_all_origins"`
}

// AuthConfig holds session settings. An empty JWTSecret runs the server in
// single-user mode.
type AuthConfig struct {
	JWTSecret   string        `yaml:"jwt_secret,omitempty" koanf:"jwt_secret"`
	TokenTTL    time.Duration `yaml:"token_ttl" koanf:"token_ttl"`
	DemoEnabled bool          `yaml:"demo_enabled" koanf:"demo_enabled"`
	AdminKey    string        `yaml:"admin_key,omitempty" koanf:"admin_key"`
}

// LogConfig selects the logger mode: "dev" or "prod".
type LogConfig struct {
	Mode string `yaml:"mode" koanf:"mode"`
}
