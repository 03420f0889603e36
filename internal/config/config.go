package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the recall service configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Index     IndexConfig     `yaml:"index"`
	Scoring   ScoringConfig   `yaml:"scoring"`
	Auth      AuthConfig      `yaml:"auth"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds the key-value cache store connection settings.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// CatalogConfig holds the product catalog store settings.
type CatalogConfig struct {
	Path     string `yaml:"path"`      // sqlite database file
	SeedFile string `yaml:"seed_file"` // optional JSON seed, imported when the catalog is empty
}

// EmbeddingConfig holds embedding and chat provider settings.
type EmbeddingConfig struct {
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
	ChatModel  string `yaml:"chat_model"`
}

// IndexConfig holds vector index settings.
type IndexConfig struct {
	CachePath     string  `yaml:"cache_path"`
	BuildDelayMs  int     `yaml:"build_delay_ms"` // pacing delay between embedding calls
	MinSimilarity float64 `yaml:"min_similarity"`
	SearchTopK    int     `yaml:"search_top_k"`
}

// ScoringConfig holds hybrid scoring weights and thresholds.
type ScoringConfig struct {
	SemanticWeight    float64 `yaml:"semantic_weight"`
	KeywordWeight     float64 `yaml:"keyword_weight"`
	RatingWeight      float64 `yaml:"rating_weight"`
	SemanticThreshold float64 `yaml:"semantic_threshold"`
	KeywordThreshold  float64 `yaml:"keyword_threshold"`
	Limit             int     `yaml:"limit"`
	FallbackCount     int     `yaml:"fallback_count"`
	MaxKeywords       int     `yaml:"max_keywords"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Catalog.Path == "" {
		c.Catalog.Path = "data/catalog.db"
	}
	if c.Index.CachePath == "" {
		c.Index.CachePath = "data/product_embeddings.json"
	}
	if c.Index.BuildDelayMs <= 0 {
		c.Index.BuildDelayMs = 150
	}
	if c.Index.MinSimilarity <= 0 {
		c.Index.MinSimilarity = 0.30
	}
	if c.Index.SearchTopK <= 0 {
		c.Index.SearchTopK = 20
	}
	if c.Scoring.SemanticWeight <= 0 {
		c.Scoring.SemanticWeight = 0.70
	}
	if c.Scoring.KeywordWeight <= 0 {
		c.Scoring.KeywordWeight = 0.25
	}
	if c.Scoring.RatingWeight <= 0 {
		c.Scoring.RatingWeight = 0.05
	}
	if c.Scoring.SemanticThreshold <= 0 {
		c.Scoring.SemanticThreshold = 0.25
	}
	if c.Scoring.KeywordThreshold <= 0 {
		c.Scoring.KeywordThreshold = 0.30
	}
	if c.Scoring.Limit <= 0 {
		c.Scoring.Limit = 6
	}
	if c.Scoring.FallbackCount <= 0 {
		c.Scoring.FallbackCount = 3
	}
	if c.Scoring.MaxKeywords <= 0 {
		c.Scoring.MaxKeywords = 7
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	if c.Embedding.Model == "" {
		return fmt.Errorf("embedding.model is required")
	}
	if c.Index.MinSimilarity > 1 {
		return fmt.Errorf("index.min_similarity must be <= 1, got %g", c.Index.MinSimilarity)
	}
	wsum := c.Scoring.SemanticWeight + c.Scoring.KeywordWeight + c.Scoring.RatingWeight
	if wsum > 1.001 {
		return fmt.Errorf("scoring weights must sum to at most 1, got %g", wsum)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
