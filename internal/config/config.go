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

// Config holds the configuration shared by all portfolio-chat services.
// Each service binary reads the sections it needs.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Database   DatabaseConfig   `yaml:"database"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Generation GenerationConfig `yaml:"generation"`
	Intent     IntentConfig     `yaml:"intent"`
	Services   ServicesConfig   `yaml:"services"`
	Safety     SafetyConfig     `yaml:"safety"`
	Retrieval  RetrievalConfig  `yaml:"retrieval"`
	Assistant  AssistantConfig  `yaml:"assistant"`
	Storage    StorageConfig    `yaml:"storage"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds vector/conversation store connection settings.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// EmbeddingConfig holds the hosted embedding provider settings.
type EmbeddingConfig struct {
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
	BatchSize  int    `yaml:"batch_size"`
	CacheOff   bool   `yaml:"cache_disabled"`
}

// GenerationConfig holds the hosted generation provider settings.
type GenerationConfig struct {
	APIKey      string  `yaml:"api_key"`
	BaseURL     string  `yaml:"base_url"`
	Model       string  `yaml:"model"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`
}

// IntentConfig holds the hosted zero-shot classifier settings.
type IntentConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

// ServicesConfig holds the peer service endpoints used by the orchestrator.
type ServicesConfig struct {
	PerceptionURL    string `yaml:"perception_url"`
	MemoryURL        string `yaml:"memory_url"`
	ReasoningURL     string `yaml:"reasoning_url"`
	SafetyURL        string `yaml:"safety_url"`
	TimeoutSec       int    `yaml:"timeout_sec"`
	HealthTimeoutSec int    `yaml:"health_timeout_sec"`
}

// SafetyConfig holds validation bounds and rate limit settings.
type SafetyConfig struct {
	MaxInputLength     int `yaml:"max_input_length"`
	MaxOutputLength    int `yaml:"max_output_length"`
	RateLimitPerMinute int `yaml:"rate_limit_per_minute"`
}

// RetrievalConfig holds vector search tunables.
type RetrievalConfig struct {
	TopKPerDomain int `yaml:"top_k_per_domain"`
	DefaultTopK   int `yaml:"default_top_k"`
	// Candidate pool for approximate KNN scales as
	// min(MaxCandidates, topK*CandidateMultiplier).
	MaxCandidates       int `yaml:"max_candidates"`
	CandidateMultiplier int `yaml:"candidate_multiplier"`
	HNSWM               int `yaml:"hnsw_m"`
	HNSWEFConstruct     int `yaml:"hnsw_ef_construction"`
}

// AssistantConfig holds the assistant identity used by prompts and the
// merge-strategy heuristic.
type AssistantConfig struct {
	Name    string `yaml:"name"`
	Subject string `yaml:"subject"`
}

// StorageConfig holds storage settings.
type StorageConfig struct {
	KeyPrefix string `yaml:"key_prefix"`
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
		c.HTTP.WriteTimeoutSec = 60
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Embedding.Dimensions <= 0 {
		c.Embedding.Dimensions = 384
	}
	if c.Embedding.BatchSize <= 0 {
		c.Embedding.BatchSize = 32
	}
	if c.Generation.MaxTokens <= 0 {
		c.Generation.MaxTokens = 250
	}
	if c.Generation.Temperature <= 0 {
		c.Generation.Temperature = 0.7
	}
	if c.Services.TimeoutSec <= 0 {
		c.Services.TimeoutSec = 30
	}
	if c.Services.HealthTimeoutSec <= 0 {
		c.Services.HealthTimeoutSec = 5
	}
	if c.Safety.MaxInputLength <= 0 {
		c.Safety.MaxInputLength = 1000
	}
	if c.Safety.MaxOutputLength <= 0 {
		c.Safety.MaxOutputLength = 2000
	}
	if c.Safety.RateLimitPerMinute <= 0 {
		c.Safety.RateLimitPerMinute = 60
	}
	if c.Retrieval.TopKPerDomain <= 0 {
		c.Retrieval.TopKPerDomain = 3
	}
	if c.Retrieval.DefaultTopK <= 0 {
		c.Retrieval.DefaultTopK = 5
	}
	if c.Retrieval.MaxCandidates <= 0 {
		c.Retrieval.MaxCandidates = 150
	}
	if c.Retrieval.CandidateMultiplier <= 0 {
		c.Retrieval.CandidateMultiplier = 30
	}
	if c.Retrieval.HNSWM <= 0 {
		c.Retrieval.HNSWM = 16
	}
	if c.Retrieval.HNSWEFConstruct <= 0 {
		c.Retrieval.HNSWEFConstruct = 200
	}
	if c.Assistant.Name == "" {
		c.Assistant.Name = "Neo"
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "neochat:"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Embedding.Dimensions <= 0 {
		return fmt.Errorf("embedding.dimensions must be positive, got %d", c.Embedding.Dimensions)
	}
	if c.Generation.Temperature < 0 || c.Generation.Temperature > 2 {
		return fmt.Errorf("generation.temperature must be in [0,2], got %g", c.Generation.Temperature)
	}
	if c.Retrieval.CandidateMultiplier <= 0 {
		return fmt.Errorf("retrieval.candidate_multiplier must be positive, got %d", c.Retrieval.CandidateMultiplier)
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
