// Package config provides unified configuration loading for gamesoul.
// It supports loading from YAML files and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gamesoul/gamesoul/internal/constants"
	"github.com/gamesoul/gamesoul/internal/similarity"
	"github.com/gamesoul/gamesoul/internal/store"
)

// Store backends.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendNeo4j  = "neo4j"
)

// ConfigFileName is the config file looked up in the data directory.
const ConfigFileName = "config.yaml"

// GameSoulConfig contains all gamesoul configuration settings.
type GameSoulConfig struct {
	// Store selects and configures the affinity graph backend.
	Store StoreConfig `json:"store" yaml:"store"`

	// Similarity tunes user similarity and seed bootstrap.
	Similarity SimilarityConfig `json:"similarity" yaml:"similarity"`

	// Recommend tunes recommendation lists.
	Recommend RecommendConfig `json:"recommend" yaml:"recommend"`

	// Logging contains settings for operational and decision logging.
	Logging LoggingConfig `json:"logging" yaml:"logging"`

	// Metrics configures the Prometheus endpoint.
	Metrics MetricsConfig `json:"metrics" yaml:"metrics"`
}

// StoreConfig configures the affinity graph backend.
type StoreConfig struct {
	// Backend is "sqlite" (default), "neo4j" or "memory".
	Backend string `json:"backend" yaml:"backend"`

	// SQLitePath is the database file. Empty means ~/.gamesoul/gamesoul.db.
	SQLitePath string `json:"sqlite_path,omitempty" yaml:"sqlite_path,omitempty"`

	Neo4j Neo4jConfig `json:"neo4j" yaml:"neo4j"`

	Breaker BreakerConfig `json:"breaker" yaml:"breaker"`
}

// Neo4jConfig holds Neo4j connection settings.
type Neo4jConfig struct {
	URI      string `json:"uri,omitempty" yaml:"uri,omitempty"`
	User     string `json:"user,omitempty" yaml:"user,omitempty"`
	Password string `json:"password,omitempty" yaml:"password,omitempty"` // supports ${VAR}
	Database string `json:"database,omitempty" yaml:"database,omitempty"`

	// Timeout bounds connection setup and each transaction.
	Timeout time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`

	MaxPoolSize int `json:"max_pool_size,omitempty" yaml:"max_pool_size,omitempty"`
}

// RedactedPassword masks the password for display.
func (c Neo4jConfig) RedactedPassword() string {
	if c.Password == "" {
		return ""
	}
	return "(set)"
}

// String implements fmt.Stringer to prevent accidental password logging.
func (c Neo4jConfig) String() string {
	return fmt.Sprintf("Neo4jConfig{URI:%s, User:%s, Password:%s, Database:%s}",
		c.URI, c.User, c.RedactedPassword(), c.Database)
}

// StoreConfig converts to the store adapter settings.
func (c Neo4jConfig) StoreConfig() store.Neo4jConfig {
	return store.Neo4jConfig{
		URI:         c.URI,
		User:        c.User,
		Password:    c.Password,
		Database:    c.Database,
		Timeout:     c.Timeout,
		MaxPoolSize: c.MaxPoolSize,
	}
}

// BreakerConfig tunes the store circuit breaker.
type BreakerConfig struct {
	// Enabled wraps the store in a circuit breaker.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// FailureThreshold is the number of consecutive store failures that opens the breaker.
	FailureThreshold uint32 `json:"failure_threshold" yaml:"failure_threshold"`

	// Timeout is how long the breaker stays open before probing again.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// SimilarityConfig tunes the similarity engine.
type SimilarityConfig struct {
	MinShared      int      `json:"min_shared" yaml:"min_shared"`
	Scale          float64  `json:"scale" yaml:"scale"`
	SeedSimilarity float64  `json:"seed_similarity" yaml:"seed_similarity"`
	SeedAdmission  float64  `json:"seed_admission" yaml:"seed_admission"`
	SeedUsers      []string `json:"seed_users" yaml:"seed_users"`

	// RandSeed fixes the seed admission draws. Zero means time based.
	RandSeed int64 `json:"rand_seed,omitempty" yaml:"rand_seed,omitempty"`
}

// Policy converts to the similarity engine policy.
func (c SimilarityConfig) Policy() similarity.Policy {
	return similarity.Policy{
		MinShared:      c.MinShared,
		Scale:          c.Scale,
		SeedSimilarity: c.SeedSimilarity,
		SeedAdmission:  c.SeedAdmission,
		SeedUsers:      append([]string(nil), c.SeedUsers...),
		RandSeed:       c.RandSeed,
	}
}

// RecommendConfig tunes recommendation lists.
type RecommendConfig struct {
	Limit int `json:"limit" yaml:"limit"`
}

// LoggingConfig configures gamesoul's logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "info" (default), "debug", or "trace".
	// "debug" enables decision logging to ~/.gamesoul/decisions.jsonl.
	Level string `json:"level" yaml:"level"`

	// Format is "text" (default) or "json".
	Format string `json:"format,omitempty" yaml:"format,omitempty"`
}

// MetricsConfig configures the metrics endpoint.
type MetricsConfig struct {
	// Addr is the listen address of /metrics. Empty disables it.
	Addr string `json:"addr,omitempty" yaml:"addr,omitempty"`
}

// Default returns a GameSoulConfig with sensible defaults.
func Default() *GameSoulConfig {
	breaker := store.DefaultBreakerConfig()
	return &GameSoulConfig{
		Store: StoreConfig{
			Backend: BackendSQLite,
			Neo4j: Neo4jConfig{
				User:        "neo4j",
				Timeout:     10 * time.Second,
				MaxPoolSize: 50,
			},
			Breaker: BreakerConfig{
				Enabled:          true,
				FailureThreshold: breaker.FailureThreshold,
				Timeout:          breaker.Timeout,
			},
		},
		Similarity: SimilarityConfig{
			MinShared:      constants.DefaultMinSharedItems,
			Scale:          constants.DefaultSimilarityScale,
			SeedSimilarity: constants.DefaultSeedSimilarity,
			SeedAdmission:  constants.DefaultSeedAdmission,
			SeedUsers:      append([]string(nil), constants.DefaultSeedUsers...),
		},
		Recommend: RecommendConfig{
			Limit: constants.RecommendationLimit,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// DefaultPath returns ~/.gamesoul/config.yaml.
func DefaultPath() (string, error) {
	dir, err := store.DefaultDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName), nil
}

// Load loads configuration from the default locations and environment variables.
// Order: defaults -> ~/.gamesoul/config.yaml -> environment variables
func Load() (*GameSoulConfig, error) {
	config := Default()

	if configPath, err := DefaultPath(); err == nil {
		if _, statErr := os.Stat(configPath); statErr == nil {
			fileConfig, loadErr := LoadFromFile(configPath)
			if loadErr != nil {
				return nil, fmt.Errorf("loading config file: %w", loadErr)
			}
			config = fileConfig
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// LoadPath loads an explicit config file, then applies environment overrides.
// An empty path behaves like Load.
func LoadPath(path string) (*GameSoulConfig, error) {
	if path == "" {
		return Load()
	}
	config, err := LoadFromFile(path)
	if err != nil {
		return nil, err
	}
	applyEnvOverrides(config)
	return config, nil
}

// LoadFromFile loads configuration from a specific YAML file.
func LoadFromFile(path string) (*GameSoulConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	config.Store.Neo4j.Password = expandEnvVars(config.Store.Neo4j.Password)

	return config, nil
}

// Validate checks that the configuration is valid.
func (c *GameSoulConfig) Validate() error {
	switch c.Store.Backend {
	case BackendMemory, BackendSQLite:
	case BackendNeo4j:
		if c.Store.Neo4j.URI == "" {
			return fmt.Errorf("store.neo4j.uri is required for the neo4j backend")
		}
	default:
		return fmt.Errorf("invalid store backend: %s (valid: sqlite, neo4j, memory)", c.Store.Backend)
	}

	if c.Store.Neo4j.Timeout < 0 {
		return fmt.Errorf("neo4j timeout must be non-negative, got %v", c.Store.Neo4j.Timeout)
	}
	if c.Store.Breaker.Enabled && c.Store.Breaker.FailureThreshold == 0 {
		return fmt.Errorf("breaker failure_threshold must be positive when enabled")
	}

	if err := c.Similarity.Policy().Validate(); err != nil {
		return fmt.Errorf("similarity: %w", err)
	}

	if c.Recommend.Limit < 1 {
		return fmt.Errorf("recommend limit must be >= 1, got %d", c.Recommend.Limit)
	}

	validLevels := map[string]bool{"info": true, "debug": true, "trace": true}
	if c.Logging.Level != "" && !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (valid: info, debug, trace, or empty for default)", c.Logging.Level)
	}
	validFormats := map[string]bool{"": true, "text": true, "json": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("invalid log format: %s (valid: text, json)", c.Logging.Format)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(config *GameSoulConfig) {
	if v := os.Getenv("GAMESOUL_STORE_BACKEND"); v != "" {
		config.Store.Backend = v
	}
	if v := os.Getenv("GAMESOUL_SQLITE_PATH"); v != "" {
		config.Store.SQLitePath = v
	}

	if v := os.Getenv("GAMESOUL_NEO4J_URI"); v != "" {
		config.Store.Neo4j.URI = v
	}
	if v := os.Getenv("GAMESOUL_NEO4J_USER"); v != "" {
		config.Store.Neo4j.User = v
	}
	if v := os.Getenv("GAMESOUL_NEO4J_PASSWORD"); v != "" {
		config.Store.Neo4j.Password = v
	}
	if v := os.Getenv("GAMESOUL_NEO4J_DATABASE"); v != "" {
		config.Store.Neo4j.Database = v
	}

	if v := os.Getenv("GAMESOUL_BREAKER_ENABLED"); v != "" {
		config.Store.Breaker.Enabled = v == "true" || v == "1"
	}

	if v := os.Getenv("GAMESOUL_SEED_ADMISSION"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			config.Similarity.SeedAdmission = f
		}
	}
	if v := os.Getenv("GAMESOUL_RAND_SEED"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			config.Similarity.RandSeed = n
		}
	}
	if v := os.Getenv("GAMESOUL_SEED_USERS"); v != "" {
		var seeds []string
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				seeds = append(seeds, s)
			}
		}
		config.Similarity.SeedUsers = seeds
	}

	if v := os.Getenv("GAMESOUL_RECOMMEND_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Recommend.Limit = n
		}
	}

	if v := os.Getenv("GAMESOUL_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
	if v := os.Getenv("GAMESOUL_LOG_FORMAT"); v != "" {
		config.Logging.Format = v
	}

	if v := os.Getenv("GAMESOUL_METRICS_ADDR"); v != "" {
		config.Metrics.Addr = v
	}
}

// expandEnvVars expands ${VAR} patterns in a string with environment variable values.
func expandEnvVars(s string) string {
	if !strings.Contains(s, "${") {
		return s
	}
	return os.Expand(s, os.Getenv)
}
