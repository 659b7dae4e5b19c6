package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gamesoul/gamesoul/internal/config"
	"github.com/gamesoul/gamesoul/internal/engine"
	"github.com/gamesoul/gamesoul/internal/logging"
	"github.com/gamesoul/gamesoul/internal/metrics"
	"github.com/gamesoul/gamesoul/internal/store"
)

// app holds what a command needs to talk to the engine.
type app struct {
	cfg       *config.GameSoulConfig
	logger    *slog.Logger
	decisions *logging.DecisionLogger
	engine    *engine.Engine
	dataDir   string
}

// loadConfig resolves --config and --log-level on top of file and env settings.
func loadConfig(cmd *cobra.Command) (*config.GameSoulConfig, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadPath(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Logging.Level = level
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// newApp loads config, opens the configured store and builds the engine.
// Callers must Close the app.
func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	logger := logging.NewFormatLogger(cfg.Logging.Level, cfg.Logging.Format, cmd.ErrOrStderr())

	dataDir, err := dataDirFor(cfg)
	if err != nil {
		return nil, err
	}
	decisions := logging.NewDecisionLogger(dataDir, cfg.Logging.Level)

	s, err := openStore(cmd.Context(), cfg, logger)
	if err != nil {
		decisions.Close()
		return nil, err
	}

	eng, err := engine.New(s,
		engine.WithLogger(logger),
		engine.WithDecisionLogger(decisions),
		engine.WithPolicy(cfg.Similarity.Policy()),
		engine.WithLimit(cfg.Recommend.Limit),
	)
	if err != nil {
		s.Close()
		decisions.Close()
		return nil, err
	}

	return &app{
		cfg:       cfg,
		logger:    logger,
		decisions: decisions,
		engine:    eng,
		dataDir:   dataDir,
	}, nil
}

// Close releases the store and the decision log.
func (a *app) Close() error {
	err := a.engine.Close()
	a.decisions.Close()
	return err
}

// dataDirFor is the directory holding the decision and audit logs: the
// SQLite file's directory when one is configured, else ~/.gamesoul.
func dataDirFor(cfg *config.GameSoulConfig) (string, error) {
	if cfg.Store.SQLitePath != "" {
		return filepath.Dir(cfg.Store.SQLitePath), nil
	}
	return store.DefaultDataDir()
}

// openStore builds the configured backend, wrapped in a circuit breaker
// when enabled.
func openStore(ctx context.Context, cfg *config.GameSoulConfig, logger *slog.Logger) (store.AffinityStore, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	var s store.AffinityStore
	switch cfg.Store.Backend {
	case config.BackendMemory:
		s = store.NewInMemoryAffinityStore()
	case config.BackendNeo4j:
		neo, err := store.NewNeo4jAffinityStore(ctx, cfg.Store.Neo4j.StoreConfig(), logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open neo4j store: %w", err)
		}
		s = neo
	default:
		path := cfg.Store.SQLitePath
		if path == "" {
			var err error
			if path, err = store.DefaultDatabasePath(); err != nil {
				return nil, err
			}
		}
		sqlite, err := store.NewSQLiteAffinityStore(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		s = sqlite
	}
	logger.Debug("store opened", "backend", cfg.Store.Backend)

	if !cfg.Store.Breaker.Enabled {
		return s, nil
	}
	bc := store.DefaultBreakerConfig()
	bc.FailureThreshold = cfg.Store.Breaker.FailureThreshold
	if cfg.Store.Breaker.Timeout > 0 {
		bc.Timeout = cfg.Store.Breaker.Timeout
	}
	bc.OnStateChange = func(name, from, to string) {
		metrics.RecordBreakerTransition(name, from, to)
		logger.Warn("store circuit breaker changed state", "name", name, "from", from, "to", to)
	}
	return store.NewBreakerStore(s, bc), nil
}

func jsonOutput(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// valueOrDefault returns the value if non-empty, otherwise the default.
func valueOrDefault(value, defaultValue string) string {
	if value == "" {
		return defaultValue
	}
	return value
}
