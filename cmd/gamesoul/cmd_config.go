package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/gamesoul/gamesoul/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage gamesoul configuration",
		Long: `View and modify gamesoul configuration settings.

Configuration is stored in ~/.gamesoul/config.yaml unless --config is given.

Examples:
  gamesoul config list
  gamesoul config get store.backend
  gamesoul config set store.backend neo4j
  gamesoul config set store.neo4j.password '${NEO4J_PASSWORD}'`,
	}

	cmd.AddCommand(
		newConfigListCmd(),
		newConfigGetCmd(),
		newConfigSetCmd(),
	)

	return cmd
}

func newConfigListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all configuration settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadRawConfig(cmd)
			if err != nil {
				return err
			}

			if jsonOutput(cmd) {
				redacted := *cfg
				redacted.Store.Neo4j.Password = cfg.Store.Neo4j.RedactedPassword()
				return printJSON(cmd, redacted)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Store Settings:")
			for _, key := range []string{
				"store.backend", "store.sqlite_path",
				"store.neo4j.uri", "store.neo4j.user", "store.neo4j.password", "store.neo4j.database", "store.neo4j.timeout",
				"store.breaker.enabled", "store.breaker.failure_threshold", "store.breaker.timeout",
			} {
				printConfigLine(cmd, cfg, key)
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Similarity Settings:")
			for _, key := range []string{
				"similarity.min_shared", "similarity.scale", "similarity.seed_similarity",
				"similarity.seed_admission", "similarity.seed_users", "similarity.rand_seed",
			} {
				printConfigLine(cmd, cfg, key)
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Other Settings:")
			for _, key := range []string{"recommend.limit", "logging.level", "logging.format", "metrics.addr"} {
				printConfigLine(cmd, cfg, key)
			}
			return nil
		},
	}
}

func printConfigLine(cmd *cobra.Command, cfg *config.GameSoulConfig, key string) {
	value, _ := getConfigValue(cfg, key)
	s := fmt.Sprint(value)
	fmt.Fprintf(cmd.OutOrStdout(), "  %-33s %s\n", key+":", valueOrDefault(s, "(not set)"))
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]

			cfg, err := loadRawConfig(cmd)
			if err != nil {
				return err
			}

			value, found := getConfigValue(cfg, key)
			if !found {
				return fmt.Errorf("unknown configuration key: %s", key)
			}

			if jsonOutput(cmd) {
				return printJSON(cmd, map[string]interface{}{"key": key, "value": value})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s = %v\n", key, value)
			return nil
		},
	}
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]

			cfg, err := loadRawConfig(cmd)
			if err != nil {
				return err
			}
			if err := setConfigValue(cfg, key, value); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}

			path, err := configPath(cmd)
			if err != nil {
				return err
			}
			if err := saveConfig(cfg, path); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			if key == "store.neo4j.password" {
				value = cfg.Store.Neo4j.RedactedPassword()
			}
			if jsonOutput(cmd) {
				return printJSON(cmd, map[string]interface{}{"status": "updated", "key": key, "value": value})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, value)
			return nil
		},
	}
}

// loadRawConfig loads the config file without env overrides so that
// config set never persists values taken from the environment.
func loadRawConfig(cmd *cobra.Command) (*config.GameSoulConfig, error) {
	path, err := configPath(cmd)
	if err != nil {
		return nil, err
	}
	if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
		return config.Default(), nil
	}
	cfg, err := config.LoadFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func configPath(cmd *cobra.Command) (string, error) {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		return path, nil
	}
	return config.DefaultPath()
}

// getConfigValue retrieves a configuration value by dot-notation key.
func getConfigValue(cfg *config.GameSoulConfig, key string) (interface{}, bool) {
	switch key {
	case "store.backend":
		return cfg.Store.Backend, true
	case "store.sqlite_path":
		return cfg.Store.SQLitePath, true
	case "store.neo4j.uri":
		return cfg.Store.Neo4j.URI, true
	case "store.neo4j.user":
		return cfg.Store.Neo4j.User, true
	case "store.neo4j.password":
		return cfg.Store.Neo4j.RedactedPassword(), true
	case "store.neo4j.database":
		return cfg.Store.Neo4j.Database, true
	case "store.neo4j.timeout":
		return cfg.Store.Neo4j.Timeout.String(), true
	case "store.breaker.enabled":
		return cfg.Store.Breaker.Enabled, true
	case "store.breaker.failure_threshold":
		return cfg.Store.Breaker.FailureThreshold, true
	case "store.breaker.timeout":
		return cfg.Store.Breaker.Timeout.String(), true
	case "similarity.min_shared":
		return cfg.Similarity.MinShared, true
	case "similarity.scale":
		return cfg.Similarity.Scale, true
	case "similarity.seed_similarity":
		return cfg.Similarity.SeedSimilarity, true
	case "similarity.seed_admission":
		return cfg.Similarity.SeedAdmission, true
	case "similarity.seed_users":
		return strings.Join(cfg.Similarity.SeedUsers, ","), true
	case "similarity.rand_seed":
		return cfg.Similarity.RandSeed, true
	case "recommend.limit":
		return cfg.Recommend.Limit, true
	case "logging.level":
		return cfg.Logging.Level, true
	case "logging.format":
		return cfg.Logging.Format, true
	case "metrics.addr":
		return cfg.Metrics.Addr, true
	default:
		return nil, false
	}
}

// setConfigValue sets a configuration value by dot-notation key.
func setConfigValue(cfg *config.GameSoulConfig, key, value string) error {
	switch key {
	case "store.backend":
		cfg.Store.Backend = value
	case "store.sqlite_path":
		cfg.Store.SQLitePath = value
	case "store.neo4j.uri":
		cfg.Store.Neo4j.URI = value
	case "store.neo4j.user":
		cfg.Store.Neo4j.User = value
	case "store.neo4j.password":
		cfg.Store.Neo4j.Password = value
	case "store.neo4j.database":
		cfg.Store.Neo4j.Database = value
	case "store.neo4j.timeout", "store.breaker.timeout":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration: %s", value)
		}
		if key == "store.neo4j.timeout" {
			cfg.Store.Neo4j.Timeout = d
		} else {
			cfg.Store.Breaker.Timeout = d
		}
	case "store.breaker.enabled":
		cfg.Store.Breaker.Enabled = value == "true" || value == "1"
	case "store.breaker.failure_threshold":
		n, err := strconv.ParseUint(value, 10, 32)
		if err != nil {
			return fmt.Errorf("invalid failure threshold: %s", value)
		}
		cfg.Store.Breaker.FailureThreshold = uint32(n)
	case "similarity.min_shared", "recommend.limit":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer: %s", value)
		}
		if key == "similarity.min_shared" {
			cfg.Similarity.MinShared = n
		} else {
			cfg.Recommend.Limit = n
		}
	case "similarity.scale", "similarity.seed_similarity", "similarity.seed_admission":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid number: %s", value)
		}
		switch key {
		case "similarity.scale":
			cfg.Similarity.Scale = f
		case "similarity.seed_similarity":
			cfg.Similarity.SeedSimilarity = f
		default:
			cfg.Similarity.SeedAdmission = f
		}
	case "similarity.seed_users":
		var seeds []string
		for _, s := range strings.Split(value, ",") {
			if s = strings.TrimSpace(s); s != "" {
				seeds = append(seeds, s)
			}
		}
		cfg.Similarity.SeedUsers = seeds
	case "similarity.rand_seed":
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid seed: %s", value)
		}
		cfg.Similarity.RandSeed = n
	case "logging.level":
		cfg.Logging.Level = value
	case "logging.format":
		cfg.Logging.Format = value
	case "metrics.addr":
		cfg.Metrics.Addr = value
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	return nil
}

// saveConfig writes the configuration as YAML to path.
func saveConfig(cfg *config.GameSoulConfig, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
