// Package mcp provides an MCP (Model Context Protocol) server for gamesoul.
package mcp

import (
	"context"
	"errors"
	"log/slog"
	"os"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/gamesoul/gamesoul/internal/engine"
	"github.com/gamesoul/gamesoul/internal/logging"
	"github.com/gamesoul/gamesoul/internal/ratelimit"
)

// Server wraps the MCP SDK server and exposes the engine as tools.
type Server struct {
	server       *sdk.Server
	engine       *engine.Engine
	logger       *slog.Logger
	auditLogger  *AuditLogger
	toolLimiters ratelimit.ToolLimiters
}

// Config holds server configuration.
type Config struct {
	Name    string // Server name (e.g., "gamesoul")
	Version string // Server version

	// Engine serves every tool. The server closes it on Close.
	Engine *engine.Engine

	Logger *slog.Logger

	// AuditDir receives audit.jsonl. Empty disables auditing.
	AuditDir string

	// RateLimits overrides ratelimit.DefaultRules.
	RateLimits map[string]ratelimit.Rule
}

// NewServer creates a new MCP server with gamesoul tools.
func NewServer(cfg *Config) (*Server, error) {
	if cfg == nil || cfg.Engine == nil {
		return nil, errors.New("mcp server requires an engine")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	mcpServer := sdk.NewServer(&sdk.Implementation{
		Name:    cfg.Name,
		Version: cfg.Version,
	}, nil)

	s := &Server{
		server:       mcpServer,
		engine:       cfg.Engine,
		logger:       logger,
		toolLimiters: ratelimit.NewToolLimiters(cfg.RateLimits),
	}
	if cfg.AuditDir != "" {
		s.auditLogger = NewAuditLogger(cfg.AuditDir)
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Run starts the MCP server over stdio transport.
// This blocks until the client disconnects or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	notifySignals(sigChan)

	go func() {
		select {
		case <-sigChan:
			s.logger.Info("shutting down on signal")
			cancel()
		case <-ctx.Done():
		}
	}()

	return s.server.Run(ctx, &sdk.StdioTransport{})
}

// Close releases the audit log and the engine's store.
func (s *Server) Close() error {
	auditErr := s.auditLogger.Close()
	if err := s.engine.Close(); err != nil {
		return err
	}
	return auditErr
}
