package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/gamesoul/gamesoul/internal/mcp"
	"github.com/gamesoul/gamesoul/internal/metrics"
)

func newMCPServerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp-server",
		Short: "Serve gamesoul tools over MCP on stdio",
		Long: `Run gamesoul as a Model Context Protocol server on stdin/stdout.

Tools: gamesoul_questions, gamesoul_questionnaire, gamesoul_recommend,
gamesoul_feedback, gamesoul_emotions, gamesoul_profile.

Logs go to stderr. With --metrics-addr (or metrics.addr) Prometheus
metrics are served on /metrics.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.decisions.Close()

			addr := a.cfg.Metrics.Addr
			if cmd.Flags().Changed("metrics-addr") {
				addr, _ = cmd.Flags().GetString("metrics-addr")
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			if addr != "" {
				go func() {
					if err := metrics.Serve(ctx, addr); err != nil {
						a.logger.Error("metrics endpoint failed", "addr", addr, "error", err)
					}
				}()
				a.logger.Info("serving metrics", "addr", addr)
			}

			srv, err := mcp.NewServer(&mcp.Config{
				Name:     "gamesoul",
				Version:  version,
				Engine:   a.engine,
				Logger:   a.logger,
				AuditDir: a.dataDir,
			})
			if err != nil {
				a.engine.Close()
				return err
			}
			defer srv.Close()

			a.logger.Info("mcp server starting", "backend", a.cfg.Store.Backend)
			if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().String("metrics-addr", "", "Listen address for /metrics (overrides config)")

	return cmd
}
