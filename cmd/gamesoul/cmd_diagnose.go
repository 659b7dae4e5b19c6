package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gamesoul/gamesoul/internal/engine"
)

func newDiagnoseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "diagnose",
		Short: "Show affinity graph counts and configuration problems",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			d, err := a.engine.Diagnose(cmd.Context())
			if err != nil {
				return err
			}

			if jsonOutput(cmd) {
				return printJSON(cmd, map[string]interface{}{
					"backend":   a.cfg.Store.Backend,
					"diagnosis": d,
				})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Backend: %s\n\n", a.cfg.Store.Backend)
			fmt.Fprintf(out, "  users:            %d\n", d.Stats.Users)
			fmt.Fprintf(out, "  items:            %d\n", d.Stats.Items)
			fmt.Fprintf(out, "  emotions:         %d\n", d.Stats.Emotions)
			fmt.Fprintf(out, "  item resonances:  %d\n", d.Stats.ItemResonances)
			fmt.Fprintf(out, "  user resonances:  %d\n", d.Stats.UserResonances)
			fmt.Fprintf(out, "  emotional states: %d\n", d.Stats.EmotionalStates)
			fmt.Fprintf(out, "  plays:            %d\n", d.Stats.Plays)
			fmt.Fprintf(out, "  similarities:     %d\n", d.Stats.Similarities)
			if len(d.MissingSeeds) > 0 {
				fmt.Fprintf(out, "\nMissing seed users: %s (run 'gamesoul catalog load')\n", strings.Join(d.MissingSeeds, ", "))
			}
			return nil
		},
	}
}

func newEmotionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "emotions",
		Short: "List the emotion vocabulary",
		RunE: func(cmd *cobra.Command, args []string) error {
			emotions := engine.Vocabulary()
			if jsonOutput(cmd) {
				return printJSON(cmd, emotions)
			}
			for _, e := range emotions {
				fmt.Fprintf(cmd.OutOrStdout(), "  %-14s %s\n", e.Name, e.Description)
			}
			return nil
		},
	}
}
