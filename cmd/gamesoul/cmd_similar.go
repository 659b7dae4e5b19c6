package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newSimilarCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "similar <user>",
		Short: "Show players similar to a player",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			recompute, _ := cmd.Flags().GetBool("recompute")

			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			if recompute {
				res, err := a.engine.RecomputeSimilarity(ctx, args[0])
				if err != nil {
					return err
				}
				a.logger.Info("similarity recomputed", "natural", res.Natural, "seeded", res.Seeded)
			}

			sims, err := a.engine.SimilarUsers(ctx, args[0])
			if err != nil {
				return err
			}

			if jsonOutput(cmd) {
				return printJSON(cmd, map[string]interface{}{
					"user":    args[0],
					"similar": sims,
					"count":   len(sims),
				})
			}
			out := cmd.OutOrStdout()
			if len(sims) == 0 {
				fmt.Fprintf(out, "No similar players for %s.\n", args[0])
				return nil
			}
			fmt.Fprintf(out, "Players similar to %s:\n", args[0])
			for _, s := range sims {
				fmt.Fprintf(out, "  %-20s score %.2f  shared %d  [%s]  %s\n",
					s.OtherID, s.Score, s.SharedCount, s.Provenance, strings.Join(s.SharedItemIDs, ", "))
			}
			return nil
		},
	}

	cmd.Flags().Bool("recompute", false, "Recompute similarity before listing")

	return cmd
}
