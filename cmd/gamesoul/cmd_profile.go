package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newProfileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profile <user>",
		Short: "Show a player's stored profile",
		Long: `Print the stored profile of a player: dominant emotion, time
preference, current emotional state and resonances.

Examples:
  gamesoul profile alice
  gamesoul profile alice --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			p, err := a.engine.Profile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if jsonOutput(cmd) {
				return printJSON(cmd, p)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Player:          %s (%s)\n", p.User.ID, p.User.Status)
			fmt.Fprintf(out, "Dominant:        %s\n", valueOrDefault(string(p.User.DominantEmotion), "(none)"))
			fmt.Fprintf(out, "Time preference: %s\n", valueOrDefault(p.User.TimePreference, "(none)"))
			if p.EmotionalState != nil {
				fmt.Fprintf(out, "Feels:           %s %.2f [%s]\n",
					p.EmotionalState.Emotion, p.EmotionalState.Intensity, p.EmotionalState.Provenance)
			} else {
				fmt.Fprintln(out, "Feels:           (none)")
			}
			if len(p.Resonances) == 0 {
				return nil
			}
			fmt.Fprintln(out, "Resonates with:")
			for _, r := range p.Resonances {
				fmt.Fprintf(out, "  %-14s %.2f\n", r.Emotion, r.Intensity)
			}
			return nil
		},
	}
}
