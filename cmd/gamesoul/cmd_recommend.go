package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gamesoul/gamesoul/internal/engine"
	"github.com/gamesoul/gamesoul/internal/recommend"
)

func newRecommendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Recommend games for a player or an emotion",
		Long: `Recommend games.

Modes:
  emotional  games resonating with the player's emotional state (default)
  emotion    games for an explicit emotion (--emotion)
  social     games liked by similar players
  mixed      emotional and social merged

Examples:
  gamesoul recommend --user alice
  gamesoul recommend --mode emotion --emotion contemplative
  gamesoul recommend --user alice --mode mixed --dealbreaker multiplayer`,
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, _ := cmd.Flags().GetString("mode")
			userID, _ := cmd.Flags().GetString("user")
			emotion, _ := cmd.Flags().GetString("emotion")
			dealbreakers, _ := cmd.Flags().GetStringSlice("dealbreaker")

			req, err := engine.Request{
				Mode:         recommend.Strategy(mode),
				UserID:       userID,
				Emotion:      emotion,
				Dealbreakers: dealbreakers,
			}.Validate()
			if err != nil {
				return err
			}

			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			recs, err := a.engine.Recommend(cmd.Context(), req)
			if err != nil {
				return err
			}

			if jsonOutput(cmd) {
				return printJSON(cmd, map[string]interface{}{
					"mode":            req.Mode,
					"recommendations": recs,
					"count":           len(recs),
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Mode: %s\n", req.Mode)
			printRecommendations(cmd, recs)
			return nil
		},
	}

	cmd.Flags().String("mode", string(recommend.StrategyEmotional), "emotional, emotion, social or mixed")
	cmd.Flags().String("user", "", "Player id")
	cmd.Flags().String("emotion", "", "Emotion for --mode emotion")
	cmd.Flags().StringSlice("dealbreaker", nil, "Characteristic to exclude (repeatable)")

	return cmd
}
