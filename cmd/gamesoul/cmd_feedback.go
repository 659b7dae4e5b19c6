package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gamesoul/gamesoul/internal/feedback"
)

func newFeedbackCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feedback <user> <item>",
		Short: "Record whether a player liked a game",
		Long: `Record feedback on a played game.

Unknown games are created as placeholders. A player without an emotional
state gets one derived from the game, and similar players are recomputed.

Examples:
  gamesoul feedback alice celeste --liked --rating 5
  gamesoul feedback bob rocket_league`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			liked, _ := cmd.Flags().GetBool("liked")
			sub := feedback.Submission{UserID: args[0], ItemID: args[1], Liked: liked}
			if cmd.Flags().Changed("rating") {
				rating, _ := cmd.Flags().GetInt("rating")
				sub.Rating = &rating
			}
			if _, err := sub.Validate(); err != nil {
				return err
			}

			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.engine.SubmitFeedback(cmd.Context(), sub)
			if err != nil {
				return err
			}

			if jsonOutput(cmd) {
				return printJSON(cmd, res)
			}
			out := cmd.OutOrStdout()
			verb := "disliked"
			if liked {
				verb = "liked"
			}
			fmt.Fprintf(out, "Recorded: %s %s %s\n", res.UserID, verb, res.ItemID)
			if res.ItemCreated {
				fmt.Fprintf(out, "  created placeholder item %s\n", res.ItemID)
			}
			if res.StateAssigned != nil {
				fmt.Fprintf(out, "  emotional state set to %s\n", *res.StateAssigned)
			}
			fmt.Fprintf(out, "  similarity: %d natural, %d seeded\n", res.Similarity.Natural, res.Similarity.Seeded)
			return nil
		},
	}

	cmd.Flags().Bool("liked", false, "The player liked the game")
	cmd.Flags().Int("rating", 0, "Rating from 1 to 5")

	return cmd
}
