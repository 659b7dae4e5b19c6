package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gamesoul/gamesoul/internal/models"
)

func newQuestionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "questions",
		Short: "List questionnaire questions, answer ids and dealbreakers",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			catalog, err := a.engine.Questionnaire(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOutput(cmd) {
				return printJSON(cmd, catalog)
			}
			out := cmd.OutOrStdout()
			for _, q := range catalog.Questions {
				fmt.Fprintf(out, "%s: %s\n", q.ID, q.Text)
				for _, opt := range q.Options {
					fmt.Fprintf(out, "  %-14s %s\n", opt.ID, opt.Label)
				}
				fmt.Fprintln(out)
			}
			if len(catalog.Characteristics) == 0 {
				fmt.Fprintln(out, "Dealbreakers: none (catalog not loaded)")
				return nil
			}
			fmt.Fprintf(out, "Dealbreakers: %s\n", strings.Join(catalog.Characteristics, ", "))
			return nil
		},
	}
}

func newQuestionnaireCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "questionnaire",
		Short: "Submit questionnaire answers and get recommendations",
		Long: `Build a player's emotional profile from questionnaire answers,
store it, and print games matching the dominant emotion.

Examples:
  gamesoul questionnaire --user alice --answer mood=calm --answer experience_type=relax
  gamesoul questionnaire --user bob --answer mood=energetic --dealbreaker combat`,
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, _ := cmd.Flags().GetString("user")
			rawAnswers, _ := cmd.Flags().GetStringArray("answer")
			dealbreakers, _ := cmd.Flags().GetStringSlice("dealbreaker")

			answers, err := parseAnswers(rawAnswers)
			if err != nil {
				return err
			}

			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.engine.SubmitQuestionnaire(cmd.Context(), userID, answers, dealbreakers)
			if err != nil {
				return err
			}

			if jsonOutput(cmd) {
				return printJSON(cmd, res)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Profile for %s: %s (time: %s)\n", res.Profile.UserID, res.Profile.DominantEmotion, res.Profile.TimePreference)
			for _, e := range models.Emotions {
				if w, ok := res.Profile.EmotionWeights[e]; ok {
					fmt.Fprintf(out, "  %-14s %.2f\n", e, w)
				}
			}
			fmt.Fprintln(out)
			printRecommendations(cmd, res.Recommendations)
			return nil
		},
	}

	cmd.Flags().String("user", "", "Player id (required)")
	cmd.Flags().StringArray("answer", nil, "Answer as question=option (repeatable)")
	cmd.Flags().StringSlice("dealbreaker", nil, "Characteristic to exclude (repeatable)")
	cmd.MarkFlagRequired("user")

	return cmd
}

// parseAnswers turns question=option pairs into an answer map.
func parseAnswers(raw []string) (map[string]string, error) {
	answers := make(map[string]string, len(raw))
	for _, pair := range raw {
		q, a, ok := strings.Cut(pair, "=")
		q, a = strings.TrimSpace(q), strings.TrimSpace(a)
		if !ok || q == "" || a == "" {
			return nil, fmt.Errorf("invalid answer %q (want question=option)", pair)
		}
		answers[q] = a
	}
	return answers, nil
}

func printRecommendations(cmd *cobra.Command, recs []models.Recommendation) {
	out := cmd.OutOrStdout()
	if len(recs) == 0 {
		fmt.Fprintln(out, "No recommendations.")
		return
	}
	fmt.Fprintf(out, "Recommendations (%d):\n", len(recs))
	for i, r := range recs {
		fmt.Fprintf(out, "  %d. %s [%s] score %.2f\n", i+1, r.Name, r.ItemID, r.Score)
		reasons := append([]string(nil), r.Reasons...)
		sort.Strings(reasons)
		for _, reason := range reasons {
			fmt.Fprintf(out, "     - %s\n", reason)
		}
	}
}
