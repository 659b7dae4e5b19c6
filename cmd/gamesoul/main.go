package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "0.1.0-dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "gamesoul",
		Short: "GameSoul - emotion-aware game recommendations",
		Long: `gamesoul recommends games from how a player feels.

It builds an emotional profile from a short questionnaire, learns from
feedback on played games, links players with shared tastes, and serves
emotional, social and mixed recommendations.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON (for agent consumption)")
	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.gamesoul/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: info, debug or trace (overrides config)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newQuestionsCmd(),
		newQuestionnaireCmd(),
		newProfileCmd(),
		newRecommendCmd(),
		newFeedbackCmd(),
		newSimilarCmd(),
		newCatalogCmd(),
		newDiagnoseCmd(),
		newEmotionsCmd(),
		newMCPServerCmd(),
		newConfigCmd(),
	)

	return rootCmd
}
