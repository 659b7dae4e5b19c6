package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gamesoul/gamesoul/internal/store"
)

func newCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage reference data",
	}
	cmd.AddCommand(newCatalogLoadCmd())
	return cmd
}

func newCatalogLoadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Load emotions, games and seed players into the store",
		Long: `Load reference data: the emotion vocabulary, games with their
characteristics and emotional resonance, and seed players used to
bootstrap similarity for new players. Loading is idempotent.

Without --file the built-in catalog is loaded.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("file")

			var cat *store.Catalog
			var err error
			if file != "" {
				cat, err = store.LoadCatalogFile(file)
			} else {
				cat, err = store.DefaultCatalog()
			}
			if err != nil {
				return err
			}

			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.engine.LoadCatalog(cmd.Context(), cat)
			if err != nil {
				return err
			}

			if jsonOutput(cmd) {
				return printJSON(cmd, res)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Loaded %d emotions, %d items, %d resonances, %d seed users (%d likes)\n",
				res.Emotions, res.Items, res.Resonances, res.SeedUsers, res.SeedLikes)
			return nil
		},
	}

	cmd.Flags().String("file", "", "Catalog YAML file (default: built-in catalog)")

	return cmd
}
