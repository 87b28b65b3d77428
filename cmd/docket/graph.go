package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/docket/internal/presentation/graph"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Print the dialogue as a Mermaid flowchart",
	Long:  `Renders the menu, document kinds and their required fields. With --session the path taken so far is highlighted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		var overlay *graph.Overlay
		if id, _ := cmd.Flags().GetString("session"); id != "" {
			sess, err := app.Sessions.Load(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("failed to load session %s: %w", id, err)
			}
			overlay = graph.OverlayFor(sess)
		}
		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(app.Catalog, overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().String("session", "", "Highlight the progress of this session")
}
