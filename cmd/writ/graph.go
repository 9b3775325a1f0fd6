package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/writ/internal/presentation/graph"
)

var graphCmd = &cobra.Command{
	Use:   "graph <wizard>",
	Short: "Export the section graph of a wizard",
	Long: `Outputs a Mermaid diagram (graph TD) of the wizard's sections.
With --session the sections that session visited are highlighted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, _, _, err := openResources(cmd)
		if err != nil {
			return err
		}
		defer res.Close()

		def, err := res.Engine.Definition(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		var overlay *graph.GraphOverlay
		if sessionID, _ := cmd.Flags().GetString("session"); sessionID != "" {
			state, err := res.Sessions.Load(cmd.Context(), sessionID)
			if err != nil {
				return fmt.Errorf("failed to load session %q: %w", sessionID, err)
			}
			overlay = graph.OverlayFor(state)
		}

		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(def.Entry, def.Sections, overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().String("session", "", "Highlight the path of this session")
}
