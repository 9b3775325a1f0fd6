package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/writ/internal/cli"
	"github.com/aretw0/writ/internal/presentation/tui"
)

var previewCmd = &cobra.Command{
	Use:   "preview <wizard>",
	Short: "Render a wizard's document in the terminal",
	Long: `Composes the document from canned answers (or none, which prints the
placeholders) and renders it as styled markdown.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, _, _, err := openResources(cmd)
		if err != nil {
			return err
		}
		defer res.Close()

		var answers cli.Answers
		if path, _ := cmd.Flags().GetString("answers"); path != "" {
			if answers, err = cli.LoadAnswers(path); err != nil {
				return err
			}
		}

		text, err := cli.Preview(cmd.Context(), res.Engine, args[0], answers)
		if err != nil {
			return err
		}

		render := tui.NewRenderer(100)
		if plain, _ := cmd.Flags().GetBool("plain"); plain {
			render = tui.NewPlainRenderer(100)
		}
		out, err := render(text)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(previewCmd)
	previewCmd.Flags().String("answers", "", "YAML file with answers keyed by question id")
	previewCmd.Flags().Bool("plain", false, "Render without colors")
}
