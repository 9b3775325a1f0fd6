package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/writ/internal/validator"
	"github.com/aretw0/writ/pkg/documents"
)

var validateCmd = &cobra.Command{
	Use:   "validate [wizard...]",
	Short: "Check wizard bundles for consistency",
	Long: `Compiles every bundle (or the named ones), walks its sections from the entry
and reports dead links, link cycles, unreachable sections, unused questions
and template errors.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		res, _, _, err := openResources(cmd)
		if err != nil {
			return err
		}
		defer res.Close()

		ids := args
		if len(ids) == 0 {
			list, err := res.Engine.List(cmd.Context())
			if err != nil {
				return err
			}
			for _, s := range list {
				ids = append(ids, s.ID)
			}
		}

		out := cmd.OutOrStdout()
		failed := 0
		for _, id := range ids {
			def, err := res.Engine.Definition(cmd.Context(), id)
			if err != nil {
				return err
			}
			report := validator.Validate(*def, documents.Options()...)
			for _, w := range report.Warnings {
				fmt.Fprintf(out, "%s: warning: %s\n", id, w)
			}
			if !report.OK() {
				failed++
				for _, e := range report.Errors {
					fmt.Fprintf(out, "%s: error: %s\n", id, e)
				}
				continue
			}
			fmt.Fprintf(out, "%s: ok\n", id)
		}

		if failed > 0 {
			return fmt.Errorf("%d of %d bundles failed validation", failed, len(ids))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
