package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/aretw0/writ"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the writ version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		if short, _ := cmd.Flags().GetBool("short"); short {
			_, err := fmt.Fprintln(w, writ.Version)
			return err
		}
		if _, err := fmt.Fprintf(w, "writ version %s\n", writ.Version); err != nil {
			return err
		}
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			_, err := fmt.Fprintf(w, "go: %s\nplatform: %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
			return err
		}
		return nil
	},
}

func init() {
	versionCmd.Flags().Bool("short", false, "Print only the version number")
	versionCmd.Flags().BoolP("verbose", "v", false, "Include Go and platform details")
	rootCmd.AddCommand(versionCmd)
}
