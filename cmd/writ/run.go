package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/aretw0/writ"
	"github.com/aretw0/writ/internal/cli"
)

var runCmd = &cobra.Command{
	Use:   "run <wizard>",
	Short: "Fill in a wizard interactively",
	Long: `Walks through the wizard in the terminal, asks for your name and email
once every section is complete and writes the generated PDF.

Progress is saved after each section. Pass --session to resume later.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, logger, _, err := openResources(cmd)
		if err != nil {
			return err
		}
		defer res.Close()

		sessionID, _ := cmd.Flags().GetString("session")
		fresh, _ := cmd.Flags().GetBool("fresh")
		outDir, _ := cmd.Flags().GetString("out")
		plain, _ := cmd.Flags().GetBool("plain")

		// Forms need a terminal; piped input falls back to plain prompts.
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			plain = true
		}

		sc := cli.NewSignalContext(cmd.Context())
		defer sc.Cancel()

		_, err = cli.Run(sc, res, logger, cli.RunOptions{
			WizardID:  args[0],
			SessionID: sessionID,
			Fresh:     fresh,
			OutDir:    outDir,
			Plain:     plain,
			Banner:    !plain,
			Version:   writ.Version,
			In:        cmd.InOrStdin(),
			Out:       cmd.OutOrStdout(),
		})
		if sig := sc.Signal(); sig != nil {
			logger.Info("interrupted", "signal", sig.String())
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().String("session", "", "Session id to create or resume")
	runCmd.Flags().Bool("fresh", false, "Discard any saved progress for --session")
	runCmd.Flags().String("out", ".", "Directory the PDF is written to")
	runCmd.Flags().Bool("plain", false, "Use plain line prompts instead of forms")
}
