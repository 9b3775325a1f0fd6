package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/aretw0/writ/internal/cli"
	"github.com/aretw0/writ/internal/config"
	"github.com/aretw0/writ/internal/logging"
	"github.com/aretw0/writ/pkg/runner"
)

var rootCmd = &cobra.Command{
	Use:   "writ",
	Short: "writ drafts legal documents through guided wizards",
	Long: `writ walks you through a legal document one section at a time and
generates a PDF once every section is complete.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("env", ".env", "Env file with WRIT_* settings")
	rootCmd.PersistentFlags().String("bundles", "", "Directory of additional wizard bundles")
	rootCmd.PersistentFlags().String("store", "", "Session store: memory, file or redis")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().String("log-format", "", "Log format: text or json")
}

// loadConfig reads the env file and environment, then applies flag overrides.
func loadConfig(cmd *cobra.Command) (config.Config, *slog.Logger, error) {
	envFile, _ := cmd.Flags().GetString("env")
	cfg, err := config.Load(envFile)
	if err != nil {
		return cfg, nil, err
	}

	if cmd.Flags().Changed("bundles") {
		cfg.BundlesDir, _ = cmd.Flags().GetString("bundles")
	}
	if cmd.Flags().Changed("store") {
		cfg.Store, _ = cmd.Flags().GetString("store")
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel, _ = cmd.Flags().GetString("log-level")
	}
	if cmd.Flags().Changed("log-format") {
		cfg.LogFormat, _ = cmd.Flags().GetString("log-format")
	}
	if err := cfg.Validate(); err != nil {
		return cfg, nil, err
	}

	if cfg.MaxInputSize > 0 {
		if err := os.Setenv(runner.EnvMaxInputSize, strconv.Itoa(cfg.MaxInputSize)); err != nil {
			return cfg, nil, err
		}
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return cfg, nil, err
	}
	format, err := logging.ParseFormat(cfg.LogFormat)
	if err != nil {
		return cfg, nil, err
	}
	return cfg, logging.New(level, logging.WithFormat(format)), nil
}

// openResources loads the configuration and builds the shared resources.
// Callers must Close the result.
func openResources(cmd *cobra.Command) (*cli.Resources, *slog.Logger, config.Config, error) {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, cfg, err
	}
	res, err := cli.Build(cmd.Context(), cfg, logger)
	if err != nil {
		return nil, nil, cfg, err
	}
	return res, logger, cfg, nil
}
