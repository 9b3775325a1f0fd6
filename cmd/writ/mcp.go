package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/aretw0/writ/internal/cli"
	"github.com/aretw0/writ/pkg/adapters/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes the wizards as MCP tools so an AI agent can fill in a document
on a user's behalf.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		res, logger, _, err := openResources(cmd)
		if err != nil {
			return err
		}
		defer res.Close()

		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")

		srv := mcp.NewServer(res.Engine, res.Sessions, mcp.WithLogger(logger))

		switch transport {
		case "stdio":
			// Keep stray log output off the JSON-RPC stream.
			log.SetOutput(cmd.ErrOrStderr())
			logger.Info("starting mcp server (stdio)")
			return srv.ServeStdio()
		case "sse":
			sc := cli.NewSignalContext(cmd.Context())
			defer sc.Cancel()
			return srv.ServeSSE(sc, port)
		default:
			return fmt.Errorf("unknown transport %q", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().String("transport", "stdio", "Transport: stdio or sse")
	mcpCmd.Flags().Int("port", 8081, "Port for the sse transport")
}
