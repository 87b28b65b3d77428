package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/docket"
	"github.com/aretw0/docket/internal/cli"
	"github.com/aretw0/docket/pkg/adapters/mcp"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Starts docket as an MCP Server so AI agents can hold the document dialogue as tools.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")
		addr, _ := cmd.Flags().GetString("addr")

		app, err := loadApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		inspect, err := app.InspectStore()
		if err != nil {
			return err
		}
		srv := mcp.NewServer(app.Orchestrator,
			mcp.WithLogger(app.Logger),
			mcp.WithVersion(docket.Version),
			mcp.WithInspectStore(inspect),
		)

		switch transport {
		case "stdio":
			app.Logger.Info("Starting docket MCP Server (Stdio)")
			return srv.ServeStdio()
		case "sse":
			sigCtx := cli.NewSignalContext(context.Background())
			defer sigCtx.Cancel()

			app.Logger.Info("Starting docket MCP Server (SSE)", "addr", addr)
			if err := srv.ServeSSE(sigCtx, addr); err != nil {
				return err
			}
			app.Logger.Info("MCP Server stopped gracefully")
			return nil
		}
		return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", transport)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().String("addr", ":8081", "Address to listen on (only for SSE)")
}
