package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	elizamcp "github.com/valter-silva-au/eliza/internal/mcp"
)

var mcpScriptPath string

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  "Commands for running the eliza MCP (Model Context Protocol) server.",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the eliza MCP server on stdio",
	Long: `Start the eliza MCP server on stdio transport.

The server exposes conversations as MCP tools that AI assistants can call:
start_conversation, respond, end_conversation, script_info.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, name, _, err := resolveScript(mcpScriptPath)
		if err != nil {
			return err
		}

		srv := elizamcp.NewServer(s, name, TranscriptStore, EventLog, appVersion)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		if err := srv.Run(ctx); err != nil {
			return fmt.Errorf("running MCP server: %w", err)
		}

		return nil
	},
}

func init() {
	mcpServeCmd.Flags().StringVar(&mcpScriptPath, "script", "", "script file to serve (default: the configured or embedded script)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}
