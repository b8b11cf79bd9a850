// Package cli implements the eliza command tree.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
)

// SetVersionInfo sets the version information injected via ldflags.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

var rootCmd = &cobra.Command{
	Use:   "eliza",
	Short: "eliza - a script-driven conversation engine",
	Long: `eliza is a keyword-driven conversation engine in the style of the classic
DOCTOR program. It matches user input against a script of decomposition
and reassembly rules and answers in kind.

It provides an interactive REPL, one-shot exchanges for piping, script
inspection tools, saved conversation transcripts, and an MCP server that
exposes conversations as tools.`,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "eliza %s\ncommit: %s\nbuilt:  %s\n", appVersion, appCommit, appDate)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
