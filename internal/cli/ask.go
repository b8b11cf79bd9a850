package cli

import (
	"bufio"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/eliza/internal/eliza"
	"github.com/valter-silva-au/eliza/internal/script"
)

var askScriptPath string

var askCmd = &cobra.Command{
	Use:   "ask [TEXT]...",
	Short: "Run one-shot exchanges on a fresh conversation",
	Long: `Run a fresh conversation without the interactive REPL.

Each argument is one line of input; with no arguments, lines are read from
stdin until EOF. The greeting and every response are printed to stdout, so
the command composes with pipes and scripts.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, _, _, err := resolveScript(askScriptPath)
		if err != nil {
			return err
		}

		var opts []eliza.Option
		if Logger != nil {
			opts = append(opts, eliza.WithLogger(Logger))
		}
		session, err := eliza.NewSession(s, opts...)
		if err != nil {
			return fmt.Errorf("starting conversation: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, session.Greeting())

		if len(args) > 0 {
			for _, line := range args {
				fmt.Fprintln(out, session.Respond(line))
			}
			return nil
		}

		scanner := bufio.NewScanner(cmd.InOrStdin())
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			fmt.Fprintln(out, session.Respond(line))
		}
		return scanner.Err()
	},
}

func init() {
	askCmd.Flags().StringVar(&askScriptPath, "script", "", "script file to converse with (default: the configured or embedded script)")
	rootCmd.AddCommand(askCmd)
}

// resolveScript returns the script to converse with: the named file when
// path is non-empty, otherwise the default loaded at startup, otherwise
// the embedded DOCTOR script.
func resolveScript(path string) (*eliza.Script, string, string, error) {
	if path != "" {
		s, err := script.LoadFile(path)
		if err != nil {
			return nil, "", "", err
		}
		return s, scriptName(path), path, nil
	}
	if DefaultScript != nil {
		return DefaultScript, DefaultScriptName, DefaultScriptPath, nil
	}
	s, err := script.LoadDoctor()
	if err != nil {
		return nil, "", "", err
	}
	return s, "doctor1966", "", nil
}

func scriptName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
