package cli

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/valter-silva-au/eliza/internal/script"
)

var scriptInfoJSON bool

var scriptCmd = &cobra.Command{
	Use:   "script",
	Short: "Inspect conversation scripts",
}

var scriptCheckCmd = &cobra.Command{
	Use:   "check FILE...",
	Short: "Parse scripts and report load errors",
	Long: `Parse each named script file and report the first grammar violation,
with its line number. Exits non-zero when any script fails to load.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		failed := 0
		for _, path := range args {
			s, err := script.LoadFile(path)
			if err != nil {
				failed++
				fmt.Fprintf(out, "%s: %v\n", path, err)
				continue
			}
			if err := s.Validate(); err != nil {
				failed++
				fmt.Fprintf(out, "%s: %v\n", path, err)
				continue
			}
			fmt.Fprintf(out, "%s: ok (%d rules)\n", path, len(s.Rules))
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d scripts failed to load", failed, len(args))
		}
		return nil
	},
}

var scriptHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))

var scriptInfoCmd = &cobra.Command{
	Use:   "info [FILE]",
	Short: "Show a script's keyword, rule, and tag inventory",
	Long: `Summarize a script: its greeting, rule counts by kind, the keyword
precedence table, declared tags, and the memory keyword. With no FILE,
the configured or embedded script is summarized.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ""
		if len(args) == 1 {
			path = args[0]
		}
		s, name, _, err := resolveScript(path)
		if err != nil {
			return err
		}
		info := s.Info()
		out := cmd.OutOrStdout()

		if scriptInfoJSON {
			data, err := json.MarshalIndent(info, "", "  ")
			if err != nil {
				return fmt.Errorf("formatting script info as JSON: %w", err)
			}
			fmt.Fprintln(out, string(data))
			return nil
		}

		fmt.Fprintln(out, scriptHeaderStyle.Render("Script "+name))
		fmt.Fprintf(out, "\n  %-18s %s\n", "Greeting:", info.Greeting)
		fmt.Fprintf(out, "  %-18s %d\n", "Rules:", info.RuleCount)

		kinds := make([]string, 0, len(info.KindCounts))
		for kind := range info.KindCounts {
			kinds = append(kinds, kind)
		}
		sort.Strings(kinds)
		for _, kind := range kinds {
			fmt.Fprintf(out, "    %-16s %d\n", kind+":", info.KindCounts[kind])
		}

		if info.MemoryKeyword != "" {
			fmt.Fprintf(out, "  %-18s %s\n", "Memory keyword:", info.MemoryKeyword)
		}

		if len(info.Precedence) > 0 {
			fmt.Fprintln(out, "\n  Precedence:")
			for _, kp := range info.Precedence {
				fmt.Fprintf(out, "    %-16s %d\n", kp.Keyword, kp.Precedence)
			}
		}

		if len(info.Tags) > 0 {
			fmt.Fprintln(out, "\n  Tags:")
			tags := make([]string, 0, len(info.Tags))
			for tag := range info.Tags {
				tags = append(tags, tag)
			}
			sort.Strings(tags)
			for _, tag := range tags {
				members := append([]string(nil), info.Tags[tag]...)
				sort.Strings(members)
				fmt.Fprintf(out, "    %-16s %s\n", tag+":", strings.Join(members, " "))
			}
		}
		return nil
	},
}

func init() {
	scriptInfoCmd.Flags().BoolVar(&scriptInfoJSON, "json", false, "output as JSON")
	scriptCmd.AddCommand(scriptCheckCmd)
	scriptCmd.AddCommand(scriptInfoCmd)
	rootCmd.AddCommand(scriptCmd)
}
