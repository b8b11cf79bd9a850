package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/eliza/internal/observability"
)

var (
	logType    string
	logSince   string
	logSession string
	logJSON    bool
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Read the event log",
	Long: `Read the append-only JSONL event log: script loads, conversation starts,
turns, and ends. Filter by event type, session, or a time window.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if EventLog == nil {
			return fmt.Errorf("event log not initialized")
		}

		filter := observability.EventFilter{
			Type:    logType,
			Session: logSession,
		}
		if logSince != "" {
			since, err := parseSinceDuration(logSince)
			if err != nil {
				return fmt.Errorf("parsing --since: %w", err)
			}
			filter.Since = &since
		}

		events, err := EventLog.Read(filter)
		if err != nil {
			return fmt.Errorf("reading event log: %w", err)
		}

		out := cmd.OutOrStdout()
		if logJSON {
			data, err := json.MarshalIndent(events, "", "  ")
			if err != nil {
				return fmt.Errorf("formatting events as JSON: %w", err)
			}
			fmt.Fprintln(out, string(data))
			return nil
		}

		if len(events) == 0 {
			fmt.Fprintln(out, "No events.")
			return nil
		}
		for _, e := range events {
			line := fmt.Sprintf("%s  %-16s", e.Time.Format(time.RFC3339), e.Type)
			if e.Session != "" {
				line += "  " + e.Session
			}
			if e.Message != "" {
				line += "  " + e.Message
			}
			fmt.Fprintln(out, line)
		}
		return nil
	},
}

func init() {
	logCmd.Flags().StringVar(&logType, "type", "", "only events of this type (e.g. session.turn)")
	logCmd.Flags().StringVar(&logSince, "since", "", "only events in this window (e.g. 24h, 7d)")
	logCmd.Flags().StringVar(&logSession, "session", "", "only events of this session")
	logCmd.Flags().BoolVar(&logJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(logCmd)
}

// parseSinceDuration turns a human-friendly window like "7d" or "24h" into
// the corresponding time in the past.
func parseSinceDuration(s string) (time.Time, error) {
	now := time.Now().UTC()
	if strings.HasSuffix(s, "d") {
		days, err := strconv.Atoi(strings.TrimSuffix(s, "d"))
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid day count %q", s)
		}
		return now.AddDate(0, 0, -days), nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return time.Time{}, err
	}
	return now.Add(-d), nil
}
