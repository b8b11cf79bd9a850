package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/eliza/pkg/models"
)

var (
	transcriptListScript string
	transcriptListLimit  int
)

var transcriptCmd = &cobra.Command{
	Use:   "transcript",
	Short: "Browse saved conversation transcripts",
}

var transcriptListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved transcripts, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if TranscriptStore == nil {
			return fmt.Errorf("transcript store not initialized")
		}

		transcripts, err := TranscriptStore.ListTranscripts(models.TranscriptFilter{
			Script: transcriptListScript,
			Limit:  transcriptListLimit,
		})
		if err != nil {
			return fmt.Errorf("listing transcripts: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(transcripts) == 0 {
			fmt.Fprintln(out, "No transcripts saved.")
			return nil
		}

		fmt.Fprintf(out, "%-26s  %-16s  %-19s  %s\n", "ID", "SCRIPT", "STARTED", "TURNS")
		for _, t := range transcripts {
			fmt.Fprintf(out, "%-26s  %-16s  %-19s  %d\n",
				t.ID, t.Script, t.Started.Format("2006-01-02 15:04:05"), t.Turns)
		}
		return nil
	},
}

var transcriptShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show one transcript's conversation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if TranscriptStore == nil {
			return fmt.Errorf("transcript store not initialized")
		}

		transcript, err := TranscriptStore.GetTranscript(args[0])
		if err != nil {
			return err
		}
		turns, err := TranscriptStore.GetTranscriptTurns(args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Transcript %s (%s, %s)\n\n", transcript.ID, transcript.Script,
			transcript.Started.Format("2006-01-02 15:04:05"))
		fmt.Fprintf(out, "eliza> %s\n", transcript.Greeting)
		for _, turn := range turns {
			fmt.Fprintf(out, "you>   %s\n", turn.Input)
			fmt.Fprintf(out, "eliza> %s\n", turn.Response)
		}
		return nil
	},
}

func init() {
	transcriptListCmd.Flags().StringVar(&transcriptListScript, "script", "", "only transcripts of this script")
	transcriptListCmd.Flags().IntVar(&transcriptListLimit, "limit", 0, "show at most this many transcripts")
	transcriptCmd.AddCommand(transcriptListCmd)
	transcriptCmd.AddCommand(transcriptShowCmd)
	rootCmd.AddCommand(transcriptCmd)
}
