package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/valter-silva-au/eliza/internal/eliza"
	"github.com/valter-silva-au/eliza/internal/integration"
	"github.com/valter-silva-au/eliza/internal/observability"
	"github.com/valter-silva-au/eliza/pkg/models"
	"golang.org/x/sync/errgroup"
)

var (
	replScriptPath string
	replWatch      bool
	replTranscript bool
)

// REPL styles.
var (
	youStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("69"))
	elizaStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Bold(true)
	infoStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true)
	traceStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	replHelp   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Hold an interactive conversation",
	Long: `Hold an interactive conversation in the terminal.

Type :trace to toggle per-turn keyword traces, :quit (or Ctrl+C) to leave.
With --watch the script file is re-parsed whenever it changes on disk and
the conversation restarts over the new script. With --transcript the
conversation is saved to the transcript store on exit.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, name, path, err := resolveScript(replScriptPath)
		if err != nil {
			return err
		}
		if replWatch && path == "" {
			return fmt.Errorf("--watch needs a script file; pass --script or configure script.path")
		}

		var opts []eliza.Option
		if Logger != nil {
			opts = append(opts, eliza.WithLogger(Logger))
		}
		session, err := eliza.NewSession(s, opts...)
		if err != nil {
			return fmt.Errorf("starting conversation: %w", err)
		}

		prompt := "you> "
		if Cfg != nil && Cfg.Prompt != "" {
			prompt = Cfg.Prompt
		}

		started := time.Now().UTC()
		p := tea.NewProgram(newReplModel(session, name, prompt, opts))

		g, ctx := errgroup.WithContext(context.Background())

		if replWatch {
			watcher, err := integration.NewScriptWatcher(path, func(ns *eliza.Script) {
				if EventLog != nil {
					_ = EventLog.Write(observability.Event{
						Type:    observability.EventScriptReloaded,
						Message: name,
					})
				}
				p.Send(scriptReloadedMsg{script: ns})
			}, Logger)
			if err != nil {
				return fmt.Errorf("watching %s: %w", path, err)
			}
			if err := watcher.Start(ctx); err != nil {
				return fmt.Errorf("watching %s: %w", path, err)
			}
			defer watcher.Stop()
		}

		var final tea.Model
		g.Go(func() error {
			m, err := p.Run()
			final = m
			return err
		})
		if err := g.Wait(); err != nil {
			return fmt.Errorf("running repl: %w", err)
		}

		model, ok := final.(replModel)
		if !ok || !replTranscript || len(model.turns) == 0 {
			return nil
		}
		if TranscriptStore == nil {
			return fmt.Errorf("transcript store not initialized")
		}
		transcript := models.Transcript{
			ID:       TranscriptStore.GenerateID(),
			Script:   name,
			Started:  started,
			Ended:    time.Now().UTC(),
			Turns:    len(model.turns),
			Greeting: session.Greeting(),
		}
		id, err := TranscriptStore.AddTranscript(transcript, model.turns)
		if err != nil {
			return fmt.Errorf("saving transcript: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved transcript %s\n", id)
		return nil
	},
}

func init() {
	replCmd.Flags().StringVar(&replScriptPath, "script", "", "script file to converse with (default: the configured or embedded script)")
	replCmd.Flags().BoolVar(&replWatch, "watch", false, "reload the script file when it changes")
	replCmd.Flags().BoolVar(&replTranscript, "transcript", false, "save the conversation on exit")
	rootCmd.AddCommand(replCmd)
}

// scriptReloadedMsg carries a freshly parsed script from the watcher into
// the running program.
type scriptReloadedMsg struct {
	script *eliza.Script
}

type replLine struct {
	speaker string // "you", "eliza", "info", "trace"
	text    string
}

type replModel struct {
	session     *eliza.Session
	sessionOpts []eliza.Option
	scriptName  string

	input     textinput.Model
	lines     []replLine
	turns     []models.TranscriptTurn
	showTrace bool
	err       error
}

func newReplModel(session *eliza.Session, scriptName, prompt string, opts []eliza.Option) replModel {
	ti := textinput.New()
	ti.Prompt = prompt
	ti.Placeholder = "say something (:trace toggles traces, :quit leaves)"
	ti.CharLimit = 512
	ti.Width = 72
	ti.Focus()

	return replModel{
		session:     session,
		sessionOpts: opts,
		scriptName:  scriptName,
		input:       ti,
		lines:       []replLine{{speaker: "eliza", text: session.Greeting()}},
	}
}

func (m replModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m replModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "enter":
			return m.submit()
		}

	case scriptReloadedMsg:
		session, err := eliza.NewSession(msg.script, m.sessionOpts...)
		if err != nil {
			m.lines = append(m.lines, replLine{speaker: "info",
				text: fmt.Sprintf("script reload rejected: %v", err)})
			return m, nil
		}
		m.session = session
		m.lines = append(m.lines, replLine{speaker: "info",
			text: "script reloaded; the conversation starts over"})
		m.lines = append(m.lines, replLine{speaker: "eliza", text: session.Greeting()})
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m replModel) submit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	m.input.Reset()
	if text == "" {
		return m, nil
	}

	switch text {
	case ":quit", ":q":
		return m, tea.Quit
	case ":trace":
		m.showTrace = !m.showTrace
		state := "off"
		if m.showTrace {
			state = "on"
		}
		m.lines = append(m.lines, replLine{speaker: "info", text: "trace " + state})
		return m, nil
	}

	response := m.session.Respond(text)
	m.lines = append(m.lines, replLine{speaker: "you", text: text})
	if m.showTrace {
		for _, line := range traceLines(m.session.LastTrace()) {
			m.lines = append(m.lines, replLine{speaker: "trace", text: line})
		}
	}
	m.lines = append(m.lines, replLine{speaker: "eliza", text: response})
	m.turns = append(m.turns, models.TranscriptTurn{
		Turn:     m.session.Turn(),
		Input:    text,
		Response: response,
	})
	return m, nil
}

func (m replModel) View() string {
	var b strings.Builder
	for _, line := range m.lines {
		switch line.speaker {
		case "you":
			b.WriteString(youStyle.Render("you>   " + line.text))
		case "eliza":
			b.WriteString(elizaStyle.Render("eliza> " + line.text))
		case "trace":
			b.WriteString(traceStyle.Render("       · " + line.text))
		default:
			b.WriteString(infoStyle.Render("-- " + line.text + " --"))
		}
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	b.WriteString(m.input.View())
	b.WriteByte('\n')
	b.WriteString(replHelp.Render(":trace toggles traces · :quit or Ctrl+C leaves"))
	b.WriteByte('\n')
	return b.String()
}

// traceLines renders the derivation trace of the last turn as short,
// display-ready lines.
func traceLines(trace *eliza.Trace) []string {
	if trace == nil {
		return nil
	}
	lines := []string{
		fmt.Sprintf("limit %d, words: %s", trace.Limit, strings.Join(trace.Words, " ")),
	}
	if len(trace.Keystack) > 0 {
		lines = append(lines, "keystack: "+strings.Join(trace.Keystack, " "))
	}
	for _, step := range trace.Steps {
		lines = append(lines, step.Keyword+" -> "+step.Outcome)
	}
	if trace.MemoryStored != "" {
		lines = append(lines, "memory stored: "+trace.MemoryStored)
	}
	if trace.MemoryRecalled {
		lines = append(lines, "memory recalled")
	}
	return lines
}
