// Package mcp provides an MCP (Model Context Protocol) server that exposes
// eliza conversations as MCP tools for AI assistants and editors.
package mcp

import (
	"context"
	"fmt"
	"sync"
	"time"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/valter-silva-au/eliza/internal/eliza"
	"github.com/valter-silva-au/eliza/internal/observability"
	"github.com/valter-silva-au/eliza/internal/storage"
	"github.com/valter-silva-au/eliza/pkg/models"
)

// sessionTTL is how long an idle MCP conversation stays live.
const sessionTTL = time.Hour

// Server wraps the conversation engine and exposes it as MCP tools.
type Server struct {
	server   *gomcp.Server
	registry *SessionRegistry

	mu         sync.RWMutex
	script     *eliza.Script
	scriptName string

	transcripts storage.TranscriptStoreManager
	eventLog    observability.EventLog
}

// NewServer creates an MCP server over the given script. transcripts and
// eventLog may be nil to disable transcript saving and event logging.
func NewServer(script *eliza.Script, scriptName string, transcripts storage.TranscriptStoreManager, eventLog observability.EventLog, version string) *Server {
	if version == "" {
		version = "dev"
	}

	s := &Server{
		registry:    NewSessionRegistry(sessionTTL),
		script:      script,
		scriptName:  scriptName,
		transcripts: transcripts,
		eventLog:    eventLog,
	}

	s.server = gomcp.NewServer(
		&gomcp.Implementation{Name: "eliza", Version: version},
		nil,
	)

	s.registerTools()

	return s
}

// Run starts the MCP server on stdio, blocking until the client disconnects
// or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &gomcp.StdioTransport{})
}

// MCPServer returns the underlying mcp.Server for testing purposes.
func (s *Server) MCPServer() *gomcp.Server {
	return s.server
}

// SetScript swaps the script used by conversations started from now on.
// Live conversations keep the script they started with.
func (s *Server) SetScript(script *eliza.Script, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.script = script
	s.scriptName = name
}

func (s *Server) currentScript() (*eliza.Script, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.script, s.scriptName
}

// --- Tool input/output types ---

type startConversationInput struct{}

type startConversationOutput struct {
	SessionID string `json:"session_id"`
	Script    string `json:"script"`
	Greeting  string `json:"greeting"`
}

type respondInput struct {
	SessionID string `json:"session_id" jsonschema:"required,the conversation ID returned by start_conversation"`
	Input     string `json:"input" jsonschema:"required,the user's next line of the conversation"`
}

type respondOutput struct {
	Response     string   `json:"response"`
	Turn         int      `json:"turn"`
	Keystack     []string `json:"keystack,omitempty"`
	MemoryStored bool     `json:"memory_stored,omitempty"`
}

type endConversationInput struct {
	SessionID string `json:"session_id" jsonschema:"required,the conversation ID returned by start_conversation"`
}

type endConversationOutput struct {
	Turns        int    `json:"turns"`
	TranscriptID string `json:"transcript_id,omitempty"`
}

type scriptInfoInput struct{}

// --- Tool registration ---

func (s *Server) registerTools() {
	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "start_conversation",
		Description: "Start a new conversation. Returns a session ID and the script's greeting line.",
	}, s.handleStartConversation)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "respond",
		Description: "Send the user's next line to a conversation and get the reply. Sessions expire after an hour of inactivity.",
	}, s.handleRespond)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "end_conversation",
		Description: "End a conversation. Saves its transcript when a transcript store is configured.",
	}, s.handleEndConversation)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "script_info",
		Description: "Summarize the loaded script: rule counts by kind, the precedence table, tags, and the memory keyword.",
	}, s.handleScriptInfo)
}

// --- Tool handlers ---

func (s *Server) handleStartConversation(_ context.Context, _ *gomcp.CallToolRequest, _ startConversationInput) (*gomcp.CallToolResult, startConversationOutput, error) {
	script, name := s.currentScript()
	conv, err := s.registry.Start(script, name)
	if err != nil {
		return errorResult(fmt.Sprintf("starting conversation: %s", err)), startConversationOutput{}, nil
	}

	s.logEvent(observability.Event{
		Type:    observability.EventSessionStarted,
		Session: conv.ID,
		Message: name,
	})

	out := startConversationOutput{
		SessionID: conv.ID,
		Script:    name,
		Greeting:  conv.Session.Greeting(),
	}
	return nil, out, nil
}

func (s *Server) handleRespond(_ context.Context, _ *gomcp.CallToolRequest, input respondInput) (*gomcp.CallToolResult, respondOutput, error) {
	if input.SessionID == "" {
		return errorResult("session_id is required"), respondOutput{}, nil
	}

	conv, found := s.registry.Get(input.SessionID)
	if !found {
		return errorResult(fmt.Sprintf("no live conversation %s (it may have expired)", input.SessionID)), respondOutput{}, nil
	}

	response := conv.Session.Respond(input.Input)
	conv.Turns = append(conv.Turns, models.TranscriptTurn{
		Turn:     conv.Session.Turn(),
		Input:    input.Input,
		Response: response,
	})

	out := respondOutput{
		Response: response,
		Turn:     conv.Session.Turn(),
	}
	if trace := conv.Session.LastTrace(); trace != nil {
		out.Keystack = trace.Keystack
		out.MemoryStored = trace.MemoryStored != ""
	}

	s.logEvent(observability.Event{
		Type:    observability.EventSessionTurn,
		Session: conv.ID,
		Data:    map[string]any{"turn": out.Turn},
	})

	return nil, out, nil
}

func (s *Server) handleEndConversation(_ context.Context, _ *gomcp.CallToolRequest, input endConversationInput) (*gomcp.CallToolResult, endConversationOutput, error) {
	if input.SessionID == "" {
		return errorResult("session_id is required"), endConversationOutput{}, nil
	}

	conv := s.registry.End(input.SessionID)
	if conv == nil {
		return errorResult(fmt.Sprintf("no live conversation %s (it may have expired)", input.SessionID)), endConversationOutput{}, nil
	}

	out := endConversationOutput{Turns: len(conv.Turns)}

	if s.transcripts != nil && len(conv.Turns) > 0 {
		transcript := models.Transcript{
			ID:       s.transcripts.GenerateID(),
			Script:   conv.Script,
			Started:  conv.Started,
			Ended:    time.Now().UTC(),
			Turns:    len(conv.Turns),
			Greeting: conv.Session.Greeting(),
		}
		id, err := s.transcripts.AddTranscript(transcript, conv.Turns)
		if err != nil {
			return errorResult(fmt.Sprintf("saving transcript: %s", err)), endConversationOutput{}, nil
		}
		out.TranscriptID = id
	}

	s.logEvent(observability.Event{
		Type:    observability.EventSessionEnded,
		Session: conv.ID,
		Data:    map[string]any{"turns": out.Turns},
	})

	return nil, out, nil
}

func (s *Server) handleScriptInfo(_ context.Context, _ *gomcp.CallToolRequest, _ scriptInfoInput) (*gomcp.CallToolResult, models.ScriptInfo, error) {
	script, _ := s.currentScript()
	return nil, script.Info(), nil
}

// --- Helpers ---

func (s *Server) logEvent(e observability.Event) {
	if s.eventLog == nil {
		return
	}
	_ = s.eventLog.Write(e) // Non-fatal: a failed event write never breaks a turn.
}

func errorResult(msg string) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: msg}},
		IsError: true,
	}
}
