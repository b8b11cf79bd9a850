package mcp

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/valter-silva-au/eliza/internal/script"
	"github.com/valter-silva-au/eliza/internal/storage"
	"github.com/valter-silva-au/eliza/pkg/models"
)

const testScript = `(HOW DO YOU DO)
(HELLO ((0) (HI THERE) (GOOD DAY)))
(MY ((0 MY 0) (YOUR 2 INTERESTS ME)))
(NONE ((0) (GO ON)))
(MEMORY MY
	(0 MY 0 = EARLIER YOU MENTIONED YOUR 3)
	(0 MY 0 = TELL ME MORE ABOUT YOUR 3)
	(0 MY 0 = DOES YOUR 3 WORRY YOU)
	(0 MY 0 = WHAT ELSE COMES TO MIND ABOUT YOUR 3))
()`

func testServer(t *testing.T, transcripts storage.TranscriptStoreManager) *Server {
	t.Helper()
	s, err := script.LoadString(testScript)
	if err != nil {
		t.Fatalf("parsing test script: %v", err)
	}
	return NewServer(s, "test", transcripts, nil, "test")
}

// callTool connects an in-memory client to the server and invokes one tool.
func callTool(t *testing.T, srv *Server, toolName string, args map[string]any) *gomcp.CallToolResult {
	t.Helper()

	ctx := context.Background()
	client := gomcp.NewClient(&gomcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)

	t1, t2 := gomcp.NewInMemoryTransports()

	go func() {
		_ = srv.MCPServer().Run(ctx, t1)
	}()

	session, err := client.Connect(ctx, t2, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	defer session.Close()

	result, err := session.CallTool(ctx, &gomcp.CallToolParams{
		Name:      toolName,
		Arguments: args,
	})
	if err != nil {
		t.Fatalf("call tool %s: %v", toolName, err)
	}

	return result
}

func decodeResult(t *testing.T, result *gomcp.CallToolResult, out any) {
	t.Helper()
	if result.StructuredContent != nil {
		data, _ := json.Marshal(result.StructuredContent)
		if err := json.Unmarshal(data, out); err != nil {
			t.Fatalf("unmarshalling structured content: %v", err)
		}
		return
	}
	text := extractText(result)
	if err := json.Unmarshal([]byte(text), out); err != nil {
		t.Fatalf("unmarshalling tool output: %v (text was: %s)", err, text)
	}
}

func extractText(result *gomcp.CallToolResult) string {
	for _, c := range result.Content {
		if tc, ok := c.(*gomcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

// --- Tests ---

func TestStartConversation(t *testing.T) {
	srv := testServer(t, nil)

	result := callTool(t, srv, "start_conversation", map[string]any{})
	if result.IsError {
		t.Fatalf("expected success, got error: %s", extractText(result))
	}

	var out startConversationOutput
	decodeResult(t, result, &out)

	if out.SessionID == "" {
		t.Error("expected a session ID")
	}
	if out.Greeting != "HOW DO YOU DO" {
		t.Errorf("greeting = %q", out.Greeting)
	}
	if out.Script != "test" {
		t.Errorf("script = %q", out.Script)
	}
	if srv.registry.Count() != 1 {
		t.Errorf("registry holds %d conversations, want 1", srv.registry.Count())
	}
}

func TestRespond(t *testing.T) {
	srv := testServer(t, nil)

	var started startConversationOutput
	decodeResult(t, callTool(t, srv, "start_conversation", map[string]any{}), &started)

	result := callTool(t, srv, "respond", map[string]any{
		"session_id": started.SessionID,
		"input":      "Hello doctor",
	})
	if result.IsError {
		t.Fatalf("expected success, got error: %s", extractText(result))
	}

	var out respondOutput
	decodeResult(t, result, &out)

	if out.Response != "HI THERE" {
		t.Errorf("response = %q, want %q", out.Response, "HI THERE")
	}
	if out.Turn != 1 {
		t.Errorf("turn = %d, want 1", out.Turn)
	}
	if len(out.Keystack) != 1 || out.Keystack[0] != "HELLO" {
		t.Errorf("keystack = %v", out.Keystack)
	}
}

func TestRespondUnknownSession(t *testing.T) {
	srv := testServer(t, nil)

	result := callTool(t, srv, "respond", map[string]any{
		"session_id": "01ZZZZZZZZZZZZZZZZZZZZZZZZ",
		"input":      "hello",
	})
	if !result.IsError {
		t.Fatal("expected error result for unknown session")
	}
	if extractText(result) == "" {
		t.Fatal("expected error message in result content")
	}
}

func TestEndConversationSavesTranscript(t *testing.T) {
	store := storage.NewTranscriptStoreManager(t.TempDir())
	srv := testServer(t, store)

	var started startConversationOutput
	decodeResult(t, callTool(t, srv, "start_conversation", map[string]any{}), &started)

	callTool(t, srv, "respond", map[string]any{
		"session_id": started.SessionID,
		"input":      "Hello doctor",
	})
	callTool(t, srv, "respond", map[string]any{
		"session_id": started.SessionID,
		"input":      "My head hurts",
	})

	result := callTool(t, srv, "end_conversation", map[string]any{
		"session_id": started.SessionID,
	})
	if result.IsError {
		t.Fatalf("expected success, got error: %s", extractText(result))
	}

	var out endConversationOutput
	decodeResult(t, result, &out)

	if out.Turns != 2 {
		t.Errorf("turns = %d, want 2", out.Turns)
	}
	if out.TranscriptID == "" {
		t.Fatal("expected a transcript ID")
	}

	turns, err := store.GetTranscriptTurns(out.TranscriptID)
	if err != nil {
		t.Fatalf("reading saved transcript: %v", err)
	}
	if len(turns) != 2 || turns[0].Input != "Hello doctor" {
		t.Errorf("saved turns = %+v", turns)
	}
	if srv.registry.Count() != 0 {
		t.Errorf("registry holds %d conversations after end, want 0", srv.registry.Count())
	}

	// A second end for the same session must report it gone.
	again := callTool(t, srv, "end_conversation", map[string]any{
		"session_id": started.SessionID,
	})
	if !again.IsError {
		t.Error("expected error ending an already-ended conversation")
	}
}

func TestScriptInfo(t *testing.T) {
	srv := testServer(t, nil)

	result := callTool(t, srv, "script_info", map[string]any{})
	if result.IsError {
		t.Fatalf("expected success, got error: %s", extractText(result))
	}

	var out models.ScriptInfo
	decodeResult(t, result, &out)

	if out.Greeting != "HOW DO YOU DO" {
		t.Errorf("greeting = %q", out.Greeting)
	}
	if !out.HasNoneRule || !out.HasMemoryRule {
		t.Errorf("expected NONE and MEMORY rules: %+v", out)
	}
	if out.MemoryKeyword != "MY" {
		t.Errorf("memory keyword = %q", out.MemoryKeyword)
	}
}

func TestSetScriptAffectsNewConversationsOnly(t *testing.T) {
	srv := testServer(t, nil)

	var first startConversationOutput
	decodeResult(t, callTool(t, srv, "start_conversation", map[string]any{}), &first)

	replacement, err := script.LoadString(`(WELCOME BACK)
(NONE ((0) (GO ON)))
(MEMORY MY
	(0 MY 0 = A YOUR 3)
	(0 MY 0 = B YOUR 3)
	(0 MY 0 = C YOUR 3)
	(0 MY 0 = D YOUR 3))
()`)
	if err != nil {
		t.Fatal(err)
	}
	srv.SetScript(replacement, "replacement")

	var second startConversationOutput
	decodeResult(t, callTool(t, srv, "start_conversation", map[string]any{}), &second)
	if second.Greeting != "WELCOME BACK" {
		t.Errorf("new conversation greeting = %q", second.Greeting)
	}
	if second.Script != "replacement" {
		t.Errorf("new conversation script = %q", second.Script)
	}

	// The first conversation keeps its original script.
	result := callTool(t, srv, "respond", map[string]any{
		"session_id": first.SessionID,
		"input":      "Hello there",
	})
	var out respondOutput
	decodeResult(t, result, &out)
	if out.Response != "HI THERE" {
		t.Errorf("old conversation response = %q", out.Response)
	}
}

func TestRegistryExpiry(t *testing.T) {
	r := NewSessionRegistry(20 * time.Millisecond)

	s, err := script.LoadString(testScript)
	if err != nil {
		t.Fatal(err)
	}
	conv, err := r.Start(s, "test")
	if err != nil {
		t.Fatal(err)
	}
	if _, found := r.Get(conv.ID); !found {
		t.Fatal("conversation should be live immediately after Start")
	}

	time.Sleep(50 * time.Millisecond)
	if _, found := r.Get(conv.ID); found {
		t.Error("conversation should have expired")
	}
}
