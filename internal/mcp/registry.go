package mcp

import (
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/patrickmn/go-cache"
	"github.com/valter-silva-au/eliza/internal/eliza"
	"github.com/valter-silva-au/eliza/pkg/models"
)

// Conversation is one live MCP-driven conversation: the engine session plus
// the turns exchanged so far, kept for the transcript written at the end.
type Conversation struct {
	ID      string
	Script  string
	Started time.Time
	Session *eliza.Session
	Turns   []models.TranscriptTurn
}

// SessionRegistry tracks live conversations. Idle conversations expire so
// that abandoned MCP clients do not pin sessions forever.
type SessionRegistry struct {
	cache *cache.Cache
}

// NewSessionRegistry creates a registry whose conversations expire after the
// given idle TTL.
func NewSessionRegistry(ttl time.Duration) *SessionRegistry {
	return &SessionRegistry{cache: cache.New(ttl, 10*time.Minute)}
}

// Start registers a new conversation over the given script and returns it.
func (r *SessionRegistry) Start(script *eliza.Script, scriptName string, opts ...eliza.Option) (*Conversation, error) {
	session, err := eliza.NewSession(script, opts...)
	if err != nil {
		return nil, fmt.Errorf("starting conversation: %w", err)
	}
	conv := &Conversation{
		ID:      ulid.Make().String(),
		Script:  scriptName,
		Started: time.Now().UTC(),
		Session: session,
	}
	r.cache.Set(conv.ID, conv, cache.DefaultExpiration)
	return conv, nil
}

// Get returns the live conversation with the given ID and refreshes its TTL.
func (r *SessionRegistry) Get(id string) (*Conversation, bool) {
	x, found := r.cache.Get(id)
	if !found {
		return nil, false
	}
	conv := x.(*Conversation)
	r.cache.Set(id, conv, cache.DefaultExpiration)
	return conv, true
}

// End removes the conversation from the registry and returns it, or nil if
// it was not live.
func (r *SessionRegistry) End(id string) *Conversation {
	x, found := r.cache.Get(id)
	if !found {
		return nil
	}
	r.cache.Delete(id)
	return x.(*Conversation)
}

// Count returns the number of live conversations.
func (r *SessionRegistry) Count() int {
	return r.cache.ItemCount()
}
