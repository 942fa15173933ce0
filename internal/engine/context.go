package engine

import (
	"context"
	"sync"
	"time"

	"github.com/meetwise/meetwise/internal/classify"
	"github.com/meetwise/meetwise/internal/schedule"
)

// State names the router's position in a conversation.
type State string

const (
	StateIdle                  State = "idle"
	StateAwaitingClarification State = "awaiting_clarification"
	StateAwaitingConfirmation  State = "awaiting_confirmation"
)

// PendingAction is a request the router could not dispatch yet: either
// parameter-incomplete (awaiting clarification) or destructive and awaiting
// an explicit confirmation.
type PendingAction struct {
	Intent classify.Intent
	Params classify.Params

	// Missing names the parameters still needed, in the order the router
	// will ask for them.
	Missing []string

	// Rounds counts clarification questions already asked for this action.
	Rounds int

	// Target is set once a destructive action has been resolved to a
	// concrete event, so confirmation dispatches against exactly that event.
	Target *schedule.CalendarEvent
}

// ConversationContext is the per-session state the router reads and writes
// on every turn. It is created on a session's first message; an absent or
// expired context is replaced by a fresh one rather than treated as an
// error.
type ConversationContext struct {
	SessionID string
	State     State
	History   []classify.Turn
	Pending   *PendingAction

	// LastEvents and LastSlots retain the most recent result set so a
	// follow-up like "delete the third one" can be resolved by ordinal.
	LastEvents []schedule.CalendarEvent
	LastSlots  []schedule.CandidateSlot

	UpdatedAt time.Time
}

// NewConversationContext returns a fresh context in the Idle state.
func NewConversationContext(sessionID string) *ConversationContext {
	return &ConversationContext{
		SessionID: sessionID,
		State:     StateIdle,
	}
}

// reset clears any pending action and returns the context to Idle. Result
// sets are kept so ordinal references survive an aborted action.
func (c *ConversationContext) reset() {
	c.State = StateIdle
	c.Pending = nil
}

func (c *ConversationContext) appendTurn(role, content string) {
	c.History = append(c.History, classify.Turn{Role: role, Content: content})
}

// Store is the persistence contract for conversation contexts. The engine
// does not implement durable storage; hosts supply an implementation so
// sessions can be persisted across restarts or shared between instances.
// Load returns (nil, nil) for an unknown session id.
type Store interface {
	Load(ctx context.Context, sessionID string) (*ConversationContext, error)
	Save(ctx context.Context, cc *ConversationContext) error
	Delete(ctx context.Context, sessionID string) error
}

// MemoryStore is the in-process Store used by the MCP server and the REPL.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*ConversationContext
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*ConversationContext)}
}

// Load implements Store.
func (s *MemoryStore) Load(_ context.Context, sessionID string) (*ConversationContext, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessions[sessionID], nil
}

// Save implements Store.
func (s *MemoryStore) Save(_ context.Context, cc *ConversationContext) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[cc.SessionID] = cc
	return nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

// Evict removes every context idle for longer than ttl and returns how many
// were removed. Called periodically by the session manager.
func (s *MemoryStore) Evict(ttl time.Duration, now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	evicted := 0
	for id, cc := range s.sessions {
		if now.Sub(cc.UpdatedAt) > ttl {
			delete(s.sessions, id)
			evicted++
		}
	}
	return evicted
}

// Len returns the number of live contexts.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
