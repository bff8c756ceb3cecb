// Package session holds per-client conversation context: the most
// recently resolved intent, used to anchor elliptical follow-ups.
// Context is session-scoped and never persisted beyond process lifetime.
package session

import (
	"sync"
	"time"

	"github.com/faiqhilman13/FinancialAssistant/internal/domain"
)

// Context is one client's conversation state. The dispatcher is the
// only component that mutates it.
type Context struct {
	ClientID   int
	LastIntent *domain.Intent
	UpdatedAt  time.Time
}

// Store keys contexts strictly by client id with no shared mutable
// state between clients. It is safe for concurrent use across clients;
// within one client's session requests arrive sequentially.
type Store struct {
	mu       sync.Mutex
	contexts map[int]*Context
}

func NewStore() *Store {
	return &Store{contexts: make(map[int]*Context)}
}

// Last returns a copy of the client's most recently committed intent,
// or nil when the client has no context yet.
func (s *Store) Last(clientID int) *domain.Intent {
	s.mu.Lock()
	defer s.mu.Unlock()
	ctx, ok := s.contexts[clientID]
	if !ok || ctx.LastIntent == nil {
		return nil
	}
	intent := *ctx.LastIntent
	return &intent
}

// Commit overwrites the client's context with the merged intent. Called
// only after a resolution fully succeeds; failed resolutions leave the
// previous context in place.
func (s *Store) Commit(clientID int, intent domain.Intent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contexts[clientID] = &Context{
		ClientID:   clientID,
		LastIntent: &intent,
		UpdatedAt:  time.Now(),
	}
}

// Clear drops the client's stored context.
func (s *Store) Clear(clientID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.contexts, clientID)
}
