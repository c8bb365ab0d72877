package session

import (
	"context"
	"sync"

	"github.com/angelmondragon/storefront-backend/internal/cart"
)

// MemoryStore is an in-process Store for tests. Sessions round-trip through
// the same document form the Mongo store uses, so a fetched session never
// aliases the stored one.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*Session)}
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneSession(session)
}

func (s *MemoryStore) Save(_ context.Context, session *Session) error {
	copied, err := cloneSession(session)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = copied
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// Len reports the number of stored sessions.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func cloneSession(session *Session) (*Session, error) {
	copied := *session
	if session.Cart != nil {
		restored, err := cart.FromDoc(session.Cart.ToDoc())
		if err != nil {
			return nil, err
		}
		copied.Cart = restored
	}
	if session.Flash != nil {
		flash := *session.Flash
		if session.Flash.Fields != nil {
			flash.Fields = make(map[string]string, len(session.Flash.Fields))
			for k, v := range session.Flash.Fields {
				flash.Fields[k] = v
			}
		}
		copied.Flash = &flash
	}
	return &copied, nil
}
