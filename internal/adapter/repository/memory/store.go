// Package memory holds map-backed repositories used by tests and local runs
// without a database. All repositories created from one Store share state.
package memory

import (
	"sync"

	"github.com/google/uuid"

	"github.com/johnquangdev/advisor-calendar-sync/internal/domain/entities"
)

// Store is the shared backing state of the in-memory repositories
type Store struct {
	mu          sync.RWMutex
	meetings    map[uuid.UUID]*entities.Meeting
	clients     map[uuid.UUID]*entities.Client
	threads     map[uuid.UUID]*entities.AskThread
	connections map[uuid.UUID]*entities.CalendarConnection
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		meetings:    make(map[uuid.UUID]*entities.Meeting),
		clients:     make(map[uuid.UUID]*entities.Client),
		threads:     make(map[uuid.UUID]*entities.AskThread),
		connections: make(map[uuid.UUID]*entities.CalendarConnection),
	}
}

// PutMeeting seeds a meeting
func (s *Store) PutMeeting(m *entities.Meeting) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	s.meetings[m.ID] = copyMeeting(m)
}

// Meeting returns a copy of a stored meeting regardless of owner
func (s *Store) Meeting(id uuid.UUID) (*entities.Meeting, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.meetings[id]
	if !ok {
		return nil, false
	}
	return copyMeeting(m), true
}

// Meetings returns copies of every stored meeting
func (s *Store) Meetings() []*entities.Meeting {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*entities.Meeting, 0, len(s.meetings))
	for _, m := range s.meetings {
		out = append(out, copyMeeting(m))
	}
	return out
}

// PutClient seeds a client
func (s *Store) PutClient(c *entities.Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	cp := *c
	s.clients[c.ID] = &cp
}

// Client returns a copy of a stored client
func (s *Store) Client(id uuid.UUID) (*entities.Client, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.clients[id]
	if !ok {
		return nil, false
	}
	cp := *c
	return &cp, true
}

// PutThread seeds an ask thread
func (s *Store) PutThread(t *entities.AskThread) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	cp := *t
	s.threads[t.ID] = &cp
}

// Thread returns a copy of a stored thread
func (s *Store) Thread(id uuid.UUID) (*entities.AskThread, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.threads[id]
	if !ok {
		return nil, false
	}
	cp := *t
	return &cp, true
}

// PutConnection seeds a calendar connection
func (s *Store) PutConnection(c *entities.CalendarConnection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	cp := *c
	s.connections[c.ID] = &cp
}

// Connection returns a copy of a stored connection
func (s *Store) Connection(id uuid.UUID) (*entities.CalendarConnection, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.connections[id]
	if !ok {
		return nil, false
	}
	cp := *c
	return &cp, true
}

func copyMeeting(m *entities.Meeting) *entities.Meeting {
	cp := *m
	if m.AttendeesJSON != nil {
		cp.AttendeesJSON = append([]byte(nil), m.AttendeesJSON...)
	}
	return &cp
}
