package net

import (
	"sort"

	"github.com/creaturesim/server/internal/net/packet"
)

// SessionStore tracks live sessions by ID. Game loop only.
type SessionStore struct {
	sessions map[uint64]*Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[uint64]*Session)}
}

func (st *SessionStore) Add(s *Session) { st.sessions[s.ID] = s }

func (st *SessionStore) Remove(id uint64) { delete(st.sessions, id) }

// Get returns the session with the given ID, or nil.
func (st *SessionStore) Get(id uint64) *Session { return st.sessions[id] }

func (st *SessionStore) Len() int { return len(st.sessions) }

// Approved counts sessions that passed approval and are still open.
func (st *SessionStore) Approved() int {
	n := 0
	for _, s := range st.sessions {
		if s.State() == packet.StateApproved && !s.IsClosed() {
			n++
		}
	}
	return n
}

// ForEach calls fn for every session in ID order.
func (st *SessionStore) ForEach(fn func(*Session)) {
	for _, id := range st.IDs() {
		fn(st.sessions[id])
	}
}

// IDs returns the session IDs, sorted.
func (st *SessionStore) IDs() []uint64 {
	ids := make([]uint64, 0, len(st.sessions))
	for id := range st.sessions {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
