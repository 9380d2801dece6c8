package service

import (
	"sync"

	"dockload/internal/features/loading/domain"
	"dockload/internal/features/loading/input"
	"dockload/internal/features/loading/ports"
)

// entry is one live session. mu serializes HTTP requests, auto-commit timers
// and mirror failure callbacks on the session.
type entry struct {
	mu           sync.Mutex
	session      *domain.Session
	input        *input.Disambiguator
	lastFeedback *ports.Feedback
	closed       bool
}

// Registry keeps live sessions by id.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]*entry),
	}
}

func (r *Registry) add(e *entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[e.session.ID] = e
}

// rekey moves e from previousID to its session's current id.
func (r *Registry) rekey(e *entry, previousID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, previousID)
	r.entries[e.session.ID] = e
}

func (r *Registry) get(id string) (*entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return e, nil
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Close tears down every session: pending auto-commits are cancelled and
// commit handlers detached.
func (r *Registry) Close() {
	r.mu.Lock()
	entries := r.entries
	r.entries = make(map[string]*entry)
	r.mu.Unlock()

	for _, e := range entries {
		e.mu.Lock()
		e.closed = true
		e.input.Close()
		e.mu.Unlock()
	}
}
