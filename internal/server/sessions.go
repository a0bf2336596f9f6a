package server

import (
	"sort"
	"sync"
	"time"

	"github.com/debatelab/arguegraph/internal/model"
	"github.com/debatelab/arguegraph/internal/pipeline"
	"github.com/debatelab/arguegraph/internal/store"
)

// session pairs one live coordinator with its metadata
type session struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`

	coord *pipeline.Coordinator
}

// sessionRegistry holds the live sessions served by this process. Sessions
// are in-memory; the optional database only receives snapshots.
type sessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]*session
	cfg      *model.Config
}

func newSessionRegistry(cfg *model.Config) *sessionRegistry {
	return &sessionRegistry{
		sessions: make(map[string]*session),
		cfg:      cfg,
	}
}

func (r *sessionRegistry) create(title string) *session {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := &session{
		ID:        store.NewID(),
		Title:     title,
		CreatedAt: time.Now().UTC(),
		coord:     pipeline.NewCoordinator(r.cfg, nil),
	}
	r.sessions[s.ID] = s
	return s
}

func (r *sessionRegistry) get(id string) (*session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

func (r *sessionRegistry) remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return false
	}
	delete(r.sessions, id)
	return true
}

func (r *sessionRegistry) list() []*session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
