// Package store defines the persistence interface for analysis sessions and
// their emitted graph snapshots.
package store

import (
	"context"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/debatelab/arguegraph/internal/model"
)

// Session is one persisted analysis session
type Session struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	State     string    `json:"state"`
	Speakers  []string  `json:"speakers"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SnapshotRecord is one persisted graph snapshot. Snapshots are append-only:
// every analysis pass that gets persisted adds a new record, so a session's
// history can be replayed.
type SnapshotRecord struct {
	ID        string              `json:"id"`
	SessionID string              `json:"session_id"`
	Snapshot  model.GraphSnapshot `json:"snapshot"`
	NodeCount int                 `json:"node_count"`
	EdgeCount int                 `json:"edge_count"`
	CreatedAt time.Time           `json:"created_at"`
}

// Store persists sessions and snapshots. Persistence is optional: when no
// database is configured the engine runs fully in memory.
type Store interface {
	CreateSession(ctx context.Context, session *Session) error
	UpdateSession(ctx context.Context, session *Session) error
	GetSession(ctx context.Context, id string) (*Session, error)
	ListSessions(ctx context.Context, limit int) ([]*Session, error)
	DeleteSession(ctx context.Context, id string) error

	SaveSnapshot(ctx context.Context, rec *SnapshotRecord) error
	LatestSnapshot(ctx context.Context, sessionID string) (*SnapshotRecord, error)

	Close() error
}

// NewID generates a URL-safe random identifier for sessions and snapshots
func NewID() string {
	return gonanoid.Must(12)
}
