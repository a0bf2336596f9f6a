package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/debatelab/arguegraph/internal/model"
	"github.com/debatelab/arguegraph/internal/store"
)

// ErrNotFound is returned when a session or snapshot does not exist
var ErrNotFound = errors.New("not found")

// sessionColumns is the column list used for SELECT statements on the sessions table.
const sessionColumns = `id, title, state, speakers, created_at, updated_at`

// executor is the interface satisfied by both *sql.DB and *sql.Tx.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func queryCreateSession(ctx context.Context, db executor, s *store.Session) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO sessions (id, title, state, speakers, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		s.ID,
		s.Title,
		s.State,
		pq.Array(s.Speakers),
		s.CreatedAt,
		s.UpdatedAt,
	)
	return err
}

func queryUpdateSession(ctx context.Context, db executor, s *store.Session) error {
	res, err := db.ExecContext(ctx, `
		UPDATE sessions SET title = $2, state = $3, speakers = $4, updated_at = $5
		WHERE id = $1`,
		s.ID,
		s.Title,
		s.State,
		pq.Array(s.Speakers),
		s.UpdatedAt,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("session %s: %w", s.ID, ErrNotFound)
	}
	return nil
}

func queryGetSession(ctx context.Context, db executor, id string) (*store.Session, error) {
	row := db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = $1`, id)
	return scanSession(row)
}

func queryListSessions(ctx context.Context, db executor, limit int) ([]*store.Session, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.QueryContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*store.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// queryDeleteSession removes a session; its snapshots go with it via the
// ON DELETE CASCADE constraint.
func queryDeleteSession(ctx context.Context, db executor, id string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	return nil
}

func querySaveSnapshot(ctx context.Context, db executor, rec *store.SnapshotRecord) error {
	payload, err := json.Marshal(rec.Snapshot)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO graph_snapshots (id, session_id, snapshot, node_count, edge_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		rec.ID,
		rec.SessionID,
		payload,
		rec.NodeCount,
		rec.EdgeCount,
		rec.CreatedAt,
	)
	return err
}

func queryLatestSnapshot(ctx context.Context, db executor, sessionID string) (*store.SnapshotRecord, error) {
	row := db.QueryRowContext(ctx, `
		SELECT id, session_id, snapshot, node_count, edge_count, created_at
		FROM graph_snapshots WHERE session_id = $1
		ORDER BY created_at DESC LIMIT 1`, sessionID)

	var rec store.SnapshotRecord
	var payload []byte
	err := row.Scan(&rec.ID, &rec.SessionID, &payload, &rec.NodeCount, &rec.EdgeCount, &rec.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("snapshot for session %s: %w", sessionID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	var snap model.GraphSnapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot %s: %w", rec.ID, err)
	}
	rec.Snapshot = snap
	return &rec, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*store.Session, error) {
	var s store.Session
	err := row.Scan(&s.ID, &s.Title, &s.State, pq.Array(&s.Speakers), &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}
