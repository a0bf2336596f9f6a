package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/debatelab/arguegraph/internal/model"
	"github.com/debatelab/arguegraph/internal/store"
)

func newTestServer(t *testing.T, st store.Store) *Server {
	t.Helper()
	return New(model.DefaultConfig(), st, nil)
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func createSession(t *testing.T, s *Server, title string) string {
	t.Helper()
	rec := doJSON(t, s, http.MethodPost, "/api/sessions", map[string]string{"title": title})
	if rec.Code != http.StatusOK {
		t.Fatalf("create session status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Session struct {
			ID string `json:"id"`
		} `json:"session"`
	}
	decode(t, rec, &resp)
	if resp.Session.ID == "" {
		t.Fatal("create session returned no id")
	}
	return resp.Session.ID
}

func sampleBatch() map[string]any {
	return map[string]any{
		"claims": []map[string]any{
			{"id": "c1", "speaker": "alice", "text": "raising the minimum wage reduces poverty", "claim_type": "premise", "timestamp_start": 1.0, "is_factual": true},
			{"id": "c2", "speaker": "bob", "text": "wage mandates destroy small businesses", "claim_type": "rebuttal", "timestamp_start": 2.0},
		},
		"relations": []map[string]any{
			{"source_id": "c2", "target_id": "c1", "relation_type": "attack", "confidence": 0.9},
		},
	}
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, nil)
	rec := doJSON(t, s, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
	if rec.Body.String() != "OK" {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestCreateAndListSessions(t *testing.T) {
	s := newTestServer(t, nil)

	id1 := createSession(t, s, "first debate")
	id2 := createSession(t, s, "second debate")
	if id1 == id2 {
		t.Fatalf("duplicate session ids: %s", id1)
	}

	rec := doJSON(t, s, http.MethodGet, "/api/sessions", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var resp struct {
		Sessions []struct {
			ID    string `json:"id"`
			Title string `json:"title"`
			State string `json:"state"`
		} `json:"sessions"`
	}
	decode(t, rec, &resp)
	if len(resp.Sessions) != 2 {
		t.Fatalf("sessions = %d, want 2", len(resp.Sessions))
	}
	for _, sess := range resp.Sessions {
		if sess.State != "idle" {
			t.Errorf("session %s state = %q, want idle", sess.ID, sess.State)
		}
	}
}

func TestIngestBatchAnalyzesAndReturnsSnapshot(t *testing.T) {
	s := newTestServer(t, nil)
	id := createSession(t, s, "wage debate")

	rec := doJSON(t, s, http.MethodPost, "/api/sessions/"+id+"/batches", sampleBatch())
	if rec.Code != http.StatusOK {
		t.Fatalf("ingest status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		State          string `json:"state"`
		ClaimsAdded    int    `json:"claims_added"`
		RelationsAdded int    `json:"relations_added"`
		Snapshot       *struct {
			Nodes       []model.GraphNode         `json:"nodes"`
			Edges       []model.GraphEdge         `json:"edges"`
			RigorScores []model.SpeakerRigorScore `json:"rigor_scores"`
		} `json:"snapshot"`
	}
	decode(t, rec, &resp)

	if resp.State != "analyzed" {
		t.Errorf("state = %q, want analyzed", resp.State)
	}
	if resp.ClaimsAdded != 2 || resp.RelationsAdded != 1 {
		t.Errorf("added = %d claims %d relations", resp.ClaimsAdded, resp.RelationsAdded)
	}
	if resp.Snapshot == nil {
		t.Fatal("no snapshot in response")
	}
	if len(resp.Snapshot.Nodes) != 2 || len(resp.Snapshot.Edges) != 1 {
		t.Errorf("snapshot has %d nodes %d edges", len(resp.Snapshot.Nodes), len(resp.Snapshot.Edges))
	}
	if len(resp.Snapshot.RigorScores) != 2 {
		t.Errorf("rigor scores = %d, want 2", len(resp.Snapshot.RigorScores))
	}
}

func TestIngestBatchInvalidItemsSkipped(t *testing.T) {
	s := newTestServer(t, nil)
	id := createSession(t, s, "messy batch")

	batch := map[string]any{
		"claims": []map[string]any{
			{"id": "c1", "speaker": "alice", "text": "fine claim", "claim_type": "premise"},
			{"id": "c2", "speaker": "bob", "text": "bad claim", "claim_type": "speculation"},
		},
		"relations": []map[string]any{
			{"source_id": "c1", "target_id": "missing", "relation_type": "support"},
		},
	}
	rec := doJSON(t, s, http.MethodPost, "/api/sessions/"+id+"/batches", batch)
	if rec.Code != http.StatusOK {
		t.Fatalf("ingest status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		ClaimsAdded int `json:"claims_added"`
		Skipped     []struct {
			Kind string `json:"kind"`
			ID   string `json:"id"`
		} `json:"skipped"`
	}
	decode(t, rec, &resp)
	if resp.ClaimsAdded != 1 {
		t.Errorf("claims_added = %d, want 1", resp.ClaimsAdded)
	}
	if len(resp.Skipped) != 2 {
		t.Fatalf("skipped = %v, want 2 items", resp.Skipped)
	}
}

func TestIngestBatchUnknownSession(t *testing.T) {
	s := newTestServer(t, nil)
	rec := doJSON(t, s, http.MethodPost, "/api/sessions/nope/batches", sampleBatch())
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestFinalizeLifecycle(t *testing.T) {
	s := newTestServer(t, nil)
	id := createSession(t, s, "short debate")

	doJSON(t, s, http.MethodPost, "/api/sessions/"+id+"/batches", sampleBatch())

	rec := doJSON(t, s, http.MethodPost, "/api/sessions/"+id+"/finalize", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("finalize status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		State    string               `json:"state"`
		Snapshot *model.GraphSnapshot `json:"snapshot"`
	}
	decode(t, rec, &resp)
	if resp.State != "finalized" {
		t.Errorf("state = %q, want finalized", resp.State)
	}
	if resp.Snapshot == nil || resp.Snapshot.Stats.Nodes != 2 {
		t.Errorf("snapshot = %+v", resp.Snapshot)
	}

	rec = doJSON(t, s, http.MethodPost, "/api/sessions/"+id+"/finalize", nil)
	if rec.Code != http.StatusConflict {
		t.Errorf("second finalize status = %d, want 409", rec.Code)
	}

	rec = doJSON(t, s, http.MethodPost, "/api/sessions/"+id+"/batches", sampleBatch())
	if rec.Code != http.StatusConflict {
		t.Errorf("ingest after finalize status = %d, want 409", rec.Code)
	}
}

func TestGetSnapshot(t *testing.T) {
	s := newTestServer(t, nil)
	id := createSession(t, s, "snapshot fetch")
	doJSON(t, s, http.MethodPost, "/api/sessions/"+id+"/batches", sampleBatch())

	rec := doJSON(t, s, http.MethodGet, "/api/sessions/"+id+"/snapshot", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("snapshot status = %d", rec.Code)
	}
	var resp struct {
		State    string               `json:"state"`
		Snapshot *model.GraphSnapshot `json:"snapshot"`
	}
	decode(t, rec, &resp)
	if resp.State != "analyzed" {
		t.Errorf("state = %q", resp.State)
	}
	if resp.Snapshot == nil || len(resp.Snapshot.Nodes) != 2 {
		t.Errorf("snapshot = %+v", resp.Snapshot)
	}
}

func TestDeleteSession(t *testing.T) {
	s := newTestServer(t, nil)
	id := createSession(t, s, "short-lived")

	rec := doJSON(t, s, http.MethodDelete, "/api/sessions/"+id, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rec.Code)
	}

	rec = doJSON(t, s, http.MethodGet, "/api/sessions/"+id, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want 404", rec.Code)
	}

	rec = doJSON(t, s, http.MethodDelete, "/api/sessions/"+id, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", rec.Code)
	}
}

// stubStore serves a single canned snapshot and records saved ones.
type stubStore struct {
	latest   *store.SnapshotRecord
	saved    []*store.SnapshotRecord
	sessions []*store.Session
}

func (s *stubStore) CreateSession(_ context.Context, sess *store.Session) error {
	s.sessions = append(s.sessions, sess)
	return nil
}

func (s *stubStore) UpdateSession(_ context.Context, sess *store.Session) error {
	s.sessions = append(s.sessions, sess)
	return nil
}

func (s *stubStore) GetSession(context.Context, string) (*store.Session, error) {
	return nil, fmt.Errorf("not found")
}

func (s *stubStore) ListSessions(context.Context, int) ([]*store.Session, error) {
	return s.sessions, nil
}

func (s *stubStore) DeleteSession(context.Context, string) error {
	return fmt.Errorf("not found")
}

func (s *stubStore) SaveSnapshot(_ context.Context, rec *store.SnapshotRecord) error {
	s.saved = append(s.saved, rec)
	return nil
}

func (s *stubStore) LatestSnapshot(_ context.Context, sessionID string) (*store.SnapshotRecord, error) {
	if s.latest != nil && s.latest.SessionID == sessionID {
		return s.latest, nil
	}
	return nil, fmt.Errorf("not found")
}

func (s *stubStore) Close() error { return nil }

func TestSnapshotFallsBackToPersistedSession(t *testing.T) {
	st := &stubStore{
		latest: &store.SnapshotRecord{
			ID:        "snap_1",
			SessionID: "old-session",
			Snapshot: model.GraphSnapshot{
				Nodes: []model.GraphNode{{ID: "c1", Speaker: "alice"}},
				Stats: model.GraphStats{Nodes: 1},
			},
		},
	}
	s := newTestServer(t, st)

	rec := doJSON(t, s, http.MethodGet, "/api/sessions/old-session/snapshot", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp struct {
		State    string               `json:"state"`
		Snapshot *model.GraphSnapshot `json:"snapshot"`
	}
	decode(t, rec, &resp)
	if resp.State != "finalized" {
		t.Errorf("state = %q", resp.State)
	}
	if resp.Snapshot == nil || resp.Snapshot.Stats.Nodes != 1 {
		t.Errorf("snapshot = %+v", resp.Snapshot)
	}

	rec = doJSON(t, s, http.MethodGet, "/api/sessions/unknown/snapshot", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestFinalizePersistsSnapshot(t *testing.T) {
	st := &stubStore{}
	s := newTestServer(t, st)
	id := createSession(t, s, "persisted debate")

	doJSON(t, s, http.MethodPost, "/api/sessions/"+id+"/batches", sampleBatch())
	rec := doJSON(t, s, http.MethodPost, "/api/sessions/"+id+"/finalize", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("finalize status = %d", rec.Code)
	}

	if len(st.saved) != 1 {
		t.Fatalf("saved snapshots = %d, want 1", len(st.saved))
	}
	saved := st.saved[0]
	if saved.SessionID != id || saved.NodeCount != 2 || saved.EdgeCount != 1 {
		t.Errorf("saved record = %+v", saved)
	}

	var finalized bool
	for _, sess := range st.sessions {
		if sess.ID == id && sess.State == "finalized" {
			finalized = true
			if len(sess.Speakers) != 2 {
				t.Errorf("speakers = %v", sess.Speakers)
			}
		}
	}
	if !finalized {
		t.Error("session state was not persisted as finalized")
	}
}
