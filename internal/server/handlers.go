package server

import (
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/debatelab/arguegraph/internal/model"
	"github.com/debatelab/arguegraph/internal/pipeline"
	"github.com/debatelab/arguegraph/internal/store"
)

func (s *Server) handleHealth(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

func (s *Server) handleCreateSession(c echo.Context) error {
	type createSessionBody struct {
		Title string `json:"title"`
	}

	type createSessionResponse struct {
		Message string   `json:"message"`
		Session *session `json:"session,omitempty"`
		State   string   `json:"state,omitempty"`
	}

	data := new(createSessionBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, createSessionResponse{
			Message: "Invalid request body",
		})
	}

	sess := s.registry.create(data.Title)
	s.logger.Info("session created", "id", sess.ID, "title", sess.Title)

	if s.store != nil {
		rec := &store.Session{
			ID:        sess.ID,
			Title:     sess.Title,
			State:     string(sess.coord.State()),
			CreatedAt: sess.CreatedAt,
			UpdatedAt: sess.CreatedAt,
		}
		if err := s.store.CreateSession(c.Request().Context(), rec); err != nil {
			s.logger.Warn("failed to persist session, continuing in memory", "id", sess.ID, "err", err)
		}
	}

	return c.JSON(http.StatusOK, createSessionResponse{
		Message: "Session created successfully",
		Session: sess,
		State:   string(sess.coord.State()),
	})
}

func (s *Server) handleListSessions(c echo.Context) error {
	type sessionInfo struct {
		ID        string    `json:"id"`
		Title     string    `json:"title"`
		State     string    `json:"state"`
		CreatedAt time.Time `json:"created_at"`
	}

	type listSessionsResponse struct {
		Sessions []sessionInfo `json:"sessions"`
	}

	sessions := s.registry.list()
	out := make([]sessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		out = append(out, sessionInfo{
			ID:        sess.ID,
			Title:     sess.Title,
			State:     string(sess.coord.State()),
			CreatedAt: sess.CreatedAt,
		})
	}

	return c.JSON(http.StatusOK, listSessionsResponse{Sessions: out})
}

func (s *Server) handleGetSession(c echo.Context) error {
	type getSessionResponse struct {
		Message string   `json:"message,omitempty"`
		Session *session `json:"session,omitempty"`
		State   string   `json:"state,omitempty"`
		Nodes   int      `json:"nodes"`
		Edges   int      `json:"edges"`
	}

	sess, ok := s.registry.get(c.Param("id"))
	if !ok {
		return c.JSON(http.StatusNotFound, getSessionResponse{
			Message: "Session not found",
		})
	}

	snap := sess.coord.Snapshot()
	return c.JSON(http.StatusOK, getSessionResponse{
		Session: sess,
		State:   string(sess.coord.State()),
		Nodes:   snap.Stats.Nodes,
		Edges:   snap.Stats.Edges,
	})
}

func (s *Server) handleDeleteSession(c echo.Context) error {
	type deleteSessionResponse struct {
		Message string `json:"message"`
	}

	id := c.Param("id")
	removed := s.registry.remove(id)

	var persisted bool
	if s.store != nil {
		err := s.store.DeleteSession(c.Request().Context(), id)
		if err == nil {
			persisted = true
		} else if removed {
			s.logger.Warn("failed to delete persisted session", "id", id, "err", err)
		}
	}

	if !removed && !persisted {
		return c.JSON(http.StatusNotFound, deleteSessionResponse{
			Message: "Session not found",
		})
	}

	s.logger.Info("session deleted", "id", id)
	return c.JSON(http.StatusOK, deleteSessionResponse{
		Message: "Session deleted successfully",
	})
}

func (s *Server) handleIngestBatch(c echo.Context) error {
	type ingestBody struct {
		Claims      []pipeline.ClaimInput      `json:"claims"`
		Relations   []pipeline.RelationInput   `json:"relations"`
		Annotations []pipeline.AnnotationInput `json:"annotations,omitempty"`
		FactChecks  []pipeline.FactCheckInput  `json:"fact_checks,omitempty"`
	}

	type skippedItem struct {
		Kind  string `json:"kind"`
		ID    string `json:"id"`
		Error string `json:"error"`
	}

	type ingestResponse struct {
		Message           string               `json:"message"`
		State             string               `json:"state,omitempty"`
		ClaimsAdded       int                  `json:"claims_added"`
		RelationsAdded    int                  `json:"relations_added"`
		AnnotationsAdded  int                  `json:"annotations_added"`
		FactChecksApplied int                  `json:"fact_checks_applied"`
		Skipped           []skippedItem        `json:"skipped,omitempty"`
		Snapshot          *model.GraphSnapshot `json:"snapshot,omitempty"`
	}

	sess, ok := s.registry.get(c.Param("id"))
	if !ok {
		return c.JSON(http.StatusNotFound, ingestResponse{
			Message: "Session not found",
		})
	}

	data := new(ingestBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, ingestResponse{
			Message: "Invalid request body",
		})
	}

	report, err := sess.coord.IngestBatch(pipeline.Batch{
		Claims:    data.Claims,
		Relations: data.Relations,
	})
	if errors.Is(err, pipeline.ErrSessionFinalized) {
		return c.JSON(http.StatusConflict, ingestResponse{
			Message: "Session is finalized",
		})
	}

	if len(data.Annotations) > 0 {
		r, _ := sess.coord.ApplyAnnotations(data.Annotations)
		report.Merge(r)
	}
	if len(data.FactChecks) > 0 {
		r, _ := sess.coord.ApplyFactChecks(data.FactChecks)
		report.Merge(r)
	}

	snap, err := sess.coord.Analyze()
	if err != nil {
		s.logger.Error("analysis pass failed", "session", sess.ID, "err", err)
		return c.JSON(http.StatusInternalServerError, ingestResponse{
			Message: "Internal server error",
		})
	}

	skipped := make([]skippedItem, 0, len(report.Skipped))
	for _, item := range report.Skipped {
		skipped = append(skipped, skippedItem{
			Kind:  item.Kind,
			ID:    item.ID,
			Error: item.Err.Error(),
		})
	}

	return c.JSON(http.StatusOK, ingestResponse{
		Message:           "Batch ingested successfully",
		State:             string(sess.coord.State()),
		ClaimsAdded:       report.ClaimsAdded,
		RelationsAdded:    report.RelationsAdded,
		AnnotationsAdded:  report.AnnotationsAdded,
		FactChecksApplied: report.FactChecksApplied,
		Skipped:           skipped,
		Snapshot:          &snap,
	})
}

func (s *Server) handleGetSnapshot(c echo.Context) error {
	type snapshotResponse struct {
		Message  string               `json:"message,omitempty"`
		State    string               `json:"state,omitempty"`
		Snapshot *model.GraphSnapshot `json:"snapshot,omitempty"`
	}

	id := c.Param("id")
	sess, ok := s.registry.get(id)
	if !ok {
		// A finalized session from an earlier run may still have a
		// persisted snapshot.
		if s.store != nil {
			rec, err := s.store.LatestSnapshot(c.Request().Context(), id)
			if err == nil {
				return c.JSON(http.StatusOK, snapshotResponse{
					State:    "finalized",
					Snapshot: &rec.Snapshot,
				})
			}
		}
		return c.JSON(http.StatusNotFound, snapshotResponse{
			Message: "Session not found",
		})
	}

	snap := sess.coord.Snapshot()
	return c.JSON(http.StatusOK, snapshotResponse{
		State:    string(sess.coord.State()),
		Snapshot: &snap,
	})
}

func (s *Server) handleFinalize(c echo.Context) error {
	type finalizeResponse struct {
		Message  string               `json:"message"`
		State    string               `json:"state,omitempty"`
		Snapshot *model.GraphSnapshot `json:"snapshot,omitempty"`
	}

	sess, ok := s.registry.get(c.Param("id"))
	if !ok {
		return c.JSON(http.StatusNotFound, finalizeResponse{
			Message: "Session not found",
		})
	}

	snap, err := sess.coord.Finalize()
	if errors.Is(err, pipeline.ErrSessionFinalized) {
		return c.JSON(http.StatusConflict, finalizeResponse{
			Message: "Session is finalized",
		})
	}
	if err != nil {
		s.logger.Error("finalize failed", "session", sess.ID, "err", err)
		return c.JSON(http.StatusInternalServerError, finalizeResponse{
			Message: "Internal server error",
		})
	}

	if s.store != nil {
		s.persistFinalSnapshot(c, sess, snap)
	}

	return c.JSON(http.StatusOK, finalizeResponse{
		Message:  "Session finalized successfully",
		State:    string(sess.coord.State()),
		Snapshot: &snap,
	})
}

// persistFinalSnapshot writes the terminal snapshot and session state to the
// database. Persistence failures degrade to a warning; the in-memory result
// is still served.
func (s *Server) persistFinalSnapshot(c echo.Context, sess *session, snap model.GraphSnapshot) {
	ctx := c.Request().Context()

	speakers := make([]string, 0, len(snap.Stats.SpeakerDistribution))
	for speaker := range snap.Stats.SpeakerDistribution {
		speakers = append(speakers, speaker)
	}
	sort.Strings(speakers)

	err := s.store.UpdateSession(ctx, &store.Session{
		ID:        sess.ID,
		Title:     sess.Title,
		State:     string(pipeline.StateFinalized),
		Speakers:  speakers,
		CreatedAt: sess.CreatedAt,
		UpdatedAt: time.Now().UTC(),
	})
	if err != nil {
		s.logger.Warn("failed to persist session state", "id", sess.ID, "err", err)
	}

	err = s.store.SaveSnapshot(ctx, &store.SnapshotRecord{
		ID:        store.NewID(),
		SessionID: sess.ID,
		Snapshot:  snap,
		NodeCount: snap.Stats.Nodes,
		EdgeCount: snap.Stats.Edges,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		s.logger.Warn("failed to persist snapshot", "id", sess.ID, "err", err)
	}
}
