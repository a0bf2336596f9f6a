package pipeline

import (
	"errors"
	"io"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/debatelab/arguegraph/internal/analyze"
	"github.com/debatelab/arguegraph/internal/graph"
	"github.com/debatelab/arguegraph/internal/model"
	"github.com/debatelab/arguegraph/internal/score"
)

// ErrSessionFinalized is returned when ingestion or analysis is attempted
// after Finalize.
var ErrSessionFinalized = errors.New("session is finalized")

// State tracks where a session is in its lifecycle
type State string

const (
	StateIdle         State = "idle"
	StateAccumulating State = "accumulating"
	StateAnalyzed     State = "analyzed"
	StateFinalized    State = "finalized"
)

// Coordinator sequences claim/relation batches into the graph and decides
// when analysis runs. Every analysis pass is a full recompute over the
// current graph, which makes incremental and one-shot batch runs produce
// identical results for the same final graph.
//
// All methods are safe for concurrent use. Mutation holds an exclusive lock
// for the whole ingest or analyze step; readers get immutable snapshots and
// therefore see either the pre- or post-update state, never a partial one.
type Coordinator struct {
	mu       sync.Mutex
	store    *graph.Store
	analyzer *analyze.Analyzer
	scorer   *score.Scorer
	state    State
	logger   *log.Logger
}

// NewCoordinator creates a coordinator for one analysis session. A nil
// logger disables logging.
func NewCoordinator(cfg *model.Config, logger *log.Logger) *Coordinator {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Coordinator{
		store:    graph.NewStore(),
		analyzer: analyze.NewAnalyzer(cfg.Analysis),
		scorer:   score.NewScorer(cfg.Score),
		state:    StateIdle,
		logger:   logger,
	}
}

// State returns the current lifecycle state
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Store exposes the underlying graph for read-only callers (the LLM
// collaborator clients build their requests from it).
func (c *Coordinator) Store() *graph.Store {
	return c.store
}

// IngestBatch validates and inserts one extraction batch. Invalid records
// are skipped and reported, never batch-fatal. The session moves to
// accumulating; analysis results from before this batch are stale until the
// next Analyze.
func (c *Coordinator) IngestBatch(b Batch) (IngestReport, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateFinalized {
		return IngestReport{}, ErrSessionFinalized
	}

	report := ingestBatch(c.store, b)
	c.state = StateAccumulating

	for _, item := range report.Skipped {
		c.logger.Warn("skipped invalid record", "kind", item.Kind, "id", item.ID, "err", item.Err)
	}
	c.logger.Debug("batch ingested",
		"claims", report.ClaimsAdded,
		"relations", report.RelationsAdded,
		"skipped", len(report.Skipped),
		"nodes", c.store.NumNodes(),
		"edges", c.store.NumEdges())

	return report, nil
}

// ApplyAnnotations stores normalized classification-collaborator findings.
// Allowed in any non-finalized state; the next Analyze folds them into the
// rigor scores.
func (c *Coordinator) ApplyAnnotations(anns []AnnotationInput) (IngestReport, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateFinalized {
		return IngestReport{}, ErrSessionFinalized
	}

	report := applyAnnotations(c.store, anns)
	for _, item := range report.Skipped {
		c.logger.Warn("skipped invalid record", "kind", item.Kind, "id", item.ID, "err", item.Err)
	}
	return report, nil
}

// ApplyFactChecks stores fact-check-collaborator verdicts
func (c *Coordinator) ApplyFactChecks(checks []FactCheckInput) (IngestReport, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateFinalized {
		return IngestReport{}, ErrSessionFinalized
	}

	report := applyFactChecks(c.store, checks)
	for _, item := range report.Skipped {
		c.logger.Warn("skipped invalid record", "kind", item.Kind, "id", item.ID, "err", item.Err)
	}
	return report, nil
}

// Analyze runs the structural detectors and recomputes rigor scores, then
// emits a snapshot of the analyzed graph.
func (c *Coordinator) Analyze() (model.GraphSnapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateFinalized {
		return model.GraphSnapshot{}, ErrSessionFinalized
	}
	return c.analyzeLocked()
}

func (c *Coordinator) analyzeLocked() (model.GraphSnapshot, error) {
	report, err := c.analyzer.Run(c.store)
	if err != nil {
		return model.GraphSnapshot{}, err
	}
	c.store.SetRigorScores(c.scorer.Score(c.store))
	c.state = StateAnalyzed

	c.logger.Debug("analysis pass complete",
		"cycles", len(report.Cycles),
		"drift_points", len(report.DriftPoints),
		"new_annotations", report.NewAnnotations)

	return c.store.Snapshot(), nil
}

// Snapshot returns the current graph state without running analysis
func (c *Coordinator) Snapshot() model.GraphSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Snapshot()
}

// Finalize runs one last analysis pass over everything ingested so far,
// closes the session, and returns the terminal snapshot. Nothing ingested
// is dropped: a batch accepted before Finalize is always analyzed.
func (c *Coordinator) Finalize() (model.GraphSnapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateFinalized {
		return model.GraphSnapshot{}, ErrSessionFinalized
	}

	snap, err := c.analyzeLocked()
	if err != nil {
		return model.GraphSnapshot{}, err
	}
	c.state = StateFinalized
	c.logger.Info("session finalized",
		"nodes", snap.Stats.Nodes,
		"edges", snap.Stats.Edges,
		"speakers", len(snap.RigorScores))
	return snap, nil
}
