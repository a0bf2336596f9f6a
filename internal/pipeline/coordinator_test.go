package pipeline

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/debatelab/arguegraph/internal/model"
)

func newTestCoordinator() *Coordinator {
	return NewCoordinator(model.DefaultConfig(), nil)
}

func claimIn(id, speaker, text, claimType string, start float64) ClaimInput {
	return ClaimInput{
		ID:             id,
		Speaker:        speaker,
		Text:           text,
		ClaimType:      claimType,
		TimestampStart: start,
		TimestampEnd:   start + 2,
		Confidence:     0.9,
	}
}

func relIn(src, tgt, relType string) RelationInput {
	return RelationInput{SourceID: src, TargetID: tgt, RelationType: relType, Confidence: 0.8}
}

// debateBatches is a fixture with a support cycle, a cross-speaker attack
// and enough claims to exercise every detector.
func debateBatches() []Batch {
	return []Batch{
		{
			Claims: []ClaimInput{
				claimIn("c1", "alice", "carbon pricing lowers emissions", "premise", 0),
				claimIn("c2", "alice", "lower emissions prove carbon pricing works", "premise", 10),
			},
			Relations: []RelationInput{
				relIn("c1", "c2", "support"),
			},
		},
		{
			Claims: []ClaimInput{
				claimIn("c3", "alice", "carbon pricing works because emissions fell", "conclusion", 20),
			},
			Relations: []RelationInput{
				relIn("c2", "c3", "support"),
				relIn("c3", "c1", "support"),
			},
		},
		{
			Claims: []ClaimInput{
				claimIn("c4", "bob", "my opponent just wants new taxes on everything", "rebuttal", 30),
				claimIn("c5", "alice", "the price only applies to large emitters", "premise", 40),
			},
			Relations: []RelationInput{
				relIn("c4", "c1", "attack"),
			},
		},
	}
}

func mergeBatches(batches []Batch) Batch {
	var all Batch
	for _, b := range batches {
		all.Claims = append(all.Claims, b.Claims...)
		all.Relations = append(all.Relations, b.Relations...)
	}
	return all
}

func TestCoordinator_StateMachine(t *testing.T) {
	c := newTestCoordinator()
	if c.State() != StateIdle {
		t.Fatalf("initial state = %s, want idle", c.State())
	}

	if _, err := c.IngestBatch(debateBatches()[0]); err != nil {
		t.Fatalf("IngestBatch: %v", err)
	}
	if c.State() != StateAccumulating {
		t.Errorf("state after ingest = %s, want accumulating", c.State())
	}

	if _, err := c.Analyze(); err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if c.State() != StateAnalyzed {
		t.Errorf("state after analyze = %s, want analyzed", c.State())
	}

	if _, err := c.IngestBatch(debateBatches()[1]); err != nil {
		t.Fatalf("IngestBatch after analyze: %v", err)
	}
	if c.State() != StateAccumulating {
		t.Errorf("state after re-ingest = %s, want accumulating", c.State())
	}

	if _, err := c.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if c.State() != StateFinalized {
		t.Errorf("state after finalize = %s, want finalized", c.State())
	}

	if _, err := c.IngestBatch(debateBatches()[2]); !errors.Is(err, ErrSessionFinalized) {
		t.Errorf("ingest after finalize err = %v, want ErrSessionFinalized", err)
	}
	if _, err := c.Analyze(); !errors.Is(err, ErrSessionFinalized) {
		t.Errorf("analyze after finalize err = %v, want ErrSessionFinalized", err)
	}
	if _, err := c.Finalize(); !errors.Is(err, ErrSessionFinalized) {
		t.Errorf("second finalize err = %v, want ErrSessionFinalized", err)
	}
}

func TestCoordinator_InvalidItemsSkippedNotFatal(t *testing.T) {
	c := newTestCoordinator()

	batch := Batch{
		Claims: []ClaimInput{
			claimIn("c1", "alice", "the deficit fell last year", "premise", 0),
			claimIn("c2", "bob", "the deficit rose last year", "speculation", 5), // bad claim_type
			claimIn("c3", "bob", "spending must be reined in", "conclusion", 10),
		},
		Relations: []RelationInput{
			relIn("c3", "c1", "conclusion"), // claim-type value, not a relation type
			relIn("c3", "c1", "attack"),
			relIn("c3", "missing", "support"), // unknown endpoint
		},
	}

	report, err := c.IngestBatch(batch)
	if err != nil {
		t.Fatalf("IngestBatch: %v", err)
	}
	if report.ClaimsAdded != 2 {
		t.Errorf("ClaimsAdded = %d, want 2", report.ClaimsAdded)
	}
	if report.RelationsAdded != 1 {
		t.Errorf("RelationsAdded = %d, want 1", report.RelationsAdded)
	}
	if len(report.Skipped) != 3 {
		t.Fatalf("Skipped = %d items, want 3: %v", len(report.Skipped), report.Skipped)
	}

	// the valid attack edge must have survived its invalid neighbors
	snap := c.Snapshot()
	if len(snap.Edges) != 1 || snap.Edges[0].RelationType != model.RelationAttack {
		t.Errorf("surviving edges = %+v, want single attack edge", snap.Edges)
	}
}

func TestCoordinator_BatchIncrementalEquivalence(t *testing.T) {
	batches := debateBatches()

	incremental := newTestCoordinator()
	for i, b := range batches {
		if _, err := incremental.IngestBatch(b); err != nil {
			t.Fatalf("incremental ingest %d: %v", i, err)
		}
		// an analysis pass between batches must not change the end result
		if _, err := incremental.Analyze(); err != nil {
			t.Fatalf("incremental analyze %d: %v", i, err)
		}
	}
	incSnap, err := incremental.Finalize()
	if err != nil {
		t.Fatalf("incremental finalize: %v", err)
	}

	oneshot := newTestCoordinator()
	if _, err := oneshot.IngestBatch(mergeBatches(batches)); err != nil {
		t.Fatalf("oneshot ingest: %v", err)
	}
	batchSnap, err := oneshot.Finalize()
	if err != nil {
		t.Fatalf("oneshot finalize: %v", err)
	}

	if diff := cmp.Diff(batchSnap, incSnap); diff != "" {
		t.Errorf("incremental snapshot differs from batch snapshot (-batch +incremental):\n%s", diff)
	}
}

func TestCoordinator_AnalyzeDetectsPlantedStructures(t *testing.T) {
	c := newTestCoordinator()
	if _, err := c.IngestBatch(mergeBatches(debateBatches())); err != nil {
		t.Fatalf("IngestBatch: %v", err)
	}
	snap, err := c.Analyze()
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if len(snap.CyclesDetected) != 1 {
		t.Fatalf("cycles = %v, want exactly one", snap.CyclesDetected)
	}
	wantCycle := []string{"c1", "c2", "c3"}
	if diff := cmp.Diff(wantCycle, snap.CyclesDetected[0]); diff != "" {
		t.Errorf("cycle mismatch (-want +got):\n%s", diff)
	}

	var c4 model.GraphNode
	for _, n := range snap.Nodes {
		if n.ID == "c4" {
			c4 = n
		}
	}
	foundStrawman := false
	for _, f := range c4.Fallacies {
		if f.FallacyType == model.FallacyStrawman {
			foundStrawman = true
		}
	}
	if !foundStrawman {
		t.Errorf("c4 fallacies = %+v, want strawman flag", c4.Fallacies)
	}

	if len(snap.RigorScores) != 2 {
		t.Errorf("rigor scores = %d speakers, want 2", len(snap.RigorScores))
	}
}

func TestCoordinator_ApplyAnnotationsNormalizes(t *testing.T) {
	c := newTestCoordinator()
	if _, err := c.IngestBatch(debateBatches()[0]); err != nil {
		t.Fatalf("IngestBatch: %v", err)
	}

	anns := []AnnotationInput{
		{ClaimID: "c1", FallacyType: "Straw Man", Severity: 0.8, Explanation: "misrepresents"},
		{ClaimID: "c2", FallacyType: "no_fallacy"},
		{ClaimID: "c1", FallacyType: "wishful_thinking", Severity: 0.4},
		{ClaimID: "c2", FallacyType: "whataboutism", Severity: 1.7}, // clamped
	}
	report, err := c.ApplyAnnotations(anns)
	if err != nil {
		t.Fatalf("ApplyAnnotations: %v", err)
	}
	if report.AnnotationsAdded != 2 {
		t.Errorf("AnnotationsAdded = %d, want 2", report.AnnotationsAdded)
	}
	if len(report.Skipped) != 1 {
		t.Errorf("Skipped = %v, want 1 unknown-type record", report.Skipped)
	}

	snap := c.Snapshot()
	for _, n := range snap.Nodes {
		switch n.ID {
		case "c1":
			if len(n.Fallacies) != 1 || n.Fallacies[0].FallacyType != model.FallacyStrawman {
				t.Errorf("c1 fallacies = %+v, want canonical strawman", n.Fallacies)
			}
			if n.Fallacies[0].DetectionMethod != model.DetectionLLM {
				t.Errorf("detection method = %s, want llm default", n.Fallacies[0].DetectionMethod)
			}
		case "c2":
			if len(n.Fallacies) != 1 || n.Fallacies[0].FallacyType != model.FallacyTuQuoque {
				t.Errorf("c2 fallacies = %+v, want tu_quoque alias only", n.Fallacies)
			}
			if n.Fallacies[0].Severity != 1.0 {
				t.Errorf("severity = %v, want clamped 1.0", n.Fallacies[0].Severity)
			}
		}
	}
}

func TestCoordinator_ApplyFactChecks(t *testing.T) {
	c := newTestCoordinator()
	batch := Batch{Claims: []ClaimInput{
		func() ClaimInput {
			in := claimIn("c1", "alice", "unemployment is at a ten year low", "premise", 0)
			in.IsFactual = true
			return in
		}(),
	}}
	if _, err := c.IngestBatch(batch); err != nil {
		t.Fatalf("IngestBatch: %v", err)
	}

	checks := []FactCheckInput{
		{ClaimID: "c1", Verdict: "supported", Confidence: 0.9, Sources: []string{"https://example.org/stats"}},
		{ClaimID: "ghost", Verdict: "refuted", Confidence: 0.9},
		{ClaimID: "c1", Verdict: "pending", Confidence: 0.5}, // internal state, not accepted
	}
	report, err := c.ApplyFactChecks(checks)
	if err != nil {
		t.Fatalf("ApplyFactChecks: %v", err)
	}
	if report.FactChecksApplied != 1 {
		t.Errorf("FactChecksApplied = %d, want 1", report.FactChecksApplied)
	}
	if len(report.Skipped) != 2 {
		t.Errorf("Skipped = %v, want 2", report.Skipped)
	}

	snap := c.Snapshot()
	if snap.Nodes[0].FactcheckVerdict != model.VerdictSupported {
		t.Errorf("verdict = %s, want supported", snap.Nodes[0].FactcheckVerdict)
	}
}

func TestCoordinator_FinalizeAnalyzesPendingBatch(t *testing.T) {
	c := newTestCoordinator()
	if _, err := c.IngestBatch(mergeBatches(debateBatches())); err != nil {
		t.Fatalf("IngestBatch: %v", err)
	}

	// no explicit Analyze: Finalize must still run one pass
	snap, err := c.Finalize()
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if len(snap.CyclesDetected) != 1 {
		t.Errorf("terminal snapshot cycles = %v, want the planted cycle", snap.CyclesDetected)
	}
	if len(snap.RigorScores) == 0 {
		t.Errorf("terminal snapshot has no rigor scores")
	}
}
