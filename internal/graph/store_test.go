package graph

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/debatelab/arguegraph/internal/model"
)

func claim(id, speaker string, t float64) model.Claim {
	return model.Claim{
		ID:             id,
		Speaker:        speaker,
		Text:           "claim " + id,
		ClaimType:      model.ClaimPremise,
		TimestampStart: t,
		TimestampEnd:   t + 1,
		Confidence:     0.8,
	}
}

func TestStore_AddClaim_Duplicate(t *testing.T) {
	s := NewStore()

	if err := s.AddClaim(claim("c1", "A", 0)); err != nil {
		t.Fatalf("first insert failed: %v", err)
	}

	err := s.AddClaim(claim("c1", "A", 5))
	if !errors.Is(err, ErrDuplicateNode) {
		t.Errorf("expected ErrDuplicateNode, got %v", err)
	}

	if s.NumNodes() != 1 {
		t.Errorf("expected 1 node, got %d", s.NumNodes())
	}
}

func TestStore_AddClaim_Invalid(t *testing.T) {
	s := NewStore()

	bad := claim("c1", "A", 0)
	bad.ClaimType = "conclusion-ish"
	if err := s.AddClaim(bad); !errors.Is(err, ErrInvalidEnumValue) {
		t.Errorf("bad claim type: expected ErrInvalidEnumValue, got %v", err)
	}

	bad = claim("c2", "A", 10)
	bad.TimestampEnd = 3
	if err := s.AddClaim(bad); !errors.Is(err, ErrMalformedItem) {
		t.Errorf("bad timestamps: expected ErrMalformedItem, got %v", err)
	}

	bad = claim("c3", "A", 0)
	bad.Confidence = 1.5
	if err := s.AddClaim(bad); !errors.Is(err, ErrMalformedItem) {
		t.Errorf("bad confidence: expected ErrMalformedItem, got %v", err)
	}

	if s.NumNodes() != 0 {
		t.Errorf("invalid claims must not be stored, got %d nodes", s.NumNodes())
	}
}

func TestStore_AddRelation_Invariants(t *testing.T) {
	s := NewStore()
	mustAdd(t, s, claim("c1", "A", 0), claim("c2", "B", 10))

	err := s.AddRelation(model.Relation{SourceID: "c1", TargetID: "missing", RelationType: model.RelationSupport, Confidence: 0.7})
	if !errors.Is(err, ErrUnknownEndpoint) {
		t.Errorf("expected ErrUnknownEndpoint, got %v", err)
	}

	err = s.AddRelation(model.Relation{SourceID: "c1", TargetID: "c1", RelationType: model.RelationAttack, Confidence: 0.7})
	if !errors.Is(err, ErrSelfLoop) {
		t.Errorf("expected ErrSelfLoop, got %v", err)
	}

	// A claim-type value is not a relation type.
	err = s.AddRelation(model.Relation{SourceID: "c1", TargetID: "c2", RelationType: "conclusion", Confidence: 0.7})
	if !errors.Is(err, ErrInvalidEnumValue) {
		t.Errorf("expected ErrInvalidEnumValue, got %v", err)
	}

	if s.NumEdges() != 0 {
		t.Fatalf("rejected edges must not be stored, got %d", s.NumEdges())
	}

	if err := s.AddRelation(model.Relation{SourceID: "c1", TargetID: "c2", RelationType: model.RelationAttack, Confidence: 0.7}); err != nil {
		t.Fatalf("valid edge rejected: %v", err)
	}
}

func TestStore_EdgeIndexesBothDirections(t *testing.T) {
	s := NewStore()
	mustAdd(t, s, claim("c1", "A", 0), claim("c2", "B", 10), claim("c3", "A", 20))

	rels := []model.Relation{
		{SourceID: "c1", TargetID: "c2", RelationType: model.RelationSupport, Confidence: 0.9},
		{SourceID: "c3", TargetID: "c2", RelationType: model.RelationAttack, Confidence: 0.8},
		// Opposite semantic role between the same pair is a distinct edge.
		{SourceID: "c2", TargetID: "c1", RelationType: model.RelationAttack, Confidence: 0.6},
	}
	for _, r := range rels {
		if err := s.AddRelation(r); err != nil {
			t.Fatalf("add relation: %v", err)
		}
	}

	if got := len(s.InEdges("c2")); got != 2 {
		t.Errorf("expected 2 in-edges for c2, got %d", got)
	}
	if got := len(s.OutEdges("c2")); got != 1 {
		t.Errorf("expected 1 out-edge for c2, got %d", got)
	}
	if got := len(s.InEdges("c1")); got != 1 {
		t.Errorf("expected 1 in-edge for c1, got %d", got)
	}
}

func TestStore_FallacyIdempotence(t *testing.T) {
	s := NewStore()
	mustAdd(t, s, claim("c1", "A", 0))

	ann := model.FallacyAnnotation{
		ClaimID:         "c1",
		FallacyType:     model.FallacyCircularReasoning,
		Severity:        0.7,
		DetectionMethod: model.DetectionStructural,
	}

	added, err := s.AddFallacy(ann)
	if err != nil || !added {
		t.Fatalf("first add: added=%v err=%v", added, err)
	}
	added, err = s.AddFallacy(ann)
	if err != nil {
		t.Fatalf("second add errored: %v", err)
	}
	if added {
		t.Error("duplicate (claim, type, method) annotation must be a no-op")
	}

	// Same type via a different method is a separate annotation.
	ann.DetectionMethod = model.DetectionLLM
	if added, _ := s.AddFallacy(ann); !added {
		t.Error("same type from a different detection method should be stored")
	}

	if got := len(s.Fallacies("c1")); got != 2 {
		t.Errorf("expected 2 annotations, got %d", got)
	}
}

func TestStore_FactCheckUnknownClaim(t *testing.T) {
	s := NewStore()
	err := s.SetFactCheck(model.FactCheck{ClaimID: "nope", Verdict: model.VerdictSupported})
	if !errors.Is(err, ErrUnknownClaim) {
		t.Errorf("expected ErrUnknownClaim, got %v", err)
	}
}

func TestStore_SnapshotIsImmutableCopy(t *testing.T) {
	s := NewStore()
	mustAdd(t, s, claim("c1", "A", 0), claim("c2", "B", 10))
	if err := s.AddRelation(model.Relation{SourceID: "c1", TargetID: "c2", RelationType: model.RelationSupport, Confidence: 0.9}); err != nil {
		t.Fatal(err)
	}

	snap := s.Snapshot()

	// Mutate after taking the snapshot.
	mustAdd(t, s, claim("c3", "A", 20))
	if _, err := s.AddFallacy(model.FallacyAnnotation{
		ClaimID: "c1", FallacyType: model.FallacyAdHominem, Severity: 0.6, DetectionMethod: model.DetectionRuleBased,
	}); err != nil {
		t.Fatal(err)
	}

	if len(snap.Nodes) != 2 {
		t.Errorf("snapshot grew after mutation: %d nodes", len(snap.Nodes))
	}
	if len(snap.Nodes[0].Fallacies) != 0 {
		t.Error("snapshot picked up an annotation added after it was taken")
	}
	if snap.Nodes[0].FactcheckVerdict != model.VerdictPending {
		t.Errorf("unchecked claim should be pending, got %s", snap.Nodes[0].FactcheckVerdict)
	}
}

func TestStore_SnapshotLabelTruncatesOnRuneBoundary(t *testing.T) {
	s := NewStore()

	c := claim("c1", "A", 0)
	c.Text = strings.Repeat("ф", 200)
	if err := s.AddClaim(c); err != nil {
		t.Fatal(err)
	}

	snap := s.Snapshot()
	label := snap.Nodes[0].Label
	if !utf8.ValidString(label) {
		t.Fatalf("label is not valid UTF-8: %q", label)
	}
	if !strings.HasSuffix(label, "...") {
		t.Errorf("long text was not truncated: %q", label)
	}
	if got := utf8.RuneCountInString(strings.TrimSuffix(label, "...")); got != labelMaxLen {
		t.Errorf("label is %d runes, want %d", got, labelMaxLen)
	}
}

func TestStore_Stats(t *testing.T) {
	s := NewStore()
	mustAdd(t, s, claim("c1", "A", 0), claim("c2", "B", 10), claim("c3", "A", 20), claim("c4", "B", 30))
	if err := s.AddRelation(model.Relation{SourceID: "c1", TargetID: "c2", RelationType: model.RelationSupport, Confidence: 0.9}); err != nil {
		t.Fatal(err)
	}

	stats := s.Stats()
	if stats.Nodes != 4 || stats.Edges != 1 {
		t.Fatalf("unexpected counts: %+v", stats)
	}
	if stats.ConnectedComponents != 3 {
		t.Errorf("expected 3 components, got %d", stats.ConnectedComponents)
	}
	if stats.SpeakerDistribution["A"] != 2 || stats.SpeakerDistribution["B"] != 2 {
		t.Errorf("unexpected speaker distribution: %v", stats.SpeakerDistribution)
	}
	if stats.EdgeTypes[model.RelationSupport] != 1 {
		t.Errorf("unexpected edge types: %v", stats.EdgeTypes)
	}
}

func TestStore_Reset(t *testing.T) {
	s := NewStore()
	mustAdd(t, s, claim("c1", "A", 0))
	s.SetCycles([][]string{{"c1"}})
	s.Reset()

	if s.NumNodes() != 0 || s.NumEdges() != 0 {
		t.Error("reset left nodes or edges behind")
	}
	if len(s.Snapshot().CyclesDetected) != 0 {
		t.Error("reset left cycles behind")
	}
	if err := s.AddClaim(claim("c1", "A", 0)); err != nil {
		t.Errorf("re-adding after reset should work: %v", err)
	}
}

func mustAdd(t *testing.T, s *Store, claims ...model.Claim) {
	t.Helper()
	for _, c := range claims {
		if err := s.AddClaim(c); err != nil {
			t.Fatalf("add claim %s: %v", c.ID, err)
		}
	}
}
