package graph

import (
	"fmt"
	"sort"
	"sync"

	"github.com/debatelab/arguegraph/internal/model"
)

const labelMaxLen = 80

// Store owns the claim/relation graph for a single session. It enforces
// referential and identity invariants at the insertion boundary and indexes
// edges by source and by target for O(1) neighbor lookup in either
// direction.
//
// Single-writer discipline: one logical owner mutates a Store at a time.
// Concurrent readers are safe; Snapshot returns an immutable deep copy, so a
// poller sees either the pre- or post-update state, never a partial one.
type Store struct {
	mu sync.RWMutex

	claims map[string]model.Claim
	order  []string // Claim ids in insertion order, for deterministic output

	edges []model.Relation
	out   map[string][]int // Claim id -> indexes into edges where it is the source
	in    map[string][]int // Claim id -> indexes into edges where it is the target

	fallacies   map[string][]model.FallacyAnnotation
	fallacyKeys map[string]bool // Idempotence keys of stored annotations
	factchecks  map[string]model.FactCheck

	cycles [][]string
	drift  []model.DriftPoint
	rigor  []model.SpeakerRigorScore
}

// NewStore creates an empty graph store
func NewStore() *Store {
	s := &Store{}
	s.reset()
	return s
}

func (s *Store) reset() {
	s.claims = make(map[string]model.Claim)
	s.order = nil
	s.edges = nil
	s.out = make(map[string][]int)
	s.in = make(map[string][]int)
	s.fallacies = make(map[string][]model.FallacyAnnotation)
	s.fallacyKeys = make(map[string]bool)
	s.factchecks = make(map[string]model.FactCheck)
	s.cycles = nil
	s.drift = nil
	s.rigor = nil
}

// Reset destroys all nodes, edges and annotations
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
}

// AddClaim inserts a claim node. Fails with ErrDuplicateNode if the id is
// already present; the caller decides whether to ignore or treat as fatal.
func (s *Store) AddClaim(c model.Claim) error {
	if c.ID == "" {
		return fmt.Errorf("%w: empty claim id", ErrMalformedItem)
	}
	if _, err := model.ParseClaimType(string(c.ClaimType)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEnumValue, err)
	}
	if c.TimestampEnd < c.TimestampStart {
		return fmt.Errorf("%w: claim %s: timestamp_end before timestamp_start", ErrMalformedItem, c.ID)
	}
	if c.Confidence < 0 || c.Confidence > 1 {
		return fmt.Errorf("%w: claim %s: confidence %v outside [0,1]", ErrMalformedItem, c.ID, c.Confidence)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.claims[c.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateNode, c.ID)
	}
	s.claims[c.ID] = c
	s.order = append(s.order, c.ID)
	return nil
}

// AddRelation inserts a directed edge. Both endpoints must already exist and
// must differ.
func (s *Store) AddRelation(r model.Relation) error {
	if _, err := model.ParseRelationType(string(r.RelationType)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEnumValue, err)
	}
	if r.SourceID == r.TargetID {
		return fmt.Errorf("%w: %s", ErrSelfLoop, r.SourceID)
	}
	if r.Confidence < 0 || r.Confidence > 1 {
		return fmt.Errorf("%w: edge %s->%s: confidence %v outside [0,1]", ErrMalformedItem, r.SourceID, r.TargetID, r.Confidence)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.claims[r.SourceID]; !ok {
		return fmt.Errorf("%w: source %s", ErrUnknownEndpoint, r.SourceID)
	}
	if _, ok := s.claims[r.TargetID]; !ok {
		return fmt.Errorf("%w: target %s", ErrUnknownEndpoint, r.TargetID)
	}

	idx := len(s.edges)
	s.edges = append(s.edges, r)
	s.out[r.SourceID] = append(s.out[r.SourceID], idx)
	s.in[r.TargetID] = append(s.in[r.TargetID], idx)
	return nil
}

// AddFallacy appends a fallacy annotation to a claim. Appending the same
// (claim, type, method) tuple again is a no-op, which keeps repeated
// analysis passes idempotent. Returns true if the annotation was stored.
func (s *Store) AddFallacy(a model.FallacyAnnotation) (bool, error) {
	if _, err := model.ParseFallacyType(string(a.FallacyType)); err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidEnumValue, err)
	}
	if _, err := model.ParseDetectionMethod(string(a.DetectionMethod)); err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidEnumValue, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.claims[a.ClaimID]; !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownClaim, a.ClaimID)
	}
	if s.fallacyKeys[a.Key()] {
		return false, nil
	}
	s.fallacyKeys[a.Key()] = true
	s.fallacies[a.ClaimID] = append(s.fallacies[a.ClaimID], a)
	return true, nil
}

// SetFactCheck records the fact-check collaborator's verdict for a claim,
// replacing any earlier verdict for the same claim.
func (s *Store) SetFactCheck(fc model.FactCheck) error {
	if _, err := model.ParseVerdict(string(fc.Verdict)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEnumValue, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.claims[fc.ClaimID]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownClaim, fc.ClaimID)
	}
	s.factchecks[fc.ClaimID] = fc
	return nil
}

// SetCycles replaces the detected cycle list
func (s *Store) SetCycles(cycles [][]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cycles = cycles
}

// SetDriftPoints replaces the topic-drift metadata
func (s *Store) SetDriftPoints(points []model.DriftPoint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drift = points
}

// SetRigorScores replaces the per-speaker rigor scores
func (s *Store) SetRigorScores(scores []model.SpeakerRigorScore) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rigor = scores
}

// Claim returns a claim by id
func (s *Store) Claim(id string) (model.Claim, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.claims[id]
	return c, ok
}

// HasClaim reports whether a claim id exists
func (s *Store) HasClaim(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.claims[id]
	return ok
}

// Claims returns all claims in insertion order
func (s *Store) Claims() []model.Claim {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Claim, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.claims[id])
	}
	return out
}

// ClaimsBySpeaker returns one speaker's claims in insertion order
func (s *Store) ClaimsBySpeaker(speaker string) []model.Claim {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Claim
	for _, id := range s.order {
		if c := s.claims[id]; c.Speaker == speaker {
			out = append(out, c)
		}
	}
	return out
}

// Speakers returns the distinct speaker labels, sorted
func (s *Store) Speakers() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]bool)
	var out []string
	for _, c := range s.claims {
		if !seen[c.Speaker] {
			seen[c.Speaker] = true
			out = append(out, c.Speaker)
		}
	}
	sort.Strings(out)
	return out
}

// Relations returns all edges in insertion order
func (s *Store) Relations() []model.Relation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Relation, len(s.edges))
	copy(out, s.edges)
	return out
}

// OutEdges returns the edges whose source is the given claim
func (s *Store) OutEdges(id string) []model.Relation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.edgesAt(s.out[id])
}

// InEdges returns the edges whose target is the given claim
func (s *Store) InEdges(id string) []model.Relation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.edgesAt(s.in[id])
}

func (s *Store) edgesAt(idxs []int) []model.Relation {
	if len(idxs) == 0 {
		return nil
	}
	out := make([]model.Relation, 0, len(idxs))
	for _, i := range idxs {
		out = append(out, s.edges[i])
	}
	return out
}

// Fallacies returns the annotations attached to a claim, in append order
func (s *Store) Fallacies(id string) []model.FallacyAnnotation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.FallacyAnnotation, len(s.fallacies[id]))
	copy(out, s.fallacies[id])
	return out
}

// FactCheck returns the recorded verdict for a claim, if any
func (s *Store) FactCheck(id string) (model.FactCheck, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fc, ok := s.factchecks[id]
	return fc, ok
}

// NumNodes returns the node count
func (s *Store) NumNodes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.claims)
}

// NumEdges returns the edge count
func (s *Store) NumEdges() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.edges)
}

// Snapshot exports the current graph state as an immutable copy. Nodes and
// edges appear in insertion order so a fixed graph always serializes the
// same way.
func (s *Store) Snapshot() model.GraphSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	nodes := make([]model.GraphNode, 0, len(s.order))
	for _, id := range s.order {
		c := s.claims[id]
		node := model.GraphNode{
			ID:               c.ID,
			Label:            truncate(c.Text, labelMaxLen),
			Speaker:          c.Speaker,
			Text:             c.Text,
			ClaimType:        c.ClaimType,
			TimestampStart:   c.TimestampStart,
			TimestampEnd:     c.TimestampEnd,
			Confidence:       c.Confidence,
			IsFactual:        c.IsFactual,
			FactcheckVerdict: model.VerdictPending,
			Fallacies:        append([]model.FallacyAnnotation{}, s.fallacies[id]...),
		}
		if fc, ok := s.factchecks[id]; ok {
			fcCopy := fc
			fcCopy.Sources = append([]string(nil), fc.Sources...)
			node.Factcheck = &fcCopy
			node.FactcheckVerdict = fc.Verdict
		}
		nodes = append(nodes, node)
	}

	edges := make([]model.GraphEdge, 0, len(s.edges))
	for _, r := range s.edges {
		edges = append(edges, model.GraphEdge{
			Source:       r.SourceID,
			Target:       r.TargetID,
			RelationType: r.RelationType,
			Confidence:   r.Confidence,
		})
	}

	cycles := make([][]string, 0, len(s.cycles))
	for _, c := range s.cycles {
		cycles = append(cycles, append([]string(nil), c...))
	}

	drift := make([]model.DriftPoint, 0, len(s.drift))
	for _, d := range s.drift {
		dCopy := d
		dCopy.ClaimIDs = append([]string(nil), d.ClaimIDs...)
		drift = append(drift, dCopy)
	}
	if len(drift) == 0 {
		drift = nil
	}

	return model.GraphSnapshot{
		Nodes:          nodes,
		Edges:          edges,
		RigorScores:    append([]model.SpeakerRigorScore{}, s.rigor...),
		CyclesDetected: cycles,
		DriftPoints:    drift,
		Stats:          s.statsLocked(),
	}
}

// Stats summarizes the graph structure
func (s *Store) Stats() model.GraphStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.statsLocked()
}

func (s *Store) statsLocked() model.GraphStats {
	stats := model.GraphStats{
		Nodes: len(s.claims),
		Edges: len(s.edges),
	}
	if stats.Nodes == 0 {
		return stats
	}

	stats.EdgeTypes = make(map[model.RelationType]int)
	for _, r := range s.edges {
		stats.EdgeTypes[r.RelationType]++
	}

	stats.SpeakerDistribution = make(map[string]int)
	for _, c := range s.claims {
		stats.SpeakerDistribution[c.Speaker]++
	}

	stats.ConnectedComponents = s.countComponentsLocked()
	if stats.Nodes > 1 {
		maxEdges := float64(stats.Nodes) * float64(stats.Nodes-1)
		stats.Density = float64(stats.Edges) / maxEdges
	}
	return stats
}

// countComponentsLocked counts weakly connected components
func (s *Store) countComponentsLocked() int {
	visited := make(map[string]bool, len(s.claims))
	components := 0
	for _, start := range s.order {
		if visited[start] {
			continue
		}
		components++
		queue := []string{start}
		visited[start] = true
		for len(queue) > 0 {
			id := queue[0]
			queue = queue[1:]
			for _, i := range s.out[id] {
				if next := s.edges[i].TargetID; !visited[next] {
					visited[next] = true
					queue = append(queue, next)
				}
			}
			for _, i := range s.in[id] {
				if next := s.edges[i].SourceID; !visited[next] {
					visited[next] = true
					queue = append(queue, next)
				}
			}
		}
	}
	return components
}

// truncate shortens s to at most n runes. Counting runes keeps multibyte
// text from being cut mid-character.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
