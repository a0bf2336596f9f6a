package model

// GraphNode is the snapshot view of a claim with everything attached to it
type GraphNode struct {
	ID               string              `json:"id"`
	Label            string              `json:"label"` // Text truncated for display
	Speaker          string              `json:"speaker"`
	Text             string              `json:"text"`
	ClaimType        ClaimType           `json:"claim_type"`
	TimestampStart   float64             `json:"timestamp_start"`
	TimestampEnd     float64             `json:"timestamp_end"`
	Confidence       float64             `json:"confidence"`
	IsFactual        bool                `json:"is_factual"`
	FactcheckVerdict Verdict             `json:"factcheck_verdict"`
	Factcheck        *FactCheck          `json:"factcheck,omitempty"`
	Fallacies        []FallacyAnnotation `json:"fallacies"`
}

// GraphEdge is the snapshot view of a relation
type GraphEdge struct {
	Source       string       `json:"source"`
	Target       string       `json:"target"`
	RelationType RelationType `json:"relation_type"`
	Confidence   float64      `json:"confidence"`
}

// SpeakerRigorScore is the composite per-speaker metric, fully recomputed
// on each analysis pass from the current graph and annotations.
type SpeakerRigorScore struct {
	Speaker               string  `json:"speaker"`
	OverallScore          float64 `json:"overall_score"`
	SupportedRatio        float64 `json:"supported_ratio"`
	FallacyCount          int     `json:"fallacy_count"`
	FallacyPenalty        float64 `json:"fallacy_penalty"`
	FactcheckPositiveRate float64 `json:"factcheck_positive_rate"`
	InternalConsistency   float64 `json:"internal_consistency"`
	DirectResponseRate    float64 `json:"direct_response_rate"`
}

// DriftPoint marks a window of claims that lost graph-connectivity to the
// debate's initial topic set. Reported as metadata, not as a fallacy.
type DriftPoint struct {
	Timestamp    float64  `json:"timestamp"`    // Start of the drifting window
	Connectivity float64  `json:"connectivity"` // Fraction of the window connected to the topic set
	ClaimIDs     []string `json:"claim_ids"`    // Window members, chronological
}

// GraphStats summarizes the structure of the graph after a pass
type GraphStats struct {
	Nodes               int                  `json:"nodes"`
	Edges               int                  `json:"edges"`
	EdgeTypes           map[RelationType]int `json:"edge_types,omitempty"`
	SpeakerDistribution map[string]int       `json:"speaker_distribution,omitempty"`
	ConnectedComponents int                  `json:"connected_components"`
	Density             float64              `json:"density"`
}

// GraphSnapshot is the self-contained payload handed to downstream
// consumers (visualization, persistence). It is an immutable copy: later
// graph mutation never changes an already-emitted snapshot.
type GraphSnapshot struct {
	Nodes          []GraphNode         `json:"nodes"`
	Edges          []GraphEdge         `json:"edges"`
	RigorScores    []SpeakerRigorScore `json:"rigor_scores"`
	CyclesDetected [][]string          `json:"cycles_detected"`
	DriftPoints    []DriftPoint        `json:"drift_points,omitempty"`
	Stats          GraphStats          `json:"stats"`
}
