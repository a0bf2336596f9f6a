package model

import "fmt"

// Claim represents an atomic, speaker-attributed statement extracted from speech
type Claim struct {
	ID             string    `json:"id"`                 // Unique, stable for the graph's lifetime
	Speaker        string    `json:"speaker"`            // Free-form speaker label (e.g., "SPEAKER_00")
	Text           string    `json:"text"`               // The claim text itself
	ClaimType      ClaimType `json:"claim_type"`         // premise, conclusion, concession, rebuttal
	TimestampStart float64   `json:"timestamp_start"`    // Seconds from session start
	TimestampEnd   float64   `json:"timestamp_end"`      // Seconds, >= TimestampStart
	Confidence     float64   `json:"confidence"`         // Extraction confidence [0,1]
	IsFactual      bool      `json:"is_factual"`         // Whether the claim is fact-checkable
}

// ClaimType categorizes the argumentative role of a claim
type ClaimType string

const (
	ClaimPremise    ClaimType = "premise"
	ClaimConclusion ClaimType = "conclusion"
	ClaimConcession ClaimType = "concession"
	ClaimRebuttal   ClaimType = "rebuttal"
)

// ParseClaimType validates a raw claim type string against the enumerated set
func ParseClaimType(s string) (ClaimType, error) {
	switch ClaimType(s) {
	case ClaimPremise, ClaimConclusion, ClaimConcession, ClaimRebuttal:
		return ClaimType(s), nil
	default:
		return "", fmt.Errorf("unknown claim type: %q", s)
	}
}

// Relation represents a directed argumentative edge between two claims.
// Direction encodes argumentative role (source acts upon target), not
// chronology: two edges between the same claims in opposite semantic roles
// are distinct entities.
type Relation struct {
	SourceID     string       `json:"source_id"`
	TargetID     string       `json:"target_id"`
	RelationType RelationType `json:"relation_type"`
	Confidence   float64      `json:"confidence"`
}

// RelationType categorizes the argumentative link between two claims
type RelationType string

const (
	RelationSupport       RelationType = "support"
	RelationAttack        RelationType = "attack"
	RelationUndercut      RelationType = "undercut"
	RelationReformulation RelationType = "reformulation"
	RelationImplication   RelationType = "implication"
)

// ParseRelationType validates a raw relation type string against the enumerated set
func ParseRelationType(s string) (RelationType, error) {
	switch RelationType(s) {
	case RelationSupport, RelationAttack, RelationUndercut, RelationReformulation, RelationImplication:
		return RelationType(s), nil
	default:
		return "", fmt.Errorf("unknown relation type: %q", s)
	}
}
