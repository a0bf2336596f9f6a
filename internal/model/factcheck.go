package model

import "fmt"

// Verdict is the outcome of fact-checking a single claim
type Verdict string

const (
	VerdictSupported     Verdict = "supported"
	VerdictRefuted       Verdict = "refuted"
	VerdictPartiallyTrue Verdict = "partially_true"
	VerdictUnverifiable  Verdict = "unverifiable"
	VerdictPending       Verdict = "pending" // Not yet checked
)

// ParseVerdict validates a raw verdict string against the enumerated set.
// "pending" is internal state and not accepted from collaborators.
func ParseVerdict(s string) (Verdict, error) {
	switch Verdict(s) {
	case VerdictSupported, VerdictRefuted, VerdictPartiallyTrue, VerdictUnverifiable:
		return Verdict(s), nil
	default:
		return "", fmt.Errorf("unknown verdict: %q", s)
	}
}

// FactCheck is the fact-check collaborator's result for one claim
type FactCheck struct {
	ClaimID     string   `json:"claim_id"`
	Verdict     Verdict  `json:"verdict"`
	Confidence  float64  `json:"confidence"`
	Explanation string   `json:"explanation,omitempty"`
	Sources     []string `json:"sources,omitempty"`
}
