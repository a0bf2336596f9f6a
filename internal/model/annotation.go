package model

import (
	"fmt"
	"strings"
)

// FallacyType classifies the reasoning defect attached to a claim
type FallacyType string

const (
	FallacyStrawman            FallacyType = "strawman"
	FallacyGoalPostMoving      FallacyType = "goal_post_moving"
	FallacyCircularReasoning   FallacyType = "circular_reasoning"
	FallacyAdHominem           FallacyType = "ad_hominem"
	FallacySlipperySlope       FallacyType = "slippery_slope"
	FallacyAppealToEmotion     FallacyType = "appeal_to_emotion"
	FallacyFalseDilemma        FallacyType = "false_dilemma"
	FallacyRedHerring          FallacyType = "red_herring"
	FallacyAppealToAuthority   FallacyType = "appeal_to_authority"
	FallacyHastyGeneralization FallacyType = "hasty_generalization"
	FallacyTuQuoque            FallacyType = "tu_quoque"
	FallacyEquivocation        FallacyType = "equivocation"
	FallacyNone                FallacyType = "none"
)

// fallacyAliases maps common LLM spelling variants to the canonical enum.
// Keys are compared after lowercasing and collapsing spaces/hyphens to
// underscores.
var fallacyAliases = map[string]FallacyType{
	"straw_man":              FallacyStrawman,
	"strawman_argument":      FallacyStrawman,
	"straw_man_argument":     FallacyStrawman,
	"moving_the_goalposts":   FallacyGoalPostMoving,
	"moving_goalposts":       FallacyGoalPostMoving,
	"goalpost_moving":        FallacyGoalPostMoving,
	"circular_argument":      FallacyCircularReasoning,
	"begging_the_question":   FallacyCircularReasoning,
	"circularity":            FallacyCircularReasoning,
	"personal_attack":        FallacyAdHominem,
	"appeal_to_fear":         FallacyAppealToEmotion,
	"emotional_appeal":       FallacyAppealToEmotion,
	"false_dichotomy":        FallacyFalseDilemma,
	"false_binary":           FallacyFalseDilemma,
	"either_or_fallacy":      FallacyFalseDilemma,
	"authority_appeal":       FallacyAppealToAuthority,
	"overgeneralization":     FallacyHastyGeneralization,
	"hasty_generalisation":   FallacyHastyGeneralization,
	"whataboutism":           FallacyTuQuoque,
	"you_too":                FallacyTuQuoque,
	"no_fallacy":             FallacyNone,
}

// ParseFallacyType normalizes a raw fallacy type string to the canonical
// enum, accepting known aliases. Unknown values are an error; callers skip
// and count the offending record.
func ParseFallacyType(s string) (FallacyType, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.ReplaceAll(norm, "-", "_")
	norm = strings.ReplaceAll(norm, " ", "_")

	switch FallacyType(norm) {
	case FallacyStrawman, FallacyGoalPostMoving, FallacyCircularReasoning,
		FallacyAdHominem, FallacySlipperySlope, FallacyAppealToEmotion,
		FallacyFalseDilemma, FallacyRedHerring, FallacyAppealToAuthority,
		FallacyHastyGeneralization, FallacyTuQuoque, FallacyEquivocation,
		FallacyNone:
		return FallacyType(norm), nil
	}

	if canonical, ok := fallacyAliases[norm]; ok {
		return canonical, nil
	}

	return "", fmt.Errorf("unknown fallacy type: %q", s)
}

// DetectionMethod records which layer produced a fallacy annotation
type DetectionMethod string

const (
	DetectionStructural DetectionMethod = "structural"
	DetectionRuleBased  DetectionMethod = "rule_based"
	DetectionLLM        DetectionMethod = "llm"
)

// ParseDetectionMethod validates a raw detection method string
func ParseDetectionMethod(s string) (DetectionMethod, error) {
	switch DetectionMethod(s) {
	case DetectionStructural, DetectionRuleBased, DetectionLLM:
		return DetectionMethod(s), nil
	default:
		return "", fmt.Errorf("unknown detection method: %q", s)
	}
}

// FallacyAnnotation is an append-only defect record attached to a claim.
// A given (claim, fallacy type, detection method) tuple appears at most once
// no matter how many analysis passes run.
type FallacyAnnotation struct {
	ClaimID          string          `json:"claim_id"`
	FallacyType      FallacyType     `json:"fallacy_type"`
	Severity         float64         `json:"severity"` // [0,1]
	Explanation      string          `json:"explanation"`
	SocraticQuestion string          `json:"socratic_question"`
	RelatedClaimIDs  []string        `json:"related_claim_ids,omitempty"`
	DetectionMethod  DetectionMethod `json:"detection_method"`
}

// Key returns the idempotence key for the annotation
func (a FallacyAnnotation) Key() string {
	return a.ClaimID + "|" + string(a.FallacyType) + "|" + string(a.DetectionMethod)
}
