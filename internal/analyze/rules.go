package analyze

import (
	"strings"

	"github.com/debatelab/arguegraph/internal/graph"
	"github.com/debatelab/arguegraph/internal/model"
)

// fallacyRule is a marker-phrase heuristic that fires on claim text alone
type fallacyRule struct {
	fallacyType model.FallacyType
	severity    float64
	markers     []string
	explanation string
	question    string
}

var textRules = []fallacyRule{
	{
		fallacyType: model.FallacyAdHominem,
		severity:    0.6,
		markers: []string{
			"you always", "you never", "people like you",
			"you're just", "you don't understand",
			"you're not qualified", "what do you know about",
		},
		explanation: "This statement appears to attack the person rather than their argument.",
		question:    "Is this criticism directed at the argument itself, or at the person making it?",
	},
	{
		fallacyType: model.FallacyFalseDilemma,
		severity:    0.6,
		markers: []string{
			"either we", "either you", "it's either",
			"the only option", "there are only two",
			"you're either with", "it's all or nothing",
		},
		explanation: "This presents a binary choice where more options may exist.",
		question:    "Are these really the only two options?",
	},
	{
		fallacyType: model.FallacySlipperySlope,
		severity:    0.5,
		markers: []string{
			"will lead to", "will inevitably", "will end up",
			"next thing you know", "before you know it",
		},
		explanation: "This suggests an inevitable chain of consequences without justification.",
		question:    "Is each step in this chain actually inevitable?",
	},
	{
		fallacyType: model.FallacyStrawman,
		severity:    0.6,
		markers: []string{
			"so you're saying", "what you're really saying",
			"you're suggesting that", "you want to",
		},
		explanation: "This may be mischaracterizing the opponent's actual position.",
		question:    "Is this an accurate representation of what the other speaker argued?",
	},
}

// detectByRules runs the marker-phrase heuristics over every claim. These
// fire on wording alone and carry detection_method=rule_based so downstream
// consumers can weigh them apart from structural findings.
func (a *Analyzer) detectByRules(st *graph.Store) []model.FallacyAnnotation {
	var out []model.FallacyAnnotation

	for _, c := range st.Claims() {
		text := strings.ToLower(c.Text)
		for _, rule := range textRules {
			for _, marker := range rule.markers {
				if strings.Contains(text, marker) {
					out = append(out, model.FallacyAnnotation{
						ClaimID:          c.ID,
						FallacyType:      rule.fallacyType,
						Severity:         rule.severity,
						Explanation:      rule.explanation,
						SocraticQuestion: rule.question,
						DetectionMethod:  model.DetectionRuleBased,
					})
					break
				}
			}
		}
	}

	return out
}
