package analyze

import (
	"fmt"
	"sort"

	"github.com/debatelab/arguegraph/internal/graph"
	"github.com/debatelab/arguegraph/internal/model"
)

const goalPostRelatedClaimLimit = 3

// detectGoalPostMoving flags claims that were attacked by another speaker
// and then followed by new claims from the same speaker with no concession
// in between: the speaker kept arguing without acknowledging the challenge.
func (a *Analyzer) detectGoalPostMoving(st *graph.Store) []model.FallacyAnnotation {
	var out []model.FallacyAnnotation

	for _, speaker := range st.Speakers() {
		claims := st.ClaimsBySpeaker(speaker)
		sort.SliceStable(claims, func(i, j int) bool {
			return claims[i].TimestampStart < claims[j].TimestampStart
		})

		for i, c := range claims {
			var attackers []string
			for _, r := range st.InEdges(c.ID) {
				if r.RelationType != model.RelationAttack {
					continue
				}
				if src, ok := st.Claim(r.SourceID); ok && src.Speaker != speaker {
					attackers = append(attackers, src.ID)
				}
			}
			if len(attackers) == 0 {
				continue
			}

			var later []model.Claim
			for _, lc := range claims[i+1:] {
				if lc.TimestampStart > c.TimestampStart {
					later = append(later, lc)
				}
			}
			if len(later) == 0 {
				continue
			}

			conceded := false
			for _, lc := range later {
				if lc.ClaimType == model.ClaimConcession {
					conceded = true
					break
				}
			}
			if conceded {
				continue
			}

			related := append([]string{}, attackers...)
			for j, lc := range later {
				if j >= goalPostRelatedClaimLimit {
					break
				}
				related = append(related, lc.ID)
			}

			out = append(out, model.FallacyAnnotation{
				ClaimID:     c.ID,
				FallacyType: model.FallacyGoalPostMoving,
				Severity:    0.6,
				Explanation: fmt.Sprintf(
					"%s's claim was challenged but they moved on to new claims without conceding the original point.", speaker),
				SocraticQuestion: "Has the speaker acknowledged the challenge to their original claim?",
				RelatedClaimIDs:  related,
				DetectionMethod:  model.DetectionStructural,
			})
		}
	}

	return out
}
