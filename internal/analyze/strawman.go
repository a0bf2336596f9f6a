package analyze

import (
	"fmt"

	"github.com/debatelab/arguegraph/internal/graph"
	"github.com/debatelab/arguegraph/internal/model"
	"github.com/debatelab/arguegraph/internal/util"
)

// detectStrawmen flags cross-speaker attack edges whose attacker text bears
// little resemblance to the claim being attacked. The cross-speaker attack
// is only a coarse pre-filter; the similarity threshold is authoritative.
func (a *Analyzer) detectStrawmen(st *graph.Store) []model.FallacyAnnotation {
	var out []model.FallacyAnnotation

	for _, r := range st.Relations() {
		if r.RelationType != model.RelationAttack {
			continue
		}
		src, okSrc := st.Claim(r.SourceID)
		tgt, okTgt := st.Claim(r.TargetID)
		if !okSrc || !okTgt || src.Speaker == tgt.Speaker {
			continue
		}

		sim := util.CosineSimilarity(src.Text, tgt.Text)
		if sim >= a.cfg.StrawmanSimilarityThreshold {
			continue
		}

		out = append(out, model.FallacyAnnotation{
			ClaimID:     src.ID,
			FallacyType: model.FallacyStrawman,
			Severity:    0.5,
			Explanation: fmt.Sprintf(
				"%s attacks %s's claim but the attack shares little wording with it (similarity %.2f), suggesting the original argument may be misrepresented.",
				src.Speaker, tgt.Speaker, sim),
			SocraticQuestion: "Does this response accurately address what the other speaker actually said?",
			RelatedClaimIDs:  []string{tgt.ID},
			DetectionMethod:  model.DetectionStructural,
		})
	}

	return out
}
