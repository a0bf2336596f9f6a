package score

import (
	"sort"

	"github.com/debatelab/arguegraph/internal/graph"
	"github.com/debatelab/arguegraph/internal/model"
	"github.com/debatelab/arguegraph/internal/util"
)

// maxFallacyPenalty caps how much accumulated fallacies can cost a speaker
const maxFallacyPenalty = 0.5

// Scorer computes the composite per-speaker rigor score. It is a pure
// function of the current graph and annotation state: scores are fully
// recomputed on every pass, never merged incrementally, so a fixed graph
// always yields identical output.
type Scorer struct {
	cfg model.ScoreConfig
}

// NewScorer creates a scorer with the given weighting configuration
func NewScorer(cfg model.ScoreConfig) *Scorer {
	return &Scorer{cfg: cfg}
}

// Score computes one SpeakerRigorScore per distinct speaker, sorted by
// speaker label.
func (s *Scorer) Score(st *graph.Store) []model.SpeakerRigorScore {
	speakers := st.Speakers()
	scores := make([]model.SpeakerRigorScore, 0, len(speakers))

	for _, speaker := range speakers {
		claims := st.ClaimsBySpeaker(speaker)
		if len(claims) == 0 {
			continue
		}

		supported := s.supportedRatio(st, claims)
		fallacyCount, penalty := s.fallacyPenalty(st, claims)
		fcRate := s.factcheckPositiveRate(st, claims)
		consistency := s.internalConsistency(st, speaker, claims)
		response := s.directResponseRate(st, speaker, claims)

		w := s.cfg.Weights
		overall := supported*w.SupportedRatio +
			(1-penalty)*w.FallacyPenalty +
			fcRate*w.FactcheckRate +
			consistency*w.InternalConsistency +
			response*w.DirectResponseRate

		scores = append(scores, model.SpeakerRigorScore{
			Speaker:               speaker,
			OverallScore:          util.Round3(util.Clamp01(overall)),
			SupportedRatio:        util.Round3(supported),
			FallacyCount:          fallacyCount,
			FallacyPenalty:        util.Round3(penalty),
			FactcheckPositiveRate: util.Round3(fcRate),
			InternalConsistency:   util.Round3(consistency),
			DirectResponseRate:    util.Round3(response),
		})
	}

	sort.Slice(scores, func(i, j int) bool { return scores[i].Speaker < scores[j].Speaker })
	return scores
}

// supportedRatio is the fraction of the speaker's factual claims whose
// fact-check verdict is supported; partially_true earns partial credit
// (PartialTrueWeight, default 0.5). Neutral 0.5 when the speaker made no
// factual claims.
func (s *Scorer) supportedRatio(st *graph.Store, claims []model.Claim) float64 {
	factual := 0
	credit := 0.0
	for _, c := range claims {
		if !c.IsFactual {
			continue
		}
		factual++
		fc, ok := st.FactCheck(c.ID)
		if !ok {
			continue
		}
		switch fc.Verdict {
		case model.VerdictSupported:
			credit += 1
		case model.VerdictPartiallyTrue:
			credit += s.cfg.PartialTrueWeight
		}
	}
	if factual == 0 {
		return 0.5
	}
	return credit / float64(factual)
}

// fallacyPenalty accumulates the severities of annotations attributed to
// the speaker's claims, 0.1 per severity point, capped at 0.5.
func (s *Scorer) fallacyPenalty(st *graph.Store, claims []model.Claim) (int, float64) {
	count := 0
	var severity float64
	for _, c := range claims {
		for _, a := range st.Fallacies(c.ID) {
			count++
			severity += a.Severity
		}
	}
	penalty := severity * 0.1
	if penalty > maxFallacyPenalty {
		penalty = maxFallacyPenalty
	}
	return count, penalty
}

// factcheckPositiveRate is the fraction of checked factual claims whose
// verdict is non-negative (anything but refuted). Neutral 0.5 when nothing
// has been checked yet.
func (s *Scorer) factcheckPositiveRate(st *graph.Store, claims []model.Claim) float64 {
	checked := 0
	positive := 0
	for _, c := range claims {
		if !c.IsFactual {
			continue
		}
		fc, ok := st.FactCheck(c.ID)
		if !ok || fc.Verdict == model.VerdictPending {
			continue
		}
		checked++
		if fc.Verdict != model.VerdictRefuted {
			positive++
		}
	}
	if checked == 0 {
		return 0.5
	}
	return float64(positive) / float64(checked)
}

// internalConsistency is 1 minus the fraction of the speaker's claims
// involved in an attack edge against another of their own claims.
func (s *Scorer) internalConsistency(st *graph.Store, speaker string, claims []model.Claim) float64 {
	involved := make(map[string]bool)
	for _, c := range claims {
		for _, r := range st.OutEdges(c.ID) {
			if r.RelationType != model.RelationAttack {
				continue
			}
			if tgt, ok := st.Claim(r.TargetID); ok && tgt.Speaker == speaker {
				involved[r.SourceID] = true
				involved[r.TargetID] = true
			}
		}
	}
	return 1 - float64(len(involved))/float64(len(claims))
}

// directResponseRate measures how often a challenge (attack/undercut from
// another speaker against one of this speaker's claims) is answered: a later
// claim by the speaker linked by an edge to the attacking claim, or any
// later concession. 1.0 when the speaker was never challenged.
func (s *Scorer) directResponseRate(st *graph.Store, speaker string, claims []model.Claim) float64 {
	challenges := 0
	answered := 0

	for _, c := range claims {
		for _, r := range st.InEdges(c.ID) {
			if r.RelationType != model.RelationAttack && r.RelationType != model.RelationUndercut {
				continue
			}
			attacker, ok := st.Claim(r.SourceID)
			if !ok || attacker.Speaker == speaker {
				continue
			}
			challenges++
			if s.answersChallenge(st, speaker, claims, attacker) {
				answered++
			}
		}
	}

	if challenges == 0 {
		return 1.0
	}
	return float64(answered) / float64(challenges)
}

func (s *Scorer) answersChallenge(st *graph.Store, speaker string, claims []model.Claim, attacker model.Claim) bool {
	for _, c := range claims {
		if c.TimestampStart <= attacker.TimestampStart {
			continue
		}
		if c.ClaimType == model.ClaimConcession {
			return true
		}
		for _, r := range st.OutEdges(c.ID) {
			if r.TargetID == attacker.ID {
				return true
			}
		}
		for _, r := range st.InEdges(c.ID) {
			if r.SourceID == attacker.ID {
				return true
			}
		}
	}
	return false
}
