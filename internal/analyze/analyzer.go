package analyze

import (
	"fmt"
	"strings"

	"github.com/debatelab/arguegraph/internal/graph"
	"github.com/debatelab/arguegraph/internal/model"
)

// Analyzer runs the structural fallacy detectors over a graph store. Each
// pass takes the graph from unanalyzed-delta to analyzed. Detectors are
// order-independent: none mutates nodes or edges, they only append fallacy
// annotations and replace the cycle/drift metadata.
//
// Re-running a pass on an unchanged graph is idempotent: the store drops
// annotations whose (claim, type, method) key already exists, and the cycle
// list is rebuilt canonically every time.
type Analyzer struct {
	cfg model.AnalysisConfig
}

// NewAnalyzer creates an analyzer with the given detector configuration
func NewAnalyzer(cfg model.AnalysisConfig) *Analyzer {
	return &Analyzer{cfg: cfg}
}

// PassReport summarizes one analysis pass
type PassReport struct {
	Cycles         [][]string
	DriftPoints    []model.DriftPoint
	NewAnnotations int
}

// Run executes all detectors against the store and writes annotations,
// cycles and drift metadata back. Pure CPU work, no I/O. An error here
// means the store rejected an annotation the detectors derived from its own
// contents, which indicates graph corruption.
func (a *Analyzer) Run(st *graph.Store) (PassReport, error) {
	var report PassReport

	report.Cycles = DetectCycles(st)
	st.SetCycles(report.Cycles)

	var annotations []model.FallacyAnnotation
	for _, cycle := range report.Cycles {
		if len(cycle) < 2 {
			continue
		}
		annotations = append(annotations, model.FallacyAnnotation{
			ClaimID:          cycle[0],
			FallacyType:      model.FallacyCircularReasoning,
			Severity:         0.7,
			Explanation:      explainCycle(st, cycle),
			SocraticQuestion: "Can any of these claims stand on its own without relying on the others?",
			RelatedClaimIDs:  append([]string{}, cycle[1:]...),
			DetectionMethod:  model.DetectionStructural,
		})
	}

	annotations = append(annotations, a.detectStrawmen(st)...)
	annotations = append(annotations, a.detectGoalPostMoving(st)...)
	if a.cfg.RuleBased {
		annotations = append(annotations, a.detectByRules(st)...)
	}

	for _, ann := range annotations {
		added, err := st.AddFallacy(ann)
		if err != nil {
			return report, fmt.Errorf("annotate claim %s: %w", ann.ClaimID, err)
		}
		if added {
			report.NewAnnotations++
		}
	}

	report.DriftPoints = a.detectTopicDrift(st)
	st.SetDriftPoints(report.DriftPoints)

	return report, nil
}

// FormatCycle renders a cycle as "c1 -> c2 -> c3 -> c1" for logs
func FormatCycle(cycle []string) string {
	if len(cycle) == 0 {
		return ""
	}
	return strings.Join(cycle, " -> ") + " -> " + cycle[0]
}
