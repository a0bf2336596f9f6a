package pipeline

import (
	"fmt"

	"github.com/debatelab/arguegraph/internal/graph"
	"github.com/debatelab/arguegraph/internal/model"
	"github.com/debatelab/arguegraph/internal/util"
)

// ClaimInput is the raw extraction-collaborator record for one claim. Enum
// fields arrive as strings and are validated here, at the ingestion boundary.
type ClaimInput struct {
	ID             string  `json:"id"`
	Speaker        string  `json:"speaker"`
	Text           string  `json:"text"`
	ClaimType      string  `json:"claim_type"`
	TimestampStart float64 `json:"timestamp_start"`
	TimestampEnd   float64 `json:"timestamp_end"`
	Confidence     float64 `json:"confidence"`
	IsFactual      bool    `json:"is_factual"`
}

// RelationInput is the raw extraction-collaborator record for one relation
type RelationInput struct {
	SourceID     string  `json:"source_id"`
	TargetID     string  `json:"target_id"`
	RelationType string  `json:"relation_type"`
	Confidence   float64 `json:"confidence"`
}

// Batch is one extraction-collaborator delivery: an ordered list of claims
// plus the relations among them (and previously ingested claims).
type Batch struct {
	Claims    []ClaimInput    `json:"claims"`
	Relations []RelationInput `json:"relations"`
}

// AnnotationInput is a fallacy record from the classification collaborator.
// Fallacy-type aliases are normalized to the canonical enum before storage.
type AnnotationInput struct {
	ClaimID          string   `json:"claim_id"`
	FallacyType      string   `json:"fallacy_type"`
	Severity         float64  `json:"severity"`
	Explanation      string   `json:"explanation"`
	SocraticQuestion string   `json:"socratic_question"`
	RelatedClaimIDs  []string `json:"related_claim_ids,omitempty"`
	DetectionMethod  string   `json:"detection_method,omitempty"`
}

// FactCheckInput is a verdict record from the fact-check collaborator
type FactCheckInput struct {
	ClaimID     string   `json:"claim_id"`
	Verdict     string   `json:"verdict"`
	Confidence  float64  `json:"confidence"`
	Explanation string   `json:"explanation,omitempty"`
	Sources     []string `json:"sources,omitempty"`
}

// ItemError records one skipped input record. Validation failures are local
// to the offending record and never abort the rest of the batch.
type ItemError struct {
	Kind string // claim, relation, annotation, factcheck
	ID   string // Offending record's id (or source->target for relations)
	Err  error
}

func (e ItemError) String() string {
	return fmt.Sprintf("%s %s: %v", e.Kind, e.ID, e.Err)
}

// IngestReport summarizes one boundary crossing: how much was accepted and
// which records were skipped.
type IngestReport struct {
	ClaimsAdded       int
	RelationsAdded    int
	AnnotationsAdded  int
	FactChecksApplied int
	Skipped           []ItemError
}

// Merge folds another report into this one
func (r *IngestReport) Merge(other IngestReport) {
	r.ClaimsAdded += other.ClaimsAdded
	r.RelationsAdded += other.RelationsAdded
	r.AnnotationsAdded += other.AnnotationsAdded
	r.FactChecksApplied += other.FactChecksApplied
	r.Skipped = append(r.Skipped, other.Skipped...)
}

// ingestBatch validates every record and inserts the valid ones. Claims are
// inserted before relations so that intra-batch references resolve.
func ingestBatch(st *graph.Store, b Batch) IngestReport {
	var report IngestReport

	for _, in := range b.Claims {
		ct, err := model.ParseClaimType(in.ClaimType)
		if err != nil {
			report.Skipped = append(report.Skipped, ItemError{Kind: "claim", ID: in.ID, Err: fmt.Errorf("%w: %v", graph.ErrInvalidEnumValue, err)})
			continue
		}
		claim := model.Claim{
			ID:             in.ID,
			Speaker:        in.Speaker,
			Text:           in.Text,
			ClaimType:      ct,
			TimestampStart: in.TimestampStart,
			TimestampEnd:   in.TimestampEnd,
			Confidence:     in.Confidence,
			IsFactual:      in.IsFactual,
		}
		if err := st.AddClaim(claim); err != nil {
			report.Skipped = append(report.Skipped, ItemError{Kind: "claim", ID: in.ID, Err: err})
			continue
		}
		report.ClaimsAdded++
	}

	for _, in := range b.Relations {
		edgeID := in.SourceID + "->" + in.TargetID
		rt, err := model.ParseRelationType(in.RelationType)
		if err != nil {
			report.Skipped = append(report.Skipped, ItemError{Kind: "relation", ID: edgeID, Err: fmt.Errorf("%w: %v", graph.ErrInvalidEnumValue, err)})
			continue
		}
		rel := model.Relation{
			SourceID:     in.SourceID,
			TargetID:     in.TargetID,
			RelationType: rt,
			Confidence:   in.Confidence,
		}
		if err := st.AddRelation(rel); err != nil {
			report.Skipped = append(report.Skipped, ItemError{Kind: "relation", ID: edgeID, Err: err})
			continue
		}
		report.RelationsAdded++
	}

	return report
}

// applyAnnotations normalizes and stores classification-collaborator records.
// Records typed "none" are the collaborator's explicit no-finding and are
// dropped without counting as errors.
func applyAnnotations(st *graph.Store, anns []AnnotationInput) IngestReport {
	var report IngestReport

	for _, in := range anns {
		ft, err := model.ParseFallacyType(in.FallacyType)
		if err != nil {
			report.Skipped = append(report.Skipped, ItemError{Kind: "annotation", ID: in.ClaimID, Err: fmt.Errorf("%w: %v", graph.ErrInvalidEnumValue, err)})
			continue
		}
		if ft == model.FallacyNone {
			continue
		}

		method := model.DetectionLLM
		if in.DetectionMethod != "" {
			method, err = model.ParseDetectionMethod(in.DetectionMethod)
			if err != nil {
				report.Skipped = append(report.Skipped, ItemError{Kind: "annotation", ID: in.ClaimID, Err: fmt.Errorf("%w: %v", graph.ErrInvalidEnumValue, err)})
				continue
			}
		}

		ann := model.FallacyAnnotation{
			ClaimID:          in.ClaimID,
			FallacyType:      ft,
			Severity:         util.Clamp01(in.Severity),
			Explanation:      in.Explanation,
			SocraticQuestion: in.SocraticQuestion,
			RelatedClaimIDs:  in.RelatedClaimIDs,
			DetectionMethod:  method,
		}
		added, err := st.AddFallacy(ann)
		if err != nil {
			report.Skipped = append(report.Skipped, ItemError{Kind: "annotation", ID: in.ClaimID, Err: err})
			continue
		}
		if added {
			report.AnnotationsAdded++
		}
	}

	return report
}

// applyFactChecks validates and stores fact-check-collaborator verdicts
func applyFactChecks(st *graph.Store, checks []FactCheckInput) IngestReport {
	var report IngestReport

	for _, in := range checks {
		verdict, err := model.ParseVerdict(in.Verdict)
		if err != nil {
			report.Skipped = append(report.Skipped, ItemError{Kind: "factcheck", ID: in.ClaimID, Err: fmt.Errorf("%w: %v", graph.ErrInvalidEnumValue, err)})
			continue
		}
		fc := model.FactCheck{
			ClaimID:     in.ClaimID,
			Verdict:     verdict,
			Confidence:  util.Clamp01(in.Confidence),
			Explanation: in.Explanation,
			Sources:     in.Sources,
		}
		if err := st.SetFactCheck(fc); err != nil {
			report.Skipped = append(report.Skipped, ItemError{Kind: "factcheck", ID: in.ClaimID, Err: err})
			continue
		}
		report.FactChecksApplied++
	}

	return report
}
