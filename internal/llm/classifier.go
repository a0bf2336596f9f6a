package llm

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/debatelab/arguegraph/internal/model"
	"github.com/debatelab/arguegraph/internal/pipeline"
)

const classifierSystem = `You are a fallacy-classification service for debate analysis. You receive numbered claims from a live debate and identify informal fallacies in individual claims. You respond with JSON only, no prose.`

// Classifier asks the LLM to classify fallacies in claim text. Its raw
// findings re-enter the engine through the validated ingestion boundary
// (pipeline.AnnotationInput), so misspelled fallacy types or broken JSON can
// never corrupt the graph.
type Classifier struct {
	provider Provider
	config   Config
	logger   *log.Logger
}

// NewClassifier creates a classifier for the configured provider. Returns an
// error if no provider is configured.
func NewClassifier(config Config, logger *log.Logger) (*Classifier, error) {
	provider, err := NewProvider(config)
	if err != nil {
		return nil, err
	}
	if provider == nil {
		return nil, fmt.Errorf("no LLM provider configured")
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Classifier{provider: provider, config: config, logger: logger}, nil
}

// Provider exposes the underlying provider (for availability checks)
func (c *Classifier) Provider() Provider {
	return c.provider
}

// rawFinding is the shape we ask the model to produce per fallacy
type rawFinding struct {
	ClaimID          string   `json:"claim_id"`
	FallacyType      string   `json:"fallacy_type"`
	Severity         float64  `json:"severity"`
	Explanation      string   `json:"explanation"`
	SocraticQuestion string   `json:"socratic_question"`
	RelatedClaimIDs  []string `json:"related_claim_ids,omitempty"`
}

// ClassifyClaims sends the claims to the model in chunks and returns the
// parsed findings. A chunk that fails (transport or unparseable output) is
// logged and skipped; the remaining chunks still produce results.
func (c *Classifier) ClassifyClaims(ctx context.Context, claims []model.Claim) ([]pipeline.AnnotationInput, error) {
	chunkSize := c.config.ChunkSize
	if chunkSize <= 0 {
		chunkSize = 15
	}

	var out []pipeline.AnnotationInput
	var failed int
	var lastErr error

	for start := 0; start < len(claims); start += chunkSize {
		end := start + chunkSize
		if end > len(claims) {
			end = len(claims)
		}
		chunk := claims[start:end]

		findings, err := c.classifyChunk(ctx, chunk)
		if err != nil {
			failed++
			lastErr = err
			c.logger.Warn("fallacy classification chunk failed", "from", chunk[0].ID, "claims", len(chunk), "err", err)
			continue
		}
		out = append(out, findings...)
	}

	if failed > 0 && len(out) == 0 {
		return nil, fmt.Errorf("all classification chunks failed: %w", lastErr)
	}
	return out, nil
}

func (c *Classifier) classifyChunk(ctx context.Context, claims []model.Claim) ([]pipeline.AnnotationInput, error) {
	resp, err := c.provider.Complete(ctx, CompletionRequest{
		System: classifierSystem,
		Prompt: buildClassifyPrompt(claims),
	})
	if err != nil {
		return nil, err
	}

	var findings []rawFinding
	if err := UnmarshalResponse(resp.Text, &findings); err != nil {
		return nil, fmt.Errorf("parse classification response: %w", err)
	}

	known := make(map[string]bool, len(claims))
	for _, cl := range claims {
		known[cl.ID] = true
	}

	out := make([]pipeline.AnnotationInput, 0, len(findings))
	for _, f := range findings {
		// The model occasionally invents claim ids; drop those here, the
		// boundary would reject them anyway
		if !known[f.ClaimID] {
			c.logger.Debug("classifier referenced unknown claim", "claim_id", f.ClaimID)
			continue
		}
		out = append(out, pipeline.AnnotationInput{
			ClaimID:          f.ClaimID,
			FallacyType:      f.FallacyType,
			Severity:         f.Severity,
			Explanation:      f.Explanation,
			SocraticQuestion: f.SocraticQuestion,
			RelatedClaimIDs:  f.RelatedClaimIDs,
			DetectionMethod:  string(model.DetectionLLM),
		})
	}
	return out, nil
}

func buildClassifyPrompt(claims []model.Claim) string {
	var b strings.Builder
	b.WriteString("Identify informal fallacies in these debate claims.\n\nClaims:\n")
	for _, c := range claims {
		fmt.Fprintf(&b, "- id=%s speaker=%s type=%s text=%q\n", c.ID, c.Speaker, c.ClaimType, c.Text)
	}
	b.WriteString(`
Respond with a JSON array, one object per fallacy found (empty array if none):
[{"claim_id": "...", "fallacy_type": "...", "severity": 0.0-1.0, "explanation": "...", "socratic_question": "...", "related_claim_ids": []}]

Allowed fallacy_type values: strawman, goal_post_moving, circular_reasoning, ad_hominem, slippery_slope, appeal_to_emotion, false_dilemma, red_herring, appeal_to_authority, hasty_generalization, tu_quoque, equivocation.
Only flag clear cases. The socratic_question should invite the speaker to examine the flaw, not accuse.`)
	return b.String()
}
