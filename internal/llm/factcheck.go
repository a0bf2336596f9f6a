package llm

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/debatelab/arguegraph/internal/cache"
	"github.com/debatelab/arguegraph/internal/model"
	"github.com/debatelab/arguegraph/internal/pipeline"
)

const factCheckSystem = `You are a fact-checking service for debate analysis. You receive one factual claim at a time and assess how well it holds up against commonly known, verifiable information. You respond with JSON only, no prose. When you cannot verify a claim, say so: "unverifiable" is always an acceptable verdict.`

// FactChecker asks the LLM to synthesize a verdict for one factual claim.
// Verdicts are cached by claim text. A response that cannot be parsed, or
// carries a verdict outside the enumerated set, degrades to an explicit
// unverifiable result rather than an error: only transport failures are
// errors.
type FactChecker struct {
	provider Provider
	cache    *cache.VerdictCache // nil disables caching
	config   Config
	logger   *log.Logger
}

// NewFactChecker creates a fact-checker for the configured provider
func NewFactChecker(config Config, verdicts *cache.VerdictCache, logger *log.Logger) (*FactChecker, error) {
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
	return &FactChecker{provider: provider, cache: verdicts, config: config, logger: logger}, nil
}

// Provider exposes the underlying provider (for availability checks)
func (f *FactChecker) Provider() Provider {
	return f.provider
}

// rawVerdict is the shape we ask the model to produce
type rawVerdict struct {
	Verdict     string   `json:"verdict"`
	Confidence  float64  `json:"confidence"`
	Explanation string   `json:"explanation"`
	Sources     []string `json:"sources,omitempty"`
}

// CheckClaim fact-checks a single claim
func (f *FactChecker) CheckClaim(ctx context.Context, claim model.Claim) (pipeline.FactCheckInput, error) {
	if f.cache != nil {
		if fc, found := f.cache.Get(claim.ID, claim.Text); found {
			f.logger.Debug("fact-check cache hit", "claim_id", claim.ID)
			return pipeline.FactCheckInput{
				ClaimID:     fc.ClaimID,
				Verdict:     string(fc.Verdict),
				Confidence:  fc.Confidence,
				Explanation: fc.Explanation,
				Sources:     fc.Sources,
			}, nil
		}
	}

	resp, err := f.provider.Complete(ctx, CompletionRequest{
		System: factCheckSystem,
		Prompt: buildFactCheckPrompt(claim),
	})
	if err != nil {
		return pipeline.FactCheckInput{}, fmt.Errorf("fact-check claim %s: %w", claim.ID, err)
	}

	result := f.parseVerdict(claim, resp.Text)

	if f.cache != nil {
		verdict, err := model.ParseVerdict(result.Verdict)
		if err == nil {
			cacheErr := f.cache.Set(claim.Text, model.FactCheck{
				ClaimID:     claim.ID,
				Verdict:     verdict,
				Confidence:  result.Confidence,
				Explanation: result.Explanation,
				Sources:     result.Sources,
			})
			if cacheErr != nil {
				f.logger.Warn("fact-check cache write failed", "claim_id", claim.ID, "err", cacheErr)
			}
		}
	}

	return result, nil
}

// parseVerdict converts the model's answer into an ingestion record, falling
// back to unverifiable when the answer is unusable.
func (f *FactChecker) parseVerdict(claim model.Claim, text string) pipeline.FactCheckInput {
	var raw rawVerdict
	if err := UnmarshalResponse(text, &raw); err != nil {
		f.logger.Warn("unparseable fact-check response", "claim_id", claim.ID, "err", err)
		return unverifiable(claim.ID, "fact-check response could not be parsed")
	}

	if _, err := model.ParseVerdict(raw.Verdict); err != nil {
		f.logger.Warn("fact-check verdict outside enum", "claim_id", claim.ID, "verdict", raw.Verdict)
		return unverifiable(claim.ID, fmt.Sprintf("model returned unrecognized verdict %q", raw.Verdict))
	}

	return pipeline.FactCheckInput{
		ClaimID:     claim.ID,
		Verdict:     raw.Verdict,
		Confidence:  raw.Confidence,
		Explanation: raw.Explanation,
		Sources:     raw.Sources,
	}
}

func unverifiable(claimID, reason string) pipeline.FactCheckInput {
	return pipeline.FactCheckInput{
		ClaimID:     claimID,
		Verdict:     string(model.VerdictUnverifiable),
		Confidence:  0,
		Explanation: reason,
	}
}

func buildFactCheckPrompt(claim model.Claim) string {
	return fmt.Sprintf(`Fact-check this claim from a debate:

Speaker: %s
Claim: %q

Respond with a JSON object:
{"verdict": "supported|refuted|partially_true|unverifiable", "confidence": 0.0-1.0, "explanation": "...", "sources": ["..."]}

Base the verdict only on well-established information. If the claim is too vague, opinion-like, or outside common knowledge, use "unverifiable".`, claim.Speaker, claim.Text)
}
