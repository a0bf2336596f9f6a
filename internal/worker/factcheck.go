package worker

import (
	"context"

	"github.com/debatelab/arguegraph/internal/model"
	"github.com/debatelab/arguegraph/internal/pipeline"
)

// Checker fact-checks one claim
type Checker interface {
	CheckClaim(ctx context.Context, claim model.Claim) (pipeline.FactCheckInput, error)
}

// FactCheckJob fact-checks a single claim through the shared limiter
type FactCheckJob struct {
	Claim    model.Claim
	Checker  Checker
	Limiter  *Limiter
	Provider string
}

// Execute executes the fact-check job
func (j *FactCheckJob) Execute(ctx context.Context) Result {
	if j.Limiter != nil {
		if err := j.Limiter.Wait(ctx, j.Provider); err != nil {
			return &FactCheckResult{ClaimID: j.Claim.ID, Error: err}
		}
	}

	input, err := j.Checker.CheckClaim(ctx, j.Claim)
	if err != nil {
		return &FactCheckResult{ClaimID: j.Claim.ID, Error: err}
	}
	return &FactCheckResult{ClaimID: j.Claim.ID, Input: input}
}

// FactCheckResult is the outcome of one fact-check job
type FactCheckResult struct {
	ClaimID string
	Input   pipeline.FactCheckInput
	Error   error
}

// GetError returns the error from the fact-check result
func (r *FactCheckResult) GetError() error {
	return r.Error
}

// FactCheckProcessor fans factual claims out to the fact-check collaborator,
// bounded by the pool size and the per-provider rate limit.
type FactCheckProcessor struct {
	checker     Checker
	provider    string
	concurrency int
	limiter     *Limiter
}

// NewFactCheckProcessor creates a new fact-check processor
func NewFactCheckProcessor(checker Checker, provider string, concurrency int, requestsPerSecond float64) *FactCheckProcessor {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &FactCheckProcessor{
		checker:     checker,
		provider:    provider,
		concurrency: concurrency,
		limiter:     NewLimiter(requestsPerSecond, concurrency),
	}
}

// CheckClaims fact-checks every factual claim concurrently. Claims with
// is_factual=false are not dispatched. Failed checks are returned separately
// and never suppress the successful ones.
func (p *FactCheckProcessor) CheckClaims(ctx context.Context, claims []model.Claim) ([]pipeline.FactCheckInput, []error) {
	factual := make([]model.Claim, 0, len(claims))
	for _, c := range claims {
		if c.IsFactual {
			factual = append(factual, c)
		}
	}
	if len(factual) == 0 {
		return nil, nil
	}

	pool := NewPool(p.concurrency)
	pool.Start()

	for _, c := range factual {
		pool.Submit(&FactCheckJob{
			Claim:    c,
			Checker:  p.checker,
			Limiter:  p.limiter,
			Provider: p.provider,
		})
	}

	results := pool.Wait()

	var inputs []pipeline.FactCheckInput
	var errs []error
	for _, r := range results {
		res := r.(*FactCheckResult)
		if res.Error != nil {
			errs = append(errs, res.Error)
			continue
		}
		inputs = append(inputs, res.Input)
	}
	return inputs, errs
}
