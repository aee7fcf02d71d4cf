package rewards

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/openrewards/cardperk/internal/domain"
)

// Processor runs the full evaluation pipeline for one spend: cascade
// expansion, rate selection, capping, and assembly of the persisted
// Evaluation record.
type Processor struct {
	evaluator *Evaluator
}

// NewProcessor creates a processor over the given evaluator.
func NewProcessor(evaluator *Evaluator) *Processor {
	return &Processor{evaluator: evaluator}
}

// ProcessInput carries everything the processor needs for one spend.
type ProcessInput struct {
	TenantID  string
	SpendID   string
	TraceID   string
	Input     *domain.SpendInput
	Promos    []domain.PromoResult
	StartTime time.Time
}

// Process evaluates a spend end to end and returns the evaluation record.
func (p *Processor) Process(ctx context.Context, input *ProcessInput) (*domain.Evaluation, error) {
	start := time.Now()

	product, err := p.evaluator.registry.Lookup(input.Input.ProductID)
	if err != nil {
		return nil, err
	}

	ans := MergeDerived(input.Input.Answers, DeriveDefaults(product, input.Input.MCC))
	ans = ExpandAnswers(product, ans)

	raw := EvaluateProduct(product, input.Input.Amount, input.Input.MCC, ans)
	capped := ApplyCap(product, raw)

	evalMs := time.Since(start).Milliseconds()
	totalMs := time.Since(input.StartTime).Milliseconds()

	return &domain.Evaluation{
		ID:        uuid.New().String(),
		TenantID:  input.TenantID,
		SpendID:   input.SpendID,
		ProductID: product.ID,
		CardType:  product.CardType,
		Reward:    *capped,
		Promos:    input.Promos,
		Timestamp: time.Now().UTC(),
		Metadata: domain.EvaluationMetadata{
			TraceID:       input.TraceID,
			EvalMs:        evalMs,
			TotalMs:       totalMs,
			EngineVersion: EngineVersion,
		},
	}, nil
}
