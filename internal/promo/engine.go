// Package promo provides the CEL-based promotional bonus rule engine.
// Tenants define expressions over the spend and its core reward outcome;
// matching tiers award bonus quantities on top of the program reward.
package promo

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	"github.com/openrewards/cardperk/internal/domain"
)

// Engine compiles and evaluates promo rules.
type Engine struct {
	mu            sync.RWMutex
	env           *cel.Env
	compiledRules map[string]*CompiledRule
	spendGetter   SpendGetter
	maxWorkers    int
}

// CompiledRule holds a pre-compiled CEL program.
type CompiledRule struct {
	Rule    *domain.PromoRule
	Program cel.Program
}

// SpendGetter returns the cumulative spend on a product for the trailing
// window, letting promo expressions reference period_spend.
type SpendGetter func(ctx context.Context, tenantID, productID string, windowSecs int) (float64, error)

// NewEngine creates a promo rule engine.
func NewEngine(spendGetter SpendGetter, maxWorkers int) (*Engine, error) {
	if maxWorkers <= 0 {
		maxWorkers = 10
	}

	env, err := cel.NewEnv(
		cel.Variable("spend", cel.MapType(cel.StringType, cel.DynType)),
		cel.Variable("amount", cel.DoubleType),
		cel.Variable("mcc", cel.StringType),
		cel.Variable("product_id", cel.StringType),
		cel.Variable("card_type", cel.StringType),
		cel.Variable("quantity", cel.DoubleType),
		cel.Variable("rate_type", cel.StringType),
		cel.Variable("category", cel.StringType),
		cel.Variable("period_spend", cel.DoubleType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	return &Engine{
		env:           env,
		compiledRules: make(map[string]*CompiledRule),
		spendGetter:   spendGetter,
		maxWorkers:    maxWorkers,
	}, nil
}

// ValidateRule compiles a rule without loading it.
func (e *Engine) ValidateRule(rule *domain.PromoRule) error {
	if rule == nil {
		return fmt.Errorf("promo rule is required")
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	_, err := e.compileRule(rule)
	return err
}

// LoadRule compiles and loads a rule into the engine.
func (e *Engine) LoadRule(rule *domain.PromoRule) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	compiled, err := e.compileRule(rule)
	if err != nil {
		return err
	}

	e.compiledRules[rule.ID] = compiled

	return nil
}

// LoadRules compiles and loads the enabled rules from a slice.
func (e *Engine) LoadRules(rules []*domain.PromoRule) error {
	for _, rule := range rules {
		if rule.Enabled {
			if err := e.LoadRule(rule); err != nil {
				return err
			}
		}
	}
	return nil
}

// EvaluateInput is the spend and core-reward context promo expressions see.
type EvaluateInput struct {
	TenantID    string
	SpendID     string
	ProductID   string
	CardType    string
	Amount      float64
	MCC         string
	Quantity    float64
	RateType    string
	Category    string
	SpendWindow int // seconds; 0 disables period_spend
}

// EvaluateAll evaluates all loaded promo rules in parallel.
func (e *Engine) EvaluateAll(ctx context.Context, input *EvaluateInput) ([]domain.PromoResult, error) {
	e.mu.RLock()
	rules := make([]*CompiledRule, 0, len(e.compiledRules))
	for _, rule := range e.compiledRules {
		rules = append(rules, rule)
	}
	e.mu.RUnlock()

	if len(rules) == 0 {
		return nil, nil
	}

	var periodSpend float64
	if e.spendGetter != nil && input.SpendWindow > 0 {
		sum, err := e.spendGetter(ctx, input.TenantID, input.ProductID, input.SpendWindow)
		if err == nil {
			periodSpend = sum
		}
	}

	activation := map[string]any{
		"spend": map[string]any{
			"id":         input.SpendID,
			"product_id": input.ProductID,
			"amount":     input.Amount,
			"mcc":        input.MCC,
		},
		"amount":       input.Amount,
		"mcc":          input.MCC,
		"product_id":   input.ProductID,
		"card_type":    input.CardType,
		"quantity":     input.Quantity,
		"rate_type":    input.RateType,
		"category":     input.Category,
		"period_spend": periodSpend,
	}

	results := make([]domain.PromoResult, len(rules))
	var wg sync.WaitGroup

	sem := make(chan struct{}, e.maxWorkers)

	for i, rule := range rules {
		wg.Add(1)
		go func(idx int, r *CompiledRule) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			results[idx] = e.evaluateRule(r, activation)
		}(i, rule)
	}

	wg.Wait()

	return results, nil
}

func (e *Engine) evaluateRule(rule *CompiledRule, activation map[string]any) domain.PromoResult {
	start := time.Now()

	result := domain.PromoResult{
		PromoID: rule.Rule.ID,
		Name:    rule.Rule.Name,
	}

	out, _, err := rule.Program.Eval(activation)
	if err != nil {
		result.Err = fmt.Sprintf("evaluation error: %v", err)
		result.ProcessMs = time.Since(start).Milliseconds()
		return result
	}

	score := toScore(out)
	result.Score = score
	result.BonusQuantity, result.Reason = matchTier(score, rule.Rule.Tiers)
	result.ProcessMs = time.Since(start).Milliseconds()

	return result
}

// toScore converts a CEL value to a numeric score.
func toScore(val ref.Val) float64 {
	switch v := val.(type) {
	case types.Bool:
		if v {
			return 1.0
		}
		return 0.0
	case types.Double:
		return float64(v)
	case types.Int:
		return float64(v)
	default:
		return 0.0
	}
}

// matchTier finds the tier covering a score. Tiers are evaluated in order,
// lower inclusive, upper exclusive; a nil upper bound is unbounded.
func matchTier(score float64, tiers []domain.PromoTier) (float64, string) {
	for _, tier := range tiers {
		lower := 0.0
		if tier.LowerLimit != nil {
			lower = *tier.LowerLimit
		}
		if score < lower {
			continue
		}
		if tier.UpperLimit == nil || score < *tier.UpperLimit {
			return tier.BonusQuantity, tier.Reason
		}
	}
	return 0, ""
}

// RulesCount returns the number of loaded rules.
func (e *Engine) RulesCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.compiledRules)
}

// ReloadRules swaps the loaded rule set for the enabled rules in configs.
// Enables hot-reloading from the database.
func (e *Engine) ReloadRules(rules []*domain.PromoRule) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	newRules := make(map[string]*CompiledRule)

	for _, rule := range rules {
		if !rule.Enabled {
			continue
		}

		compiled, err := e.compileRule(rule)
		if err != nil {
			return err
		}
		newRules[rule.ID] = compiled
	}

	e.compiledRules = newRules

	return nil
}

// GetLoadedRules returns the currently loaded rule definitions.
func (e *Engine) GetLoadedRules() []*domain.PromoRule {
	e.mu.RLock()
	defer e.mu.RUnlock()

	rules := make([]*domain.PromoRule, 0, len(e.compiledRules))
	for _, compiled := range e.compiledRules {
		rules = append(rules, compiled.Rule)
	}
	return rules
}

// Close clears the engine.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.compiledRules = make(map[string]*CompiledRule)
	return nil
}

func (e *Engine) compileRule(rule *domain.PromoRule) (*CompiledRule, error) {
	ast, issues := e.env.Compile(rule.Expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("failed to compile promo %s: %w", rule.ID, issues.Err())
	}

	outputType := ast.OutputType()
	if outputType != cel.BoolType && outputType != cel.DoubleType && outputType != cel.IntType {
		return nil, fmt.Errorf("promo %s: expression must return bool, int, or double, got %s", rule.ID, outputType)
	}

	program, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to create program for promo %s: %w", rule.ID, err)
	}

	return &CompiledRule{
		Rule:    rule,
		Program: program,
	}, nil
}
