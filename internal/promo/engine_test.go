package promo

import (
	"context"
	"fmt"
	"testing"

	"github.com/openrewards/cardperk/internal/domain"
)

func TestEngineCreation(t *testing.T) {
	engine, err := NewEngine(nil, 5)
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}
	defer engine.Close()

	if engine.RulesCount() != 0 {
		t.Errorf("expected 0 rules, got %d", engine.RulesCount())
	}
}

func TestLoadRule(t *testing.T) {
	engine, _ := NewEngine(nil, 5)
	defer engine.Close()

	rule := &domain.PromoRule{
		ID:         "test-promo-001",
		Name:       "Test Promo",
		Expression: "amount > 100.0",
		Enabled:    true,
	}

	err := engine.LoadRule(rule)
	if err != nil {
		t.Fatalf("failed to load rule: %v", err)
	}

	if engine.RulesCount() != 1 {
		t.Errorf("expected 1 rule, got %d", engine.RulesCount())
	}
}

func TestLoadInvalidRule(t *testing.T) {
	engine, _ := NewEngine(nil, 5)
	defer engine.Close()

	rule := &domain.PromoRule{
		ID:         "invalid-promo",
		Name:       "Invalid Promo",
		Expression: "this is not valid CEL !!!",
		Enabled:    true,
	}

	err := engine.LoadRule(rule)
	if err == nil {
		t.Error("expected error for invalid CEL expression")
	}
}

func TestRejectNonNumericOutput(t *testing.T) {
	engine, _ := NewEngine(nil, 5)
	defer engine.Close()

	rule := &domain.PromoRule{
		ID:         "string-promo",
		Expression: `"always"`,
		Enabled:    true,
	}

	if err := engine.LoadRule(rule); err == nil {
		t.Error("expected error for string-typed expression")
	}
}

func TestEvaluateTieredPromo(t *testing.T) {
	engine, _ := NewEngine(nil, 5)
	defer engine.Close()

	zero := 0.0
	one := 1.0

	rule := &domain.PromoRule{
		ID:         "big-spend-bonus",
		Name:       "Big Spend Bonus",
		Expression: "amount > 10000.0 ? 1.0 : 0.0",
		Tiers: []domain.PromoTier{
			{LowerLimit: &zero, UpperLimit: &one, BonusQuantity: 0, Reason: "Below bonus threshold"},
			{LowerLimit: &one, UpperLimit: nil, BonusQuantity: 500, Reason: "Big spend bonus"},
		},
		Enabled: true,
	}

	engine.LoadRule(rule)

	ctx := context.Background()

	// Below threshold
	input := &EvaluateInput{
		TenantID:  "tenant-001",
		SpendID:   "spend-001",
		ProductID: "platinum",
		Amount:    500.0,
	}

	results, err := engine.EvaluateAll(ctx, input)
	if err != nil {
		t.Fatalf("evaluation failed: %v", err)
	}

	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}

	if results[0].Score != 0.0 {
		t.Errorf("expected score 0.0 below threshold, got %.2f", results[0].Score)
	}
	if results[0].BonusQuantity != 0 {
		t.Errorf("expected no bonus, got %.2f", results[0].BonusQuantity)
	}

	// Above threshold
	input.Amount = 15000.0
	results, _ = engine.EvaluateAll(ctx, input)

	if results[0].Score != 1.0 {
		t.Errorf("expected score 1.0 above threshold, got %.2f", results[0].Score)
	}
	if results[0].BonusQuantity != 500 {
		t.Errorf("expected 500 bonus, got %.2f", results[0].BonusQuantity)
	}
	if results[0].Reason != "Big spend bonus" {
		t.Errorf("expected tier reason, got %q", results[0].Reason)
	}
}

func TestEvaluateBooleanPromo(t *testing.T) {
	engine, _ := NewEngine(nil, 5)
	defer engine.Close()

	one := 1.0

	rule := &domain.PromoRule{
		ID:         "miles-card-promo",
		Name:       "Miles Card Promo",
		Expression: `card_type == "miles"`,
		Tiers: []domain.PromoTier{
			{LowerLimit: &one, UpperLimit: nil, BonusQuantity: 100, Reason: "Miles card bonus"},
		},
		Enabled: true,
	}

	engine.LoadRule(rule)

	ctx := context.Background()

	input := &EvaluateInput{
		TenantID:  "tenant-001",
		SpendID:   "spend-001",
		ProductID: "platinum",
		CardType:  "points",
		Amount:    1000,
	}

	results, _ := engine.EvaluateAll(ctx, input)
	if results[0].BonusQuantity != 0 {
		t.Errorf("expected no bonus for points card, got %.2f", results[0].BonusQuantity)
	}

	input.CardType = "miles"
	results, _ = engine.EvaluateAll(ctx, input)
	if results[0].BonusQuantity != 100 {
		t.Errorf("expected 100 bonus for miles card, got %.2f", results[0].BonusQuantity)
	}
}

func TestPromoSeesCoreReward(t *testing.T) {
	engine, _ := NewEngine(nil, 5)
	defer engine.Close()

	one := 1.0

	// Bonus only when the core evaluation landed on the weekend branch and
	// earned at least 50 points.
	rule := &domain.PromoRule{
		ID:         "weekend-topup",
		Expression: `rate_type == "weekend" && quantity >= 50.0`,
		Tiers: []domain.PromoTier{
			{LowerLimit: &one, BonusQuantity: 25, Reason: "Weekend top-up"},
		},
		Enabled: true,
	}
	engine.LoadRule(rule)

	ctx := context.Background()
	input := &EvaluateInput{
		TenantID:  "tenant-001",
		SpendID:   "spend-001",
		ProductID: "legend",
		CardType:  "points",
		Amount:    5000,
		Quantity:  100,
		RateType:  "weekend",
		Category:  "Weekend Spend",
	}

	results, _ := engine.EvaluateAll(ctx, input)
	if results[0].BonusQuantity != 25 {
		t.Errorf("expected 25 bonus on weekend branch, got %.2f", results[0].BonusQuantity)
	}

	input.RateType = "default"
	results, _ = engine.EvaluateAll(ctx, input)
	if results[0].BonusQuantity != 0 {
		t.Errorf("expected no bonus off the weekend branch, got %.2f", results[0].BonusQuantity)
	}
}

func TestPeriodSpendPromo(t *testing.T) {
	// Mock spend getter that returns a fixed period total
	spendGetter := func(ctx context.Context, tenantID, productID string, windowSecs int) (float64, error) {
		return 120000, nil
	}

	engine, _ := NewEngine(spendGetter, 5)
	defer engine.Close()

	one := 1.0

	rule := &domain.PromoRule{
		ID:          "milestone-promo-001",
		Name:        "Quarterly Milestone",
		Description: "Bonus once cumulative product spend crosses 1 lakh",
		Version:     "1.0.0",
		Expression:  "period_spend > 100000.0 ? 1.0 : 0.0",
		Tiers: []domain.PromoTier{
			{LowerLimit: &one, UpperLimit: nil, BonusQuantity: 1000, Reason: "Milestone crossed"},
		},
		Enabled: true,
	}
	engine.LoadRule(rule)

	ctx := context.Background()
	input := &EvaluateInput{
		TenantID:    "tenant-001",
		SpendID:     "spend-001",
		ProductID:   "platinum",
		Amount:      5000,
		SpendWindow: 7776000, // 90 days
	}

	results, _ := engine.EvaluateAll(ctx, input)

	if results[0].BonusQuantity != 1000 {
		t.Errorf("expected milestone bonus 1000, got %.2f", results[0].BonusQuantity)
	}
}

func TestParallelExecution(t *testing.T) {
	engine, _ := NewEngine(nil, 3)
	defer engine.Close()

	// Load multiple rules
	for i := 0; i < 10; i++ {
		rule := &domain.PromoRule{
			ID:         fmt.Sprintf("promo-%d", i),
			Name:       fmt.Sprintf("Promo %d", i),
			Expression: "amount > 0.0",
			Enabled:    true,
		}
		engine.LoadRule(rule)
	}

	if engine.RulesCount() != 10 {
		t.Fatalf("expected 10 rules, got %d", engine.RulesCount())
	}

	ctx := context.Background()
	input := &EvaluateInput{
		TenantID:  "tenant-001",
		SpendID:   "spend-001",
		ProductID: "platinum",
		Amount:    100.0,
	}

	results, err := engine.EvaluateAll(ctx, input)
	if err != nil {
		t.Fatalf("parallel evaluation failed: %v", err)
	}

	if len(results) != 10 {
		t.Errorf("expected 10 results, got %d", len(results))
	}

	// All should have fired
	for i, r := range results {
		if r.Score != 1.0 {
			t.Errorf("promo %d: expected score 1.0, got %.2f", i, r.Score)
		}
	}
}

func TestReloadRules(t *testing.T) {
	engine, _ := NewEngine(nil, 5)
	defer engine.Close()

	engine.LoadRule(&domain.PromoRule{ID: "old-promo", Expression: "amount > 0.0", Enabled: true})

	err := engine.ReloadRules([]*domain.PromoRule{
		{ID: "new-promo-1", Expression: "amount > 100.0", Enabled: true},
		{ID: "new-promo-2", Expression: "amount > 200.0", Enabled: true},
		{ID: "disabled-promo", Expression: "amount > 300.0", Enabled: false},
	})
	if err != nil {
		t.Fatalf("ReloadRules failed: %v", err)
	}

	if engine.RulesCount() != 2 {
		t.Errorf("expected 2 rules after reload, got %d", engine.RulesCount())
	}

	for _, r := range engine.GetLoadedRules() {
		if r.ID == "old-promo" {
			t.Error("old rule survived reload")
		}
		if r.ID == "disabled-promo" {
			t.Error("disabled rule loaded on reload")
		}
	}
}

func TestValidateRuleDoesNotLoad(t *testing.T) {
	engine, _ := NewEngine(nil, 5)
	defer engine.Close()

	rule := &domain.PromoRule{ID: "check-only", Expression: "amount > 1.0", Enabled: true}

	if err := engine.ValidateRule(rule); err != nil {
		t.Fatalf("ValidateRule failed: %v", err)
	}
	if engine.RulesCount() != 0 {
		t.Errorf("ValidateRule loaded the rule: count %d", engine.RulesCount())
	}
}

func TestPromoResultMetadata(t *testing.T) {
	engine, _ := NewEngine(nil, 5)
	defer engine.Close()

	rule := &domain.PromoRule{
		ID:         "meta-test",
		Name:       "Meta Test",
		Expression: "amount > 0.0",
		Enabled:    true,
	}
	engine.LoadRule(rule)

	ctx := context.Background()
	input := &EvaluateInput{
		TenantID:  "tenant-123",
		SpendID:   "spend-456",
		ProductID: "platinum",
		Amount:    100.0,
	}

	results, _ := engine.EvaluateAll(ctx, input)

	if results[0].PromoID != "meta-test" {
		t.Errorf("expected promo ID 'meta-test', got %s", results[0].PromoID)
	}
	if results[0].Name != "Meta Test" {
		t.Errorf("expected promo name, got %s", results[0].Name)
	}
	if results[0].ProcessMs < 0 {
		t.Errorf("invalid process time: %d", results[0].ProcessMs)
	}
	if results[0].Err != "" {
		t.Errorf("unexpected evaluation error: %s", results[0].Err)
	}
}

func TestEvaluateAllEmptyEngine(t *testing.T) {
	engine, _ := NewEngine(nil, 5)
	defer engine.Close()

	results, err := engine.EvaluateAll(context.Background(), &EvaluateInput{
		TenantID: "tenant-001",
		SpendID:  "spend-001",
		Amount:   100,
	})
	if err != nil {
		t.Fatalf("evaluation failed: %v", err)
	}
	if results != nil {
		t.Errorf("expected nil results for empty engine, got %v", results)
	}
}
