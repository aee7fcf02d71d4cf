package rewards

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/openrewards/cardperk/internal/domain"
)

func TestApplyCapUnderLimit(t *testing.T) {
	registry := testRegistry(t)
	p := lookup(t, registry, "intermiles-odyssey")

	raw := EvaluateProduct(p, 10000, "", nil) // 300 miles
	out := ApplyCap(p, raw)

	if out.Quantity != 300 {
		t.Errorf("expected 300 miles, got %.2f", out.Quantity)
	}
	if out.UncappedQuantity != 300 {
		t.Errorf("expected uncapped 300, got %.2f", out.UncappedQuantity)
	}
	if out.AppliedCap != nil {
		t.Errorf("expected no cap under the limit, got %+v", out.AppliedCap)
	}
}

func TestApplyCapOverLimit(t *testing.T) {
	registry := testRegistry(t)
	p := lookup(t, registry, "intermiles-odyssey")

	raw := EvaluateProduct(p, 10000000, "", nil) // 300000 raw miles
	out := ApplyCap(p, raw)

	if out.Quantity != 75000 {
		t.Errorf("expected quantity clamped to 75000, got %.2f", out.Quantity)
	}
	if out.UncappedQuantity != 300000 {
		t.Errorf("expected uncapped 300000, got %.2f", out.UncappedQuantity)
	}

	if out.AppliedCap == nil {
		t.Fatal("expected applied cap")
	}
	if out.AppliedCap.Category != "Total Miles" {
		t.Errorf("expected cap category 'Total Miles', got %s", out.AppliedCap.Category)
	}
	if out.AppliedCap.Limit != 75000 {
		t.Errorf("expected cap limit 75000, got %.2f", out.AppliedCap.Limit)
	}
	if out.AppliedCap.Period != "year" {
		t.Errorf("expected cap period 'year', got %s", out.AppliedCap.Period)
	}
}

func TestApplyCapIdempotent(t *testing.T) {
	registry := testRegistry(t)
	p := lookup(t, registry, "intermiles-voyage")

	raw := EvaluateProduct(p, 10000000, "", nil)
	first := ApplyCap(p, raw)

	// Feed the capped quantity back through as a raw reward.
	second := ApplyCap(p, &domain.RawReward{
		Quantity:   first.Quantity,
		Rate:       first.RateUsed,
		RateType:   first.RateType,
		Category:   first.Category,
		Multiplier: first.Multiplier,
	})

	if second.Quantity != first.Quantity {
		t.Errorf("capping not idempotent: %.2f vs %.2f", first.Quantity, second.Quantity)
	}
	if second.AppliedCap != nil {
		t.Errorf("expected no cap on an already-capped quantity, got %+v", second.AppliedCap)
	}
}

func TestUncappedProductPassesThrough(t *testing.T) {
	registry := testRegistry(t)
	p := lookup(t, registry, "platinum")

	raw := EvaluateProduct(p, 100000000, "", nil)
	out := ApplyCap(p, raw)

	if out.Quantity != raw.Quantity {
		t.Errorf("expected passthrough quantity %.2f, got %.2f", raw.Quantity, out.Quantity)
	}
	if out.AppliedCap != nil {
		t.Errorf("expected no cap for uncapped product, got %+v", out.AppliedCap)
	}
}

func TestRedemptionValues(t *testing.T) {
	registry := testRegistry(t)
	p := lookup(t, registry, "tiger")

	raw := EvaluateProduct(p, 10000, "", nil) // 100 points
	out := ApplyCap(p, raw)

	if len(out.RedemptionValues) != 2 {
		t.Fatalf("expected 2 redemption modes, got %d", len(out.RedemptionValues))
	}

	airmiles := out.RedemptionValues[domain.RedemptionAirmiles]
	if !airmiles.Equal(decimal.NewFromFloat(120)) {
		t.Errorf("expected 120 airmiles, got %s", airmiles)
	}

	cash := out.RedemptionValues[domain.RedemptionCashCredit]
	if !cash.Equal(decimal.NewFromFloat(40)) {
		t.Errorf("expected 40 cash credit, got %s", cash)
	}
}

func TestRedemptionUsesCappedQuantity(t *testing.T) {
	// Redemption values are computed from the capped quantity, not the raw.
	p := &domain.Product{
		ID:              "capped-points",
		CardType:        domain.CardTypePoints,
		Kind:            domain.KindFlat,
		DefaultRate:     1,
		DefaultRateType: domain.RateTypeDefault,
		Capping:         &domain.Capping{MaxQuantity: 100, Period: "month"},
		RedemptionRates: map[string]float64{domain.RedemptionCash: 0.5},
	}

	out := ApplyCap(p, EvaluateProduct(p, 1000, "", nil))

	if out.Quantity != 100 {
		t.Fatalf("expected capped quantity 100, got %.2f", out.Quantity)
	}
	cash := out.RedemptionValues[domain.RedemptionCash]
	if !cash.Equal(decimal.NewFromFloat(50)) {
		t.Errorf("expected redemption on capped quantity (50), got %s", cash)
	}
}

func TestCapCategoryByCardType(t *testing.T) {
	registry := testRegistry(t)

	miles := lookup(t, registry, "intermiles-odyssey")
	out := ApplyCap(miles, &domain.RawReward{Quantity: 100000, Multiplier: 1})
	if out.AppliedCap == nil || out.AppliedCap.Category != "Total Miles" {
		t.Errorf("expected 'Total Miles' cap category for miles card, got %+v", out.AppliedCap)
	}

	points := &domain.Product{
		ID:       "pts",
		CardType: domain.CardTypePoints,
		Capping:  &domain.Capping{MaxQuantity: 10, Period: "month"},
	}
	out = ApplyCap(points, &domain.RawReward{Quantity: 50, Multiplier: 1})
	if out.AppliedCap == nil || out.AppliedCap.Category != "Total Points" {
		t.Errorf("expected 'Total Points' cap category for points card, got %+v", out.AppliedCap)
	}
}
