package rewards

import (
	"errors"
	"math"
	"testing"

	"github.com/openrewards/cardperk/internal/catalog"
	"github.com/openrewards/cardperk/internal/domain"
)

func testRegistry(t *testing.T) *catalog.Registry {
	t.Helper()
	registry, err := catalog.New()
	if err != nil {
		t.Fatalf("failed to build registry: %v", err)
	}
	return registry
}

func lookup(t *testing.T, registry *catalog.Registry, id string) *domain.Product {
	t.Helper()
	p, err := registry.Lookup(id)
	if err != nil {
		t.Fatalf("Lookup(%s) failed: %v", id, err)
	}
	return p
}

func TestEvaluateUnknownProduct(t *testing.T) {
	evaluator := NewEvaluator(testRegistry(t))

	_, err := evaluator.Evaluate("no-such-card", 100, "", nil)
	if err == nil {
		t.Fatal("expected error for unknown product")
	}
	if !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("expected catalog.ErrNotFound, got %v", err)
	}
}

func TestFlatRate(t *testing.T) {
	registry := testRegistry(t)
	p := lookup(t, registry, "duo")

	r := EvaluateProduct(p, 1500, "", nil)

	if r.Quantity != 10 {
		t.Errorf("expected 10 points for 1500 at 1/150, got %.2f", r.Quantity)
	}
	if r.RateType != domain.RateTypeDefault {
		t.Errorf("expected rate type 'default', got %s", r.RateType)
	}
	if r.Category != domain.CategoryAllSpends {
		t.Errorf("expected 'All Spends', got %s", r.Category)
	}
}

func TestDefaultRateFloors(t *testing.T) {
	// 935 at 1 point per 100 floors to 9, never rounds up.
	registry := testRegistry(t)
	p := lookup(t, registry, "platinum")

	r := EvaluateProduct(p, 935, "", nil)
	if r.Quantity != 9 {
		t.Errorf("expected 9 points for 935, got %.2f", r.Quantity)
	}

	r = EvaluateProduct(p, 999.99, "", nil)
	if r.Quantity != 9 {
		t.Errorf("expected 9 points for 999.99, got %.2f", r.Quantity)
	}

	r = EvaluateProduct(p, 0, "", nil)
	if r.Quantity != 0 {
		t.Errorf("expected 0 points for 0 amount, got %.2f", r.Quantity)
	}
}

func TestExcludedMCC(t *testing.T) {
	registry := testRegistry(t)
	p := lookup(t, registry, "platinum")

	for _, mcc := range []string{"5541", "5542"} {
		r := EvaluateProduct(p, 5000, mcc, nil)
		if r.Quantity != 0 {
			t.Errorf("MCC %s: expected 0 quantity, got %.2f", mcc, r.Quantity)
		}
		if r.RateType != domain.RateTypeExcluded {
			t.Errorf("MCC %s: expected rate type 'excluded', got %s", mcc, r.RateType)
		}
		if r.Category != domain.CategoryExcluded {
			t.Errorf("MCC %s: expected 'Excluded Category', got %s", mcc, r.Category)
		}
	}
}

func TestInternationalRate(t *testing.T) {
	registry := testRegistry(t)
	p := lookup(t, registry, "celesta")

	t.Run("Domestic", func(t *testing.T) {
		r := EvaluateProduct(p, 10000, "", nil)
		if r.Quantity != 100 {
			t.Errorf("expected 100 domestic points, got %.2f", r.Quantity)
		}
		if r.RateType != domain.RateTypeDefault {
			t.Errorf("expected 'default', got %s", r.RateType)
		}
	})

	t.Run("International", func(t *testing.T) {
		ans := domain.Answers{domain.AnswerIsInternational: true}
		r := EvaluateProduct(p, 10000, "", ans)
		if r.Quantity != 300 {
			t.Errorf("expected 300 international points, got %.2f", r.Quantity)
		}
		if r.RateType != "international" {
			t.Errorf("expected 'international', got %s", r.RateType)
		}
		if r.Category != "International Spends" {
			t.Errorf("expected 'International Spends', got %s", r.Category)
		}
	})

	t.Run("StringAnswer", func(t *testing.T) {
		// Answers arrive as JSON strings from radio questions.
		ans := domain.Answers{domain.AnswerIsInternational: "true"}
		r := EvaluateProduct(p, 10000, "", ans)
		if r.RateType != "international" {
			t.Errorf("expected 'international' for string answer, got %s", r.RateType)
		}
	})
}

func TestCategorySelect(t *testing.T) {
	registry := testRegistry(t)
	p := lookup(t, registry, "avios")

	t.Run("SelectedCategory", func(t *testing.T) {
		ans := domain.Answers{domain.AnswerSpendCategory: "preferredInternational"}
		r := EvaluateProduct(p, 2000, "", ans)
		// 5 Avios per 200
		if r.Quantity != 50 {
			t.Errorf("expected 50 Avios, got %.2f", r.Quantity)
		}
		if r.RateType != domain.RateTypeCategory {
			t.Errorf("expected 'category', got %s", r.RateType)
		}
		if r.Category != "preferredInternational" {
			t.Errorf("expected selected category, got %s", r.Category)
		}
	})

	t.Run("UnknownCategoryFallsBack", func(t *testing.T) {
		ans := domain.Answers{domain.AnswerSpendCategory: "default"}
		r := EvaluateProduct(p, 2000, "", ans)
		if r.Quantity != 10 {
			t.Errorf("expected 10 Avios at default rate, got %.2f", r.Quantity)
		}
		if r.RateType != domain.RateTypeDefault {
			t.Errorf("expected 'default', got %s", r.RateType)
		}
	})

	t.Run("ExclusionBeatsSelection", func(t *testing.T) {
		ans := domain.Answers{domain.AnswerSpendCategory: "preferredInternational"}
		r := EvaluateProduct(p, 2000, "5541", ans)
		if r.Quantity != 0 {
			t.Errorf("expected 0 for fuel, got %.2f", r.Quantity)
		}
		if r.RateType != domain.RateTypeExcluded {
			t.Errorf("expected 'excluded', got %s", r.RateType)
		}
	})
}

func TestCategoryFlagsFirstMatchWins(t *testing.T) {
	registry := testRegistry(t)
	p := lookup(t, registry, "club-vistara-explorer")

	t.Run("SingleFlag", func(t *testing.T) {
		ans := domain.Answers{domain.AnswerIsHotelAirTravel: true}
		r := EvaluateProduct(p, 2000, "", ans)
		// 6 CV Points per 200
		if r.Quantity != 60 {
			t.Errorf("expected 60 points, got %.2f", r.Quantity)
		}
		if r.RateType != "travel" {
			t.Errorf("expected 'travel', got %s", r.RateType)
		}
	})

	t.Run("OrderedPrecedence", func(t *testing.T) {
		// Vistara is listed first and wins when both flags are set.
		ans := domain.Answers{
			domain.AnswerIsVistaraSite:    true,
			domain.AnswerIsHotelAirTravel: true,
		}
		r := EvaluateProduct(p, 2000, "", ans)
		if r.RateType != "vistara" {
			t.Errorf("expected 'vistara' to win, got %s", r.RateType)
		}
		if r.Quantity != 80 {
			t.Errorf("expected 80 points, got %.2f", r.Quantity)
		}
	})

	t.Run("NoFlags", func(t *testing.T) {
		r := EvaluateProduct(p, 2000, "", nil)
		if r.Quantity != 20 {
			t.Errorf("expected 20 default points, got %.2f", r.Quantity)
		}
	})
}

func TestWeekendBeatsExclusion(t *testing.T) {
	registry := testRegistry(t)
	p := lookup(t, registry, "legend")

	t.Run("WeekendOnExcludedMCC", func(t *testing.T) {
		// Weekend uplift wins even on a fuel merchant for this product.
		ans := domain.Answers{domain.AnswerIsWeekend: true}
		r := EvaluateProduct(p, 5000, "5541", ans)
		if r.Quantity != 100 {
			t.Errorf("expected 100 weekend points, got %.2f", r.Quantity)
		}
		if r.RateType != domain.RateTypeWeekend {
			t.Errorf("expected 'weekend', got %s", r.RateType)
		}
		if r.Category != "Weekend Spend" {
			t.Errorf("expected 'Weekend Spend', got %s", r.Category)
		}
	})

	t.Run("WeekdayOnExcludedMCC", func(t *testing.T) {
		r := EvaluateProduct(p, 5000, "5541", nil)
		if r.Quantity != 0 {
			t.Errorf("expected 0 for weekday fuel, got %.2f", r.Quantity)
		}
		if r.RateType != domain.RateTypeExcluded {
			t.Errorf("expected 'excluded', got %s", r.RateType)
		}
	})

	t.Run("SpecialCategory", func(t *testing.T) {
		ans := domain.Answers{domain.AnswerIsSpecial: true}
		r := EvaluateProduct(p, 1000, "", ans)
		// 0.7 per 100
		if r.Quantity != 7 {
			t.Errorf("expected 7 special points, got %.2f", r.Quantity)
		}
		if r.RateType != domain.RateTypeSpecial {
			t.Errorf("expected 'special', got %s", r.RateType)
		}
	})
}

func TestVariantDayRates(t *testing.T) {
	registry := testRegistry(t)
	p := lookup(t, registry, "intermiles-odyssey")

	t.Run("DefaultVariantWeekday", func(t *testing.T) {
		r := EvaluateProduct(p, 10000, "", nil)
		// visa weekday: 3 per 100
		if r.Quantity != 300 {
			t.Errorf("expected 300 miles, got %.2f", r.Quantity)
		}
		if r.RateType != "visa-weekday" {
			t.Errorf("expected 'visa-weekday', got %s", r.RateType)
		}
	})

	t.Run("AmexWeekendTravel", func(t *testing.T) {
		ans := domain.Answers{
			domain.AnswerCardVariant: "amex",
			domain.AnswerIsWeekend:   true,
			domain.AnswerIsTravel:    true,
		}
		r := EvaluateProduct(p, 10000, "", ans)
		// amex weekend travel: 12 per 100
		if r.Quantity != 1200 {
			t.Errorf("expected 1200 miles, got %.2f", r.Quantity)
		}
		if r.RateType != "amex-weekend-travel" {
			t.Errorf("expected 'amex-weekend-travel', got %s", r.RateType)
		}
		if r.Category != "Travel Spends" {
			t.Errorf("expected 'Travel Spends', got %s", r.Category)
		}
	})

	t.Run("UnknownVariantFallsBack", func(t *testing.T) {
		ans := domain.Answers{domain.AnswerCardVariant: "mastercard"}
		r := EvaluateProduct(p, 10000, "", ans)
		if r.RateType != "visa-weekday" {
			t.Errorf("expected fallback to default variant, got %s", r.RateType)
		}
	})
}

func TestPlanMatrix(t *testing.T) {
	registry := testRegistry(t)
	p := lookup(t, registry, "platinum-aura-edge")

	t.Run("PlanCategoryMatch", func(t *testing.T) {
		ans := domain.Answers{
			domain.AnswerSelectedPlan:     "Shop",
			domain.AnswerSelectedCategory: "Department Stores",
		}
		r := EvaluateProduct(p, 10000, "", ans)
		// 4 per 100
		if r.Quantity != 400 {
			t.Errorf("expected 400 points, got %.2f", r.Quantity)
		}
		if r.RateType != domain.RateTypePlan {
			t.Errorf("expected 'plan', got %s", r.RateType)
		}
		if r.Category != "Department Stores" {
			t.Errorf("expected 'Department Stores', got %s", r.Category)
		}
	})

	t.Run("PlanBranchIsExclusive", func(t *testing.T) {
		// With a plan selected the special flag is not consulted.
		ans := domain.Answers{
			domain.AnswerSelectedPlan:     "Shop",
			domain.AnswerSelectedCategory: "Grocery", // Home category, not in Shop
			domain.AnswerIsSpecial:        true,
		}
		r := EvaluateProduct(p, 10000, "", ans)
		if r.RateType != domain.RateTypeDefault {
			t.Errorf("expected default fallback inside plan branch, got %s", r.RateType)
		}
		if r.Quantity != 50 {
			t.Errorf("expected 50 points at 0.5/100, got %.2f", r.Quantity)
		}
	})

	t.Run("NoPlanExclusionApplies", func(t *testing.T) {
		r := EvaluateProduct(p, 10000, "5541", nil)
		if r.RateType != domain.RateTypeExcluded {
			t.Errorf("expected 'excluded' without plan selection, got %s", r.RateType)
		}
	})

	t.Run("NoPlanSpecialApplies", func(t *testing.T) {
		ans := domain.Answers{domain.AnswerIsSpecial: true}
		r := EvaluateProduct(p, 10000, "", ans)
		if r.Quantity != 70 {
			t.Errorf("expected 70 special points, got %.2f", r.Quantity)
		}
	})
}

func TestUPIBeatsExclusion(t *testing.T) {
	registry := testRegistry(t)
	p := lookup(t, registry, "platinum-rupay")

	t.Run("UPIOnExcludedMCC", func(t *testing.T) {
		ans := domain.Answers{domain.AnswerIsUPI: true}
		r := EvaluateProduct(p, 1000, "5541", ans)
		if r.Quantity != 20 {
			t.Errorf("expected 20 UPI points, got %.2f", r.Quantity)
		}
		if r.RateType != domain.RateTypeUPI {
			t.Errorf("expected 'upi', got %s", r.RateType)
		}
		if r.Category != "UPI Transaction" {
			t.Errorf("expected 'UPI Transaction', got %s", r.Category)
		}
	})

	t.Run("NonUPIExcluded", func(t *testing.T) {
		r := EvaluateProduct(p, 1000, "5541", nil)
		if r.RateType != domain.RateTypeExcluded {
			t.Errorf("expected 'excluded', got %s", r.RateType)
		}
	})
}

func TestMilestoneBonus(t *testing.T) {
	registry := testRegistry(t)
	p := lookup(t, registry, "solitaire")

	t.Run("BonusAwarded", func(t *testing.T) {
		ans := domain.Answers{
			domain.AnswerIsFirstMonth: true,
			domain.AnswerTotalSpend:   "100000",
		}
		r := EvaluateProduct(p, 10000, "", ans)
		// 100 base + 5000 bonus
		if r.Quantity != 5100 {
			t.Errorf("expected 5100 points with bonus, got %.2f", r.Quantity)
		}
		if r.BonusQuantity != 5000 {
			t.Errorf("expected bonus quantity 5000, got %.2f", r.BonusQuantity)
		}
	})

	t.Run("BelowThreshold", func(t *testing.T) {
		ans := domain.Answers{
			domain.AnswerIsFirstMonth: true,
			domain.AnswerTotalSpend:   "50000",
		}
		r := EvaluateProduct(p, 10000, "", ans)
		if r.Quantity != 100 {
			t.Errorf("expected 100 points without bonus, got %.2f", r.Quantity)
		}
		if r.BonusQuantity != 0 {
			t.Errorf("expected no bonus quantity, got %.2f", r.BonusQuantity)
		}
	})

	t.Run("BonusOnTopOfSpecial", func(t *testing.T) {
		ans := domain.Answers{
			domain.AnswerIsSpecial:    true,
			domain.AnswerIsFirstMonth: true,
			domain.AnswerTotalSpend:   100000,
		}
		r := EvaluateProduct(p, 10000, "", ans)
		// 70 special + 5000 bonus
		if r.Quantity != 5070 {
			t.Errorf("expected 5070 points, got %.2f", r.Quantity)
		}
		if r.RateType != domain.RateTypeSpecial {
			t.Errorf("expected 'special' branch, got %s", r.RateType)
		}
	})
}

func TestTieredMultiplier(t *testing.T) {
	registry := testRegistry(t)
	p := lookup(t, registry, "tiger")

	cases := []struct {
		name       string
		annual     any
		quantity   float64
		multiplier float64
		rateType   string
	}{
		{"NoAnnualSpend", nil, 100, 1, domain.RateTypeDefault},
		{"FirstTier", "100000", 100, 1, domain.RateTypeMultiplied},
		{"MidTier", "300000", 400, 4, domain.RateTypeMultiplied},
		{"TopTierUnbounded", "600000", 600, 6, domain.RateTypeMultiplied},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ans := domain.Answers{}
			if tc.annual != nil {
				ans[domain.AnswerAnnualSpend] = tc.annual
			}
			r := EvaluateProduct(p, 10000, "", ans)
			if r.Quantity != tc.quantity {
				t.Errorf("expected %.0f points, got %.2f", tc.quantity, r.Quantity)
			}
			if r.Multiplier != tc.multiplier {
				t.Errorf("expected multiplier %.0f, got %.2f", tc.multiplier, r.Multiplier)
			}
			if r.RateType != tc.rateType {
				t.Errorf("expected rate type %q, got %q", tc.rateType, r.RateType)
			}
		})
	}

	t.Run("ExclusionBeatsMultiplier", func(t *testing.T) {
		ans := domain.Answers{domain.AnswerAnnualSpend: "600000"}
		r := EvaluateProduct(p, 10000, "5541", ans)
		if r.Quantity != 0 {
			t.Errorf("expected 0 for fuel regardless of tier, got %.2f", r.Quantity)
		}
	})

	t.Run("SpecialEarnsNothing", func(t *testing.T) {
		// Tiger zero-rates special categories outright.
		ans := domain.Answers{domain.AnswerIsSpecial: true}
		r := EvaluateProduct(p, 10000, "", ans)
		if r.Quantity != 0 {
			t.Errorf("expected 0 special points, got %.2f", r.Quantity)
		}
		if r.RateType != domain.RateTypeSpecial {
			t.Errorf("expected 'special', got %s", r.RateType)
		}
	})
}

func TestDiningRates(t *testing.T) {
	registry := testRegistry(t)

	t.Run("AcceleratedMCC", func(t *testing.T) {
		p := lookup(t, registry, "eazydiner-signature")
		r := EvaluateProduct(p, 1000, "5812", nil)
		// 10 per 100
		if r.Quantity != 100 {
			t.Errorf("expected 100 accelerated points, got %.2f", r.Quantity)
		}
		if r.RateType != "accelerated" {
			t.Errorf("expected 'accelerated', got %s", r.RateType)
		}
	})

	t.Run("PartnerPoints", func(t *testing.T) {
		p := lookup(t, registry, "eazydiner-signature")
		ans := domain.Answers{domain.AnswerIsEazyDiner: true}
		r := EvaluateProduct(p, 1000, "5812", ans)
		if r.Quantity != 100 {
			t.Errorf("expected 100 points, got %.2f", r.Quantity)
		}
		// 3X EazyPoints on the earned quantity
		if r.PartnerPoints != 300 {
			t.Errorf("expected 300 partner points, got %.2f", r.PartnerPoints)
		}
	})

	t.Run("DefaultWithPartner", func(t *testing.T) {
		p := lookup(t, registry, "eazydiner-platinum")
		ans := domain.Answers{domain.AnswerIsEazyDiner: true}
		r := EvaluateProduct(p, 1000, "", ans)
		if r.Quantity != 20 {
			t.Errorf("expected 20 default points, got %.2f", r.Quantity)
		}
		if r.PartnerPoints != 40 {
			t.Errorf("expected 40 partner points (2X), got %.2f", r.PartnerPoints)
		}
	})

	t.Run("NoPartnerAnswer", func(t *testing.T) {
		p := lookup(t, registry, "eazydiner-platinum")
		r := EvaluateProduct(p, 1000, "", nil)
		if r.PartnerPoints != 0 {
			t.Errorf("expected no partner points, got %.2f", r.PartnerPoints)
		}
	})
}

func TestCashback(t *testing.T) {
	registry := testRegistry(t)
	p := lookup(t, registry, "samman")

	cases := []struct {
		name   string
		amount float64
		want   float64
	}{
		{"SmallSpend", 5000, 50},
		{"FractionalNotFloored", 935, 9.35},
		{"AtEligibleCeiling", 20000, 200},
		{"AboveEligibleCeiling", 25000, 200},
		{"LargeSpendStillCapped", 50000, 200},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := EvaluateProduct(p, tc.amount, "", nil)
			if math.Abs(r.Quantity-tc.want) > 1e-9 {
				t.Errorf("amount %.2f: expected %.2f cashback, got %.4f", tc.amount, tc.want, r.Quantity)
			}
		})
	}
}

func TestMonotonicity(t *testing.T) {
	// For a fixed context, a larger amount never earns less.
	registry := testRegistry(t)

	for _, p := range registry.List() {
		prev := 0.0
		for _, amount := range []float64{0, 100, 935, 5000, 20000, 100000} {
			r := EvaluateProduct(p, amount, "", nil)
			if r.Quantity < prev {
				t.Errorf("%s: quantity dropped from %.2f to %.2f at amount %.0f",
					p.ID, prev, r.Quantity, amount)
			}
			prev = r.Quantity
		}
	}
}

func TestDeterminism(t *testing.T) {
	// Same inputs always yield the same reward.
	registry := testRegistry(t)
	ans := domain.Answers{
		domain.AnswerIsWeekend: true,
		domain.AnswerIsSpecial: false,
	}

	for _, p := range registry.List() {
		first := EvaluateProduct(p, 9350, "5812", ans)
		for i := 0; i < 5; i++ {
			again := EvaluateProduct(p, 9350, "5812", ans)
			if again.Quantity != first.Quantity || again.RateType != first.RateType || again.Category != first.Category {
				t.Errorf("%s: evaluation not deterministic: %+v vs %+v", p.ID, first, again)
			}
		}
	}
}
