// Package rewards implements the reward rule evaluation engine: rate
// selection per product, capping, reward text, and the contextual question
// provider. Everything here is a pure function of its inputs.
package rewards

import (
	"fmt"
	"math"

	"github.com/openrewards/cardperk/internal/catalog"
	"github.com/openrewards/cardperk/internal/domain"
)

// EngineVersion is reported in evaluation metadata.
const EngineVersion = "1.0.0"

// Evaluator computes pre-cap rewards against a product registry.
type Evaluator struct {
	registry *catalog.Registry
}

// NewEvaluator creates an evaluator bound to a registry.
func NewEvaluator(registry *catalog.Registry) *Evaluator {
	return &Evaluator{registry: registry}
}

// Evaluate looks up the product and computes the pre-cap reward.
// Returns catalog.ErrNotFound (wrapped) for unknown products.
func (e *Evaluator) Evaluate(productID string, amount float64, mcc string, ans domain.Answers) (*domain.RawReward, error) {
	p, err := e.registry.Lookup(productID)
	if err != nil {
		return nil, err
	}
	return EvaluateProduct(p, amount, mcc, ans), nil
}

// EvaluateProduct computes the pre-cap reward for one product. Amount is
// assumed non-negative. Answer keys the product does not consume are
// ignored; missing keys use each question's default.
func EvaluateProduct(p *domain.Product, amount float64, mcc string, ans domain.Answers) *domain.RawReward {
	switch p.Kind {
	case domain.KindFlat:
		return evalFlat(p, amount)
	case domain.KindInternational:
		return evalInternational(p, amount, ans)
	case domain.KindCategorySelect:
		return evalCategorySelect(p, amount, mcc, ans)
	case domain.KindCategoryFlags:
		return evalCategoryFlags(p, amount, mcc, ans)
	case domain.KindWeekendSpecial:
		return evalWeekendSpecial(p, amount, mcc, ans)
	case domain.KindVariantDay:
		return evalVariantDay(p, amount, ans)
	case domain.KindPlanMatrix:
		return evalPlanMatrix(p, amount, mcc, ans)
	case domain.KindUPI:
		return evalUPI(p, amount, mcc, ans)
	case domain.KindSpecial:
		return evalSpecial(p, amount, mcc, ans)
	case domain.KindTiered:
		return evalTiered(p, amount, mcc, ans)
	case domain.KindDining:
		return evalDining(p, amount, mcc, ans)
	case domain.KindCashback:
		return evalCashback(p, amount)
	default:
		// Registry validation keeps the kind set closed; treat anything
		// else as a flat default product.
		return evalFlat(p, amount)
	}
}

// floorQuantity truncates to whole reward units (points and miles never
// accrue fractionally).
func floorQuantity(amount, rate float64) float64 {
	return math.Floor(amount * rate)
}

func defaultReward(p *domain.Product, amount float64) *domain.RawReward {
	return &domain.RawReward{
		Quantity:   floorQuantity(amount, p.DefaultRate),
		Rate:       p.DefaultRate,
		RateType:   p.DefaultRateType,
		Category:   p.DefaultCategory,
		Multiplier: 1,
	}
}

func excludedReward(p *domain.Product, amount float64, mcc string) (*domain.RawReward, bool) {
	rate, ok := p.MCCRates[mcc]
	if !ok {
		return nil, false
	}
	return &domain.RawReward{
		Quantity:   floorQuantity(amount, rate),
		Rate:       rate,
		RateType:   domain.RateTypeExcluded,
		Category:   domain.CategoryExcluded,
		Multiplier: 1,
	}, true
}

func specialReward(p *domain.Product, amount float64, ans domain.Answers) (*domain.RawReward, bool) {
	if p.SpecialRate == nil || !ans.Bool(domain.AnswerIsSpecial) {
		return nil, false
	}
	rate := *p.SpecialRate
	return &domain.RawReward{
		Quantity:   floorQuantity(amount, rate),
		Rate:       rate,
		RateType:   domain.RateTypeSpecial,
		Category:   domain.CategorySpecial,
		Multiplier: 1,
	}, true
}

func evalFlat(p *domain.Product, amount float64) *domain.RawReward {
	return defaultReward(p, amount)
}

func evalInternational(p *domain.Product, amount float64, ans domain.Answers) *domain.RawReward {
	if ans.Bool(domain.AnswerIsInternational) {
		return &domain.RawReward{
			Quantity:   floorQuantity(amount, p.InternationalRate),
			Rate:       p.InternationalRate,
			RateType:   "international",
			Category:   "International Spends",
			Multiplier: 1,
		}
	}
	if r, ok := specialReward(p, amount, ans); ok {
		return r
	}
	return defaultReward(p, amount)
}

func evalCategorySelect(p *domain.Product, amount float64, mcc string, ans domain.Answers) *domain.RawReward {
	if r, ok := excludedReward(p, amount, mcc); ok {
		return r
	}
	category := ans.String(domain.AnswerSpendCategory, "")
	if rate, ok := p.CategoryRates[category]; ok {
		return &domain.RawReward{
			Quantity:   floorQuantity(amount, rate),
			Rate:       rate,
			RateType:   domain.RateTypeCategory,
			Category:   category,
			Multiplier: 1,
		}
	}
	return defaultReward(p, amount)
}

func evalCategoryFlags(p *domain.Product, amount float64, mcc string, ans domain.Answers) *domain.RawReward {
	if r, ok := excludedReward(p, amount, mcc); ok {
		return r
	}
	for _, fr := range p.FlagRates {
		if ans.Bool(fr.Flag) {
			return &domain.RawReward{
				Quantity:   floorQuantity(amount, fr.Rate),
				Rate:       fr.Rate,
				RateType:   fr.RateType,
				Category:   fr.Category,
				Multiplier: 1,
			}
		}
	}
	if r, ok := specialReward(p, amount, ans); ok {
		return r
	}
	return defaultReward(p, amount)
}

// evalWeekendSpecial checks the weekend flag before MCC exclusions: weekend
// uplift wins even on an otherwise excluded merchant for these products.
func evalWeekendSpecial(p *domain.Product, amount float64, mcc string, ans domain.Answers) *domain.RawReward {
	if ans.Bool(domain.AnswerIsWeekend) {
		return &domain.RawReward{
			Quantity:   floorQuantity(amount, p.WeekendRate),
			Rate:       p.WeekendRate,
			RateType:   domain.RateTypeWeekend,
			Category:   p.WeekendCategory,
			Multiplier: 1,
		}
	}
	if r, ok := excludedReward(p, amount, mcc); ok {
		return r
	}
	if r, ok := specialReward(p, amount, ans); ok {
		return r
	}
	return defaultReward(p, amount)
}

func evalVariantDay(p *domain.Product, amount float64, ans domain.Answers) *domain.RawReward {
	variant := ans.String(domain.AnswerCardVariant, p.DefaultVariant)
	if _, ok := p.VariantDefaultRates[variant]; !ok {
		variant = p.DefaultVariant
	}
	weekend := ans.Bool(domain.AnswerIsWeekend)
	travel := ans.Bool(domain.AnswerIsTravel)

	table := p.VariantDefaultRates
	if travel {
		table = p.VariantTravelRates
	}
	day := table[variant]

	rate := day.Weekday
	dayTag := "weekday"
	if weekend {
		rate = day.Weekend
		dayTag = "weekend"
	}

	rateType := fmt.Sprintf("%s-%s", variant, dayTag)
	category := p.DefaultCategory
	if travel {
		rateType += "-travel"
		category = p.TravelCategory
	}

	return &domain.RawReward{
		Quantity:   floorQuantity(amount, rate),
		Rate:       rate,
		RateType:   rateType,
		Category:   category,
		Multiplier: 1,
	}
}

// evalPlanMatrix: when both a plan and a category are selected the plan
// branch is taken exclusively; MCC exclusions and the special rate are only
// consulted when no plan selection was made.
func evalPlanMatrix(p *domain.Product, amount float64, mcc string, ans domain.Answers) *domain.RawReward {
	plan := ans.String(domain.AnswerSelectedPlan, "")
	category := ans.String(domain.AnswerSelectedCategory, "")
	if plan != "" && category != "" {
		for _, pr := range p.PlanRates[plan] {
			if pr.Category == category {
				return &domain.RawReward{
					Quantity:   floorQuantity(amount, pr.Rate),
					Rate:       pr.Rate,
					RateType:   domain.RateTypePlan,
					Category:   category,
					Multiplier: 1,
				}
			}
		}
		return defaultReward(p, amount)
	}
	if r, ok := excludedReward(p, amount, mcc); ok {
		return r
	}
	if r, ok := specialReward(p, amount, ans); ok {
		return r
	}
	return defaultReward(p, amount)
}

func evalUPI(p *domain.Product, amount float64, mcc string, ans domain.Answers) *domain.RawReward {
	if ans.Bool(domain.AnswerIsUPI) {
		return &domain.RawReward{
			Quantity:   floorQuantity(amount, p.UPIRate),
			Rate:       p.UPIRate,
			RateType:   domain.RateTypeUPI,
			Category:   "UPI Transaction",
			Multiplier: 1,
		}
	}
	if r, ok := excludedReward(p, amount, mcc); ok {
		return r
	}
	if r, ok := specialReward(p, amount, ans); ok {
		return r
	}
	return defaultReward(p, amount)
}

func evalSpecial(p *domain.Product, amount float64, mcc string, ans domain.Answers) *domain.RawReward {
	r, ok := excludedReward(p, amount, mcc)
	if !ok {
		r, ok = specialReward(p, amount, ans)
	}
	if !ok {
		r = defaultReward(p, amount)
	}

	// Milestone bonus applies on top of whichever branch fired.
	if p.Bonus != nil && ans.Bool(domain.AnswerIsFirstMonth) && ans.Float(domain.AnswerTotalSpend) >= p.Bonus.MinTotalSpend {
		r.BonusQuantity = p.Bonus.Quantity
		r.Quantity += p.Bonus.Quantity
	}
	return r
}

func evalTiered(p *domain.Product, amount float64, mcc string, ans domain.Answers) *domain.RawReward {
	if r, ok := excludedReward(p, amount, mcc); ok {
		return r
	}
	if r, ok := specialReward(p, amount, ans); ok {
		return r
	}

	r := defaultReward(p, amount)
	annual := ans.Float(domain.AnswerAnnualSpend)
	if annual > 0 {
		for _, tier := range p.Tiers {
			if tier.Threshold < 0 || annual <= tier.Threshold {
				r.Multiplier = tier.Multiplier
				break
			}
		}
		r.RateType = domain.RateTypeMultiplied
		r.Quantity = floorQuantity(amount, p.DefaultRate*r.Multiplier)
	}
	return r
}

func evalDining(p *domain.Product, amount float64, mcc string, ans domain.Answers) *domain.RawReward {
	r, ok := excludedReward(p, amount, mcc)
	if !ok {
		r, ok = specialReward(p, amount, ans)
	}
	if !ok && len(p.AcceleratedMCCs) > 0 {
		for _, m := range p.AcceleratedMCCs {
			if m == mcc {
				r = &domain.RawReward{
					Quantity:   floorQuantity(amount, p.AcceleratedRate),
					Rate:       p.AcceleratedRate,
					RateType:   "accelerated",
					Category:   p.AcceleratedCategory,
					Multiplier: 1,
				}
				ok = true
				break
			}
		}
	}
	if !ok {
		r = defaultReward(p, amount)
	}

	if ans.Bool(domain.AnswerIsEazyDiner) {
		r.PartnerPoints = r.Quantity * p.PartnerMultiplier
	}
	return r
}

// evalCashback applies the eligible-spend ceiling before the rate and the
// cashback ceiling after it.
func evalCashback(p *domain.Product, amount float64) *domain.RawReward {
	eligible := math.Min(amount, p.MaxEligibleSpend)
	cashback := math.Min(eligible*p.DefaultRate, p.MaxCashback)
	return &domain.RawReward{
		Quantity:   cashback,
		Rate:       p.DefaultRate,
		RateType:   p.DefaultRateType,
		Category:   p.DefaultCategory,
		Multiplier: 1,
	}
}
