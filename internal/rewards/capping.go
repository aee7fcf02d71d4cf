package rewards

import (
	"github.com/shopspring/decimal"

	"github.com/openrewards/cardperk/internal/domain"
)

// ApplyCap folds a raw reward into its final capped form: the program cap
// is applied, redemption values computed, and reward text rendered. Calling
// it on an already-capped quantity is a no-op numerically, so the operation
// is idempotent.
func ApplyCap(p *domain.Product, raw *domain.RawReward) *domain.CappedReward {
	out := &domain.CappedReward{
		Quantity:         raw.Quantity,
		UncappedQuantity: raw.Quantity,
		RateUsed:         raw.Rate,
		RateType:         raw.RateType,
		Category:         raw.Category,
		Multiplier:       raw.Multiplier,
		PartnerPoints:    raw.PartnerPoints,
		BonusQuantity:    raw.BonusQuantity,
	}

	if p.Capping != nil && p.Capping.MaxQuantity > 0 && out.Quantity > p.Capping.MaxQuantity {
		out.Quantity = p.Capping.MaxQuantity
		out.AppliedCap = &domain.AppliedCap{
			Category: capCategory(p.CardType),
			Limit:    p.Capping.MaxQuantity,
			Period:   p.Capping.Period,
		}
	}

	if len(p.RedemptionRates) > 0 {
		out.RedemptionValues = make(map[string]decimal.Decimal, len(p.RedemptionRates))
		qty := decimal.NewFromFloat(out.Quantity)
		for mode, rate := range p.RedemptionRates {
			out.RedemptionValues[mode] = qty.Mul(decimal.NewFromFloat(rate))
		}
	}

	out.RewardText = FormatReward(p, out)
	return out
}

func capCategory(ct domain.CardType) string {
	if ct == domain.CardTypeMiles {
		return "Total Miles"
	}
	return "Total Points"
}
