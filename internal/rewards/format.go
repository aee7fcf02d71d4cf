package rewards

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/openrewards/cardperk/internal/domain"
)

// FormatReward renders the user-facing reward line for a capped reward.
//
//	"9 Reward Points (Dining)"
//	"450 Miles (Capped at 75000 miles per year)"
//	"₹200.00 Cashback"
//
// The category clause is omitted for the generic "Other Spends" bucket and
// when no category applies. "All Spends" is printed: flat-rate programs
// advertise it as the earning category.
func FormatReward(p *domain.Product, r *domain.CappedReward) string {
	if p.CardType == domain.CardTypeCashback {
		amt := decimal.NewFromFloat(r.Quantity)
		return fmt.Sprintf("₹%s Cashback", amt.StringFixed(2))
	}

	unit := "Reward Points"
	capUnit := "points"
	if p.CardType == domain.CardTypeMiles {
		unit = "Miles"
		capUnit = "miles"
	}

	text := quantityString(r.Quantity) + " " + unit
	if c := r.Category; c != "" && c != domain.CategoryOtherSpends {
		text += " (" + c + ")"
	}
	if r.AppliedCap != nil {
		text += fmt.Sprintf(" (Capped at %s %s per %s)",
			quantityString(r.AppliedCap.Limit), capUnit, r.AppliedCap.Period)
	}
	return text
}

// quantityString prints whole quantities without a decimal point.
func quantityString(q float64) string {
	return strconv.FormatFloat(q, 'f', -1, 64)
}
