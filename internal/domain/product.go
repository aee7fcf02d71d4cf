// Package domain defines the core interfaces and types for Cardperk.
package domain

// CardType identifies the reward unit a card product earns.
type CardType string

const (
	CardTypePoints   CardType = "points"
	CardTypeMiles    CardType = "miles"
	CardTypeCashback CardType = "cashback"
)

// RuleKind selects the evaluation branch logic for a product.
// The evaluator switches exhaustively over these kinds; products sharing a
// rule shape share a kind.
type RuleKind string

const (
	// KindFlat: a single rate for all spends.
	KindFlat RuleKind = "flat"

	// KindInternational: domestic default, international override, optional
	// special-category rate.
	KindInternational RuleKind = "international"

	// KindCategorySelect: MCC exclusions, then a rate keyed by a
	// caller-selected spend category.
	KindCategorySelect RuleKind = "categorySelect"

	// KindCategoryFlags: MCC exclusions, then an ordered list of boolean
	// flag branches, then optional special-category rate.
	KindCategoryFlags RuleKind = "categoryFlags"

	// KindWeekendSpecial: weekend override first, then MCC exclusions, then
	// special-category rate.
	KindWeekendSpecial RuleKind = "weekendSpecial"

	// KindVariantDay: rate by card variant x weekday/weekend x travel flag.
	KindVariantDay RuleKind = "variantDay"

	// KindPlanMatrix: plan x category matrix first, then MCC exclusions,
	// then special-category rate.
	KindPlanMatrix RuleKind = "planMatrix"

	// KindUPI: UPI override first, then MCC exclusions, then
	// special-category rate.
	KindUPI RuleKind = "upi"

	// KindSpecial: MCC exclusions, then special-category rate, with an
	// optional milestone bonus.
	KindSpecial RuleKind = "special"

	// KindTiered: MCC exclusions, then special-category rate, then a
	// multiplier on the default rate chosen by cumulative annual spend.
	KindTiered RuleKind = "tiered"

	// KindDining: MCC exclusions, then either a special-category rate or an
	// accelerated MCC list, plus a partner-points multiplier.
	KindDining RuleKind = "dining"

	// KindCashback: percentage cashback with an eligible-spend ceiling and
	// a per-period cashback ceiling.
	KindCashback RuleKind = "cashback"
)

// DayRates holds weekday/weekend rates for one card variant.
type DayRates struct {
	Weekday float64 `json:"weekday"`
	Weekend float64 `json:"weekend"`
}

// FlagRate is one ordered boolean branch of a KindCategoryFlags product.
// First set flag wins.
type FlagRate struct {
	Flag     string  `json:"flag"`
	Rate     float64 `json:"rate"`
	Category string  `json:"category"`
	RateType string  `json:"rateType"`
}

// PlanRate is one category entry of a plan's rate table.
type PlanRate struct {
	Category string  `json:"category"`
	Rate     float64 `json:"rate"`
}

// SpendTier maps a cumulative annual spend ceiling to a reward multiplier.
// Tiers are ordered ascending; the first tier whose threshold is >= the
// annual spend applies. A negative threshold means unbounded.
type SpendTier struct {
	Threshold  float64 `json:"threshold"`
	Multiplier float64 `json:"multiplier"`
}

// Capping is a ceiling on earned reward quantity over a stated period.
// Period is opaque display metadata, never parsed.
type Capping struct {
	MaxQuantity float64 `json:"maxQuantity"`
	Period      string  `json:"period"`
}

// SpendBonus is a one-off milestone bonus (e.g. spend X in the first month).
type SpendBonus struct {
	Quantity      float64 `json:"quantity"`
	MinTotalSpend float64 `json:"minTotalSpend"`
}

// AutoSelect forces an answer value when the spend's MCC is in MCCs.
type AutoSelect struct {
	MCCs  []string `json:"mccs"`
	Name  string   `json:"name"`
	Value string   `json:"value"`
}

// Product is a card product's complete reward rule definition.
// Immutable after registry construction; only the fields relevant to the
// product's Kind are populated.
type Product struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	CardType CardType `json:"cardType"`
	Kind     RuleKind `json:"kind"`

	// DefaultRate applies when no more specific branch matches.
	DefaultRate     float64 `json:"defaultRate"`
	DefaultCategory string  `json:"defaultCategory"`
	DefaultRateType string  `json:"defaultRateType"`

	// MCCRates zeroes out (or overrides) excluded merchant categories.
	MCCRates map[string]float64 `json:"mccRates,omitempty"`

	// CategoryRates is keyed by the spendCategory answer value.
	CategoryRates map[string]float64 `json:"categoryRates,omitempty"`

	// FlagRates is the ordered boolean-branch table.
	FlagRates []FlagRate `json:"flagRates,omitempty"`

	InternationalRate float64 `json:"internationalRate,omitempty"`
	WeekendRate       float64 `json:"weekendRate,omitempty"`
	WeekendCategory   string  `json:"weekendCategory,omitempty"`
	UPIRate           float64 `json:"upiRate,omitempty"`

	// SpecialRate applies when the caller asserts a special-category spend.
	// Nil means the product has no special-category branch.
	SpecialRate       *float64 `json:"specialRate,omitempty"`
	SpecialCategories []string `json:"specialCategories,omitempty"`

	// Accelerated MCC list (dining/shopping/entertainment style uplifts).
	AcceleratedRate     float64  `json:"acceleratedRate,omitempty"`
	AcceleratedMCCs     []string `json:"acceleratedMccs,omitempty"`
	AcceleratedCategory string   `json:"acceleratedCategory,omitempty"`

	// Variant x day-type tables (keyed by card variant, e.g. "amex"/"visa").
	VariantDefaultRates map[string]DayRates `json:"variantDefaultRates,omitempty"`
	VariantTravelRates  map[string]DayRates `json:"variantTravelRates,omitempty"`
	DefaultVariant      string              `json:"defaultVariant,omitempty"`
	TravelCategory      string              `json:"travelCategory,omitempty"`

	// Plan x category matrix. Categories are ordered slices so the derived
	// option lists are stable across calls.
	PlanRates map[string][]PlanRate `json:"planRates,omitempty"`

	// Tiered annual-spend multipliers.
	Tiers []SpendTier `json:"tiers,omitempty"`

	// Partner-points multiplier (EazyPoints).
	PartnerMultiplier float64 `json:"partnerMultiplier,omitempty"`

	Bonus *SpendBonus `json:"bonus,omitempty"`

	// Cashback parameters.
	MaxEligibleSpend float64 `json:"maxEligibleSpend,omitempty"`
	MaxCashback      float64 `json:"maxCashback,omitempty"`

	Capping *Capping `json:"capping,omitempty"`

	// RedemptionRates converts earned quantity into secondary display units
	// (air miles, cash credit). Display only; never affects capping.
	RedemptionRates map[string]float64 `json:"redemptionRates,omitempty"`

	// Questions is the declarative contextual-question schema.
	Questions []QuestionSpec `json:"questions,omitempty"`

	// AutoSelects derive answers from the spend's MCC.
	AutoSelects []AutoSelect `json:"autoSelects,omitempty"`
}

// NeedsInput reports whether the product requires contextual answers.
func (p *Product) NeedsInput() bool {
	return len(p.Questions) > 0
}

// Redemption unit names used across the catalog.
const (
	RedemptionAirmiles   = "airmiles"
	RedemptionCashCredit = "cashCredit"
	RedemptionCash       = "cash"
	RedemptionNonCash    = "nonCash"
)

// Category labels shared by several products.
const (
	CategoryOtherSpends = "Other Spends"
	CategoryAllSpends   = "All Spends"
	CategoryExcluded    = "Excluded Category"
	CategorySpecial     = "Special Category"
)

// rateType tags shared by several products.
const (
	RateTypeDefault    = "default"
	RateTypeExcluded   = "excluded"
	RateTypeCategory   = "category"
	RateTypeSpecial    = "special"
	RateTypeWeekend    = "weekend"
	RateTypeUPI        = "upi"
	RateTypePlan       = "plan"
	RateTypeMultiplied = "multiplied"
)
