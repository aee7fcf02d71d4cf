package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RawReward is the evaluator's pre-cap outcome for one spend.
// Always superseded by a CappedReward before leaving the engine.
type RawReward struct {
	// Quantity is points, miles, or cashback currency depending on the
	// product's card type. Integer-valued for points/miles.
	Quantity float64 `json:"quantity"`

	// Rate actually applied, and the branch that produced it.
	Rate     float64 `json:"rate"`
	RateType string  `json:"rateType"`
	Category string  `json:"category"`

	// Multiplier is 1 unless a tiered-multiplier branch fired.
	Multiplier float64 `json:"multiplier,omitempty"`

	// PartnerPoints is the partner-program quantity (EazyPoints).
	PartnerPoints float64 `json:"partnerPoints,omitempty"`

	// BonusQuantity is any milestone bonus already included in Quantity.
	BonusQuantity float64 `json:"bonusQuantity,omitempty"`
}

// AppliedCap records a cap that reduced the earned quantity.
type AppliedCap struct {
	Category string  `json:"category"`
	Limit    float64 `json:"limit"`
	Period   string  `json:"period"`
}

// CappedReward is the final outcome of the evaluation pipeline.
type CappedReward struct {
	Quantity         float64     `json:"quantity"`
	UncappedQuantity float64     `json:"uncappedQuantity"`
	AppliedCap       *AppliedCap `json:"appliedCap,omitempty"`
	RewardText       string      `json:"rewardText"`
	RateUsed         float64     `json:"rateUsed"`
	RateType         string      `json:"rateType"`
	Category         string      `json:"category"`

	Multiplier    float64 `json:"multiplier,omitempty"`
	PartnerPoints float64 `json:"partnerPoints,omitempty"`
	BonusQuantity float64 `json:"bonusQuantity,omitempty"`

	// RedemptionValues converts the capped quantity into secondary units
	// (air miles, cash credit) for display. Exact decimal arithmetic.
	RedemptionValues map[string]decimal.Decimal `json:"redemptionValues,omitempty"`
}

// Evaluation is a persisted evaluation result with tenant isolation.
type Evaluation struct {
	ID        string             `json:"id"`
	TenantID  string             `json:"tenantId"`
	SpendID   string             `json:"spendId"`
	ProductID string             `json:"productId"`
	CardType  CardType           `json:"cardType"`
	Reward    CappedReward       `json:"reward"`
	Promos    []PromoResult      `json:"promos,omitempty"`
	Timestamp time.Time          `json:"timestamp"`
	Metadata  EvaluationMetadata `json:"metadata"`
}

// EvaluationMetadata contains processing information.
type EvaluationMetadata struct {
	TraceID       string `json:"traceId"`
	EvalMs        int64  `json:"evalMs"`
	TotalMs       int64  `json:"totalMs"`
	EngineVersion string `json:"engineVersion"`
}
