package domain

import "time"

// PromoRule is a tenant-defined promotional bonus rule. The CEL expression
// is evaluated against the spend and the core reward outcome; its numeric
// result is matched against the tiers to pick a bonus.
type PromoRule struct {
	ID          string `json:"id"`
	TenantID    string `json:"tenantId"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Version     string `json:"version"`

	// Expression is a CEL expression over amount, mcc, product_id,
	// card_type, quantity, rate_type, category.
	Expression string `json:"expression"`

	// Tiers map the expression score to a bonus quantity.
	Tiers []PromoTier `json:"tiers"`

	Enabled bool `json:"enabled"`

	CreatedAt time.Time `json:"createdAt,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

// PromoTier maps a score range to a bonus. Lower inclusive, upper exclusive;
// a nil upper bound means unbounded.
type PromoTier struct {
	LowerLimit    *float64 `json:"lowerLimit,omitempty"`
	UpperLimit    *float64 `json:"upperLimit,omitempty"`
	BonusQuantity float64  `json:"bonusQuantity"`
	Reason        string   `json:"reason"`
}

// PromoResult is the outcome of evaluating one promo rule for one spend.
type PromoResult struct {
	PromoID       string  `json:"promoId"`
	Name          string  `json:"name"`
	Score         float64 `json:"score"`
	BonusQuantity float64 `json:"bonusQuantity"`
	Reason        string  `json:"reason,omitempty"`
	Err           string  `json:"error,omitempty"`
	ProcessMs     int64   `json:"processMs"`
}
