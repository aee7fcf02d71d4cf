package domain

import (
	"strconv"
	"time"
)

// Answers is the bag of contextual answers collected for a spend.
// Keys are question names; unrecognized keys are ignored by the evaluator.
// Values arrive as JSON scalars (bool, string, number), so the accessors
// normalize across representations.
type Answers map[string]any

// Bool returns the answer as a boolean, false when absent or unparseable.
func (a Answers) Bool(key string) bool {
	v, ok := a[key]
	if !ok {
		return false
	}
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t == "true"
	case float64:
		return t != 0
	case int:
		return t != 0
	default:
		return false
	}
}

// String returns the answer as a string, def when absent or empty.
func (a Answers) String(key, def string) string {
	v, ok := a[key]
	if !ok {
		return def
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return def
	}
	return s
}

// Float returns the answer as a float64, 0 when absent or unparseable.
func (a Answers) Float(key string) float64 {
	v, ok := a[key]
	if !ok {
		return 0
	}
	switch t := v.(type) {
	case float64:
		return t
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case string:
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// Has reports whether the answer key is present at all.
func (a Answers) Has(key string) bool {
	_, ok := a[key]
	return ok
}

// Clone returns a shallow copy; a nil receiver yields an empty map.
func (a Answers) Clone() Answers {
	out := make(Answers, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Well-known answer keys. Each product consumes only the keys its question
// schema declares; everything else is ignored.
const (
	AnswerSpendCategory    = "spendCategory"
	AnswerTransactionType  = "transactionType"
	AnswerIsInternational  = "isInternational"
	AnswerIsWeekend        = "isWeekend"
	AnswerIsTravel         = "isTravel"
	AnswerCardVariant      = "cardVariant"
	AnswerIsSpecial        = "isSpecialCategory"
	AnswerIsUPI            = "isUPI"
	AnswerIsEazyDiner      = "isEazyDiner"
	AnswerIsEcommerce      = "isEcommerce"
	AnswerIsEcomTravel     = "isEcomTravelAirline"
	AnswerIsVistaraSite    = "isVistaraWebsite"
	AnswerIsHotelAirTravel = "isHotelAirlineTravel"
	AnswerIsUtilityBundle  = "isUtilityInsuranceGovernmentFuel"
	AnswerIsFirstMonth     = "isFirstMonth"
	AnswerTotalSpend       = "totalSpend"
	AnswerAnnualSpend      = "annualSpend"
	AnswerSelectedPlan     = "selectedPlan"
	AnswerSelectedCategory = "selectedCategory"
)

// SpendInput is a single spend to evaluate against one card product.
// Amount is assumed non-negative and already validated by the caller.
type SpendInput struct {
	ProductID string  `json:"productId"`
	Amount    float64 `json:"amount"`
	MCC       string  `json:"mcc,omitempty"`
	Answers   Answers `json:"answers,omitempty"`
}

// SpendRecord is a persisted spend with tenant isolation.
type SpendRecord struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenantId"`
	ProductID string    `json:"productId"`
	Amount    float64   `json:"amount"`
	MCC       string    `json:"mcc,omitempty"`
	Answers   Answers   `json:"answers,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	CreatedAt time.Time `json:"createdAt"`
}

// Input returns the evaluation input view of the record.
func (s *SpendRecord) Input() *SpendInput {
	return &SpendInput{
		ProductID: s.ProductID,
		Amount:    s.Amount,
		MCC:       s.MCC,
		Answers:   s.Answers,
	}
}
