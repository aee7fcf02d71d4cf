// Package spending tracks cumulative spend per product.
package spending

import (
	"context"
	"fmt"
	"time"

	"github.com/openrewards/cardperk/internal/domain"
)

// YearWindowSecs is the trailing window used when defaulting a product's
// annual spend from recorded history.
const YearWindowSecs = 365 * 24 * 60 * 60

// Service sums recorded spends for promo-rule windows and milestone checks.
type Service struct {
	repo  domain.Repository
	cache domain.Cache
}

// NewService creates a new spending service.
func NewService(repo domain.Repository, cache domain.Cache) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
	}
}

// GetPeriodSpend returns the total spend amount on a product within a
// trailing time window. This is the SpendGetter signature the promo engine
// expects.
func (s *Service) GetPeriodSpend(ctx context.Context, tenantID, productID string, windowSecs int) (float64, error) {
	if tenantID == "" || productID == "" {
		return 0, fmt.Errorf("tenantID and productID are required")
	}

	since := time.Now().Add(-time.Duration(windowSecs) * time.Second)

	if s.repo == nil {
		return 0, fmt.Errorf("no data source available")
	}

	sum, err := s.repo.SumSpendByProduct(ctx, tenantID, productID, since)
	if err != nil {
		return 0, fmt.Errorf("failed to sum spends: %w", err)
	}
	return sum, nil
}

// RecordEvaluation bumps the per-product evaluation counter used for cap
// tracking dashboards. Failures are non-fatal for the evaluation path;
// callers log and continue.
func (s *Service) RecordEvaluation(ctx context.Context, tenantID, productID string, window time.Duration) (int64, error) {
	if s.cache == nil {
		return 0, nil
	}
	key := fmt.Sprintf("evalcount:%s", productID)
	return s.cache.IncrementCounter(ctx, tenantID, key, window)
}

// GetSpendGetter returns a SpendGetter function for the promo engine.
func (s *Service) GetSpendGetter() func(ctx context.Context, tenantID, productID string, windowSecs int) (float64, error) {
	return s.GetPeriodSpend
}
