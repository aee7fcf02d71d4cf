package spending

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/openrewards/cardperk/internal/cache"
	"github.com/openrewards/cardperk/internal/domain"
	"github.com/openrewards/cardperk/internal/repository"
)

func TestSpendingService(t *testing.T) {
	// Create temp database
	tmpFile, err := os.CreateTemp("", "spending-test-*.db")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	tmpPath := tmpFile.Name()
	tmpFile.Close()
	defer os.Remove(tmpPath)

	// Create repository
	repo, err := repository.New(domain.RepositoryConfig{
		Driver:     "sqlite",
		SQLitePath: tmpPath,
	})
	if err != nil {
		t.Fatalf("failed to create repository: %v", err)
	}
	defer repo.Close()

	// Create cache
	lruCache := cache.NewLRUCache(100)
	defer lruCache.Close()

	// Create spending service
	svc := NewService(repo, lruCache)

	ctx := context.Background()
	tenantID := "tenant-001"

	t.Run("EmptyDatabase", func(t *testing.T) {
		sum, err := svc.GetPeriodSpend(ctx, tenantID, "platinum", 3600)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if sum != 0 {
			t.Errorf("expected sum 0 for empty database, got %.2f", sum)
		}
	})

	t.Run("WithSpends", func(t *testing.T) {
		// Insert some spends
		for i := 0; i < 5; i++ {
			spend := &domain.SpendRecord{
				ID:        fmt.Sprintf("spend-%d", i),
				ProductID: "platinum",
				Amount:    1000.0,
				MCC:       "5812",
				Timestamp: time.Now().UTC(),
				CreatedAt: time.Now().UTC(),
			}
			if err := repo.SaveSpend(ctx, tenantID, spend); err != nil {
				t.Fatalf("failed to save spend: %v", err)
			}
		}

		sum, err := svc.GetPeriodSpend(ctx, tenantID, "platinum", 3600)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if sum != 5000 {
			t.Errorf("expected sum 5000, got %.2f", sum)
		}

		// Different product sees nothing
		sum, err = svc.GetPeriodSpend(ctx, tenantID, "legend", 3600)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if sum != 0 {
			t.Errorf("expected sum 0 for other product, got %.2f", sum)
		}
	})

	t.Run("WindowExcludesOldSpends", func(t *testing.T) {
		old := &domain.SpendRecord{
			ID:        "spend-old",
			ProductID: "platinum",
			Amount:    99999.0,
			Timestamp: time.Now().UTC().Add(-48 * time.Hour),
			CreatedAt: time.Now().UTC(),
		}
		if err := repo.SaveSpend(ctx, tenantID, old); err != nil {
			t.Fatalf("failed to save spend: %v", err)
		}

		sum, err := svc.GetPeriodSpend(ctx, tenantID, "platinum", 3600)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if sum != 5000 {
			t.Errorf("expected old spend outside 1h window, got %.2f", sum)
		}
	})

	t.Run("TenantIsolation", func(t *testing.T) {
		sum, err := svc.GetPeriodSpend(ctx, "other-tenant", "platinum", 3600)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if sum != 0 {
			t.Errorf("expected sum 0 for different tenant, got %.2f", sum)
		}
	})

	t.Run("RequiresTenantID", func(t *testing.T) {
		_, err := svc.GetPeriodSpend(ctx, "", "platinum", 3600)
		if err == nil {
			t.Error("expected error for empty tenantID")
		}
	})

	t.Run("RequiresProductID", func(t *testing.T) {
		_, err := svc.GetPeriodSpend(ctx, tenantID, "", 3600)
		if err == nil {
			t.Error("expected error for empty productID")
		}
	})

	t.Run("SpendGetter", func(t *testing.T) {
		getter := svc.GetSpendGetter()
		if getter == nil {
			t.Fatal("GetSpendGetter returned nil")
		}

		sum, err := getter(ctx, tenantID, "platinum", 3600)
		if err != nil {
			t.Fatalf("SpendGetter failed: %v", err)
		}
		if sum != 5000 {
			t.Errorf("expected sum 5000, got %.2f", sum)
		}
	})

	t.Run("RecordEvaluation", func(t *testing.T) {
		count, err := svc.RecordEvaluation(ctx, tenantID, "platinum", time.Hour)
		if err != nil {
			t.Fatalf("RecordEvaluation failed: %v", err)
		}
		if count != 1 {
			t.Errorf("expected counter 1, got %d", count)
		}

		count, _ = svc.RecordEvaluation(ctx, tenantID, "platinum", time.Hour)
		if count != 2 {
			t.Errorf("expected counter 2, got %d", count)
		}
	})
}

func TestNoDataSource(t *testing.T) {
	svc := &Service{} // No repo or db

	ctx := context.Background()
	_, err := svc.GetPeriodSpend(ctx, "tenant", "platinum", 3600)
	if err == nil {
		t.Error("expected error with no data source")
	}
}
