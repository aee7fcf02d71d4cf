package catalog

import (
	"errors"
	"sort"
	"testing"

	"github.com/openrewards/cardperk/internal/domain"
)

func TestRegistryCreation(t *testing.T) {
	registry, err := New()
	if err != nil {
		t.Fatalf("failed to build registry: %v", err)
	}

	if registry.Count() != 22 {
		t.Errorf("expected 22 products, got %d", registry.Count())
	}
}

func TestLookup(t *testing.T) {
	registry, _ := New()

	p, err := registry.Lookup("platinum")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}

	if p.ID != "platinum" {
		t.Errorf("expected ID 'platinum', got '%s'", p.ID)
	}
	if p.Name != "Platinum" {
		t.Errorf("expected name 'Platinum', got '%s'", p.Name)
	}
	if p.CardType != domain.CardTypePoints {
		t.Errorf("expected points card, got '%s'", p.CardType)
	}
}

func TestLookupNotFound(t *testing.T) {
	registry, _ := New()

	_, err := registry.Lookup("no-such-card")
	if err == nil {
		t.Fatal("expected error for unknown product")
	}
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListOrderedByID(t *testing.T) {
	registry, _ := New()

	products := registry.List()
	if len(products) != registry.Count() {
		t.Fatalf("expected %d products, got %d", registry.Count(), len(products))
	}

	ids := make([]string, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}
	if !sort.StringsAreSorted(ids) {
		t.Errorf("expected products ordered by ID, got %v", ids)
	}
}

func TestEveryProductHasValidKind(t *testing.T) {
	registry, _ := New()

	kinds := map[domain.RuleKind]bool{
		domain.KindFlat:           true,
		domain.KindInternational:  true,
		domain.KindCategorySelect: true,
		domain.KindCategoryFlags:  true,
		domain.KindWeekendSpecial: true,
		domain.KindVariantDay:     true,
		domain.KindPlanMatrix:     true,
		domain.KindUPI:            true,
		domain.KindSpecial:        true,
		domain.KindTiered:         true,
		domain.KindDining:         true,
		domain.KindCashback:       true,
	}

	for _, p := range registry.List() {
		if !kinds[p.Kind] {
			t.Errorf("product %s has unknown kind %q", p.ID, p.Kind)
		}
	}
}

func TestValidateRejectsBadProducts(t *testing.T) {
	t.Run("UnknownCardType", func(t *testing.T) {
		p := &domain.Product{ID: "bad", CardType: "crypto"}
		if err := validate(p); err == nil {
			t.Error("expected error for unknown card type")
		}
	})

	t.Run("DuplicateQuestionName", func(t *testing.T) {
		p := &domain.Product{
			ID:       "bad",
			CardType: domain.CardTypePoints,
			Questions: []domain.QuestionSpec{
				{Name: "isWeekend"},
				{Name: "isWeekend"},
			},
		}
		if err := validate(p); err == nil {
			t.Error("expected error for duplicate question name")
		}
	})

	t.Run("CashbackWithoutCeilings", func(t *testing.T) {
		p := &domain.Product{
			ID:       "bad",
			CardType: domain.CardTypeCashback,
			Kind:     domain.KindCashback,
		}
		if err := validate(p); err == nil {
			t.Error("expected error for cashback product without ceilings")
		}
	})
}

func TestCappedProductsCarryLimits(t *testing.T) {
	registry, _ := New()

	for _, id := range []string{"intermiles-odyssey", "intermiles-voyage"} {
		p, err := registry.Lookup(id)
		if err != nil {
			t.Fatalf("Lookup(%s) failed: %v", id, err)
		}
		if p.Capping == nil {
			t.Errorf("%s: expected capping", id)
			continue
		}
		if p.Capping.MaxQuantity <= 0 {
			t.Errorf("%s: expected positive cap, got %.0f", id, p.Capping.MaxQuantity)
		}
		if p.Capping.Period == "" {
			t.Errorf("%s: expected cap period", id)
		}
	}
}
