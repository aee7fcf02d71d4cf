// Package catalog holds the card product rule registry.
//
// Membership is closed and known at build time: the registry is constructed
// once from the product tables in products.go and is read-only afterwards.
package catalog

import (
	"errors"
	"fmt"
	"sort"

	"github.com/openrewards/cardperk/internal/domain"
)

// ErrNotFound is returned when a product ID is not in the registry.
var ErrNotFound = errors.New("product not found")

// Registry is the read-only product rule registry.
type Registry struct {
	products map[string]*domain.Product
	ids      []string
}

// New builds the registry from the shipped product tables and validates
// basic invariants (unique IDs, unique question names per product).
func New() (*Registry, error) {
	r := &Registry{
		products: make(map[string]*domain.Product),
	}

	for _, p := range Products() {
		if p.ID == "" {
			return nil, fmt.Errorf("product %q has empty ID", p.Name)
		}
		if _, dup := r.products[p.ID]; dup {
			return nil, fmt.Errorf("duplicate product ID %q", p.ID)
		}
		if err := validate(p); err != nil {
			return nil, fmt.Errorf("product %q: %w", p.ID, err)
		}
		r.products[p.ID] = p
		r.ids = append(r.ids, p.ID)
	}

	sort.Strings(r.ids)
	return r, nil
}

// Lookup returns the rule definition for a product ID.
func (r *Registry) Lookup(productID string) (*domain.Product, error) {
	p, ok := r.products[productID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, productID)
	}
	return p, nil
}

// List returns all products ordered by ID.
func (r *Registry) List() []*domain.Product {
	out := make([]*domain.Product, 0, len(r.ids))
	for _, id := range r.ids {
		out = append(out, r.products[id])
	}
	return out
}

// Count returns the number of registered products.
func (r *Registry) Count() int {
	return len(r.products)
}

func validate(p *domain.Product) error {
	switch p.CardType {
	case domain.CardTypePoints, domain.CardTypeMiles, domain.CardTypeCashback:
	default:
		return fmt.Errorf("unknown card type %q", p.CardType)
	}

	seen := make(map[string]bool, len(p.Questions))
	for _, q := range p.Questions {
		if q.Name == "" {
			return errors.New("question with empty name")
		}
		if seen[q.Name] {
			return fmt.Errorf("duplicate question name %q", q.Name)
		}
		seen[q.Name] = true
	}

	if p.Kind == domain.KindCashback && (p.MaxEligibleSpend <= 0 || p.MaxCashback <= 0) {
		return errors.New("cashback product without spend/cashback ceilings")
	}
	return nil
}
