package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/noah-isme/kasir-scan/internal/catalog"
)

// Aggregator owns a cart and applies scans and manual adjustments to it. It
// has a single writer; callers serialize access.
type Aggregator struct {
	catalog catalog.Catalog
	cart    Cart
}

// NewAggregator constructs an Aggregator with an empty cart.
func NewAggregator(c catalog.Catalog) *Aggregator {
	return &Aggregator{catalog: c}
}

// AddScan looks code up and adds one unit of it. Unknown codes return a
// *LookupFailedError and leave the cart unchanged.
func (a *Aggregator) AddScan(ctx context.Context, code string) (Line, bool, error) {
	if a.catalog == nil {
		return Line{}, false, fmt.Errorf("%w: not configured", ErrCatalogUnavailable)
	}
	product, err := a.catalog.Lookup(ctx, code)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return Line{}, false, &LookupFailedError{Code: code}
		}
		return Line{}, false, fmt.Errorf("%w: lookup %q: %w", ErrCatalogUnavailable, code, err)
	}
	next, wasNew := Upsert(a.cart, code, product)
	a.cart = next
	return a.cart[a.cart.Index(code)], wasNew, nil
}

// IncrementLine adds one unit to the line at index.
func (a *Aggregator) IncrementLine(index int) (Line, error) {
	if index < 0 || index >= len(a.cart) {
		return Line{}, fmt.Errorf("index %d: %w", index, ErrLineNotFound)
	}
	a.cart[index].Quantity++
	return a.cart[index], nil
}

// DecrementLine removes one unit from the line at index, never going below 1.
func (a *Aggregator) DecrementLine(index int) (Line, error) {
	if index < 0 || index >= len(a.cart) {
		return Line{}, fmt.Errorf("index %d: %w", index, ErrLineNotFound)
	}
	if a.cart[index].Quantity > 1 {
		a.cart[index].Quantity--
	}
	return a.cart[index], nil
}

// Lines returns a snapshot of the cart.
func (a *Aggregator) Lines() Cart {
	return a.cart.Clone()
}

// Len returns the number of distinct lines.
func (a *Aggregator) Len() int { return len(a.cart) }

// State reports whether any line exists yet.
func (a *Aggregator) State() State {
	if len(a.cart) == 0 {
		return StateEmpty
	}
	return StateHasItems
}
