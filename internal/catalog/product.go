package catalog

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// ErrNotFound indicates the code is not registered in the catalog.
var ErrNotFound = errors.New("catalog: product not found")

// Product holds the static facts of a sellable item.
type Product struct {
	Title       string          `json:"title"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Description string          `json:"description"`
}

// Entry pairs a product with the code it is registered under.
type Entry struct {
	Code    string  `json:"code"`
	Product Product `json:"product"`
}

// Catalog resolves scan codes to products. Implementations return ErrNotFound
// (possibly wrapped) for unknown codes.
type Catalog interface {
	Lookup(ctx context.Context, code string) (Product, error)
}

// Lister is implemented by catalogs that can enumerate their entries.
type Lister interface {
	List(ctx context.Context) ([]Entry, error)
}
