package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/shopspring/decimal"
)

// Static is an in-memory read-only catalog.
type Static struct {
	products map[string]Product
	order    []string
}

// NewStatic copies the provided entries into an immutable catalog. Later
// duplicates of a code replace earlier ones while keeping the first position.
func NewStatic(entries []Entry) (*Static, error) {
	s := &Static{products: make(map[string]Product, len(entries))}
	for _, e := range entries {
		if e.Code == "" {
			return nil, fmt.Errorf("catalog: empty code for %q", e.Product.Title)
		}
		if e.Product.UnitPrice.IsNegative() {
			return nil, fmt.Errorf("catalog: negative price for code %s", e.Code)
		}
		if _, seen := s.products[e.Code]; !seen {
			s.order = append(s.order, e.Code)
		}
		s.products[e.Code] = e.Product
	}
	return s, nil
}

// LoadFile reads a JSON object mapping codes to products.
func LoadFile(path string) (*Static, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	var raw map[string]Product
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("catalog: decode %s: %w", path, err)
	}
	codes := make([]string, 0, len(raw))
	for code := range raw {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	entries := make([]Entry, 0, len(codes))
	for _, code := range codes {
		entries = append(entries, Entry{Code: code, Product: raw[code]})
	}
	return NewStatic(entries)
}

// Lookup implements Catalog.
func (s *Static) Lookup(_ context.Context, code string) (Product, error) {
	if s == nil {
		return Product{}, ErrNotFound
	}
	p, ok := s.products[code]
	if !ok {
		return Product{}, ErrNotFound
	}
	return p, nil
}

// List implements Lister in registration order.
func (s *Static) List(_ context.Context) ([]Entry, error) {
	if s == nil {
		return nil, nil
	}
	out := make([]Entry, 0, len(s.order))
	for _, code := range s.order {
		out = append(out, Entry{Code: code, Product: s.products[code]})
	}
	return out, nil
}

// Len reports the number of registered codes.
func (s *Static) Len() int {
	if s == nil {
		return 0
	}
	return len(s.products)
}

// DefaultEntries is the built-in Technosports counter catalog.
func DefaultEntries() []Entry {
	return []Entry{
		{Code: "8905639296492", Product: Product{Title: "Technosports T-Shirt", UnitPrice: decimal.NewFromInt(425), Description: "Breathable cotton sportswear for summer collection."}},
		{Code: "8905639127604", Product: Product{Title: "polo t shirtBox", UnitPrice: decimal.NewFromInt(525), Description: "Free sample order from Technosports. No payment required."}},
		{Code: "219143198693481", Product: Product{Title: "polo t shirtBox", UnitPrice: decimal.NewFromInt(525), Description: "Free sample order from Technosports. No payment required."}},
		{Code: "8905631870560", Product: Product{Title: "Technosports Premium Bottle", UnitPrice: decimal.NewFromInt(799), Description: "Leak-proof, BPA-free sports bottle. Durable and lightweight."}},
		{Code: "9D3P0PA#ACJ", Product: Product{Title: "HP Energy Star Package", UnitPrice: decimal.NewFromInt(54999), Description: "HP Energy Star certified product, eco-friendly packaging."}},
		{Code: "101883388759", Product: Product{Title: "Technosports Kitchenware", UnitPrice: decimal.NewFromInt(1299), Description: "Premium quality kitchen utensil for daily cooking needs."}},
	}
}

// Default returns the built-in catalog.
func Default() *Static {
	s, err := NewStatic(DefaultEntries())
	if err != nil {
		panic(err)
	}
	return s
}
