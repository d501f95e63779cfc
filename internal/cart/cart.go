// Package cart aggregates logical scans into distinct lines with quantities.
package cart

import "github.com/noah-isme/kasir-scan/internal/catalog"

// State is the coarse lifecycle of a cart.
type State string

const (
	// StateEmpty is the initial state before any successful scan.
	StateEmpty State = "empty"
	// StateHasItems holds once the first line exists; there is no way back.
	StateHasItems State = "has_items"
)

// Line is one distinct item with its aggregated quantity.
type Line struct {
	Code     string          `json:"code"`
	Product  catalog.Product `json:"product"`
	Quantity int             `json:"quantity"`
}

// Cart is the ordered set of lines in first-seen order. Codes are unique and
// every quantity is at least 1.
type Cart []Line

// Index returns the position of code, or -1.
func (c Cart) Index(code string) int {
	for i := range c {
		if c[i].Code == code {
			return i
		}
	}
	return -1
}

// TotalQuantity sums all line quantities.
func (c Cart) TotalQuantity() int {
	n := 0
	for _, l := range c {
		n += l.Quantity
	}
	return n
}

// Clone returns an independent copy.
func (c Cart) Clone() Cart {
	if c == nil {
		return nil
	}
	out := make(Cart, len(c))
	copy(out, c)
	return out
}

// Upsert returns a new cart with one more unit of code. An existing line keeps
// its position and product snapshot; otherwise a quantity-1 line is appended.
// The input cart is never modified.
func Upsert(c Cart, code string, p catalog.Product) (Cart, bool) {
	if i := c.Index(code); i >= 0 {
		next := c.Clone()
		next[i].Quantity++
		return next, false
	}
	next := make(Cart, len(c), len(c)+1)
	copy(next, c)
	return append(next, Line{Code: code, Product: p, Quantity: 1}), true
}
