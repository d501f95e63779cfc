package cart

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/kasir-scan/internal/catalog"
)

func TestUpsertAppendsThenIncrements(t *testing.T) {
	shirt := catalog.Product{Title: "Technosports T-Shirt", UnitPrice: decimal.NewFromInt(425)}
	bottle := catalog.Product{Title: "Technosports Premium Bottle", UnitPrice: decimal.NewFromInt(799)}

	c1, wasNew := Upsert(nil, "shirt", shirt)
	if !wasNew || len(c1) != 1 || c1[0].Quantity != 1 {
		t.Fatalf("expected new line with qty 1, got %+v new=%v", c1, wasNew)
	}
	c2, wasNew := Upsert(c1, "bottle", bottle)
	if !wasNew || len(c2) != 2 || c2[1].Code != "bottle" {
		t.Fatalf("expected bottle appended, got %+v", c2)
	}
	c3, wasNew := Upsert(c2, "shirt", shirt)
	if wasNew {
		t.Fatalf("expected existing line to be incremented")
	}
	if c3[0].Code != "shirt" || c3[0].Quantity != 2 || c3[1].Quantity != 1 {
		t.Fatalf("unexpected cart %+v", c3)
	}
	if c2[0].Quantity != 1 {
		t.Fatalf("input cart was mutated: %+v", c2)
	}
}

func TestCartHelpers(t *testing.T) {
	c := Cart{{Code: "a", Quantity: 2}, {Code: "b", Quantity: 3}}
	if c.Index("b") != 1 || c.Index("z") != -1 {
		t.Fatalf("unexpected index results")
	}
	if c.TotalQuantity() != 5 {
		t.Fatalf("expected total quantity 5, got %d", c.TotalQuantity())
	}
	if Cart(nil).Clone() != nil {
		t.Fatalf("expected nil clone of nil cart")
	}
}
