package pricing

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestComputeScenario(t *testing.T) {
	items := []Item{{Quantity: 2, UnitPrice: d("425")}}
	sum := Compute(items, d("10"))
	if !sum.Subtotal.Equal(d("850")) {
		t.Fatalf("expected subtotal 850, got %s", sum.Subtotal)
	}
	if got := FormatMoney(sum.DiscountAmount); got != "85.00" {
		t.Fatalf("expected discount 85.00, got %s", got)
	}
	if got := FormatMoney(sum.Final); got != "765.00" {
		t.Fatalf("expected final 765.00, got %s", got)
	}
	if sum.TotalItems != 2 || !sum.LineTotals[0].Equal(d("850")) {
		t.Fatalf("unexpected line totals %+v", sum)
	}
}

func TestComputeZeroDiscountKeepsSubtotal(t *testing.T) {
	carts := [][]Item{
		nil,
		{{Quantity: 1, UnitPrice: d("425")}},
		{{Quantity: 3, UnitPrice: d("799")}, {Quantity: 1, UnitPrice: d("54999")}, {Quantity: 7, UnitPrice: d("0.35")}},
	}
	for _, items := range carts {
		sum := Compute(items, decimal.Zero)
		if !sum.Subtotal.Equal(sum.Final) {
			t.Fatalf("expected subtotal == final, got %s vs %s", sum.Subtotal, sum.Final)
		}
	}
}

func TestComputeIsMonotonicInDiscount(t *testing.T) {
	items := []Item{{Quantity: 3, UnitPrice: d("525")}, {Quantity: 1, UnitPrice: d("1299")}}
	prev := Compute(items, d("-50")).Final
	for p := -49; p <= 250; p++ {
		cur := Compute(items, decimal.NewFromInt(int64(p))).Final
		if cur.GreaterThan(prev) {
			t.Fatalf("final increased from %s to %s at %d%%", prev, cur, p)
		}
		if p >= 100 && !cur.IsZero() {
			t.Fatalf("expected zero final at %d%%, got %s", p, cur)
		}
		prev = cur
	}
}

func TestComputeOverHundredPercentKeepsRawDiscount(t *testing.T) {
	sum := Compute([]Item{{Quantity: 1, UnitPrice: d("200")}}, d("150"))
	if !sum.DiscountAmount.Equal(d("300")) {
		t.Fatalf("expected raw discount 300, got %s", sum.DiscountAmount)
	}
	if !sum.Final.IsZero() {
		t.Fatalf("expected final clamped to zero, got %s", sum.Final)
	}
}

func TestComputeNegativeDiscountRaisesFinal(t *testing.T) {
	sum := Compute([]Item{{Quantity: 1, UnitPrice: d("100")}}, d("-10"))
	if got := FormatMoney(sum.Final); got != "110.00" {
		t.Fatalf("expected 110.00, got %s", got)
	}
}

func TestComputeIsReferentiallyTransparent(t *testing.T) {
	items := []Item{{Quantity: 2, UnitPrice: d("19.99")}, {Quantity: 1, UnitPrice: d("5.01")}}
	a := Compute(items, d("12.5"))
	b := Compute(items, d("12.5"))
	if !a.Final.Equal(b.Final) || !a.DiscountAmount.Equal(b.DiscountAmount) || !a.Subtotal.Equal(b.Subtotal) {
		t.Fatalf("expected identical results, got %+v and %+v", a, b)
	}
	if got := FormatMoney(a.DiscountAmount); got != "5.62" {
		t.Fatalf("expected 5.62, got %s", got)
	}
	if !a.DiscountAmount.Equal(d("5.62375")) {
		t.Fatalf("expected unrounded discount, got %s", a.DiscountAmount)
	}
}

func TestComputeSkipsNonPositiveQuantities(t *testing.T) {
	sum := Compute([]Item{{Quantity: 0, UnitPrice: d("10")}, {Quantity: -2, UnitPrice: d("10")}}, decimal.Zero)
	if !sum.Subtotal.IsZero() || sum.TotalItems != 0 {
		t.Fatalf("expected empty totals, got %+v", sum)
	}
}

func TestFormatMoneyRoundsHalfAwayFromZero(t *testing.T) {
	cases := map[string]string{"0": "0.00", "765": "765.00", "1.005": "1.01", "2.344": "2.34", "-1.005": "-1.01"}
	for in, want := range cases {
		if got := FormatMoney(d(in)); got != want {
			t.Fatalf("FormatMoney(%s) = %s, want %s", in, got, want)
		}
	}
}

func TestValidatePercentBoundsToFiniteFloat(t *testing.T) {
	for _, in := range []string{"0", "0e-5000", "10", "150", "-25", "12.5", "1e308", "1e-324"} {
		if err := ValidatePercent(d(in)); err != nil {
			t.Fatalf("expected %s to be accepted, got %v", in, err)
		}
	}
	for _, in := range []string{"1e309", "-1e400", "1e5000000", "1e-325", "1e-2147483647"} {
		if err := ValidatePercent(d(in)); !errors.Is(err, ErrPercentOutOfRange) {
			t.Fatalf("expected %s to be rejected, got %v", in, err)
		}
	}
}
