// Package payment builds UPI payment-request payloads for a computed invoice.
package payment

import (
	"errors"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidAmount is returned for negative amounts.
	ErrInvalidAmount = errors.New("payment: amount must not be negative")
	// ErrPayeeRequired is returned when the payee handle is blank.
	ErrPayeeRequired = errors.New("payment: payee handle is required")
)

// Payee identifies who receives the payment.
type Payee struct {
	Handle string
	Name   string
	Note   string
}

// Request is the structured payment request embedded in a UPI URI.
type Request struct {
	PayeeHandle string `json:"payeeHandle"`
	PayeeName   string `json:"payeeName"`
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	Note        string `json:"note"`
}

// Build formats amount to two decimals and assembles a Request. The note
// falls back to "<payee name> Invoice".
func Build(amount decimal.Decimal, payee Payee, currency string) (Request, error) {
	if amount.IsNegative() {
		return Request{}, ErrInvalidAmount
	}
	handle := strings.TrimSpace(payee.Handle)
	if handle == "" {
		return Request{}, ErrPayeeRequired
	}
	note := strings.TrimSpace(payee.Note)
	if note == "" {
		note = strings.TrimSpace(payee.Name + " Invoice")
	}
	return Request{
		PayeeHandle: handle,
		PayeeName:   strings.TrimSpace(payee.Name),
		Amount:      amount.StringFixed(2),
		Currency:    strings.ToUpper(strings.TrimSpace(currency)),
		Note:        note,
	}, nil
}

// URI renders the request as a upi://pay deep link with fields in pa, pn, am,
// cu, tn order.
func (r Request) URI() string {
	var b strings.Builder
	b.WriteString("upi://pay?")
	fields := [...][2]string{
		{"pa", r.PayeeHandle},
		{"pn", r.PayeeName},
		{"am", r.Amount},
		{"cu", r.Currency},
		{"tn", r.Note},
	}
	for i, f := range fields {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(f[0])
		b.WriteByte('=')
		b.WriteString(escape(f[1]))
	}
	return b.String()
}

// escape query-escapes v with spaces as %20; UPI apps do not all decode '+'.
func escape(v string) string {
	return strings.ReplaceAll(url.QueryEscape(v), "+", "%20")
}
