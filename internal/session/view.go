package session

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/noah-isme/kasir-scan/internal/cart"
	"github.com/noah-isme/kasir-scan/internal/payment"
	"github.com/noah-isme/kasir-scan/internal/pricing"
)

// ErrEmptyCart is returned when a payment request is asked for before any
// item has been scanned.
var ErrEmptyCart = errors.New("session: cart is empty")

var errPaymentConfig = errors.New("session: payment misconfigured")

// Footer is printed under every invoice.
const Footer = "This is a computer-generated invoice. No signature required."

// LineView is one invoice row.
type LineView struct {
	Index       int    `json:"index"`
	Code        string `json:"code"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	UnitPrice   string `json:"unitPrice"`
	Quantity    int    `json:"quantity"`
	LineTotal   string `json:"lineTotal"`
}

// PaymentView is the payable request with its deep link and QR image.
type PaymentView struct {
	Request    payment.Request `json:"request"`
	URI        string          `json:"uri"`
	QRImageURL string          `json:"qrImageUrl"`
}

// View is the rendered invoice. Amounts carry two decimals.
type View struct {
	SessionID       uuid.UUID    `json:"sessionId"`
	Sequence        uint64       `json:"sequence"`
	State           cart.State   `json:"state"`
	Seller          Seller       `json:"seller"`
	InvoiceNumber   string       `json:"invoiceNumber"`
	InvoiceDate     string       `json:"invoiceDate"`
	ShipmentType    string       `json:"shipmentType"`
	TotalItems      int          `json:"totalItems"`
	Lines           []LineView   `json:"lines"`
	Subtotal        string       `json:"subtotal"`
	DiscountPercent string       `json:"discountPercent"`
	DiscountAmount  string       `json:"discountAmount"`
	FinalAmount     string       `json:"finalAmount"`
	Notice          string       `json:"notice,omitempty"`
	Payment         *PaymentView `json:"payment,omitempty"`
	Footer          string       `json:"footer"`
}

// View renders the invoice for the current state. The payment block is only
// present once the cart has items.
func (s *Session) View() (View, error) {
	s.mu.Lock()
	lines := s.agg.Lines()
	state := s.agg.State()
	discount := s.discount
	notice := s.notice
	seq := s.seq
	s.mu.Unlock()

	summary := pricing.Compute(toItems(lines), discount)
	rows := make([]LineView, len(lines))
	for i, l := range lines {
		rows[i] = LineView{
			Index:       i,
			Code:        l.Code,
			Title:       l.Product.Title,
			Description: l.Product.Description,
			UnitPrice:   pricing.FormatMoney(l.Product.UnitPrice),
			Quantity:    l.Quantity,
			LineTotal:   pricing.FormatMoney(summary.LineTotals[i]),
		}
	}
	shipment := s.cfg.ShipmentType
	if shipment == "" {
		shipment = "COD"
	}
	v := View{
		SessionID:       s.id,
		Sequence:        seq,
		State:           state,
		Seller:          s.cfg.Seller,
		InvoiceNumber:   s.invoiceNo,
		InvoiceDate:     s.startedAt.Format("2006-01-02"),
		ShipmentType:    shipment,
		TotalItems:      summary.TotalItems,
		Lines:           rows,
		Subtotal:        pricing.FormatMoney(summary.Subtotal),
		DiscountPercent: summary.DiscountPercent.String(),
		DiscountAmount:  pricing.FormatMoney(summary.DiscountAmount),
		FinalAmount:     pricing.FormatMoney(summary.Final),
		Notice:          notice,
		Footer:          Footer,
	}
	if state == cart.StateHasItems {
		pv, err := s.paymentFor(summary)
		if err != nil {
			return View{}, err
		}
		v.Payment = &pv
	}
	return v, nil
}

// Payment builds the payment request for the current final amount.
func (s *Session) Payment() (PaymentView, error) {
	s.mu.Lock()
	empty := s.agg.Len() == 0
	s.mu.Unlock()
	if empty {
		return PaymentView{}, ErrEmptyCart
	}
	return s.paymentFor(s.Summary())
}

func (s *Session) paymentFor(summary pricing.Summary) (PaymentView, error) {
	currency := s.cfg.Currency
	if currency == "" {
		currency = "INR"
	}
	req, err := payment.Build(summary.Final, s.cfg.Payee, currency)
	if err != nil {
		return PaymentView{}, fmt.Errorf("%w: %w", errPaymentConfig, err)
	}
	uri := req.URI()
	return PaymentView{Request: req, URI: uri, QRImageURL: s.cfg.QR.ImageURL(uri)}, nil
}
