// Package session owns one checkout: the debouncer, the cart and the
// discount share a single lock so every decode source sees one timeline.
package session

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/kasir-scan/internal/cart"
	"github.com/noah-isme/kasir-scan/internal/catalog"
	"github.com/noah-isme/kasir-scan/internal/events"
	"github.com/noah-isme/kasir-scan/internal/obs"
	"github.com/noah-isme/kasir-scan/internal/payment"
	"github.com/noah-isme/kasir-scan/internal/pricing"
	"github.com/noah-isme/kasir-scan/internal/scan"
)

var (
	// ErrEmptyCode is returned for a blank scanned or entered code.
	ErrEmptyCode = errors.New("session: code is required")

	// ErrInvalidDiscount wraps pricing.ErrPercentOutOfRange.
	ErrInvalidDiscount = errors.New("session: invalid discount")
)

// Seller is the invoice header.
type Seller struct {
	Name  string `json:"name"`
	GSTIN string `json:"gstin"`
	Email string `json:"email"`
}

// Config carries the invoice and payment settings of a session.
type Config struct {
	Seller        Seller
	ShipmentType  string
	InvoicePrefix string
	Payee         payment.Payee
	Currency      string
	QR            payment.QRCode
	Cooldown      time.Duration
}

// FeedbackFunc is invoked after a scan adds a unit, outside the session lock.
type FeedbackFunc func(ctx context.Context, line cart.Line)

// Options configures New.
type Options struct {
	Catalog  catalog.Catalog
	Config   Config
	Bus      *events.Bus
	Feedback FeedbackFunc
	Logger   *zerolog.Logger
	Now      func() time.Time
	Rand     *rand.Rand
}

// Outcome reports what a decode or manual entry did.
type Outcome struct {
	Accepted bool       `json:"accepted"`
	Added    bool       `json:"added"`
	NewLine  bool       `json:"newLine"`
	Line     *cart.Line `json:"line,omitempty"`
	Notice   string     `json:"notice,omitempty"`
}

// Session is a single checkout. All methods are safe for concurrent use.
type Session struct {
	id        uuid.UUID
	startedAt time.Time
	invoiceNo string
	cfg       Config

	bus      *events.Bus
	feedback FeedbackFunc
	logger   *zerolog.Logger
	now      func() time.Time

	mu        sync.Mutex
	debouncer scan.Debouncer
	agg       *cart.Aggregator
	discount  decimal.Decimal
	notice    string
	seq       uint64

	// emitMu is taken before mu is released so events leave in the order
	// their changes were applied.
	emitMu sync.Mutex
}

// New starts a session with an empty cart and emits session.started.
func New(ctx context.Context, opts Options) (*Session, error) {
	if opts.Catalog == nil {
		return nil, errors.New("session: catalog is required")
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	prefix := strings.TrimSpace(opts.Config.InvoicePrefix)
	if prefix == "" {
		prefix = "TS"
	}
	var n int
	if opts.Rand != nil {
		n = opts.Rand.IntN(90000)
	} else {
		n = rand.IntN(90000)
	}

	s := &Session{
		id:        uuid.New(),
		startedAt: now(),
		invoiceNo: fmt.Sprintf("%s-%05d", prefix, n+10000),
		cfg:       opts.Config,
		bus:       opts.Bus,
		feedback:  opts.Feedback,
		logger:    logger,
		now:       now,
		debouncer: scan.Debouncer{Cooldown: opts.Config.Cooldown},
		agg:       cart.NewAggregator(opts.Catalog),
		discount:  decimal.Zero,
	}
	obs.SetInvoiceFinal(0)
	s.mu.Lock()
	seq := s.handoffLocked()
	s.publish(ctx, seq, events.TopicSessionStarted, map[string]any{
		"invoiceNumber": s.invoiceNo,
		"startedAt":     s.startedAt.UTC(),
	})
	return s, nil
}

// ID returns the session identifier.
func (s *Session) ID() uuid.UUID { return s.id }

// InvoiceNumber returns the number fixed at session start.
func (s *Session) InvoiceNumber() string { return s.invoiceNo }

// StartedAt returns when the session began.
func (s *Session) StartedAt() time.Time { return s.startedAt }

// Observe feeds one raw decode through the debouncer. Suppressed repeats
// return a zero Outcome; accepted decodes are applied like AddScan.
func (s *Session) Observe(ctx context.Context, d scan.Decode) (Outcome, error) {
	code := strings.TrimSpace(d.Text)
	if code == "" {
		return Outcome{}, ErrEmptyCode
	}
	at := d.At
	if at.IsZero() {
		at = s.now()
	}

	s.mu.Lock()
	if !s.debouncer.Observe(code, at) {
		s.mu.Unlock()
		obs.RecordScanObserved("suppressed")
		return Outcome{}, nil
	}
	obs.RecordScanObserved("accepted")
	return s.applyLocked(ctx, code)
}

// AddScan applies one logical scan of code without debouncing, as for a
// manually keyed code. A code missing from the catalog sets the notice and
// is reported in the Outcome; only infrastructure failures return an error.
func (s *Session) AddScan(ctx context.Context, code string) (Outcome, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return Outcome{}, ErrEmptyCode
	}
	s.mu.Lock()
	return s.applyLocked(ctx, code)
}

// applyLocked runs with s.mu held and releases it before any callback.
func (s *Session) applyLocked(ctx context.Context, code string) (Outcome, error) {
	line, wasNew, err := s.agg.AddScan(ctx, code)
	if err != nil {
		var missing *cart.LookupFailedError
		if !errors.As(err, &missing) {
			s.mu.Unlock()
			obs.RecordCartScan("error")
			s.logger.Error().Err(err).Str("code", code).Msg("catalog lookup failed")
			return Outcome{}, err
		}
		s.notice = missing.Notice()
		notice := s.notice
		seq := s.handoffLocked()
		obs.RecordCartScan("lookup_failed")
		s.publish(ctx, seq, events.TopicCartLookupFailed, map[string]string{"code": code, "notice": notice})
		return Outcome{Accepted: true, Notice: notice}, nil
	}
	s.notice = ""
	s.recordFinalLocked()
	seq := s.handoffLocked()

	topic := events.TopicCartItemIncremented
	result := "incremented"
	if wasNew {
		topic = events.TopicCartItemAdded
		result = "added"
	}
	obs.RecordCartScan(result)
	s.publish(ctx, seq, topic, line)
	if s.feedback != nil {
		s.feedback(ctx, line)
	}
	return Outcome{Accepted: true, Added: true, NewLine: wasNew, Line: &line}, nil
}

// IncrementLine adds one unit to the line at index.
func (s *Session) IncrementLine(ctx context.Context, index int) (cart.Line, error) {
	s.mu.Lock()
	line, err := s.agg.IncrementLine(index)
	if err != nil {
		s.mu.Unlock()
		return cart.Line{}, err
	}
	s.recordFinalLocked()
	seq := s.handoffLocked()
	obs.RecordLineAdjust("increment")
	s.publish(ctx, seq, events.TopicCartLineIncremented, map[string]any{"index": index, "line": line})
	return line, nil
}

// DecrementLine removes one unit from the line at index, stopping at 1.
func (s *Session) DecrementLine(ctx context.Context, index int) (cart.Line, error) {
	s.mu.Lock()
	line, err := s.agg.DecrementLine(index)
	if err != nil {
		s.mu.Unlock()
		return cart.Line{}, err
	}
	s.recordFinalLocked()
	seq := s.handoffLocked()
	obs.RecordLineAdjust("decrement")
	s.publish(ctx, seq, events.TopicCartLineDecremented, map[string]any{"index": index, "line": line})
	return line, nil
}

// SetDiscount replaces the discount percent. Any percent a float64 can hold is
// accepted, including values outside [0,100]; the final amount is floored at
// zero. Larger or finer percents return ErrInvalidDiscount and leave the
// discount unchanged.
func (s *Session) SetDiscount(ctx context.Context, percent decimal.Decimal) error {
	if err := pricing.ValidatePercent(percent); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDiscount, err)
	}
	if percent.IsZero() {
		percent = decimal.Zero
	}
	s.mu.Lock()
	s.discount = percent
	s.recordFinalLocked()
	seq := s.handoffLocked()
	s.publish(ctx, seq, events.TopicInvoiceDiscountChanged, map[string]string{"percent": percent.String()})
	return nil
}

// Discount returns the current discount percent.
func (s *Session) Discount() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.discount
}

// Notice returns the transient operator notice, if any.
func (s *Session) Notice() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notice
}

// Lines returns a snapshot of the cart.
func (s *Session) Lines() cart.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.agg.Lines()
}

// Summary computes the invoice totals for the current cart.
func (s *Session) Summary() pricing.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return pricing.Compute(toItems(s.agg.Lines()), s.discount)
}

func (s *Session) recordFinalLocked() {
	summary := pricing.Compute(toItems(s.agg.Lines()), s.discount)
	obs.SetInvoiceFinal(summary.Final.InexactFloat64())
}

// Sequence returns the number of the last applied change.
func (s *Session) Sequence() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq
}

// handoffLocked numbers the change just applied, takes emitMu and releases
// mu. The caller must follow with publish.
func (s *Session) handoffLocked() uint64 {
	s.seq++
	seq := s.seq
	s.emitMu.Lock()
	s.mu.Unlock()
	return seq
}

// publish emits one event and releases emitMu.
func (s *Session) publish(ctx context.Context, seq uint64, topic string, payload any) {
	defer s.emitMu.Unlock()
	if s.bus == nil {
		return
	}
	_, err := s.bus.Publish(ctx, events.Draft{Topic: topic, SessionID: s.id, Sequence: seq, Payload: payload})
	if err != nil {
		s.logger.Warn().Err(err).Str("topic", topic).Uint64("sequence", seq).Msg("emit session event")
	}
}

func toItems(lines cart.Cart) []pricing.Item {
	items := make([]pricing.Item, len(lines))
	for i, l := range lines {
		items[i] = pricing.Item{Quantity: l.Quantity, UnitPrice: l.Product.UnitPrice}
	}
	return items
}
