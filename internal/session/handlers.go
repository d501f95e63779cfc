package session

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/kasir-scan/internal/cart"
	"github.com/noah-isme/kasir-scan/internal/common"
	"github.com/noah-isme/kasir-scan/internal/scan"
)

// Handler exposes the checkout session over HTTP.
type Handler struct {
	manager  *Manager
	validate *validator.Validate
}

// HandlerConfig configures the Handler dependencies.
type HandlerConfig struct {
	Manager   *Manager
	Validator *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(cfg HandlerConfig) *Handler {
	v := cfg.Validator
	if v == nil {
		v = validator.New(validator.WithRequiredStructEnabled())
	}
	return &Handler{manager: cfg.Manager, validate: v}
}

// Routes mounts the session endpoints. scanLimit wraps the decode ingress
// and may be nil.
func (h *Handler) Routes(r chi.Router, scanLimit func(http.Handler) http.Handler) {
	r.Get("/", h.Get)
	if scanLimit != nil {
		r.With(scanLimit).Post("/scans", h.Scan)
	} else {
		r.Post("/scans", h.Scan)
	}
	r.Post("/items", h.AddItem)
	r.Post("/lines/{index}/increment", h.Increment)
	r.Post("/lines/{index}/decrement", h.Decrement)
	r.Put("/discount", h.SetDiscount)
	r.Post("/restart", h.Restart)
	r.Get("/payment", h.Payment)
}

type codeRequest struct {
	Code string     `json:"code" validate:"required,max=512"`
	At   *time.Time `json:"at"`
}

type discountRequest struct {
	Percent *decimal.Decimal `json:"percent" validate:"required"`
}

type scanResponse struct {
	Outcome Outcome `json:"outcome"`
	Invoice View    `json:"invoice"`
}

type lineResponse struct {
	Line    cart.Line `json:"line"`
	Invoice View      `json:"invoice"`
}

// Get handles GET /api/v1/session.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	h.writeView(w, http.StatusOK, h.manager.Current())
}

// Scan handles POST /api/v1/session/scans: one raw decode, debounced.
func (h *Handler) Scan(w http.ResponseWriter, r *http.Request) {
	var req codeRequest
	if !h.decode(w, r, &req) {
		return
	}
	s := h.manager.Current()
	d := scan.Decode{Text: req.Code}
	if req.At != nil {
		d.At = *req.At
	}
	outcome, err := s.Observe(r.Context(), d)
	if err != nil {
		writeError(w, err)
		return
	}
	h.writeOutcome(w, s, outcome)
}

// AddItem handles POST /api/v1/session/items: a manually keyed code.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req codeRequest
	if !h.decode(w, r, &req) {
		return
	}
	s := h.manager.Current()
	outcome, err := s.AddScan(r.Context(), req.Code)
	if err != nil {
		writeError(w, err)
		return
	}
	h.writeOutcome(w, s, outcome)
}

// Increment handles POST /api/v1/session/lines/{index}/increment.
func (h *Handler) Increment(w http.ResponseWriter, r *http.Request) {
	index, ok := lineIndex(w, r)
	if !ok {
		return
	}
	s := h.manager.Current()
	line, err := s.IncrementLine(r.Context(), index)
	if err != nil {
		writeError(w, err)
		return
	}
	h.writeLine(w, s, line)
}

// Decrement handles POST /api/v1/session/lines/{index}/decrement.
func (h *Handler) Decrement(w http.ResponseWriter, r *http.Request) {
	index, ok := lineIndex(w, r)
	if !ok {
		return
	}
	s := h.manager.Current()
	line, err := s.DecrementLine(r.Context(), index)
	if err != nil {
		writeError(w, err)
		return
	}
	h.writeLine(w, s, line)
}

// SetDiscount handles PUT /api/v1/session/discount.
func (h *Handler) SetDiscount(w http.ResponseWriter, r *http.Request) {
	var req discountRequest
	if !h.decode(w, r, &req) {
		return
	}
	s := h.manager.Current()
	if err := s.SetDiscount(r.Context(), *req.Percent); err != nil {
		writeError(w, err)
		return
	}
	h.writeView(w, http.StatusOK, s)
}

// Restart handles POST /api/v1/session/restart.
func (h *Handler) Restart(w http.ResponseWriter, r *http.Request) {
	s, err := h.manager.Restart(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	h.writeView(w, http.StatusCreated, s)
}

// Payment handles GET /api/v1/session/payment.
func (h *Handler) Payment(w http.ResponseWriter, r *http.Request) {
	pv, err := h.manager.Current().Payment()
	if err != nil {
		writeError(w, err)
		return
	}
	common.Data(w, http.StatusOK, pv)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		common.WriteError(w, common.BadRequest("validation failed", err).WithDetails(validationDetails(err)))
		return false
	}
	return true
}

func (h *Handler) writeOutcome(w http.ResponseWriter, s *Session, outcome Outcome) {
	view, err := s.View()
	if err != nil {
		writeError(w, err)
		return
	}
	common.Data(w, http.StatusOK, scanResponse{Outcome: outcome, Invoice: view})
}

func (h *Handler) writeLine(w http.ResponseWriter, s *Session, line cart.Line) {
	view, err := s.View()
	if err != nil {
		writeError(w, err)
		return
	}
	common.Data(w, http.StatusOK, lineResponse{Line: line, Invoice: view})
}

func (h *Handler) writeView(w http.ResponseWriter, status int, s *Session) {
	view, err := s.View()
	if err != nil {
		writeError(w, err)
		return
	}
	common.Data(w, status, view)
}

func lineIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid line index", nil)
		return 0, false
	}
	return index, true
}

func validationDetails(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = fe.Tag()
	}
	return out
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrEmptyCode):
		common.WriteError(w, common.BadRequest("code is required", err))
	case errors.Is(err, cart.ErrLineNotFound):
		common.WriteError(w, common.NotFound("line not found", err))
	case errors.Is(err, ErrInvalidDiscount):
		common.WriteError(w, common.BadRequest("discount percent out of range", err))
	case errors.Is(err, ErrEmptyCart):
		common.WriteError(w, common.NewAppError("CART_EMPTY", "scan an item before requesting payment", http.StatusConflict, err))
	case errors.Is(err, errPaymentConfig):
		common.WriteError(w, common.NewAppError("PAYMENT_MISCONFIGURED", "payment request could not be built", http.StatusInternalServerError, err))
	case errors.Is(err, cart.ErrCatalogUnavailable):
		common.WriteError(w, common.Unavailable("CATALOG_UNAVAILABLE", "catalog unavailable", err))
	default:
		common.WriteError(w, err)
	}
}
