package catalog

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/kasir-scan/internal/common"
)

// Handler exposes read-only catalog endpoints.
type Handler struct {
	catalog Catalog
}

// HandlerConfig configures the Handler dependencies.
type HandlerConfig struct {
	Catalog Catalog
}

// NewHandler constructs a Handler.
func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{catalog: cfg.Catalog}
}

// List handles GET /api/v1/catalog.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if h.catalog == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "catalog not configured", nil)
		return
	}
	lister, ok := h.catalog.(Lister)
	if !ok {
		common.JSONError(w, http.StatusNotImplemented, "NOT_IMPLEMENTED", "catalog listing not supported", nil)
		return
	}
	entries, err := lister.List(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	if entries == nil {
		entries = []Entry{}
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": entries})
}

// Get handles GET /api/v1/catalog/{code}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if h.catalog == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "catalog not configured", nil)
		return
	}
	code, err := url.PathUnescape(chi.URLParam(r, "code"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid code", nil)
		return
	}
	code = strings.TrimSpace(code)
	if code == "" {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "code is required", nil)
		return
	}
	product, err := h.catalog.Lookup(r.Context(), code)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": Entry{Code: code, Product: product}})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrNotFound) {
		common.WriteError(w, common.NotFound("product not found", err))
		return
	}
	common.WriteError(w, common.Unavailable("CATALOG_UNAVAILABLE", "catalog unavailable", err))
}
