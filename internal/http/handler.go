// Package httpapi exposes the catalog, the cart and the order links as a
// JSON API.
package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/argea-gh/herbaprimax-V3/internal/cart"
	"github.com/argea-gh/herbaprimax-V3/internal/catalog"
	"github.com/argea-gh/herbaprimax-V3/internal/checkout"
	"github.com/argea-gh/herbaprimax-V3/internal/events"
	"github.com/argea-gh/herbaprimax-V3/internal/metrics"
	"github.com/argea-gh/herbaprimax-V3/internal/preferences"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

type Deps struct {
	Logger *zap.Logger

	Products    catalog.Source
	Cart        *cart.Store
	Links       checkout.Builder
	Preferences *preferences.Service

	// Events feeds GET /api/cart/events; the route answers 503 when nil.
	Events  *events.Broadcaster
	Metrics *metrics.Metrics

	CORSAllowOrigins []string
}

type Handler struct {
	logger   *zap.Logger
	products catalog.Source
	cart     *cart.Store
	links    checkout.Builder
	prefs    *preferences.Service
	events   *events.Broadcaster
}

func NewHandler(d Deps) *Handler {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		logger:   logger,
		products: d.Products,
		cart:     d.Cart,
		links:    d.Links,
		prefs:    d.Preferences,
		events:   d.Events,
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "storefront",
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

var errEmptyBody = errors.New("request body is empty")

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
	if errors.Is(err, io.EOF) {
		return errEmptyBody
	}
	return err
}
