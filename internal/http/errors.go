package httpapi

import (
	"errors"
	"net/http"

	"github.com/argea-gh/herbaprimax-V3/internal/cart"
	"github.com/argea-gh/herbaprimax-V3/internal/catalog"
	"github.com/argea-gh/herbaprimax-V3/internal/checkout"
	"go.uber.org/zap"
)

type stockExceededResponse struct {
	Error     string `json:"error"`
	ProductID string `json:"productId"`
	Requested int    `json:"requested"`
	Remaining int    `json:"remaining"`
}

// writeCartError maps cart and catalog failures onto statuses. A missing
// product is checked before the generic validation failure because a
// ValidationError matches both.
func (h *Handler) writeCartError(w http.ResponseWriter, r *http.Request, err error) {
	var exceeded *cart.StockExceededError
	switch {
	case errors.As(err, &exceeded):
		writeJSON(w, http.StatusConflict, stockExceededResponse{
			Error:     "stock exceeded",
			ProductID: exceeded.ProductID,
			Requested: exceeded.Requested,
			Remaining: exceeded.Remaining,
		})
	case errors.Is(err, cart.ErrInvalidQuantity):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, cart.ErrItemNotInCart), errors.Is(err, catalog.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, checkout.ErrEmptyCart):
		writeError(w, http.StatusConflict, "cart is empty")
	case errors.Is(err, cart.ErrValidationUnavailable):
		h.logger.Warn("stock validation unavailable", zap.String("path", r.URL.Path), zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "stock validation unavailable")
	default:
		h.logger.Error("cart request failed", zap.String("path", r.URL.Path), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (h *Handler) writeCatalogError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, catalog.ErrInvalidPayload):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, catalog.ErrUnavailable):
		h.logger.Warn("catalog unavailable", zap.String("path", r.URL.Path), zap.Error(err))
		writeError(w, http.StatusBadGateway, "catalog unavailable")
	default:
		h.logger.Error("catalog request failed", zap.String("path", r.URL.Path), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
