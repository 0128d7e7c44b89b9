package httpapi

import (
	"net/http"

	"github.com/argea-gh/herbaprimax-V3/internal/cart"
	"github.com/go-chi/chi/v5"
)

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.cart.Snapshot())
}

type addItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  *int   `json:"quantity"`
}

// AddItem adds quantity units (one when omitted) of a product to the cart.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.ProductID == "" {
		writeError(w, http.StatusBadRequest, "productId is required")
		return
	}
	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}

	snap, err := h.cart.Add(r.Context(), req.ProductID, qty)
	h.writeCartResult(w, r, snap, err)
}

type setQuantityRequest struct {
	Quantity *int `json:"quantity"`
}

func (h *Handler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	var req setQuantityRequest
	if err := decodeJSON(w, r, &req); err != nil || req.Quantity == nil {
		writeError(w, http.StatusBadRequest, "quantity must be a number")
		return
	}
	snap, err := h.cart.SetQuantity(r.Context(), chi.URLParam(r, "id"), *req.Quantity)
	h.writeCartResult(w, r, snap, err)
}

func (h *Handler) IncrementItem(w http.ResponseWriter, r *http.Request) {
	snap, err := h.cart.Increment(r.Context(), chi.URLParam(r, "id"))
	h.writeCartResult(w, r, snap, err)
}

func (h *Handler) DecrementItem(w http.ResponseWriter, r *http.Request) {
	snap, err := h.cart.Decrement(r.Context(), chi.URLParam(r, "id"))
	h.writeCartResult(w, r, snap, err)
}

func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	snap, err := h.cart.Remove(r.Context(), chi.URLParam(r, "id"))
	h.writeCartResult(w, r, snap, err)
}

func (h *Handler) ResetCart(w http.ResponseWriter, r *http.Request) {
	snap, err := h.cart.Reset(r.Context())
	h.writeCartResult(w, r, snap, err)
}

func (h *Handler) writeCartResult(w http.ResponseWriter, r *http.Request, snap cart.Snapshot, err error) {
	if err != nil {
		h.writeCartError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}
