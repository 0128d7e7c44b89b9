package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type linkResponse struct {
	URL string `json:"url"`
}

func (h *Handler) CartCheckoutLink(w http.ResponseWriter, r *http.Request) {
	link, err := h.links.CartLink(h.cart.Snapshot())
	if err != nil {
		h.writeCartError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, linkResponse{URL: link})
}

// ProductOrderLink builds a "buy now" link for qty units of one product.
func (h *Handler) ProductOrderLink(w http.ResponseWriter, r *http.Request) {
	p, err := h.products.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeCatalogError(w, r, err)
		return
	}
	qty := atoiOr(r.URL.Query().Get("qty"), 1)
	writeJSON(w, http.StatusOK, linkResponse{URL: h.links.ProductLink(p, qty)})
}

func (h *Handler) ContactLink(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, linkResponse{URL: h.links.InquiryLink()})
}
