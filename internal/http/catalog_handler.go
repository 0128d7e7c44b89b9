package httpapi

import (
	"net/http"
	"strconv"

	"github.com/argea-gh/herbaprimax-V3/internal/catalog"
	"github.com/go-chi/chi/v5"
)

const (
	headerTotalCount = "X-Total-Count"
	headerTotalPages = "X-Total-Pages"
	headerPage       = "X-Page"
)

// ListProducts returns the catalog, optionally filtered by category, q and
// bestseller. Passing page switches to paginated output.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		h.writeCatalogError(w, r, err)
		return
	}

	q := r.URL.Query()
	query := catalog.Query{
		Category:   q.Get("category"),
		Search:     q.Get("q"),
		Bestseller: parseBool(q.Get("bestseller")),
		Page:       atoiOr(q.Get("page"), 0),
		PerPage:    atoiOr(q.Get("perPage"), 0),
	}
	page := catalog.Filter(products, query)

	w.Header().Set(headerTotalCount, strconv.Itoa(page.Total))
	w.Header().Set(headerTotalPages, strconv.Itoa(page.TotalPages))
	w.Header().Set(headerPage, strconv.Itoa(page.Page))
	writeJSON(w, http.StatusOK, page.Items)
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.products.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeCatalogError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var patch catalog.ProductPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	p, err := h.products.Create(r.Context(), patch)
	if err != nil {
		h.writeCatalogError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var patch catalog.ProductPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	p, err := h.products.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		h.writeCatalogError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.products.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeCatalogError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type stockResponse struct {
	Stock int `json:"stock"`
}

func (h *Handler) GetStock(w http.ResponseWriter, r *http.Request) {
	p, err := h.products.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeCatalogError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stockResponse{Stock: p.Stock})
}

type patchStockRequest struct {
	Stock *float64 `json:"stock"`
}

// PatchStock resolves the product before reading the body, so an unknown id
// is a 404 even when the payload is malformed.
func (h *Handler) PatchStock(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.products.Get(r.Context(), id); err != nil {
		h.writeCatalogError(w, r, err)
		return
	}

	var req patchStockRequest
	if err := decodeJSON(w, r, &req); err != nil || req.Stock == nil {
		writeError(w, http.StatusBadRequest, "stock must be a number")
		return
	}
	stock, err := catalog.ParseStock(*req.Stock)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	p, err := h.products.PatchStock(r.Context(), id, stock)
	if err != nil {
		h.writeCatalogError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stockResponse{Stock: p.Stock})
}

func parseBool(v string) bool {
	b, err := strconv.ParseBool(v)
	return err == nil && b
}

func atoiOr(v string, def int) int {
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
