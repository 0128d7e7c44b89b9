package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/argea-gh/herbaprimax-V3/internal/middleware"
)

// RemoteSource talks to a real catalog backend exposing the /api/products and
// /api/stock routes.
type RemoteSource struct {
	baseURL *url.URL
	http    *http.Client
}

func NewRemoteSource(baseURL string, httpClient *http.Client) (*RemoteSource, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog base url %q: %w", baseURL, err)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &RemoteSource{baseURL: u, http: httpClient}, nil
}

func (r *RemoteSource) Get(ctx context.Context, id string) (Product, error) {
	var p Product
	err := r.do(ctx, http.MethodGet, "/api/products/"+url.PathEscape(id), nil, &p)
	return p, err
}

func (r *RemoteSource) List(ctx context.Context) ([]Product, error) {
	var ps []Product
	if err := r.do(ctx, http.MethodGet, "/api/products", nil, &ps); err != nil {
		return nil, err
	}
	return ps, nil
}

// PatchStock updates the stock and re-reads the product, since the stock
// route only answers with the new figure.
func (r *RemoteSource) PatchStock(ctx context.Context, id string, stock int) (Product, error) {
	var resp struct {
		Stock int `json:"stock"`
	}
	body := map[string]int{"stock": stock}
	if err := r.do(ctx, http.MethodPatch, "/api/stock/"+url.PathEscape(id), body, &resp); err != nil {
		return Product{}, err
	}
	return r.Get(ctx, id)
}

func (r *RemoteSource) Create(ctx context.Context, patch ProductPatch) (Product, error) {
	var p Product
	err := r.do(ctx, http.MethodPost, "/api/products", patch, &p)
	return p, err
}

func (r *RemoteSource) Update(ctx context.Context, id string, patch ProductPatch) (Product, error) {
	var p Product
	err := r.do(ctx, http.MethodPut, "/api/products/"+url.PathEscape(id), patch, &p)
	return p, err
}

func (r *RemoteSource) Delete(ctx context.Context, id string) (Product, error) {
	var p Product
	err := r.do(ctx, http.MethodDelete, "/api/products/"+url.PathEscape(id), nil, &p)
	return p, err
}

func (r *RemoteSource) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	u := r.baseURL.ResolveReference(&url.URL{Path: path})
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cid := middleware.GetCorrelationID(ctx); cid != "" {
		req.Header.Set(middleware.HeaderCorrelationID, cid)
	}

	resp, err := r.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode == http.StatusBadRequest:
		return fmt.Errorf("%w: %s", ErrInvalidPayload, readError(resp.Body))
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return fmt.Errorf("%w: %s %s: status %d", ErrUnavailable, method, path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s response: %w", ErrUnavailable, path, err)
	}
	return nil
}

func readError(r io.Reader) string {
	var e struct {
		Error string `json:"error"`
	}
	raw, _ := io.ReadAll(io.LimitReader(r, 4096))
	if err := json.Unmarshal(raw, &e); err == nil && e.Error != "" {
		return e.Error
	}
	return string(raw)
}
