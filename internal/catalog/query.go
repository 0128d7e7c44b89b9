package catalog

import "strings"

const DefaultPerPage = 12

// Query narrows a product list the way the storefront product page does.
type Query struct {
	Category   string
	Search     string
	Bestseller bool
	Page       int
	PerPage    int
}

type Page struct {
	Items      []Product
	Total      int
	Page       int
	TotalPages int
}

// Filter applies q to products. Page is clamped to the available range;
// a zero Page returns every match on a single page.
func Filter(products []Product, q Query) Page {
	search := strings.ToLower(strings.TrimSpace(q.Search))

	matched := make([]Product, 0, len(products))
	for _, p := range products {
		if q.Category != "" && p.Category != q.Category {
			continue
		}
		if q.Bestseller && !p.Bestseller {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.Short), search) {
			continue
		}
		matched = append(matched, p)
	}

	if q.Page <= 0 {
		return Page{Items: matched, Total: len(matched), Page: 1, TotalPages: 1}
	}

	perPage := q.PerPage
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	totalPages := max(1, (len(matched)+perPage-1)/perPage)
	page := min(q.Page, totalPages)
	start := (page - 1) * perPage
	end := min(start+perPage, len(matched))

	return Page{
		Items:      matched[start:end],
		Total:      len(matched),
		Page:       page,
		TotalPages: totalPages,
	}
}
