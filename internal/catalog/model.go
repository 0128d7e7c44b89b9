package catalog

import (
	"math"
	"strconv"
)

// Product is a catalog record. Prices are whole rupiah.
type Product struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Price       int64    `json:"price"`
	Category    string   `json:"category"`
	Image       string   `json:"image"`
	Bestseller  bool     `json:"bestseller"`
	Short       string   `json:"short"`
	Description string   `json:"description"`
	Benefits    []string `json:"benefits"`
	Composition []string `json:"composition"`
	Stock       int      `json:"stock"`
}

// ProductPatch is a partial product. Nil fields are left untouched.
type ProductPatch struct {
	ID          *string   `json:"id,omitempty"`
	Name        *string   `json:"name,omitempty"`
	Price       *int64    `json:"price,omitempty"`
	Category    *string   `json:"category,omitempty"`
	Image       *string   `json:"image,omitempty"`
	Bestseller  *bool     `json:"bestseller,omitempty"`
	Short       *string   `json:"short,omitempty"`
	Description *string   `json:"description,omitempty"`
	Benefits    *[]string `json:"benefits,omitempty"`
	Composition *[]string `json:"composition,omitempty"`
	Stock       *int      `json:"stock,omitempty"`
}

func (p ProductPatch) Validate() error {
	if p.Price != nil && *p.Price < 0 {
		return invalidf("price must be non-negative")
	}
	if p.Stock != nil && *p.Stock < 0 {
		return invalidf("stock must be non-negative")
	}
	return nil
}

// Apply returns prod with every non-nil field of p copied over it. The id is
// not touched; callers decide whether a patch may choose it.
func (p ProductPatch) Apply(prod Product) Product {
	if p.Name != nil {
		prod.Name = *p.Name
	}
	if p.Price != nil {
		prod.Price = *p.Price
	}
	if p.Category != nil {
		prod.Category = *p.Category
	}
	if p.Image != nil {
		prod.Image = *p.Image
	}
	if p.Bestseller != nil {
		prod.Bestseller = *p.Bestseller
	}
	if p.Short != nil {
		prod.Short = *p.Short
	}
	if p.Description != nil {
		prod.Description = *p.Description
	}
	if p.Benefits != nil {
		prod.Benefits = append([]string{}, (*p.Benefits)...)
	}
	if p.Composition != nil {
		prod.Composition = append([]string{}, (*p.Composition)...)
	}
	if p.Stock != nil {
		prod.Stock = *p.Stock
	}
	return prod
}

// ParseStock validates the numeric stock of a PATCH /api/stock payload.
func ParseStock(v float64) (int, error) {
	if v < 0 || v != math.Trunc(v) || v > math.MaxInt32 {
		return 0, invalidf("stock must be a non-negative integer, got %s", strconv.FormatFloat(v, 'f', -1, 64))
	}
	return int(v), nil
}
