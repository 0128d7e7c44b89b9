// Package catalog holds the product catalog: the Product model, the Source
// capability the cart validates stock against, and its mock and remote
// implementations.
package catalog

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrNotFound       = errors.New("product not found")
	ErrInvalidPayload = errors.New("invalid payload")
	ErrUnavailable    = errors.New("catalog unavailable")
)

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidPayload, fmt.Sprintf(format, args...))
}

// Source is the product-lookup capability. Implementations may be slow or
// remote; every call honours ctx.
type Source interface {
	Get(ctx context.Context, id string) (Product, error)
	List(ctx context.Context) ([]Product, error)
	PatchStock(ctx context.Context, id string, stock int) (Product, error)
	Create(ctx context.Context, patch ProductPatch) (Product, error)
	Update(ctx context.Context, id string, patch ProductPatch) (Product, error)
	Delete(ctx context.Context, id string) (Product, error)
}
