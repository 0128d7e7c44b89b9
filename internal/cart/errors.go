package cart

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidQuantity       = errors.New("invalid quantity")
	ErrItemNotInCart         = errors.New("item not in cart")
	ErrValidationUnavailable = errors.New("stock validation unavailable")
	ErrPersist               = errors.New("persist cart")
)

// StockExceededError reports a request for more units than the catalog has.
type StockExceededError struct {
	ProductID string
	Requested int
	Remaining int
}

func (e *StockExceededError) Error() string {
	return fmt.Sprintf("stock exceeded for %s: requested %d, %d remaining", e.ProductID, e.Requested, e.Remaining)
}

// ValidationError wraps a failed stock lookup. It matches both
// ErrValidationUnavailable and the lookup's own cause, so a missing product
// is also catalog.ErrNotFound.
type ValidationError struct {
	ProductID string
	Err       error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validate stock for %s: %v", e.ProductID, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func (e *ValidationError) Is(target error) bool { return target == ErrValidationUnavailable }
