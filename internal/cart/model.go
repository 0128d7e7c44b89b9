package cart

import (
	"math"
	"time"
)

// LineItem is one product in the cart. Name, price and image are captured
// when the product is first added.
type LineItem struct {
	ProductID string `json:"id"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"price"`
	Quantity  int    `json:"qty"`
	ImageRef  string `json:"image"`
}

// Subtotal saturates at math.MaxInt64 instead of wrapping.
func (l LineItem) Subtotal() int64 {
	if l.UnitPrice > 0 && int64(l.Quantity) > math.MaxInt64/l.UnitPrice {
		return math.MaxInt64
	}
	return l.UnitPrice * int64(l.Quantity)
}

// Snapshot is an immutable read of the cart with its derived totals.
type Snapshot struct {
	Items         []LineItem `json:"items"`
	TotalQuantity int        `json:"totalQuantity"`
	TotalPrice    int64      `json:"totalPrice"`
}

func newSnapshot(items []LineItem) Snapshot {
	s := Snapshot{Items: make([]LineItem, len(items))}
	copy(s.Items, items)
	for _, it := range items {
		s.TotalQuantity = addQuantity(s.TotalQuantity, it.Quantity)
		s.TotalPrice = addPrice(s.TotalPrice, it.Subtotal())
	}
	return s
}

// addQuantity sums two non-negative quantities, saturating at math.MaxInt.
func addQuantity(a, b int) int {
	if a > math.MaxInt-b {
		return math.MaxInt
	}
	return a + b
}

func addPrice(a, b int64) int64 {
	if b > 0 && a > math.MaxInt64-b {
		return math.MaxInt64
	}
	return a + b
}

func (s Snapshot) Empty() bool { return len(s.Items) == 0 }

// Line returns the line for productID, if present.
func (s Snapshot) Line(productID string) (LineItem, bool) {
	for _, it := range s.Items {
		if it.ProductID == productID {
			return it, true
		}
	}
	return LineItem{}, false
}

type Op string

const (
	OpAdd       Op = "add"
	OpSet       Op = "set_quantity"
	OpIncrement Op = "increment"
	OpDecrement Op = "decrement"
	OpRemove    Op = "remove"
	OpReset     Op = "reset"
)

// Outcome says what a mutation did to the cart. Setting a quantity to zero
// reports OutcomeRemoved, never OutcomeUpdated.
type Outcome string

const (
	OutcomeAdded     Outcome = "added"
	OutcomeUpdated   Outcome = "updated"
	OutcomeRemoved   Outcome = "removed"
	OutcomeCleared   Outcome = "cleared"
	OutcomeUnchanged Outcome = "unchanged"
	OutcomeRejected  Outcome = "rejected"
)

// Change is published after every accepted mutation.
type Change struct {
	Op        Op        `json:"op"`
	Outcome   Outcome   `json:"outcome"`
	ProductID string    `json:"productId,omitempty"`
	Snapshot  Snapshot  `json:"snapshot"`
	At        time.Time `json:"at"`
}
