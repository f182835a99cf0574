// Package cart holds the per-session cart: line items plus gift options.
// All operations work on a value and are synchronous; persistence is the caller's job.
package cart

import (
	"github.com/shopspring/decimal"

	"github.com/dvfens/ags/internal/gift"
	"github.com/dvfens/ags/pkg/pricing"
)

// MaxQuantity caps a single line. Adds past it saturate.
const MaxQuantity = 99

// Item is one cart line. Quantity is always at least 1 while the item is in the cart.
type Item struct {
	ID       uint            `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Image    string          `json:"image"`
	Quantity int             `json:"quantity"`
}

// State is the cart as stored per session.
type State struct {
	Items []Item       `json:"items"`
	Gift  gift.Options `json:"gift"`
}

// New returns an empty cart with default gift options.
func New() State {
	return State{Items: []Item{}, Gift: gift.Defaults()}
}

func (s State) indexOf(id uint) int {
	for i, it := range s.Items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

func (s State) cloneItems() []Item {
	items := make([]Item, len(s.Items))
	copy(items, s.Items)
	return items
}

func clampQuantity(qty int) int {
	if qty > MaxQuantity {
		return MaxQuantity
	}
	return qty
}

// AddItem increments the quantity of an existing line or appends a new one.
// qty <= 0 counts as 1 and the line never exceeds MaxQuantity.
func (s State) AddItem(item Item, qty int) State {
	if qty <= 0 {
		qty = 1
	}
	qty = clampQuantity(qty)
	items := s.cloneItems()
	if i := s.indexOf(item.ID); i >= 0 {
		items[i].Quantity = clampQuantity(items[i].Quantity + qty)
	} else {
		item.Quantity = qty
		items = append(items, item)
	}
	s.Items = items
	return s
}

// UpdateQuantity sets the quantity of a line, capped at MaxQuantity. A quantity of
// zero or less removes it.
// An unknown id leaves the cart unchanged.
func (s State) UpdateQuantity(id uint, qty int) State {
	i := s.indexOf(id)
	if i < 0 {
		return s
	}
	if qty <= 0 {
		return s.RemoveItem(id)
	}
	items := s.cloneItems()
	items[i].Quantity = clampQuantity(qty)
	s.Items = items
	return s
}

// RemoveItem drops a line. Removing an unknown id is a no-op.
func (s State) RemoveItem(id uint) State {
	i := s.indexOf(id)
	if i < 0 {
		return s
	}
	items := make([]Item, 0, len(s.Items)-1)
	items = append(items, s.Items[:i]...)
	items = append(items, s.Items[i+1:]...)
	s.Items = items
	return s
}

// Clear empties the items and resets gift options.
func (s State) Clear() State {
	return New()
}

// Refresh copies name, price and image from current onto matching lines. Lines
// missing from current keep what they had.
func (s State) Refresh(current map[uint]Item) State {
	items := s.cloneItems()
	for i, it := range items {
		c, ok := current[it.ID]
		if !ok {
			continue
		}
		items[i].Name = c.Name
		items[i].Price = c.Price
		items[i].Image = c.Image
	}
	s.Items = items
	return s
}

// RemoveOrdered subtracts the ordered quantities and resets gift options. Lines added
// or increased after the order was taken stay in the cart.
func (s State) RemoveOrdered(ordered []Item) State {
	next := s
	for _, o := range ordered {
		i := next.indexOf(o.ID)
		if i < 0 {
			continue
		}
		next = next.UpdateQuantity(o.ID, next.Items[i].Quantity-o.Quantity)
	}
	next.Gift = gift.Defaults()
	if next.Items == nil {
		next.Items = []Item{}
	}
	return next
}

// Has reports whether a line with id exists.
func (s State) Has(id uint) bool {
	return s.indexOf(id) >= 0
}

func (s State) IsEmpty() bool {
	return len(s.Items) == 0
}

// TotalItems is the sum of quantities.
func (s State) TotalItems() int {
	n := 0
	for _, it := range s.Items {
		n += it.Quantity
	}
	return n
}

// TotalPrice is Σ price × quantity.
func (s State) TotalPrice() decimal.Decimal {
	return pricing.Subtotal(s.Lines())
}

// Lines adapts the cart items for the pricing engine.
func (s State) Lines() []pricing.Line {
	lines := make([]pricing.Line, 0, len(s.Items))
	for _, it := range s.Items {
		lines = append(lines, pricing.Line{Price: it.Price, Quantity: it.Quantity})
	}
	return lines
}

// WithGift replaces the gift options.
func (s State) WithGift(opts gift.Options) State {
	s.Gift = opts
	return s
}
