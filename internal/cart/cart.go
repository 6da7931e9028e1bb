// Package cart collects line items for one table before confirmation.
package cart

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"comanda-system/internal/domain"
)

// Cart is the pre-confirmation order for a single table. Not safe for
// concurrent use; the server drives it from its event loop.
type Cart struct {
	items []domain.OrderLineItem
}

func New() *Cart { return &Cart{} }

// Items returns a copy of the cart contents in insertion order.
func (c *Cart) Items() []domain.OrderLineItem {
	out := make([]domain.OrderLineItem, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Cart) Empty() bool { return len(c.items) == 0 }

// Add puts an item in the cart. Same menu item with the same normalized
// notes merges by summing quantity; different notes stay distinct
// entries (the kitchen needs to see "sin cebolla" on its own line).
func (c *Cart) Add(item domain.MenuItem, quantity int, notes string, now time.Time) {
	if quantity <= 0 {
		return
	}
	norm := domain.NormalizeNotes(notes)
	for i := range c.items {
		if c.items[i].MenuItem.ID == item.ID && domain.NormalizeNotes(c.items[i].Notes) == norm {
			c.items[i].Quantity += quantity
			return
		}
	}
	c.items = append(c.items, domain.OrderLineItem{
		ID:        uuid.NewString(),
		MenuItem:  item,
		Quantity:  quantity,
		Notes:     notes,
		CreatedAt: now,
	})
}

// RemoveByName drops the first line whose menu item name contains the
// given text (case-insensitive). Returns false when nothing matched.
func (c *Cart) RemoveByName(name string) bool {
	search := strings.ToLower(strings.TrimSpace(name))
	if search == "" {
		return false
	}
	for i := range c.items {
		if strings.Contains(strings.ToLower(c.items[i].MenuItem.Name), search) {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return true
		}
	}
	return false
}

// UpdateQuantity sets a line's quantity by line id; zero or less removes
// the line.
func (c *Cart) UpdateQuantity(lineID string, quantity int) bool {
	for i := range c.items {
		if c.items[i].ID != lineID {
			continue
		}
		if quantity <= 0 {
			c.items = append(c.items[:i], c.items[i+1:]...)
		} else {
			c.items[i].Quantity = quantity
		}
		return true
	}
	return false
}

// Total sums quantity times the price each item carried when added.
func (c *Cart) Total() float64 {
	var total float64
	for _, it := range c.items {
		total += float64(it.Quantity) * it.MenuItem.Price
	}
	return total
}

// Confirm freezes the cart into a pending order and empties the cart.
// The total is computed here and never again. taken is the set of order
// ids already on the board, used to dodge same-second id collisions.
func (c *Cart) Confirm(table, client string, diners int, now time.Time, taken map[string]struct{}) (domain.Order, error) {
	if len(c.items) == 0 {
		return domain.Order{}, fmt.Errorf("confirm order for table %s: %w", table, domain.ErrEmptyCart)
	}
	if diners <= 0 {
		diners = 1
	}
	order := domain.Order{
		ID:          domain.NewOrderID(now, taken),
		TableNumber: table,
		Items:       c.Items(),
		Status:      domain.StatusPending,
		CreatedAt:   now,
		ClientName:  client,
		Diners:      diners,
		TotalPrice:  c.Total(),
	}
	c.items = nil
	return order, nil
}
