package domain

import (
	"fmt"
	"strings"
	"time"
)

// MenuItem is a dish or drink as published by the menu store. Immutable
// once fetched; a line item keeps its own copy so later menu edits do
// not rewrite placed orders.
type MenuItem struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Category    string   `json:"category"`
	Allergens   []string `json:"allergens"`
	Dietary     []string `json:"dietary"`
	Available   bool     `json:"available"`
	Ingredients []string `json:"ingredients"`
}

// OrderLineItem is one (menu item, notes) pairing within an order.
type OrderLineItem struct {
	ID        string    `json:"id"`
	MenuItem  MenuItem  `json:"menu_item"`
	Quantity  int       `json:"quantity"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Order is a confirmed table order. TotalPrice is frozen at
// confirmation time and never recomputed from current menu prices.
type Order struct {
	ID          string          `json:"id"`
	TableNumber string          `json:"table_number"`
	Items       []OrderLineItem `json:"items"`
	Status      Status          `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	AcceptedAt  time.Time       `json:"accepted_at,omitempty"`
	ServedAt    time.Time       `json:"served_at,omitempty"`
	ClientName  string          `json:"client_name,omitempty"`
	Diners      int             `json:"diners"`
	TotalPrice  float64         `json:"total_price"`
}

// NormalizeNotes canonicalizes a line item's free-text notes for
// merge comparison: "Sin Cebolla " and " sin cebolla" are the same note.
func NormalizeNotes(notes string) string {
	return strings.ToLower(strings.TrimSpace(notes))
}

// NewOrderID derives a six-digit order id from the wall clock, the format
// the order sheet expects. The raw truncation can collide when two tables
// confirm in the same second, so the id is bumped until it is unique
// within the caller's working list.
func NewOrderID(now time.Time, taken map[string]struct{}) string {
	n := now.Unix() % 1_000_000
	for i := 0; i < 1_000_000; i++ {
		id := fmt.Sprintf("%06d", n)
		if _, ok := taken[id]; !ok {
			return id
		}
		n = (n + 1) % 1_000_000
	}
	return fmt.Sprintf("%06d", n)
}
