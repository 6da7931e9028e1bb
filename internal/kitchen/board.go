// Package kitchen implements the ticket lifecycle for the kitchen
// display: accepting and completing tickets, per-item completion
// tracking, urgency classification and the derived board views.
package kitchen

import (
	"sort"
	"time"

	"comanda-system/internal/domain"
	"comanda-system/internal/recon"
)

// ItemState is the local completion state of a single line item. It is
// purely client-side workflow state: never persisted remotely, lost on
// restart, reset when an order is first observed.
type ItemState string

const (
	ItemNotStarted ItemState = "not_started"
	ItemCooking    ItemState = "cooking"
	ItemDone       ItemState = "done"
)

// next cycles not_started -> cooking -> done -> not_started.
func (s ItemState) next() ItemState {
	switch s {
	case ItemCooking:
		return ItemDone
	case ItemDone:
		return ItemNotStarted
	}
	return ItemCooking
}

type itemKey struct {
	orderID string
	index   int
}

// Transition is the outcome of a kitchen action, handed to the caller so
// it can mirror the change to the remote store and notify subscribers.
type Transition struct {
	Order     domain.Order
	OldStatus domain.Status
	NewStatus domain.Status
}

// Board owns the working order list and the per-item completion map.
// It is not safe for concurrent use; the server drives it from a single
// goroutine.
type Board struct {
	orders []domain.Order
	items  map[itemKey]ItemState
}

func NewBoard() *Board {
	return &Board{items: make(map[itemKey]ItemState)}
}

// Orders returns a copy of the working list.
func (b *Board) Orders() []domain.Order {
	out := make([]domain.Order, len(b.orders))
	copy(out, b.orders)
	return out
}

// IDs returns the set of order ids currently on the board.
func (b *Board) IDs() map[string]struct{} {
	ids := make(map[string]struct{}, len(b.orders))
	for _, o := range b.orders {
		ids[o.ID] = struct{}{}
	}
	return ids
}

// Get looks up an order by id.
func (b *Board) Get(id string) (domain.Order, bool) {
	for _, o := range b.orders {
		if o.ID == id {
			return o, true
		}
	}
	return domain.Order{}, false
}

// Insert optimistically prepends a just-confirmed order so the UI shows
// it before the remote store does.
func (b *Board) Insert(o domain.Order) {
	b.orders = append([]domain.Order{o}, b.orders...)
}

// SyncRemote merges a fetched snapshot into the working list. Item
// completion states survive the merge: they are keyed by (order, index),
// not by the order values the merge replaces.
func (b *Board) SyncRemote(snapshot []domain.Order) {
	b.orders = recon.Merge(b.orders, snapshot)
}

// Accept moves a pending ticket to cooking and stamps AcceptedAt.
// Accepting a ticket in any other state is a no-op, so a double tap on
// the board does nothing.
func (b *Board) Accept(id string, now time.Time) (Transition, bool) {
	for i := range b.orders {
		if b.orders[i].ID != id {
			continue
		}
		if b.orders[i].Status != domain.StatusPending {
			return Transition{}, false
		}
		old := b.orders[i].Status
		b.orders[i].Status = domain.StatusCooking
		b.orders[i].AcceptedAt = now
		return Transition{Order: b.orders[i], OldStatus: old, NewStatus: domain.StatusCooking}, true
	}
	return Transition{}, false
}

// Complete marks every line item done and moves the ticket to ready,
// stamping ServedAt. Legal from pending or cooking; idempotent once the
// ticket is already done.
func (b *Board) Complete(id string, now time.Time) (Transition, bool) {
	for i := range b.orders {
		if b.orders[i].ID != id {
			continue
		}
		if b.orders[i].Status.Done() {
			return Transition{}, false
		}
		for idx := range b.orders[i].Items {
			b.items[itemKey{id, idx}] = ItemDone
		}
		old := b.orders[i].Status
		b.orders[i].Status = domain.StatusReady
		b.orders[i].ServedAt = now
		return Transition{Order: b.orders[i], OldStatus: old, NewStatus: domain.StatusReady}, true
	}
	return Transition{}, false
}

// ToggleItem cycles one line item's completion state. Once the parent
// order is globally done, per-item state is moot and the toggle is a
// no-op.
func (b *Board) ToggleItem(id string, index int) bool {
	o, ok := b.Get(id)
	if !ok || o.Status.Done() {
		return false
	}
	if index < 0 || index >= len(o.Items) {
		return false
	}
	key := itemKey{id, index}
	b.items[key] = b.items[key].next()
	if b.items[key] == ItemNotStarted {
		delete(b.items, key)
	}
	return true
}

// ItemState reports a line item's effective completion state. A globally
// done order reports every item done regardless of toggle history.
func (b *Board) ItemState(id string, index int) ItemState {
	if o, ok := b.Get(id); ok && o.Status.Done() {
		return ItemDone
	}
	if st, ok := b.items[itemKey{id, index}]; ok {
		return st
	}
	return ItemNotStarted
}

// Active returns tickets still in play (pending or cooking), oldest
// first so the longest-waiting ticket is most visible.
func (b *Board) Active() []domain.Order {
	var out []domain.Order
	for _, o := range b.orders {
		if !o.Status.Done() {
			out = append(out, o)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Completed returns finished tickets (ready or served), newest first so
// the kitchen sees what it just pushed out.
func (b *Board) Completed() []domain.Order {
	var out []domain.Order
	for _, o := range b.orders {
		if o.Status.Done() {
			out = append(out, o)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// ProductionLine is one row of the station summary.
type ProductionLine struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// Production aggregates the outstanding quantity per menu item across
// all active tickets, skipping items already marked done locally. It is
// recomputed from scratch on every call so it cannot drift from the
// board state.
func (b *Board) Production() []ProductionLine {
	counts := make(map[string]int)
	for _, o := range b.orders {
		if o.Status.Done() {
			continue
		}
		for idx, it := range o.Items {
			if b.items[itemKey{o.ID, idx}] == ItemDone {
				continue
			}
			counts[it.MenuItem.Name] += it.Quantity
		}
	}
	out := make([]ProductionLine, 0, len(counts))
	for name, qty := range counts {
		out = append(out, ProductionLine{Name: name, Quantity: qty})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Quantity == out[j].Quantity {
			return out[i].Name < out[j].Name
		}
		return out[i].Quantity > out[j].Quantity
	})
	return out
}
