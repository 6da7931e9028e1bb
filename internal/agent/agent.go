// Package agent bridges the hosted voice waiter's tool calls to the
// ordering core. The vendor is interchangeable; the core only needs the
// four intents below and reports resolution failures back explicitly so
// the agent can ask the customer to clarify.
package agent

import (
	"errors"
	"time"

	"comanda-system/internal/cart"
	"comanda-system/internal/domain"
	"comanda-system/internal/menu"
)

// Intent names, matching the tool declarations handed to the voice
// vendor.
const (
	IntentSetDiners    = "setDiners"
	IntentAddItem      = "addItem"
	IntentRemoveItem   = "removeItem"
	IntentConfirmOrder = "confirmOrder"
)

// Intent is one tool call from the voice agent.
type Intent struct {
	Name     string `json:"name"`
	Count    int    `json:"count,omitempty"`
	Item     string `json:"item,omitempty"`
	Quantity int    `json:"quantity,omitempty"`
	Notes    string `json:"notes,omitempty"`
	Client   string `json:"client,omitempty"`
}

// Result is returned to the agent as the tool response. A failed
// resolution is a result, not an error: the session stays alive and the
// agent relays the problem to the customer.
type Result struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	OrderID string `json:"order_id,omitempty"`
}

// Confirmer places a confirmed order into the working list and mirrors
// it to the remote store. Implemented by the server's event loop.
type Confirmer interface {
	ConfirmOrder(order domain.Order) error
	TakenOrderIDs() map[string]struct{}
}

// Session is the per-table conversation state: the cart being built plus
// the table context the order is confirmed under.
type Session struct {
	Table  string
	Client string
	Diners int

	cart      *cart.Cart
	menu      []domain.MenuItem
	confirmer Confirmer
	now       func() time.Time
}

// SetMenu replaces the menu the session resolves against. The caller
// refreshes it when the published menu arrives or changes mid-session.
func (s *Session) SetMenu(items []domain.MenuItem) { s.menu = items }

func NewSession(table string, menuItems []domain.MenuItem, confirmer Confirmer) *Session {
	return &Session{
		Table:     table,
		Client:    "Cliente",
		Diners:    1,
		cart:      cart.New(),
		menu:      menuItems,
		confirmer: confirmer,
		now:       time.Now,
	}
}

// Cart exposes the session's cart for direct (non-voice) UI mutations.
func (s *Session) Cart() *cart.Cart { return s.cart }

// Dispatch executes one tool call.
func (s *Session) Dispatch(in Intent) Result {
	switch in.Name {
	case IntentSetDiners:
		if in.Count > 0 {
			s.Diners = in.Count
		}
		if in.Client != "" {
			s.Client = in.Client
		}
		return Result{Success: true}

	case IntentAddItem:
		item, err := menu.Resolve(s.menu, in.Item)
		if err != nil {
			return Result{Success: false, Error: "item not found in menu, ask the customer to clarify"}
		}
		qty := in.Quantity
		if qty <= 0 {
			qty = 1
		}
		s.cart.Add(item, qty, in.Notes, s.now())
		return Result{Success: true}

	case IntentRemoveItem:
		if !s.cart.RemoveByName(in.Item) {
			return Result{Success: false, Error: "item is not in the current order"}
		}
		return Result{Success: true}

	case IntentConfirmOrder:
		order, err := s.cart.Confirm(s.Table, s.Client, s.Diners, s.now(), s.confirmer.TakenOrderIDs())
		if err != nil {
			if errors.Is(err, domain.ErrEmptyCart) {
				return Result{Success: false, Error: "nothing to confirm, the order is empty"}
			}
			return Result{Success: false, Error: err.Error()}
		}
		if err := s.confirmer.ConfirmOrder(order); err != nil {
			return Result{Success: false, Error: err.Error()}
		}
		return Result{Success: true, OrderID: order.ID}
	}
	return Result{Success: false, Error: "unknown intent " + in.Name}
}
