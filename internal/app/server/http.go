package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"comanda-system/internal/agent"
	"comanda-system/internal/common/httpx"
	"comanda-system/internal/domain"
	"comanda-system/internal/kitchen"
)

// Ticket is the kitchen-facing rendering of an order: the order plus the
// display-only state derived on every request.
type Ticket struct {
	domain.Order
	Urgency    domain.Urgency      `json:"urgency"`
	Elapsed    string              `json:"elapsed"`
	ItemStates []kitchen.ItemState `json:"item_states"`
}

type confirmItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Notes    string `json:"notes"`
}

type confirmRequest struct {
	Table  string        `json:"table"`
	Client string        `json:"client"`
	Diners int           `json:"diners"`
	Items  []confirmItem `json:"items"`
}

type agentRequest struct {
	Table  string       `json:"table"`
	Intent agent.Intent `json:"intent"`
}

// Serve runs the HTTP API alongside the event loop until ctx is done.
func (s *Service) Serve(ctx context.Context, port int) error {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /menu", func(w http.ResponseWriter, r *http.Request) {
		var menu []domain.MenuItem
		if err := s.do(func() { menu = s.menu }); err != nil {
			http.Error(w, "service unavailable", http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, menu)
	})

	mux.HandleFunc("GET /orders", func(w http.ResponseWriter, r *http.Request) {
		var orders []domain.Order
		if err := s.do(func() { orders = s.board.Orders() }); err != nil {
			http.Error(w, "service unavailable", http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, orders)
	})

	mux.HandleFunc("POST /orders", func(w http.ResponseWriter, r *http.Request) {
		var req confirmRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if req.Table == "" || len(req.Items) == 0 {
			http.Error(w, "table and items are required", http.StatusBadRequest)
			return
		}
		var result agent.Result
		err := s.do(func() { result = s.placeOrder(req) })
		if err != nil {
			http.Error(w, "service unavailable", http.StatusServiceUnavailable)
			return
		}
		if !result.Success {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnprocessableEntity)
			_ = json.NewEncoder(w).Encode(result)
			return
		}
		writeJSON(w, result)
	})

	mux.HandleFunc("POST /orders/{id}/accept", func(w http.ResponseWriter, r *http.Request) {
		s.handleAction(w, r.PathValue("id"), s.accept)
	})

	mux.HandleFunc("POST /orders/{id}/complete", func(w http.ResponseWriter, r *http.Request) {
		s.handleAction(w, r.PathValue("id"), s.complete)
	})

	mux.HandleFunc("POST /orders/{id}/items/{idx}/toggle", func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		idx, err := strconv.Atoi(r.PathValue("idx"))
		if err != nil {
			http.Error(w, "bad item index", http.StatusBadRequest)
			return
		}
		var state kitchen.ItemState
		var toggled bool
		var actErr error
		if doErr := s.do(func() { state, toggled, actErr = s.toggleItem(id, idx) }); doErr != nil {
			http.Error(w, "service unavailable", http.StatusServiceUnavailable)
			return
		}
		if actErr != nil {
			http.Error(w, "unknown order", http.StatusNotFound)
			return
		}
		if !toggled {
			http.Error(w, "item cannot be toggled", http.StatusBadRequest)
			return
		}
		writeJSON(w, map[string]any{"order_id": id, "index": idx, "state": state})
	})

	mux.HandleFunc("GET /kitchen/active", func(w http.ResponseWriter, r *http.Request) {
		s.handleView(w, s.board.Active)
	})

	mux.HandleFunc("GET /kitchen/completed", func(w http.ResponseWriter, r *http.Request) {
		s.handleView(w, s.board.Completed)
	})

	mux.HandleFunc("GET /kitchen/production", func(w http.ResponseWriter, r *http.Request) {
		var lines []kitchen.ProductionLine
		if err := s.do(func() { lines = s.board.Production() }); err != nil {
			http.Error(w, "service unavailable", http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, lines)
	})

	mux.HandleFunc("POST /agent/intent", func(w http.ResponseWriter, r *http.Request) {
		var req agentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if req.Table == "" {
			http.Error(w, "table is required", http.StatusBadRequest)
			return
		}
		var result agent.Result
		if err := s.do(func() { result = s.session(req.Table).Dispatch(req.Intent) }); err != nil {
			http.Error(w, "service unavailable", http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, result)
	})

	srv := httpx.New(":"+strconv.Itoa(port), mux)
	return srv.Run(ctx)
}

// placeOrder resolves and confirms a whole request in one shot against a
// scratch session, so a failed item leaves nothing behind: the per-table
// voice session and the board are untouched unless every item resolves.
// Loop-only.
func (s *Service) placeOrder(req confirmRequest) agent.Result {
	sess := agent.NewSession(req.Table, s.menu, s)
	if req.Client != "" || req.Diners > 0 {
		sess.Dispatch(agent.Intent{Name: agent.IntentSetDiners, Count: req.Diners, Client: req.Client})
	}
	for _, it := range req.Items {
		res := sess.Dispatch(agent.Intent{Name: agent.IntentAddItem, Item: it.Name, Quantity: it.Quantity, Notes: it.Notes})
		if !res.Success {
			return res
		}
	}
	return sess.Dispatch(agent.Intent{Name: agent.IntentConfirmOrder})
}

// handleAction runs a kitchen transition on the loop. A logical no-op
// (accepting an already-accepted ticket) is success: the board stays
// idempotent under double taps.
func (s *Service) handleAction(w http.ResponseWriter, id string, action func(string) (domain.Order, error)) {
	var order domain.Order
	var err error
	if doErr := s.do(func() { order, err = action(id) }); doErr != nil {
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	}
	if err != nil {
		if errors.Is(err, domain.ErrUnknownOrder) {
			http.Error(w, "unknown order", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, order)
}

func (s *Service) handleView(w http.ResponseWriter, view func() []domain.Order) {
	var tickets []Ticket
	if err := s.do(func() {
		now := s.now()
		for _, o := range view() {
			t := Ticket{
				Order:   o,
				Urgency: domain.ClassifyUrgency(o.CreatedAt, now),
				Elapsed: domain.FormatElapsed(o.CreatedAt, now),
			}
			for idx := range o.Items {
				t.ItemStates = append(t.ItemStates, s.board.ItemState(o.ID, idx))
			}
			tickets = append(tickets, t)
		}
	}); err != nil {
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, tickets)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
