// Package server runs the front-of-house service: it owns the working
// order list, polls the remote store on a fixed interval, applies
// kitchen actions, and serves the HTTP API.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"comanda-system/internal/agent"
	"comanda-system/internal/common/logger"
	"comanda-system/internal/common/mq"
	"comanda-system/internal/domain"
	"comanda-system/internal/kitchen"
	"comanda-system/internal/store"
)

const writeTimeout = 5 * time.Second

// Service owns all mutable state through a single event loop goroutine.
// Poll results and HTTP-triggered actions both arrive as closures on the
// commands channel, so no locking is needed anywhere: the only real
// concurrency is which remote read or write settles first, and the
// monotonic merge absorbs that.
type Service struct {
	orders   store.OrderStore
	menus    store.MenuStore
	notifier *mq.Client // nil when rabbitmq is disabled
	log      *logger.Logger

	poll time.Duration
	now  func() time.Time

	board    *kitchen.Board
	menu     []domain.MenuItem
	sessions map[string]*agent.Session

	cmds chan func()
	quit chan struct{}
}

func New(orders store.OrderStore, menus store.MenuStore, notifier *mq.Client, poll time.Duration) *Service {
	if poll <= 0 {
		poll = 5 * time.Second
	}
	return &Service{
		orders:   orders,
		menus:    menus,
		notifier: notifier,
		log:      logger.New("foh-server"),
		poll:     poll,
		now:      time.Now,
		board:    kitchen.NewBoard(),
		sessions: make(map[string]*agent.Session),
		cmds:     make(chan func(), 16),
		quit:     make(chan struct{}),
	}
}

// Run drives the event loop until ctx is cancelled. The first poll
// happens immediately so the board is populated before the first tick.
func (s *Service) Run(ctx context.Context) error {
	defer close(s.quit)

	menu, err := s.menus.FetchMenu(ctx)
	if err != nil {
		// The menu store being down is staleness, not a fatal error:
		// voice ordering degrades but the kitchen board still works.
		s.log.Error("menu_fetch_failed", err, nil)
	}
	s.menu = menu
	s.log.Info("service_started", map[string]any{"menu_items": len(menu), "poll_interval": s.poll.String()})

	go s.fetch(ctx)

	ticker := time.NewTicker(s.poll)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			go s.fetch(ctx)
			if len(s.menu) == 0 {
				go s.fetchMenu(ctx)
			}
		case fn := <-s.cmds:
			fn()
		}
	}
}

// fetchMenu retries the menu read off-loop until one succeeds. The
// working list never needs the menu, so this only gates voice ordering.
func (s *Service) fetchMenu(ctx context.Context) {
	menu, err := s.menus.FetchMenu(ctx)
	if err != nil {
		s.log.Error("menu_fetch_failed", err, nil)
		return
	}
	if len(menu) == 0 {
		return
	}
	select {
	case s.cmds <- func() {
		s.menu = menu
		s.log.Info("menu_loaded", map[string]any{"menu_items": len(menu)})
	}:
	case <-ctx.Done():
	}
}

// do runs fn on the event loop and waits for it.
func (s *Service) do(fn func()) error {
	done := make(chan struct{})
	select {
	case s.cmds <- func() { fn(); close(done) }:
	case <-s.quit:
		return fmt.Errorf("service stopped")
	}
	select {
	case <-done:
		return nil
	case <-s.quit:
		return fmt.Errorf("service stopped")
	}
}

// fetch reads the remote snapshot off-loop and posts the merge back as a
// command. A failed read skips the cycle; the next tick retries
// naturally. A stale response arriving late is safe to merge.
func (s *Service) fetch(ctx context.Context) {
	snapshot, err := s.orders.FetchOrders(ctx)
	if err != nil {
		s.log.Error("orders_fetch_failed", err, nil)
		return
	}
	select {
	case s.cmds <- func() {
		s.board.SyncRemote(snapshot)
		s.log.Debug("orders_synced", map[string]any{"remote": len(snapshot), "working": len(s.board.Orders())})
	}:
	case <-ctx.Done():
	}
}

// session returns the per-table agent session, creating it on first use.
// Loop-only.
func (s *Service) session(table string) *agent.Session {
	sess, ok := s.sessions[table]
	if !ok {
		sess = agent.NewSession(table, s.menu, s)
		s.sessions[table] = sess
	}
	// A session opened before the menu loaded would otherwise resolve
	// against the empty snapshot forever.
	sess.SetMenu(s.menu)
	return sess
}

// ConfirmOrder implements agent.Confirmer: optimistic local insert, then
// a best-effort remote write. Loop-only.
func (s *Service) ConfirmOrder(order domain.Order) error {
	s.board.Insert(order)
	s.log.Info("order_confirmed", map[string]any{"order_id": order.ID, "table": order.TableNumber, "total": order.TotalPrice})
	go s.mirrorSubmit(order)
	return nil
}

// TakenOrderIDs implements agent.Confirmer. Loop-only.
func (s *Service) TakenOrderIDs() map[string]struct{} { return s.board.IDs() }

// accept and complete run on the loop and fire the remote write from it.
// A write failure never rolls the local transition back; the merge rule
// keeps the advance until a later write lands.

func (s *Service) accept(id string) (domain.Order, error) {
	if _, ok := s.board.Get(id); !ok {
		return domain.Order{}, fmt.Errorf("accept %s: %w", id, domain.ErrUnknownOrder)
	}
	tr, changed := s.board.Accept(id, s.now())
	if changed {
		s.log.Info("ticket_accepted", map[string]any{"order_id": id})
		go s.mirrorStatus(tr)
	}
	o, _ := s.board.Get(id)
	return o, nil
}

func (s *Service) complete(id string) (domain.Order, error) {
	if _, ok := s.board.Get(id); !ok {
		return domain.Order{}, fmt.Errorf("complete %s: %w", id, domain.ErrUnknownOrder)
	}
	tr, changed := s.board.Complete(id, s.now())
	if changed {
		s.log.Info("ticket_completed", map[string]any{"order_id": id})
		go s.mirrorStatus(tr)
	}
	o, _ := s.board.Get(id)
	return o, nil
}

// toggleItem cycles one line's completion state. Loop-only. A rejected
// toggle (completed ticket or index out of range) reports false.
func (s *Service) toggleItem(id string, idx int) (kitchen.ItemState, bool, error) {
	if _, ok := s.board.Get(id); !ok {
		return kitchen.ItemNotStarted, false, fmt.Errorf("toggle %s: %w", id, domain.ErrUnknownOrder)
	}
	if !s.board.ToggleItem(id, idx) {
		return kitchen.ItemNotStarted, false, nil
	}
	return s.board.ItemState(id, idx), true, nil
}

func (s *Service) mirrorSubmit(order domain.Order) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := s.orders.SubmitOrder(ctx, order); err != nil {
		s.log.Error("order_submit_failed", err, map[string]any{"order_id": order.ID})
	}
}

func (s *Service) mirrorStatus(tr kitchen.Transition) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := s.orders.UpdateStatus(ctx, tr.Order, tr.NewStatus); err != nil {
		s.log.Error("status_update_failed", err, map[string]any{"order_id": tr.Order.ID, "status": tr.NewStatus})
	}
	s.publish(ctx, tr)
}

func (s *Service) publish(ctx context.Context, tr kitchen.Transition) {
	if s.notifier == nil {
		return
	}
	body, err := json.Marshal(domain.StatusChangedEvent{
		OrderID:     tr.Order.ID,
		TableNumber: tr.Order.TableNumber,
		OldStatus:   tr.OldStatus,
		NewStatus:   tr.NewStatus,
		ChangedAt:   s.now(),
	})
	if err != nil {
		return
	}
	if err := s.notifier.Publish(ctx, body); err != nil {
		s.log.Error("notify_publish_failed", err, map[string]any{"order_id": tr.Order.ID})
	}
}
