// Package postgres implements the order and menu stores against a
// Postgres instance. Status history is an append-only log, matching the
// relay's semantics: the current status of an order is its latest log
// row, and transition times are derived from the log.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"comanda-system/internal/common/db"
	"comanda-system/internal/domain"
)

type Store struct {
	conn *db.Conn
}

func New(conn *db.Conn) *Store { return &Store{conn: conn} }

// FetchOrders returns every order with its latest logged status and its
// items in insertion order.
func (s *Store) FetchOrders(ctx context.Context) ([]domain.Order, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT o.id, o.table_number, o.client_name, o.diners, o.total_amount, o.created_at,
		       ls.status,
		       (SELECT MIN(changed_at) FROM order_status_log WHERE order_id = o.id AND status = 'cooking'),
		       (SELECT MIN(changed_at) FROM order_status_log WHERE order_id = o.id AND status IN ('ready', 'served'))
		FROM orders o
		JOIN LATERAL (
			SELECT status FROM order_status_log
			WHERE order_id = o.id
			ORDER BY changed_at DESC, id DESC
			LIMIT 1
		) ls ON true
		ORDER BY o.created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("select orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		var o domain.Order
		var status string
		var acceptedAt, servedAt *time.Time
		if err := rows.Scan(&o.ID, &o.TableNumber, &o.ClientName, &o.Diners, &o.TotalPrice, &o.CreatedAt, &status, &acceptedAt, &servedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		o.Status = domain.ParseStatus(status)
		if acceptedAt != nil {
			o.AcceptedAt = *acceptedAt
		}
		if servedAt != nil {
			o.ServedAt = *servedAt
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}

	for i := range orders {
		items, err := s.fetchItems(ctx, orders[i].ID, orders[i].CreatedAt)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}
	return orders, nil
}

func (s *Store) fetchItems(ctx context.Context, orderID string, createdAt time.Time) ([]domain.OrderLineItem, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT name, quantity, price, COALESCE(notes, '')
		FROM order_items
		WHERE order_id = $1
		ORDER BY position
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("select items for order %s: %w", orderID, err)
	}
	defer rows.Close()

	var items []domain.OrderLineItem
	for rows.Next() {
		var it domain.OrderLineItem
		var name string
		var price float64
		if err := rows.Scan(&name, &it.Quantity, &price, &it.Notes); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		it.ID = uuid.NewString()
		it.MenuItem = domain.MenuItem{ID: name, Name: name, Price: price, Category: "General", Available: true}
		it.CreatedAt = createdAt
		items = append(items, it)
	}
	return items, rows.Err()
}

// SubmitOrder inserts the order, its items and the initial pending log
// row in one transaction.
func (s *Store) SubmitOrder(ctx context.Context, order domain.Order) error {
	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO orders (id, table_number, client_name, diners, total_amount, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, order.ID, order.TableNumber, order.ClientName, order.Diners, order.TotalPrice, order.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert order %s: %w", order.ID, err)
	}

	for pos, it := range order.Items {
		_, err = tx.Exec(ctx, `
			INSERT INTO order_items (order_id, position, name, quantity, price, notes)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, order.ID, pos, it.MenuItem.Name, it.Quantity, it.MenuItem.Price, it.Notes)
		if err != nil {
			return fmt.Errorf("insert order item %s: %w", it.MenuItem.Name, err)
		}
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO order_status_log (order_id, status, changed_at)
		VALUES ($1, $2, $3)
	`, order.ID, string(domain.StatusPending), order.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert status log: %w", err)
	}

	return tx.Commit(ctx)
}

// UpdateStatus appends one row to the status log. The log is never
// rewritten, so a stale write cannot erase a later one when read back
// through the latest-row rule.
func (s *Store) UpdateStatus(ctx context.Context, order domain.Order, status domain.Status) error {
	_, err := s.conn.Exec(ctx, `
		INSERT INTO order_status_log (order_id, status, changed_at)
		VALUES ($1, $2, NOW())
	`, order.ID, string(status))
	if err != nil {
		return fmt.Errorf("log status %s for order %s: %w", status, order.ID, err)
	}
	return nil
}

// FetchMenu reads the menu_items table.
func (s *Store) FetchMenu(ctx context.Context) ([]domain.MenuItem, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT id, name, COALESCE(description, ''), price, COALESCE(category, 'General'),
		       COALESCE(allergens, '{}'), COALESCE(dietary, '{}'), available, COALESCE(ingredients, '{}')
		FROM menu_items
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("select menu items: %w", err)
	}
	defer rows.Close()

	var items []domain.MenuItem
	for rows.Next() {
		var it domain.MenuItem
		if err := rows.Scan(&it.ID, &it.Name, &it.Description, &it.Price, &it.Category, &it.Allergens, &it.Dietary, &it.Available, &it.Ingredients); err != nil {
			return nil, fmt.Errorf("scan menu item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
