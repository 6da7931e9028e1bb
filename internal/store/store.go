// Package store defines the contracts the front-of-house core uses to
// talk to the remote order and menu stores. Implementations are
// stateless transport clients; the optimistic cache lives in the
// kitchen board, not here.
package store

import (
	"context"

	"comanda-system/internal/domain"
)

// OrderStore is the remote order log. Reads return the current
// best-known state deduplicated by id (last write wins); rows that fail
// to parse are omitted. Writes are best-effort with no ordering
// guarantee and are never retried by the core.
type OrderStore interface {
	FetchOrders(ctx context.Context) ([]domain.Order, error)
	SubmitOrder(ctx context.Context, order domain.Order) error

	// UpdateStatus mirrors a kitchen transition. The full order is passed
	// because the relay appends complete rows; only cooking and ready are
	// ever requested (served arrives from elsewhere via snapshots).
	UpdateStatus(ctx context.Context, order domain.Order, status domain.Status) error
}

// MenuStore serves the published menu.
type MenuStore interface {
	FetchMenu(ctx context.Context) ([]domain.MenuItem, error)
}
