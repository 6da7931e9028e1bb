package domain

import "time"

// StatusChangedEvent is published to the notifications fanout whenever
// the kitchen advances a ticket. Consumers are display-only (counter
// bell, expo printer); nothing in the reconciliation path reads these.
type StatusChangedEvent struct {
	OrderID     string    `json:"order_id"`
	TableNumber string    `json:"table_number"`
	OldStatus   Status    `json:"old_status"`
	NewStatus   Status    `json:"new_status"`
	ChangedAt   time.Time `json:"changed_at"`
}
