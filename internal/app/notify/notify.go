// Package notify consumes order status events from the fanout and logs
// them. It stands in for the counter bell: display-only, out of the
// reconciliation path.
package notify

import (
	"context"
	"encoding/json"

	"comanda-system/internal/common/config"
	"comanda-system/internal/common/logger"
	"comanda-system/internal/common/mq"
	"comanda-system/internal/domain"
)

func Run(ctx context.Context, cfg config.MQ) error {
	lg := logger.New("notification-subscriber")

	client, err := mq.Dial(cfg.Host, cfg.Port, cfg.User, cfg.Pass)
	if err != nil {
		return err
	}
	defer client.Close()
	if err := client.DeclareAll(); err != nil {
		return err
	}

	msgs, err := client.Consume("notification-subscriber")
	if err != nil {
		return err
	}
	lg.Info("subscribed", map[string]any{"queue": mq.NotificationsQueue})

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			var ev domain.StatusChangedEvent
			if err := json.Unmarshal(msg.Body, &ev); err != nil {
				lg.Error("bad_event", err, nil)
				_ = msg.Nack(false, false)
				continue
			}
			lg.Info("order_status_changed", map[string]any{
				"order_id": ev.OrderID,
				"table":    ev.TableNumber,
				"from":     ev.OldStatus,
				"to":       ev.NewStatus,
			})
			_ = msg.Ack(false)
		}
	}
}
