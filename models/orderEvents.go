package models

import (
	"context"
	"time"

	"github.com/mmdatafocus/shop_backend/config"
	"github.com/mmdatafocus/shop_backend/utils"
)

const orderEventTimeout = 10 * time.Second

// publishOrderEvent is best-effort: the order change is already committed,
// so a failed publish is only logged.
func publishOrderEvent(ctx context.Context, action string, status *OrderStatus) {
	if !config.OrderEventsEnabled() || status == nil {
		return
	}

	msg := config.OrderEventMessage{
		OrderId:    status.OrderId,
		Action:     action,
		Status:     string(status.Status),
		StatusName: status.StatusName(),
		OccurredAt: status.CreateTimestamp,
	}
	if status.Comment != nil {
		msg.Comment = *status.Comment
	}
	if correlationId, ok := utils.GetCorrelationIdFromContext(ctx); ok {
		msg.CorrelationId = correlationId
	}

	publishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), orderEventTimeout)
	defer cancel()
	if _, err := config.PublishOrderEvent(publishCtx, msg); err != nil {
		config.LogError(config.GetLogger(), "models", "publishOrderEvent", action, msg, err)
	}
}
