package middlewares

import (
	"context"

	"github.com/graph-gophers/dataloader/v7"
	"github.com/mmdatafocus/shop_backend/models"
	"gorm.io/gorm"
)

type recentStatusReader struct {
	db *gorm.DB
}

func (r *recentStatusReader) getRecentStatuses(ctx context.Context, orderIds []int) []*dataloader.Result[*models.OrderStatus] {
	var results []models.OrderStatus
	err := r.db.WithContext(ctx).
		Where("order_id IN ?", orderIds).
		Where("id = (SELECT s.id FROM order_statuses s WHERE s.order_id = order_statuses.order_id ORDER BY s.create_timestamp DESC, s.id DESC LIMIT 1)").
		Find(&results).Error
	if err != nil {
		return handleError[*models.OrderStatus](len(orderIds), err)
	}

	return generateLoaderResults(results, orderIds, func(s models.OrderStatus) int { return s.OrderId })
}

func GetRecentOrderStatus(ctx context.Context, orderId int) (*models.OrderStatus, error) {
	return For(ctx).LoadRecentOrderStatus(ctx, orderId)()
}

func (l *Loaders) LoadRecentOrderStatus(ctx context.Context, orderId int) func() (*models.OrderStatus, error) {
	return l.recentStatusLoader.Load(ctx, orderId)
}
