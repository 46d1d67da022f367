package middlewares

import (
	"context"

	"github.com/graph-gophers/dataloader/v7"
	"github.com/mmdatafocus/shop_backend/models"
	"gorm.io/gorm"
)

type currentStockReader struct {
	db *gorm.DB
}

// latest ledger entry per product, ties broken by id like models.GetCurrentStock
func (r *currentStockReader) getCurrentStocks(ctx context.Context, productIds []int) []*dataloader.Result[*models.ProductStock] {
	var results []models.ProductStock
	err := r.db.WithContext(ctx).
		Where("product_id IN ?", productIds).
		Where("id = (SELECT s.id FROM product_stocks s WHERE s.product_id = product_stocks.product_id ORDER BY s.update_timestamp DESC, s.id DESC LIMIT 1)").
		Find(&results).Error
	if err != nil {
		return handleError[*models.ProductStock](len(productIds), err)
	}

	return generateLoaderResults(results, productIds, func(s models.ProductStock) int { return s.ProductId })
}

func GetCurrentStock(ctx context.Context, productId int) (*models.ProductStock, error) {
	return For(ctx).LoadCurrentStock(ctx, productId)()
}

// LoadCurrentStock queues the load and returns a thunk that waits for the batch.
func (l *Loaders) LoadCurrentStock(ctx context.Context, productId int) func() (*models.ProductStock, error) {
	return l.currentStockLoader.Load(ctx, productId)
}
