package middlewares

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/graph-gophers/dataloader/v7"
	"github.com/mmdatafocus/shop_backend/config"
	"github.com/mmdatafocus/shop_backend/models"
	"github.com/mmdatafocus/shop_backend/utils"
	"gorm.io/gorm"
)

type ctxKey string

const (
	loadersKey = ctxKey("dataloaders")
)

// Loaders wrap your data loaders to inject via middleware
type Loaders struct {
	productLoader      *dataloader.Loader[int, *models.Product]
	currentStockLoader *dataloader.Loader[int, *models.ProductStock]
	recentStatusLoader *dataloader.Loader[int, *models.OrderStatus]
}

// NewLoaders instantiates data loaders for the middleware
func NewLoaders(conn *gorm.DB) *Loaders {
	productReader := &productReader{db: conn}
	currentStockReader := &currentStockReader{db: conn}
	recentStatusReader := &recentStatusReader{db: conn}

	return &Loaders{
		productLoader:      dataloader.NewBatchedLoader(productReader.getProducts, dataloader.WithWait[int, *models.Product](time.Millisecond)),
		currentStockLoader: dataloader.NewBatchedLoader(currentStockReader.getCurrentStocks, dataloader.WithWait[int, *models.ProductStock](time.Millisecond)),
		recentStatusLoader: dataloader.NewBatchedLoader(recentStatusReader.getRecentStatuses, dataloader.WithWait[int, *models.OrderStatus](time.Millisecond)),
	}
}

func LoaderMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		loader := NewLoaders(config.GetDB())
		ctx := context.WithValue(c.Request.Context(), loadersKey, loader)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func For(ctx context.Context) *Loaders {
	return ctx.Value(loadersKey).(*Loaders)
}

// handleError creates array of result with the same error repeated for as many items requested
func handleError[T any](itemsLength int, err error) []*dataloader.Result[T] {
	result := make([]*dataloader.Result[T], itemsLength)
	for i := 0; i < itemsLength; i++ {
		result[i] = &dataloader.Result[T]{Error: err}
	}
	return result
}

// turns results from db into dataloader results, in the order of ids
// (ids without a row get RecordNotFound)
func generateLoaderResults[T any](results []T, ids []int, key func(T) int) []*dataloader.Result[*T] {
	resultMap := make(map[int]*T, len(results))
	for i := range results {
		resultMap[key(results[i])] = &results[i]
	}

	loaderResults := make([]*dataloader.Result[*T], 0, len(ids))
	for _, id := range ids {
		data, ok := resultMap[id]
		if !ok {
			loaderResults = append(loaderResults, &dataloader.Result[*T]{Error: utils.ErrorRecordNotFound})
			continue
		}
		loaderResults = append(loaderResults, &dataloader.Result[*T]{Data: data})
	}
	return loaderResults
}
