package models

import (
	"context"
	"errors"

	"github.com/mmdatafocus/shop_backend/config"
	"github.com/mmdatafocus/shop_backend/utils"
	"go.opentelemetry.io/otel"
	"gorm.io/gorm"
)

var tracer = otel.Tracer("shop_backend/models")

// fetch by id from db, preloading associations
// (may return RecordNotFound error)
func FetchModel[T any](ctx context.Context, id int, associations ...string) (*T, error) {
	return fetchModelTx[T](config.GetDB().WithContext(ctx), id, associations...)
}

func fetchModelTx[T any](tx *gorm.DB, id int, associations ...string) (*T, error) {
	var result T
	for _, association := range associations {
		tx = tx.Preload(association)
	}
	if err := tx.First(&result, id).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &result, nil
}

// first find in redis, then in db, cache result
// (may return RecordNotFound error)
func GetResource[T any](ctx context.Context, id int) (*T, error) {
	result, err := utils.RetrieveRedis[T](id)
	if err != nil {
		// cache is best-effort; fall through to the db
		config.LogError(config.GetLogger(), "models", "GetResource", "RetrieveRedis "+utils.GetTypeName[T](), id, err)
		result = nil
	}
	if result != nil {
		return result, nil
	}

	result, err = FetchModel[T](ctx, id)
	if err != nil {
		return nil, err
	}
	if err := utils.StoreRedis[T](result, id); err != nil {
		config.LogError(config.GetLogger(), "models", "GetResource", "StoreRedis "+utils.GetTypeName[T](), id, err)
	}
	return result, nil
}

func translateNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.ErrorRecordNotFound
	}
	return err
}
