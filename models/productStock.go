package models

import (
	"context"
	"errors"
	"time"

	"github.com/mmdatafocus/shop_backend/config"
	"github.com/mmdatafocus/shop_backend/utils"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductStock is one entry of a product's append-only stock ledger.
// The entry with the latest UpdateTimestamp is the current stock.
type ProductStock struct {
	ID              int             `gorm:"primary_key" json:"id"`
	ProductId       int             `gorm:"not null;uniqueIndex:idx_product_stock_ts,priority:1" json:"product_id"`
	StockSize       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"stock_size"`
	UpdateTimestamp time.Time       `gorm:"not null;precision:6;uniqueIndex:idx_product_stock_ts,priority:2" json:"update_timestamp"`
}

// nextLedgerTimestamp keeps timestamps strictly increasing per entity,
// so "latest" is well defined even when two appends land in the same microsecond.
func nextLedgerTimestamp(latest *time.Time) time.Time {
	now := time.Now().UTC().Truncate(time.Microsecond)
	if latest != nil && !now.After(*latest) {
		return latest.UTC().Add(time.Microsecond)
	}
	return now
}

func latestStockTx(tx *gorm.DB, productId int) (*ProductStock, error) {
	var stock ProductStock
	err := tx.Where("product_id = ?", productId).
		Order("update_timestamp DESC").Order("id DESC").
		First(&stock).Error
	if err != nil {
		return nil, translateNotFound(err)
	}
	return &stock, nil
}

func GetCurrentStock(ctx context.Context, productId int) (*ProductStock, error) {
	if err := utils.ValidateResourceId[Product](ctx, productId); err != nil {
		return nil, err
	}
	db := config.GetDB()
	return latestStockTx(db.WithContext(ctx), productId)
}

const (
	stockSizeDigits = 12
	stockSizePlaces = 2
)

func validateStockSize(size decimal.Decimal) error {
	if size.IsNegative() {
		return utils.NewValidationError("stock_size", "stock size has to be positive")
	}
	return utils.ValidateDecimal("stock_size", size, stockSizeDigits, stockSizePlaces)
}

func SetStock(ctx context.Context, productId int, stockSize decimal.Decimal) (*ProductStock, error) {
	return appendStock(ctx, "SetStock", productId, func(current decimal.Decimal, product *Product) (decimal.Decimal, error) {
		if err := validateStockSize(stockSize); err != nil {
			return decimal.Zero, err
		}
		return stockSize, nil
	})
}

func IncreaseStock(ctx context.Context, productId int, delta decimal.Decimal) (*ProductStock, error) {
	return appendStock(ctx, "IncreaseStock", productId, func(current decimal.Decimal, product *Product) (decimal.Decimal, error) {
		if err := validateStockSize(delta); err != nil {
			return decimal.Zero, err
		}
		result := current.Add(delta)
		if err := validateStockSize(result); err != nil {
			return decimal.Zero, err
		}
		return result, nil
	})
}

// DecreaseStock fails with *utils.InsufficientStockError when the ledger would go below zero.
func DecreaseStock(ctx context.Context, productId int, delta decimal.Decimal) (*ProductStock, error) {
	return appendStock(ctx, "DecreaseStock", productId, func(current decimal.Decimal, product *Product) (decimal.Decimal, error) {
		if err := validateStockSize(delta); err != nil {
			return decimal.Zero, err
		}
		result := current.Sub(delta)
		if result.IsNegative() {
			return decimal.Zero, &utils.InsufficientStockError{Available: current, Unit: product.Unit}
		}
		return result, nil
	})
}

// appendStock reads the current entry, computes the next size and appends it,
// holding the product's ledger lock for the whole read-compute-append.
func appendStock(ctx context.Context, funcName string, productId int,
	compute func(current decimal.Decimal, product *Product) (decimal.Decimal, error)) (*ProductStock, error) {

	ctx, span := tracer.Start(ctx, "models."+funcName, trace.WithAttributes(attribute.Int("product.id", productId)))
	defer span.End()

	var entry *ProductStock
	err := utils.WithEntityLock(ctx, utils.LedgerLockKey("stock", productId), "models", funcName, func() error {
		db := config.GetDB()
		return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var product Product
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&product, productId).Error; err != nil {
				return translateNotFound(err)
			}

			current := decimal.Zero
			var latest *time.Time
			stock, err := latestStockTx(tx, productId)
			if err == nil {
				current = stock.StockSize
				latest = &stock.UpdateTimestamp
			} else if !errors.Is(err, utils.ErrorRecordNotFound) {
				return err
			}

			size, err := compute(current, &product)
			if err != nil {
				return err
			}

			entry = &ProductStock{
				ProductId:       productId,
				StockSize:       size,
				UpdateTimestamp: nextLedgerTimestamp(latest),
			}
			return tx.Create(entry).Error
		})
	})
	if err != nil {
		if !utils.IsValidationError(err) && !errors.Is(err, utils.ErrorRecordNotFound) {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		return nil, err
	}
	span.SetAttributes(attribute.String("stock.size", entry.StockSize.String()))
	config.LogInfo(config.GetLogger(), "models", funcName, "stock appended", logrus.Fields{
		"product_id": productId,
		"stock_size": entry.StockSize.String(),
	})
	return entry, nil
}

// ListStockHistory returns all entries of a product, newest first.
func ListStockHistory(ctx context.Context, productId int) ([]*ProductStock, error) {
	if err := utils.ValidateResourceId[Product](ctx, productId); err != nil {
		return nil, err
	}
	db := config.GetDB()
	var results []*ProductStock
	if err := db.WithContext(ctx).Where("product_id = ?", productId).
		Order("update_timestamp DESC").Order("id DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// GetStockAsOf returns the entry that was current at asOf.
func GetStockAsOf(ctx context.Context, productId int, asOf time.Time) (*ProductStock, error) {
	if err := utils.ValidateResourceId[Product](ctx, productId); err != nil {
		return nil, err
	}
	db := config.GetDB()
	return latestStockTx(db.WithContext(ctx).Where("update_timestamp <= ?", asOf.UTC()), productId)
}
