package models

import (
	"context"
	"strings"
	"time"

	"github.com/mmdatafocus/shop_backend/config"
	"github.com/mmdatafocus/shop_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Product struct {
	ID        int             `gorm:"primary_key" json:"id"`
	Name      string          `gorm:"size:128;not null" json:"name"`
	Code      string          `gorm:"size:10;not null;uniqueIndex" json:"code"`
	Price     decimal.Decimal `gorm:"type:decimal(8,2);not null;default:0" json:"price"`
	Unit      string          `gorm:"size:12;not null" json:"unit"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewProduct struct {
	Name  string          `json:"name" validate:"required,max=128"`
	Code  string          `json:"code" validate:"required,max=10"`
	Price decimal.Decimal `json:"price"`
	Unit  string          `json:"unit" validate:"required,max=12"`
}

func (p Product) GetId() int {
	return p.ID
}

func (p Product) GetPrice() decimal.Decimal {
	return p.Price
}

func (input *NewProduct) validate(ctx context.Context, productId int) error {
	input.Name = strings.TrimSpace(input.Name)
	input.Code = strings.TrimSpace(input.Code)
	input.Unit = strings.TrimSpace(input.Unit)

	if err := utils.ValidateStruct(input); err != nil {
		return err
	}
	if input.Price.IsNegative() {
		return utils.NewValidationError("price", "price can not be negative")
	}
	if err := utils.ValidateDecimal("price", input.Price, 8, 2); err != nil {
		return err
	}
	if err := utils.ValidateUnique[Product](ctx, "code", input.Code, productId); err != nil {
		return err
	}
	return nil
}

// CreateProduct stores the product together with its initial (empty) stock entry.
func CreateProduct(ctx context.Context, input *NewProduct) (*Product, error) {
	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	product := Product{
		Name:  input.Name,
		Code:  input.Code,
		Price: input.Price.Round(2),
		Unit:  input.Unit,
	}

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	if err := tx.Create(&product).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	initial := ProductStock{
		ProductId:       product.ID,
		StockSize:       decimal.Zero,
		UpdateTimestamp: nextLedgerTimestamp(nil),
	}
	if err := tx.Create(&initial).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func UpdateProduct(ctx context.Context, productId int, input *NewProduct) (*Product, error) {
	product, err := FetchModel[Product](ctx, productId)
	if err != nil {
		return nil, err
	}
	if err := input.validate(ctx, productId); err != nil {
		return nil, err
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Model(product).Updates(map[string]interface{}{
		"name":  input.Name,
		"code":  input.Code,
		"price": input.Price.Round(2),
		"unit":  input.Unit,
	}).Error; err != nil {
		return nil, err
	}
	if err := utils.RemoveRedisItem[Product](productId); err != nil {
		config.LogError(config.GetLogger(), "models", "UpdateProduct", "RemoveRedisItem", productId, err)
	}
	return FetchModel[Product](ctx, productId)
}

// DeleteProduct removes the product along with its stock history and the order items referencing it.
func DeleteProduct(ctx context.Context, productId int) (*Product, error) {
	product, err := FetchModel[Product](ctx, productId)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", productId).Delete(&ProductStock{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", productId).Delete(&OrderItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(product).Error
	})
	if err != nil {
		return nil, err
	}
	if err := utils.RemoveRedisItem[Product](productId); err != nil {
		config.LogError(config.GetLogger(), "models", "DeleteProduct", "RemoveRedisItem", productId, err)
	}
	return product, nil
}

func GetProduct(ctx context.Context, productId int) (*Product, error) {
	return GetResource[Product](ctx, productId)
}

func GetProducts(ctx context.Context, ids []int) ([]*Product, error) {
	db := config.GetDB()
	var results []*Product
	if err := db.WithContext(ctx).Where("id IN ?", ids).Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func ListProducts(ctx context.Context) ([]*Product, error) {
	db := config.GetDB()
	var results []*Product
	if err := db.WithContext(ctx).Order("code").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
