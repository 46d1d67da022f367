package models

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/mmdatafocus/shop_backend/config"
	"github.com/mmdatafocus/shop_backend/utils"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

type Order struct {
	ID         int         `gorm:"primary_key" json:"id"`
	FirstName  string      `gorm:"size:64;not null" json:"first_name"`
	LastName   string      `gorm:"size:64;not null;index" json:"last_name"`
	Email      string      `gorm:"size:254;not null;index" json:"email"`
	Address    string      `gorm:"size:255;not null" json:"address"`
	PostalCode string      `gorm:"size:32;not null" json:"postal_code"`
	City       string      `gorm:"size:64;not null" json:"city"`
	Country    string      `gorm:"size:64;not null" json:"country"`
	Items      []OrderItem `gorm:"foreignKey:OrderId" json:"items"`
	CreatedAt  time.Time   `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt  time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

// OrderItem keeps the product price captured when the item was added.
type OrderItem struct {
	ID        int             `gorm:"primary_key" json:"id"`
	OrderId   int             `gorm:"index;not null" json:"order_id"`
	ProductId int             `gorm:"index;not null" json:"product_id"`
	Quantity  int             `gorm:"not null;default:1" json:"quantity"`
	Price     decimal.Decimal `gorm:"type:decimal(8,2);not null" json:"price"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

type NewOrder struct {
	FirstName  string `json:"first_name" validate:"required,max=64"`
	LastName   string `json:"last_name" validate:"required,max=64"`
	Email      string `json:"email" validate:"required,email,max=254"`
	Address    string `json:"address" validate:"required,max=255"`
	PostalCode string `json:"postal_code" validate:"required,max=32"`
	City       string `json:"city" validate:"required,max=64"`
	Country    string `json:"country" validate:"required,max=64"`
}

// OrderLine is a product and quantity to be turned into an order item.
type OrderLine struct {
	ProductId int
	Quantity  int
}

type OrderFilter struct {
	LastName    string
	Email       string
	Country     string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

func (item OrderItem) Cost() decimal.Decimal {
	return item.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
}

// TotalCost is the sum of item costs; an order without items costs zero.
func (o Order) TotalCost() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Cost())
	}
	return total
}

func (o Order) NumberOfItems() int {
	return len(o.Items)
}

func (input *NewOrder) validate() error {
	for _, field := range []*string{&input.FirstName, &input.LastName, &input.Email,
		&input.Address, &input.PostalCode, &input.City, &input.Country} {
		*field = strings.TrimSpace(*field)
	}
	return utils.ValidateStruct(input)
}

func (input *NewOrder) toOrder() Order {
	return Order{
		FirstName:  input.FirstName,
		LastName:   input.LastName,
		Email:      input.Email,
		Address:    input.Address,
		PostalCode: input.PostalCode,
		City:       input.City,
		Country:    input.Country,
	}
}

// createOrderTx writes the order and its initial CREATED status.
func createOrderTx(tx *gorm.DB, input *NewOrder) (*Order, *OrderStatus, error) {
	order := input.toOrder()
	if err := tx.Create(&order).Error; err != nil {
		return nil, nil, err
	}
	status := OrderStatus{
		OrderId:         order.ID,
		Status:          OrderStatusCreated,
		CreateTimestamp: nextLedgerTimestamp(nil),
	}
	if err := tx.Create(&status).Error; err != nil {
		return nil, nil, err
	}
	return &order, &status, nil
}

func CreateOrder(ctx context.Context, input *NewOrder) (*Order, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "models.CreateOrder")
	defer span.End()

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	order, status, err := createOrderTx(tx, input)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("order.id", order.ID))

	publishOrderEvent(ctx, "order.created", status)
	return order, nil
}

func newOrderItemTx(tx *gorm.DB, orderId int, productId int, quantity int) (*OrderItem, error) {
	if quantity < 1 {
		return nil, utils.NewValidationError("quantity", "quantity has to be at least 1")
	}
	product, err := fetchModelTx[Product](tx, productId)
	if err != nil {
		return nil, err
	}
	item := OrderItem{
		OrderId:   orderId,
		ProductId: product.ID,
		Quantity:  quantity,
		Price:     product.Price,
	}
	if err := tx.Create(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// AddOrderItem adds a product to an order at the product's current price.
func AddOrderItem(ctx context.Context, orderId int, productId int, quantity int) (*OrderItem, error) {
	db := config.GetDB()
	var item *OrderItem
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := fetchModelTx[Order](tx, orderId); err != nil {
			return err
		}
		var err error
		item, err = newOrderItemTx(tx, orderId, productId, quantity)
		return err
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// CreateOrderFromCart creates an order with one item per line in a single transaction.
func CreateOrderFromCart(ctx context.Context, input *NewOrder, lines []OrderLine) (*Order, error) {
	if len(lines) == 0 {
		return nil, utils.NewValidationError("cart", "cart is empty")
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "models.CreateOrderFromCart", trace.WithAttributes(attribute.Int("order.lines", len(lines))))
	defer span.End()

	sorted := make([]OrderLine, len(lines))
	copy(sorted, lines)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ProductId < sorted[j].ProductId })

	db := config.GetDB()
	var order *Order
	var status *OrderStatus
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		order, status, err = createOrderTx(tx, input)
		if err != nil {
			return err
		}
		for _, line := range sorted {
			item, err := newOrderItemTx(tx, order.ID, line.ProductId, line.Quantity)
			if err != nil {
				return err
			}
			order.Items = append(order.Items, *item)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	publishOrderEvent(ctx, "order.created", status)
	return order, nil
}

func GetOrder(ctx context.Context, orderId int) (*Order, error) {
	return FetchModel[Order](ctx, orderId, "Items")
}

func ListOrders(ctx context.Context, filter OrderFilter) ([]*Order, error) {
	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Preload("Items")
	if filter.LastName != "" {
		dbCtx = dbCtx.Where("last_name = ?", filter.LastName)
	}
	if filter.Email != "" {
		dbCtx = dbCtx.Where("email = ?", filter.Email)
	}
	if filter.Country != "" {
		dbCtx = dbCtx.Where("country = ?", filter.Country)
	}
	if filter.CreatedFrom != nil {
		dbCtx = dbCtx.Where("created_at >= ?", filter.CreatedFrom.UTC())
	}
	if filter.CreatedTo != nil {
		dbCtx = dbCtx.Where("created_at <= ?", filter.CreatedTo.UTC())
	}

	var results []*Order
	if err := dbCtx.Order("id").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
