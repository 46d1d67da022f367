package models_test

import (
	"testing"
	"time"

	"github.com/mmdatafocus/shop_backend/models"
	"github.com/mmdatafocus/shop_backend/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateOrder_AppendsCreatedStatus(t *testing.T) {
	ctx := setupTestDB(t)

	order, err := models.CreateOrder(ctx, newTestOrder())
	require.NoError(t, err)

	statuses, err := models.ListOrderStatuses(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, statuses, 1)
	assert.Equal(t, models.OrderStatusCreated, statuses[0].Status)
	assert.Equal(t, "Created", statuses[0].StatusName())

	assert.True(t, order.TotalCost().IsZero())
	assert.Equal(t, 0, order.NumberOfItems())
}

func TestCreateOrder_Validation(t *testing.T) {
	ctx := setupTestDB(t)

	input := newTestOrder()
	input.Email = "not-an-email"
	_, err := models.CreateOrder(ctx, input)
	require.True(t, utils.IsValidationError(err))

	input = newTestOrder()
	input.FirstName = "  "
	_, err = models.CreateOrder(ctx, input)
	require.True(t, utils.IsValidationError(err))

	orders, err := models.ListOrders(ctx, models.OrderFilter{})
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestAddOrderItem_CapturesPrice(t *testing.T) {
	ctx := setupTestDB(t)
	product := createTestProduct(t, ctx, "TEA", "2.50")
	order, err := models.CreateOrder(ctx, newTestOrder())
	require.NoError(t, err)

	_, err = models.AddOrderItem(ctx, order.ID, product.ID, 2)
	require.NoError(t, err)

	_, err = models.UpdateProduct(ctx, product.ID, &models.NewProduct{Name: "Tea", Code: "TEA", Price: dec("9.99"), Unit: "piece"})
	require.NoError(t, err)
	_, err = models.AddOrderItem(ctx, order.ID, product.ID, 1)
	require.NoError(t, err)

	loaded, err := models.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Items, 2)
	assert.True(t, loaded.Items[0].Price.Equal(dec("2.5")))
	assert.Equal(t, 2, loaded.NumberOfItems())
	assert.True(t, loaded.TotalCost().Equal(dec("14.99")), loaded.TotalCost().String())
}

func TestAddOrderItem_Errors(t *testing.T) {
	ctx := setupTestDB(t)
	product := createTestProduct(t, ctx, "TEA", "2.50")
	order, err := models.CreateOrder(ctx, newTestOrder())
	require.NoError(t, err)

	_, err = models.AddOrderItem(ctx, order.ID, product.ID, 0)
	assert.True(t, utils.IsValidationError(err))
	_, err = models.AddOrderItem(ctx, 999, product.ID, 1)
	assert.ErrorIs(t, err, utils.ErrorRecordNotFound)
	_, err = models.AddOrderItem(ctx, order.ID, 999, 1)
	assert.ErrorIs(t, err, utils.ErrorRecordNotFound)
}

func TestCreateOrderFromCart(t *testing.T) {
	ctx := setupTestDB(t)
	tea := createTestProduct(t, ctx, "TEA", "2.50")
	mug := createTestProduct(t, ctx, "MUG", "7.00")

	order, err := models.CreateOrderFromCart(ctx, newTestOrder(), []models.OrderLine{
		{ProductId: mug.ID, Quantity: 1},
		{ProductId: tea.ID, Quantity: 3},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, order.NumberOfItems())
	assert.True(t, order.TotalCost().Equal(dec("14.5")))

	recent, err := models.GetRecentOrderStatus(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCreated, recent.Status)

	_, err = models.CreateOrderFromCart(ctx, newTestOrder(), nil)
	assert.True(t, utils.IsValidationError(err))
}

func TestCreateOrderFromCart_RollsBackOnMissingProduct(t *testing.T) {
	ctx := setupTestDB(t)
	tea := createTestProduct(t, ctx, "TEA", "2.50")

	_, err := models.CreateOrderFromCart(ctx, newTestOrder(), []models.OrderLine{
		{ProductId: tea.ID, Quantity: 1},
		{ProductId: 999, Quantity: 1},
	})
	assert.ErrorIs(t, err, utils.ErrorRecordNotFound)

	orders, err := models.ListOrders(ctx, models.OrderFilter{})
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestListOrders_Filter(t *testing.T) {
	ctx := setupTestDB(t)
	_, err := models.CreateOrder(ctx, newTestOrder())
	require.NoError(t, err)
	other := newTestOrder()
	other.LastName = "Hopper"
	other.Country = "US"
	_, err = models.CreateOrder(ctx, other)
	require.NoError(t, err)

	orders, err := models.ListOrders(ctx, models.OrderFilter{Country: "US"})
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "Hopper", orders[0].LastName)

	future := time.Now().Add(time.Hour)
	orders, err = models.ListOrders(ctx, models.OrderFilter{CreatedFrom: &future})
	require.NoError(t, err)
	assert.Empty(t, orders)

	past := time.Now().Add(-time.Hour)
	orders, err = models.ListOrders(ctx, models.OrderFilter{CreatedFrom: &past})
	require.NoError(t, err)
	assert.Len(t, orders, 2)
}
