package models_test

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/mmdatafocus/shop_backend/config"
	"github.com/mmdatafocus/shop_backend/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var testDBSeq atomic.Int64

// setupTestDB points the package at a fresh in-memory SQLite database with Redis disabled.
func setupTestDB(t *testing.T) context.Context {
	t.Helper()

	dsn := fmt.Sprintf("file:models_test_%d?mode=memory&cache=shared", testDBSeq.Add(1))
	conn, err := config.OpenSQLite(dsn)
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	// one connection keeps the in-memory database alive and serializes writers
	sqlDB.SetMaxOpenConns(1)

	config.SetDB(conn)
	config.SetRedisDB(nil)
	require.NoError(t, models.MigrateTable())

	t.Cleanup(func() {
		_ = sqlDB.Close()
		config.SetDB(nil)
	})
	return context.Background()
}

func createTestProduct(t *testing.T, ctx context.Context, code string, price string) *models.Product {
	t.Helper()
	product, err := models.CreateProduct(ctx, &models.NewProduct{
		Name:  "Product " + code,
		Code:  code,
		Price: decimal.RequireFromString(price),
		Unit:  "piece",
	})
	require.NoError(t, err)
	return product
}

func newTestOrder() *models.NewOrder {
	return &models.NewOrder{
		FirstName:  "Ada",
		LastName:   "Lovelace",
		Email:      "ada@example.com",
		Address:    "12 Analytical St",
		PostalCode: "10115",
		City:       "London",
		Country:    "UK",
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
