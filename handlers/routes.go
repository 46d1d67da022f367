package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/shop_backend/middlewares"
	"github.com/mmdatafocus/shop_backend/sessions"
)

// RegisterRoutes mounts the catalog, order and cart routes.
// Catalog and order routes are for store administrators only; the cart is session scoped.
func RegisterRoutes(r gin.IRouter, store sessions.Store) {
	admin := r.Group("/", middlewares.AuthMiddleware(), middlewares.RequireGroups(middlewares.StoreAdministrators), middlewares.LoaderMiddleware())
	{
		admin.GET("/products", ListProductsHandler())
		admin.POST("/products", CreateProductHandler())
		admin.GET("/products/:id", GetProductHandler())
		admin.PUT("/products/:id", UpdateProductHandler())
		admin.DELETE("/products/:id", DeleteProductHandler())

		admin.GET("/products/:id/stock", GetStockHandler())
		admin.POST("/products/:id/stock", SetStockHandler())
		admin.POST("/products/:id/stock/add", IncreaseStockHandler())
		admin.POST("/products/:id/stock/reduce", DecreaseStockHandler())
		admin.GET("/products/:id/stock/history", StockHistoryHandler())
		admin.GET("/products/:id/stock/history.xlsx", StockHistoryExportHandler())

		admin.GET("/orders", ListOrdersHandler())
		admin.POST("/orders", CreateOrderHandler())
		admin.GET("/orders/:id", GetOrderHandler())
		admin.POST("/orders/:id/items", AddOrderItemHandler())

		admin.GET("/orders/:id/statuses", ListOrderStatusesHandler())
		admin.POST("/orders/:id/statuses", AppendOrderStatusHandler())
		admin.GET("/orders/:id/statuses/recent", RecentOrderStatusHandler())
		admin.GET("/order-statuses/:id", GetOrderStatusHandler())
	}

	shop := r.Group("/cart", middlewares.SessionMiddleware(store))
	{
		shop.GET("", GetCartHandler(store))
		shop.DELETE("", ClearCartHandler(store))
		shop.POST("/items", AddCartItemHandler(store))
		shop.POST("/items/:product_id/subtract", SubtractCartItemHandler(store))
		shop.DELETE("/items/:product_id", RemoveCartItemHandler(store))
		shop.POST("/checkout", CheckoutCartHandler(store))
	}
}
