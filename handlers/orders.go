package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/shop_backend/config"
	"github.com/mmdatafocus/shop_backend/middlewares"
	"github.com/mmdatafocus/shop_backend/models"
	"github.com/shopspring/decimal"
)

type orderItemResponse struct {
	models.OrderItem
	Cost decimal.Decimal `json:"cost"`
}

type orderResponse struct {
	*models.Order
	Items         []orderItemResponse `json:"items"`
	TotalCost     decimal.Decimal     `json:"total_cost"`
	NumberOfItems int                 `json:"number_of_items"`
	Status        *statusResponse     `json:"status"`
}

func toOrderResponse(order *models.Order, status *models.OrderStatus) *orderResponse {
	items := make([]orderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, orderItemResponse{OrderItem: item, Cost: item.Cost()})
	}
	resp := &orderResponse{
		Order:         order,
		Items:         items,
		TotalCost:     order.TotalCost(),
		NumberOfItems: order.NumberOfItems(),
	}
	if status != nil {
		resp.Status = toStatusResponse(status)
	}
	return resp
}

type addItemRequest struct {
	ProductId int  `json:"product_id"`
	Quantity  *int `json:"quantity"`
}

func parseDateQuery(c *gin.Context, key string) (*time.Time, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, true
		}
	}
	badRequest(c, key+" must be a date (YYYY-MM-DD) or RFC3339 timestamp")
	return nil, false
}

func ListOrdersHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := models.OrderFilter{
			LastName: c.Query("last_name"),
			Email:    c.Query("email"),
			Country:  c.Query("country"),
		}
		var ok bool
		if filter.CreatedFrom, ok = parseDateQuery(c, "created_from"); !ok {
			return
		}
		if filter.CreatedTo, ok = parseDateQuery(c, "created_to"); !ok {
			return
		}

		orders, err := models.ListOrders(c.Request.Context(), filter)
		if err != nil {
			respondError(c, "ListOrdersHandler", err)
			return
		}

		ctx := c.Request.Context()
		loaders := middlewares.For(ctx)
		thunks := make([]func() (*models.OrderStatus, error), len(orders))
		for i, o := range orders {
			thunks[i] = loaders.LoadRecentOrderStatus(ctx, o.ID)
		}
		results := make([]*orderResponse, 0, len(orders))
		for i, o := range orders {
			status, err := thunks[i]()
			if err != nil {
				config.LogError(config.GetLogger(), "handlers", "ListOrdersHandler", "LoadRecentOrderStatus", o.ID, err)
			}
			results = append(results, toOrderResponse(o, status))
		}
		c.JSON(http.StatusOK, results)
	}
}

func GetOrderHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c, "id")
		if !ok {
			return
		}
		order, err := models.GetOrder(c.Request.Context(), id)
		if err != nil {
			respondError(c, "GetOrderHandler", err)
			return
		}
		status, err := middlewares.GetRecentOrderStatus(c.Request.Context(), id)
		if err != nil {
			config.LogError(config.GetLogger(), "handlers", "GetOrderHandler", "GetRecentOrderStatus", id, err)
		}
		c.JSON(http.StatusOK, toOrderResponse(order, status))
	}
}

func CreateOrderHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewOrder
		if err := c.ShouldBindJSON(&input); err != nil {
			badRequest(c, "Bad request data")
			return
		}
		order, err := models.CreateOrder(c.Request.Context(), &input)
		if err != nil {
			respondError(c, "CreateOrderHandler", err)
			return
		}
		status, err := models.GetRecentOrderStatus(c.Request.Context(), order.ID)
		if err != nil {
			config.LogError(config.GetLogger(), "handlers", "CreateOrderHandler", "GetRecentOrderStatus", order.ID, err)
		}
		c.JSON(http.StatusCreated, toOrderResponse(order, status))
	}
}

func AddOrderItemHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c, "id")
		if !ok {
			return
		}
		var req addItemRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.ProductId == 0 {
			badRequest(c, "Bad request data")
			return
		}
		quantity := 1
		if req.Quantity != nil {
			quantity = *req.Quantity
		}
		item, err := models.AddOrderItem(c.Request.Context(), id, req.ProductId, quantity)
		if err != nil {
			respondError(c, "AddOrderItemHandler", err)
			return
		}
		c.JSON(http.StatusCreated, orderItemResponse{OrderItem: *item, Cost: item.Cost()})
	}
}
