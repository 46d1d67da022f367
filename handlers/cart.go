package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/shop_backend/cart"
	"github.com/mmdatafocus/shop_backend/config"
	"github.com/mmdatafocus/shop_backend/middlewares"
	"github.com/mmdatafocus/shop_backend/models"
	"github.com/mmdatafocus/shop_backend/sessions"
	"github.com/shopspring/decimal"
)

type cartLineResponse struct {
	ProductId  int             `json:"product_id"`
	Quantity   int             `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

type cartResponse struct {
	Items      []cartLineResponse `json:"items"`
	Length     int                `json:"length"`
	TotalPrice decimal.Decimal    `json:"total_price"`
}

type cartItemRequest struct {
	ProductId int  `json:"product_id"`
	Quantity  *int `json:"quantity"`
}

func toCartResponse(crt *cart.Cart) *cartResponse {
	lines := crt.Lines()
	items := make([]cartLineResponse, 0, len(lines))
	for _, line := range lines {
		items = append(items, cartLineResponse{
			ProductId:  line.ProductId,
			Quantity:   line.Quantity,
			Price:      line.Price,
			TotalPrice: line.Price.Mul(decimal.NewFromInt(int64(line.Quantity))),
		})
	}
	return &cartResponse{Items: items, Length: crt.Len(), TotalPrice: crt.TotalPrice()}
}

func loadCart(c *gin.Context) (*cart.Cart, bool) {
	sess := middlewares.GetSession(c)
	if sess == nil {
		respondError(c, "loadCart", errNoSession)
		return nil, false
	}
	crt, err := cart.New(sess)
	if err != nil {
		respondError(c, "loadCart", err)
		return nil, false
	}
	return crt, true
}

// respondCart saves the session before the body goes out so the next request sees the change.
func respondCart(c *gin.Context, store sessions.Store, status int, crt *cart.Cart) {
	if err := middlewares.SaveSession(c, store); err != nil {
		respondError(c, "respondCart", err)
		return
	}
	c.JSON(status, toCartResponse(crt))
}

func cartProduct(c *gin.Context, productId int) (*models.Product, bool) {
	product, err := models.GetProduct(c.Request.Context(), productId)
	if err != nil {
		respondError(c, "cartProduct", err)
		return nil, false
	}
	return product, true
}

func GetCartHandler(store sessions.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		crt, ok := loadCart(c)
		if !ok {
			return
		}
		respondCart(c, store, http.StatusOK, crt)
	}
}

func AddCartItemHandler(store sessions.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req cartItemRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.ProductId == 0 {
			badRequest(c, "Bad request data")
			return
		}
		quantity := 1
		if req.Quantity != nil {
			quantity = *req.Quantity
		}
		crt, ok := loadCart(c)
		if !ok {
			return
		}
		product, ok := cartProduct(c, req.ProductId)
		if !ok {
			return
		}
		if err := crt.Add(product, quantity); err != nil {
			respondError(c, "AddCartItemHandler", err)
			return
		}
		respondCart(c, store, http.StatusOK, crt)
	}
}

func SubtractCartItemHandler(store sessions.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c, "product_id")
		if !ok {
			return
		}
		var req cartItemRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Quantity == nil {
			badRequest(c, "Bad request data")
			return
		}
		crt, ok := loadCart(c)
		if !ok {
			return
		}
		product, ok := cartProduct(c, id)
		if !ok {
			return
		}
		crt.Subtract(product, *req.Quantity)
		respondCart(c, store, http.StatusOK, crt)
	}
}

func RemoveCartItemHandler(store sessions.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c, "product_id")
		if !ok {
			return
		}
		crt, ok := loadCart(c)
		if !ok {
			return
		}
		crt.Remove(cartKey(id))
		respondCart(c, store, http.StatusOK, crt)
	}
}

func ClearCartHandler(store sessions.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		crt, ok := loadCart(c)
		if !ok {
			return
		}
		crt.Clear()
		if err := middlewares.SaveSession(c, store); err != nil {
			respondError(c, "ClearCartHandler", err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// CheckoutCartHandler turns the cart into an order and clears it.
func CheckoutCartHandler(store sessions.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewOrder
		if err := c.ShouldBindJSON(&input); err != nil {
			badRequest(c, "Bad request data")
			return
		}
		crt, ok := loadCart(c)
		if !ok {
			return
		}

		lines := crt.Lines()
		orderLines := make([]models.OrderLine, 0, len(lines))
		for _, line := range lines {
			orderLines = append(orderLines, models.OrderLine{ProductId: line.ProductId, Quantity: line.Quantity})
		}
		order, err := models.CreateOrderFromCart(c.Request.Context(), &input, orderLines)
		if err != nil {
			respondError(c, "CheckoutCartHandler", err)
			return
		}

		crt.Clear()
		if err := middlewares.SaveSession(c, store); err != nil {
			// the order exists; a stale cart is only an inconvenience
			config.LogError(config.GetLogger(), "handlers", "CheckoutCartHandler", "SaveSession", order.ID, err)
		}
		status, err := models.GetRecentOrderStatus(c.Request.Context(), order.ID)
		if err != nil {
			config.LogError(config.GetLogger(), "handlers", "CheckoutCartHandler", "GetRecentOrderStatus", order.ID, err)
		}
		c.JSON(http.StatusCreated, toOrderResponse(order, status))
	}
}

// cartKey identifies a cart entry by product id without loading the product.
type cartKey int

func (k cartKey) GetId() int {
	return int(k)
}

func (k cartKey) GetPrice() decimal.Decimal {
	return decimal.Zero
}

var errNoSession = errors.New("session middleware is not installed")
