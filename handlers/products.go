package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/shop_backend/middlewares"
	"github.com/mmdatafocus/shop_backend/models"
	"github.com/shopspring/decimal"
)

type productResponse struct {
	*models.Product
	AvailableStock decimal.Decimal `json:"available_stock"`
}

func toProductResponse(c *gin.Context, product *models.Product) (*productResponse, error) {
	stock, err := middlewares.GetCurrentStock(c.Request.Context(), product.ID)
	if err != nil {
		return nil, err
	}
	return &productResponse{Product: product, AvailableStock: stock.StockSize}, nil
}

func ListProductsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		products, err := models.ListProducts(c.Request.Context())
		if err != nil {
			respondError(c, "ListProductsHandler", err)
			return
		}

		// issue all loads before waiting so the loader batches them
		thunks := make([]func() (*models.ProductStock, error), len(products))
		loaders := middlewares.For(c.Request.Context())
		for i, p := range products {
			thunks[i] = loaders.LoadCurrentStock(c.Request.Context(), p.ID)
		}
		results := make([]*productResponse, 0, len(products))
		for i, p := range products {
			resp := &productResponse{Product: p}
			if stock, err := thunks[i](); err == nil {
				resp.AvailableStock = stock.StockSize
			}
			results = append(results, resp)
		}
		c.JSON(http.StatusOK, results)
	}
}

func GetProductHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c, "id")
		if !ok {
			return
		}
		product, err := models.GetProduct(c.Request.Context(), id)
		if err != nil {
			respondError(c, "GetProductHandler", err)
			return
		}
		resp, err := toProductResponse(c, product)
		if err != nil {
			respondError(c, "GetProductHandler", err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

func CreateProductHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewProduct
		if err := c.ShouldBindJSON(&input); err != nil {
			badRequest(c, "Bad request data")
			return
		}
		product, err := models.CreateProduct(c.Request.Context(), &input)
		if err != nil {
			respondError(c, "CreateProductHandler", err)
			return
		}
		c.JSON(http.StatusCreated, &productResponse{Product: product, AvailableStock: decimal.Zero})
	}
}

func UpdateProductHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c, "id")
		if !ok {
			return
		}
		var input models.NewProduct
		if err := c.ShouldBindJSON(&input); err != nil {
			badRequest(c, "Bad request data")
			return
		}
		product, err := models.UpdateProduct(c.Request.Context(), id, &input)
		if err != nil {
			respondError(c, "UpdateProductHandler", err)
			return
		}
		resp, err := toProductResponse(c, product)
		if err != nil {
			respondError(c, "UpdateProductHandler", err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

func DeleteProductHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c, "id")
		if !ok {
			return
		}
		if _, err := models.DeleteProduct(c.Request.Context(), id); err != nil {
			respondError(c, "DeleteProductHandler", err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
