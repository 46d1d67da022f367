package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/shop_backend/models"
	"github.com/mmdatafocus/shop_backend/reports"
	"github.com/mmdatafocus/shop_backend/utils"
	"github.com/shopspring/decimal"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type stockRequest struct {
	StockSize interface{} `json:"stock_size"`
}

type stockResponse struct {
	*models.ProductStock
	Unit string `json:"unit"`
}

func bindStockSize(c *gin.Context) (decimal.Decimal, bool) {
	var req stockRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.StockSize == nil {
		badRequest(c, "Bad request data")
		return decimal.Zero, false
	}
	size, err := utils.DecimalFromAny(req.StockSize)
	if err != nil {
		badRequest(c, "Bad request data")
		return decimal.Zero, false
	}
	return size, true
}

func withUnit(c *gin.Context, entry *models.ProductStock) *stockResponse {
	resp := &stockResponse{ProductStock: entry}
	if product, err := models.GetProduct(c.Request.Context(), entry.ProductId); err == nil {
		resp.Unit = product.Unit
	}
	return resp
}

func GetStockHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c, "id")
		if !ok {
			return
		}
		stock, err := models.GetCurrentStock(c.Request.Context(), id)
		if err != nil {
			respondError(c, "GetStockHandler", err)
			return
		}
		c.JSON(http.StatusOK, withUnit(c, stock))
	}
}

func stockMutationHandler(funcName string, status int, mutate func(*gin.Context, int, decimal.Decimal) (*models.ProductStock, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c, "id")
		if !ok {
			return
		}
		size, ok := bindStockSize(c)
		if !ok {
			return
		}
		entry, err := mutate(c, id, size)
		if err != nil {
			respondError(c, funcName, err)
			return
		}
		c.JSON(status, withUnit(c, entry))
	}
}

func SetStockHandler() gin.HandlerFunc {
	return stockMutationHandler("SetStockHandler", http.StatusCreated, func(c *gin.Context, id int, size decimal.Decimal) (*models.ProductStock, error) {
		return models.SetStock(c.Request.Context(), id, size)
	})
}

func IncreaseStockHandler() gin.HandlerFunc {
	return stockMutationHandler("IncreaseStockHandler", http.StatusOK, func(c *gin.Context, id int, delta decimal.Decimal) (*models.ProductStock, error) {
		return models.IncreaseStock(c.Request.Context(), id, delta)
	})
}

func DecreaseStockHandler() gin.HandlerFunc {
	return stockMutationHandler("DecreaseStockHandler", http.StatusOK, func(c *gin.Context, id int, delta decimal.Decimal) (*models.ProductStock, error) {
		return models.DecreaseStock(c.Request.Context(), id, delta)
	})
}

// StockHistoryHandler lists the ledger newest first; ?as_of=<RFC3339> returns the single entry current at that time.
func StockHistoryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c, "id")
		if !ok {
			return
		}
		if raw := c.Query("as_of"); raw != "" {
			asOf, err := time.Parse(time.RFC3339Nano, raw)
			if err != nil {
				badRequest(c, "as_of must be an RFC3339 timestamp")
				return
			}
			entry, err := models.GetStockAsOf(c.Request.Context(), id, asOf)
			if err != nil {
				respondError(c, "StockHistoryHandler", err)
				return
			}
			c.JSON(http.StatusOK, entry)
			return
		}
		history, err := models.ListStockHistory(c.Request.Context(), id)
		if err != nil {
			respondError(c, "StockHistoryHandler", err)
			return
		}
		c.JSON(http.StatusOK, history)
	}
}

func StockHistoryExportHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c, "id")
		if !ok {
			return
		}
		var buf bytes.Buffer
		if err := reports.ExportStockHistory(c.Request.Context(), &buf, id); err != nil {
			respondError(c, "StockHistoryExportHandler", err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=stock_history_%d.xlsx", id))
		c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
	}
}
