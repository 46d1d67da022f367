package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/shop_backend/models"
	"github.com/mmdatafocus/shop_backend/utils"
)

type statusResponse struct {
	*models.OrderStatus
	StatusName string `json:"status_name"`
}

func toStatusResponse(status *models.OrderStatus) *statusResponse {
	return &statusResponse{OrderStatus: status, StatusName: status.StatusName()}
}

func ListOrderStatusesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c, "id")
		if !ok {
			return
		}
		statuses, err := models.ListOrderStatuses(c.Request.Context(), id)
		if err != nil {
			respondError(c, "ListOrderStatusesHandler", err)
			return
		}
		results := make([]*statusResponse, 0, len(statuses))
		for _, s := range statuses {
			results = append(results, toStatusResponse(s))
		}
		c.JSON(http.StatusOK, results)
	}
}

func RecentOrderStatusHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c, "id")
		if !ok {
			return
		}
		status, err := models.GetRecentOrderStatus(c.Request.Context(), id)
		if err != nil {
			respondError(c, "RecentOrderStatusHandler", err)
			return
		}
		c.JSON(http.StatusOK, toStatusResponse(status))
	}
}

// AppendOrderStatusHandler answers 400 for a missing order and 403 for a duplicate or terminal status.
func AppendOrderStatusHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c, "id")
		if !ok {
			return
		}
		var input models.NewOrderStatus
		if err := c.ShouldBindJSON(&input); err != nil {
			badRequest(c, "Bad request data")
			return
		}
		status, err := models.AppendOrderStatus(c.Request.Context(), id, &input)
		if errors.Is(err, utils.ErrorRecordNotFound) {
			badRequest(c, "Order does not exist")
			return
		} else if err != nil {
			respondError(c, "AppendOrderStatusHandler", err)
			return
		}
		c.JSON(http.StatusCreated, toStatusResponse(status))
	}
}

func GetOrderStatusHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c, "id")
		if !ok {
			return
		}
		status, err := models.GetOrderStatus(c.Request.Context(), id)
		if err != nil {
			respondError(c, "GetOrderStatusHandler", err)
			return
		}
		c.JSON(http.StatusOK, toStatusResponse(status))
	}
}
