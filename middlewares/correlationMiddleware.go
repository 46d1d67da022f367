package middlewares

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mmdatafocus/shop_backend/utils"
)

const CorrelationIdHeader = "X-Correlation-Id"

func CorrelationMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Request.Header.Get(CorrelationIdHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(CorrelationIdHeader, id)
		c.Request = c.Request.WithContext(utils.SetCorrelationIdInContext(c.Request.Context(), id))
		c.Next()
	}
}
