package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/shop_backend/utils"
)

const StoreAdministrators = "store_administrators"

// RequireGroups lets the request through when the caller belongs to any of groups.
func RequireGroups(groups ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		username, ok := utils.GetUsernameFromContext(c.Request.Context())
		if !ok || username == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication credentials were not provided"})
			return
		}
		memberOf, _ := utils.GetGroupsFromContext(c.Request.Context())
		for _, g := range memberOf {
			for _, allowed := range groups {
				if g == allowed {
					c.Next()
					return
				}
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "you do not have permission to perform this action"})
	}
}
