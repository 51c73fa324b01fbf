package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"labboard/internal/handler"
	"labboard/pkg/rbac"
)

// RequirePermission rejects callers whose role lacks permission. It must run
// after AuthMiddleware.
func RequirePermission(permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get(handler.CtxMemberID); !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "member not authenticated"})
			return
		}

		if err := rbac.CheckPermission(c.GetString(handler.CtxRole), permission); err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": err.Error()})
			return
		}

		c.Next()
	}
}
