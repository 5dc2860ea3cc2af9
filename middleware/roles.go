package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campingchile/camping-server/models"
)

// RequireRoles rejects callers whose role id is outside the allow-list.
// Must run after AuthJWT.
func RequireRoles(allowed ...uint) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, ok := c.Get(CtxUser)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing credentials"})
			return
		}
		u := v.(models.User)
		for _, id := range allowed {
			if u.RoleID == id {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "access denied"})
	}
}

// RequireAdmin is shorthand for the admin-only routes.
func RequireAdmin() gin.HandlerFunc {
	return RequireRoles(models.RoleAdmin)
}
