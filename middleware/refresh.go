package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/campingchile/camping-server/config"
	"github.com/campingchile/camping-server/utils"
)

// Access tokens are re-issued silently once they get this close to
// expiry, so an active session never lapses mid-use.
const refreshWindow = 15 * time.Minute

// RefreshExpiring re-issues the access cookie when the presented token
// is about to expire. Must run after AuthJWT; the cookie has to be set
// before the handler writes the response body.
func RefreshExpiring(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if v, ok := c.Get(CtxClaims); ok {
			claims := v.(*utils.JWTClaims)
			if claims.ExpiresAt != nil && time.Until(claims.ExpiresAt.Time) < refreshWindow {
				if token, err := utils.GenerateToken(cfg.JWTSecret, claims.UserID, claims.RoleID, cfg.AccessTokenTTL); err == nil {
					SetAccessCookie(c, cfg, token)
				}
			}
		}
		c.Next()
	}
}
