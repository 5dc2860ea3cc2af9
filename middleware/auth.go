package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/campingchile/camping-server/config"
	"github.com/campingchile/camping-server/models"
	"github.com/campingchile/camping-server/utils"
)

// Context keys set by AuthJWT.
const (
	CtxUser   = "user"
	CtxClaims = "claims"
)

// Cookie names shared with the auth controller.
const (
	AccessCookie  = "access_token"
	RefreshCookie = "refresh_token"
)

// AuthJWT validates the session credential, loads the caller from the
// database and injects it into the context. The access cookie is the
// primary transport; Authorization: Bearer is kept as a fallback for
// clients of the earlier revisions.
func AuthJWT(db *gorm.DB, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := tokenFromRequest(c)
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing credentials"})
			return
		}

		claims, err := utils.VerifyToken(secret, raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		var user models.User
		if err := db.First(&user, claims.UserID).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
			return
		}

		c.Set(CtxUser, user)
		c.Set(CtxClaims, claims)
		c.Next()
	}
}

func tokenFromRequest(c *gin.Context) string {
	if cookie, err := c.Cookie(AccessCookie); err == nil && cookie != "" {
		return cookie
	}
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" && strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}

func SetAccessCookie(c *gin.Context, cfg config.Config, token string) {
	c.SetCookie(AccessCookie, token, int(cfg.AccessTokenTTL.Seconds()), "/", "", cfg.CookieSecure, true)
}

func SetRefreshCookie(c *gin.Context, cfg config.Config, token string) {
	c.SetCookie(RefreshCookie, token, int(cfg.RefreshTokenTTL.Seconds()), "/", "", cfg.CookieSecure, true)
}

func ClearAuthCookies(c *gin.Context, cfg config.Config) {
	c.SetCookie(AccessCookie, "", -1, "/", "", cfg.CookieSecure, true)
	c.SetCookie(RefreshCookie, "", -1, "/", "", cfg.CookieSecure, true)
}
