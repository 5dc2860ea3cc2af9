package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/campingchile/camping-server/config"
	"github.com/campingchile/camping-server/controllers"
	"github.com/campingchile/camping-server/middleware"
	"github.com/campingchile/camping-server/models"
)

func SetupRoutes(r *gin.Engine, db *gorm.DB, cfg config.Config) {
	auth := controllers.NewAuthController(db, cfg)
	users := controllers.NewUserController(db)
	campings := controllers.NewCampingController(db, cfg)
	sites := controllers.NewSiteController(db)
	reservations := controllers.NewReservationController(db)
	reviews := controllers.NewReviewController(db)
	roles := controllers.NewRoleController(db)
	health := controllers.NewHealthController(db)

	authJWT := middleware.AuthJWT(db, cfg.JWTSecret)
	refresh := middleware.RefreshExpiring(cfg)

	// 10 requests/min/IP with burst 5 on the credential endpoints.
	authLimiter := middleware.NewIPRateLimiter(10, 5, 5*time.Minute)

	r.GET("/health", health.Check)

	user := r.Group("/user")
	{
		user.POST("/create-one-user", middleware.RateLimitByIP(authLimiter), auth.Register)
		user.POST("/login-user", middleware.RateLimitByIP(authLimiter), auth.Login)
		user.POST("/google-login", middleware.RateLimitByIP(authLimiter), auth.GoogleLogin)
		user.POST("/refresh-token", auth.Refresh)
		user.POST("/logout-user", authJWT, auth.Logout)
		user.GET("/get-authenticated-user", authJWT, refresh, auth.Me)

		user.GET("", authJWT, middleware.RequireAdmin(), users.List)

		updates := user.Group("")
		updates.Use(authJWT, refresh, middleware.RequireRoles(models.RoleProvider, models.RoleClient))
		{
			updates.PUT("/update-user-info", users.UpdateInfo)
			updates.PUT("/update-user-email", users.UpdateEmail)
			updates.PUT("/update-user-password", users.UpdatePassword)
			updates.PUT("/update-user-phone", users.UpdatePhone)
		}
	}

	camping := r.Group("/camping")
	{
		camping.GET("", campings.List)
		camping.GET("/public-view-get-campings", campings.List)
		camping.GET("/camping/:camping_id", campings.Get)
		camping.POST("/search", campings.Search)

		camping.POST("/create-camping-by-admin", authJWT, refresh,
			middleware.RequireRoles(models.RoleAdmin, models.RoleProvider), campings.Create)
		camping.POST("/upload-image", authJWT, refresh,
			middleware.RequireRoles(models.RoleAdmin, models.RoleProvider), campings.UploadImage)
		camping.GET("/provider/:provider_id/campings", authJWT, refresh,
			middleware.RequireRoles(models.RoleAdmin, models.RoleProvider), campings.ListByProvider)
		camping.GET("/provider/:provider_id/camping/:camping_id", authJWT, refresh,
			middleware.RequireRoles(models.RoleAdmin, models.RoleProvider), campings.GetForProvider)
		camping.PUT("/provider/:provider_id/edit-camping/:camping_id", authJWT, refresh,
			middleware.RequireRoles(models.RoleAdmin, models.RoleProvider), campings.Update)
		camping.DELETE("/:camping_id", authJWT, refresh, middleware.RequireAdmin(), campings.Delete)
	}

	site := r.Group("/site")
	{
		site.GET("/search", sites.Search)
		site.GET("/camping/:camping_id/sites", sites.ListByCamping)
		site.GET("/:site_id", sites.Get)

		site.POST("", authJWT, refresh,
			middleware.RequireRoles(models.RoleAdmin, models.RoleProvider), sites.Create)
		site.PUT("/:site_id", authJWT, refresh,
			middleware.RequireRoles(models.RoleAdmin, models.RoleProvider), sites.Update)
		site.DELETE("/:site_id", authJWT, refresh,
			middleware.RequireRoles(models.RoleAdmin, models.RoleProvider), sites.Delete)
	}

	reservation := r.Group("/reservation")
	reservation.Use(authJWT, refresh)
	{
		reservation.POST("", reservations.Create)
		reservation.GET("", middleware.RequireAdmin(), reservations.List)
		reservation.GET("/user/:user_id/reservations", reservations.ListByUser)
		reservation.GET("/camping/:camping_id/export",
			middleware.RequireRoles(models.RoleAdmin, models.RoleProvider), reservations.Export)
		reservation.PUT("/:reservation_id", reservations.Update)
		reservation.DELETE("/:reservation_id", reservations.Delete)
	}

	review := r.Group("/review")
	{
		review.GET("", reviews.List)
		review.GET("/get-camping-rating/:camping_id/from-reviews", reviews.CampingRating)

		review.POST("", authJWT, refresh, reviews.Create)
		review.PUT("/:review_id", authJWT, refresh, reviews.Update)
		review.DELETE("/:review_id", authJWT, refresh, reviews.Delete)
	}

	role := r.Group("/role")
	role.Use(authJWT, refresh, middleware.RequireAdmin())
	{
		role.POST("", roles.Create)
		role.GET("", roles.List)
		role.PUT("/:role_id", roles.Update)
		role.DELETE("/:role_id", roles.Delete)
	}
}
