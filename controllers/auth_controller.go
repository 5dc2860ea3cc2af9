package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"google.golang.org/api/idtoken"
	"gorm.io/gorm"

	"github.com/campingchile/camping-server/config"
	"github.com/campingchile/camping-server/middleware"
	"github.com/campingchile/camping-server/models"
	"github.com/campingchile/camping-server/utils"
)

type AuthController struct {
	DB  *gorm.DB
	Cfg config.Config
}

func NewAuthController(db *gorm.DB, cfg config.Config) *AuthController {
	return &AuthController{DB: db, Cfg: cfg}
}

type RegisterReq struct {
	FirstName string  `json:"first_name" binding:"required,min=1"`
	LastName  string  `json:"last_name" binding:"required,min=1"`
	Rut       string  `json:"rut" binding:"required"`
	Email     string  `json:"email" binding:"required,email"`
	Password  string  `json:"password" binding:"required,min=6"`
	Phone     *string `json:"phone"`
	RoleID    uint    `json:"role_id" binding:"required"`
}

// POST /user/create-one-user
func (a *AuthController) Register(c *gin.Context) {
	var req RegisterReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var role models.Role
	if err := a.DB.First(&role, req.RoleID).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown role_id"})
		return
	}

	var count int64
	a.DB.Model(&models.User{}).Where("email = ?", req.Email).Count(&count)
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "email already in use"})
		return
	}
	a.DB.Model(&models.User{}).Where("rut = ?", req.Rut).Count(&count)
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "rut already in use"})
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not hash password"})
		return
	}

	user := models.User{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Rut:       req.Rut,
		Email:     req.Email,
		Password:  hash,
		Phone:     req.Phone,
		RoleID:    req.RoleID,
	}

	if err := a.DB.Create(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create user"})
		return
	}

	c.JSON(http.StatusCreated, user)
}

type LoginReq struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// POST /user/login-user
func (a *AuthController) Login(c *gin.Context) {
	var req LoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := a.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	if !utils.CheckPassword(user.Password, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	a.issueSession(c, user)
}

type GoogleLoginReq struct {
	Credential string `json:"credential" binding:"required"`
}

// POST /user/google-login
//
// Accepts a Google ID token and signs in the matching account. Sign-up
// still goes through the regular registration form since a rut is
// required there.
func (a *AuthController) GoogleLogin(c *gin.Context) {
	var req GoogleLoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	payload, err := idtoken.Validate(c.Request.Context(), req.Credential, a.Cfg.GoogleClientID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid google credential"})
		return
	}

	email, _ := payload.Claims["email"].(string)
	if email == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "google credential has no email"})
		return
	}

	var user models.User
	if err := a.DB.Where("email = ?", email).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no account for this google user"})
		return
	}

	a.issueSession(c, user)
}

// POST /user/logout-user
func (a *AuthController) Logout(c *gin.Context) {
	middleware.ClearAuthCookies(c, a.Cfg)
	c.JSON(http.StatusOK, gin.H{"message": "logout successful"})
}

// GET /user/get-authenticated-user
func (a *AuthController) Me(c *gin.Context) {
	user := c.MustGet(middleware.CtxUser).(models.User)
	if err := a.DB.Preload("Role").First(&user, user.ID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, user)
}

// POST /user/refresh-token
//
// Exchanges a valid refresh cookie for a fresh access cookie.
func (a *AuthController) Refresh(c *gin.Context) {
	raw, err := c.Cookie(middleware.RefreshCookie)
	if err != nil || raw == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing refresh token"})
		return
	}

	claims, err := utils.VerifyToken(a.Cfg.JWTSecret, raw)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired refresh token"})
		return
	}

	var user models.User
	if err := a.DB.First(&user, claims.UserID).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	access, err := utils.GenerateToken(a.Cfg.JWTSecret, user.ID, user.RoleID, a.Cfg.AccessTokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue token"})
		return
	}
	middleware.SetAccessCookie(c, a.Cfg, access)

	c.JSON(http.StatusOK, gin.H{"message": "token refreshed"})
}

func (a *AuthController) issueSession(c *gin.Context, user models.User) {
	access, err := utils.GenerateToken(a.Cfg.JWTSecret, user.ID, user.RoleID, a.Cfg.AccessTokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue token"})
		return
	}
	refresh, err := utils.GenerateToken(a.Cfg.JWTSecret, user.ID, user.RoleID, a.Cfg.RefreshTokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue token"})
		return
	}

	middleware.SetAccessCookie(c, a.Cfg, access)
	middleware.SetRefreshCookie(c, a.Cfg, refresh)

	c.JSON(http.StatusOK, gin.H{
		"message": "login successful",
		"user":    user,
		"token":   access,
	})
}
