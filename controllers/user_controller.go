package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/campingchile/camping-server/middleware"
	"github.com/campingchile/camping-server/models"
	"github.com/campingchile/camping-server/utils"
)

type UserController struct {
	DB *gorm.DB
}

func NewUserController(db *gorm.DB) *UserController {
	return &UserController{DB: db}
}

// GET /user/
func (u *UserController) List(c *gin.Context) {
	var users []models.User
	if err := u.DB.Preload("Role").Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list users"})
		return
	}
	c.JSON(http.StatusOK, users)
}

// confirmPassword re-checks the caller's password before profile
// mutations; every update endpoint below requires it.
func (u *UserController) confirmPassword(c *gin.Context, current string) (models.User, bool) {
	user := c.MustGet(middleware.CtxUser).(models.User)
	if current == "" || !utils.CheckPassword(user.Password, current) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid password"})
		return models.User{}, false
	}
	return user, true
}

type UpdateInfoReq struct {
	CurrentPassword string  `json:"current_password" binding:"required"`
	FirstName       *string `json:"first_name"`
	LastName        *string `json:"last_name"`
}

// PUT /user/update-user-info
func (u *UserController) UpdateInfo(c *gin.Context) {
	var req UpdateInfoReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, ok := u.confirmPassword(c, req.CurrentPassword)
	if !ok {
		return
	}

	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}

	if err := u.DB.Save(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update user"})
		return
	}
	c.JSON(http.StatusOK, user)
}

type UpdateEmailReq struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	Email           string `json:"email" binding:"required,email"`
}

// PUT /user/update-user-email
func (u *UserController) UpdateEmail(c *gin.Context) {
	var req UpdateEmailReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, ok := u.confirmPassword(c, req.CurrentPassword)
	if !ok {
		return
	}

	var count int64
	u.DB.Model(&models.User{}).Where("email = ? AND id <> ?", req.Email, user.ID).Count(&count)
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "email already in use"})
		return
	}

	user.Email = req.Email
	if err := u.DB.Save(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update email"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "email updated"})
}

type UpdatePasswordReq struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=6"`
}

// PUT /user/update-user-password
func (u *UserController) UpdatePassword(c *gin.Context) {
	var req UpdatePasswordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, ok := u.confirmPassword(c, req.CurrentPassword)
	if !ok {
		return
	}

	hash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not hash password"})
		return
	}

	user.Password = hash
	if err := u.DB.Save(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update password"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "password updated"})
}

type UpdatePhoneReq struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	Phone           string `json:"phone" binding:"required"`
}

// PUT /user/update-user-phone
func (u *UserController) UpdatePhone(c *gin.Context) {
	var req UpdatePhoneReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, ok := u.confirmPassword(c, req.CurrentPassword)
	if !ok {
		return
	}

	user.Phone = &req.Phone
	if err := u.DB.Save(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update phone"})
		return
	}
	c.JSON(http.StatusOK, user)
}
