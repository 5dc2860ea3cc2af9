package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/campingchile/camping-server/models"
)

type RoleController struct {
	DB *gorm.DB
}

func NewRoleController(db *gorm.DB) *RoleController {
	return &RoleController{DB: db}
}

type RoleReq struct {
	Name string `json:"name" binding:"required"`
}

// POST /role/
func (rl *RoleController) Create(c *gin.Context) {
	var req RoleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	role := models.Role{Name: req.Name}
	if err := rl.DB.Create(&role).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create role"})
		return
	}
	c.JSON(http.StatusCreated, role)
}

// GET /role/
func (rl *RoleController) List(c *gin.Context) {
	var roles []models.Role
	if err := rl.DB.Find(&roles).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list roles"})
		return
	}
	c.JSON(http.StatusOK, roles)
}

// PUT /role/:role_id
func (rl *RoleController) Update(c *gin.Context) {
	var role models.Role
	if err := rl.DB.First(&role, "id = ?", c.Param("role_id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "role not found"})
		return
	}

	var req RoleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	role.Name = req.Name
	if err := rl.DB.Save(&role).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update role"})
		return
	}
	c.JSON(http.StatusOK, role)
}

// DELETE /role/:role_id
func (rl *RoleController) Delete(c *gin.Context) {
	var role models.Role
	if err := rl.DB.First(&role, "id = ?", c.Param("role_id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "role not found"})
		return
	}
	if err := rl.DB.Delete(&role).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete role"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "role deleted"})
}
