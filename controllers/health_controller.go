package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type HealthController struct {
	DB *gorm.DB
}

func NewHealthController(db *gorm.DB) *HealthController {
	return &HealthController{DB: db}
}

// GET /health
func (h *HealthController) Check(c *gin.Context) {
	response := gin.H{
		"status": "ok",
		"db":     "ok",
	}

	sqlDB, err := h.DB.DB()
	if err != nil {
		response["status"] = "error"
		response["db"] = "cannot get DB instance"
		c.JSON(http.StatusInternalServerError, response)
		return
	}
	if err := sqlDB.Ping(); err != nil {
		response["status"] = "error"
		response["db"] = "cannot connect to DB"
		c.JSON(http.StatusInternalServerError, response)
		return
	}

	c.JSON(http.StatusOK, response)
}
