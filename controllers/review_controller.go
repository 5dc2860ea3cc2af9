package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/campingchile/camping-server/middleware"
	"github.com/campingchile/camping-server/models"
)

type ReviewController struct {
	DB *gorm.DB
}

func NewReviewController(db *gorm.DB) *ReviewController {
	return &ReviewController{DB: db}
}

type CreateReviewReq struct {
	CampingID uint    `json:"camping_id" binding:"required"`
	Comment   *string `json:"comment"`
	Rating    int     `json:"rating" binding:"required,min=1,max=5"`
}

// POST /review/
func (rv *ReviewController) Create(c *gin.Context) {
	user := c.MustGet(middleware.CtxUser).(models.User)

	var req CreateReviewReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var camping models.Camping
	if err := rv.DB.First(&camping, req.CampingID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "camping not found"})
		return
	}

	review := models.Review{
		UserID:    user.ID,
		CampingID: req.CampingID,
		Comment:   req.Comment,
		Rating:    req.Rating,
	}
	if err := rv.DB.Create(&review).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create review"})
		return
	}
	c.JSON(http.StatusCreated, review)
}

// GET /review/
func (rv *ReviewController) List(c *gin.Context) {
	var reviews []models.Review
	query := rv.DB
	if campingID := c.Query("camping_id"); campingID != "" {
		query = query.Where("camping_id = ?", campingID)
	}
	if err := query.Find(&reviews).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list reviews"})
		return
	}
	c.JSON(http.StatusOK, reviews)
}

type UpdateReviewReq struct {
	Comment *string `json:"comment"`
	Rating  *int    `json:"rating"`
}

// PUT /review/:review_id
func (rv *ReviewController) Update(c *gin.Context) {
	review, ok := rv.findOwnedReview(c)
	if !ok {
		return
	}

	var req UpdateReviewReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Comment != nil {
		review.Comment = req.Comment
	}
	if req.Rating != nil {
		if *req.Rating < 1 || *req.Rating > 5 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "rating must be between 1 and 5"})
			return
		}
		review.Rating = *req.Rating
	}

	if err := rv.DB.Save(&review).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update review"})
		return
	}
	c.JSON(http.StatusOK, review)
}

// DELETE /review/:review_id
func (rv *ReviewController) Delete(c *gin.Context) {
	review, ok := rv.findOwnedReview(c)
	if !ok {
		return
	}
	if err := rv.DB.Delete(&review).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete review"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "review deleted"})
}

// GET /review/get-camping-rating/:camping_id/from-reviews
func (rv *ReviewController) CampingRating(c *gin.Context) {
	var camping models.Camping
	if err := rv.DB.First(&camping, "id = ?", c.Param("camping_id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "camping not found"})
		return
	}

	var row struct {
		Count int64
		Avg   *float64
	}
	err := rv.DB.Model(&models.Review{}).
		Select("COUNT(*) AS count, AVG(rating) AS avg").
		Where("camping_id = ?", camping.ID).
		Scan(&row).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not compute rating"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"camping_id":    camping.ID,
		"reviews_count": row.Count,
		"rating":        row.Avg,
	})
}

func (rv *ReviewController) findOwnedReview(c *gin.Context) (models.Review, bool) {
	user := c.MustGet(middleware.CtxUser).(models.User)

	var review models.Review
	if err := rv.DB.First(&review, "id = ?", c.Param("review_id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "review not found"})
		return models.Review{}, false
	}
	if user.RoleID != models.RoleAdmin && review.UserID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
		return models.Review{}, false
	}
	return review, true
}
