package controllers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/campingchile/camping-server/config"
	"github.com/campingchile/camping-server/middleware"
	"github.com/campingchile/camping-server/models"
	"github.com/campingchile/camping-server/utils"
)

type CampingController struct {
	DB  *gorm.DB
	Cfg config.Config
}

func NewCampingController(db *gorm.DB, cfg config.Config) *CampingController {
	return &CampingController{DB: db, Cfg: cfg}
}

type CreateCampingReq struct {
	ProviderID    uint                   `json:"provider_id" binding:"required"`
	Name          string                 `json:"name" binding:"required"`
	CampingRut    string                 `json:"camping_rut" binding:"required"`
	RazonSocial   string                 `json:"razon_social" binding:"required"`
	Comuna        string                 `json:"comuna" binding:"required"`
	Region        string                 `json:"region" binding:"required"`
	Phone         string                 `json:"phone" binding:"required"`
	Address       string                 `json:"address" binding:"required"`
	Description   string                 `json:"description" binding:"required"`
	Landscape     *string                `json:"landscape"`
	Type          *string                `json:"type"`
	URLWeb        *string                `json:"url_web"`
	URLGoogleMaps *string                `json:"url_google_maps"`
	Rules         []string               `json:"rules"`
	MainImage     *string                `json:"main_image"`
	Images        []string               `json:"images"`
	Services      map[string]interface{} `json:"services"`
}

// POST /camping/create-camping-by-admin
func (cc *CampingController) Create(c *gin.Context) {
	var req CreateCampingReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var provider models.User
	if err := cc.DB.First(&provider, req.ProviderID).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "provider_id does not reference an existing user"})
		return
	}

	camping := models.Camping{
		ProviderID:    req.ProviderID,
		Name:          req.Name,
		CampingRut:    req.CampingRut,
		RazonSocial:   req.RazonSocial,
		Comuna:        req.Comuna,
		Region:        req.Region,
		Phone:         req.Phone,
		Address:       req.Address,
		Description:   &req.Description,
		Landscape:     req.Landscape,
		Type:          req.Type,
		URLWeb:        req.URLWeb,
		URLGoogleMaps: req.URLGoogleMaps,
		MainImage:     req.MainImage,
		Services:      datatypes.JSONMap(req.Services),
	}
	camping.Rules, _ = stringsToJSON(req.Rules)
	camping.Images, _ = stringsToJSON(req.Images)

	if err := cc.DB.Create(&camping).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create camping"})
		return
	}
	c.JSON(http.StatusCreated, camping)
}

// GET /camping/ and GET /camping/public-view-get-campings
func (cc *CampingController) List(c *gin.Context) {
	var campings []models.Camping
	if err := cc.DB.Find(&campings).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list campings"})
		return
	}
	c.JSON(http.StatusOK, campings)
}

// GET /camping/camping/:camping_id
func (cc *CampingController) Get(c *gin.Context) {
	camping, ok := cc.findCamping(c, c.Param("camping_id"))
	if !ok {
		return
	}
	c.JSON(http.StatusOK, camping)
}

// GET /camping/provider/:provider_id/campings
func (cc *CampingController) ListByProvider(c *gin.Context) {
	providerID, err := strconv.Atoi(c.Param("provider_id"))
	if err != nil || providerID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid provider id"})
		return
	}

	var campings []models.Camping
	if err := cc.DB.Where("provider_id = ?", providerID).Find(&campings).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list campings"})
		return
	}
	if len(campings) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "no campings found for this provider"})
		return
	}
	c.JSON(http.StatusOK, campings)
}

// GET /camping/provider/:provider_id/camping/:camping_id
func (cc *CampingController) GetForProvider(c *gin.Context) {
	var camping models.Camping
	err := cc.DB.Where("id = ? AND provider_id = ?", c.Param("camping_id"), c.Param("provider_id")).
		First(&camping).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "camping not found"})
		return
	}
	c.JSON(http.StatusOK, camping)
}

type UpdateCampingReq struct {
	Name          *string                `json:"name"`
	CampingRut    *string                `json:"camping_rut"`
	RazonSocial   *string                `json:"razon_social"`
	Comuna        *string                `json:"comuna"`
	Region        *string                `json:"region"`
	Phone         *string                `json:"phone"`
	Address       *string                `json:"address"`
	Description   *string                `json:"description"`
	Landscape     *string                `json:"landscape"`
	Type          *string                `json:"type"`
	URLWeb        *string                `json:"url_web"`
	URLGoogleMaps *string                `json:"url_google_maps"`
	Rules         []string               `json:"rules"`
	MainImage     *string                `json:"main_image"`
	Images        []string               `json:"images"`
	Services      map[string]interface{} `json:"services"`
}

// PUT /camping/provider/:provider_id/edit-camping/:camping_id
//
// Providers may only edit their own campings; admins may edit any.
func (cc *CampingController) Update(c *gin.Context) {
	user := c.MustGet(middleware.CtxUser).(models.User)

	var camping models.Camping
	err := cc.DB.Where("id = ? AND provider_id = ?", c.Param("camping_id"), c.Param("provider_id")).
		First(&camping).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "camping not found or doesn't belong to the provider"})
		return
	}
	if user.RoleID != models.RoleAdmin && camping.ProviderID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
		return
	}

	var req UpdateCampingReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	applyString := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	applyString(&camping.Name, req.Name)
	applyString(&camping.CampingRut, req.CampingRut)
	applyString(&camping.RazonSocial, req.RazonSocial)
	applyString(&camping.Comuna, req.Comuna)
	applyString(&camping.Region, req.Region)
	applyString(&camping.Phone, req.Phone)
	applyString(&camping.Address, req.Address)
	if req.Description != nil {
		camping.Description = req.Description
	}
	if req.Landscape != nil {
		camping.Landscape = req.Landscape
	}
	if req.Type != nil {
		camping.Type = req.Type
	}
	if req.URLWeb != nil {
		camping.URLWeb = req.URLWeb
	}
	if req.URLGoogleMaps != nil {
		camping.URLGoogleMaps = req.URLGoogleMaps
	}
	if req.MainImage != nil {
		camping.MainImage = req.MainImage
	}
	if req.Rules != nil {
		camping.Rules, _ = stringsToJSON(req.Rules)
	}
	if req.Images != nil {
		camping.Images, _ = stringsToJSON(req.Images)
	}
	if req.Services != nil {
		camping.Services = datatypes.JSONMap(req.Services)
	}

	if err := cc.DB.Save(&camping).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update camping"})
		return
	}
	c.JSON(http.StatusOK, camping)
}

// DELETE /camping/:camping_id
func (cc *CampingController) Delete(c *gin.Context) {
	camping, ok := cc.findCamping(c, c.Param("camping_id"))
	if !ok {
		return
	}
	if err := cc.DB.Delete(&camping).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete camping"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "camping deleted"})
}

type CampingSearchReq struct {
	Destination string `json:"destination"`
	NumPeople   int    `json:"num_people"`
	CheckIn     string `json:"check_in"`
	CheckOut    string `json:"check_out"`
	Type        string `json:"type"`
}

type CampingSearchResult struct {
	CampingID           uint     `json:"camping_id"`
	CampingName         string   `json:"camping_name"`
	Region              string   `json:"region"`
	Comuna              string   `json:"comuna"`
	MainImage           *string  `json:"main_image"`
	Description         *string  `json:"description"`
	ReviewsCount        int64    `json:"reviews_count"`
	Rating              *float64 `json:"rating"`
	AvailableSitesCount int      `json:"available_sites_count"`
}

// POST /camping/search
//
// Availability search: campings matching the destination, with the
// count of sites that fit the party and have no overlapping
// reservation. Campings with zero matching sites are excluded.
func (cc *CampingController) Search(c *gin.Context) {
	var req CampingSearchReq
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	checkIn, checkOut, ok := parseSearchRange(c, req.CheckIn, req.CheckOut)
	if !ok {
		return
	}

	query := cc.DB.Model(&models.Camping{}).Preload("Sites")
	if req.Destination != "" {
		pattern := "%" + strings.ToLower(req.Destination) + "%"
		query = query.Where("LOWER(comuna) LIKE ? OR LOWER(region) LIKE ?", pattern, pattern)
	}
	if req.Type != "" {
		query = query.Where("LOWER(type) LIKE ?", "%"+strings.ToLower(req.Type)+"%")
	}

	var campings []models.Camping
	if err := query.Find(&campings).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "camping search failed"})
		return
	}

	var siteIDs []uint
	for _, camping := range campings {
		for _, site := range camping.Sites {
			siteIDs = append(siteIDs, site.ID)
		}
	}

	busy := map[uint]bool{}
	if checkIn != nil {
		var err error
		busy, err = busySiteIDs(cc.DB, siteIDs, *checkIn, *checkOut)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "camping search failed"})
			return
		}
	}

	ratings := cc.campingRatings(campings)

	results := make([]CampingSearchResult, 0, len(campings))
	for _, camping := range campings {
		available := 0
		for _, site := range camping.Sites {
			if siteMatches(site, req.NumPeople, busy) {
				available++
			}
		}
		if available == 0 {
			continue
		}
		r := CampingSearchResult{
			CampingID:           camping.ID,
			CampingName:         camping.Name,
			Region:              camping.Region,
			Comuna:              camping.Comuna,
			MainImage:           camping.MainImage,
			Description:         camping.Description,
			AvailableSitesCount: available,
		}
		if agg, ok := ratings[camping.ID]; ok {
			r.ReviewsCount = agg.Count
			rating := agg.Avg
			r.Rating = &rating
		}
		results = append(results, r)
	}

	c.JSON(http.StatusOK, results)
}

// POST /camping/upload-image
func (cc *CampingController) UploadImage(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file received"})
		return
	}

	publicURL, err := utils.UploadCampingImage(cc.Cfg.SupabaseURL, cc.Cfg.SupabaseKey, fh, uuid.NewString())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "upload failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": publicURL})
}

type ratingAgg struct {
	Count int64
	Avg   float64
}

func (cc *CampingController) campingRatings(campings []models.Camping) map[uint]ratingAgg {
	ratings := make(map[uint]ratingAgg)
	if len(campings) == 0 {
		return ratings
	}
	ids := make([]uint, 0, len(campings))
	for _, camping := range campings {
		ids = append(ids, camping.ID)
	}

	var rows []struct {
		CampingID uint
		Count     int64
		Avg       float64
	}
	cc.DB.Model(&models.Review{}).
		Select("camping_id, COUNT(*) AS count, AVG(rating) AS avg").
		Where("camping_id IN ?", ids).
		Group("camping_id").
		Scan(&rows)
	for _, row := range rows {
		ratings[row.CampingID] = ratingAgg{Count: row.Count, Avg: row.Avg}
	}
	return ratings
}

func (cc *CampingController) findCamping(c *gin.Context, id string) (models.Camping, bool) {
	var camping models.Camping
	if err := cc.DB.First(&camping, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "camping not found"})
		return models.Camping{}, false
	}
	return camping, true
}

// parseSearchRange validates an optional [check_in, check_out) pair.
// Both dates must come together and in order; malformed input aborts
// with a 400.
func parseSearchRange(c *gin.Context, checkIn, checkOut string) (*time.Time, *time.Time, bool) {
	if checkIn == "" && checkOut == "" {
		return nil, nil, true
	}
	if checkIn == "" || checkOut == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "check_in and check_out must be provided together"})
		return nil, nil, false
	}
	start, err := parseDate(checkIn)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, nil, false
	}
	end, err := parseDate(checkOut)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, nil, false
	}
	if !end.After(start) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "check_out must be after check_in"})
		return nil, nil, false
	}
	return &start, &end, true
}

func stringsToJSON(values []string) (datatypes.JSON, error) {
	if values == nil {
		return nil, nil
	}
	b, err := json.Marshal(values)
	return datatypes.JSON(b), err
}
