package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/campingchile/camping-server/middleware"
	"github.com/campingchile/camping-server/models"
)

type SiteController struct {
	DB *gorm.DB
}

func NewSiteController(db *gorm.DB) *SiteController {
	return &SiteController{DB: db}
}

type CreateSiteReq struct {
	Name         string   `json:"name" binding:"required"`
	CampingID    uint     `json:"camping_id" binding:"required"`
	Status       string   `json:"status"`
	MaxOfPeople  int      `json:"max_of_people" binding:"required,gt=0"`
	Price        float64  `json:"price" binding:"gte=0"`
	Facilities   []string `json:"facilities"`
	Dimensions   []string `json:"dimensions"`
	Review       *string  `json:"review"`
	URLMapSite   *string  `json:"url_map_site"`
	URLPhotoSite *string  `json:"url_photo_site"`
}

// POST /site/
//
// Providers may only add sites to their own campings.
func (sc *SiteController) Create(c *gin.Context) {
	user := c.MustGet(middleware.CtxUser).(models.User)

	var req CreateSiteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var camping models.Camping
	if err := sc.DB.First(&camping, req.CampingID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "camping not found"})
		return
	}
	if user.RoleID != models.RoleAdmin && camping.ProviderID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
		return
	}

	status := req.Status
	if status == "" {
		status = models.SiteAvailable
	}
	if status != models.SiteAvailable && status != models.SiteUnavailable {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status must be available or unavailable"})
		return
	}

	site := models.Site{
		Name:         req.Name,
		CampingID:    req.CampingID,
		Status:       status,
		MaxOfPeople:  req.MaxOfPeople,
		Price:        req.Price,
		Review:       req.Review,
		URLMapSite:   req.URLMapSite,
		URLPhotoSite: req.URLPhotoSite,
	}
	site.Facilities, _ = stringsToJSON(req.Facilities)
	site.Dimensions, _ = stringsToJSON(req.Dimensions)

	if err := sc.DB.Create(&site).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create site"})
		return
	}
	c.JSON(http.StatusCreated, site)
}

// GET /site/camping/:camping_id/sites
func (sc *SiteController) ListByCamping(c *gin.Context) {
	var sites []models.Site
	if err := sc.DB.Where("camping_id = ?", c.Param("camping_id")).Find(&sites).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list sites"})
		return
	}
	c.JSON(http.StatusOK, sites)
}

// GET /site/:site_id
func (sc *SiteController) Get(c *gin.Context) {
	var site models.Site
	if err := sc.DB.First(&site, "id = ?", c.Param("site_id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "site not found"})
		return
	}
	c.JSON(http.StatusOK, site)
}

type UpdateSiteReq struct {
	Name         *string  `json:"name"`
	Status       *string  `json:"status"`
	MaxOfPeople  *int     `json:"max_of_people"`
	Price        *float64 `json:"price"`
	Facilities   []string `json:"facilities"`
	Dimensions   []string `json:"dimensions"`
	Review       *string  `json:"review"`
	URLMapSite   *string  `json:"url_map_site"`
	URLPhotoSite *string  `json:"url_photo_site"`
}

// PUT /site/:site_id
func (sc *SiteController) Update(c *gin.Context) {
	site, _, ok := sc.findOwnedSite(c)
	if !ok {
		return
	}

	var req UpdateSiteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Name != nil {
		site.Name = *req.Name
	}
	if req.Status != nil {
		if *req.Status != models.SiteAvailable && *req.Status != models.SiteUnavailable {
			c.JSON(http.StatusBadRequest, gin.H{"error": "status must be available or unavailable"})
			return
		}
		site.Status = *req.Status
	}
	if req.MaxOfPeople != nil {
		if *req.MaxOfPeople <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "max_of_people must be greater than zero"})
			return
		}
		site.MaxOfPeople = *req.MaxOfPeople
	}
	if req.Price != nil {
		if *req.Price < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "price must not be negative"})
			return
		}
		site.Price = *req.Price
	}
	if req.Facilities != nil {
		site.Facilities, _ = stringsToJSON(req.Facilities)
	}
	if req.Dimensions != nil {
		site.Dimensions, _ = stringsToJSON(req.Dimensions)
	}
	if req.Review != nil {
		site.Review = req.Review
	}
	if req.URLMapSite != nil {
		site.URLMapSite = req.URLMapSite
	}
	if req.URLPhotoSite != nil {
		site.URLPhotoSite = req.URLPhotoSite
	}

	if err := sc.DB.Save(&site).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update site"})
		return
	}
	c.JSON(http.StatusOK, site)
}

// DELETE /site/:site_id
func (sc *SiteController) Delete(c *gin.Context) {
	site, _, ok := sc.findOwnedSite(c)
	if !ok {
		return
	}
	if err := sc.DB.Delete(&site).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete site"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "site deleted"})
}

type SiteSearchResult struct {
	models.Site
	CampingName string `json:"camping_name"`
	Comuna      string `json:"comuna"`
	Region      string `json:"region"`
}

// GET /site/search
//
// Site-level availability search; same filters as the camping search
// plus the site type, returned flat instead of grouped.
func (sc *SiteController) Search(c *gin.Context) {
	req := CampingSearchReq{
		Destination: c.Query("destination"),
		CheckIn:     c.Query("check_in"),
		CheckOut:    c.Query("check_out"),
		Type:        c.Query("type"),
	}
	if numPeople := c.Query("num_people"); numPeople != "" {
		n, err := atoiPositive(numPeople)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "num_people must be a positive integer"})
			return
		}
		req.NumPeople = n
	}

	checkIn, checkOut, ok := parseSearchRange(c, req.CheckIn, req.CheckOut)
	if !ok {
		return
	}

	query := sc.DB.Model(&models.Site{}).Preload("Camping").
		Joins("JOIN camping ON camping.id = site.camping_id").
		Where("site.status = ?", models.SiteAvailable)
	if req.Destination != "" {
		pattern := "%" + strings.ToLower(req.Destination) + "%"
		query = query.Where("LOWER(camping.comuna) LIKE ? OR LOWER(camping.region) LIKE ?", pattern, pattern)
	}
	if req.Type != "" {
		query = query.Where("LOWER(camping.type) LIKE ?", "%"+strings.ToLower(req.Type)+"%")
	}
	if req.NumPeople > 0 {
		query = query.Where("site.max_of_people >= ?", req.NumPeople)
	}

	var sites []models.Site
	if err := query.Find(&sites).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "site search failed"})
		return
	}

	busy := map[uint]bool{}
	if checkIn != nil {
		ids := make([]uint, 0, len(sites))
		for _, site := range sites {
			ids = append(ids, site.ID)
		}
		var err error
		busy, err = busySiteIDs(sc.DB, ids, *checkIn, *checkOut)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "site search failed"})
			return
		}
	}

	results := make([]SiteSearchResult, 0, len(sites))
	for _, site := range sites {
		if busy[site.ID] {
			continue
		}
		r := SiteSearchResult{Site: site}
		if site.Camping != nil {
			r.CampingName = site.Camping.Name
			r.Comuna = site.Camping.Comuna
			r.Region = site.Camping.Region
		}
		results = append(results, r)
	}

	c.JSON(http.StatusOK, results)
}

// findOwnedSite loads the site plus owning camping and enforces that
// the caller is the camping's provider or an admin.
func (sc *SiteController) findOwnedSite(c *gin.Context) (models.Site, models.Camping, bool) {
	user := c.MustGet(middleware.CtxUser).(models.User)

	var site models.Site
	if err := sc.DB.Preload("Camping").First(&site, "id = ?", c.Param("site_id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "site not found"})
		return models.Site{}, models.Camping{}, false
	}
	if site.Camping == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "site has no camping"})
		return models.Site{}, models.Camping{}, false
	}
	if user.RoleID != models.RoleAdmin && site.Camping.ProviderID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
		return models.Site{}, models.Camping{}, false
	}
	return site, *site.Camping, true
}
