package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/campingchile/camping-server/models"
)

func newSearchRouter(db *gorm.DB) *gin.Engine {
	r := gin.New()
	cc := NewCampingController(db, testCfg)
	sc := NewSiteController(db)
	r.POST("/camping/search", cc.Search)
	r.GET("/site/search", sc.Search)
	return r
}

// Two campings: Pucon with a big and a small site, Villarrica with one
// mid-size site. One reservation blocks the big Pucon site in early
// February.
func searchFixture(t *testing.T, db *gorm.DB) {
	provider := createUser(t, db, models.RoleProvider)
	client := createUser(t, db, models.RoleClient)

	pucon := createCamping(t, db, provider.ID, "Pucon", "Araucania",
		datatypes.JSONMap{"wifi": 2000.0})
	big := createSite(t, db, pucon.ID, 6, 15000, models.SiteAvailable)
	createSite(t, db, pucon.ID, 2, 8000, models.SiteAvailable)

	villarrica := createCamping(t, db, provider.ID, "Villarrica", "Araucania", nil)
	createSite(t, db, villarrica.ID, 4, 12000, models.SiteAvailable)

	createReservation(t, db, client.ID, big.ID, "2023-02-01", "2023-02-05", 60000)
}

func searchResults(t *testing.T, w *httptest.ResponseRecorder) []CampingSearchResult {
	t.Helper()
	var results []CampingSearchResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &results))
	return results
}

func countFor(results []CampingSearchResult, name string) (int, bool) {
	for _, r := range results {
		if r.CampingName == name {
			return r.AvailableSitesCount, true
		}
	}
	return 0, false
}

func TestSearchNoFiltersReturnsEverything(t *testing.T) {
	db := newTestDB(t)
	searchFixture(t, db)
	r := newSearchRouter(db)

	w := doJSON(t, r, http.MethodPost, "/camping/search", gin.H{})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	results := searchResults(t, w)
	require.Len(t, results, 2)

	n, ok := countFor(results, "Camping Pucon")
	require.True(t, ok)
	assert.Equal(t, 2, n)

	n, ok = countFor(results, "Camping Villarrica")
	require.True(t, ok)
	assert.Equal(t, 1, n)
}

func TestSearchDestinationCaseInsensitiveSubstring(t *testing.T) {
	db := newTestDB(t)
	searchFixture(t, db)
	r := newSearchRouter(db)

	w := doJSON(t, r, http.MethodPost, "/camping/search", gin.H{"destination": "puCON"})
	require.Equal(t, http.StatusOK, w.Code)

	results := searchResults(t, w)
	require.Len(t, results, 1)
	assert.Equal(t, "Camping Pucon", results[0].CampingName)

	// region matches too
	w = doJSON(t, r, http.MethodPost, "/camping/search", gin.H{"destination": "araucania"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, searchResults(t, w), 2)
}

func TestSearchPartySizeNarrows(t *testing.T) {
	db := newTestDB(t)
	searchFixture(t, db)
	r := newSearchRouter(db)

	w := doJSON(t, r, http.MethodPost, "/camping/search", gin.H{"num_people": 4})
	require.Equal(t, http.StatusOK, w.Code)

	results := searchResults(t, w)
	require.Len(t, results, 2)

	// the 2-person Pucon site no longer counts
	n, _ := countFor(results, "Camping Pucon")
	assert.Equal(t, 1, n)
	n, _ = countFor(results, "Camping Villarrica")
	assert.Equal(t, 1, n)

	// nobody fits 8; campings with zero matching sites disappear
	w = doJSON(t, r, http.MethodPost, "/camping/search", gin.H{"num_people": 8})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, searchResults(t, w))
}

func TestSearchDateRangeExcludesBookedSites(t *testing.T) {
	db := newTestDB(t)
	searchFixture(t, db)
	r := newSearchRouter(db)

	// overlapping the 02-01..02-05 booking: only the small site remains
	w := doJSON(t, r, http.MethodPost, "/camping/search", gin.H{
		"check_in":  "2023-02-03",
		"check_out": "2023-02-06",
	})
	require.Equal(t, http.StatusOK, w.Code)

	results := searchResults(t, w)
	n, ok := countFor(results, "Camping Pucon")
	require.True(t, ok)
	assert.Equal(t, 1, n)

	// a window touching the booking's check-out does not conflict
	w = doJSON(t, r, http.MethodPost, "/camping/search", gin.H{
		"check_in":  "2023-02-05",
		"check_out": "2023-02-08",
	})
	require.Equal(t, http.StatusOK, w.Code)

	results = searchResults(t, w)
	n, ok = countFor(results, "Camping Pucon")
	require.True(t, ok)
	assert.Equal(t, 2, n)
}

func TestSearchUnavailableSitesNeverCount(t *testing.T) {
	db := newTestDB(t)
	provider := createUser(t, db, models.RoleProvider)
	camping := createCamping(t, db, provider.ID, "Frutillar", "Los Lagos", nil)
	createSite(t, db, camping.ID, 4, 9000, models.SiteUnavailable)
	r := newSearchRouter(db)

	w := doJSON(t, r, http.MethodPost, "/camping/search", gin.H{})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, searchResults(t, w))
}

func TestSearchMalformedDates(t *testing.T) {
	db := newTestDB(t)
	searchFixture(t, db)
	r := newSearchRouter(db)

	w := doJSON(t, r, http.MethodPost, "/camping/search", gin.H{
		"check_in":  "03-02-2023",
		"check_out": "2023-02-06",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// half a range is malformed too
	w = doJSON(t, r, http.MethodPost, "/camping/search", gin.H{"check_in": "2023-02-03"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// inverted range
	w = doJSON(t, r, http.MethodPost, "/camping/search", gin.H{
		"check_in":  "2023-02-06",
		"check_out": "2023-02-03",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSiteSearchFlatResults(t *testing.T) {
	db := newTestDB(t)
	searchFixture(t, db)
	r := newSearchRouter(db)

	w := doJSON(t, r, http.MethodGet, "/site/search?destination=pucon&num_people=2", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var results []SiteSearchResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &results))
	assert.Len(t, results, 2)
	for _, site := range results {
		assert.Equal(t, "Camping Pucon", site.CampingName)
		assert.GreaterOrEqual(t, site.MaxOfPeople, 2)
	}

	// booked window drops the big site from the flat list as well
	w = doJSON(t, r, http.MethodGet, "/site/search?destination=pucon&check_in=2023-02-03&check_out=2023-02-06", nil)
	require.Equal(t, http.StatusOK, w.Code)
	results = nil
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &results))
	assert.Len(t, results, 1)
}

func TestSiteSearchBadNumPeople(t *testing.T) {
	db := newTestDB(t)
	r := newSearchRouter(db)

	w := doJSON(t, r, http.MethodGet, "/site/search?num_people=zero", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
