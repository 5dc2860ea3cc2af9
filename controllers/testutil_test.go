package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/campingchile/camping-server/config"
	"github.com/campingchile/camping-server/middleware"
	"github.com/campingchile/camping-server/models"
	"github.com/campingchile/camping-server/utils"
)

const testSecret = "test-secret"

var testCfg = config.Config{
	JWTSecret:       testSecret,
	AccessTokenTTL:  time.Hour,
	RefreshTokenTTL: 24 * time.Hour,
}

var userSeq atomic.Uint64

func init() {
	gin.SetMode(gin.TestMode)
}

// newTestDB opens a private in-memory database per test. The pool is
// pinned to one connection because every sqlite :memory: connection is
// its own database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, config.Migrate(db))
	return db
}

func createUser(t *testing.T, db *gorm.DB, roleID uint) models.User {
	t.Helper()

	n := userSeq.Add(1)
	hash, err := utils.HashPassword("secret123")
	require.NoError(t, err)

	user := models.User{
		FirstName: "Test",
		LastName:  fmt.Sprintf("User%d", n),
		Rut:       fmt.Sprintf("1%07d-%d", n, n%10),
		Email:     fmt.Sprintf("user%d@example.com", n),
		Password:  hash,
		RoleID:    roleID,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func createCamping(t *testing.T, db *gorm.DB, providerID uint, comuna, region string, services datatypes.JSONMap) models.Camping {
	t.Helper()

	camping := models.Camping{
		ProviderID:  providerID,
		Name:        "Camping " + comuna,
		CampingRut:  "76000000-0",
		RazonSocial: "Camping " + comuna + " SpA",
		Comuna:      comuna,
		Region:      region,
		Phone:       "+56911111111",
		Address:     "Camino s/n",
		Services:    services,
	}
	require.NoError(t, db.Create(&camping).Error)
	return camping
}

func createSite(t *testing.T, db *gorm.DB, campingID uint, capacity int, price float64, status string) models.Site {
	t.Helper()

	site := models.Site{
		Name:        fmt.Sprintf("Site %d", userSeq.Add(1)),
		CampingID:   campingID,
		Status:      status,
		MaxOfPeople: capacity,
		Price:       price,
	}
	require.NoError(t, db.Create(&site).Error)
	return site
}

func createReservation(t *testing.T, db *gorm.DB, userID, siteID uint, start, end string, total float64) models.Reservation {
	t.Helper()

	reservation := models.Reservation{
		UserID:           userID,
		SiteID:           siteID,
		StartDate:        date(t, start),
		EndDate:          date(t, end),
		NumberOfPeople:   2,
		TotalAmount:      total,
		ConfirmationCode: fmt.Sprintf("code-%d", userSeq.Add(1)),
	}
	require.NoError(t, db.Create(&reservation).Error)
	return reservation
}

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(dateLayout, s)
	require.NoError(t, err)
	return d
}

func accessCookie(t *testing.T, user models.User) *http.Cookie {
	t.Helper()
	token, err := utils.GenerateToken(testSecret, user.ID, user.RoleID, time.Hour)
	require.NoError(t, err)
	return &http.Cookie{Name: middleware.AccessCookie, Value: token}
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}
