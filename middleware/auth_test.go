package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/campingchile/camping-server/config"
	"github.com/campingchile/camping-server/models"
	"github.com/campingchile/camping-server/utils"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:mw_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, config.Migrate(db))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, roleID uint) models.User {
	t.Helper()
	user := models.User{
		FirstName: "Guard",
		LastName:  "Test",
		Rut:       fmt.Sprintf("9%07d-0", roleID),
		Email:     fmt.Sprintf("guard-%d@example.com", roleID),
		Password:  "irrelevant-hash",
		RoleID:    roleID,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthJWTMissingCredentials(t *testing.T) {
	db := newTestDB(t)
	r := gin.New()
	r.GET("/ping", AuthJWT(db, testSecret), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthJWTInvalidToken(t *testing.T) {
	db := newTestDB(t)
	r := gin.New()
	r.GET("/ping", AuthJWT(db, testSecret), func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.AddCookie(&http.Cookie{Name: AccessCookie, Value: "not-a-jwt"})
	assert.Equal(t, http.StatusUnauthorized, serve(r, req).Code)

	// token signed with another secret
	token, err := utils.GenerateToken("other-secret", 1, models.RoleClient, time.Hour)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.AddCookie(&http.Cookie{Name: AccessCookie, Value: token})
	assert.Equal(t, http.StatusUnauthorized, serve(r, req).Code)
}

func TestAuthJWTCookieAndBearer(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, models.RoleClient)
	token, err := utils.GenerateToken(testSecret, user.ID, user.RoleID, time.Hour)
	require.NoError(t, err)

	r := gin.New()
	r.GET("/whoami", AuthJWT(db, testSecret), func(c *gin.Context) {
		u := c.MustGet(CtxUser).(models.User)
		c.JSON(http.StatusOK, gin.H{"id": u.ID})
	})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: AccessCookie, Value: token})
	w := serve(r, req)
	require.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = serve(r, req)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestAuthJWTUnknownUser(t *testing.T) {
	db := newTestDB(t)
	token, err := utils.GenerateToken(testSecret, 999, models.RoleClient, time.Hour)
	require.NoError(t, err)

	r := gin.New()
	r.GET("/ping", AuthJWT(db, testSecret), func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.AddCookie(&http.Cookie{Name: AccessCookie, Value: token})
	assert.Equal(t, http.StatusUnauthorized, serve(r, req).Code)
}

func TestRequireRolesBlocksSideEffect(t *testing.T) {
	db := newTestDB(t)
	client := seedUser(t, db, models.RoleClient)
	provider := seedUser(t, db, models.RoleProvider)

	executed := 0
	r := gin.New()
	r.POST("/provider-only", AuthJWT(db, testSecret), RequireRoles(models.RoleProvider), func(c *gin.Context) {
		executed++
		c.Status(http.StatusOK)
	})

	clientToken, err := utils.GenerateToken(testSecret, client.ID, client.RoleID, time.Hour)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/provider-only", nil)
	req.AddCookie(&http.Cookie{Name: AccessCookie, Value: clientToken})
	assert.Equal(t, http.StatusForbidden, serve(r, req).Code)
	assert.Zero(t, executed, "guarded handler must not run for a forbidden role")

	providerToken, err := utils.GenerateToken(testSecret, provider.ID, provider.RoleID, time.Hour)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodPost, "/provider-only", nil)
	req.AddCookie(&http.Cookie{Name: AccessCookie, Value: providerToken})
	assert.Equal(t, http.StatusOK, serve(r, req).Code)
	assert.Equal(t, 1, executed)
}

func TestRefreshExpiringReissuesCookie(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, models.RoleClient)
	cfg := config.Config{JWTSecret: testSecret, AccessTokenTTL: time.Hour}

	r := gin.New()
	r.GET("/ping", AuthJWT(db, testSecret), RefreshExpiring(cfg), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	// 5 minutes left: inside the refresh window
	shortToken, err := utils.GenerateToken(testSecret, user.ID, user.RoleID, 5*time.Minute)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.AddCookie(&http.Cookie{Name: AccessCookie, Value: shortToken})
	w := serve(r, req)
	require.Equal(t, http.StatusOK, w.Code)

	refreshed := false
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == AccessCookie && cookie.Value != "" && cookie.Value != shortToken {
			refreshed = true
		}
	}
	assert.True(t, refreshed, "a near-expiry token must be reissued")

	// a fresh token passes through untouched
	longToken, err := utils.GenerateToken(testSecret, user.ID, user.RoleID, time.Hour)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.AddCookie(&http.Cookie{Name: AccessCookie, Value: longToken})
	w = serve(r, req)
	require.Equal(t, http.StatusOK, w.Code)

	for _, cookie := range w.Result().Cookies() {
		assert.NotEqual(t, AccessCookie, cookie.Name, "no refresh expected for a fresh token")
	}
}
