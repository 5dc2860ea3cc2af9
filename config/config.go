package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/campingchile/camping-server/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type Config struct {
	Port string

	// DBDriver is "postgres" or "sqlite". The sqlite path exists so the
	// server can run against a local file the way the early revisions did.
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	SQLitePath string

	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	CookieSecure    bool

	FrontendOrigin string

	SupabaseURL    string
	SupabaseKey    string
	GoogleClientID string
}

func Load() Config {
	return Config{
		Port:            getenv("PORT", "3001"),
		DBDriver:        getenv("DB_DRIVER", "postgres"),
		DBHost:          getenv("DB_HOST", "localhost"),
		DBPort:          getenv("DB_PORT", "5432"),
		DBUser:          getenv("DB_USER", "postgres"),
		DBPassword:      os.Getenv("DB_PASSWORD"),
		DBName:          getenv("DB_NAME", "camping"),
		SQLitePath:      getenv("SQLITE_PATH", "camping.db"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		AccessTokenTTL:  getenvDuration("ACCESS_TOKEN_TTL", time.Hour),
		RefreshTokenTTL: getenvDuration("REFRESH_TOKEN_TTL", 30*24*time.Hour),
		CookieSecure:    getenvBool("COOKIE_SECURE", false),
		FrontendOrigin:  getenv("FRONTEND_ORIGIN", "http://localhost:3000"),
		SupabaseURL:     os.Getenv("SUPABASE_URL"),
		SupabaseKey:     os.Getenv("SUPABASE_KEY"),
		GoogleClientID:  os.Getenv("GOOGLE_CLIENT_ID"),
	}
}

// ConnectDB opens the configured database, migrates the schema and seeds
// the fixed roles. The handle is returned, not stored in a global, so
// handlers receive it explicitly.
func ConnectDB(cfg Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "sqlite":
		dialector = sqlite.Open(cfg.SQLitePath)
	default:
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=America/Santiago",
			cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort)
		dialector = postgres.Open(dsn)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Role{},
		&models.User{},
		&models.Camping{},
		&models.Site{},
		&models.Reservation{},
		&models.Review{},
	)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return SeedRoles(db)
}

// SeedRoles inserts the three fixed roles if they are missing.
func SeedRoles(db *gorm.DB) error {
	roles := []models.Role{
		{ID: models.RoleAdmin, Name: "admin"},
		{ID: models.RoleProvider, Name: "provider"},
		{ID: models.RoleClient, Name: "client"},
	}
	for _, r := range roles {
		var count int64
		db.Model(&models.Role{}).Where("id = ?", r.ID).Count(&count)
		if count > 0 {
			continue
		}
		if err := db.Create(&r).Error; err != nil {
			return fmt.Errorf("seed role %q: %w", r.Name, err)
		}
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getenvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
