package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config collects every environment setting the server reads, loaded once at
// startup.
type Config struct {
	Port          string
	Env           string
	MongoURI      string
	DatabaseName  string
	JWTSecret     string
	AdminEmail    string
	AdminPassword string
	CloudinaryURL string
	CORSOrigins   string
}

// Load reads .env (if present) and the process environment. Missing required
// settings are reported together so a misconfigured deployment fails once,
// not one variable at a time.
func Load() (*Config, error) {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := &Config{
		Port:          getenv("PORT", "4000"),
		Env:           getenv("ENV", "development"),
		MongoURI:      os.Getenv("MONGODB_URI"),
		DatabaseName:  getenv("DATABASE_NAME", "booking"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		CloudinaryURL: os.Getenv("CLOUDINARY_URL"),
		CORSOrigins:   getenv("CORS_ORIGINS", "http://localhost:5173,http://localhost:5174"),
	}

	var missing []string
	if cfg.MongoURI == "" {
		missing = append(missing, "MONGODB_URI")
	}
	if cfg.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if cfg.AdminEmail == "" {
		missing = append(missing, "ADMIN_EMAIL")
	}
	if cfg.AdminPassword == "" {
		missing = append(missing, "ADMIN_PASSWORD")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	return cfg, nil
}

// IsDev reports whether the server runs in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
