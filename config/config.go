// config/config.go
package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port             string
	DatabaseURL      string
	StoreDriver      string // "postgres" or "memory"
	GameServiceToken string
	AllowedOrigins   string
	RoomPollInterval time.Duration
	RoomTTL          time.Duration
	JanitorInterval  time.Duration
	CatalogPath      string
	R2               R2Config
}

type R2Config struct {
	AccountID       string
	AccessKeyID     string
	AccessKeySecret string
	Bucket          string
	CDNBaseURL      string
}

// Enabled reports whether enough settings are present to talk to R2.
func (c R2Config) Enabled() bool {
	return c.AccountID != "" && c.AccessKeyID != "" && c.AccessKeySecret != "" && c.Bucket != ""
}

// Load reads .env (if present) and the process environment.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	cfg := Config{
		Port:             getenv("PORT", "5200"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		StoreDriver:      strings.ToLower(getenv("STORE_DRIVER", "postgres")),
		GameServiceToken: os.Getenv("GAME_SERVICE_TOKEN"),
		AllowedOrigins:   getenv("ALLOWED_ORIGINS", "http://localhost:3000"),
		RoomPollInterval: duration("ROOM_POLL_INTERVAL", 500*time.Millisecond),
		RoomTTL:          duration("ROOM_TTL", 2*time.Hour),
		JanitorInterval:  duration("JANITOR_INTERVAL", 10*time.Minute),
		CatalogPath:      os.Getenv("CATALOG_PATH"),
		R2: R2Config{
			AccountID:       os.Getenv("CLOUDFLARE_ACCOUNT_ID"),
			AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
			AccessKeySecret: os.Getenv("R2_ACCESS_KEY_SECRET"),
			Bucket:          os.Getenv("R2_BUCKET_NAME"),
			CDNBaseURL:      os.Getenv("CDN_BASE_URL"),
		},
	}
	if cfg.StoreDriver == "postgres" && cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL environment variable not set (use STORE_DRIVER=memory for a local run)")
	}
	return cfg
}

// Origins splits ALLOWED_ORIGINS and trims each entry.
func (c Config) Origins() string {
	parts := strings.Split(c.AllowedOrigins, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return strings.Join(parts, ",")
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func duration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Printf("⚠️  Invalid %s=%q, using %s", key, v, fallback)
		return fallback
	}
	return d
}
