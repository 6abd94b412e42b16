package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultDSN = "host=localhost user=postgres password=postgres dbname=drystore port=5432 sslmode=disable"

type Config struct {
	HTTPPort    string
	StoreDriver string // "postgres" or "memory"
	DatabaseDSN string
	JWTSecret   string
	CORSOrigins string
	SeedLayout  bool

	Log struct {
		Level  string
		Format string
	}

	Report struct {
		Prefix      string
		OrgLine     string
		RowsPerPage int
	}

	Logo struct {
		Driver     string // none|fs|s3|http
		Path       string // fs root, s3 key or http path
		S3Bucket   string
		S3Region   string
		S3Endpoint string
		URL        string
		Timeout    time.Duration
	}

	Session struct {
		Driver        string // memory|redis
		RedisAddr     string
		RedisPassword string
		RedisDB       int
	}

	History struct {
		Limit       int
		WindowDays  int
		RecentLimit int
	}
}

// Load reads the process environment, after an optional .env file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("[WARN] .env could not be read: %v", err)
	}

	cfg := &Config{
		HTTPPort:    getEnv("HTTP_PORT", "8080"),
		StoreDriver: strings.ToLower(getEnv("STORE_DRIVER", "postgres")),
		DatabaseDSN: getEnv("DATABASE_DSN", defaultDSN),
		JWTSecret:   getEnv("JWT_SECRET", ""),
		CORSOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
		SeedLayout:  getBool("SEED_LAYOUT", false),
	}

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	cfg.Report.Prefix = getEnv("REPORT_PREFIX", "DryStore")
	cfg.Report.OrgLine = getEnv("REPORT_ORG_LINE", "Konarak Food Court")
	cfg.Report.RowsPerPage = getInt("REPORT_ROWS_PER_PAGE", 30)

	cfg.Logo.Driver = strings.ToLower(getEnv("LOGO_DRIVER", "fs"))
	cfg.Logo.Path = getEnv("LOGO_PATH", "./assets/logo.png")
	cfg.Logo.S3Bucket = getEnv("LOGO_S3_BUCKET", "")
	cfg.Logo.S3Region = getEnv("LOGO_S3_REGION", "us-east-1")
	cfg.Logo.S3Endpoint = getEnv("LOGO_S3_ENDPOINT", "")
	cfg.Logo.URL = getEnv("LOGO_URL", "")
	cfg.Logo.Timeout = getDuration("LOGO_TIMEOUT", 2*time.Second)

	cfg.Session.Driver = strings.ToLower(getEnv("SESSION_DRIVER", "memory"))
	cfg.Session.RedisAddr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Session.RedisPassword = getEnv("REDIS_PASSWORD", "")
	cfg.Session.RedisDB = getInt("REDIS_DB", 0)

	cfg.History.Limit = getInt("HISTORY_LIMIT", 20)
	cfg.History.WindowDays = getInt("HISTORY_WINDOW_DAYS", 0)
	cfg.History.RecentLimit = getInt("RECENT_LIMIT", 200)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is not set")
	}
	if len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters")
	}
	switch c.StoreDriver {
	case "postgres", "memory":
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	switch c.Session.Driver {
	case "memory", "redis":
	default:
		return fmt.Errorf("unknown SESSION_DRIVER %q", c.Session.Driver)
	}
	switch c.Logo.Driver {
	case "none", "fs", "s3", "http":
	default:
		return fmt.Errorf("unknown LOGO_DRIVER %q", c.Logo.Driver)
	}
	if c.Logo.Driver == "s3" && c.Logo.S3Bucket == "" {
		return fmt.Errorf("LOGO_S3_BUCKET is required for the s3 logo driver")
	}
	if c.Report.RowsPerPage <= 0 {
		return fmt.Errorf("REPORT_ROWS_PER_PAGE must be positive")
	}

	if c.StoreDriver == "postgres" && c.DatabaseDSN == defaultDSN {
		log.Println("[WARN] DATABASE_DSN uses the default value, set your own Postgres connection for production.")
	}
	if c.CORSOrigins == "http://localhost:5173" {
		log.Println("[WARN] CORS_ALLOWED_ORIGINS uses the default value, set your own domain for production.")
	}
	return nil
}

// CORSOriginList splits the comma separated origin list.
func (c *Config) CORSOriginList() []string {
	parts := strings.Split(c.CORSOrigins, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("[WARN] %s=%q is not a number, using %d", key, v, def)
		return def
	}
	return n
}

func getBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("[WARN] %s=%q is not a boolean, using %t", key, v, def)
		return def
	}
	return b
}

func getDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("[WARN] %s=%q is not a duration, using %s", key, v, def)
		return def
	}
	return d
}
