package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v2"
)

type Config struct {
	// Database
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string

	// JWT
	JWTSecret        string
	JWTAccessExpiry  time.Duration
	JWTRefreshExpiry time.Duration

	// Admin
	AdminEmails string

	// Server
	Port        string
	CORSOrigins string
	PageSize    int

	// Images
	ImageStorage string
	MediaDir     string
	MediaURL     string
	AWSS3Bucket  string
	AWSS3Region  string
	AWSAccessKey string
	AWSSecretKey string

	// Observability
	SentryDSN        string
	AppEnv           string
	LogRetentionDays int
}

// Load reads the optional YAML file named by CONFIG_FILE (default config.yaml)
// and lets environment variables override every key.
func Load() *Config {
	file := loadFile(getEnv("CONFIG_FILE", "config.yaml"))
	get := func(key, fallback string) string {
		if val := os.Getenv(key); val != "" {
			return val
		}
		if val, ok := file[key]; ok && val != "" {
			return val
		}
		return fallback
	}

	return &Config{
		DBDriver:   get("DB_DRIVER", "postgres"),
		DBHost:     get("DB_HOST", "localhost"),
		DBPort:     get("DB_PORT", "5432"),
		DBUser:     get("DB_USER", "postgres"),
		DBPassword: get("DB_PASSWORD", ""),
		DBName:     get("DB_NAME", "foodgram"),
		DBSSLMode:  get("DB_SSLMODE", "disable"),
		SQLitePath: get("SQLITE_PATH", "foodgram.db"),

		JWTSecret:        get("JWT_SECRET", ""),
		JWTAccessExpiry:  parseDuration(get("JWT_ACCESS_EXPIRY", "24h"), 24*time.Hour),
		JWTRefreshExpiry: parseDuration(get("JWT_REFRESH_EXPIRY", "720h"), 720*time.Hour),

		AdminEmails: get("ADMIN_EMAILS", ""),

		Port:        get("PORT", "8080"),
		CORSOrigins: get("CORS_ORIGINS", "*"),
		PageSize:    parseInt(get("PAGE_SIZE", "6"), 6),

		ImageStorage: get("IMAGE_STORAGE", "local"),
		MediaDir:     get("MEDIA_DIR", "media"),
		MediaURL:     get("MEDIA_URL", "/media"),
		AWSS3Bucket:  get("AWS_S3_BUCKET", ""),
		AWSS3Region:  get("AWS_S3_REGION", ""),
		AWSAccessKey: get("AWS_ACCESS_KEY", ""),
		AWSSecretKey: get("AWS_SECRET_KEY", ""),

		SentryDSN:        get("SENTRY_DSN", ""),
		AppEnv:           get("APP_ENV", "development"),
		LogRetentionDays: parseInt(get("LOG_RETENTION_DAYS", "30"), 30),
	}
}

// DSN returns the connection string for the configured driver.
func (c *Config) DSN() string {
	if c.DBDriver == "sqlite" {
		return c.SQLitePath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	}
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

// IsAdminEmail reports whether email is listed in ADMIN_EMAILS (comma separated).
func (c *Config) IsAdminEmail(email string) bool {
	for _, admin := range strings.Split(c.AdminEmails, ",") {
		if admin = strings.TrimSpace(admin); admin != "" && strings.EqualFold(admin, email) {
			return true
		}
	}
	return false
}

func loadFile(path string) map[string]string {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	values := make(map[string]string)
	if err := yaml.Unmarshal(data, &values); err != nil {
		slog.Warn("ignoring unreadable config file", "path", path, "error", err)
		return nil
	}
	return values
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
