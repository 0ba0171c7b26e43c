package config

import (
	"os"
	"strconv"
	"strings"
)

const minSessionSecretLength = 32

// Config holds runtime configuration loaded from environment variables.
type Config struct {
	DatabaseURL string
	Port        string
	CorsOrigins []string

	SessionSecret     string
	SessionCookieName string
	SessionTTLSeconds int64
	CookieSecure      bool

	StorageDriver    string
	MediaStoragePath string
	MediaPublicURL   string
	S3               S3Config
	OSS              OSSConfig
	UploadMaxBytes   int64
	ImageMaxDim      int

	NewsAPIKey     string
	NewsAPIBaseURL string

	AdminSeedUsername string
	AdminSeedPassword string

	NewsSlideSeconds    int
	EventSlideSeconds   int
	PosterScrollSeconds int

	LogDir           string
	LogRetentionDays int
	LogLevel         string
}

type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	PublicURL string
	UseSSL    bool
}

type OSSConfig struct {
	Endpoint        string
	AccessKeyID     string
	AccessKeySecret string
	Bucket          string
	PublicURL       string
}

func Load() Config {
	secret := mustEnv("SESSION_SECRET")
	if len(secret) < minSessionSecretLength {
		panic("SESSION_SECRET must be at least 32 characters long")
	}
	return Config{
		DatabaseURL:       envOr("DATABASE_URL", ""),
		Port:              envOr("PORT", "8080"),
		CorsOrigins:       parseCSV(envOr("CORS_ORIGINS", "")),
		SessionSecret:     secret,
		SessionCookieName: envOr("SESSION_COOKIE_NAME", "infogrid_admin_session"),
		SessionTTLSeconds: int64(envOrInt("SESSION_TTL_SECONDS", 60*60*8)),
		CookieSecure:      envOrBool("COOKIE_SECURE", false),
		StorageDriver:     strings.ToLower(envOr("STORAGE_DRIVER", "local")),
		MediaStoragePath:  envOr("MEDIA_STORAGE_PATH", "storage/media"),
		MediaPublicURL:    envOr("MEDIA_PUBLIC_URL", "/media"),
		S3: S3Config{
			Endpoint:  envOr("S3_ENDPOINT", ""),
			AccessKey: envOr("S3_ACCESS_KEY", ""),
			SecretKey: envOr("S3_SECRET_KEY", ""),
			Bucket:    envOr("S3_BUCKET", ""),
			Region:    envOr("S3_REGION", "auto"),
			PublicURL: envOr("S3_PUBLIC_URL", ""),
			UseSSL:    envOrBool("S3_USE_SSL", true),
		},
		OSS: OSSConfig{
			Endpoint:        envOr("OSS_ENDPOINT", ""),
			AccessKeyID:     envOr("OSS_ACCESS_KEY_ID", ""),
			AccessKeySecret: envOr("OSS_ACCESS_KEY_SECRET", ""),
			Bucket:          envOr("OSS_BUCKET", ""),
			PublicURL:       envOr("OSS_PUBLIC_URL", ""),
		},
		UploadMaxBytes:      int64(envOrInt("UPLOAD_MAX_BYTES", 10<<20)),
		ImageMaxDim:         envOrInt("IMAGE_MAX_DIMENSION", 1920),
		NewsAPIKey:          envOr("NEWSAPI_KEY", ""),
		NewsAPIBaseURL:      envOr("NEWSAPI_BASE_URL", "https://newsapi.org/v2"),
		AdminSeedUsername:   strings.ToLower(envOr("ADMIN_SEED_USERNAME", "administrator")),
		AdminSeedPassword:   envOr("ADMIN_SEED_PASSWORD", ""),
		NewsSlideSeconds:    envOrInt("NEWS_SLIDE_SECONDS", 8),
		EventSlideSeconds:   envOrInt("EVENT_SLIDE_SECONDS", 10),
		PosterScrollSeconds: envOrInt("POSTER_SCROLL_SECONDS", 30),
		LogDir:              envOr("LOG_DIR", "storage/logs"),
		LogRetentionDays:    envOrInt("LOG_RETENTION_DAYS", 7),
		LogLevel:            envOr("LOG_LEVEL", "info"),
	}
}

func mustEnv(key string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		panic("missing env var: " + key)
	}
	return value
}

func envOr(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func envOrInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrBool(key string, fallback bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func parseCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		value := strings.TrimSpace(part)
		if value != "" {
			items = append(items, value)
		}
	}
	return items
}
