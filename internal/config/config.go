package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type Config struct {
	Port                   string
	DatabaseURL            string  // empty runs on in-memory stores
	BaseURL                string  // Backend base URL
	FrontendURL            string  // Frontend base URL (for QR codes and short URLs)
	RedisURL               string  // empty keeps quota counters in process
	JWTSecret              string  // Secret key for JWT token signing
	JWTTTL                 int     // JWT token expiration time in hours
	RateLimitRPS           float64 // Rate limit for general API endpoints (requests per second)
	RateLimitBurst         int     // Burst size for rate limiting
	RateLimitAuthRPS       float64 // Rate limit for auth endpoints (stricter)
	RateLimitAuthBurst     int     // Burst size for auth endpoints
	RateLimitShortenRPS    float64 // Rate limit for URL shortening (stricter)
	RateLimitShortenBurst  int     // Burst size for URL shortening
	RateLimitRedirectRPS   float64
	RateLimitRedirectBurst int

	AnonRateLimit  int64         // anonymous creations allowed per window
	AnonRateWindow time.Duration // anonymous quota window

	ShortCodeLength int
	MaxCodeAttempts int

	ClickWorkers       int
	ClickQueueSize     int
	ClickRecordTimeout time.Duration

	// Proxies whose X-Forwarded-For is believed. Empty means the socket address is the client.
	TrustedProxies []string

	GeoIPDBPath string // optional GeoLite2-City.mmdb
	LogLevel    string
	GinMode     string
}

// Load reads configuration from the environment, after applying a .env file if present
func Load(logger *zap.Logger) *Config {
	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file found, using environment variables or defaults")
	}

	return &Config{
		Port:                   getEnv("PORT", "8080"),
		DatabaseURL:            getEnv("DATABASE_URL", ""),
		BaseURL:                getEnv("BASE_URL", "http://localhost:8080"),
		FrontendURL:            getEnv("FRONTEND_URL", ""),
		RedisURL:               getEnv("REDIS_URL", ""),
		JWTSecret:              getEnv("JWT_SECRET", ""),
		JWTTTL:                 getEnvInt("JWT_TTL_HOURS", 24),
		RateLimitRPS:           getEnvFloat("RATE_LIMIT_RPS", 10),
		RateLimitBurst:         getEnvInt("RATE_LIMIT_BURST", 20),
		RateLimitAuthRPS:       getEnvFloat("RATE_LIMIT_AUTH_RPS", 5),
		RateLimitAuthBurst:     getEnvInt("RATE_LIMIT_AUTH_BURST", 10),
		RateLimitShortenRPS:    getEnvFloat("RATE_LIMIT_SHORTEN_RPS", 2),
		RateLimitShortenBurst:  getEnvInt("RATE_LIMIT_SHORTEN_BURST", 5),
		RateLimitRedirectRPS:   getEnvFloat("RATE_LIMIT_REDIRECT_RPS", 30),
		RateLimitRedirectBurst: getEnvInt("RATE_LIMIT_REDIRECT_BURST", 60),
		AnonRateLimit:          int64(getEnvInt("ANON_RATE_LIMIT", 20)),
		AnonRateWindow:         getEnvDuration("ANON_RATE_WINDOW", 24*time.Hour),
		ShortCodeLength:        getEnvInt("SHORT_CODE_LENGTH", 7),
		MaxCodeAttempts:        getEnvInt("MAX_CODE_ATTEMPTS", 5),
		ClickWorkers:           getEnvInt("CLICK_WORKERS", 4),
		ClickQueueSize:         getEnvInt("CLICK_QUEUE_SIZE", 1024),
		ClickRecordTimeout:     getEnvDuration("CLICK_RECORD_TIMEOUT", 5*time.Second),
		TrustedProxies:         getEnvList("TRUSTED_PROXIES"),
		GeoIPDBPath:            getEnv("GEOIP_DB_PATH", ""),
		LogLevel:               getEnv("LOG_LEVEL", "info"),
		GinMode:                getEnv("GIN_MODE", "release"),
	}
}

// ShortLinkBase is the prefix of every short URL and QR payload. A frontend that
// routes /:shortCode itself takes precedence over the backend.
func (c *Config) ShortLinkBase() string {
	if c.FrontendURL != "" {
		return c.FrontendURL
	}
	return c.BaseURL
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go duration strings ("24h", "90s")
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return defaultValue
}

// getEnvList splits a comma-separated value, dropping blanks
func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
