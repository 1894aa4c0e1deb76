package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the settings for the document store backend.
type Config struct {
	DatabaseURL     string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnectRetries  int

	HTTPAddr       string
	JWTSecret      string
	AllowedOrigins []string

	RedisURI string
	CacheTTL time.Duration

	LogLevel string
}

// ClientConfig holds the settings for the terminal client.
type ClientConfig struct {
	ServerURL string
	APIKey    string
	Origin    string
	LogLevel  string
}

func Load() Config {
	return Config{
		DatabaseURL:     getenv("DATABASE_URL", "postgres://localhost:5432/naskahpad?sslmode=disable"),
		MaxOpenConns:    getenvInt("DB_MAX_OPEN", 20),
		MaxIdleConns:    getenvInt("DB_MAX_IDLE", 10),
		ConnMaxLifetime: getenvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		ConnectRetries:  getenvInt("DB_CONNECT_RETRIES", 5),
		HTTPAddr:        getenv("HTTP_ADDR", ":8080"),
		JWTSecret:       strings.TrimSpace(os.Getenv("API_JWT_SECRET")),
		AllowedOrigins:  parseList(getenv("ALLOWED_ORIGINS", "http://localhost:5173")),
		RedisURI:        strings.TrimSpace(os.Getenv("REDIS_URI")),
		CacheTTL:        getenvDuration("CACHE_TTL", 5*time.Minute),
		LogLevel:        getenv("LOG_LEVEL", "info"),
	}
}

func LoadClient() ClientConfig {
	serverURL := getenv("NASKAH_URL", "http://localhost:8080")
	return ClientConfig{
		ServerURL: serverURL,
		APIKey:    strings.TrimSpace(os.Getenv("NASKAH_KEY")),
		Origin:    getenv("NASKAH_ORIGIN", serverURL),
		LogLevel:  getenv("LOG_LEVEL", "warn"),
	}
}

func getenv(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func getenvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getenvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func parseList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
