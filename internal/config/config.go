package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Host               string
	Port               string
	RequestTimeout     time.Duration
	MaxRequestBodySize int64

	// Persistence (FOOD_NUTRITION cache store)
	DBDriver string // "mysql" or "sqlite"
	DBDSN    string

	// External collaborators
	ProductAPIBaseURL   string
	ProductAPIKey       string
	NutritionAPIBaseURL string
	NutritionAPIKey     string
	VisionEndpoint      string
	VisionTimeout       time.Duration

	// Barcode detection bounds
	BarcodeMaxWidth  int
	BarcodeMaxHeight int
}

func (c *Config) ServerAddress() string {
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		Host:               getEnvOrDefault("HOST", "0.0.0.0"),
		Port:               getEnvOrDefault("PORT", "8080"),
		RequestTimeout:     parseDurationOrDefault("REQUEST_TIMEOUT", 30*time.Second),
		MaxRequestBodySize: parseIntOrDefault("MAX_REQUEST_BODY_SIZE", 10*1024*1024), // 10MB

		DBDriver: getEnvOrDefault("DB_DRIVER", "mysql"),
		DBDSN:    os.Getenv("DB_DSN"),

		ProductAPIBaseURL:   getEnvOrDefault("PRODUCT_API_BASE_URL", "https://openapi.foodsafetykorea.go.kr/api"),
		ProductAPIKey:       os.Getenv("PRODUCT_API_KEY"),
		NutritionAPIBaseURL: getEnvOrDefault("NUTRITION_API_BASE_URL", "https://apis.data.go.kr/1471000/FoodNtrCpntDbInfo02/getFoodNtrCpntDbInq02"),
		NutritionAPIKey:     os.Getenv("NUTRITION_API_KEY"),
		VisionEndpoint:      os.Getenv("VISION_ENDPOINT"),
		VisionTimeout:       parseDurationOrDefault("VISION_TIMEOUT", 15*time.Second),

		BarcodeMaxWidth:  int(parseIntOrDefault("BARCODE_MAX_WIDTH", 1920)),
		BarcodeMaxHeight: int(parseIntOrDefault("BARCODE_MAX_HEIGHT", 1920)),
	}

	// Validate port is numeric and in range
	p, err := strconv.Atoi(strings.TrimSpace(cfg.Port))
	if err != nil || p < 1 || p > 65535 {
		return nil, fmt.Errorf("invalid PORT: %q", cfg.Port)
	}
	if cfg.MaxRequestBodySize <= 0 {
		return nil, fmt.Errorf("MAX_REQUEST_BODY_SIZE must be > 0 (got %d)", cfg.MaxRequestBodySize)
	}
	if cfg.RequestTimeout <= 0 || cfg.VisionTimeout <= 0 {
		return nil, fmt.Errorf("timeouts must be > 0 (got request=%s, vision=%s)",
			cfg.RequestTimeout, cfg.VisionTimeout)
	}
	if cfg.DBDriver != "mysql" && cfg.DBDriver != "sqlite" {
		return nil, fmt.Errorf("unsupported DB_DRIVER: %q", cfg.DBDriver)
	}
	if cfg.BarcodeMaxWidth < 1 || cfg.BarcodeMaxHeight < 1 {
		return nil, fmt.Errorf("barcode bounds must be >= 1 (got %dx%d)",
			cfg.BarcodeMaxWidth, cfg.BarcodeMaxHeight)
	}
	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && duration > 0 {
			return duration
		}
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}
