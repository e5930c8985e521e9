package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/joho/godotenv"

	"github.com/jengzang/venue-risk-backend-go/internal/analysis"
	"github.com/jengzang/venue-risk-backend-go/internal/analysis/risk"
	"github.com/jengzang/venue-risk-backend-go/internal/models"
)

// Config holds the service configuration
type Config struct {
	Port      string
	DBPath    string
	LogLevel  string
	LogFormat string // text or json

	CellSizeKm      float64
	DefaultRadiusKm float64
	HotspotSigma    float64
	HotspotBudget   time.Duration
	RiskWeights     risk.Weights
	TrendBucket     models.BucketWidth
	Workers         int

	RefreshInterval time.Duration // 0 disables periodic refresh
	RateLimit       int           // requests per minute per client
}

// Load reads configuration from the environment. A .env file in the
// working directory is applied first when present. Malformed values are
// logged and replaced by their defaults.
func Load() *Config {
	if err := godotenv.Load(); err == nil {
		log.Info("Loaded environment from .env")
	}

	cfg := &Config{
		Port:      getEnv("PORT", ":8080"),
		DBPath:    getEnv("DB_PATH", "./data/venue_risk.db"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		CellSizeKm:      getFloatEnv("CELL_SIZE_KM", 10),
		DefaultRadiusKm: getFloatEnv("DEFAULT_RADIUS_KM", 50),
		HotspotSigma:    getFloatEnv("HOTSPOT_SIGMA", 1.5),
		HotspotBudget:   getDurationEnv("HOTSPOT_BUDGET", 5*time.Second),
		TrendBucket:     models.BucketMonthly,
		RiskWeights:     risk.DefaultWeights(),
		Workers:         getIntEnv("WORKERS", 4),

		RefreshInterval: getDurationEnv("REFRESH_INTERVAL", 0),
		RateLimit:       getIntEnv("RATE_LIMIT", 120),
	}

	if !strings.Contains(cfg.Port, ":") {
		cfg.Port = ":" + cfg.Port
	}

	if v := os.Getenv("RISK_WEIGHTS"); v != "" {
		w, err := risk.ParseWeights(v)
		if err != nil {
			log.WithError(err).Warn("Ignoring RISK_WEIGHTS")
		} else {
			cfg.RiskWeights = w
		}
	}

	if v := os.Getenv("TREND_BUCKET"); v != "" {
		w, err := models.ParseBucketWidth(strings.ToLower(v))
		if err != nil {
			log.WithError(err).Warn("Ignoring TREND_BUCKET")
		} else {
			cfg.TrendBucket = w
		}
	}

	return cfg
}

// Engine returns the analysis engine settings
func (c *Config) Engine() analysis.Config {
	return analysis.Config{
		CellSizeKm:    c.CellSizeKm,
		HotspotSigma:  c.HotspotSigma,
		HotspotBudget: c.HotspotBudget,
		TrendWidth:    c.TrendBucket,
		Weights:       c.RiskWeights,
		Workers:       c.Workers,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		log.WithField("key", key).WithField("value", value).Warn("Invalid integer, using default")
		return defaultValue
	}
	return n
}

func getFloatEnv(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || f <= 0 {
		log.WithField("key", key).WithField("value", value).Warn("Invalid number, using default")
		return defaultValue
	}
	return f
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil || d < 0 {
		log.WithField("key", key).WithField("value", value).Warn("Invalid duration, using default")
		return defaultValue
	}
	return d
}
