package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	OBS     OBSConfig
	Catalog CatalogConfig
	Exports ExportsConfig
	CORS    CORSConfig
	Log     LogConfig
}

// OBSConfig describes how the upstream OBS endpoints are reached.
type OBSConfig struct {
	BaseURL            string
	ProgramLevel       string
	DepartmentsTimeout time.Duration
	CoursesTimeout     time.Duration
	RateLimitRPS       float64
	RateLimitBurst     int
}

// CatalogConfig tunes the in-memory catalog caches.
type CatalogConfig struct {
	CacheTTL      time.Duration
	MaxCacheDepts int
}

// ExportsConfig gates the CSV/PDF export endpoints.
type ExportsConfig struct {
	Enabled bool
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.OBS = OBSConfig{
		BaseURL:            strings.TrimRight(v.GetString("OBS_BASE_URL"), "/"),
		ProgramLevel:       v.GetString("OBS_PROGRAM_LEVEL"),
		DepartmentsTimeout: parseDuration(v.GetString("OBS_DEPARTMENTS_TIMEOUT"), 10*time.Second),
		CoursesTimeout:     parseDuration(v.GetString("OBS_COURSES_TIMEOUT"), 15*time.Second),
		RateLimitRPS:       v.GetFloat64("OBS_RATE_LIMIT_RPS"),
		RateLimitBurst:     v.GetInt("OBS_RATE_LIMIT_BURST"),
	}

	cfg.Catalog = CatalogConfig{
		CacheTTL:      parseDuration(v.GetString("CACHE_TTL"), time.Hour),
		MaxCacheDepts: v.GetInt("MAX_CACHE_DEPTS"),
	}
	if cfg.Catalog.MaxCacheDepts <= 0 {
		cfg.Catalog.MaxCacheDepts = 50
	}

	cfg.Exports = ExportsConfig{Enabled: v.GetBool("ENABLE_EXPORTS")}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("OBS_BASE_URL", "https://obs.itu.edu.tr")
	v.SetDefault("OBS_PROGRAM_LEVEL", "LS")
	v.SetDefault("OBS_DEPARTMENTS_TIMEOUT", "10s")
	v.SetDefault("OBS_COURSES_TIMEOUT", "15s")
	v.SetDefault("OBS_RATE_LIMIT_RPS", 4.0)
	v.SetDefault("OBS_RATE_LIMIT_BURST", 4)

	v.SetDefault("CACHE_TTL", "1h")
	v.SetDefault("MAX_CACHE_DEPTS", 50)

	v.SetDefault("ENABLE_EXPORTS", true)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
