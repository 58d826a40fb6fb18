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

	Storage   StorageConfig
	Matching  MatchingConfig
	Extractor ExtractorConfig
	Cooldown  CooldownConfig
	Redis     RedisConfig
	Admin     AdminConfig
	CORS      CORSConfig
	Log       LogConfig
	Metrics   MetricsConfig
}

// StorageConfig locates the file-backed stores.
type StorageConfig struct {
	DataDir    string
	ModelsDir  string
	ReportsDir string
}

// MatchingConfig tunes identity resolution.
type MatchingConfig struct {
	Threshold float64
}

// ExtractorConfig describes the embedding extractor sidecar.
type ExtractorConfig struct {
	URL           string
	Timeout       time.Duration
	AllowFallback bool
}

// CooldownConfig governs repeated-recognition suppression.
type CooldownConfig struct {
	Window time.Duration
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// AdminConfig gates token protection on enrollment endpoints.
type AdminConfig struct {
	Enabled     bool
	TokenSecret string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool
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

	cfg.Storage = StorageConfig{
		DataDir:    v.GetString("DATA_DIR"),
		ModelsDir:  v.GetString("MODELS_DIR"),
		ReportsDir: v.GetString("REPORTS_DIR"),
	}

	cfg.Matching = MatchingConfig{
		Threshold: v.GetFloat64("MATCH_THRESHOLD"),
	}

	cfg.Extractor = ExtractorConfig{
		URL:           v.GetString("EXTRACTOR_URL"),
		Timeout:       parseDuration(v.GetString("EXTRACTOR_TIMEOUT"), 10*time.Second),
		AllowFallback: v.GetBool("EXTRACTOR_ALLOW_FALLBACK"),
	}

	cfg.Cooldown = CooldownConfig{
		Window: parseDuration(v.GetString("RECOGNITION_COOLDOWN"), 600*time.Second),
	}

	cfg.Redis = RedisConfig{
		Enabled:  v.GetBool("REDIS_ENABLED"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Admin = AdminConfig{
		Enabled:     v.GetBool("ENABLE_ADMIN_AUTH"),
		TokenSecret: v.GetString("ADMIN_TOKEN_SECRET"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Metrics = MetricsConfig{
		Enabled: v.GetBool("ENABLE_METRICS"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DATA_DIR", "./data/students")
	v.SetDefault("MODELS_DIR", "./models")
	v.SetDefault("REPORTS_DIR", "./reports")

	v.SetDefault("MATCH_THRESHOLD", 0.45)

	v.SetDefault("EXTRACTOR_URL", "http://localhost:8000")
	v.SetDefault("EXTRACTOR_TIMEOUT", "10s")
	v.SetDefault("EXTRACTOR_ALLOW_FALLBACK", true)

	v.SetDefault("RECOGNITION_COOLDOWN", "600s")

	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ENABLE_ADMIN_AUTH", false)
	v.SetDefault("ADMIN_TOKEN_SECRET", "dev_secret")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENABLE_METRICS", true)
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
