package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Generator provider names accepted in GENERATOR_PROVIDER.
const (
	ProviderOpenRouter = "openrouter"
	ProviderGemini     = "gemini"
	ProviderLocal      = "local"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Redis configuration.
	RedisAddr     string        `mapstructure:"REDIS_ADDR"`
	RedisPassword string        `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB  int           `mapstructure:"REDIS_CACHE_DB"`
	CacheEnabled  bool          `mapstructure:"CACHE_ENABLED"`
	CacheTTL      time.Duration `mapstructure:"CACHE_TTL"`

	// Advice generation.
	GeneratorProvider string        `mapstructure:"GENERATOR_PROVIDER"`
	OpenRouterAPIKey  string        `mapstructure:"OPENROUTER_API_KEY"`
	OpenRouterModel   string        `mapstructure:"OPENROUTER_MODEL"`
	OpenRouterBaseURL string        `mapstructure:"OPENROUTER_BASE_URL"`
	GeminiAPIKey      string        `mapstructure:"GEMINI_API_KEY"`
	GeminiModel       string        `mapstructure:"GEMINI_MODEL"`
	GenerateTimeout   time.Duration `mapstructure:"GENERATE_TIMEOUT"`

	// Open-Meteo upstreams.
	GeocodeBaseURL  string        `mapstructure:"GEOCODE_BASE_URL"`
	WeatherBaseURL  string        `mapstructure:"WEATHER_BASE_URL"`
	UpstreamTimeout time.Duration `mapstructure:"UPSTREAM_TIMEOUT"`

	// Comma separated; entries may be exact origins or "*.example.com".
	CORSAllowedOrigins []string `mapstructure:"CORS_ALLOWED_ORIGINS"`

	// Google Cloud Speech credentials for /api/transcribe.
	GoogleServiceAccountFile string `mapstructure:"GOOGLE_SERVICE_ACCOUNT_FILE"`
}

var AppConfig Config

func LoadConfig() {
	// A local .env is optional; real environment variables win over it.
	_ = godotenv.Load()

	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "4000")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 120)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("CACHE_ENABLED", false)
	viper.SetDefault("CACHE_TTL", "10m")
	viper.SetDefault("GENERATOR_PROVIDER", ProviderOpenRouter)
	viper.SetDefault("OPENROUTER_API_KEY", "")
	viper.SetDefault("OPENROUTER_MODEL", "openrouter/o3")
	viper.SetDefault("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1/")
	viper.SetDefault("GEMINI_API_KEY", "")
	viper.SetDefault("GEMINI_MODEL", "models/gemini-1.5-pro")
	viper.SetDefault("GENERATE_TIMEOUT", "60s")
	viper.SetDefault("GEOCODE_BASE_URL", "https://geocoding-api.open-meteo.com/v1")
	viper.SetDefault("WEATHER_BASE_URL", "https://api.open-meteo.com/v1")
	viper.SetDefault("UPSTREAM_TIMEOUT", "30s")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5173")
	viper.SetDefault("GOOGLE_SERVICE_ACCOUNT_FILE", "")

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	AppConfig.GeneratorProvider = strings.ToLower(strings.TrimSpace(AppConfig.GeneratorProvider))
	AppConfig.CORSAllowedOrigins = splitOrigins(AppConfig.CORSAllowedOrigins)
}

// splitOrigins trims entries and drops empties; env values arrive as one comma separated item.
func splitOrigins(raw []string) []string {
	var out []string
	for _, item := range raw {
		for _, origin := range strings.Split(item, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				out = append(out, origin)
			}
		}
	}
	return out
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}

// RemoteGeneration reports whether a remote provider is configured; every other value means local-only.
func RemoteGeneration() bool {
	switch AppConfig.GeneratorProvider {
	case ProviderOpenRouter, ProviderGemini:
		return true
	default:
		return false
	}
}
