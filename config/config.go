package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Target calendar and business-day block.
	CalendarName     string `mapstructure:"CALENDAR_NAME"`
	BusinessDayHours int    `mapstructure:"BUSINESS_DAY_HOURS"`
	BusinessDayStart string `mapstructure:"BUSINESS_DAY_START"`
	BusinessDayEnd   string `mapstructure:"BUSINESS_DAY_END"`

	// Google OAuth credentials. The refresh token is obtained out-of-band
	// through the interactive consent flow, which is not part of this service.
	GoogleClientID     string `mapstructure:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `mapstructure:"GOOGLE_CLIENT_SECRET"`
	GoogleRefreshToken string `mapstructure:"GOOGLE_REFRESH_TOKEN"`

	// When true the service runs against the in-memory calendar instead of
	// the Google Calendar API.
	SimulationMode bool `mapstructure:"SIMULATION_MODE"`

	// Redis configuration for the optional session snapshot cache.
	SessionCacheEnabled bool   `mapstructure:"SESSION_CACHE_ENABLED"`
	RedisAddr           string `mapstructure:"REDIS_ADDR"`
	RedisPassword       string `mapstructure:"REDIS_PASSWORD"`
	RedisSessionDB      int    `mapstructure:"REDIS_SESSION_DB"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("CALENDAR_NAME", "Agentforce PTO")
	viper.SetDefault("BUSINESS_DAY_HOURS", 8)
	viper.SetDefault("BUSINESS_DAY_START", "09:00")
	viper.SetDefault("BUSINESS_DAY_END", "17:00")
	viper.SetDefault("SIMULATION_MODE", false)
	viper.SetDefault("SESSION_CACHE_ENABLED", false)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_SESSION_DB", 0)

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
