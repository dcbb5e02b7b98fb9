// Package config loads the widget server settings from the environment,
// optionally seeded from a .env file.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/swelljoe/wthr-widget/internal/logger"
)

// Preference store backends.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               string        `mapstructure:"PORT"`
	Environment        string        `mapstructure:"ENVIRONMENT"`
	SessionIdleTimeout time.Duration `mapstructure:"SESSION_IDLE_TIMEOUT"`
}

// WeatherConfig holds provider settings.
type WeatherConfig struct {
	APIKey      string        `mapstructure:"API_KEY"`
	BaseURL     string        `mapstructure:"BASE_URL"`
	IconBaseURL string        `mapstructure:"ICON_BASE_URL"`
	DefaultCity string        `mapstructure:"DEFAULT_CITY"`
	Timeout     time.Duration `mapstructure:"TIMEOUT"`
}

// RedisConfig holds Redis connection details for the redis backend.
type RedisConfig struct {
	Address  string `mapstructure:"ADDRESS"`
	Password string `mapstructure:"PASSWORD"`
	DB       int    `mapstructure:"DB"`
}

// StorageConfig selects and configures the preference store.
type StorageConfig struct {
	Backend string      `mapstructure:"BACKEND"`
	DBPath  string      `mapstructure:"DB_PATH"`
	Redis   RedisConfig `mapstructure:"REDIS"`
}

// SoundConfig controls ambient clip playback.
type SoundConfig struct {
	BasePath string  `mapstructure:"BASE_PATH"`
	Volume   float64 `mapstructure:"VOLUME"`
}

// Config aggregates all sections.
type Config struct {
	Server  ServerConfig  `mapstructure:"SERVER"`
	Weather WeatherConfig `mapstructure:"WEATHER"`
	Storage StorageConfig `mapstructure:"STORAGE"`
	Sound   SoundConfig   `mapstructure:"SOUND"`
}

// ListenAddr returns the :port string for the HTTP server.
func (c *Config) ListenAddr() string {
	return ":" + c.Server.Port
}

func bindEnvVars(v *viper.Viper, bindings [][2]string) error {
	for _, b := range bindings {
		if err := v.BindEnv(b[0], b[1]); err != nil {
			return fmt.Errorf("failed to bind %s: %w", b[0], err)
		}
	}
	return nil
}

// Load reads .env (if present) and the environment, applies defaults and
// validates the result.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	log := logger.GetLogger()

	v.SetDefault("SERVER.PORT", "8080")
	v.SetDefault("SERVER.ENVIRONMENT", "development")
	v.SetDefault("SERVER.SESSION_IDLE_TIMEOUT", "30m")
	v.SetDefault("WEATHER.API_KEY", "")
	v.SetDefault("WEATHER.BASE_URL", "https://api.openweathermap.org/data/2.5/weather")
	v.SetDefault("WEATHER.ICON_BASE_URL", "https://openweathermap.org/img/wn")
	v.SetDefault("WEATHER.DEFAULT_CITY", "Varanasi")
	v.SetDefault("WEATHER.TIMEOUT", "10s")
	v.SetDefault("STORAGE.BACKEND", BackendSQLite)
	v.SetDefault("STORAGE.DB_PATH", "wthr.db")
	v.SetDefault("STORAGE.REDIS.ADDRESS", "localhost:6379")
	v.SetDefault("STORAGE.REDIS.PASSWORD", "")
	v.SetDefault("STORAGE.REDIS.DB", 0)
	// Clips are not bundled; an empty base keeps the widget silent.
	v.SetDefault("SOUND.BASE_PATH", "")
	v.SetDefault("SOUND.VOLUME", 0.29)

	v.AutomaticEnv()
	// An explicitly empty WEATHER_DEFAULT_CITY disables the fallback city.
	v.AllowEmptyEnv(true)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	envBindings := [][2]string{
		{"SERVER.PORT", "PORT"},
		{"SERVER.ENVIRONMENT", "ENVIRONMENT"},
		{"SERVER.SESSION_IDLE_TIMEOUT", "SESSION_IDLE_TIMEOUT"},
		{"WEATHER.API_KEY", "OWM_API_KEY"},
		{"WEATHER.BASE_URL", "WEATHER_BASE_URL"},
		{"WEATHER.ICON_BASE_URL", "WEATHER_ICON_BASE_URL"},
		{"WEATHER.DEFAULT_CITY", "WEATHER_DEFAULT_CITY"},
		{"WEATHER.TIMEOUT", "WEATHER_TIMEOUT"},
		{"STORAGE.BACKEND", "PREFS_BACKEND"},
		{"STORAGE.DB_PATH", "DB_PATH"},
		{"STORAGE.REDIS.ADDRESS", "REDIS_ADDRESS"},
		{"STORAGE.REDIS.PASSWORD", "REDIS_PASSWORD"},
		{"STORAGE.REDIS.DB", "REDIS_DB"},
		{"SOUND.BASE_PATH", "SOUND_BASE_PATH"},
		{"SOUND.VOLUME", "SOUND_VOLUME"},
	}
	if err := bindEnvVars(v, envBindings); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config unmarshal failed: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	log.Infow("Configuration loaded",
		"environment", cfg.Server.Environment,
		"port", cfg.Server.Port,
		"prefs_backend", cfg.Storage.Backend,
		"default_city", cfg.Weather.DefaultCity,
		"weather_timeout", cfg.Weather.Timeout,
	)
	return &cfg, nil
}

func validateConfig(cfg *Config) error {
	if cfg.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if cfg.Weather.APIKey == "" {
		return fmt.Errorf("OWM_API_KEY is required")
	}
	if cfg.Weather.BaseURL == "" {
		return fmt.Errorf("weather base URL is required")
	}
	if cfg.Weather.Timeout <= 0 {
		return fmt.Errorf("weather timeout must be positive, got %s", cfg.Weather.Timeout)
	}
	switch cfg.Storage.Backend {
	case BackendSQLite:
		if cfg.Storage.DBPath == "" {
			return fmt.Errorf("DB_PATH is required for the sqlite backend")
		}
	case BackendRedis:
		if cfg.Storage.Redis.Address == "" {
			return fmt.Errorf("REDIS_ADDRESS is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown preference backend %q", cfg.Storage.Backend)
	}
	if cfg.Sound.Volume < 0 || cfg.Sound.Volume > 1 {
		return fmt.Errorf("sound volume must be within [0,1], got %v", cfg.Sound.Volume)
	}
	return nil
}
