package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName          string
	AppEnv           string
	AppPort          string
	DatabaseURL      string
	RedisURL         string
	NATSURL          string
	EventChannel     string
	JWTSecret        string
	ProgressCacheTTL time.Duration
	FanoutBatchSize  int
	AssignRateLimit  int
	AssignRateWindow time.Duration
	RequestTimeout   time.Duration
	AutoMigrate      bool
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("GEMA")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	return fromViper(v)
}

func fromViper(v *viper.Viper) (Config, error) {
	v.SetDefault("app.name", "GEMA Classroom API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("events.channel", "gema:classroom")
	v.SetDefault("progress.cache_ttl", "2m")
	v.SetDefault("fanout.batch_size", 200)
	v.SetDefault("assign.rate_limit", 20)
	v.SetDefault("assign.rate_window", "1m")
	v.SetDefault("request.timeout", "15s")
	v.SetDefault("database.auto_migrate", true)

	ttl, err := parseDuration(v, "progress.cache_ttl", 2*time.Minute)
	if err != nil {
		return Config{}, fmt.Errorf("invalid progress cache ttl: %w", err)
	}

	window, err := parseDuration(v, "assign.rate_window", time.Minute)
	if err != nil {
		return Config{}, fmt.Errorf("invalid assign rate window: %w", err)
	}

	timeout, err := parseDuration(v, "request.timeout", 15*time.Second)
	if err != nil {
		return Config{}, fmt.Errorf("invalid request timeout: %w", err)
	}

	cfg := Config{
		AppName:          v.GetString("app.name"),
		AppEnv:           v.GetString("app.env"),
		AppPort:          v.GetString("app.port"),
		DatabaseURL:      v.GetString("database.url"),
		RedisURL:         v.GetString("redis.url"),
		NATSURL:          v.GetString("nats.url"),
		EventChannel:     v.GetString("events.channel"),
		JWTSecret:        v.GetString("jwt.secret"),
		ProgressCacheTTL: ttl,
		FanoutBatchSize:  v.GetInt("fanout.batch_size"),
		AssignRateLimit:  v.GetInt("assign.rate_limit"),
		AssignRateWindow: window,
		RequestTimeout:   timeout,
		AutoMigrate:      v.GetBool("database.auto_migrate"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.FanoutBatchSize <= 0 {
		cfg.FanoutBatchSize = 200
	}

	if cfg.AssignRateLimit <= 0 {
		cfg.AssignRateLimit = 20
	}

	return cfg, nil
}

func parseDuration(v *viper.Viper, key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return fallback, nil
	}

	return time.ParseDuration(raw)
}
