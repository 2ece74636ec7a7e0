// Package config loads service settings from PLACEMENT_* environment
// variables and an optional config file.
package config

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Store backends.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
	StoreMongo  = "mongo"
)

const envPrefix = "PLACEMENT"

// Config captures the settings of the placement portal service.
type Config struct {
	HTTPPort          int
	Store             string
	SQLiteDSN         string
	MongoURI          string
	MongoDatabase     string
	JWTSecret         string
	TokenTTL          time.Duration
	RedisAddr         string
	RabbitMQURL       string
	EventsQueue       string
	StatsCacheTTL     time.Duration
	StatsPushInterval time.Duration
	StrictTerminal    bool
	RateLimit         int
	CORSOrigin        string
	LogLevel          slog.Level
}

var defaults = map[string]any{
	"http_port":           5000,
	"store":               StoreSQLite,
	"sqlite_dsn":          "placement.db",
	"mongo_database":      "placement_portal",
	"token_ttl":           "24h",
	"events_queue":        "placement.events",
	"stats_cache_ttl":     "10s",
	"stats_push_interval": "2s",
	"strict_terminal":     false,
	"rate_limit":          20,
	"cors_origin":         "*",
	"log_level":           "info",
}

// Load reads the process environment. When PLACEMENT_CONFIG_FILE names a
// file, its keys are read first and the environment overrides them.
// Every missing and invalid value is reported in one error.
func Load() (Config, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	if file := strings.TrimSpace(v.GetString("config_file")); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	}

	var (
		cfg     Config
		missing []string
		invalid []string
	)
	envName := func(key string) string { return envPrefix + "_" + strings.ToUpper(key) }

	positiveInt := func(key string) int {
		n, err := strconv.Atoi(strings.TrimSpace(v.GetString(key)))
		if err != nil || n <= 0 {
			invalid = append(invalid, envName(key))
		}
		return n
	}
	positiveDuration := func(key string) time.Duration {
		d, err := time.ParseDuration(strings.TrimSpace(v.GetString(key)))
		if err != nil || d <= 0 {
			invalid = append(invalid, envName(key))
		}
		return d
	}
	str := func(key string) string { return strings.TrimSpace(v.GetString(key)) }

	cfg.HTTPPort = positiveInt("http_port")
	cfg.Store = strings.ToLower(str("store"))
	cfg.SQLiteDSN = str("sqlite_dsn")
	cfg.MongoURI = str("mongo_uri")
	cfg.MongoDatabase = str("mongo_database")
	cfg.JWTSecret = str("jwt_secret")
	cfg.TokenTTL = positiveDuration("token_ttl")
	cfg.RedisAddr = str("redis_addr")
	cfg.RabbitMQURL = str("rabbitmq_url")
	cfg.EventsQueue = str("events_queue")
	cfg.StatsCacheTTL = positiveDuration("stats_cache_ttl")
	cfg.StatsPushInterval = positiveDuration("stats_push_interval")
	cfg.RateLimit = positiveInt("rate_limit")
	cfg.CORSOrigin = str("cors_origin")

	strict, err := strconv.ParseBool(str("strict_terminal"))
	if err != nil {
		invalid = append(invalid, envName("strict_terminal"))
	}
	cfg.StrictTerminal = strict

	if err := cfg.LogLevel.UnmarshalText([]byte(str("log_level"))); err != nil {
		invalid = append(invalid, envName("log_level"))
	}

	switch cfg.Store {
	case StoreMemory:
	case StoreSQLite:
		if cfg.SQLiteDSN == "" {
			missing = append(missing, envName("sqlite_dsn"))
		}
	case StoreMongo:
		if cfg.MongoURI == "" {
			missing = append(missing, envName("mongo_uri"))
		}
	default:
		invalid = append(invalid, envName("store"))
	}

	if cfg.JWTSecret == "" {
		missing = append(missing, envName("jwt_secret"))
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables are not set: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variable values: %s", strings.Join(invalid, ", "))
	}
	return cfg, nil
}

// Addr returns the listen address for the HTTP server.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}
