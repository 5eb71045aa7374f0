package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	configName = "config"
	configType = "yaml"
	envPrefix  = "CALLMOOD"
)

// Defaults.
const (
	DefaultPort            = 8080
	DefaultMongoURI        = "mongodb://localhost:27017"
	DefaultMongoDatabase   = "callmood"
	DefaultRedisAddr       = "localhost:6379"
	DefaultDashboardTTL    = 10 * time.Minute
	DefaultJobLockTTL      = 15 * time.Minute
	DefaultTokenTTL        = 24 * time.Hour
	DefaultInferenceURL    = "http://localhost:8000"
	DefaultInferenceRetry  = 3
	DefaultPollInterval    = 5 * time.Second
	DefaultPollTimeout     = 10 * time.Minute
	DefaultMinDurationMS   = 15000
	DefaultShutdownTimeout = 30 * time.Second
)

// envAliases keeps the plain variable names used by existing deployments.
var envAliases = map[string]string{
	"server.port":              "PORT",
	"mongo.uri":                "MONGO_URI",
	"mongo.database":           "MONGO_DATABASE",
	"redis.addr":               "REDIS_URI",
	"auth.username":            "DASHBOARD_USERNAME",
	"auth.password":            "DASHBOARD_PASSWORD",
	"auth.jwt_secret":          "JWT_SECRET",
	"inference.base_url":       "INFERENCE_BASE_URL",
	"inference.api_key":        "INFERENCE_API_KEY",
	"cors.allowed_origins":     "CORS_ALLOWED_ORIGINS",
	"log.level":                "LOG_LEVEL",
	"analysis.min_duration_ms": "MIN_CALL_DURATION_MS",
}

// Load reads configuration from defaults, an optional YAML file and the
// environment. If configPath is empty the file is searched for in ".",
// "./config" and "/etc/callmood". A missing file is not an error.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	applyDefaults(v)

	v.SetConfigType(configType)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, env := range envAliases {
		if err := v.BindEnv(key, envPrefix+"_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", env, err)
		}
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName(configName)
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/callmood")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.CORS.AllowedOrigins = splitOrigins(cfg.CORS.AllowedOrigins)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

func applyDefaults(v *viper.Viper) {
	v.SetDefault("server.port", DefaultPort)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", DefaultShutdownTimeout)

	v.SetDefault("mongo.uri", DefaultMongoURI)
	v.SetDefault("mongo.database", DefaultMongoDatabase)

	v.SetDefault("redis.addr", DefaultRedisAddr)
	v.SetDefault("redis.dashboard_ttl", DefaultDashboardTTL)
	v.SetDefault("redis.job_lock_ttl", DefaultJobLockTTL)

	v.SetDefault("auth.username", "admin")
	v.SetDefault("auth.password", "password123")
	v.SetDefault("auth.jwt_secret", "super-secret-key-change-in-production")
	v.SetDefault("auth.token_ttl", DefaultTokenTTL)

	v.SetDefault("inference.base_url", DefaultInferenceURL)
	v.SetDefault("inference.api_key", "")
	v.SetDefault("inference.timeout", 120*time.Second)
	v.SetDefault("inference.max_retries", DefaultInferenceRetry)
	v.SetDefault("inference.poll_interval", DefaultPollInterval)
	v.SetDefault("inference.poll_timeout", DefaultPollTimeout)

	v.SetDefault("analysis.min_duration_ms", DefaultMinDurationMS)

	v.SetDefault("cors.allowed_origins", []string{"http://localhost:3000", "http://localhost:5173"})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", LogFormatText)
}

// splitOrigins accepts both a YAML list and a comma separated env value.
func splitOrigins(in []string) []string {
	var out []string
	for _, item := range in {
		for _, origin := range strings.Split(item, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				out = append(out, origin)
			}
		}
	}
	return out
}
