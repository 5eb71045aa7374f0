package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Validation errors.
var (
	ErrInvalidPort          = errors.New("server.port must be between 1 and 65535")
	ErrMissingMongoURI      = errors.New("mongo.uri is required")
	ErrMissingMongoDatabase = errors.New("mongo.database is required")
	ErrMissingRedisAddr     = errors.New("redis.addr is required")
	ErrMissingJWTSecret     = errors.New("auth.jwt_secret is required")
	ErrInvalidRetries       = errors.New("inference.max_retries must not be negative")
	ErrInvalidPollInterval  = errors.New("inference.poll_interval must be positive")
	ErrInvalidMinDuration   = errors.New("analysis.min_duration_ms must not be negative")
	ErrInvalidLogFormat     = errors.New("log.format must be text or json")
)

// Config is the service configuration.
// Field tags use mapstructure for viper unmarshalling.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Mongo     MongoConfig     `mapstructure:"mongo"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Inference InferenceConfig `mapstructure:"inference"`
	Analysis  AnalysisConfig  `mapstructure:"analysis"`
	CORS      CORSConfig      `mapstructure:"cors"`
	Log       LogConfig       `mapstructure:"log"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

// MongoConfig holds the call store connection.
type MongoConfig struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

// RedisConfig holds the cache connection.
type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	DashboardTTL time.Duration `mapstructure:"dashboard_ttl"`
	JobLockTTL   time.Duration `mapstructure:"job_lock_ttl"`
}

// HostAddr strips a redis:// scheme if present.
func (r RedisConfig) HostAddr() string {
	return strings.TrimPrefix(r.Addr, "redis://")
}

// AuthConfig holds dashboard credentials.
type AuthConfig struct {
	Username  string        `mapstructure:"username"`
	Password  string        `mapstructure:"password"`
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

// InferenceConfig points at the emotion analysis backend.
type InferenceConfig struct {
	BaseURL      string        `mapstructure:"base_url"`
	APIKey       string        `mapstructure:"api_key"`
	Timeout      time.Duration `mapstructure:"timeout"`
	MaxRetries   int           `mapstructure:"max_retries"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
	PollTimeout  time.Duration `mapstructure:"poll_timeout"`
}

// IsEnabled returns true if a backend URL is configured
func (c InferenceConfig) IsEnabled() bool {
	return c.BaseURL != ""
}

// Endpoint joins a path onto the backend URL.
func (c InferenceConfig) Endpoint(path string) string {
	return strings.TrimRight(c.BaseURL, "/") + "/" + strings.TrimLeft(path, "/")
}

// AnalysisConfig holds call eligibility rules.
type AnalysisConfig struct {
	MinDurationMS int64 `mapstructure:"min_duration_ms"`
}

// CORSConfig lists allowed browser origins.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// LogConfig controls the logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Validate checks values that would otherwise fail at runtime.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return ErrInvalidPort
	}
	if c.Mongo.URI == "" {
		return ErrMissingMongoURI
	}
	if c.Mongo.Database == "" {
		return ErrMissingMongoDatabase
	}
	if c.Redis.Addr == "" {
		return ErrMissingRedisAddr
	}
	if c.Auth.JWTSecret == "" {
		return ErrMissingJWTSecret
	}
	if c.Inference.MaxRetries < 0 {
		return ErrInvalidRetries
	}
	if c.Inference.PollInterval <= 0 {
		return ErrInvalidPollInterval
	}
	if c.Analysis.MinDurationMS < 0 {
		return ErrInvalidMinDuration
	}
	switch c.Log.Format {
	case "", LogFormatText, LogFormatJSON:
	default:
		return ErrInvalidLogFormat
	}
	return nil
}
