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

	Database   DatabaseConfig
	Redis      RedisConfig
	CORS       CORSConfig
	Log        LogConfig
	Attendance AttendanceConfig
	Export     ExportConfig
	Recompute  RecomputeConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// AttendanceConfig tunes the shift-matching and classification engine.
type AttendanceConfig struct {
	// OrgUTCOffsetMinutes is the fixed organizational offset local
	// schedule times are expressed in (300 = UTC+5).
	OrgUTCOffsetMinutes int
	// DefaultGraceMinutes is the organization-wide late-in allowance.
	DefaultGraceMinutes int
	// WorkingDayEnabled groups overnight shifts and their punches onto
	// configurable 24-hour working days instead of UTC calendar dates.
	WorkingDayEnabled bool
	// WorkingDayStart is the local "HH:MM" a working day begins at.
	WorkingDayStart string
	// BatchConcurrency bounds concurrent per-employee recomputes.
	BatchConcurrency int
	// CacheEnabled and CacheTTL govern the Redis batch-response cache.
	CacheEnabled bool
	CacheTTL     time.Duration
}

// ExportConfig toggles attendance sheet exports.
type ExportConfig struct {
	Enabled bool
}

// RecomputeConfig tunes the background recompute queue.
type RecomputeConfig struct {
	Workers    int
	BufferSize int
	MaxRetries int
	RetryDelay time.Duration
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

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Attendance = AttendanceConfig{
		OrgUTCOffsetMinutes: v.GetInt("ATTENDANCE_UTC_OFFSET_MINUTES"),
		DefaultGraceMinutes: v.GetInt("ATTENDANCE_GRACE_MINUTES"),
		WorkingDayEnabled:   v.GetBool("ATTENDANCE_WORKING_DAY_ENABLED"),
		WorkingDayStart:     v.GetString("ATTENDANCE_WORKING_DAY_START"),
		BatchConcurrency:    v.GetInt("ATTENDANCE_BATCH_CONCURRENCY"),
		CacheEnabled:        v.GetBool("ATTENDANCE_CACHE_ENABLED"),
		CacheTTL:            parseDuration(v.GetString("ATTENDANCE_CACHE_TTL"), 2*time.Minute),
	}

	cfg.Export = ExportConfig{
		Enabled: v.GetBool("ENABLE_EXPORTS"),
	}

	cfg.Recompute = RecomputeConfig{
		Workers:    v.GetInt("RECOMPUTE_WORKERS"),
		BufferSize: v.GetInt("RECOMPUTE_BUFFER_SIZE"),
		MaxRetries: v.GetInt("RECOMPUTE_MAX_RETRIES"),
		RetryDelay: parseDuration(v.GetString("RECOMPUTE_RETRY_DELAY"), 30*time.Second),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "attendance")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ATTENDANCE_UTC_OFFSET_MINUTES", 300)
	v.SetDefault("ATTENDANCE_GRACE_MINUTES", 30)
	v.SetDefault("ATTENDANCE_WORKING_DAY_ENABLED", false)
	v.SetDefault("ATTENDANCE_WORKING_DAY_START", "06:00")
	v.SetDefault("ATTENDANCE_BATCH_CONCURRENCY", 8)
	v.SetDefault("ATTENDANCE_CACHE_ENABLED", true)
	v.SetDefault("ATTENDANCE_CACHE_TTL", "2m")

	v.SetDefault("ENABLE_EXPORTS", true)

	v.SetDefault("RECOMPUTE_WORKERS", 2)
	v.SetDefault("RECOMPUTE_BUFFER_SIZE", 16)
	v.SetDefault("RECOMPUTE_MAX_RETRIES", 3)
	v.SetDefault("RECOMPUTE_RETRY_DELAY", "30s")
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
