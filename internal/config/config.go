package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type LookupFunc func(string) (string, bool)

type Profile string

const (
	ProfileDev  Profile = "dev"
	ProfileTest Profile = "test"
	ProfileProd Profile = "prod"
)

type Config struct {
	Profile       Profile
	Service       ServiceConfig
	HTTP          HTTPConfig
	Database      DatabaseConfig
	AI            AIConfig
	Chat          ChatConfig
	Observability ObservabilityConfig
}

type ServiceConfig struct {
	Name string
}

type HTTPConfig struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type DatabaseConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxIdleTime time.Duration
	ConnMaxLifetime time.Duration
	// StaticDataPath points at a db.json-style catalog file used when no
	// DSN is configured. The chat pipeline requires an SQL store and stays
	// disabled in that mode.
	StaticDataPath string
}

type AIConfig struct {
	Enabled     bool
	BaseURL     string
	APIKey      string
	SQLModel    string
	AnswerModel string
	Temperature float64
	Timeout     time.Duration
}

type ChatConfig struct {
	SchemaSampleRows int
	DefaultRowLimit  int
	AllowWriteSQL    bool
	RequestTimeout   time.Duration
}

type ObservabilityConfig struct {
	LogLevel slog.Level
	LogJSON  bool
}

func LoadFromEnv(serviceName string) (Config, error) {
	return Load(serviceName, os.LookupEnv)
}

func Load(serviceName string, lookup LookupFunc) (Config, error) {
	if lookup == nil {
		return Config{}, fmt.Errorf("lookup function is required")
	}

	profile := ProfileDev
	if raw, ok := lookup("SHOPCHAT_PROFILE"); ok {
		profile = Profile(strings.ToLower(strings.TrimSpace(raw)))
	}
	if !isValidProfile(profile) {
		return Config{}, fmt.Errorf("invalid SHOPCHAT_PROFILE: %q", profile)
	}

	cfg := defaultsForProfile(profile)
	if serviceName != "" {
		cfg.Service.Name = serviceName
	}

	if err := applyString(lookup, "SHOPCHAT_SERVICE_NAME", &cfg.Service.Name); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "SHOPCHAT_HTTP_ADDR", &cfg.HTTP.Address); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "SHOPCHAT_HTTP_READ_TIMEOUT", &cfg.HTTP.ReadTimeout); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "SHOPCHAT_HTTP_WRITE_TIMEOUT", &cfg.HTTP.WriteTimeout); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "SHOPCHAT_HTTP_IDLE_TIMEOUT", &cfg.HTTP.IdleTimeout); err != nil {
		return Config{}, err
	}
	// DATABASE_URL and OPENAI_API_KEY are the conventional names; the
	// SHOPCHAT_-prefixed variants win when both are set.
	if err := applyString(lookup, "DATABASE_URL", &cfg.Database.DSN); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "SHOPCHAT_DB_DSN", &cfg.Database.DSN); err != nil {
		return Config{}, err
	}
	if err := applyInt(lookup, "SHOPCHAT_DB_MAX_OPEN_CONNS", &cfg.Database.MaxOpenConns); err != nil {
		return Config{}, err
	}
	if err := applyInt(lookup, "SHOPCHAT_DB_MAX_IDLE_CONNS", &cfg.Database.MaxIdleConns); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "SHOPCHAT_DB_CONN_MAX_IDLE_TIME", &cfg.Database.ConnMaxIdleTime); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "SHOPCHAT_DB_CONN_MAX_LIFETIME", &cfg.Database.ConnMaxLifetime); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "SHOPCHAT_STATIC_DATA_PATH", &cfg.Database.StaticDataPath); err != nil {
		return Config{}, err
	}
	if err := applyBool(lookup, "SHOPCHAT_AI_ENABLED", &cfg.AI.Enabled); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "SHOPCHAT_AI_BASE_URL", &cfg.AI.BaseURL); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "OPENAI_API_KEY", &cfg.AI.APIKey); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "SHOPCHAT_AI_API_KEY", &cfg.AI.APIKey); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "SHOPCHAT_AI_SQL_MODEL", &cfg.AI.SQLModel); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "SHOPCHAT_AI_ANSWER_MODEL", &cfg.AI.AnswerModel); err != nil {
		return Config{}, err
	}
	if err := applyFloat(lookup, "SHOPCHAT_AI_TEMPERATURE", &cfg.AI.Temperature); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "SHOPCHAT_AI_TIMEOUT", &cfg.AI.Timeout); err != nil {
		return Config{}, err
	}
	if err := applyInt(lookup, "SHOPCHAT_CHAT_SCHEMA_SAMPLE_ROWS", &cfg.Chat.SchemaSampleRows); err != nil {
		return Config{}, err
	}
	if err := applyInt(lookup, "SHOPCHAT_CHAT_DEFAULT_ROW_LIMIT", &cfg.Chat.DefaultRowLimit); err != nil {
		return Config{}, err
	}
	if err := applyBool(lookup, "SHOPCHAT_CHAT_ALLOW_WRITE_SQL", &cfg.Chat.AllowWriteSQL); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "SHOPCHAT_CHAT_REQUEST_TIMEOUT", &cfg.Chat.RequestTimeout); err != nil {
		return Config{}, err
	}
	if err := applyBool(lookup, "SHOPCHAT_LOG_JSON", &cfg.Observability.LogJSON); err != nil {
		return Config{}, err
	}
	if err := applyLogLevel(lookup, "SHOPCHAT_LOG_LEVEL", &cfg.Observability.LogLevel); err != nil {
		return Config{}, err
	}

	if cfg.Service.Name == "" {
		return Config{}, fmt.Errorf("service name is required")
	}
	if cfg.HTTP.Address == "" {
		return Config{}, fmt.Errorf("http address is required")
	}
	if cfg.Chat.SchemaSampleRows <= 0 {
		return Config{}, fmt.Errorf("chat schema sample rows must be positive")
	}
	if cfg.Chat.DefaultRowLimit <= 0 {
		return Config{}, fmt.Errorf("chat default row limit must be positive")
	}
	return cfg, nil
}

func defaultsForProfile(profile Profile) Config {
	cfg := Config{
		Profile: profile,
		Service: ServiceConfig{Name: "shopchat-api"},
		HTTP: HTTPConfig{
			Address:      ":8080",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Database: DatabaseConfig{
			MaxOpenConns:    10,
			MaxIdleConns:    10,
			ConnMaxIdleTime: 5 * time.Minute,
			ConnMaxLifetime: 30 * time.Minute,
		},
		AI: AIConfig{
			Enabled:     true,
			BaseURL:     "https://api.openai.com",
			SQLModel:    "gpt-4o",
			AnswerModel: "gpt-3.5-turbo",
			Temperature: 0.2,
			Timeout:     15 * time.Second,
		},
		Chat: ChatConfig{
			SchemaSampleRows: 3,
			DefaultRowLimit:  5,
			AllowWriteSQL:    false,
			RequestTimeout:   30 * time.Second,
		},
		Observability: ObservabilityConfig{
			LogLevel: slog.LevelDebug,
			LogJSON:  true,
		},
	}

	switch profile {
	case ProfileTest:
		cfg.HTTP.Address = ":18080"
		cfg.Observability.LogLevel = slog.LevelWarn
	case ProfileProd:
		cfg.Observability.LogLevel = slog.LevelInfo
	}

	return cfg
}

func isValidProfile(profile Profile) bool {
	switch profile {
	case ProfileDev, ProfileTest, ProfileProd:
		return true
	default:
		return false
	}
}

func applyString(lookup LookupFunc, key string, dst *string) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	*dst = strings.TrimSpace(raw)
	return nil
}

func applyDuration(lookup LookupFunc, key string, dst *time.Duration) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyBool(lookup LookupFunc, key string, dst *bool) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyInt(lookup LookupFunc, key string, dst *int) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyFloat(lookup LookupFunc, key string, dst *float64) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyLogLevel(lookup LookupFunc, key string, dst *slog.Level) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	level := strings.ToLower(strings.TrimSpace(raw))
	switch level {
	case "debug":
		*dst = slog.LevelDebug
	case "info":
		*dst = slog.LevelInfo
	case "warn", "warning":
		*dst = slog.LevelWarn
	case "error":
		*dst = slog.LevelError
	default:
		return fmt.Errorf("invalid %s: %q", key, raw)
	}
	return nil
}
