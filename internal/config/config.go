package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config aggregates application settings that may be sourced from files or environment variables.
type Config struct {
	API      APIConfig      `mapstructure:"api"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Share    ShareConfig    `mapstructure:"share"`
	Editor   EditorConfig   `mapstructure:"editor"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Worker   WorkerConfig   `mapstructure:"worker"`
}

// APIConfig contains HTTP server settings.
type APIConfig struct {
	Port int `mapstructure:"port"`
	// AllowedOrigins 是通知 WebSocket 允许的 Origin，逗号分隔；为空时只允许同源。
	AllowedOrigins string `mapstructure:"allowed_origins"`
}

// Origins splits AllowedOrigins.
func (a APIConfig) Origins() []string {
	var out []string
	for _, o := range strings.Split(a.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// DatabaseConfig contains connection options for PostgreSQL.
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	SSLMode  string `mapstructure:"sslmode"`
}

// RedisConfig 包含 Redis 连接配置，公开分享页的限流计数存放在这里。
type RedisConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// Addr returns host:port.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// AuthConfig 指向 RS256 密钥文件。
type AuthConfig struct {
	PublicKeyPath  string        `mapstructure:"public_key_path"`
	PrivateKeyPath string        `mapstructure:"private_key_path"`
	AccessTokenTTL time.Duration `mapstructure:"access_token_ttl"`
}

// ShareConfig 控制分享链接。
type ShareConfig struct {
	PublicBaseURL   string `mapstructure:"public_base_url"`
	SlugRetries     int    `mapstructure:"slug_retries"`
	PublicRateLimit int    `mapstructure:"public_rate_limit_per_minute"`
}

// EditorConfig 是 cmd/editor 会话使用的客户端配置。
type EditorConfig struct {
	AutoSaveDelay time.Duration `mapstructure:"autosave_delay"`
	SyncThrottle  time.Duration `mapstructure:"sync_throttle"`
	HistoryLimit  int           `mapstructure:"history_limit"`
	APIBaseURL    string        `mapstructure:"api_base_url"`
	APIToken      string        `mapstructure:"api_token"`
}

// StorageConfig contains connection options for MinIO/S3-compatible storage.
// Exports are disabled when Endpoint is empty.
type StorageConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	PublicEndpoint  string `mapstructure:"public_endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	Bucket          string `mapstructure:"bucket"`
	Region          string `mapstructure:"region"`
}

func (s StorageConfig) Enabled() bool { return s.Endpoint != "" }

// WorkerConfig 控制导出任务的消费。
type WorkerConfig struct {
	Concurrency int `mapstructure:"concurrency"`
	MaxRetry    int `mapstructure:"max_retry"`
}

// DSN builds a lib/pq compatible connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host,
		d.Port,
		d.User,
		d.Password,
		d.Name,
		d.SSLMode,
	)
}

// Load reads configuration from environment variables (with optional defaults).
// A .env file in the working directory is loaded first when present; variables
// already set in the environment win.
func Load() (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if err := bindEnv(v); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// MustLoad wraps Load and panics on failure.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("load %s: %w", path, err)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.port", 8080)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "resume_editor")
	v.SetDefault("database.user", "resume_editor")
	v.SetDefault("database.password", "resume_editor")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("auth.public_key_path", "keys/public.pem")
	v.SetDefault("auth.private_key_path", "")
	v.SetDefault("auth.access_token_ttl", 15*time.Minute)
	v.SetDefault("share.public_base_url", "http://localhost:3000")
	v.SetDefault("share.slug_retries", 5)
	v.SetDefault("share.public_rate_limit_per_minute", 60)
	v.SetDefault("editor.autosave_delay", 2*time.Second)
	v.SetDefault("editor.sync_throttle", time.Second)
	v.SetDefault("editor.history_limit", 50)
	v.SetDefault("editor.api_base_url", "http://localhost:8080")
	v.SetDefault("editor.api_token", "")
	v.SetDefault("api.allowed_origins", "")
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.public_endpoint", "")
	v.SetDefault("storage.access_key_id", "")
	v.SetDefault("storage.secret_access_key", "")
	v.SetDefault("storage.use_ssl", false)
	v.SetDefault("storage.bucket", "resume-exports")
	v.SetDefault("storage.region", "")
	v.SetDefault("worker.concurrency", 4)
	v.SetDefault("worker.max_retry", 3)
}

func bindEnv(v *viper.Viper) error {
	mappings := map[string]string{
		"api.port":                           "API_PORT",
		"database.host":                      "DATABASE_HOST",
		"database.port":                      "DATABASE_PORT",
		"database.name":                      "POSTGRES_DB",
		"database.user":                      "POSTGRES_USER",
		"database.password":                  "POSTGRES_PASSWORD",
		"database.sslmode":                   "DATABASE_SSLMODE",
		"redis.host":                         "REDIS_HOST",
		"redis.port":                         "REDIS_PORT",
		"auth.public_key_path":               "AUTH_PUBLIC_KEY_PATH",
		"auth.private_key_path":              "AUTH_PRIVATE_KEY_PATH",
		"auth.access_token_ttl":              "AUTH_ACCESS_TOKEN_TTL",
		"share.public_base_url":              "SHARE_PUBLIC_BASE_URL",
		"share.slug_retries":                 "SHARE_SLUG_RETRIES",
		"share.public_rate_limit_per_minute": "SHARE_PUBLIC_RATE_LIMIT_PER_MINUTE",
		"editor.autosave_delay":              "EDITOR_AUTOSAVE_DELAY",
		"editor.sync_throttle":               "EDITOR_SYNC_THROTTLE",
		"editor.history_limit":               "EDITOR_HISTORY_LIMIT",
		"editor.api_base_url":                "EDITOR_API_BASE_URL",
		"editor.api_token":                   "EDITOR_API_TOKEN",
		"api.allowed_origins":                "API_ALLOWED_ORIGINS",
		"storage.endpoint":                   "MINIO_ENDPOINT",
		"storage.public_endpoint":            "MINIO_PUBLIC_ENDPOINT",
		"storage.access_key_id":              "MINIO_ACCESS_KEY_ID",
		"storage.secret_access_key":          "MINIO_SECRET_ACCESS_KEY",
		"storage.use_ssl":                    "MINIO_USE_SSL",
		"storage.bucket":                     "MINIO_BUCKET",
		"storage.region":                     "MINIO_REGION",
		"worker.concurrency":                 "WORKER_CONCURRENCY",
		"worker.max_retry":                   "WORKER_MAX_RETRY",
	}

	for key, env := range mappings {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("bind %s to %s: %w", key, env, err)
		}
	}

	return nil
}

func validate(cfg Config) error {
	if cfg.API.Port <= 0 {
		return errors.New("api port must be positive")
	}
	if cfg.Database.Host == "" {
		return errors.New("database host is required")
	}
	if cfg.Database.Port <= 0 {
		return errors.New("database port must be positive")
	}
	if cfg.Database.Name == "" {
		return errors.New("database name is required")
	}
	if cfg.Database.User == "" {
		return errors.New("database user is required")
	}
	if cfg.Database.Password == "" {
		return errors.New("database password is required")
	}
	if cfg.Database.SSLMode == "" {
		return errors.New("database sslmode is required")
	}
	if cfg.Redis.Host == "" {
		return errors.New("redis host is required")
	}
	if cfg.Redis.Port <= 0 {
		return errors.New("redis port must be positive")
	}
	if cfg.Auth.PublicKeyPath == "" {
		return errors.New("auth public key path is required")
	}
	if cfg.Auth.AccessTokenTTL <= 0 {
		return errors.New("auth access token ttl must be positive")
	}
	if !strings.HasPrefix(cfg.Share.PublicBaseURL, "http://") && !strings.HasPrefix(cfg.Share.PublicBaseURL, "https://") {
		return errors.New("share public base url must be http(s)")
	}
	if cfg.Share.SlugRetries <= 0 {
		return errors.New("share slug retries must be positive")
	}
	if cfg.Share.PublicRateLimit <= 0 {
		return errors.New("share public rate limit must be positive")
	}
	if cfg.Editor.AutoSaveDelay <= 0 {
		return errors.New("editor autosave delay must be positive")
	}
	if cfg.Editor.SyncThrottle <= 0 {
		return errors.New("editor sync throttle must be positive")
	}
	if cfg.Editor.HistoryLimit <= 0 {
		return errors.New("editor history limit must be positive")
	}
	if cfg.Storage.Enabled() {
		if cfg.Storage.AccessKeyID == "" || cfg.Storage.SecretAccessKey == "" {
			return errors.New("storage credentials are required when storage endpoint is set")
		}
		if cfg.Storage.Bucket == "" {
			return errors.New("storage bucket is required")
		}
	}
	if cfg.Worker.Concurrency <= 0 {
		return errors.New("worker concurrency must be positive")
	}
	if cfg.Worker.MaxRetry < 0 {
		return errors.New("worker max retry must not be negative")
	}
	return nil
}
