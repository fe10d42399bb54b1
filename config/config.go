package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v9"
)

type Config struct {
	// Server Configuration
	HTTPServer HTTPServerConfig
	Logger     LoggerConfig

	// Environment Configuration
	Environment EnvironmentConfig

	// Live notification engine
	Poller     PollerConfig
	Dispatcher DispatcherConfig
	Bilibili   BilibiliConfig
	OneBot     OneBotConfig
	Safety     SafetyConfig

	// Persistence
	Storage StorageConfig
	Redis   RedisConfig
	MinIO   MinIOConfig

	// Authentication & Security Configuration
	JWT       JWTConfig
	RateLimit RateLimitConfig

	// Monitoring & Notification Configuration
	Discord DiscordConfig
}

// HTTPServerConfig is the configuration for the admin API server
type HTTPServerConfig struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port int    `env:"HTTP_PORT" envDefault:"8080"`
}

// LoggerConfig is the configuration for the logger
type LoggerConfig struct {
	Level        string `env:"LOGGER_LEVEL" envDefault:"info"`
	Mode         string `env:"LOGGER_MODE" envDefault:"production"`
	Encoding     string `env:"LOGGER_ENCODING" envDefault:"json"`
	ColorEnabled bool   `env:"LOGGER_COLOR_ENABLED" envDefault:"true"`
}

// EnvironmentConfig is the configuration for environment-aware features
type EnvironmentConfig struct {
	Name string `env:"ENV" envDefault:"production"`
}

type PollerConfig struct {
	Interval     time.Duration `env:"POLL_INTERVAL" envDefault:"30s"`
	Backoff      time.Duration `env:"POLL_BACKOFF" envDefault:"5s"`
	FetchTimeout time.Duration `env:"POLL_FETCH_TIMEOUT" envDefault:"10s"`
}

type DispatcherConfig struct {
	SendDelay time.Duration `env:"DISPATCH_SEND_DELAY" envDefault:"500ms"`
}

type BilibiliConfig struct {
	BaseURL string        `env:"BILIBILI_BASE_URL" envDefault:"https://api.live.bilibili.com"`
	Timeout time.Duration `env:"BILIBILI_TIMEOUT" envDefault:"10s"`
}

// OneBotConfig is the forward websocket endpoint of the bot runtime
type OneBotConfig struct {
	URL            string        `env:"ONEBOT_URL" envDefault:"ws://127.0.0.1:6700"`
	AccessToken    string        `env:"ONEBOT_ACCESS_TOKEN"`
	WriteTimeout   time.Duration `env:"ONEBOT_WRITE_TIMEOUT" envDefault:"10s"`
	RequestTimeout time.Duration `env:"ONEBOT_REQUEST_TIMEOUT" envDefault:"15s"`
	MinBackoff     time.Duration `env:"ONEBOT_MIN_BACKOFF" envDefault:"1s"`
	MaxBackoff     time.Duration `env:"ONEBOT_MAX_BACKOFF" envDefault:"1m"`
}

// SafetyConfig locates the sensitive word list. An empty path reads it from
// the storage backend instead.
type SafetyConfig struct {
	WordListPath string `env:"SAFETY_WORD_LIST_PATH"`
}

// Storage backends.
const (
	StorageFile  = "file"
	StorageRedis = "redis"

	BackupNone  = "none"
	BackupLocal = "local"
	BackupMinIO = "minio"
)

type StorageConfig struct {
	Backend     string `env:"STORAGE_BACKEND" envDefault:"file"`
	DataDir     string `env:"STORAGE_DATA_DIR" envDefault:"./data"`
	RedisPrefix string `env:"STORAGE_REDIS_PREFIX" envDefault:"livenotify"`
	Backup      string `env:"STORAGE_BACKUP" envDefault:"local"`
	BackupDir   string `env:"STORAGE_BACKUP_DIR" envDefault:"./data/backup"`
}

// RedisConfig is the configuration for Redis
// Note: Only standalone mode is supported
type RedisConfig struct {
	Host        string        `env:"REDIS_HOST" envDefault:"localhost"`
	Port        int           `env:"REDIS_PORT" envDefault:"6379"`
	Password    string        `env:"REDIS_PASSWORD"`
	DB          int           `env:"REDIS_DB" envDefault:"0"`
	MaxRetries  int           `env:"REDIS_MAX_RETRIES" envDefault:"3"`
	PoolSize    int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	DialTimeout time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
}

type MinIOConfig struct {
	Endpoint  string `env:"MINIO_ENDPOINT" envDefault:"localhost:9000"`
	AccessKey string `env:"MINIO_ACCESS_KEY"`
	SecretKey string `env:"MINIO_SECRET_KEY"`
	UseSSL    bool   `env:"MINIO_USE_SSL" envDefault:"false"`
	Region    string `env:"MINIO_REGION" envDefault:"us-east-1"`
	Bucket    string `env:"MINIO_BUCKET" envDefault:"livenotify-backup"`
	Prefix    string `env:"MINIO_PREFIX" envDefault:"state"`
}

// JWTConfig is the configuration for the JWT
type JWTConfig struct {
	SecretKey string        `env:"JWT_SECRET_KEY"`
	Issuer    string        `env:"JWT_ISSUER" envDefault:"livenotify-srv"`
	TTL       time.Duration `env:"JWT_TTL" envDefault:"24h"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64       `env:"RATE_LIMIT_RPS" envDefault:"5"`
	Burst             int           `env:"RATE_LIMIT_BURST" envDefault:"20"`
	IdleTTL           time.Duration `env:"RATE_LIMIT_IDLE_TTL" envDefault:"10m"`
}

// DiscordConfig is the configuration for Discord webhook notifications
type DiscordConfig struct {
	WebhookURL string `env:"DISCORD_WEBHOOK_URL"`
}

// Load loads the configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	switch cfg.Storage.Backend {
	case StorageFile, StorageRedis:
	default:
		return fmt.Errorf("STORAGE_BACKEND must be %q or %q, got %q", StorageFile, StorageRedis, cfg.Storage.Backend)
	}
	switch cfg.Storage.Backup {
	case BackupNone, BackupLocal, BackupMinIO:
	default:
		return fmt.Errorf("STORAGE_BACKUP must be %q, %q or %q, got %q", BackupNone, BackupLocal, BackupMinIO, cfg.Storage.Backup)
	}
	if cfg.Storage.Backup == BackupMinIO && cfg.MinIO.Bucket == "" {
		return fmt.Errorf("MINIO_BUCKET is required for minio backups")
	}
	if cfg.OneBot.URL == "" {
		return fmt.Errorf("ONEBOT_URL is required")
	}
	return nil
}

// ValidateServer checks the settings only the HTTP API needs. The one-shot
// modes skip it.
func (c *Config) ValidateServer() error {
	if len(c.JWT.SecretKey) < 32 {
		return fmt.Errorf("JWT_SECRET_KEY must be at least 32 characters")
	}
	if c.HTTPServer.Port <= 0 {
		return fmt.Errorf("HTTP_PORT is required")
	}
	return nil
}
