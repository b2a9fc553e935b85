package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Env       string `env:"ATONGANI_ENV, default=development"`
	LogLevel  string `env:"LOG_LEVEL,    default=info"`
	LogPretty bool   `env:"LOG_PRETTY,   default=true"`
	LogFile   string `env:"LOG_FILE"`

	API     APIConfig
	Session SessionConfig
	Poll    PollConfig
	Console ConsoleConfig
	Mongo   MongoConfig
	Redis   RedisConfig
}

// APIConfig points the client at the marketplace backend.
type APIConfig struct {
	BaseURL   string        `env:"API_URL,        default=http://localhost:8000"`
	LoginPath string        `env:"API_LOGIN_PATH, default=/api/auth/login/"`
	Timeout   time.Duration `env:"API_TIMEOUT,    default=10s"`
}

// SessionConfig selects where the access token is persisted.
type SessionConfig struct {
	Backend string        `env:"SESSION_BACKEND, default=file"`
	File    string        `env:"SESSION_FILE"`
	Key     string        `env:"SESSION_KEY,     default=accessToken"`
	Secret  string        `env:"SESSION_SECRET"`
	TTL     time.Duration `env:"SESSION_TTL,     default=0s"`
}

type PollConfig struct {
	Interval time.Duration `env:"POLL_INTERVAL, default=5s"`
	Timeout  time.Duration `env:"POLL_TIMEOUT,  default=10s"`
	Workers  int           `env:"NOTIFY_WORKERS, default=4"`
}

type ConsoleConfig struct {
	Port string `env:"CONSOLE_PORT, default=8080"`
}

type MongoConfig struct {
	Enabled  bool   `env:"MONGO_ENABLED, default=false"`
	URI      string `env:"MONGO_URI,     default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,      default=atongani"`
}

type RedisConfig struct {
	Enabled  bool   `env:"REDIS_ENABLED,  default=false"`
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

const (
	SessionBackendFile   = "file"
	SessionBackendRedis  = "redis"
	SessionBackendMemory = "memory"
)

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints envconfig cannot express.
func (c *Config) Validate() error {
	switch c.Session.Backend {
	case SessionBackendFile, SessionBackendMemory:
	case SessionBackendRedis:
		if !c.Redis.Enabled {
			return fmt.Errorf("config: SESSION_BACKEND=redis requires REDIS_ENABLED=true")
		}
	default:
		return fmt.Errorf("config: unknown SESSION_BACKEND %q", c.Session.Backend)
	}
	if c.Poll.Interval <= 0 {
		return fmt.Errorf("config: POLL_INTERVAL must be positive")
	}
	return nil
}
