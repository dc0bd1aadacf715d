package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	StoreMemory = "memory"
	StoreMongo  = "mongo"
	StoreSQL    = "sql"
)

type Config struct {
	Port           string        `env:"PORT,            default=8080"`
	Env            string        `env:"ENV,             default=development"`
	LogLevel       string        `env:"LOG_LEVEL,       default=info"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT, default=15s"`

	// CORSOrigins is a comma-separated allow list; empty disables CORS.
	CORSOrigins []string `env:"CORS_ORIGINS"`

	Session SessionConfig
	Store   StoreConfig
	Mongo   MongoConfig
	SQL     SQLConfig
	Redis   RedisConfig
	AMQP    AMQPConfig
	Login   LoginConfig
}

type SessionConfig struct {
	JWTSecret  string        `env:"JWT_SECRET"`
	TTL        time.Duration `env:"SESSION_TTL,    default=8h"`
	CookieName string        `env:"SESSION_COOKIE, default=SESSION"`
	BcryptCost int           `env:"BCRYPT_COST,    default=10"`
}

type StoreConfig struct {
	Driver       string `env:"STORE_DRIVER,  default=mongo"`
	DemoFixtures bool   `env:"DEMO_FIXTURES, default=false"`
	DemoPassword string `env:"DEMO_PASSWORD, default=password"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=hospital"`
}

type SQLConfig struct {
	Dialect string `env:"SQL_DIALECT, default=sqlite"`
	DSN     string `env:"SQL_DSN,     default=file:hospital.db?_pragma=foreign_keys(1)"`
}

// RedisConfig leaves Addr empty to keep session state in memory.
type RedisConfig struct {
	Addr string `env:"REDIS_ADDR"`
	DB   int    `env:"REDIS_DB, default=0"`
}

// AMQPConfig leaves URL empty to log notifications instead of publishing.
type AMQPConfig struct {
	URL     string `env:"AMQP_URL"`
	Queue   string `env:"AMQP_QUEUE,     default=hospital.appointments"`
	Workers int    `env:"NOTIFY_WORKERS, default=4"`
}

type LoginConfig struct {
	MaxAttempts int           `env:"LOGIN_MAX_ATTEMPTS, default=5"`
	Window      time.Duration `env:"LOGIN_WINDOW,       default=15m"`
}

// Load reads an optional .env file and then the environment. Variables
// already set in the environment win over the file.
func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: read .env: %w", err)
	}
	return FromLookuper(ctx, envconfig.OsLookuper())
}

// FromLookuper processes the configuration from an arbitrary source.
func FromLookuper(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// IsDevelopment reports whether the service runs in the development profile.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, EnvDevelopment)
}

// Validate rejects settings the service cannot start with.
func (c *Config) Validate() error {
	var errs []error

	switch c.Store.Driver {
	case StoreMemory, StoreMongo, StoreSQL:
	default:
		errs = append(errs, fmt.Errorf("STORE_DRIVER must be one of memory, mongo, sql (got %q)", c.Store.Driver))
	}
	if c.Store.Driver == StoreSQL {
		switch c.SQL.Dialect {
		case "sqlite", "postgres", "mysql":
		default:
			errs = append(errs, fmt.Errorf("SQL_DIALECT must be one of sqlite, postgres, mysql (got %q)", c.SQL.Dialect))
		}
		if c.SQL.DSN == "" {
			errs = append(errs, errors.New("SQL_DSN is required for the sql store"))
		}
	}
	if c.Session.JWTSecret == "" && !c.IsDevelopment() {
		errs = append(errs, errors.New("JWT_SECRET is required outside development"))
	}
	if c.Session.TTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}
	if c.Session.CookieName == "" {
		errs = append(errs, errors.New("SESSION_COOKIE must not be empty"))
	}
	if c.Login.MaxAttempts <= 0 || c.Login.Window <= 0 {
		errs = append(errs, errors.New("LOGIN_MAX_ATTEMPTS and LOGIN_WINDOW must be positive"))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("REQUEST_TIMEOUT must be positive"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}
