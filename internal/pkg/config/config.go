package config

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`
	Debug    bool   `env:"DEBUG,     default=false"`

	JWT      JWTConfig
	Security SecurityConfig
	Mongo    MongoConfig
	Postgres PostgresConfig
	Redis    RedisConfig
}

type JWTConfig struct {
	Secret        string `env:"JWT_SECRET"`
	RefreshSecret string `env:"REFRESH_JWT_SECRET"`
	// Lifetimes are given in seconds: 2 hours for access tokens, 14 days for
	// refresh tokens.
	ExpirySeconds        int64 `env:"JWT_EXPIRY,         default=7200"`
	RefreshExpirySeconds int64 `env:"REFRESH_JWT_EXPIRY, default=1209600"`
}

func (c JWTConfig) Expiry() time.Duration {
	return time.Duration(c.ExpirySeconds) * time.Second
}

func (c JWTConfig) RefreshExpiry() time.Duration {
	return time.Duration(c.RefreshExpirySeconds) * time.Second
}

type SecurityConfig struct {
	Strictness    string `env:"SECURITY_STRICTNESS,     default=full"`
	RetentionDays int    `env:"SECURITY_RETENTION_DAYS, default=30"`

	// Budgets use the form "max/windowSeconds", e.g. "5/900" is five attempts
	// per fifteen minutes.
	APILimit      string `env:"RATE_LIMIT_API,      default=100/3600"`
	LoginLimit    string `env:"RATE_LIMIT_LOGIN,    default=5/900"`
	RegisterLimit string `env:"RATE_LIMIT_REGISTER, default=3/3600"`
	OTPLimit      string `env:"RATE_LIMIT_OTP,      default=5/3600"`
}

func (c SecurityConfig) Retention() time.Duration {
	return time.Duration(c.RetentionDays) * 24 * time.Hour
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=sims"`
}

type PostgresConfig struct {
	DSN string `env:"POSTGRES_DSN, default=postgres://localhost:5432/sims?sslmode=disable"`
}

type RedisConfig struct {
	// Addr empty leaves Redis out entirely; rate limiting then runs on Postgres.
	Addr string `env:"REDIS_ADDR"`
	DB   int    `env:"REDIS_DB, default=0"`
}

// Rate is a parsed attempt budget.
type Rate struct {
	Max    int
	Window time.Duration
}

// ParseRate parses the "max/windowSeconds" budget form.
func ParseRate(s string) (Rate, error) {
	left, right, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok {
		return Rate{}, fmt.Errorf("rate %q: want max/windowSeconds", s)
	}
	max, err := strconv.Atoi(left)
	if err != nil || max <= 0 {
		return Rate{}, fmt.Errorf("rate %q: bad max", s)
	}
	secs, err := strconv.Atoi(right)
	if err != nil || secs <= 0 {
		return Rate{}, fmt.Errorf("rate %q: bad window", s)
	}
	return Rate{Max: max, Window: time.Duration(secs) * time.Second}, nil
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
