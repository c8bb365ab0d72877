package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix namespaces every environment variable the service reads.
const EnvPrefix = "STOREFRONT"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App           AppConfig
	Mongo         MongoConfig
	Redis         RedisConfig
	Session       SessionConfig
	AuthRateLimit AuthRateLimitConfig
	Square        SquareConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"STOREFRONT_APP_ENV" required:"true"`
	Port         string `envconfig:"STOREFRONT_APP_PORT" default:"3000"`
	BaseURL      string `envconfig:"STOREFRONT_APP_BASE_URL" default:"http://localhost:3000"`
	LogLevel     string `envconfig:"STOREFRONT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"STOREFRONT_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type MongoConfig struct {
	URI             string        `envconfig:"STOREFRONT_MONGO_URI" required:"true"`
	Database        string        `envconfig:"STOREFRONT_MONGO_DATABASE" default:"online-shop"`
	ConnectTimeout  time.Duration `envconfig:"STOREFRONT_MONGO_CONNECT_TIMEOUT" default:"10s"`
	MaxPoolSize     uint64        `envconfig:"STOREFRONT_MONGO_MAX_POOL_SIZE" default:"20"`
	MinPoolSize     uint64        `envconfig:"STOREFRONT_MONGO_MIN_POOL_SIZE" default:"2"`
	MaxConnIdleTime time.Duration `envconfig:"STOREFRONT_MONGO_MAX_CONN_IDLE_TIME" default:"5m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"STOREFRONT_REDIS_URL"`
	Address      string        `envconfig:"STOREFRONT_REDIS_ADDR"`
	Password     string        `envconfig:"STOREFRONT_REDIS_PASSWORD"`
	DB           int           `envconfig:"STOREFRONT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STOREFRONT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STOREFRONT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"STOREFRONT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type SessionConfig struct {
	CookieName    string        `envconfig:"STOREFRONT_SESSION_COOKIE_NAME" default:"sid"`
	TTL           time.Duration `envconfig:"STOREFRONT_SESSION_TTL" default:"48h"`
	SecureCookies bool          `envconfig:"STOREFRONT_SESSION_SECURE_COOKIES" default:"false"`
}

type AuthRateLimitConfig struct {
	LoginWindow      time.Duration `envconfig:"STOREFRONT_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit  int           `envconfig:"STOREFRONT_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit     int           `envconfig:"STOREFRONT_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	SignupWindow     time.Duration `envconfig:"STOREFRONT_AUTH_RATE_LIMIT_SIGNUP_WINDOW" default:"5m"`
	SignupEmailLimit int           `envconfig:"STOREFRONT_AUTH_RATE_LIMIT_SIGNUP_EMAIL_LIMIT" default:"3"`
	SignupIPLimit    int           `envconfig:"STOREFRONT_AUTH_RATE_LIMIT_SIGNUP_IP_LIMIT" default:"20"`
}

type SquareConfig struct {
	AccessToken string `envconfig:"STOREFRONT_SQUARE_ACCESS_TOKEN"`
	Env         string `envconfig:"STOREFRONT_SQUARE_ENV" default:"sandbox"`
	LocationID  string `envconfig:"STOREFRONT_SQUARE_LOCATION_ID"`
	Currency    string `envconfig:"STOREFRONT_SQUARE_CURRENCY" default:"USD"`
}

// Environment returns the normalized Square environment (sandbox/production).
func (s SquareConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "sandbox"
	}
	return env
}
