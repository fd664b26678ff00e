package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "VOYAGO"

	AppEnvDev  = "development"
	AppEnvProd = "production"
)

type Config struct {
	App    AppConfig
	API    APIConfig
	Tokens TokenStoreConfig
	Dev    DevServerConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env      string `envconfig:"VOYAGO_APP_ENV" default:"development"`
	LogLevel string `envconfig:"VOYAGO_LOG_LEVEL" default:"info"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// APIConfig drives the outbound gateway.
type APIConfig struct {
	BaseURL   string        `envconfig:"VOYAGO_API_BASE_URL" default:"http://localhost:8000"`
	Timeout   time.Duration `envconfig:"VOYAGO_API_TIMEOUT" default:"30s"`
	ShowError bool          `envconfig:"VOYAGO_API_SHOW_ERRORS" default:"true"`
}

// TokenStoreConfig locates the persisted token bundle.
type TokenStoreConfig struct {
	Path string `envconfig:"VOYAGO_TOKEN_PATH"`
}

// DevServerConfig configures the local development backend only; the SDK
// itself never reads these values.
type DevServerConfig struct {
	Port              string `envconfig:"VOYAGO_DEV_PORT" default:"8000"`
	DBPath            string `envconfig:"VOYAGO_DEV_DB_PATH" default:"voyago-dev.db"`
	JWTSecret         string `envconfig:"VOYAGO_DEV_JWT_SECRET" default:"voyago-dev-secret"`
	JWTIssuer         string `envconfig:"VOYAGO_DEV_JWT_ISSUER" default:"voyago-dev"`
	ExpirationMinutes int    `envconfig:"VOYAGO_DEV_JWT_EXPIRATION_MINUTES" default:"60"`
}

// JWT maps the dev-server settings onto the token signing config.
func (d DevServerConfig) JWT() JWTConfig {
	return JWTConfig{
		Secret:            d.JWTSecret,
		Issuer:            d.JWTIssuer,
		ExpirationMinutes: d.ExpirationMinutes,
	}
}

type JWTConfig struct {
	Secret            string
	Issuer            string
	ExpirationMinutes int
}
