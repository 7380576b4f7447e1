// File: internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the client application.
type Config struct {
	// Application
	AppEnv      string        `mapstructure:"APP_ENV"`
	LogLevel    string        `mapstructure:"LOG_LEVEL"`
	LogFormat   string        `mapstructure:"LOG_FORMAT"`
	HTTPTimeout time.Duration `mapstructure:"HTTP_TIMEOUT_SECONDS"`

	// Backend API
	APIBaseURL       string  `mapstructure:"API_BASE_URL"`
	RequestRateLimit float64 `mapstructure:"REQUEST_RATE_LIMIT"`
	RequestRateBurst int     `mapstructure:"REQUEST_RATE_BURST"`

	// Identity provider (Identity Toolkit REST surface)
	IdentityAPIKey    string `mapstructure:"IDENTITY_API_KEY"`
	IdentityProjectID string `mapstructure:"IDENTITY_PROJECT_ID"`
	IdentityBaseURL   string `mapstructure:"IDENTITY_BASE_URL"`
	SecureTokenURL    string `mapstructure:"SECURE_TOKEN_URL"`

	// Federated sign-in (Google OAuth)
	GoogleClientID     string `mapstructure:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `mapstructure:"GOOGLE_CLIENT_SECRET"`

	// Loopback callback server for browser round-trips
	CallbackHost string `mapstructure:"CALLBACK_HOST"`
	CallbackPort string `mapstructure:"CALLBACK_PORT"`

	// Credential refresh job
	TokenRefreshSchedule string `mapstructure:"TOKEN_REFRESH_SCHEDULE"`

	// Local persisted state (theme preference etc.)
	LocalStorePath string `mapstructure:"LOCAL_STORE_PATH"`

	// Third-party delivery keys, passed through to the backend where needed.
	EmailDeliveryKey string `mapstructure:"EMAIL_DELIVERY_KEY"`
	ImageHostKey     string `mapstructure:"IMAGE_HOST_KEY"`
}

// Load attempts to load configuration from a .env file (if present) and environment variables.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	v := viper.New()

	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")
	v.SetDefault("HTTP_TIMEOUT_SECONDS", 30)

	v.SetDefault("API_BASE_URL", "http://localhost:5000")
	v.SetDefault("REQUEST_RATE_LIMIT", 20.0)
	v.SetDefault("REQUEST_RATE_BURST", 10)

	v.SetDefault("IDENTITY_BASE_URL", "https://identitytoolkit.googleapis.com/v1")
	v.SetDefault("SECURE_TOKEN_URL", "https://securetoken.googleapis.com/v1/token")
	v.SetDefault("IDENTITY_API_KEY", "")
	v.SetDefault("IDENTITY_PROJECT_ID", "")

	v.SetDefault("GOOGLE_CLIENT_ID", "")
	v.SetDefault("GOOGLE_CLIENT_SECRET", "")

	v.SetDefault("CALLBACK_HOST", "127.0.0.1")
	v.SetDefault("CALLBACK_PORT", "8910")

	// ID tokens expire after an hour; refresh a little ahead of that.
	v.SetDefault("TOKEN_REFRESH_SCHEDULE", "@every 50m")

	v.SetDefault("LOCAL_STORE_PATH", "scholarhub.db")

	v.SetDefault("EMAIL_DELIVERY_KEY", "")
	v.SetDefault("IMAGE_HOST_KEY", "")

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling configuration: %w", err)
	}

	cfg.HTTPTimeout = time.Duration(v.GetInt("HTTP_TIMEOUT_SECONDS")) * time.Second

	// Basic validation for critical configs
	if strings.TrimSpace(cfg.APIBaseURL) == "" {
		return nil, fmt.Errorf("FATAL: API_BASE_URL is not set. The client cannot reach the marketplace backend without it")
	}
	if strings.TrimSpace(cfg.IdentityAPIKey) == "" {
		return nil, fmt.Errorf("FATAL: IDENTITY_API_KEY is not set. This is required to reach the identity provider")
	}

	return &cfg, nil
}

// CallbackAddr returns the listen address of the loopback callback server.
func (c *Config) CallbackAddr() string {
	return fmt.Sprintf("%s:%s", c.CallbackHost, c.CallbackPort)
}

// CallbackBaseURL returns the externally visible base URL of the loopback server.
func (c *Config) CallbackBaseURL() string {
	return fmt.Sprintf("http://%s:%s", c.CallbackHost, c.CallbackPort)
}
