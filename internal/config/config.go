package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration values
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	RabbitMQ RabbitMQConfig
	JWT      JWTConfig
	Webhook  WebhookConfig
	Email    EmailConfig
	Prices   PriceConfig
	Crypto   CryptoConfig
	Security SecurityConfig
	Plans    PlanConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port               string
	Env                string
	CORSAllowedOrigins []string
}

// IsProduction reports whether the server runs in production mode.
func (c ServerConfig) IsProduction() bool {
	return c.Env == "production"
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// URL returns the database connection URL
func (c DatabaseConfig) URL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     c.Host + ":" + strconv.Itoa(c.Port),
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=" + c.SSLMode,
	}
	return u.String()
}

// RedisConfig holds Redis configuration. An empty URL selects in-memory stores.
type RedisConfig struct {
	URL      string
	Password string
}

// RabbitMQConfig holds RabbitMQ configuration. An empty URL disables event publishing.
type RabbitMQConfig struct {
	URL      string
	Exchange string
}

// JWTConfig holds identity token configuration
type JWTConfig struct {
	Secret       string
	Issuer       string
	AccessExpiry time.Duration
}

// WebhookConfig holds payment processor webhook configuration
type WebhookConfig struct {
	Secret string
}

// EmailConfig holds transactional email configuration
type EmailConfig struct {
	ResendAPIKey string
	From         string
	AdminEmail   string
	DashboardURL string
}

// PriceConfig holds upstream price API configuration
type PriceConfig struct {
	APIURL          string
	APIKey          string
	UserAgent       string
	CacheTTL        time.Duration
	HTTPTimeout     time.Duration
	RefreshInterval time.Duration
}

// CryptoConfig holds manual crypto payment configuration
type CryptoConfig struct {
	Wallets  map[string]string
	QuoteTTL time.Duration
}

// SecurityConfig holds security encryption keys
type SecurityConfig struct {
	CredentialsEncryptionKey string
}

// PlanConfig points at an optional plan catalog file
type PlanConfig struct {
	CatalogFile string
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:               getEnv("SERVER_PORT", "8080"),
			Env:                getEnv("SERVER_ENV", "development"),
			CORSAllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "propdesk"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
		},
		RabbitMQ: RabbitMQConfig{
			URL:      getEnv("RABBITMQ_URL", ""),
			Exchange: getEnv("RABBITMQ_EXCHANGE", "challenge_events"),
		},
		JWT: JWTConfig{
			Secret:       getEnv("JWT_SECRET", "change-this-in-production"),
			Issuer:       getEnv("JWT_ISSUER", ""),
			AccessExpiry: getEnvAsDuration("JWT_ACCESS_EXPIRY", time.Hour),
		},
		Webhook: WebhookConfig{
			Secret: getEnv("WHOP_WEBHOOK_SECRET", ""),
		},
		Email: EmailConfig{
			ResendAPIKey: getEnv("RESEND_API_KEY", ""),
			From:         getEnv("EMAIL_FROM", "PropDesk <noreply@propdesk.local>"),
			AdminEmail:   getEnv("ADMIN_EMAIL", "ops@propdesk.local"),
			DashboardURL: getEnv("DASHBOARD_URL", "http://localhost:3000/dashboard"),
		},
		Prices: PriceConfig{
			APIURL:          getEnv("PRICE_API_URL", "https://api.coingecko.com/api/v3"),
			APIKey:          getEnv("PRICE_API_KEY", ""),
			UserAgent:       getEnv("PRICE_API_USER_AGENT", "propdesk-backend/1.0"),
			CacheTTL:        getEnvAsDuration("PRICE_CACHE_TTL", 5*time.Minute),
			HTTPTimeout:     getEnvAsDuration("PRICE_HTTP_TIMEOUT", 10*time.Second),
			RefreshInterval: getEnvAsDuration("PRICE_REFRESH_INTERVAL", 5*time.Minute),
		},
		Crypto: CryptoConfig{
			Wallets: map[string]string{
				"BTC":  getEnv("CRYPTO_WALLET_BTC", ""),
				"ETH":  getEnv("CRYPTO_WALLET_ETH", ""),
				"USDT": getEnv("CRYPTO_WALLET_USDT", ""),
				"USDC": getEnv("CRYPTO_WALLET_USDC", ""),
			},
			QuoteTTL: getEnvAsDuration("CRYPTO_QUOTE_TTL", 30*time.Minute),
		},
		Security: SecurityConfig{
			CredentialsEncryptionKey: getEnv("CREDENTIALS_ENCRYPTION_KEY", "0000000000000000000000000000000000000000000000000000000000000000"), // 32-bytes hex string
		},
		Plans: PlanConfig{
			CatalogFile: getEnv("PLAN_CATALOG_FILE", ""),
		},
	}
}

// Validate rejects configurations that must not reach production.
func (c *Config) Validate() error {
	if !c.Server.IsProduction() {
		return nil
	}
	if c.Webhook.Secret == "" {
		return fmt.Errorf("WHOP_WEBHOOK_SECRET is required in production")
	}
	if c.JWT.Secret == "" || c.JWT.Secret == "change-this-in-production" {
		return fmt.Errorf("JWT_SECRET must be set in production")
	}
	if strings.Trim(c.Security.CredentialsEncryptionKey, "0") == "" {
		return fmt.Errorf("CREDENTIALS_ENCRYPTION_KEY must be set in production")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
