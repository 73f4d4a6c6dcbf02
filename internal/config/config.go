package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration values
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Gateway  GatewayConfig
	Escrow   EscrowConfig
	Events   EventsConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
	Env  string
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// DatabaseConfig holds database configuration. Driver is postgres or sqlite;
// for sqlite DSN is the file path (or ":memory:").
type DatabaseConfig struct {
	Driver   string
	DSN      string
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// URL returns the database connection URL. An explicit DSN wins.
func (c DatabaseConfig) URL() string {
	if c.DSN != "" {
		return c.DSN
	}
	if c.Driver == DriverSQLite {
		return "pharmapool.db"
	}
	return "postgres://" + c.User + ":" + c.Password + "@" + c.Host + ":" + strconv.Itoa(c.Port) + "/" + c.DBName + "?sslmode=" + c.SSLMode
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	URL      string
	Password string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret       string
	AccessExpiry time.Duration
}

// GatewayConfig selects the payment provider and holds its credentials
type GatewayConfig struct {
	Provider string
	Currency string
	Timeout  time.Duration

	PaystackSecretKey        string
	PaystackBaseURL          string
	PaystackSettlementBank   string
	PaystackAccountNumber    string
	PaystackPercentageCharge float64

	RazorpayKeyID     string
	RazorpayKeySecret string
}

// EscrowConfig holds wallet engine tuning
type EscrowConfig struct {
	DefaultRequiredPartners int
	LockRetries             int
	ReconcileInterval       time.Duration
	ReconcileAge            time.Duration
	ReconcileBatch          int
}

// EventsConfig holds the wallet event channel
type EventsConfig struct {
	Enabled bool
	Channel string
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Env:  getEnv("SERVER_ENV", "development"),
		},
		Database: DatabaseConfig{
			Driver:   getEnv("DB_DRIVER", DriverPostgres),
			DSN:      getEnv("DB_DSN", ""),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "pharmapool"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", "redis://localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
		},
		JWT: JWTConfig{
			Secret:       getEnv("JWT_SECRET", "change-this-in-production"),
			AccessExpiry: getEnvAsDuration("JWT_ACCESS_EXPIRY", 24*time.Hour),
		},
		Gateway: GatewayConfig{
			Provider: getEnv("PAYMENT_PROVIDER", "paystack"),
			Currency: getEnv("PAYMENT_CURRENCY", "NGN"),
			Timeout:  getEnvAsDuration("PAYMENT_TIMEOUT", 15*time.Second),

			PaystackSecretKey:        getEnv("PAYSTACK_SECRET_KEY", ""),
			PaystackBaseURL:          getEnv("PAYSTACK_BASE_URL", "https://api.paystack.co"),
			PaystackSettlementBank:   getEnv("PAYSTACK_SETTLEMENT_BANK", ""),
			PaystackAccountNumber:    getEnv("PAYSTACK_ACCOUNT_NUMBER", ""),
			PaystackPercentageCharge: getEnvAsFloat("PAYSTACK_PERCENTAGE_CHARGE", 0),

			RazorpayKeyID:     getEnv("RAZORPAY_KEY_ID", ""),
			RazorpayKeySecret: getEnv("RAZORPAY_KEY_SECRET", ""),
		},
		Escrow: EscrowConfig{
			DefaultRequiredPartners: getEnvAsInt("ESCROW_DEFAULT_REQUIRED_PARTNERS", 1),
			LockRetries:             getEnvAsInt("ESCROW_LOCK_RETRIES", 3),
			ReconcileInterval:       getEnvAsDuration("ESCROW_RECONCILE_INTERVAL", time.Minute),
			ReconcileAge:            getEnvAsDuration("ESCROW_RECONCILE_AGE", 10*time.Minute),
			ReconcileBatch:          getEnvAsInt("ESCROW_RECONCILE_BATCH", 50),
		},
		Events: EventsConfig{
			Enabled: getEnvAsBool("EVENTS_ENABLED", true),
			Channel: getEnv("EVENTS_CHANNEL", "pharmapool:wallet-events"),
		},
	}
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

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
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
