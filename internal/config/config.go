// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strings"
)

// Store drivers accepted in STORE_DRIVER.
const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
	DriverMongo  = "mongo"
)

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable.
type Config struct {
	Env  string // APP_ENV (dev, test, prod)
	Port string // APP_PORT

	StoreDriver  string // STORE_DRIVER: mysql, sqlite or mongo
	AtomicWrites bool   // STORE_ATOMIC_WRITES: run two-step writes in one transaction

	DBUser string
	DBPass string // may be empty
	DBHost string
	DBPort string
	DBName string

	SQLitePath string

	MongoURI string
	MongoDB  string

	JWTSecret        string
	JWTPublicKeyFile string
	JWTIssuer        string
	JWTAudience      string

	PaymentGatewayKey string // empty disables charge intents
	PaymentCurrency   string

	RabbitMQURL string // empty disables lifecycle events

	CORSOrigins []string
	LogLevel    string
}

// Load reads the configuration. Every missing required variable is
// reported in one error.
func Load() (Config, error) {
	var l loader
	cfg := Config{
		Env:          getenv("APP_ENV", "dev"),
		Port:         l.must("APP_PORT"),
		StoreDriver:  strings.ToLower(getenv("STORE_DRIVER", DriverMySQL)),
		AtomicWrites: envBool("STORE_ATOMIC_WRITES", false),

		JWTSecret:        os.Getenv("JWT_SECRET"),
		JWTPublicKeyFile: os.Getenv("JWT_PUBLIC_KEY_FILE"),
		JWTIssuer:        os.Getenv("JWT_ISSUER"),
		JWTAudience:      os.Getenv("JWT_AUDIENCE"),

		PaymentGatewayKey: os.Getenv("PAYMENT_GATEWAY_KEY"),
		PaymentCurrency:   strings.ToLower(getenv("PAYMENT_CURRENCY", "usd")),

		RabbitMQURL: os.Getenv("RABBITMQ_URL"),

		CORSOrigins: splitList(getenv("CORS_ORIGINS", "*")),
		LogLevel:    getenv("LOG_LEVEL", "info"),
	}

	switch cfg.StoreDriver {
	case DriverMySQL:
		cfg.DBUser = l.must("DB_USER")
		cfg.DBPass = os.Getenv("DB_PASS")
		cfg.DBHost = l.must("DB_HOST")
		cfg.DBPort = l.must("DB_PORT")
		cfg.DBName = l.must("DB_NAME")
	case DriverSQLite:
		cfg.SQLitePath = getenv("SQLITE_PATH", "fastshift.db")
	case DriverMongo:
		cfg.MongoURI = l.must("MONGODB_URI")
		cfg.MongoDB = getenv("MONGODB_DB", "fastshiftDB")
	default:
		return Config{}, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}

	if cfg.JWTSecret == "" && cfg.JWTPublicKeyFile == "" {
		l.missing = append(l.missing, "JWT_SECRET or JWT_PUBLIC_KEY_FILE")
	}
	if cfg.AtomicWrites && cfg.StoreDriver == DriverMongo {
		return Config{}, fmt.Errorf("STORE_ATOMIC_WRITES needs a SQL store driver")
	}
	if err := l.err(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// loader collects missing required variables instead of exiting on the
// first one.
type loader struct {
	missing []string
}

func (l *loader) must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		l.missing = append(l.missing, key)
	}
	return v
}

func (l *loader) err() error {
	if len(l.missing) == 0 {
		return nil
	}
	return fmt.Errorf("missing required env vars: %s", strings.Join(l.missing, ", "))
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
