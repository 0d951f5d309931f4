package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	LogLevel    string

	// Currency is the hotel's base currency; all amounts are expressed in it.
	Currency      string
	SnowflakeNode int64

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int

	// DBMetrics exports connection pool stats through prometheus.
	DBMetrics bool

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	OtelEnabled       bool
	OTLPEndpoint      string
	OTLPProtocol      string
	OtelSamplingRatio float64

	Invoice    InvoiceConfig
	NightAudit NightAuditConfig
}

type InvoiceConfig struct {
	// DepartmentScopedTaxes makes ad hoc invoicing skip tax configurations
	// whose AppliesTo list excludes the line's department.
	DepartmentScopedTaxes bool
	PaymentTermsDays      int
	SeedDefaultTaxes      bool
}

type NightAuditConfig struct {
	Enabled          bool
	RunInterval      time.Duration
	DayRollover      time.Duration
	Timeout          time.Duration
	LockTTL          time.Duration
	PostedBy         string
	FinalizeInvoices bool
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		AppName:           getenv("APP_SERVICE", "hotelpms"),
		AppVersion:        getenv("APP_VERSION", "0.1.0"),
		Environment:       getenv("ENVIRONMENT", "development"),
		LogLevel:          strings.ToLower(getenv("LOG_LEVEL", "info")),
		Currency:          strings.ToUpper(getenv("HOTEL_CURRENCY", "LKR")),
		SnowflakeNode:     getenvInt64("SNOWFLAKE_NODE", 1),
		DBType:            getenv("DATABASE_TYPE", "postgres"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "hotelpms"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:     int(getenvInt64("DATABASE_MAX_IDLE_CONN", 5)),
		DBMaxOpenConn:     int(getenvInt64("DATABASE_MAX_OPEN_CONN", 20)),
		DBConnMaxLifetime: int(getenvInt64("DATABASE_CONN_MAX_LIFETIME", 300)),
		DBConnMaxIdleTime: int(getenvInt64("DATABASE_CONN_MAX_IDLE_TIME", 60)),
		DBMetrics:         getenvBool("DATABASE_METRICS", false),
		RedisAddr:         strings.TrimSpace(getenv("REDIS_ADDR", "localhost:6379")),
		RedisPassword:     getenv("REDIS_PASSWORD", ""),
		RedisDB:           int(getenvInt64("REDIS_DB", 0)),
		OtelEnabled:       getenvBool("OTEL_ENABLED", false),
		OTLPEndpoint:      strings.TrimSpace(getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317")),
		OTLPProtocol:      strings.ToLower(strings.TrimSpace(getenv("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc"))),
		OtelSamplingRatio: getenvFloat("OTEL_SAMPLING_RATIO", 1),
		Invoice: InvoiceConfig{
			DepartmentScopedTaxes: getenvBool("INVOICE_TAX_DEPARTMENT_SCOPE", true),
			PaymentTermsDays:      int(getenvInt64("INVOICE_PAYMENT_TERMS_DAYS", 0)),
			SeedDefaultTaxes:      getenvBool("SEED_DEFAULT_TAXES", true),
		},
		NightAudit: NightAuditConfig{
			Enabled:          getenvBool("NIGHT_AUDIT_ENABLED", true),
			RunInterval:      getenvDuration("NIGHT_AUDIT_INTERVAL", time.Minute),
			DayRollover:      getenvDuration("NIGHT_AUDIT_DAY_ROLLOVER", 6*time.Hour),
			Timeout:          getenvDuration("NIGHT_AUDIT_TIMEOUT", 10*time.Minute),
			LockTTL:          getenvDuration("NIGHT_AUDIT_LOCK_TTL", 30*time.Minute),
			PostedBy:         getenv("NIGHT_AUDIT_POSTED_BY", "night-audit"),
			FinalizeInvoices: getenvBool("NIGHT_AUDIT_FINALIZE_INVOICES", false),
		},
	}
}

func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt64(key string, def int64) int64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return def
	}
	return parsed
}

func getenvFloat(key string, def float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}
	return parsed
}

func getenvDuration(key string, def time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := time.ParseDuration(value)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}
