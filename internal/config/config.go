package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	// DebugModeEnv is the environment variable for debug mode.
	DebugModeEnv = "DEBUG_MODE"

	// DBHostEnv is the environment variable for database host.
	DBHostEnv = "DB_HOST"

	// DBPortEnv is the environment variable for database port.
	DBPortEnv = "DB_PORT"

	// DBUserEnv is the environment variable for database user.
	DBUserEnv = "DB_USER"

	// DBPassEnv is the environment variable for database password.
	DBPassEnv = "DB_PASS"

	// DBNameEnv is the environment variable for database name.
	DBNameEnv = "DB_NAME"

	// HTTPServerPortEnv is the environment variable for HTTP server port.
	HTTPServerPortEnv = "HTTP_SERVER_PORT"

	// MetricsServerPortEnv is the environment variable for metrics server port.
	MetricsServerPortEnv = "METRICS_SERVER_PORT"

	// EnvFilePath is the environment variable for .env file path (only for local/test environment).
	EnvFilePath = "ENV_PATH"

	// DefaultEnvFilePath is the default path to the .env file.
	DefaultEnvFilePath = ".env"

	// RedisAddrEnv is the environment variable for the Redis address.
	RedisAddrEnv = "REDIS_ADDR"

	// RedisPasswordEnv is the environment variable for the Redis password.
	RedisPasswordEnv = "REDIS_PASSWORD"

	// RedisDBEnv is the environment variable for the Redis database number.
	RedisDBEnv = "REDIS_DB"

	// AWSRegionEnv is the environment variable for AWS region.
	AWSRegionEnv = "AWS_REGION"

	// AWSEndpointEnv is the environment variable for AWS endpoint.
	AWSEndpointEnv = "AWS_ENDPOINT"

	// SQSQueueURLEnv is the environment variable for the heavy-operation SQS queue URL.
	SQSQueueURLEnv = "SQS_QUEUE_URL"

	// DefaultCurrencyEnv is the environment variable for the default currency code.
	DefaultCurrencyEnv = "DEFAULT_CURRENCY"

	// CurrencyRatesEnv holds the flat exchange rate table as "EUR:0.92,GBP:0.79".
	CurrencyRatesEnv = "CURRENCY_RATES"

	// JWTSecretEnv is the environment variable for the JWT signing secret.
	JWTSecretEnv = "JWT_SECRET"

	// PasswordMinLengthEnv is the environment variable for the password policy minimum length.
	PasswordMinLengthEnv = "PASSWORD_MIN_LENGTH"

	// PasswordHistoryCountEnv is the environment variable for the password history count.
	PasswordHistoryCountEnv = "PASSWORD_HISTORY_COUNT"

	// RateLimitRPSEnv is the environment variable for the API rate limit (requests per second).
	RateLimitRPSEnv = "RATE_LIMIT_RPS"

	// RateLimitBurstEnv is the environment variable for the API rate limit burst size.
	RateLimitBurstEnv = "RATE_LIMIT_BURST"

	// StoragePathEnv is the environment variable for the writable storage directory.
	StoragePathEnv = "STORAGE_PATH"
)

var (
	// ErrMissingConfig is returned when required configuration values are missing.
	ErrMissingConfig = errors.New("missing config data")
)

// Config represents the application configuration.
type Config struct {
	DebugMode     bool
	Database      DB
	Redis         Redis
	HTTPServer    Server
	MetricsServer Server
	AWS           AWSConfig
	Currency      Currency
	Password      PasswordPolicy
	JWTSecret     string
	RateLimit     RateLimit
	StoragePath   string
}

// AWSConfig represents AWS-specific configuration settings.
type AWSConfig struct {
	Region      string
	Endpoint    string
	SQSQueueURL string
}

// DB represents database configuration settings.
type DB struct {
	Host     string
	User     string
	Password string
	Name     string
	Port     string
}

// Redis represents Redis configuration settings.
type Redis struct {
	Addr     string
	Password string
	DB       int
}

// Server represents server configuration settings.
type Server struct {
	Port string
}

// Currency represents the currency configuration: the default code and the
// flat per-currency exchange rate table.
type Currency struct {
	DefaultCode string
	Rates       map[string]string
}

// PasswordPolicy represents the configurable password policy. HistoryCount is
// accepted for compatibility with older deployments but not enforced.
type PasswordPolicy struct {
	MinLength    int
	HistoryCount int
}

// RateLimit represents the API rate limiting settings.
type RateLimit struct {
	RPS   float64
	Burst int
}

func allNonEmpty(keyValues map[string]string) error {
	for key, value := range keyValues {
		if value == "" {
			slog.Error("configuration validation failed", slog.String("key", key), slog.String("error", "value is empty"))
			return fmt.Errorf("%w for key: %s", ErrMissingConfig, key)
		}
	}
	return nil
}

func allNumbers(keyValues map[string]string) error {
	for key, value := range keyValues {
		_, err := strconv.Atoi(value)
		if err != nil {
			slog.Error("configuration validation failed", slog.String("key", key), slog.String("value", value), slog.String("error", err.Error()))
			return fmt.Errorf("invalid number for key %s: %w", key, err)
		}
	}
	return nil
}

func (c *Config) validate() error {
	if err := allNonEmpty(map[string]string{
		DBHostEnv: c.Database.Host,
		DBUserEnv: c.Database.User,
		DBNameEnv: c.Database.Name,
	}); err != nil {
		return fmt.Errorf("database configuration incomplete: %w", err)
	}

	if err := allNonEmpty(map[string]string{
		HTTPServerPortEnv:    c.HTTPServer.Port,
		MetricsServerPortEnv: c.MetricsServer.Port,
	}); err != nil {
		return fmt.Errorf("server port configuration incomplete: %w", err)
	}

	if err := allNumbers(map[string]string{
		DBPortEnv:            c.Database.Port,
		HTTPServerPortEnv:    c.HTTPServer.Port,
		MetricsServerPortEnv: c.MetricsServer.Port,
	}); err != nil {
		return fmt.Errorf("invalid port number: %w", err)
	}

	if err := allNonEmpty(map[string]string{
		RedisAddrEnv:   c.Redis.Addr,
		SQSQueueURLEnv: c.AWS.SQSQueueURL,
		JWTSecretEnv:   c.JWTSecret,
	}); err != nil {
		return fmt.Errorf("service configuration incomplete: %w", err)
	}

	return nil
}

func getEnvAsBool(name string, defaultValue bool) bool {
	if val, err := strconv.ParseBool(os.Getenv(name)); err == nil {
		return val
	}
	return defaultValue
}

func getEnvAsInt(name string, defaultValue int) int {
	if val, err := strconv.Atoi(os.Getenv(name)); err == nil {
		return val
	}
	return defaultValue
}

func getEnvAsFloat(name string, defaultValue float64) float64 {
	if val, err := strconv.ParseFloat(os.Getenv(name), 64); err == nil {
		return val
	}
	return defaultValue
}

func getEnvOrDefault(name, defaultValue string) string {
	if val := os.Getenv(name); val != "" {
		return val
	}
	return defaultValue
}

// parseRates parses a rate table of the form "EUR:0.92,GBP:0.79".
// Malformed entries are skipped with a warning rather than failing startup.
func parseRates(raw string) map[string]string {
	rates := map[string]string{}
	if raw == "" {
		return rates
	}
	for _, pair := range strings.Split(raw, ",") {
		parts := strings.SplitN(strings.TrimSpace(pair), ":", 2)
		if len(parts) != 2 || parts[0] == "" {
			slog.Warn("skipping malformed currency rate entry", slog.String("entry", pair))
			continue
		}
		if _, err := strconv.ParseFloat(parts[1], 64); err != nil {
			slog.Warn("skipping malformed currency rate entry", slog.String("entry", pair), slog.Any("err", err))
			continue
		}
		rates[strings.ToUpper(parts[0])] = parts[1]
	}
	return rates
}

// ApplyEnvFile loads environment variables from the specified .env files.
func ApplyEnvFile(files ...string) error {
	err := godotenv.Load(files...)
	if err != nil {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

// LoadFromEnv loads configuration from environment variables and validates it.
func LoadFromEnv() (*Config, error) {
	envPath := os.Getenv(EnvFilePath)
	if envPath == "" {
		envPath = DefaultEnvFilePath
	}
	err := ApplyEnvFile(envPath)
	if err != nil {
		// just log the error, maybe all envs are set in another way
		slog.Info("failed to load from .env", slog.Any("err", err))
	}

	conf := &Config{
		DebugMode: getEnvAsBool(DebugModeEnv, false),
		Database: DB{
			Host:     os.Getenv(DBHostEnv),
			User:     os.Getenv(DBUserEnv),
			Password: os.Getenv(DBPassEnv),
			Name:     os.Getenv(DBNameEnv),
			Port:     os.Getenv(DBPortEnv),
		},
		Redis: Redis{
			Addr:     os.Getenv(RedisAddrEnv),
			Password: os.Getenv(RedisPasswordEnv),
			DB:       getEnvAsInt(RedisDBEnv, 0),
		},
		HTTPServer: Server{
			Port: os.Getenv(HTTPServerPortEnv),
		},
		MetricsServer: Server{
			Port: os.Getenv(MetricsServerPortEnv),
		},
		AWS: AWSConfig{
			Region:      os.Getenv(AWSRegionEnv),
			Endpoint:    os.Getenv(AWSEndpointEnv),
			SQSQueueURL: os.Getenv(SQSQueueURLEnv),
		},
		Currency: Currency{
			DefaultCode: strings.ToUpper(getEnvOrDefault(DefaultCurrencyEnv, "USD")),
			Rates:       parseRates(os.Getenv(CurrencyRatesEnv)),
		},
		Password: PasswordPolicy{
			MinLength:    getEnvAsInt(PasswordMinLengthEnv, 8),
			HistoryCount: getEnvAsInt(PasswordHistoryCountEnv, 0),
		},
		JWTSecret: os.Getenv(JWTSecretEnv),
		RateLimit: RateLimit{
			RPS:   getEnvAsFloat(RateLimitRPSEnv, 50),
			Burst: getEnvAsInt(RateLimitBurstEnv, 100),
		},
		StoragePath: getEnvOrDefault(StoragePathEnv, os.TempDir()),
	}

	if err := conf.validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return conf, nil
}
