// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	Environment string
	Server      ServerConfig
	Database    DatabaseConfig
	JWT         JWTConfig
	AWS         AWSConfig
	Payment     PaymentConfig
	Ledger      LedgerConfig
	Kafka       KafkaConfig
	Scheduler   SchedulerConfig
	Log         LogConfig
	I18n        I18nConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	ReadTimeout  int
	WriteTimeout int
	IdleTimeout  int

	// RateLimitRPS of zero disables request rate limiting.
	RateLimitRPS   float64
	RateLimitBurst int
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Driver       string // postgres or sqlite
	Host         string
	Port         string
	User         string
	Password     string
	Database     string
	SSLMode      string
	SQLitePath   string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  int
	LogLevel     string
}

type JWTConfig struct {
	SecretKey      string
	AccessTokenTTL int // in hours
}

type AWSConfig struct {
	Region           string
	AccessKeyID      string
	SecretAccessKey  string
	MetadataBucket   string
	MetadataCacheTTL int // in minutes
}

type PaymentConfig struct {
	StripeSecretKey    string
	Currency           string
	PlatformFeePercent string
	FeeCollector       string
}

// PlatformFeeBp converts the configured fee percentage into basis points
// without going through floating point.
func (p PaymentConfig) PlatformFeeBp() (int64, error) {
	pct, err := decimal.NewFromString(p.PlatformFeePercent)
	if err != nil {
		return 0, fmt.Errorf("invalid platform fee percent %q: %w", p.PlatformFeePercent, err)
	}
	bp := pct.Mul(decimal.NewFromInt(100))
	if !bp.Equal(bp.Truncate(0)) {
		return 0, fmt.Errorf("platform fee percent %q is finer than one basis point", p.PlatformFeePercent)
	}
	return bp.IntPart(), nil
}

type LedgerConfig struct {
	OperatorAddress      string
	MinArbitratorStake   int64
	DecisionWindow       time.Duration
	ResolutionCooldown   time.Duration
	NoArbitratorDeadline time.Duration
	MaxUpholdQuorum      int64
	ReputationReward     int64
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0 && k.Topic != ""
}

type SchedulerConfig struct {
	Enabled              bool
	LicenseSweepInterval int // in seconds
	ReconcileInterval    int // in seconds
}

type LogConfig struct {
	Level  string
	Format string
}

type I18nConfig struct {
	DefaultLocale string
}

func Load() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	config := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Port:           getEnv("SERVER_PORT", "8080"),
			Host:           getEnv("SERVER_HOST", "localhost"),
			ReadTimeout:    getEnvAsInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout:   getEnvAsInt("SERVER_WRITE_TIMEOUT", 15),
			IdleTimeout:    getEnvAsInt("SERVER_IDLE_TIMEOUT", 60),
			RateLimitRPS:   getEnvAsFloat("RATE_LIMIT_RPS", 10),
			RateLimitBurst: getEnvAsInt("RATE_LIMIT_BURST", 20),
			AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS"),
		},
		Database: DatabaseConfig{
			Driver:       getEnv("DB_DRIVER", "postgres"),
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", ""),
			Database:     getEnv("DB_NAME", "sear_ledger"),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
			SQLitePath:   getEnv("DB_SQLITE_PATH", "./data/sear.db"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 25),
			MaxLifetime:  getEnvAsInt("DB_MAX_LIFETIME", 300),
			LogLevel:     getEnv("DB_LOG_LEVEL", "silent"),
		},
		JWT: JWTConfig{
			SecretKey:      getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
			AccessTokenTTL: getEnvAsInt("JWT_ACCESS_TTL", 24), // 24 hours
		},
		AWS: AWSConfig{
			Region:           getEnv("AWS_REGION", "us-east-1"),
			AccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
			MetadataBucket:   getEnv("AWS_METADATA_BUCKET", "sear-ip-metadata"),
			MetadataCacheTTL: getEnvAsInt("METADATA_CACHE_TTL", 10),
		},
		Payment: PaymentConfig{
			StripeSecretKey:    getEnv("STRIPE_SECRET_KEY", ""),
			Currency:           getEnv("PAYMENT_CURRENCY", "usd"),
			PlatformFeePercent: getEnv("PLATFORM_FEE_PERCENT", "2.5"),
			FeeCollector:       strings.ToLower(getEnv("PLATFORM_FEE_COLLECTOR", "")),
		},
		Ledger: LedgerConfig{
			OperatorAddress:      strings.ToLower(getEnv("LEDGER_OPERATOR_ADDRESS", "")),
			MinArbitratorStake:   getEnvAsInt64("MIN_ARBITRATOR_STAKE", 1000000000),
			DecisionWindow:       getEnvAsDuration("DISPUTE_DECISION_WINDOW", 7*24*time.Hour),
			ResolutionCooldown:   getEnvAsDuration("RESOLUTION_COOLDOWN", 24*time.Hour),
			NoArbitratorDeadline: getEnvAsDuration("NO_ARBITRATOR_DEADLINE", 7*24*time.Hour),
			MaxUpholdQuorum:      getEnvAsInt64("REQUIRED_UPHOLD_VOTES", 3),
			ReputationReward:     getEnvAsInt64("ARBITRATOR_REPUTATION_REWARD", 10),
		},
		Kafka: KafkaConfig{
			Brokers: getEnvAsList("KAFKA_BROKERS"),
			Topic:   getEnv("KAFKA_TOPIC", "sear.ledger.events"),
		},
		Scheduler: SchedulerConfig{
			Enabled:              getEnvAsBool("SCHEDULER_ENABLED", true),
			LicenseSweepInterval: getEnvAsInt("LICENSE_SWEEP_INTERVAL", 60),
			ReconcileInterval:    getEnvAsInt("RECONCILE_INTERVAL", 300),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
		I18n: I18nConfig{
			DefaultLocale: getEnv("DEFAULT_LOCALE", "en"),
		},
	}

	return config, config.Validate()
}

func (c *Config) Validate() error {
	if c.JWT.SecretKey == "your-secret-key-change-in-production" && c.Environment == "production" {
		return fmt.Errorf("JWT secret key must be changed in production")
	}

	if c.Database.Driver == "postgres" && c.Database.Password == "" && c.Environment == "production" {
		return fmt.Errorf("database password is required in production")
	}

	if c.Database.Driver != "postgres" && c.Database.Driver != "sqlite" {
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}

	feeBp, err := c.Payment.PlatformFeeBp()
	if err != nil {
		return err
	}
	if feeBp < 0 || feeBp > MaxPlatformFeeBp {
		return fmt.Errorf("platform fee must be between 0 and %d basis points, got %d", MaxPlatformFeeBp, feeBp)
	}

	if c.Ledger.MinArbitratorStake <= 0 {
		return fmt.Errorf("minimum arbitrator stake must be positive")
	}

	if c.Ledger.MaxUpholdQuorum < 1 {
		return fmt.Errorf("required uphold votes must be at least 1")
	}

	if c.Ledger.DecisionWindow <= 0 || c.Ledger.ResolutionCooldown < 0 || c.Ledger.NoArbitratorDeadline <= 0 {
		return fmt.Errorf("dispute windows must be positive")
	}

	return nil
}

// MaxPlatformFeeBp caps the platform fee at 10%.
const MaxPlatformFeeBp int64 = 1000

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(strings.ToLower(value)); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvAsList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
