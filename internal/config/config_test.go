// internal/config/config_test.go
package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlatformFeeBp(t *testing.T) {
	cases := map[string]int64{
		"2.5":  250,
		"0":    0,
		"10":   1000,
		"0.01": 1,
	}
	for pct, want := range cases {
		bp, err := PaymentConfig{PlatformFeePercent: pct}.PlatformFeeBp()
		require.NoError(t, err, pct)
		assert.Equal(t, want, bp, pct)
	}

	_, err := PaymentConfig{PlatformFeePercent: "0.005"}.PlatformFeeBp()
	assert.Error(t, err)
	_, err = PaymentConfig{PlatformFeePercent: "two"}.PlatformFeeBp()
	assert.Error(t, err)
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("PLATFORM_FEE_PERCENT", "5")
	t.Setenv("LEDGER_OPERATOR_ADDRESS", "0xABCDEF0000000000000000000000000000000001")
	t.Setenv("DISPUTE_DECISION_WINDOW", "48h")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "0xabcdef0000000000000000000000000000000001", cfg.Ledger.OperatorAddress)
	assert.Equal(t, 48*time.Hour, cfg.Ledger.DecisionWindow)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.Kafka.Enabled())

	bp, err := cfg.Payment.PlatformFeeBp()
	require.NoError(t, err)
	assert.Equal(t, int64(500), bp)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Environment: "development",
			Database:    DatabaseConfig{Driver: "sqlite"},
			Payment:     PaymentConfig{PlatformFeePercent: "2.5"},
			Ledger: LedgerConfig{
				MinArbitratorStake:   1,
				DecisionWindow:       time.Hour,
				NoArbitratorDeadline: time.Hour,
				MaxUpholdQuorum:      3,
			},
		}
	}
	require.NoError(t, valid().Validate())

	cfg := valid()
	cfg.Payment.PlatformFeePercent = "10.01"
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Database.Driver = "mysql"
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Ledger.MaxUpholdQuorum = 0
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Environment = "production"
	cfg.JWT.SecretKey = "your-secret-key-change-in-production"
	assert.Error(t, cfg.Validate())
}

func TestDatabaseDSN(t *testing.T) {
	pg := DatabaseConfig{Driver: "postgres", Host: "db", Port: "5432", User: "sear", Password: "pw", Database: "ledger"}
	assert.Equal(t, "host=db port=5432 user=sear password=pw dbname=ledger sslmode=disable TimeZone=UTC", pg.DSN())

	pg.SSLMode = "require"
	assert.Contains(t, pg.DSN(), "sslmode=require")

	lite := DatabaseConfig{Driver: "sqlite", SQLitePath: "./data/sear.db"}
	assert.Equal(t, "./data/sear.db?_busy_timeout=5000", lite.DSN())

	lite.SQLitePath = "file:ledger.db?mode=memory"
	assert.Equal(t, "file:ledger.db?mode=memory", lite.DSN())
}
