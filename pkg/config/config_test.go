package config_test

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/pkg/config"
)

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := config.FromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, config.StoreDriverPostgres, cfg.App.StoreDriver)
	assert.False(t, cfg.Kafka.Enabled())
	assert.False(t, cfg.Redis.Enabled())
	assert.Equal(t, time.Minute, cfg.Scheduler.ReservationSweep)
	assert.Equal(t, "0.8", cfg.Ledger.ABCCutoffA.String())
	assert.Equal(t, 365, cfg.Ledger.ABCWindowDays)
	assert.False(t, cfg.Ledger.AllowNegativeAdjustments)
}

func TestFromViper_Valores(t *testing.T) {
	v := viper.New()
	v.Set("STORE_DRIVER", "memory")
	v.Set("KAFKA_BROKERS", "k1:9092, k2:9092")
	v.Set("REDIS_ADDR", "localhost:6379")
	v.Set("REDIS_TTL_SECONDS", "5")
	v.Set("SCHEDULER_COMPANIES", "c1,c2")
	v.Set("ABC_CUTOFF_A", "0.7")
	v.Set("LEDGER_ALLOW_NEGATIVE_ADJUSTMENTS", true)

	cfg, err := config.FromViper(v)
	require.NoError(t, err)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 5*time.Second, cfg.Redis.TTL)
	assert.Equal(t, []string{"c1", "c2"}, cfg.Scheduler.Companies)
	assert.Equal(t, "0.7", cfg.Ledger.ABCCutoffA.String())
	assert.True(t, cfg.Ledger.AllowNegativeAdjustments)
}

func TestFromViper_DriverInvalido(t *testing.T) {
	v := viper.New()
	v.Set("STORE_DRIVER", "sqlite")
	_, err := config.FromViper(v)
	assert.Error(t, err)
}

func TestFromViper_CortesInvalidos(t *testing.T) {
	v := viper.New()
	v.Set("ABC_CUTOFF_A", "0.9")
	v.Set("ABC_CUTOFF_B", "0.5")
	_, err := config.FromViper(v)
	assert.Error(t, err)
}
