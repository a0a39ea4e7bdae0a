package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	tempDir := t.TempDir()

	originalWD, err := os.Getwd()
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Chdir(originalWD) })

	require.NoError(t, os.Chdir(tempDir))
	return tempDir
}

func TestLoadConfig_HappyPath(t *testing.T) {
	tempDir := chdirTemp(t)

	tempConfigsSubDir := filepath.Join(tempDir, "configs")
	require.NoError(t, os.Mkdir(tempConfigsSubDir, 0755))

	testAppName := "TestLedger"
	testPort := 9090
	testLogLevel := "debug"
	testKafkaBrokers := "kafka1:9092,kafka2:9092"

	envContent := fmt.Sprintf(
		"APP_NAME=%s\nSERVER_PORT=%d\nLOG_LEVEL=%s\nKAFKA_BROKERS=%s\nLEDGER_SEED_FILE=chart.yaml\n",
		testAppName, testPort, testLogLevel, testKafkaBrokers,
	)
	err := os.WriteFile(filepath.Join(tempConfigsSubDir, "test_happy.env"), []byte(envContent), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig("test_happy")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, testAppName, cfg.Application.Name)
	assert.Equal(t, testPort, cfg.Server.Port)
	assert.Equal(t, testLogLevel, cfg.Logging.Level)
	assert.Equal(t, []string{"kafka1:9092", "kafka2:9092"}, cfg.Kafka.BrokerList())
	assert.Equal(t, "chart.yaml", cfg.Ledger.SeedFile)

	assert.Equal(t, "development", cfg.Application.Env)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "journal_entry_submissions", cfg.Kafka.SubmissionTopic)
	assert.Equal(t, "journal_events", cfg.Kafka.EventTopic)
	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoDB.URI)
	assert.Equal(t, 10, cfg.WorkerPool.Size)
	assert.False(t, cfg.Ledger.PostedOnlyReports)

	cfgWithName, err := LoadConfigWithName("configs/test_happy")
	require.NoError(t, err)
	assert.Equal(t, testAppName, cfgWithName.Application.Name)

	cfgWithNameAndType, err := LoadConfigWithNameAndType("configs/test_happy", "env")
	require.NoError(t, err)
	assert.Equal(t, testAppName, cfgWithNameAndType.Application.Name)
}

func TestLoadConfig_DotEnvPreload(t *testing.T) {
	tempDir := chdirTemp(t)
	t.Setenv("APP_ENV", "")
	os.Unsetenv("APP_ENV")

	err := os.WriteFile(filepath.Join(tempDir, ".env"), []byte("APP_ENV=staging\n"), 0644)
	require.NoError(t, err)
	t.Cleanup(func() { os.Unsetenv("APP_ENV") })

	cfg, err := LoadConfig("missing")
	require.NoError(t, err)
	assert.Equal(t, "staging", cfg.Application.Env)
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	chdirTemp(t)
	t.Setenv("WORKER_POOL_SIZE", "32")
	t.Setenv("OUTBOX_BATCH_SIZE", "7")

	cfg, err := LoadConfig("missing")
	require.NoError(t, err)
	assert.Equal(t, 32, cfg.WorkerPool.Size)
	assert.Equal(t, 7, cfg.Outbox.BatchSize)
}

func TestConfig_Validate_HappyPath(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	cfg := fromViper(v)
	assert.NoError(t, cfg.validate(), "Default config should be valid")
}

func TestConfig_Validate_AggregatesErrors(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	cfg := fromViper(v)
	cfg.Server.Port = 0
	cfg.Kafka.Brokers = " , "
	cfg.Postgres.MinConns = 50
	cfg.WorkerPool.Size = 0

	err := cfg.validate()
	require.Error(t, err)
	msg := err.Error()
	for _, want := range []string{
		"SERVER_PORT must be greater than 0",
		"KAFKA_BROKERS is required",
		"POSTGRES_MIN_CONNS must not exceed POSTGRES_MAX_CONNS",
		"WORKER_POOL_SIZE must be greater than 0",
	} {
		assert.True(t, strings.Contains(msg, want), "missing %q in %q", want, msg)
	}
}
