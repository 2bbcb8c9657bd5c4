package config

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func isolateEnv(t *testing.T) {
	t.Helper()
	t.Setenv("APP_ENV", "test")
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("AWS_SECRET_NAME", "")
}

func TestLoad_Defaults(t *testing.T) {
	isolateEnv(t)
	t.Setenv("STORE_DATA_FILE", "")
	t.Setenv("SMTP_HOST", "")
	t.Setenv("BACKUP_SCHEDULE", "")

	cfg, err := Load(discardLogger())
	require.NoError(t, err)

	assert.Equal(t, "test", cfg.App.Environment)
	assert.Equal(t, "inventory.json", cfg.Store.DataFile)
	assert.Equal(t, "@every 1h", cfg.Asynq.BackupSchedule)
	assert.Equal(t, map[string]int{"critical": 6, "default": 3, "low": 1}, cfg.Asynq.Queues)
	assert.False(t, cfg.Notifications.EmailEnabled())
	assert.False(t, cfg.IsProduction())
	assert.False(t, cfg.IsDevelopment())
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	isolateEnv(t)
	t.Setenv("APP_ENV", "staging")
	t.Setenv("STORE_DATA_FILE", "/var/lib/stock/inventory.json")
	t.Setenv("REDIS_ENABLED", "false")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("RATE_LIMIT_DURATION", "30s")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("ALERT_RECIPIENTS", "ops@example.com, buyer@example.com,")
	t.Setenv("BACKUP_SCHEDULE", "0 3 * * *")

	cfg, err := Load(discardLogger())
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/stock/inventory.json", cfg.Store.DataFile)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, "cache:6380", cfg.GetRedisAddress())
	assert.Equal(t, "cache:6380", cfg.Asynq.RedisAddr)
	assert.Equal(t, "0.0.0.0:9090", cfg.GetServerAddress())
	assert.Equal(t, 30*time.Second, cfg.Security.RateLimitDuration)
	assert.Equal(t, []string{"ops@example.com", "buyer@example.com"}, cfg.Notifications.Recipients)
	assert.True(t, cfg.Notifications.EmailEnabled())
	assert.Equal(t, "0 3 * * *", cfg.Asynq.BackupSchedule)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "stock.yaml")
	require.NoError(t, os.WriteFile(file, []byte("store_data_file: /srv/stock/data.json\nserver_port: \"7070\"\n"), 0o644))

	isolateEnv(t)
	t.Setenv("CONFIG_FILE", file)
	t.Setenv("STORE_DATA_FILE", "")
	t.Setenv("SERVER_PORT", "")

	cfg, err := Load(discardLogger())
	require.NoError(t, err)

	assert.Equal(t, "/srv/stock/data.json", cfg.Store.DataFile)
	assert.Equal(t, "7070", cfg.Server.Port)
}

func TestLoad_MissingConfigFile(t *testing.T) {
	isolateEnv(t)
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := Load(discardLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name     string
		env      map[string]string
		errorMsg string
	}{
		{
			name:     "rate_limit_must_be_positive",
			env:      map[string]string{"RATE_LIMIT_REQUESTS": "0"},
			errorMsg: "rate_limit_requests must be positive",
		},
		{
			name:     "smtp_without_recipients",
			env:      map[string]string{"SMTP_HOST": "smtp.example.com", "ALERT_RECIPIENTS": ""},
			errorMsg: "ALERT_RECIPIENTS is required",
		},
		{
			name:     "bad_backup_schedule",
			env:      map[string]string{"BACKUP_SCHEDULE": "sometimes"},
			errorMsg: "invalid backup schedule",
		},
		{
			name:     "placeholder_data_file",
			env:      map[string]string{"STORE_DATA_FILE": "MISSING_DATA_FILE"},
			errorMsg: "Store.DataFile",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolateEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load(discardLogger())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorMsg)
		})
	}
}

func validProductionConfig() *Config {
	return &Config{
		App:            AppConfig{Name: "stock-api", Environment: "production"},
		Store:          StoreConfig{DataFile: "/var/lib/stock/inventory.json"},
		Redis:          RedisConfig{Enabled: true, PoolSize: 10},
		FileProcessing: FileProcessingConfig{ExcelMaxSizeMB: 10, PDFMaxSizeMB: 10},
		Security: SecurityConfig{
			RateLimitRequests: 100,
			AllowedOrigins:    []string{"https://stock.example.com"},
			SecureHeaders:     true,
		},
		Server: ServerConfig{Port: "8080"},
	}
}

func TestConfig_Validate_Production(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*Config)
		errorMsg string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{
			name:     "wildcard_origin",
			mutate:   func(c *Config) { c.Security.AllowedOrigins = []string{"*"} },
			errorMsg: "wildcard origin",
		},
		{
			name:     "relative_data_file",
			mutate:   func(c *Config) { c.Store.DataFile = "inventory.json" },
			errorMsg: "absolute path",
		},
		{
			name:     "secure_headers_disabled",
			mutate:   func(c *Config) { c.Security.SecureHeaders = false },
			errorMsg: "secure headers",
		},
		{
			name:     "placeholder_smtp_password",
			mutate:   func(c *Config) { c.Notifications.SMTPPassword = "MISSING_SMTP" },
			errorMsg: "SMTP password",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validProductionConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.errorMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorMsg)
		})
	}
}

func TestApplySecrets(t *testing.T) {
	t.Setenv("REDIS_PASSWORD", "from-secrets")
	t.Setenv("SMTP_PASSWORD", "mail-secret")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "")

	cfg := &Config{AWS: AWSConfig{SecretAccessKey: "kept"}}
	require.NoError(t, ApplySecrets(context.Background(), cfg, NewEnvSecretsManager()))

	assert.Equal(t, "from-secrets", cfg.Redis.Password)
	assert.Equal(t, "from-secrets", cfg.Asynq.RedisPassword)
	assert.Equal(t, "mail-secret", cfg.Notifications.SMTPPassword)
	assert.Equal(t, "kept", cfg.AWS.SecretAccessKey)
}

func TestNotificationsConfig_EmailEnabled(t *testing.T) {
	assert.False(t, NotificationsConfig{}.EmailEnabled())
	assert.False(t, NotificationsConfig{SMTPHost: "smtp"}.EmailEnabled())
	assert.False(t, NotificationsConfig{Recipients: []string{"a@b"}}.EmailEnabled())
	assert.True(t, NotificationsConfig{SMTPHost: "smtp", Recipients: []string{"a@b"}}.EmailEnabled())
}

func TestParseQueues(t *testing.T) {
	assert.Equal(t, map[string]int{"critical": 6, "low": 1}, parseQueues("critical:6, low:1"))
	assert.Equal(t, map[string]int{"default": 1}, parseQueues("garbage"))
}
