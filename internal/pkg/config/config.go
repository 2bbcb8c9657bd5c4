// internal/pkg/config/config.go
package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ErrMissingRequiredConfig is returned when a required setting is empty or still a placeholder
var ErrMissingRequiredConfig = errors.New("missing required configuration")

// Config holds all application configuration
type Config struct {
	App            AppConfig
	Store          StoreConfig
	Redis          RedisConfig
	Asynq          AsynqConfig
	AWS            AWSConfig
	Notifications  NotificationsConfig
	FileProcessing FileProcessingConfig
	Security       SecurityConfig
	Server         ServerConfig
}

// AppConfig holds application-specific configuration
type AppConfig struct {
	Name        string `required:"true"`
	Environment string // development, staging, production
	Version     string
	LogLevel    string
	LogFormat   string // json, text
	Debug       bool
}

// StoreConfig locates the inventory data file
type StoreConfig struct {
	DataFile  string `required:"true"`
	BackupDir string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Enabled      bool
	Host         string
	Port         string
	Password     string
	DB           int
	MaxRetries   int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolSize     int
	MinIdleConns int
	TTL          time.Duration
}

// AsynqConfig holds Asynq configuration
type AsynqConfig struct {
	Enabled         bool
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	Concurrency     int
	Queues          map[string]int // queue name -> priority
	StrictPriority  bool
	ShutdownTimeout time.Duration
	BackupSchedule  string // cron expression or "@every <duration>"
}

// AWSConfig holds AWS configuration
type AWSConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	S3Bucket        string // empty keeps backups on local disk
	S3Endpoint      string // For MinIO in development
	UsePathStyle    bool
	SecretName      string // Secrets Manager overlay, optional
}

// NotificationsConfig configures low stock alert delivery
type NotificationsConfig struct {
	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	From         string
	Recipients   []string
}

// EmailEnabled reports whether alerts can be mailed
func (n NotificationsConfig) EmailEnabled() bool {
	return n.SMTPHost != "" && len(n.Recipients) > 0
}

// FileProcessingConfig holds import size limits
type FileProcessingConfig struct {
	PDFMaxSizeMB   int
	ExcelMaxSizeMB int
}

// SecurityConfig holds security configuration
type SecurityConfig struct {
	RateLimitRequests int
	RateLimitDuration time.Duration
	AllowedOrigins    []string
	SecureHeaders     bool
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string `required:"true"`
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	RequestTimeout  time.Duration
	MaxHeaderBytes  int
	GracefulTimeout time.Duration
}

// Load builds the configuration from the environment, an optional CONFIG_FILE
// and, when AWS_SECRET_NAME is set, AWS Secrets Manager
func Load(logger *slog.Logger) (*Config, error) {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	// Load .env file in development
	if env == "development" || env == "local" {
		if err := godotenv.Load(); err != nil {
			logger.Warn("no .env file found, using environment variables",
				slog.String("error", err.Error()))
		} else {
			logger.Info(".env file loaded successfully")
		}
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if file := os.Getenv("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
		logger.Info("config file loaded", slog.String("file", v.ConfigFileUsed()))
	}

	cfg := build(&reader{v: v}, env)

	if cfg.AWS.SecretName != "" {
		sm, err := NewAWSSecretsManager(cfg.AWS.Region, cfg.AWS.SecretName, logger)
		if err != nil {
			return nil, err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := ApplySecrets(ctx, cfg, sm); err != nil {
			return nil, fmt.Errorf("failed to apply secrets: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func build(r *reader, env string) *Config {
	redisHost := r.str("REDIS_HOST", "localhost")
	redisPort := r.str("REDIS_PORT", "6379")

	return &Config{
		App: AppConfig{
			Name:        r.str("APP_NAME", "stock-api"),
			Environment: env,
			Version:     r.str("APP_VERSION", "dev"),
			LogLevel:    r.str("LOG_LEVEL", "debug"),
			LogFormat:   r.str("LOG_FORMAT", "json"),
			Debug:       r.boolean("APP_DEBUG", env == "development"),
		},
		Store: StoreConfig{
			DataFile:  r.str("STORE_DATA_FILE", "inventory.json"),
			BackupDir: r.str("STORE_BACKUP_DIR", "backups"),
		},
		Redis: RedisConfig{
			Enabled:      r.boolean("REDIS_ENABLED", true),
			Host:         redisHost,
			Port:         redisPort,
			Password:     r.str("REDIS_PASSWORD", ""),
			DB:           r.integer("REDIS_DB", 0),
			MaxRetries:   r.integer("REDIS_MAX_RETRIES", 3),
			DialTimeout:  r.duration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  r.duration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: r.duration("REDIS_WRITE_TIMEOUT", 3*time.Second),
			PoolSize:     r.integer("REDIS_POOL_SIZE", 10),
			MinIdleConns: r.integer("REDIS_MIN_IDLE_CONNS", 2),
			TTL:          r.duration("REDIS_TTL", 5*time.Minute),
		},
		Asynq: AsynqConfig{
			Enabled:         r.boolean("ASYNQ_ENABLED", true),
			RedisAddr:       fmt.Sprintf("%s:%s", redisHost, redisPort),
			RedisPassword:   r.str("REDIS_PASSWORD", ""),
			RedisDB:         r.integer("ASYNQ_REDIS_DB", 0),
			Concurrency:     r.integer("ASYNQ_CONCURRENCY", 10),
			Queues:          parseQueues(r.str("ASYNQ_QUEUES", "critical:6,default:3,low:1")),
			StrictPriority:  r.boolean("ASYNQ_STRICT_PRIORITY", false),
			ShutdownTimeout: r.duration("ASYNQ_SHUTDOWN_TIMEOUT", 30*time.Second),
			BackupSchedule:  r.str("BACKUP_SCHEDULE", "@every 1h"),
		},
		AWS: AWSConfig{
			Region:          r.str("AWS_REGION", "us-east-1"),
			AccessKeyID:     r.str("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: r.str("AWS_SECRET_ACCESS_KEY", ""),
			S3Bucket:        r.str("AWS_S3_BUCKET", ""),
			S3Endpoint:      r.str("AWS_S3_ENDPOINT", ""),
			UsePathStyle:    r.boolean("AWS_S3_PATH_STYLE", env == "development"),
			SecretName:      r.str("AWS_SECRET_NAME", ""),
		},
		Notifications: NotificationsConfig{
			SMTPHost:     r.str("SMTP_HOST", ""),
			SMTPPort:     r.str("SMTP_PORT", "587"),
			SMTPUsername: r.str("SMTP_USERNAME", ""),
			SMTPPassword: r.str("SMTP_PASSWORD", ""),
			From:         r.str("SMTP_FROM", "stock@localhost"),
			Recipients:   r.slice("ALERT_RECIPIENTS", nil),
		},
		FileProcessing: FileProcessingConfig{
			PDFMaxSizeMB:   r.integer("PDF_MAX_SIZE_MB", 20),
			ExcelMaxSizeMB: r.integer("EXCEL_MAX_SIZE_MB", 20),
		},
		Security: SecurityConfig{
			RateLimitRequests: r.integer("RATE_LIMIT_REQUESTS", 100),
			RateLimitDuration: r.duration("RATE_LIMIT_DURATION", time.Minute),
			AllowedOrigins:    r.slice("ALLOWED_ORIGINS", []string{"*"}),
			SecureHeaders:     r.boolean("SECURE_HEADERS", env == "production"),
		},
		Server: ServerConfig{
			Host:            r.str("SERVER_HOST", "0.0.0.0"),
			Port:            r.str("SERVER_PORT", "8080"),
			ReadTimeout:     r.duration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    r.duration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:     r.duration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			RequestTimeout:  r.duration("SERVER_REQUEST_TIMEOUT", 25*time.Second),
			MaxHeaderBytes:  r.integer("SERVER_MAX_HEADER_BYTES", 1<<20), // 1 MB
			GracefulTimeout: r.duration("SERVER_GRACEFUL_TIMEOUT", 30*time.Second),
		},
	}
}

// Validate runs the basic checks and, in production, the strict ones
func (c *Config) Validate() error {
	if err := (&BasicValidator{}).Validate(c); err != nil {
		return err
	}
	if c.IsProduction() {
		return (&ProductionValidator{}).Validate(c)
	}
	return nil
}

// GetServerAddress returns the formatted server address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}

// GetRedisAddress returns host:port for the cache client
func (c *Config) GetRedisAddress() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

// IsProduction returns true if running in production
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// IsDevelopment returns true if running in development
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development" || c.App.Environment == "local"
}

// reader resolves keys through viper so that values may come from the
// environment or from CONFIG_FILE
type reader struct {
	v *viper.Viper
}

func (r *reader) str(key, defaultValue string) string {
	if value := strings.TrimSpace(r.v.GetString(key)); value != "" {
		return value
	}
	return defaultValue
}

func (r *reader) boolean(key string, defaultValue bool) bool {
	if value := r.v.GetString(key); value != "" {
		b, err := strconv.ParseBool(value)
		if err == nil {
			return b
		}
	}
	return defaultValue
}

func (r *reader) integer(key string, defaultValue int) int {
	if value := r.v.GetString(key); value != "" {
		i, err := strconv.Atoi(value)
		if err == nil {
			return i
		}
	}
	return defaultValue
}

func (r *reader) duration(key string, defaultValue time.Duration) time.Duration {
	if value := r.v.GetString(key); value != "" {
		d, err := time.ParseDuration(value)
		if err == nil {
			return d
		}
	}
	return defaultValue
}

func (r *reader) slice(key string, defaultValue []string) []string {
	value := r.v.GetString(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseQueues(queuesStr string) map[string]int {
	queues := make(map[string]int)
	pairs := strings.Split(queuesStr, ",")
	for _, pair := range pairs {
		parts := strings.Split(pair, ":")
		if len(parts) == 2 {
			name := strings.TrimSpace(parts[0])
			priority, err := strconv.Atoi(strings.TrimSpace(parts[1]))
			if err == nil {
				queues[name] = priority
			}
		}
	}
	if len(queues) == 0 {
		queues["default"] = 1
	}
	return queues
}
