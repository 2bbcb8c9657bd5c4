// internal/pkg/config/validators.go
package config

import (
	"fmt"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/robfig/cron/v3"
)

// BasicValidator performs basic configuration validation
type BasicValidator struct{}

// Validate performs basic validation
func (v *BasicValidator) Validate(cfg *Config) error {
	if err := validateRequiredFields(cfg); err != nil {
		return err
	}

	if cfg.Redis.Enabled && cfg.Redis.PoolSize <= 0 {
		return fmt.Errorf("redis pool_size must be positive")
	}

	if cfg.Security.RateLimitRequests <= 0 {
		return fmt.Errorf("rate_limit_requests must be positive")
	}

	if cfg.FileProcessing.ExcelMaxSizeMB <= 0 || cfg.FileProcessing.PDFMaxSizeMB <= 0 {
		return fmt.Errorf("file size limits must be positive")
	}

	if cfg.Asynq.Enabled {
		if cfg.Asynq.Concurrency <= 0 {
			return fmt.Errorf("asynq concurrency must be positive")
		}
		if _, err := cron.ParseStandard(cfg.Asynq.BackupSchedule); err != nil {
			return fmt.Errorf("invalid backup schedule %q: %w", cfg.Asynq.BackupSchedule, err)
		}
	}

	if cfg.Notifications.SMTPHost != "" && len(cfg.Notifications.Recipients) == 0 {
		return fmt.Errorf("%w: ALERT_RECIPIENTS is required when SMTP_HOST is set", ErrMissingRequiredConfig)
	}

	return nil
}

// ProductionValidator performs strict validation for production environments
type ProductionValidator struct{}

// Validate performs production-specific validation
func (v *ProductionValidator) Validate(cfg *Config) error {
	if strings.Contains(cfg.Redis.Password, "MISSING_") {
		return fmt.Errorf("%w: redis password", ErrMissingRequiredConfig)
	}

	if strings.Contains(cfg.Notifications.SMTPPassword, "MISSING_") {
		return fmt.Errorf("%w: SMTP password", ErrMissingRequiredConfig)
	}

	if !filepath.IsAbs(cfg.Store.DataFile) {
		return fmt.Errorf("data file must be an absolute path in production")
	}

	if !cfg.Security.SecureHeaders {
		return fmt.Errorf("secure headers must be enabled in production")
	}

	if len(cfg.Security.AllowedOrigins) == 0 {
		return fmt.Errorf("allowed origins must be configured in production")
	}

	for _, origin := range cfg.Security.AllowedOrigins {
		if origin == "*" {
			return fmt.Errorf("wildcard origin (*) not allowed in production")
		}
	}

	return nil
}

// validateRequiredFields uses reflection to check required struct tags
func validateRequiredFields(cfg interface{}) error {
	v := reflect.ValueOf(cfg)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	return validateStruct(v, "")
}

func validateStruct(v reflect.Value, prefix string) error {
	t := v.Type()

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)
		fieldName := fieldType.Name

		if prefix != "" {
			fieldName = prefix + "." + fieldName
		}

		if required := fieldType.Tag.Get("required"); required == "true" {
			if isZeroValue(field) {
				return fmt.Errorf("%w: %s", ErrMissingRequiredConfig, fieldName)
			}
		}

		if field.Kind() == reflect.Struct {
			if err := validateStruct(field, fieldName); err != nil {
				return err
			}
		}
	}

	return nil
}

func isZeroValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return v.String() == "" || strings.HasPrefix(v.String(), "MISSING_")
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Slice, reflect.Map:
		return v.IsNil() || v.Len() == 0
	case reflect.Ptr, reflect.Interface:
		return v.IsNil()
	default:
		return false
	}
}
