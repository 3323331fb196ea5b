// Package config loads the settings of a binder from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Environment variables read by Load.
const (
	EnvEnvironment      = "INJECT_ENVIRONMENT"
	EnvAppEnvironment   = "APP_ENV"
	EnvLogLevel         = "INJECT_LOG_LEVEL"
	EnvMetrics          = "INJECT_METRICS"
	EnvMetricsNamespace = "INJECT_METRICS_NAMESPACE"
)

// Config holds binder settings.
type Config struct {
	// Environment selects per-environment conventions.
	Environment string `validate:"omitempty,printascii,max=64"`

	// LogLevel is the minimum level of the binder logger. Empty disables logging.
	LogLevel string `validate:"omitempty,oneof=debug info warn error"`

	// Metrics registers resolution metrics with the default Prometheus registerer.
	Metrics bool

	MetricsNamespace string `validate:"omitempty,max=64,metricname"`
}

var (
	validate       = newValidator()
	metricNameExpr = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)
)

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("metricname", func(fl validator.FieldLevel) bool {
		return metricNameExpr.MatchString(fl.Field().String())
	}); err != nil {
		panic(fmt.Sprintf("config: registering metricname validation: %v", err))
	}
	return v
}

// Load reads .env files, then builds a Config from environment variables.
// Without arguments a missing .env file is ignored; files named explicitly
// must exist. Variables already set in the process are not overridden.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading .env: %w", err)
		}
	} else if err := godotenv.Load(files...); err != nil {
		return nil, fmt.Errorf("loading %s: %w", strings.Join(files, ", "), err)
	}

	metrics, err := envBool(EnvMetrics, false)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Environment:      env(EnvEnvironment, env(EnvAppEnvironment, "")),
		LogLevel:         strings.ToLower(env(EnvLogLevel, "")),
		Metrics:          metrics,
		MetricsNamespace: env(EnvMetricsNamespace, ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configuration values.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return formatValidationError(err)
	}
	return nil
}

func formatValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		switch e.Tag() {
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of: %s", e.Field(), e.Param()))
		case "metricname":
			msgs = append(msgs, fmt.Sprintf("%s must be a valid metric name", e.Field()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s characters", e.Field(), e.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", e.Field()))
		}
	}

	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}

	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid config: %s must be a boolean, got %q", key, v)
	}
	return b, nil
}
