// Package config loads service settings from an optional YAML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Storage drivers.
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config represents the complete service configuration.
type Config struct {
	Environment string         `yaml:"environment" validate:"oneof=development production test"`
	Server      ServerConfig   `yaml:"server"`
	Database    DatabaseConfig `yaml:"database"`
	Logging     LoggingConfig  `yaml:"logging"`
}

// ServerConfig contains HTTP listener settings.
type ServerConfig struct {
	Port               string `yaml:"port" validate:"required,numeric"`
	StaticDir          string `yaml:"static_dir"`
	ReadTimeoutSec     int    `yaml:"read_timeout_sec" validate:"min=1"`
	WriteTimeoutSec    int    `yaml:"write_timeout_sec" validate:"min=1"`
	ShutdownTimeoutSec int    `yaml:"shutdown_timeout_sec" validate:"min=1"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Driver   string `yaml:"driver" validate:"oneof=postgres memory"`
	Host     string `yaml:"host" validate:"required_if=Driver postgres"`
	Port     string `yaml:"port" validate:"omitempty,numeric"`
	User     string `yaml:"user" validate:"required_if=Driver postgres"`
	Password string `yaml:"password"`
	Name     string `yaml:"name" validate:"required_if=Driver postgres"`
	SSLMode  string `yaml:"sslmode" validate:"omitempty,oneof=disable allow prefer require verify-ca verify-full"`
	MaxConns int32  `yaml:"max_conns" validate:"min=1"`
	MinConns int32  `yaml:"min_conns" validate:"min=0,ltefield=MaxConns"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

// DSN builds a libpq-compatible connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// IsProduction reports whether the service runs in production.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Default returns the local-development configuration.
func Default() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port:               "8080",
			StaticDir:          "./web",
			ReadTimeoutSec:     15,
			WriteTimeoutSec:    15,
			ShutdownTimeoutSec: 10,
		},
		Database: DatabaseConfig{
			Driver:   DriverPostgres,
			Host:     "localhost",
			Port:     "5432",
			User:     "postgres",
			Password: "postgres",
			Name:     "djcalendar",
			SSLMode:  "disable",
			MaxConns: 20,
			MinConns: 2,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load builds the configuration: defaults, then the YAML file at path (if
// path is non-empty), then environment overrides. The result is validated.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// Validate checks every field against its rules and reports the first
// violation by its YAML key.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		key := strings.TrimPrefix(fe.Namespace(), "Config.")
		if fe.Param() != "" {
			return fmt.Errorf("config: %s failed %s=%s (got %v)", key, fe.Tag(), fe.Param(), fe.Value())
		}
		return fmt.Errorf("config: %s failed %s (got %v)", key, fe.Tag(), fe.Value())
	}
	return fmt.Errorf("config: %w", err)
}

func applyEnv(cfg *Config) error {
	setString(&cfg.Environment, "ENVIRONMENT")
	setString(&cfg.Server.Port, "PORT")
	setString(&cfg.Server.StaticDir, "STATIC_DIR")
	setString(&cfg.Database.Driver, "DB_DRIVER")
	setString(&cfg.Database.Host, "DB_HOST")
	setString(&cfg.Database.Port, "DB_PORT")
	setString(&cfg.Database.User, "DB_USER")
	setString(&cfg.Database.Password, "DB_PASSWORD")
	setString(&cfg.Database.Name, "DB_NAME")
	setString(&cfg.Database.SSLMode, "DB_SSLMODE")
	setString(&cfg.Logging.Level, "LOG_LEVEL")
	setString(&cfg.Logging.Format, "LOG_FORMAT")

	maxSet, err := setInt32(&cfg.Database.MaxConns, "DB_MAX_CONNS")
	if err != nil {
		return err
	}
	minSet, err := setInt32(&cfg.Database.MinConns, "DB_MIN_CONNS")
	if err != nil {
		return err
	}
	// A lowered pool ceiling pulls the inherited floor down with it.
	if maxSet && !minSet && cfg.Database.MinConns > cfg.Database.MaxConns {
		cfg.Database.MinConns = cfg.Database.MaxConns
	}

	cfg.Database.Driver = strings.ToLower(cfg.Database.Driver)
	cfg.Logging.Level = strings.ToLower(cfg.Logging.Level)
	cfg.Logging.Format = strings.ToLower(cfg.Logging.Format)
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt32(dst *int32, key string) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return false, nil
	}
	n, err := strconv.ParseInt(v, 10, 32)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	*dst = int32(n)
	return true, nil
}
