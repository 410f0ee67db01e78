package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

const (
	SessionModePlain  = "plain"
	SessionModeSigned = "signed"

	EnvProduction = "production"
)

type Config struct {
	Port           string `yaml:"port" env:"PORT"`
	Env            string `yaml:"env" env:"APP_ENV"`
	DatabaseDriver string `yaml:"database_driver" env:"DATABASE_DRIVER"`
	DatabaseURL    string `yaml:"database_url" env:"DATABASE_URL"`
	SessionMode    string `yaml:"session_mode" env:"SESSION_MODE"`
	SessionSecret  string `yaml:"session_secret" env:"SESSION_SECRET"`
	LogLevel       string `yaml:"log_level" env:"LOG_LEVEL"`
	LogFormat      string `yaml:"log_format" env:"LOG_FORMAT"`
	BootstrapEmail string `yaml:"bootstrap_admin_email" env:"BOOTSTRAP_ADMIN_EMAIL"`
	BootstrapName  string `yaml:"bootstrap_admin_name" env:"BOOTSTRAP_ADMIN_NAME"`
	MetricsEnabled bool   `yaml:"metrics_enabled" env:"METRICS_ENABLED"`

	// SecretGenerated is set when SessionSecret was not configured and a
	// random one was created for this process.
	SecretGenerated bool `yaml:"-"`
}

func Default() Config {
	return Config{
		Port:           "8080",
		Env:            "development",
		DatabaseDriver: "sqlite3",
		DatabaseURL:    "./portfolio.db",
		SessionMode:    SessionModePlain,
		LogLevel:       "info",
		LogFormat:      "console",
		BootstrapName:  "Admin",
		MetricsEnabled: true,
	}
}

// Load reads configuration from the file named by CONFIG_FILE, if any, and
// then from the process environment.
func Load() (Config, error) {
	return LoadFrom(os.Getenv("CONFIG_FILE"), nil)
}

// LoadFrom applies defaults, then the YAML file at path (skipped when empty),
// then environ. A nil environ means the process environment.
func LoadFrom(path string, environ map[string]string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environ}); err != nil {
		return cfg, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) normalize() error {
	c.Env = strings.ToLower(strings.TrimSpace(c.Env))
	c.SessionMode = strings.ToLower(strings.TrimSpace(c.SessionMode))
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))

	if c.SessionMode == SessionModeSigned && c.SessionSecret == "" {
		bytes := make([]byte, 32)
		if _, err := rand.Read(bytes); err != nil {
			return fmt.Errorf("failed to generate session secret: %w", err)
		}
		c.SessionSecret = hex.EncodeToString(bytes)
		c.SecretGenerated = true
	}

	if c.DatabaseDriver == "sqlite3" && isFilePath(c.DatabaseURL) && !filepath.IsAbs(c.DatabaseURL) {
		absPath, err := filepath.Abs(c.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to resolve database path: %w", err)
		}
		c.DatabaseURL = absPath
	}
	return nil
}

func isFilePath(dsn string) bool {
	return dsn != "" && dsn != ":memory:" && !strings.HasPrefix(dsn, "file:")
}

func (c Config) Validate() error {
	var errs []error
	if port, err := strconv.Atoi(c.Port); err != nil || port < 1 || port > 65535 {
		errs = append(errs, fmt.Errorf("invalid port: %s", c.Port))
	}
	switch c.DatabaseDriver {
	case "sqlite3", "postgres":
	default:
		errs = append(errs, fmt.Errorf("unsupported database driver: %q", c.DatabaseDriver))
	}
	if strings.TrimSpace(c.DatabaseURL) == "" {
		errs = append(errs, errors.New("database url is required"))
	}
	switch c.SessionMode {
	case SessionModePlain, SessionModeSigned:
	default:
		errs = append(errs, fmt.Errorf("invalid session mode: %q", c.SessionMode))
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("invalid log level: %q", c.LogLevel))
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("invalid log format: %q", c.LogFormat))
	}
	return errors.Join(errs...)
}

// Production reports whether cookies must be marked Secure.
func (c Config) Production() bool {
	return c.Env == EnvProduction
}

func (c Config) Addr() string {
	return ":" + c.Port
}
