// Package config loads ironpage.yaml and the environment.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/io7m/ironpage-sub000/internal/db"
	"github.com/io7m/ironpage-sub000/pkg/ironpage"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

const (
	ConfigFileName = "ironpage.yaml"
	EnvFileName    = ".env"

	EnvDatabaseURL       = "IRONPAGE_DATABASE_URL"
	EnvAWSRegion         = "AWS_REGION"
	EnvAzureClientSecret = "AZURE_CLIENT_SECRET"
)

// StoreConfig describes the PostgreSQL schema store. The store is only used
// when a connection string is configured.
type StoreConfig struct {
	ConnectionString string `yaml:"connection_string,omitempty"`
	AuthMethod       string `yaml:"auth_method,omitempty"`
	AWSRegion        string `yaml:"aws_region,omitempty"`
	AzureTenantID    string `yaml:"azure_tenant_id,omitempty"`
	AzureClientID    string `yaml:"azure_client_id,omitempty"`
	GoogleInstance   string `yaml:"google_instance,omitempty"`
	Timeout          string `yaml:"timeout,omitempty"`

	// Never read from the file.
	azureClientSecret string
}

type Config struct {
	// SchemaPaths are directories laid out as <name>/<major>.<minor>.xml,
	// searched in order. Relative paths are relative to the config file.
	SchemaPaths []string `yaml:"schema_paths"`

	// Builtins enables the embedded schemas. Defaults to true.
	Builtins *bool `yaml:"builtins,omitempty"`

	// ConcurrentLookup queries schema directories in parallel when resolving.
	ConcurrentLookup bool `yaml:"concurrent_lookup,omitempty"`

	MaxSourceSize int64 `yaml:"max_source_size,omitempty"`

	Store StoreConfig `yaml:"store"`
}

// Default is the configuration used when no file exists.
func Default() *Config {
	return &Config{SchemaPaths: []string{"schemas"}}
}

// Load reads ConfigFileName from dir. Unknown keys are rejected.
func Load(dir string) (*Config, error) {
	configPath := filepath.Join(dir, ConfigFileName)
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	cfg, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ironpage.ErrInvalidConfig, configPath, err)
	}
	cfg.resolvePaths(dir)
	return cfg, nil
}

// Parse decodes a configuration document.
func Parse(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault is Load, falling back to Default when the file is absent.
func LoadOrDefault(dir string) (*Config, error) {
	cfg, err := Load(dir)
	if errors.Is(err, ErrConfigNotFound) {
		cfg = Default()
		cfg.resolvePaths(dir)
		return cfg, nil
	}
	return cfg, err
}

// LoadEnvFile loads dir/.env into the process environment without
// overriding variables that are already set. A missing file is fine.
func LoadEnvFile(dir string) error {
	path := filepath.Join(dir, EnvFileName)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("%w: %s: %w", ironpage.ErrInvalidConfig, path, err)
	}
	return nil
}

func (c *Config) resolvePaths(dir string) {
	for i, p := range c.SchemaPaths {
		if p != "" && !filepath.IsAbs(p) {
			c.SchemaPaths[i] = filepath.Join(dir, p)
		}
	}
}

// ApplyEnv overrides file settings from the environment.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv(EnvDatabaseURL); v != "" {
		c.Store.ConnectionString = v
	}
	if c.Store.AWSRegion == "" {
		c.Store.AWSRegion = getenv(EnvAWSRegion)
	}
	c.Store.azureClientSecret = getenv(EnvAzureClientSecret)
}

// UseBuiltins reports whether the embedded schemas are enabled.
func (c *Config) UseBuiltins() bool {
	return c.Builtins == nil || *c.Builtins
}

// HasStore reports whether a schema store is configured.
func (c *Config) HasStore() bool {
	return c.Store.ConnectionString != ""
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var errs []error

	for i, p := range c.SchemaPaths {
		if p == "" {
			errs = append(errs, fmt.Errorf("schema_paths[%d] is empty", i))
		}
	}
	if c.MaxSourceSize < 0 {
		errs = append(errs, fmt.Errorf("max_source_size must not be negative, got %d", c.MaxSourceSize))
	}

	method, err := db.ParseAuthMethod(c.Store.AuthMethod)
	if err != nil {
		errs = append(errs, fmt.Errorf("store.auth_method: %w", err))
	}
	if c.Store.Timeout != "" {
		if _, err := c.StoreTimeout(); err != nil {
			errs = append(errs, fmt.Errorf("store.timeout: %w", err))
		}
	}
	if c.HasStore() {
		switch method {
		case db.AuthMethodAWSIAM:
			if c.Store.AWSRegion == "" {
				errs = append(errs, fmt.Errorf("store.aws_region is required for aws auth (or set %s)", EnvAWSRegion))
			}
		case db.AuthMethodGoogleIAM:
			if c.Store.GoogleInstance == "" {
				errs = append(errs, errors.New("store.google_instance is required for google auth"))
			}
		}
	} else if c.Store.AuthMethod != "" {
		errs = append(errs, fmt.Errorf("store.auth_method is set but no connection string is configured (set store.connection_string or %s)", EnvDatabaseURL))
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w:\n%w", ironpage.ErrInvalidConfig, errors.Join(errs...))
}

// ConnectionConfig returns the store connection settings. Call Validate first.
func (c *Config) ConnectionConfig() db.ConnectionConfig {
	method, _ := db.ParseAuthMethod(c.Store.AuthMethod)
	return db.ConnectionConfig{
		ConnString:        c.Store.ConnectionString,
		AuthMethod:        method,
		AWSRegion:         c.Store.AWSRegion,
		AzureTenantID:     c.Store.AzureTenantID,
		AzureClientID:     c.Store.AzureClientID,
		AzureClientSecret: c.Store.azureClientSecret,
		GoogleInstance:    c.Store.GoogleInstance,
	}
}

// StoreTimeout bounds one CLI interaction with the store.
func (c *Config) StoreTimeout() (time.Duration, error) {
	if c.Store.Timeout == "" {
		return ironpage.DefaultStoreTimeout, nil
	}
	d, err := time.ParseDuration(c.Store.Timeout)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("must be positive, got %s", d)
	}
	return d, nil
}
