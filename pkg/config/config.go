// Package config loads the stockflow configuration file.
//
// Values are resolved in three layers: built-in defaults, then the YAML file,
// then environment variables. The merged result is validated once.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dd0wney/cluso-stockflow/pkg/equation"
	"github.com/dd0wney/cluso-stockflow/pkg/logging"
	"github.com/dd0wney/cluso-stockflow/pkg/params"
	"github.com/dd0wney/cluso-stockflow/pkg/project"
	"github.com/dd0wney/cluso-stockflow/pkg/projectstore"
	"github.com/dd0wney/cluso-stockflow/pkg/validation"
)

// Environment variables read by ApplyEnv.
const (
	EnvLogLevel     = "LOG_LEVEL"
	EnvStoreBackend = "STOCKFLOW_STORE_BACKEND"
	EnvStoreDir     = "STOCKFLOW_STORE_DIR"
	EnvS3Bucket     = "STOCKFLOW_S3_BUCKET"
	EnvDatabaseURL  = "STOCKFLOW_DATABASE_URL"
	EnvCompress     = "STOCKFLOW_STORE_COMPRESS"
)

// Config is the complete configuration.
type Config struct {
	LogLevel  string              `yaml:"log_level" validate:"oneof=debug info warn warning error"`
	Equations equation.Config     `yaml:"equations"`
	Run       RunConfig           `yaml:"run"`
	Store     projectstore.Config `yaml:"store"`
}

// RunConfig holds the parameter validator settings and the parameters used
// when a project carries none.
type RunConfig struct {
	params.Config `yaml:",inline"`
	Defaults      params.Raw `yaml:"defaults"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel:  "info",
		Equations: *equation.DefaultConfig(),
		Run: RunConfig{
			Config:   *params.DefaultConfig(),
			Defaults: project.DefaultParameters().Raw(),
		},
		Store: projectstore.DefaultConfig(),
	}
}

// Load reads path over the defaults, applies the environment and validates.
// An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := cfg.parse(data); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults and validates the result. The
// environment is not consulted.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := cfg.parse(data); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) parse(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	return nil
}

// ApplyEnv overrides fields from the environment. lookup is usually
// os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.LogLevel = strings.ToLower(strings.TrimSpace(v))
	}
	if v, ok := lookup(EnvStoreBackend); ok && v != "" {
		c.Store.Backend = v
	}
	if v, ok := lookup(EnvStoreDir); ok && v != "" {
		c.Store.Dir = v
	}
	if v, ok := lookup(EnvS3Bucket); ok && v != "" {
		c.Store.S3.Bucket = v
	}
	if v, ok := lookup(EnvDatabaseURL); ok && v != "" {
		c.Store.Postgres.URL = v
	}
	if v, ok := lookup(EnvCompress); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvCompress, err)
		}
		c.Store.Compress = b
	}
	return nil
}

// Validate checks struct tags first, then the rules that span fields.
func (c *Config) Validate() error {
	if err := validation.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	cv := validation.NewConfigValidator("Config")
	cv.NoBlank("Equations.ReservedNames", c.Equations.ReservedNames).
		NoBlank("Equations.Namespaces", c.Equations.Namespaces).
		Custom("Run.Defaults", func() error {
			_, found := params.NewValidator(&c.Run.Config).Validate(c.Run.Defaults)
			for _, i := range found {
				if i.Blocking() {
					return errors.New(i.Message)
				}
			}
			return nil
		}).
		When(c.Store.Backend == projectstore.BackendFile, func(v *validation.ConfigValidator) {
			v.Required("Store.Dir", c.Store.Dir)
		}).
		When(c.Store.Backend == projectstore.BackendS3, func(v *validation.ConfigValidator) {
			v.Required("Store.S3.Bucket", c.Store.S3.Bucket).
				Required("Store.S3.Region", c.Store.S3.Region).
				When(c.Store.S3.AccessKeyID != "", func(v *validation.ConfigValidator) {
					v.Required("Store.S3.SecretAccessKey", c.Store.S3.SecretAccessKey)
				})
		}).
		When(c.Store.Backend == projectstore.BackendPostgres, func(v *validation.ConfigValidator) {
			v.Required("Store.Postgres.URL", c.Store.Postgres.URL).
				MinInt("Store.Postgres.MaxConns", int(c.Store.Postgres.MaxConns), 1).
				MinDuration("Store.Postgres.ConnectTimeout", c.Store.Postgres.ConnectTimeout, 0)
		})

	if err := cv.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Level returns the parsed log level.
func (c *Config) Level() logging.Level {
	return logging.ParseLevel(c.LogLevel)
}

// Scanner builds the equation scanner described by the configuration.
func (c *Config) Scanner() *equation.Scanner {
	return equation.NewScanner(&c.Equations)
}

// ParamsValidator builds the run parameter validator.
func (c *Config) ParamsValidator() *params.Validator {
	return params.NewValidator(&c.Run.Config)
}
