package projectstore

import (
	"context"
	"fmt"
	"time"

	"github.com/dd0wney/cluso-stockflow/pkg/project"
)

// Config selects and configures a backend.
type Config struct {
	Backend  string         `yaml:"backend" validate:"required,oneof=file s3 postgres"`
	Compress bool           `yaml:"compress"`
	Dir      string         `yaml:"dir"`
	S3       S3Config       `yaml:"s3"`
	Postgres PostgresConfig `yaml:"postgres"`
}

// S3Config configures the S3 backend. Credentials fall back to the default
// AWS chain when AccessKeyID is empty.
type S3Config struct {
	Bucket          string `yaml:"bucket"`
	Prefix          string `yaml:"prefix"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
}

// PostgresConfig configures the PostgreSQL backend.
type PostgresConfig struct {
	URL            string        `yaml:"url"`
	MaxConns       int32         `yaml:"max_conns"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
}

// DefaultConfig stores uncompressed documents under ./projects.
func DefaultConfig() Config {
	return Config{
		Backend: BackendFile,
		Dir:     "projects",
		S3:      S3Config{Region: "us-east-1"},
		Postgres: PostgresConfig{
			MaxConns:       10,
			ConnectTimeout: 5 * time.Second,
		},
	}
}

// Encoding returns the write encoding selected by Compress.
func (c Config) Encoding() project.Encoding {
	if c.Compress {
		return project.Compressed
	}
	return project.Plain
}

// Open returns the backend named by cfg.Backend. opts.Encoding is taken from
// cfg.
func Open(ctx context.Context, cfg Config, opts Options) (Store, error) {
	opts.Encoding = cfg.Encoding()
	switch cfg.Backend {
	case BackendFile, "":
		return NewFileStore(cfg.Dir, opts)
	case BackendS3:
		return NewS3Store(ctx, cfg.S3, opts)
	case BackendPostgres:
		return NewPGStore(ctx, cfg.Postgres, opts)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}
