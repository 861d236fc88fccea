// Package projectstore persists project documents by name on the local disk,
// in an S3 bucket or in PostgreSQL.
package projectstore

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/dd0wney/cluso-stockflow/pkg/logging"
	"github.com/dd0wney/cluso-stockflow/pkg/metrics"
	"github.com/dd0wney/cluso-stockflow/pkg/project"
)

// Sentinel errors
var (
	ErrNotFound       = errors.New("projectstore: project not found")
	ErrInvalidName    = errors.New("projectstore: invalid project name")
	ErrUnknownBackend = errors.New("projectstore: unknown backend")
)

// Backend names
const (
	BackendFile     = "file"
	BackendS3       = "s3"
	BackendPostgres = "postgres"
)

// Extension is appended to project names by the file and S3 backends.
const Extension = ".luna"

var namePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,127}$`)

// ValidateName checks that name can be used as a file name and object key.
func ValidateName(name string) error {
	if !namePattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// Info describes a stored project.
type Info struct {
	Name     string
	Size     int64
	Modified time.Time
}

// Store defines the interface for project persistence
type Store interface {
	Put(ctx context.Context, name string, doc *project.Document) error
	Get(ctx context.Context, name string) (*project.Document, error)
	// List returns the stored projects sorted by name.
	List(ctx context.Context) ([]Info, error)
	Delete(ctx context.Context, name string) error
	Close() error
}

// Options are shared by every backend.
type Options struct {
	// Encoding is used for writes. Reads detect the encoding.
	Encoding project.Encoding
	Logger   logging.Logger
	Metrics  *metrics.Registry
}

// instrument records the outcome of one backend call.
type instrument struct {
	backend string
	logger  logging.Logger
	metrics *metrics.Registry
}

func newInstrument(backend string, opts Options) instrument {
	return instrument{
		backend: backend,
		logger:  logging.OrNop(opts.Logger).With(logging.Component("projectstore"), logging.String("backend", backend)),
		metrics: opts.Metrics,
	}
}

// observe finishes a timed operation. err is returned unchanged.
func (in instrument) observe(op, name string, start time.Time, size int, err error) error {
	elapsed := time.Since(start)
	status := "ok"
	switch {
	case errors.Is(err, ErrNotFound):
		status = "not_found"
	case err != nil:
		status = "error"
	}

	if in.metrics != nil {
		in.metrics.RecordStoreOperation(in.backend, op, status, elapsed)
		if err == nil && size > 0 {
			in.metrics.RecordDocumentSize(in.backend, op, size)
		}
	}

	fields := []logging.Field{logging.Operation(op), logging.Latency(elapsed)}
	if name != "" {
		fields = append(fields, logging.Project(name))
	}
	if status == "error" {
		in.logger.Error("store operation failed", append(fields, logging.Error(err))...)
	} else {
		in.logger.Debug("store operation", append(fields, logging.String("status", status))...)
	}
	return err
}

// decode wraps project.Decode for a stored body.
func decode(name string, data []byte) (*project.Document, error) {
	doc, err := project.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode project %s: %w", name, err)
	}
	return doc, nil
}
