package projectstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dd0wney/cluso-stockflow/pkg/project"
)

// FileStore keeps one file per project in a directory.
type FileStore struct {
	dir string
	enc project.Encoding
	in  instrument
	mu  sync.RWMutex
}

// NewFileStore creates dir if needed and returns a store rooted there.
func NewFileStore(dir string, opts Options) (*FileStore, error) {
	if dir == "" {
		return nil, errors.New("projectstore: file backend needs a directory")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create project directory: %w", err)
	}
	return &FileStore{
		dir: dir,
		enc: opts.Encoding,
		in:  newInstrument(BackendFile, opts),
	}, nil
}

func (s *FileStore) path(name string) string {
	return filepath.Join(s.dir, name+Extension)
}

// Put writes the document, replacing any previous version atomically.
func (s *FileStore) Put(ctx context.Context, name string, doc *project.Document) (err error) {
	start := time.Now()
	var size int
	defer func() { err = s.in.observe("put", name, start, size, err) }()

	if err := ValidateName(name); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := project.Encode(doc, s.enc)
	if err != nil {
		return err
	}
	size = len(data)

	s.mu.Lock()
	defer s.mu.Unlock()

	// Write next to the target and rename over it.
	tmp, err := os.CreateTemp(s.dir, "."+name+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write project %s: %w", name, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to sync project %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close project %s: %w", name, err)
	}
	if err := os.Rename(tmpName, s.path(name)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to rename project %s: %w", name, err)
	}
	return nil
}

// Get reads and decodes a project.
func (s *FileStore) Get(ctx context.Context, name string) (doc *project.Document, err error) {
	start := time.Now()
	var size int
	defer func() { err = s.in.observe("get", name, start, size, err) }()

	if err := ValidateName(name); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	data, err := os.ReadFile(s.path(name))
	s.mu.RUnlock()
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("failed to read project %s: %w", name, err)
	}
	size = len(data)
	return decode(name, data)
}

// List returns the projects in the directory sorted by name.
func (s *FileStore) List(ctx context.Context) (infos []Info, err error) {
	start := time.Now()
	defer func() { err = s.in.observe("list", "", start, 0, err) }()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	infos = make([]Info, 0, len(entries))
	for _, e := range entries {
		name, ok := strings.CutSuffix(e.Name(), Extension)
		if !ok || e.IsDir() || ValidateName(name) != nil {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			// Removed between ReadDir and Info.
			continue
		}
		infos = append(infos, Info{Name: name, Size: fi.Size(), Modified: fi.ModTime()})
	}
	slices.SortFunc(infos, func(a, b Info) int { return strings.Compare(a.Name, b.Name) })
	return infos, nil
}

// Delete removes a project.
func (s *FileStore) Delete(ctx context.Context, name string) (err error) {
	start := time.Now()
	defer func() { err = s.in.observe("delete", name, start, 0, err) }()

	if err := ValidateName(name); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(name)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return fmt.Errorf("failed to delete project %s: %w", name, err)
	}
	return nil
}

// Close is a no-op for file-based store
func (s *FileStore) Close() error {
	return nil
}
