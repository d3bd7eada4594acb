package persistence

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/okian/pong/internal/domain/model"
)

// File stores the collection as a JSON file, replaced atomically on save.
type File struct {
	mu   sync.Mutex
	path string
}

// NewFile creates a file backend. The file need not exist yet.
func NewFile(path string) *File { return &File{path: path} }

// Load implements Persister.Load. A missing file is an empty collection.
func (f *File) Load(ctx context.Context) ([]*model.Tournament, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.path, err)
	}
	return model.Decode(data)
}

// Save implements Persister.Save by writing a temp file next to the target and renaming it.
func (f *File) Save(ctx context.Context, tournaments []*model.Tournament) error {
	data, err := model.Encode(tournaments)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("rename to %s: %w", f.path, err)
	}
	return nil
}

// Name implements Persister.Name.
func (f *File) Name() string { return "file" }

// Close implements Persister.Close.
func (f *File) Close() error { return nil }
