package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/everkeep/backend/internal/thumbs"
)

// LocalStorage implements thumbs.Storage on the gateway's own disk. It is
// the default: thumbnails land in a directory the HTTP surface serves from.
type LocalStorage struct {
	dir string
}

// NewLocalStorage ensures the target directory exists and returns a store
// writing into it.
func NewLocalStorage(dir string) (*LocalStorage, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("local storage: directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create thumbnail directory: %w", err)
	}
	return &LocalStorage{dir: dir}, nil
}

// Save writes the content to a file named name inside the storage directory
// and returns the file's path. The name must not escape the directory.
func (s *LocalStorage) Save(_ context.Context, name string, r io.Reader) (string, error) {
	name = filepath.Base(strings.TrimSpace(name))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return "", fmt.Errorf("local storage: empty name")
	}

	path := filepath.Join(s.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create thumbnail file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("write thumbnail file: %w", err)
	}

	return path, nil
}

var _ thumbs.Storage = (*LocalStorage)(nil)
