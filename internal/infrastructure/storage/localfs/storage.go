package localfs

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Storage is a scratch directory for files that external tools must read from disk.
type Storage struct {
	basePath string
}

func New(basePath string) (*Storage, error) {
	if basePath == "" {
		basePath = filepath.Join(os.TempDir(), "termlens")
	}
	if err := os.MkdirAll(basePath, 0o700); err != nil {
		return nil, fmt.Errorf("create scratch dir: %w", err)
	}
	return &Storage{basePath: basePath}, nil
}

// SaveTemp writes data to a fresh file ending in ext. The returned cleanup removes it.
func (s *Storage) SaveTemp(_ context.Context, ext string, data []byte) (string, func(), error) {
	f, err := os.CreateTemp(s.basePath, "upload-*"+ext)
	if err != nil {
		return "", nil, fmt.Errorf("create temp file: %w", err)
	}
	path := f.Name()
	cleanup := func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			slog.Warn("scratch_cleanup_failed", "path", path, "error", err)
		}
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		cleanup()
		return "", nil, fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("close temp file: %w", err)
	}
	return path, cleanup, nil
}
