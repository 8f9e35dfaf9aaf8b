// Package artifact stores rendered challenge images as files on disk.
package artifact

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FS keeps one PNG per internal artifact id under a single directory.
type FS struct {
	dir string
}

// NewFS creates the directory if needed.
func NewFS(dir string) (*FS, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact dir: %w", err)
	}
	return &FS{dir: dir}, nil
}

func (s *FS) path(id int64) string {
	return filepath.Join(s.dir, fmt.Sprintf("captcha%d.png", id))
}

// Save writes the image bytes for an artifact id.
func (s *FS) Save(ctx context.Context, id int64, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.WriteFile(s.path(id), data, 0o644); err != nil {
		return fmt.Errorf("write artifact %d: %w", id, err)
	}
	return nil
}

// Read returns the stored image bytes.
func (s *FS) Read(ctx context.Context, id int64) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		return nil, fmt.Errorf("read artifact %d: %w", id, err)
	}
	return data, nil
}

// Delete removes the artifact. Deleting something already gone is a no-op,
// so expiry sweeps and deferred cleanups can overlap safely.
func (s *FS) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Remove(s.path(id)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete artifact %d: %w", id, err)
	}
	return nil
}
