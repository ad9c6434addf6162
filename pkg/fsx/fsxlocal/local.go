package fsxlocal

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/mlinyun/Peekpa/pkg/errx"
	"github.com/mlinyun/Peekpa/pkg/fsx"
)

// LocalFileSystem stores blobs under a base directory
type LocalFileSystem struct {
	basePath string
}

var _ fsx.FileSystem = (*LocalFileSystem)(nil)

// NewLocalFileSystem creates the base directory if needed
func NewLocalFileSystem(basePath string) (*LocalFileSystem, error) {
	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, errx.Wrap(err, "invalid upload directory", errx.TypeInternal)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, errx.Wrap(err, "failed to create upload directory", errx.TypeInternal).
			WithDetail("path", abs)
	}
	return &LocalFileSystem{basePath: abs}, nil
}

func (fs *LocalFileSystem) GetBasePath() string {
	return fs.basePath
}

// resolve keeps every path inside basePath
func (fs *LocalFileSystem) resolve(name string) (string, error) {
	full := filepath.Join(fs.basePath, filepath.FromSlash(name))
	if full != fs.basePath && !strings.HasPrefix(full, fs.basePath+string(os.PathSeparator)) {
		return "", errx.New("path escapes storage root", errx.TypeValidation).WithDetail("path", name)
	}
	return full, nil
}

func (fs *LocalFileSystem) WriteFile(ctx context.Context, name string, data []byte) error {
	full, err := fs.resolve(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return errx.Wrap(err, "failed to create directory", errx.TypeInternal).WithDetail("path", name)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return errx.Wrap(err, "failed to write file", errx.TypeInternal).WithDetail("path", name)
	}
	return nil
}

func (fs *LocalFileSystem) ReadFile(ctx context.Context, name string) ([]byte, error) {
	full, err := fs.resolve(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(full)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, errx.New("file not found", errx.TypeNotFound).WithDetail("path", name)
		}
		return nil, errx.Wrap(err, "failed to read file", errx.TypeInternal).WithDetail("path", name)
	}
	return data, nil
}

// DeleteFile is idempotent
func (fs *LocalFileSystem) DeleteFile(ctx context.Context, name string) error {
	full, err := fs.resolve(name)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		return errx.Wrap(err, "failed to delete file", errx.TypeInternal).WithDetail("path", name)
	}
	return nil
}

func (fs *LocalFileSystem) Exists(ctx context.Context, name string) (bool, error) {
	full, err := fs.resolve(name)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(full)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, errx.Wrap(err, "failed to stat file", errx.TypeInternal).WithDetail("path", name)
}
