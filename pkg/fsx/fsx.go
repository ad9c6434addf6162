package fsx

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
)

// FileSystem is the blob storage port. Paths are slash separated and
// relative to the storage root; callers choose collision resistant names.
type FileSystem interface {
	WriteFile(ctx context.Context, name string, data []byte) error
	ReadFile(ctx context.Context, name string) ([]byte, error)
	DeleteFile(ctx context.Context, name string) error
	Exists(ctx context.Context, name string) (bool, error)
}

// UniqueName builds "<dir>/<base>_<8 hex>.<ext>" from an uploaded file name
func UniqueName(dir, original string) string {
	original = path.Base(strings.ReplaceAll(original, "\\", "/"))
	ext := path.Ext(original)
	base := strings.TrimSuffix(original, ext)
	if base == "" || base == "." || base == "/" {
		base = "file"
	}
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s/%s_%s%s", strings.TrimSuffix(dir, "/"), base, suffix, ext)
}

// PublicURL joins the media prefix and a stored path
func PublicURL(prefix, name string) string {
	prefix = strings.TrimSuffix(prefix, "/")
	if prefix == "" {
		return name
	}
	return prefix + "/" + strings.TrimPrefix(name, "/")
}

// PathFromURL reverses PublicURL
func PathFromURL(prefix, url string) string {
	prefix = strings.TrimSuffix(prefix, "/")
	if prefix == "" {
		return url
	}
	return strings.TrimPrefix(url, prefix+"/")
}
