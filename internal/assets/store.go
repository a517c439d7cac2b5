// Package assets stores uploaded flyer and popup images outside the database.
// The content store keeps only the keys handed out here.
package assets

import (
	"context"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var (
	ErrNotFound   = errors.New("asset not found")
	ErrInvalidKey = errors.New("invalid asset key")
	ErrNotImage   = errors.New("only image uploads are accepted")
)

// Info describes a stored object.
type Info struct {
	Key      string
	Filename string
	MimeType string
	Size     int64
}

type Store interface {
	Put(ctx context.Context, filename, mimeType string, r io.Reader) (Info, error)
	Open(ctx context.Context, key string) (io.ReadCloser, Info, error)
	Delete(ctx context.Context, key string) error
}

var reKey = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}(\.[a-z0-9]{1,5})?$`)

// ValidKey rejects anything that is not a key this package generated.
func ValidKey(key string) bool { return reKey.MatchString(key) }

// newKey returns a fresh key that keeps the upload's extension.
func newKey(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if len(ext) > 6 || !reKey.MatchString("x"+ext) {
		ext = ""
	}
	return uuid.NewString() + ext
}

// IsImage reports whether mimeType is an image type.
func IsImage(mimeType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(mimeType)), "image/")
}

// ContentType guesses a MIME type from the key's extension.
func ContentType(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".svg":
		return "image/svg+xml"
	default:
		return "application/octet-stream"
	}
}
