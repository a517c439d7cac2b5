package assets

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// LocalStore keeps assets as files in one directory.
type LocalStore struct {
	dir string
}

func NewLocalStore(dir string) (*LocalStore, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.Wrap(err, "resolve media dir")
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, errors.Wrap(err, "create media dir")
	}
	return &LocalStore{dir: abs}, nil
}

func (s *LocalStore) Put(ctx context.Context, filename, mimeType string, r io.Reader) (Info, error) {
	if !IsImage(mimeType) {
		return Info{}, ErrNotImage
	}
	key := newKey(filename)

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return Info{}, errors.Wrap(err, "create temp file")
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	size, err := io.Copy(tmp, r)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return Info{}, errors.Wrap(err, "write asset")
	}
	if err := ctx.Err(); err != nil {
		return Info{}, err
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, key)); err != nil {
		return Info{}, errors.Wrap(err, "publish asset")
	}
	return Info{Key: key, Filename: filename, MimeType: mimeType, Size: size}, nil
}

func (s *LocalStore) Open(ctx context.Context, key string) (io.ReadCloser, Info, error) {
	if !ValidKey(key) {
		return nil, Info{}, ErrInvalidKey
	}
	f, err := os.Open(filepath.Join(s.dir, key))
	if os.IsNotExist(err) {
		return nil, Info{}, ErrNotFound
	}
	if err != nil {
		return nil, Info{}, errors.Wrap(err, "open asset")
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, Info{}, errors.Wrap(err, "stat asset")
	}
	return f, Info{Key: key, Filename: key, MimeType: ContentType(key), Size: st.Size()}, nil
}

func (s *LocalStore) Delete(ctx context.Context, key string) error {
	if !ValidKey(key) {
		return ErrInvalidKey
	}
	err := os.Remove(filepath.Join(s.dir, key))
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "delete asset")
	}
	return nil
}
