package services_test

import (
	"bytes"
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"realtysite/internal/assets"
	"realtysite/internal/domain"
	"realtysite/internal/repos"
)

var t0 = time.Date(2026, 5, 1, 11, 0, 0, 0, time.UTC)

func openDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// memStore is an in-memory asset store that can be told to fail.
type memStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
	puts    int
	failOn  int // 1-based Put call that fails; 0 never
}

func newMemStore() *memStore { return &memStore{objects: map[string][]byte{}} }

func (m *memStore) Put(_ context.Context, filename, mimeType string, r io.Reader) (assets.Info, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.puts++
	if m.failOn == m.puts {
		return assets.Info{}, errors.New("object store unavailable")
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return assets.Info{}, err
	}
	key := filename + "-key"
	m.objects[key] = b
	return assets.Info{Key: key, Filename: filename, MimeType: mimeType, Size: int64(len(b))}, nil
}

func (m *memStore) Open(_ context.Context, key string) (io.ReadCloser, assets.Info, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.objects[key]
	if !ok {
		return nil, assets.Info{}, assets.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(b)), assets.Info{Key: key, Size: int64(len(b))}, nil
}

func (m *memStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	m.deleted = append(m.deleted, key)
	return nil
}

func (m *memStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

// failingCreate wraps a content store whose Create always fails.
type failingCreate struct {
	*repos.ContentRepo
}

func (failingCreate) Create(context.Context, domain.ContentItem) error {
	return errors.New("disk full")
}

// racingStore lets another writer slip in before the first n updates.
type racingStore struct {
	*repos.ContentRepo
	races int
	other func(ctx context.Context, id string)
}

func (r *racingStore) Update(ctx context.Context, it domain.ContentItem) (domain.ContentItem, error) {
	if r.races > 0 {
		r.races--
		r.other(ctx, it.ID)
	}
	return r.ContentRepo.Update(ctx, it)
}

func flyer(name string) domain.Upload {
	return domain.Upload{Filename: name, MimeType: "image/png", Data: []byte("\x89PNG" + name)}
}
