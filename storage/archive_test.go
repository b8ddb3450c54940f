package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/tournament-engine/models"
)

type memoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	baseURL string
}

func newMemoryStore(baseURL string) *memoryStore {
	return &memoryStore{objects: make(map[string][]byte), baseURL: baseURL}
}

func (m *memoryStore) Upload(_ context.Context, key, _ string, reader io.Reader) (*UploadResult, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	return &UploadResult{Key: key, Location: m.GetPublicURL(key)}, nil
}

func (m *memoryStore) Download(_ context.Context, key string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, key)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *memoryStore) GetPublicURL(key string) string {
	return publicURL(m.baseURL, key)
}

func TestDigest(t *testing.T) {
	assert.Len(t, Digest([]byte("cup")), 64)
	assert.Equal(t, Digest([]byte("cup")), Digest([]byte("cup")))
	assert.NotEqual(t, Digest([]byte("cup")), Digest([]byte("cup ")))
}

func TestPublicURL(t *testing.T) {
	tests := []struct {
		base, key, want string
	}{
		{"https://cdn.example.com", "snapshots/a.json", "https://cdn.example.com/snapshots/a.json"},
		{"https://cdn.example.com/", "/snapshots/a.json", "https://cdn.example.com/snapshots/a.json"},
		{"https://cdn.example.com/pub", "a.json", "https://cdn.example.com/pub/a.json"},
		{"", "a.json", ""},
		{"https://cdn.example.com", "", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, publicURL(tt.base, tt.key), "%s + %s", tt.base, tt.key)
	}
}

func TestSnapshotArchiver(t *testing.T) {
	ctx := context.Background()
	tour := models.NewTournament(models.TournamentOptions{ID: "cup"}, time.Unix(0, 0).UTC())
	tour.Players = append(tour.Players, models.NewPlayer("ann", "Ann", 1, 0))

	t.Run("keyed by digest", func(t *testing.T) {
		store := newMemoryStore("")
		archiver := NewSnapshotArchiver(store, "snapshots")

		key, err := archiver.Archive(ctx, tour)
		require.NoError(t, err)
		assert.Regexp(t, `^snapshots/cup/[0-9a-f]{64}\.json$`, key)

		again, err := archiver.Archive(ctx, tour)
		require.NoError(t, err)
		assert.Equal(t, key, again)
		assert.Len(t, store.objects, 1)

		got, err := archiver.Fetch(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "cup", got.ID)
		require.Len(t, got.Players, 1)
		assert.Equal(t, "Ann", got.Players[0].Alias)
	})

	t.Run("public location", func(t *testing.T) {
		archiver := NewSnapshotArchiver(newMemoryStore("https://cdn.example.com"), "snapshots")
		location, err := archiver.Archive(ctx, tour)
		require.NoError(t, err)
		assert.Regexp(t, `^https://cdn\.example\.com/snapshots/cup/`, location)
	})

	t.Run("tampered object", func(t *testing.T) {
		store := newMemoryStore("")
		archiver := NewSnapshotArchiver(store, "")
		key, err := archiver.Archive(ctx, tour)
		require.NoError(t, err)
		store.objects[key] = []byte(`{"id":"cup","name":"changed"}`)

		_, err = archiver.Fetch(ctx, key)
		require.ErrorIs(t, err, models.ErrInvalidSnapshot)
	})

	t.Run("remove", func(t *testing.T) {
		store := newMemoryStore("")
		archiver := NewSnapshotArchiver(store, "snapshots")
		key, err := archiver.Archive(ctx, tour)
		require.NoError(t, err)

		for _, foreign := range []string{
			"snapshots/cup/notes.txt",
			"other/cup/" + path.Base(key),
			"snapshots/" + path.Base(key),
			"snapshots/cup/../cup/" + path.Base(key),
		} {
			err := archiver.Remove(ctx, foreign)
			require.ErrorIs(t, err, ErrNotArchived, foreign)
		}
		assert.Len(t, store.objects, 1)

		require.NoError(t, archiver.Remove(ctx, key))
		assert.Empty(t, store.objects)
		_, err = archiver.Fetch(ctx, key)
		require.ErrorIs(t, err, ErrObjectNotFound)
	})

	t.Run("missing object", func(t *testing.T) {
		_, err := NewSnapshotArchiver(newMemoryStore(""), "").Fetch(ctx, "cup/none.json")
		require.ErrorIs(t, err, ErrObjectNotFound)
	})
}
