package storage

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"

	"golang.org/x/crypto/blake2b"

	"github.com/Dosada05/tournament-engine/models"
)

var ErrNotArchived = errors.New("key is not an archived snapshot")

var digestName = regexp.MustCompile(`^[0-9a-f]{64}\.json$`)

// Digest returns the hex BLAKE2b-256 sum of data.
func Digest(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// SnapshotArchiver writes tournament snapshots to an object store under
// content-addressed keys, so archiving an unchanged tournament is a no-op
// rewrite of the same object.
type SnapshotArchiver struct {
	store  ObjectStore
	prefix string
}

func NewSnapshotArchiver(store ObjectStore, prefix string) *SnapshotArchiver {
	return &SnapshotArchiver{store: store, prefix: prefix}
}

// Key is the object key of a snapshot with the given digest.
func (a *SnapshotArchiver) Key(tournamentID, digest string) string {
	return path.Join(a.prefix, tournamentID, digest+".json")
}

// Archive uploads t and returns the object location, or its key when the
// store has no public URL.
func (a *SnapshotArchiver) Archive(ctx context.Context, t *models.Tournament) (string, error) {
	data, err := json.Marshal(t)
	if err != nil {
		return "", fmt.Errorf("failed to encode tournament %s: %w", t.ID, err)
	}
	key := a.Key(t.ID, Digest(data))
	result, err := a.store.Upload(ctx, key, "application/json", bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	if result.Location != "" {
		return result.Location, nil
	}
	return result.Key, nil
}

// Fetch downloads an archived snapshot and checks it against the digest in
// its key.
func (a *SnapshotArchiver) Fetch(ctx context.Context, key string) (*models.Tournament, error) {
	body, err := a.store.Download(ctx, key)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot %s: %w", key, err)
	}
	want := path.Base(key)
	want = want[:len(want)-len(path.Ext(want))]
	if got := Digest(data); got != want {
		return nil, fmt.Errorf("%w: digest mismatch for %s", models.ErrInvalidSnapshot, key)
	}

	var t models.Tournament
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidSnapshot, err)
	}
	return &t, nil
}

// Remove deletes an archived snapshot. Only keys this archiver could have
// written are accepted.
func (a *SnapshotArchiver) Remove(ctx context.Context, key string) error {
	if !a.owns(key) {
		return fmt.Errorf("%w: %s", ErrNotArchived, key)
	}
	if err := a.store.Delete(ctx, key); err != nil {
		return fmt.Errorf("failed to remove snapshot %s: %w", key, err)
	}
	return nil
}

// owns reports whether key has the prefix/<tournament>/<digest>.json shape.
func (a *SnapshotArchiver) owns(key string) bool {
	if key != path.Clean(key) || !digestName.MatchString(path.Base(key)) {
		return false
	}
	dir := path.Dir(key)
	if a.prefix != "" {
		rest, ok := strings.CutPrefix(dir, path.Clean(a.prefix)+"/")
		if !ok {
			return false
		}
		dir = rest
	}
	return dir != "." && dir != "" && !strings.Contains(dir, "/")
}
