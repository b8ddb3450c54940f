package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/tournament-engine/models"
)

var (
	ErrSnapshotNotFound = errors.New("tournament snapshot not found")
	ErrSnapshotConflict = errors.New("tournament snapshot already exists")
)

const snapshotSchema = `
	CREATE TABLE IF NOT EXISTS tournament_snapshots (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		format     TEXT NOT NULL,
		status     TEXT NOT NULL,
		data       JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE TABLE IF NOT EXISTS tournament_standings (
		tournament_id TEXT NOT NULL REFERENCES tournament_snapshots(id) ON DELETE CASCADE,
		rank          INTEGER NOT NULL,
		player_id     TEXT NOT NULL,
		alias         TEXT NOT NULL,
		active        BOOLEAN NOT NULL,
		match_count   INTEGER NOT NULL,
		wins          INTEGER NOT NULL,
		draws         INTEGER NOT NULL,
		losses        INTEGER NOT NULL,
		byes          INTEGER NOT NULL,
		match_points  DOUBLE PRECISION NOT NULL,
		game_points   DOUBLE PRECISION NOT NULL,
		tiebreakers   JSONB NOT NULL,
		PRIMARY KEY (tournament_id, player_id)
	);`

// SnapshotSummary is the listing view of a stored snapshot.
type SnapshotSummary struct {
	ID        string                  `json:"id"`
	Name      string                  `json:"name"`
	Format    models.Format           `json:"format"`
	Status    models.TournamentStatus `json:"status"`
	UpdatedAt time.Time               `json:"updated_at"`
}

type SnapshotRepository interface {
	EnsureSchema(ctx context.Context) error
	Create(ctx context.Context, exec SQLExecutor, t *models.Tournament) error
	Save(ctx context.Context, t *models.Tournament) error
	GetByID(ctx context.Context, exec SQLExecutor, id string) (*models.Tournament, error)
	List(ctx context.Context, exec SQLExecutor) ([]SnapshotSummary, error)
	Delete(ctx context.Context, exec SQLExecutor, id string) error
}

type postgresSnapshotRepository struct {
	db *sql.DB
}

func NewPostgresSnapshotRepository(db *sql.DB) SnapshotRepository {
	return &postgresSnapshotRepository{db: db}
}

func (r *postgresSnapshotRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresSnapshotRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, snapshotSchema); err != nil {
		return fmt.Errorf("failed to create snapshot tables: %w", err)
	}
	return nil
}

// Create stores a snapshot that must not exist yet.
func (r *postgresSnapshotRepository) Create(ctx context.Context, exec SQLExecutor, t *models.Tournament) error {
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("failed to encode tournament %s: %w", t.ID, err)
	}
	query := `
		INSERT INTO tournament_snapshots (id, name, format, status, data)
		VALUES ($1, $2, $3, $4, $5)`
	_, err = r.getExecutor(exec).ExecContext(ctx, query, t.ID, t.Name, t.Format, t.Status, data)
	if err != nil {
		if isUniqueViolation(err, "tournament_snapshots_pkey") {
			return fmt.Errorf("%w: %s", ErrSnapshotConflict, t.ID)
		}
		return err
	}
	return nil
}

// Save inserts or replaces the snapshot of t.
func (r *postgresSnapshotRepository) Save(ctx context.Context, t *models.Tournament) error {
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("failed to encode tournament %s: %w", t.ID, err)
	}
	query := `
		INSERT INTO tournament_snapshots (id, name, format, status, data)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			format = EXCLUDED.format,
			status = EXCLUDED.status,
			data = EXCLUDED.data,
			updated_at = NOW()`
	_, err = r.db.ExecContext(ctx, query, t.ID, t.Name, t.Format, t.Status, data)
	return err
}

func (r *postgresSnapshotRepository) GetByID(ctx context.Context, exec SQLExecutor, id string) (*models.Tournament, error) {
	var data []byte
	query := `SELECT data FROM tournament_snapshots WHERE id = $1`
	err := r.getExecutor(exec).QueryRowContext(ctx, query, id).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSnapshotNotFound
		}
		return nil, err
	}
	var t models.Tournament
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot %s: %w", id, err)
	}
	return &t, nil
}

func (r *postgresSnapshotRepository) List(ctx context.Context, exec SQLExecutor) ([]SnapshotSummary, error) {
	query := `
		SELECT id, name, format, status, updated_at
		FROM tournament_snapshots
		ORDER BY updated_at DESC, id ASC`
	rows, err := r.getExecutor(exec).QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summaries := make([]SnapshotSummary, 0)
	for rows.Next() {
		var s SnapshotSummary
		if err := rows.Scan(&s.ID, &s.Name, &s.Format, &s.Status, &s.UpdatedAt); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return summaries, nil
}

func (r *postgresSnapshotRepository) Delete(ctx context.Context, exec SQLExecutor, id string) error {
	result, err := r.getExecutor(exec).ExecContext(ctx, `DELETE FROM tournament_snapshots WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrSnapshotNotFound)
}
