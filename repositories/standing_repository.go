package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Dosada05/tournament-engine/models"
)

var (
	ErrStandingTournamentInvalid = errors.New("standing tournament conflict or invalid")
)

type TournamentStandingRepository interface {
	ReplaceForTournament(ctx context.Context, tournamentID string, standings []models.TournamentStanding) error
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID string) ([]models.TournamentStanding, error)
}

type postgresTournamentStandingRepository struct {
	db *sql.DB
}

func NewPostgresTournamentStandingRepository(db *sql.DB) TournamentStandingRepository {
	return &postgresTournamentStandingRepository{db: db}
}

func (r *postgresTournamentStandingRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

// ReplaceForTournament swaps the stored table of a tournament for standings
// in one transaction.
func (r *postgresTournamentStandingRepository) ReplaceForTournament(ctx context.Context, tournamentID string, standings []models.TournamentStanding) error {
	return inTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM tournament_standings WHERE tournament_id = $1`, tournamentID); err != nil {
			return fmt.Errorf("failed to clear standings of %s: %w", tournamentID, err)
		}
		if len(standings) == 0 {
			return nil
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO tournament_standings
			    (tournament_id, rank, player_id, alias, active, match_count, wins, draws, losses, byes, match_points, game_points, tiebreakers)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`)
		if err != nil {
			return fmt.Errorf("failed to prepare standings insert: %w", err)
		}
		defer stmt.Close()

		for _, s := range standings {
			tiebreakers, err := json.Marshal(s.Tiebreakers)
			if err != nil {
				return fmt.Errorf("failed to encode tiebreakers of %s: %w", s.PlayerID, err)
			}
			_, err = stmt.ExecContext(ctx,
				tournamentID, s.Rank, s.PlayerID, s.Alias, s.Active, s.MatchCount,
				s.Wins, s.Draws, s.Losses, s.Byes, s.MatchPoints, s.GamePoints, tiebreakers,
			)
			if err != nil {
				if isUniqueViolation(err, "") {
					return fmt.Errorf("%w: duplicate player %s", ErrStandingTournamentInvalid, s.PlayerID)
				}
				return fmt.Errorf("failed to insert standing of %s: %w", s.PlayerID, err)
			}
		}
		return nil
	})
}

func (r *postgresTournamentStandingRepository) scanStanding(rowScanner interface{ Scan(...interface{}) error }) (models.TournamentStanding, error) {
	var s models.TournamentStanding
	var tiebreakers []byte
	err := rowScanner.Scan(
		&s.TournamentID, &s.Rank, &s.PlayerID, &s.Alias, &s.Active, &s.MatchCount,
		&s.Wins, &s.Draws, &s.Losses, &s.Byes, &s.MatchPoints, &s.GamePoints, &tiebreakers,
	)
	if err != nil {
		return s, err
	}
	if err := json.Unmarshal(tiebreakers, &s.Tiebreakers); err != nil {
		return s, fmt.Errorf("failed to decode tiebreakers of %s: %w", s.PlayerID, err)
	}
	return s, nil
}

func (r *postgresTournamentStandingRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID string) ([]models.TournamentStanding, error) {
	query := `
		SELECT tournament_id, rank, player_id, alias, active, match_count,
		       wins, draws, losses, byes, match_points, game_points, tiebreakers
		FROM tournament_standings
		WHERE tournament_id = $1
		ORDER BY rank ASC`
	rows, err := r.getExecutor(exec).QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	standings := make([]models.TournamentStanding, 0)
	for rows.Next() {
		s, errScan := r.scanStanding(rows)
		if errScan != nil {
			return nil, errScan
		}
		standings = append(standings, s)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return standings, nil
}
