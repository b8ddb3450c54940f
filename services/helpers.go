package services

import (
	"fmt"
	"log/slog"

	"github.com/Dosada05/tournament-engine/models"
)

func isValidStatusTransition(current, next models.TournamentStatus) bool {
	if current == next {
		return true
	}
	allowedTransitions := map[models.TournamentStatus][]models.TournamentStatus{
		models.StatusRegistration: {models.StatusActive, models.StatusAborted},
		models.StatusActive:       {models.StatusPlayoffs, models.StatusFinished, models.StatusAborted},
		models.StatusPlayoffs:     {models.StatusFinished, models.StatusAborted},
		models.StatusFinished:     {},
		models.StatusAborted:      {},
	}
	for _, allowedNextStatus := range allowedTransitions[current] {
		if next == allowedNextStatus {
			return true
		}
	}
	return false
}

func (e *Event) setStatus(next models.TournamentStatus) error {
	current := e.t.Status
	if !isValidStatusTransition(current, next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidStatusForOperation, current, next)
	}
	e.t.Status = next
	if current != next {
		e.logger.Info("tournament status changed",
			slog.String("from", string(current)),
			slog.String("to", string(next)),
		)
	}
	return nil
}

// requireStatus fails unless the tournament is in one of allowed.
func (e *Event) requireStatus(op string, allowed ...models.TournamentStatus) error {
	for _, s := range allowed {
		if e.t.Status == s {
			return nil
		}
	}
	return fmt.Errorf("%w: cannot %s while %s", ErrInvalidStatusForOperation, op, e.t.Status)
}

func (e *Event) player(id string) (*models.Player, error) {
	p, ok := e.t.Player(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPlayerNotFound, id)
	}
	return p, nil
}

func (e *Event) match(id string) (*models.Match, error) {
	m, ok := e.t.Match(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMatchNotFound, id)
	}
	return m, nil
}

// reported reports whether result rows for m are on record.
func (e *Event) reported(m *models.Match) bool {
	for _, id := range []string{m.PlayerOne, m.PlayerTwo} {
		if p, ok := e.t.Player(id); ok {
			if _, has := p.ResultFor(m.ID); has {
				return true
			}
		}
	}
	return false
}

// bracketRound is the first round of the elimination bracket: round one for
// an elimination event, the playoff cutover round otherwise. CurrentRound
// stays put while a bracket is played.
func (e *Event) bracketRound() int {
	if e.t.Format == models.FormatElimination {
		return 1
	}
	return e.t.CurrentRound
}

// currentRoundMatch returns the active match of the current round that
// playerID is seated in.
func (e *Event) currentRoundMatch(playerID string) *models.Match {
	for _, m := range e.t.MatchesInRound(e.t.CurrentRound) {
		if m.Active && m.Has(playerID) {
			return m
		}
	}
	return nil
}
