package services

import (
	"context"
	"fmt"

	"github.com/Dosada05/tournament-engine/models"
)

type roundRobinPolicy struct{}

// start generates the whole schedule at once; only round one is playable.
func (roundRobinPolicy) start(ctx context.Context, e *Event) error {
	if err := e.setStatus(models.StatusActive); err != nil {
		return err
	}
	e.t.CurrentRound = 1
	matches, err := e.pairing.GenerateRoundRobinSchedule(ctx, e.bracketParams(e.rankedActive(), 1))
	if err != nil {
		return fmt.Errorf("failed to generate round robin schedule: %w", err)
	}
	if len(matches) == 0 {
		return fmt.Errorf("round robin schedule is empty")
	}
	e.addMatches(matches)
	e.settleByes(1)
	return nil
}

func (roundRobinPolicy) nextRound(ctx context.Context, e *Event) error {
	if e.t.CurrentRound >= e.t.MaxRound() {
		return startPlayoffs(ctx, e)
	}
	e.t.CurrentRound++
	for _, m := range e.t.MatchesInRound(e.t.CurrentRound) {
		if m.Seated() && !e.reported(m) {
			m.Active = true
		}
	}
	e.settleByes(e.t.CurrentRound)
	return nil
}

func (roundRobinPolicy) enterResult(e *Event, m *models.Match, p1Wins, p2Wins, draws int) error {
	if e.t.Status == models.StatusPlayoffs {
		return eliminationResult(e, m, p1Wins, p2Wins)
	}
	if m.Round > e.t.CurrentRound {
		return fmt.Errorf("%w: match %s is scheduled for round %d", ErrInvalidStatusForOperation, m.ID, m.Round)
	}
	return standardResult(e, m, p1Wins, p2Wins, draws)
}

func (roundRobinPolicy) eraseResult(e *Event, m *models.Match) error {
	if e.t.Status == models.StatusPlayoffs {
		return eliminationErase(e, m)
	}
	return eraseResult(e, m)
}

func (roundRobinPolicy) addPlayer(*Event, *models.Player, PlayerOptions) error {
	return nil
}

// removePlayer also takes the player out of every round not played yet;
// their opponents there get a bye when the round opens.
func (roundRobinPolicy) removePlayer(e *Event, p *models.Player) error {
	switch e.t.Status {
	case models.StatusRegistration:
		e.t.DeletePlayer(p.ID)
		return nil
	case models.StatusPlayoffs:
		return eliminationRemovePlayer(e, p)
	}
	if m := e.currentRoundMatch(p.ID); m != nil {
		p1Wins, p2Wins := forceLoss(m, p.ID, e.t.ByeGames())
		if err := standardResult(e, m, p1Wins, p2Wins, 0); err != nil {
			return err
		}
	}
	for _, m := range e.t.Matches {
		if m.Round > e.t.CurrentRound && m.Has(p.ID) && !e.reported(m) {
			m.Unseat(p.ID)
			if m.PlayerOne == "" {
				m.PlayerOne, m.PlayerTwo = m.PlayerTwo, ""
			}
		}
	}
	p.Active = false
	return nil
}
