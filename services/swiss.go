package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/Dosada05/tournament-engine/models"
	"github.com/Dosada05/tournament-engine/utils"
)

type swissPolicy struct{}

func (swissPolicy) start(ctx context.Context, e *Event) error {
	if e.t.Rounds <= 0 {
		n := len(e.t.ActivePlayers())
		e.t.Rounds = int(math.Ceil(math.Log2(float64(n))))
		e.logger.Info("swiss round count resolved", slog.Int("rounds", e.t.Rounds))
	}
	if err := e.setStatus(models.StatusActive); err != nil {
		return err
	}
	e.t.CurrentRound = 1
	return swissRound(ctx, e)
}

func (swissPolicy) nextRound(ctx context.Context, e *Event) error {
	if e.t.CurrentRound >= e.t.Rounds {
		return startPlayoffs(ctx, e)
	}
	e.t.CurrentRound++
	return swissRound(ctx, e)
}

// swissRound pairs the current round from the standings and credits byes.
func swissRound(ctx context.Context, e *Event) error {
	players := e.rankedActive()
	matches, err := e.pairing.GenerateSwissRound(ctx, e.bracketParams(players, e.t.CurrentRound))
	if err != nil {
		return fmt.Errorf("failed to pair round %d: %w", e.t.CurrentRound, err)
	}
	e.addMatches(matches)
	e.settleByes(e.t.CurrentRound)
	return nil
}

func (swissPolicy) enterResult(e *Event, m *models.Match, p1Wins, p2Wins, draws int) error {
	if e.t.Status == models.StatusPlayoffs {
		return eliminationResult(e, m, p1Wins, p2Wins)
	}
	return standardResult(e, m, p1Wins, p2Wins, draws)
}

func (swissPolicy) eraseResult(e *Event, m *models.Match) error {
	if e.t.Status == models.StatusPlayoffs {
		return eliminationErase(e, m)
	}
	return eraseResult(e, m)
}

// addPlayer gives a late entry one placeholder match per round already
// paired, credited as a bye or a loss.
func (swissPolicy) addPlayer(e *Event, p *models.Player, opts PlayerOptions) error {
	if e.t.Status != models.StatusActive {
		return nil
	}
	missing := opts.MissingResults
	if missing == "" {
		missing = models.MissingResultsLosses
	}
	if missing != models.MissingResultsLosses && missing != models.MissingResultsByes {
		return fmt.Errorf("%w: unknown missing results policy %q", ErrInvalidOptions, missing)
	}
	games := e.t.ByeGames()
	for round := 1; round <= e.t.CurrentRound; round++ {
		id, err := utils.UniqueID(e.ids, e.t.HasMatch)
		if err != nil {
			return fmt.Errorf("allocate match id: %w", err)
		}
		m := models.NewMatch(id, round, len(e.t.MatchesInRound(round))+1)
		m.PlayerOne = p.ID
		e.t.AddMatch(m)
		if missing == models.MissingResultsByes {
			awardBye(e, m)
			continue
		}
		m.Result = models.MatchResult{P2Wins: games}
		p.Record(models.PlayerResult{
			Match:   m.ID,
			Round:   round,
			Outcome: models.OutcomeLoss,
			Games:   games,
		})
	}
	return nil
}

func (swissPolicy) removePlayer(e *Event, p *models.Player) error {
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
	p.Active = false
	return nil
}
