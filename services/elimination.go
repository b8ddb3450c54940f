package services

import (
	"context"
	"fmt"

	"github.com/Dosada05/tournament-engine/models"
)

type eliminationPolicy struct{}

func (eliminationPolicy) start(ctx context.Context, e *Event) error {
	if err := e.setStatus(models.StatusActive); err != nil {
		return err
	}
	e.t.CurrentRound = 1
	return generateBracket(ctx, e, e.t.Double, e.rankedActive(), 1)
}

func (eliminationPolicy) nextRound(context.Context, *Event) error {
	return fmt.Errorf("%w: elimination brackets advance as results come in", ErrInvalidStatusForOperation)
}

func (eliminationPolicy) enterResult(e *Event, m *models.Match, p1Wins, p2Wins, _ int) error {
	return eliminationResult(e, m, p1Wins, p2Wins)
}

func (eliminationPolicy) eraseResult(e *Event, m *models.Match) error {
	return eliminationErase(e, m)
}

func (eliminationPolicy) addPlayer(*Event, *models.Player, PlayerOptions) error {
	return nil
}

func (eliminationPolicy) removePlayer(e *Event, p *models.Player) error {
	if e.t.Status == models.StatusRegistration {
		e.t.DeletePlayer(p.ID)
		return nil
	}
	return eliminationRemovePlayer(e, p)
}
