package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/Dosada05/tournament-engine/models"
)

// generateBracket asks the pairing engine for a single or double elimination
// bracket over players, starting at round.
func generateBracket(ctx context.Context, e *Event, double bool, players []*models.Player, round int) error {
	if len(players) < 2 {
		return fmt.Errorf("%w: %d players left for the bracket", ErrNotEnoughPlayers, len(players))
	}
	params := e.bracketParams(players, round)
	generate := e.pairing.GenerateSingleElimination
	if double {
		generate = e.pairing.GenerateDoubleElimination
	}
	matches, err := generate(ctx, params)
	if err != nil {
		return fmt.Errorf("failed to generate bracket for tournament %s: %w", e.t.ID, err)
	}
	if len(matches) == 0 {
		return fmt.Errorf("bracket generation resulted in no matches for %d players", len(players))
	}
	e.addMatches(matches)
	e.logger.Info("bracket generated",
		slog.Bool("double", double),
		slog.Int("players", len(players)),
		slog.Int("matches", len(matches)),
	)
	return nil
}

// startPlayoffs ends a round-based stage: the cut is applied and the playoff
// bracket is generated, or the tournament finishes when no playoffs are
// configured.
func startPlayoffs(ctx context.Context, e *Event) error {
	if e.t.Playoffs == models.PlayoffsNone {
		return e.setStatus(models.StatusFinished)
	}
	if err := e.setStatus(models.StatusPlayoffs); err != nil {
		return err
	}
	applyCut(e)
	e.t.CurrentRound++
	return generateBracket(ctx, e, e.t.Playoffs == models.PlayoffsDoubleElimination, e.rankedActive(), e.t.CurrentRound)
}

// applyCut deactivates the players who do not make the playoffs. A zero
// limit keeps everyone.
func applyCut(e *Event) {
	cut := e.t.Cut
	if cut.Limit <= 0 {
		return
	}
	var dropped int
	switch cut.Type {
	case models.CutPoints:
		for _, p := range e.t.ActivePlayers() {
			if p.MatchPoints < cut.Limit {
				p.Active = false
				dropped++
			}
		}
	case models.CutRank:
		keep := int(math.Floor(cut.Limit))
		for i, p := range e.rankedActive() {
			if i >= keep {
				p.Active = false
				dropped++
			}
		}
	}
	e.logger.Info("cut applied",
		slog.String("type", string(cut.Type)),
		slog.Float64("limit", cut.Limit),
		slog.Int("dropped", dropped),
	)
}

// eliminationRemovePlayer withdraws p from a bracket. An active match is
// lost by the minimal score first; any slot p leaves behind is repaired so
// that no undecided match waits for them.
func eliminationRemovePlayer(e *Event, p *models.Player) error {
	if m := activeMatchOf(e, p.ID); m != nil {
		p1Wins, p2Wins := forceLoss(m, p.ID, e.t.ByeGames())
		if err := eliminationResult(e, m, p1Wins, p2Wins); err != nil {
			return err
		}
	}
	if m := waitingMatchOf(e, p.ID); m != nil {
		m.Unseat(p.ID)
		if err := vacate(e, m); err != nil {
			return err
		}
	}
	p.Active = false
	return nil
}

// activeMatchOf returns the bracket match playerID is currently playing.
func activeMatchOf(e *Event, playerID string) *models.Match {
	for _, m := range e.t.Matches {
		if m.Round >= e.bracketRound() && m.Active && m.Has(playerID) {
			return m
		}
	}
	return nil
}

// waitingMatchOf returns the undecided bracket match playerID has been
// routed to, whether or not the opponent has arrived. Matches of an earlier
// round-based stage are never considered.
func waitingMatchOf(e *Event, playerID string) *models.Match {
	for _, m := range e.t.Matches {
		if m.Round >= e.bracketRound() && m.Has(playerID) && !m.Resolved() {
			return m
		}
	}
	return nil
}

// pendingFeeders returns the matches that still owe m a player.
func pendingFeeders(e *Event, m *models.Match) []*models.Match {
	var out []*models.Match
	for _, f := range e.t.FeedersOf(m.ID) {
		if !f.Resolved() {
			out = append(out, f)
		}
	}
	return out
}

// vacate repairs m after it lost one of its two expected players.
//
// With one player left and nobody else on the way, m is forfeited: the
// player is credited with the match and moves on. With nobody seated, m is
// spliced out: the match still feeding it is rerouted to m's own target.
// When nothing feeds m any more it goes dead and its targets lose a player
// in turn.
func vacate(e *Event, m *models.Match) error {
	pending := pendingFeeders(e, m)
	occupant := m.PlayerOne
	if occupant == "" {
		occupant = m.PlayerTwo
	}

	switch {
	case occupant != "" && len(pending) == 0:
		games := e.t.ByeGames()
		if m.PlayerOne == occupant {
			m.Result = models.MatchResult{P1Wins: games}
		} else {
			m.Result = models.MatchResult{P2Wins: games}
		}
		m.Active = false
		e.logger.Info("match forfeited", slog.String("match_id", m.ID), slog.String("player_id", occupant))
		if err := advance(e, occupant, m.WinnersPath); err != nil {
			return err
		}
		return vacatePath(e, m.LosersPath)

	case occupant != "":
		// Still waiting for the other feed.
		return nil

	case len(pending) > 0:
		for _, f := range pending {
			if f.WinnersPath == m.ID {
				f.WinnersPath = m.WinnersPath
			}
			if f.LosersPath == m.ID {
				f.LosersPath = m.WinnersPath
			}
		}
		e.logger.Info("match spliced out", slog.String("match_id", m.ID))
		losers := m.LosersPath
		m.WinnersPath, m.LosersPath = "", ""
		return vacatePath(e, losers)

	default:
		e.logger.Info("match dropped", slog.String("match_id", m.ID))
		winners, losers := m.WinnersPath, m.LosersPath
		m.WinnersPath, m.LosersPath = "", ""
		if err := vacatePath(e, winners); err != nil {
			return err
		}
		return vacatePath(e, losers)
	}
}

func vacatePath(e *Event, path string) error {
	if path == "" {
		return nil
	}
	next, err := e.match(path)
	if err != nil {
		return err
	}
	return vacate(e, next)
}
