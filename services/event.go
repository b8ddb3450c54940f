package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Dosada05/tournament-engine/brackets"
	"github.com/Dosada05/tournament-engine/metrics"
	"github.com/Dosada05/tournament-engine/models"
	"github.com/Dosada05/tournament-engine/utils"
)

// PairingEngine produces new matches. The returned matches are appended to
// the tournament by the caller.
type PairingEngine interface {
	GenerateSwissRound(ctx context.Context, params brackets.GenerateBracketParams) ([]*models.Match, error)
	GenerateRoundRobinSchedule(ctx context.Context, params brackets.GenerateBracketParams) ([]*models.Match, error)
	GenerateSingleElimination(ctx context.Context, params brackets.GenerateBracketParams) ([]*models.Match, error)
	GenerateDoubleElimination(ctx context.Context, params brackets.GenerateBracketParams) ([]*models.Match, error)
}

// Ranker computes tiebreakers and orders players.
type Ranker interface {
	Compute(t *models.Tournament)
	Sort(players []*models.Player, t *models.Tournament) []*models.Player
}

// PlayerOptions describe a player to register. An empty ID is allocated.
// MissingResults only matters for a late Swiss entry.
type PlayerOptions struct {
	ID             string                `json:"id" yaml:"id"`
	Alias          string                `json:"alias" yaml:"alias"`
	Seed           float64               `json:"seed" yaml:"seed"`
	InitialByes    int                   `json:"initial_byes" yaml:"initial_byes"`
	MissingResults models.MissingResults `json:"missing_results" yaml:"missing_results"`
}

// formatPolicy holds the format-specific half of each operation. Shared
// validation happens in Event before a policy is called.
type formatPolicy interface {
	start(ctx context.Context, e *Event) error
	nextRound(ctx context.Context, e *Event) error
	enterResult(e *Event, m *models.Match, p1Wins, p2Wins, draws int) error
	eraseResult(e *Event, m *models.Match) error
	addPlayer(e *Event, p *models.Player, opts PlayerOptions) error
	removePlayer(e *Event, p *models.Player) error
}

// Event is a running tournament: the record plus its format policy and
// collaborators. Operations on one Event must not run concurrently.
type Event struct {
	t       *models.Tournament
	policy  formatPolicy
	pairing PairingEngine
	ranker  Ranker
	ids     utils.IDAllocator
	logger  *slog.Logger
}

func newEvent(t *models.Tournament, pairing PairingEngine, ranker Ranker, ids utils.IDAllocator, logger *slog.Logger) (*Event, error) {
	var policy formatPolicy
	switch t.Format {
	case models.FormatSwiss:
		policy = swissPolicy{}
	case models.FormatRoundRobin:
		policy = roundRobinPolicy{}
	case models.FormatElimination:
		policy = eliminationPolicy{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, t.Format)
	}
	return &Event{
		t:       t,
		policy:  policy,
		pairing: pairing,
		ranker:  ranker,
		ids:     ids,
		logger:  logger.With(slog.String("tournament_id", t.ID), slog.String("format", string(t.Format))),
	}, nil
}

// Tournament exposes the underlying record, for snapshots and reads.
func (e *Event) Tournament() *models.Tournament {
	return e.t
}

func (e *Event) ID() string {
	return e.t.ID
}

func (e *Event) format() string {
	return string(e.t.Format)
}

// checkpoint runs fn and puts the tournament back the way it was if fn
// fails.
func (e *Event) checkpoint(op string, fn func() error) error {
	saved := e.t.Clone()
	if err := fn(); err != nil {
		e.t.Restore(saved)
		metrics.Rollbacks.Inc()
		e.logger.Warn("operation rolled back", slog.String("operation", op), slog.Any("error", err))
		return err
	}
	return nil
}

// AddPlayer registers a player. Swiss tournaments also accept players while
// active; they are credited for the rounds already played.
func (e *Event) AddPlayer(opts PlayerOptions) (*models.Player, error) {
	var added *models.Player
	err := e.checkpoint("add player", func() error {
		p, err := newPlayer(e, opts)
		if err != nil {
			return err
		}
		if err := e.policy.addPlayer(e, p, opts); err != nil {
			return err
		}
		added = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.logger.Info("player added", slog.String("player_id", added.ID), slog.String("alias", added.Alias))
	return added, nil
}

// RemovePlayer deletes a player during registration and withdraws them
// otherwise.
func (e *Event) RemovePlayer(playerID string) error {
	p, err := e.player(playerID)
	if err != nil {
		return err
	}
	if e.t.Status.Over() {
		return fmt.Errorf("%w: tournament is %s", ErrInvalidStatusForOperation, e.t.Status)
	}
	if !p.Active && e.t.Status != models.StatusRegistration {
		return fmt.Errorf("%w: player %s was already removed", ErrInvalidStatusForOperation, playerID)
	}
	if err := e.checkpoint("remove player", func() error { return e.policy.removePlayer(e, p) }); err != nil {
		return err
	}
	metrics.PlayersRemoved.WithLabelValues(e.format()).Inc()
	e.logger.Info("player removed", slog.String("player_id", playerID))
	return nil
}

// StartEvent closes registration and generates the first round or bracket.
func (e *Event) StartEvent(ctx context.Context) error {
	if err := e.requireStatus("start", models.StatusRegistration); err != nil {
		return err
	}
	if n := len(e.t.ActivePlayers()); n < 2 {
		return fmt.Errorf("%w: have %d", ErrNotEnoughPlayers, n)
	}
	if err := e.checkpoint("start", func() error { return e.policy.start(ctx, e) }); err != nil {
		return err
	}
	metrics.RoundsStarted.WithLabelValues(e.format()).Inc()
	e.logger.Info("tournament started",
		slog.Int("players", len(e.t.Players)),
		slog.Int("matches", len(e.t.Matches)),
	)
	return nil
}

// NextRound moves a round-based stage forward once every match is in: the
// next round, the playoff bracket, or the end of the tournament.
func (e *Event) NextRound(ctx context.Context) error {
	if err := e.requireStatus("advance round", models.StatusActive); err != nil {
		return err
	}
	if n := e.t.ActiveMatches(); n > 0 {
		return fmt.Errorf("%w: %d matches still active", ErrInvalidStatusForOperation, n)
	}
	if err := e.checkpoint("next round", func() error { return e.policy.nextRound(ctx, e) }); err != nil {
		return err
	}
	if !e.t.Status.Over() {
		metrics.RoundsStarted.WithLabelValues(e.format()).Inc()
	}
	e.logger.Info("round advanced",
		slog.Int("round", e.t.CurrentRound),
		slog.String("status", string(e.t.Status)),
	)
	return nil
}

// EnterResult reports a match. Reporting an already reported match replaces
// the earlier result.
func (e *Event) EnterResult(matchID string, p1Wins, p2Wins, draws int) error {
	if err := e.requireStatus("enter result", models.StatusActive, models.StatusPlayoffs); err != nil {
		return err
	}
	m, err := e.match(matchID)
	if err != nil {
		return err
	}
	if !m.Seated() {
		return fmt.Errorf("%w: match %s does not have two players", ErrInvalidStatusForOperation, matchID)
	}
	if p1Wins < 0 || p2Wins < 0 || draws < 0 {
		return fmt.Errorf("%w: negative game count", ErrInvalidResult)
	}
	if p1Wins+p2Wins+draws == 0 {
		return fmt.Errorf("%w: no games reported", ErrInvalidResult)
	}
	if e.t.Status == models.StatusPlayoffs && m.Round < e.t.CurrentRound {
		return fmt.Errorf("%w: match %s belongs to the finished stage", ErrInvalidStatusForOperation, matchID)
	}
	if err := e.checkpoint("enter result", func() error { return e.policy.enterResult(e, m, p1Wins, p2Wins, draws) }); err != nil {
		return err
	}
	metrics.ResultsEntered.WithLabelValues(e.format()).Inc()
	e.logger.Info("result entered",
		slog.String("match_id", matchID),
		slog.Int("p1_wins", p1Wins),
		slog.Int("p2_wins", p2Wins),
		slog.Int("draws", draws),
	)
	return nil
}

// EraseResult withdraws a reported result and reopens the match.
func (e *Event) EraseResult(matchID string) error {
	if err := e.requireStatus("erase result", models.StatusActive, models.StatusPlayoffs); err != nil {
		return err
	}
	m, err := e.match(matchID)
	if err != nil {
		return err
	}
	if e.t.Status == models.StatusPlayoffs && m.Round < e.t.CurrentRound {
		return fmt.Errorf("%w: match %s belongs to the finished stage", ErrInvalidStatusForOperation, matchID)
	}
	if err := e.checkpoint("erase result", func() error { return e.policy.eraseResult(e, m) }); err != nil {
		return err
	}
	metrics.ResultsErased.WithLabelValues(e.format()).Inc()
	e.logger.Info("result erased", slog.String("match_id", matchID))
	return nil
}

// Abort ends the tournament early.
func (e *Event) Abort() error {
	if e.t.Status.Over() {
		return fmt.Errorf("%w: tournament is %s", ErrInvalidStatusForOperation, e.t.Status)
	}
	return e.setStatus(models.StatusAborted)
}

// Standings recomputes tiebreakers and returns players in ranking order,
// optionally leaving out removed and eliminated players.
func (e *Event) Standings(activeOnly bool) []*models.Player {
	e.ranker.Compute(e.t)
	players := e.t.Players
	if activeOnly {
		players = e.t.ActivePlayers()
	}
	return e.ranker.Sort(players, e.t)
}

// rankedActive returns the active players in current standings order.
func (e *Event) rankedActive() []*models.Player {
	return e.Standings(true)
}

func (e *Event) bracketParams(players []*models.Player, round int) brackets.GenerateBracketParams {
	return brackets.GenerateBracketParams{
		Tournament: e.t,
		Players:    players,
		Round:      round,
		IDs:        e.ids,
	}
}

func (e *Event) addMatches(matches []*models.Match) {
	for _, m := range matches {
		e.t.AddMatch(m)
	}
}

// settleByes credits every unopposed match of round.
func (e *Event) settleByes(round int) {
	for _, m := range e.t.MatchesInRound(round) {
		awardBye(e, m)
	}
}
