package models

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

// TournamentStatus is the lifecycle state of a tournament.
type TournamentStatus string

const (
	StatusRegistration TournamentStatus = "registration"
	StatusActive       TournamentStatus = "active"
	StatusPlayoffs     TournamentStatus = "playoffs"
	StatusAborted      TournamentStatus = "aborted"
	StatusFinished     TournamentStatus = "finished"
)

// Over reports whether no further play is possible.
func (s TournamentStatus) Over() bool {
	return s == StatusAborted || s == StatusFinished
}

// Tournament is the flat record shared by every format. It doubles as the
// snapshot structure: marshalling it captures the whole event.
type Tournament struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	Format        Format           `json:"format"`
	Sorting       Sorting          `json:"sorting"`
	Consolation   bool             `json:"consolation"`
	PlayerLimit   int              `json:"player_limit"`
	PointsForWin  float64          `json:"points_for_win"`
	PointsForDraw float64          `json:"points_for_draw"`
	PointsForBye  float64          `json:"points_for_bye"`
	CurrentRound  int              `json:"current_round"`
	StartTime     time.Time        `json:"start_time"`
	Status        TournamentStatus `json:"status"`

	Rounds      int          `json:"rounds,omitempty"`
	Playoffs    PlayoffMode  `json:"playoffs,omitempty"`
	BestOf      int          `json:"best_of"`
	Cut         Cut          `json:"cut"`
	Tiebreakers []Tiebreaker `json:"tiebreakers"`
	Double      bool         `json:"double,omitempty"`

	Players []*Player `json:"players"`
	Matches []*Match  `json:"matches"`

	matchIndex map[string]int
}

// TournamentOptions are the user-supplied settings for a new tournament.
// Nil point values fall back to the defaults; PointsForBye follows
// PointsForWin when only the latter is set.
type TournamentOptions struct {
	ID            string       `json:"id" yaml:"id"`
	Name          string       `json:"name" yaml:"name"`
	Format        Format       `json:"format" yaml:"format"`
	Sorting       Sorting      `json:"sorting" yaml:"sorting"`
	Consolation   bool         `json:"consolation" yaml:"consolation"`
	PlayerLimit   int          `json:"player_limit" yaml:"player_limit"`
	PointsForWin  *float64     `json:"points_for_win" yaml:"points_for_win"`
	PointsForDraw *float64     `json:"points_for_draw" yaml:"points_for_draw"`
	PointsForBye  *float64     `json:"points_for_bye" yaml:"points_for_bye"`
	Rounds        int          `json:"rounds" yaml:"rounds"`
	Playoffs      PlayoffMode  `json:"playoffs" yaml:"playoffs"`
	BestOf        int          `json:"best_of" yaml:"best_of"`
	Cut           Cut          `json:"cut" yaml:"cut"`
	Tiebreakers   []Tiebreaker `json:"tiebreakers" yaml:"tiebreakers"`
	Double        bool         `json:"double" yaml:"double"`
}

const DefaultTournamentName = "New Tournament"

// NewTournament builds a tournament in registration from opts, filling the
// per-format defaults.
func NewTournament(opts TournamentOptions, now time.Time) *Tournament {
	t := &Tournament{
		ID:            opts.ID,
		Name:          opts.Name,
		Format:        opts.Format,
		Sorting:       opts.Sorting,
		Consolation:   opts.Consolation,
		PlayerLimit:   opts.PlayerLimit,
		PointsForWin:  1,
		PointsForDraw: 0.5,
		StartTime:     now,
		Status:        StatusRegistration,
		Rounds:        opts.Rounds,
		Playoffs:      opts.Playoffs,
		BestOf:        opts.BestOf,
		Cut:           opts.Cut,
		Tiebreakers:   opts.Tiebreakers,
		Double:        opts.Double,
		Players:       []*Player{},
		Matches:       []*Match{},
	}
	if t.Name == "" {
		t.Name = DefaultTournamentName
	}
	if t.Format == "" {
		t.Format = FormatElimination
	}
	if t.Sorting == "" {
		t.Sorting = SortingNone
	}
	if opts.PointsForWin != nil {
		t.PointsForWin = *opts.PointsForWin
	}
	if opts.PointsForDraw != nil {
		t.PointsForDraw = *opts.PointsForDraw
	}
	t.PointsForBye = t.PointsForWin
	if opts.PointsForBye != nil {
		t.PointsForBye = *opts.PointsForBye
	}
	if t.BestOf <= 0 {
		t.BestOf = 1
	}
	if t.Playoffs == "" {
		t.Playoffs = PlayoffsNone
	}
	if t.Cut.Type == "" {
		t.Cut.Type = CutNone
	}
	if t.Tiebreakers == nil {
		switch t.Format {
		case FormatSwiss:
			t.Tiebreakers = []Tiebreaker{TiebreakSolkoff, TiebreakCumulative}
		case FormatRoundRobin:
			t.Tiebreakers = []Tiebreaker{TiebreakSonnebornBerger, TiebreakVersus}
		default:
			t.Tiebreakers = []Tiebreaker{}
		}
	}
	return t
}

// ByeGames is the number of games credited for a bye or a forced loss:
// half of a best-of series, rounded up.
func (t *Tournament) ByeGames() int {
	return (t.BestOf + 1) / 2
}

// Player looks a player up by id.
func (t *Tournament) Player(id string) (*Player, bool) {
	if id == "" {
		return nil, false
	}
	for _, p := range t.Players {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

// DeletePlayer removes a player record outright. Only valid before any
// match references the player.
func (t *Tournament) DeletePlayer(id string) bool {
	for i, p := range t.Players {
		if p.ID == id {
			t.Players = append(t.Players[:i], t.Players[i+1:]...)
			return true
		}
	}
	return false
}

// ActivePlayers returns active players in registration order.
func (t *Tournament) ActivePlayers() []*Player {
	out := make([]*Player, 0, len(t.Players))
	for _, p := range t.Players {
		if p.Active {
			out = append(out, p)
		}
	}
	return out
}

func (t *Tournament) indexMatches() {
	if t.matchIndex != nil && len(t.matchIndex) == len(t.Matches) {
		return
	}
	t.matchIndex = make(map[string]int, len(t.Matches))
	for i, m := range t.Matches {
		t.matchIndex[m.ID] = i
	}
}

// Match looks a match up by id.
func (t *Tournament) Match(id string) (*Match, bool) {
	if id == "" {
		return nil, false
	}
	t.indexMatches()
	i, ok := t.matchIndex[id]
	if !ok || i >= len(t.Matches) || t.Matches[i].ID != id {
		return nil, false
	}
	return t.Matches[i], true
}

// HasMatch reports whether a match with id exists.
func (t *Tournament) HasMatch(id string) bool {
	_, ok := t.Match(id)
	return ok
}

// AddMatch appends m to the arena.
func (t *Tournament) AddMatch(m *Match) {
	t.indexMatches()
	t.Matches = append(t.Matches, m)
	t.matchIndex[m.ID] = len(t.Matches) - 1
}

// MatchesInRound returns matches of round in insertion order.
func (t *Tournament) MatchesInRound(round int) []*Match {
	var out []*Match
	for _, m := range t.Matches {
		if m.Round == round {
			out = append(out, m)
		}
	}
	return out
}

// MaxRound is the highest round number among generated matches.
func (t *Tournament) MaxRound() int {
	highest := 0
	for _, m := range t.Matches {
		if m.Round > highest {
			highest = m.Round
		}
	}
	return highest
}

// ActiveMatches counts matches still waiting for a result.
func (t *Tournament) ActiveMatches() int {
	n := 0
	for _, m := range t.Matches {
		if m.Active {
			n++
		}
	}
	return n
}

// FeedersOf returns the matches whose winner or loser is routed into id.
func (t *Tournament) FeedersOf(id string) []*Match {
	var out []*Match
	for _, m := range t.Matches {
		if m.FeedsInto(id) {
			out = append(out, m)
		}
	}
	return out
}

// Clone returns a deep copy, used to restore state when an operation fails
// half way through.
func (t *Tournament) Clone() *Tournament {
	c := *t
	c.matchIndex = nil
	c.Tiebreakers = slices.Clone(t.Tiebreakers)
	c.Players = make([]*Player, len(t.Players))
	for i, p := range t.Players {
		cp := *p
		cp.Results = slices.Clone(p.Results)
		c.Players[i] = &cp
	}
	c.Matches = make([]*Match, len(t.Matches))
	for i, m := range t.Matches {
		cm := *m
		c.Matches[i] = &cm
	}
	return &c
}

// Restore overwrites t in place with the state held by from.
func (t *Tournament) Restore(from *Tournament) {
	*t = *from.Clone()
}

var (
	ErrInvalidSnapshot = errors.New("invalid tournament snapshot")
)

// Validate checks the referential invariants of the record: unique ids,
// match slots and paths pointing at existing records, one result row per
// match and aggregates that match the rows.
func (t *Tournament) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidSnapshot)
	}
	if !t.Format.Valid() {
		return fmt.Errorf("%w: unknown format %q", ErrInvalidSnapshot, t.Format)
	}
	if err := ValidateTiebreakers(t.Tiebreakers); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}

	players := make(map[string]struct{}, len(t.Players))
	for _, p := range t.Players {
		if p == nil || p.ID == "" {
			return fmt.Errorf("%w: player without id", ErrInvalidSnapshot)
		}
		if _, dup := players[p.ID]; dup {
			return fmt.Errorf("%w: duplicate player id %s", ErrInvalidSnapshot, p.ID)
		}
		players[p.ID] = struct{}{}
	}

	matches := make(map[string]struct{}, len(t.Matches))
	for _, m := range t.Matches {
		if m == nil || m.ID == "" {
			return fmt.Errorf("%w: match without id", ErrInvalidSnapshot)
		}
		if _, dup := matches[m.ID]; dup {
			return fmt.Errorf("%w: duplicate match id %s", ErrInvalidSnapshot, m.ID)
		}
		matches[m.ID] = struct{}{}
	}

	for _, m := range t.Matches {
		for _, id := range []string{m.PlayerOne, m.PlayerTwo} {
			if _, ok := players[id]; id != "" && !ok {
				return fmt.Errorf("%w: match %s references unknown player %s", ErrInvalidSnapshot, m.ID, id)
			}
		}
		for _, id := range []string{m.WinnersPath, m.LosersPath} {
			if _, ok := matches[id]; id != "" && !ok {
				return fmt.Errorf("%w: match %s routes to unknown match %s", ErrInvalidSnapshot, m.ID, id)
			}
		}
	}

	for _, p := range t.Players {
		seen := make(map[string]struct{}, len(p.Results))
		var count, games int
		var mp, gp float64
		for _, r := range p.Results {
			if _, dup := seen[r.Match]; dup {
				return fmt.Errorf("%w: player %s has two results for match %s", ErrInvalidSnapshot, p.ID, r.Match)
			}
			seen[r.Match] = struct{}{}
			count++
			games += r.Games
			mp += r.MatchPoints
			gp += r.GamePoints
		}
		if count != p.MatchCount || games != p.GameCount || !closeTo(mp, p.MatchPoints) || !closeTo(gp, p.GamePoints) {
			return fmt.Errorf("%w: player %s aggregates do not match results", ErrInvalidSnapshot, p.ID)
		}
	}

	t.matchIndex = nil
	return nil
}

func closeTo(a, b float64) bool {
	d := a - b
	return d < 1e-9 && d > -1e-9
}
