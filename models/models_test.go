package models

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func float(v float64) *float64 { return &v }

func TestNewTournamentDefaults(t *testing.T) {
	tests := []struct {
		name            string
		opts            TournamentOptions
		wantWin         float64
		wantBye         float64
		wantTiebreakers []Tiebreaker
	}{
		{
			name:            "elimination",
			opts:            TournamentOptions{},
			wantWin:         1,
			wantBye:         1,
			wantTiebreakers: []Tiebreaker{},
		},
		{
			name:            "swiss bye follows win",
			opts:            TournamentOptions{Format: FormatSwiss, PointsForWin: float(3)},
			wantWin:         3,
			wantBye:         3,
			wantTiebreakers: []Tiebreaker{TiebreakSolkoff, TiebreakCumulative},
		},
		{
			name:            "round robin explicit bye",
			opts:            TournamentOptions{Format: FormatRoundRobin, PointsForWin: float(3), PointsForBye: float(1)},
			wantWin:         3,
			wantBye:         1,
			wantTiebreakers: []Tiebreaker{TiebreakSonnebornBerger, TiebreakVersus},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tour := NewTournament(tt.opts, time.Unix(0, 0))
			assert.Equal(t, StatusRegistration, tour.Status)
			assert.Equal(t, DefaultTournamentName, tour.Name)
			assert.Equal(t, tt.wantWin, tour.PointsForWin)
			assert.Equal(t, tt.wantBye, tour.PointsForBye)
			assert.Equal(t, 0.5, tour.PointsForDraw)
			assert.Equal(t, 1, tour.BestOf)
			assert.Equal(t, tt.wantTiebreakers, tour.Tiebreakers)
		})
	}
}

func TestByeGames(t *testing.T) {
	for bestOf, want := range map[int]int{1: 1, 2: 1, 3: 2, 5: 3} {
		tour := NewTournament(TournamentOptions{BestOf: bestOf}, time.Unix(0, 0))
		assert.Equal(t, want, tour.ByeGames(), "best of %d", bestOf)
	}
}

func TestPlayerRecordAndForget(t *testing.T) {
	p := NewPlayer("p1", "Ann", 0, 0)
	p.Record(PlayerResult{Match: "m1", Opponent: "p2", Outcome: OutcomeWin, MatchPoints: 1, GamePoints: 2, Games: 3})
	p.Record(PlayerResult{Match: "m2", Outcome: OutcomeBye, MatchPoints: 1, GamePoints: 1, Games: 1})

	assert.Equal(t, 2, p.MatchCount)
	assert.Equal(t, 2.0, p.MatchPoints)
	assert.Equal(t, 4, p.GameCount)
	assert.Equal(t, []string{"p2"}, p.Opponents())
	assert.True(t, p.HasPlayed("p2"))

	require.True(t, p.Forget("m1"))
	assert.False(t, p.Forget("m1"))
	assert.Equal(t, 1, p.MatchCount)
	assert.Equal(t, 1.0, p.MatchPoints)
	assert.Equal(t, 1, p.GameCount)
	assert.False(t, p.HasPlayed("p2"))
	_, ok := p.ResultFor("m2")
	assert.True(t, ok)
}

func TestMatchSeating(t *testing.T) {
	m := NewMatch("m", 2, 1)
	require.True(t, m.Seat("a"))
	assert.False(t, m.Active)
	require.True(t, m.Seat("b"))
	assert.True(t, m.Active)
	assert.False(t, m.Seat("c"))

	require.True(t, m.Unseat("a"))
	assert.False(t, m.Active)
	assert.Equal(t, "", m.Opponent("b"))
	require.True(t, m.Seat("c"))
	assert.Equal(t, []string{"c", "b"}, []string{m.PlayerOne, m.PlayerTwo})
	assert.False(t, m.Unseat("z"))

	assert.False(t, m.Resolved())
	m.Result = MatchResult{P1Wins: 0, P2Wins: 2}
	m.Active = false
	assert.True(t, m.Resolved())
	assert.Equal(t, "b", m.Winner())
	assert.Equal(t, "c", m.Loser())
}

func TestMatchArena(t *testing.T) {
	tour := NewTournament(TournamentOptions{ID: "t"}, time.Unix(0, 0))
	a := NewMatch("a", 1, 1)
	a.WinnersPath = "c"
	b := NewMatch("b", 1, 2)
	b.WinnersPath = "c"
	c := NewMatch("c", 2, 1)
	for _, m := range []*Match{a, b, c} {
		tour.AddMatch(m)
	}

	got, ok := tour.Match("b")
	require.True(t, ok)
	assert.Same(t, b, got)
	assert.False(t, tour.HasMatch(""))
	assert.Equal(t, 2, tour.MaxRound())
	assert.Len(t, tour.MatchesInRound(1), 2)
	assert.ElementsMatch(t, []*Match{a, b}, tour.FeedersOf("c"))
}

func TestTournamentValidate(t *testing.T) {
	valid := func() *Tournament {
		tour := NewTournament(TournamentOptions{ID: "t"}, time.Unix(0, 0))
		p1 := NewPlayer("p1", "p1", 0, 0)
		p2 := NewPlayer("p2", "p2", 0, 0)
		p1.Record(PlayerResult{Match: "m", Opponent: "p2", Outcome: OutcomeWin, MatchPoints: 1, GamePoints: 1, Games: 1})
		p2.Record(PlayerResult{Match: "m", Opponent: "p1", Outcome: OutcomeLoss, Games: 1})
		tour.Players = []*Player{p1, p2}
		m := NewMatch("m", 1, 1)
		m.Seat("p1")
		m.Seat("p2")
		m.Active = false
		m.Result = MatchResult{P1Wins: 1}
		tour.AddMatch(m)
		return tour
	}

	tests := []struct {
		name   string
		mutate func(*Tournament)
	}{
		{name: "missing id", mutate: func(tour *Tournament) { tour.ID = "" }},
		{name: "unknown format", mutate: func(tour *Tournament) { tour.Format = "ladder" }},
		{name: "duplicate player", mutate: func(tour *Tournament) { tour.Players = append(tour.Players, NewPlayer("p1", "", 0, 0)) }},
		{name: "unknown player in match", mutate: func(tour *Tournament) { tour.Matches[0].PlayerTwo = "ghost" }},
		{name: "dangling path", mutate: func(tour *Tournament) { tour.Matches[0].WinnersPath = "nowhere" }},
		{name: "aggregates drift", mutate: func(tour *Tournament) { tour.Players[0].MatchPoints = 5 }},
	}
	require.NoError(t, valid().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tour := valid()
			tt.mutate(tour)
			require.ErrorIs(t, tour.Validate(), ErrInvalidSnapshot)
		})
	}
}

func TestCloneIsDeep(t *testing.T) {
	tour := NewTournament(TournamentOptions{ID: "t"}, time.Unix(0, 0))
	p := NewPlayer("p1", "p1", 0, 0)
	tour.Players = append(tour.Players, p)
	tour.AddMatch(NewMatch("m", 1, 1))

	c := tour.Clone()
	require.Empty(t, cmp.Diff(tour, c, cmpopts.IgnoreUnexported(Tournament{})))

	c.Players[0].Record(PlayerResult{Match: "m", Outcome: OutcomeBye, MatchPoints: 1})
	c.Matches[0].PlayerOne = "p1"
	assert.Zero(t, p.MatchCount)
	assert.Empty(t, tour.Matches[0].PlayerOne)

	tour.Restore(c)
	assert.Equal(t, 1, tour.Players[0].MatchCount)
	got, ok := tour.Match("m")
	require.True(t, ok)
	assert.Equal(t, "p1", got.PlayerOne)
}

func TestStandingsTable(t *testing.T) {
	p := NewPlayer("p1", "Ann", 0, 0)
	p.Record(PlayerResult{Match: "a", Outcome: OutcomeWin, MatchPoints: 1})
	p.Record(PlayerResult{Match: "b", Outcome: OutcomeDraw, MatchPoints: 0.5})
	p.Record(PlayerResult{Match: "c", Outcome: OutcomeBye, MatchPoints: 1})
	q := NewPlayer("p2", "Bob", 0, 0)
	q.Record(PlayerResult{Match: "a", Outcome: OutcomeLoss})

	rows := StandingsTable("t", []*Player{p, q})
	require.Len(t, rows, 2)
	assert.Equal(t, TournamentStanding{
		TournamentID: "t",
		Rank:         1,
		PlayerID:     "p1",
		Alias:        "Ann",
		Active:       true,
		MatchCount:   3,
		Wins:         1,
		Draws:        1,
		Byes:         1,
		MatchPoints:  2.5,
	}, rows[0])
	assert.Equal(t, 2, rows[1].Rank)
	assert.Equal(t, 1, rows[1].Losses)
}
