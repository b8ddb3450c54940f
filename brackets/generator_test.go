package brackets

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/tournament-engine/models"
	"github.com/Dosada05/tournament-engine/utils"
)

func newParams(n int, opts models.TournamentOptions) GenerateBracketParams {
	if opts.ID == "" {
		opts.ID = "t"
	}
	t := models.NewTournament(opts, time.Unix(0, 0))
	for i := 1; i <= n; i++ {
		t.Players = append(t.Players, models.NewPlayer(fmt.Sprintf("p%d", i), "", float64(i), 0))
	}
	return GenerateBracketParams{
		Tournament: t,
		Players:    t.Players,
		Round:      1,
		IDs:        utils.NewSequentialIDs("m"),
	}
}

func byID(matches []*models.Match) map[string]*models.Match {
	out := make(map[string]*models.Match, len(matches))
	for _, m := range matches {
		out[m.ID] = m
	}
	return out
}

func feedCount(matches []*models.Match, id string) int {
	n := 0
	for _, m := range matches {
		if m.WinnersPath == id {
			n++
		}
		if m.LosersPath == id {
			n++
		}
	}
	return n
}

func seatedCount(m *models.Match) int {
	n := 0
	if m.PlayerOne != "" {
		n++
	}
	if m.PlayerTwo != "" {
		n++
	}
	return n
}

// requireWellFormedBracket checks that every path points forward to an
// existing match and that every match has exactly two entrants, either
// seated or routed in.
func requireWellFormedBracket(t *testing.T, matches []*models.Match) {
	t.Helper()
	index := byID(matches)
	require.Len(t, index, len(matches), "match ids must be unique")
	for _, m := range matches {
		for _, path := range []string{m.WinnersPath, m.LosersPath} {
			if path == "" {
				continue
			}
			target, ok := index[path]
			require.True(t, ok, "match %s routes to unknown %s", m.ID, path)
			require.Greater(t, target.Round, m.Round, "match %s routes backwards", m.ID)
		}
		require.Equal(t, 2, seatedCount(m)+feedCount(matches, m.ID), "match %s entrants", m.ID)
		require.Equal(t, m.Seated(), m.Active, "match %s activity", m.ID)
	}
}

func TestSeedOrder(t *testing.T) {
	assert.Equal(t, []int{1, 2}, seedOrder(2))
	assert.Equal(t, []int{1, 4, 2, 3}, seedOrder(4))
	assert.Equal(t, []int{1, 8, 4, 5, 2, 7, 3, 6}, seedOrder(8))
}

func TestSingleElimination(t *testing.T) {
	tests := []struct {
		name        string
		players     int
		consolation bool
		wantMatches int
		wantActive  int
	}{
		{name: "two players", players: 2, wantMatches: 1, wantActive: 1},
		{name: "three players", players: 3, wantMatches: 2, wantActive: 1},
		{name: "four players", players: 4, wantMatches: 3, wantActive: 2},
		{name: "five players", players: 5, wantMatches: 4, wantActive: 2},
		{name: "eight players", players: 8, wantMatches: 7, wantActive: 4},
		{name: "four players with consolation", players: 4, consolation: true, wantMatches: 4, wantActive: 2},
		{name: "three players skip consolation", players: 3, consolation: true, wantMatches: 2, wantActive: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := newParams(tt.players, models.TournamentOptions{Consolation: tt.consolation})
			matches, err := NewSingleEliminationGenerator().GenerateBracket(context.Background(), params)
			require.NoError(t, err)
			require.Len(t, matches, tt.wantMatches)
			requireWellFormedBracket(t, matches)

			active := 0
			terminal := 0
			for _, m := range matches {
				if m.Active {
					active++
				}
				if m.WinnersPath == "" {
					terminal++
				}
			}
			assert.Equal(t, tt.wantActive, active)
			if tt.consolation && tt.wantMatches == tt.players {
				assert.Equal(t, 2, terminal)
			} else {
				assert.Equal(t, 1, terminal)
			}
		})
	}
}

func TestSingleEliminationSeeding(t *testing.T) {
	params := newParams(4, models.TournamentOptions{})
	matches, err := NewSingleEliminationGenerator().GenerateBracket(context.Background(), params)
	require.NoError(t, err)

	first := matches[:2]
	assert.Equal(t, []string{"p1", "p4"}, []string{first[0].PlayerOne, first[0].PlayerTwo})
	assert.Equal(t, []string{"p2", "p3"}, []string{first[1].PlayerOne, first[1].PlayerTwo})
	assert.Equal(t, first[0].WinnersPath, first[1].WinnersPath)
	assert.Equal(t, 2, matches[2].Round)
}

func TestSingleEliminationByesSeatSecondRound(t *testing.T) {
	params := newParams(5, models.TournamentOptions{})
	matches, err := NewSingleEliminationGenerator().GenerateBracket(context.Background(), params)
	require.NoError(t, err)

	var round2 []*models.Match
	for _, m := range matches {
		if m.Round == 2 {
			round2 = append(round2, m)
		}
	}
	require.Len(t, round2, 2)
	assert.Equal(t, "p1", round2[0].PlayerOne)
	assert.False(t, round2[0].Active)
	assert.Equal(t, []string{"p2", "p3"}, []string{round2[1].PlayerOne, round2[1].PlayerTwo})
	assert.True(t, round2[1].Active)
}

func TestDoubleElimination(t *testing.T) {
	for n := 2; n <= 17; n++ {
		t.Run(fmt.Sprintf("%d players", n), func(t *testing.T) {
			params := newParams(n, models.TournamentOptions{})
			matches, err := NewDoubleEliminationGenerator().GenerateBracket(context.Background(), params)
			require.NoError(t, err)
			require.Len(t, matches, 2*n-2)
			requireWellFormedBracket(t, matches)

			terminal := 0
			for _, m := range matches {
				if m.WinnersPath == "" {
					terminal++
					assert.Empty(t, m.LosersPath)
				}
			}
			assert.Equal(t, 1, terminal, "only the grand final ends the bracket")
		})
	}
}

func TestRoundRobin(t *testing.T) {
	tests := []struct {
		name       string
		players    int
		double     bool
		wantRounds int
		wantReal   int
		wantByes   int
	}{
		{name: "even field", players: 4, wantRounds: 3, wantReal: 6},
		{name: "odd field", players: 5, wantRounds: 5, wantReal: 10, wantByes: 5},
		{name: "double", players: 4, double: true, wantRounds: 6, wantReal: 12},
		{name: "double odd field", players: 3, double: true, wantRounds: 6, wantReal: 6, wantByes: 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := newParams(tt.players, models.TournamentOptions{Format: models.FormatRoundRobin, Double: tt.double})
			matches, err := NewRoundRobinGenerator().GenerateBracket(context.Background(), params)
			require.NoError(t, err)

			pairings := make(map[[2]string]int)
			rounds := make(map[int]struct{})
			var real, byes int
			for _, m := range matches {
				rounds[m.Round] = struct{}{}
				if !m.Seated() {
					byes++
					assert.NotEmpty(t, m.PlayerOne)
					assert.False(t, m.Active)
					continue
				}
				real++
				key := [2]string{m.PlayerOne, m.PlayerTwo}
				if key[0] > key[1] {
					key[0], key[1] = key[1], key[0]
				}
				pairings[key]++
				assert.Equal(t, m.Round == 1, m.Active, "only round one starts active")
			}
			assert.Len(t, rounds, tt.wantRounds)
			assert.Equal(t, tt.wantReal, real)
			assert.Equal(t, tt.wantByes, byes)

			want := 1
			if tt.double {
				want = 2
			}
			assert.Len(t, pairings, tt.players*(tt.players-1)/2)
			for key, count := range pairings {
				assert.Equal(t, want, count, "pairing %v", key)
			}
		})
	}
}

func TestSwiss(t *testing.T) {
	t.Run("odd field gives the lowest ranked a bye", func(t *testing.T) {
		params := newParams(5, models.TournamentOptions{Format: models.FormatSwiss})
		matches, err := NewSwissGenerator().GenerateBracket(context.Background(), params)
		require.NoError(t, err)
		require.Len(t, matches, 3)
		assert.Equal(t, []string{"p1", "p2"}, []string{matches[0].PlayerOne, matches[0].PlayerTwo})
		assert.Equal(t, []string{"p3", "p4"}, []string{matches[1].PlayerOne, matches[1].PlayerTwo})
		assert.Equal(t, "p5", matches[2].PlayerOne)
		assert.False(t, matches[2].Seated())
		assert.False(t, matches[2].Active)
		assert.Equal(t, 5, params.Players[4].BSN)
	})

	t.Run("previous pairing bye is skipped", func(t *testing.T) {
		params := newParams(3, models.TournamentOptions{Format: models.FormatSwiss})
		params.Players[2].PairingBye = true
		matches, err := NewSwissGenerator().GenerateBracket(context.Background(), params)
		require.NoError(t, err)
		require.Len(t, matches, 2)
		assert.Equal(t, []string{"p1", "p3"}, []string{matches[0].PlayerOne, matches[0].PlayerTwo})
		assert.Equal(t, "p2", matches[1].PlayerOne)
	})

	t.Run("initial byes come first", func(t *testing.T) {
		params := newParams(4, models.TournamentOptions{Format: models.FormatSwiss})
		params.Players[0].InitialByes = 1
		matches, err := NewSwissGenerator().GenerateBracket(context.Background(), params)
		require.NoError(t, err)
		require.Len(t, matches, 3)
		var byes []string
		for _, m := range matches {
			if !m.Seated() {
				byes = append(byes, m.PlayerOne)
			}
		}
		assert.ElementsMatch(t, []string{"p1", "p4"}, byes)
	})

	t.Run("rematches are avoided", func(t *testing.T) {
		params := newParams(4, models.TournamentOptions{Format: models.FormatSwiss})
		params.Round = 2
		p1, p2 := params.Players[0], params.Players[1]
		p1.Record(models.PlayerResult{Match: "old", Round: 1, Opponent: "p2", Outcome: models.OutcomeWin, MatchPoints: 1})
		p2.Record(models.PlayerResult{Match: "old", Round: 1, Opponent: "p1", Outcome: models.OutcomeLoss})
		matches, err := NewSwissGenerator().GenerateBracket(context.Background(), params)
		require.NoError(t, err)
		require.Len(t, matches, 2)
		assert.Equal(t, []string{"p1", "p3"}, []string{matches[0].PlayerOne, matches[0].PlayerTwo})
		assert.Equal(t, []string{"p2", "p4"}, []string{matches[1].PlayerOne, matches[1].PlayerTwo})
		assert.True(t, p1.PairUpDown)
		assert.Equal(t, 2, matches[0].Round)
	})
}

func TestGeneratorsRejectShortFields(t *testing.T) {
	gens := []BracketGenerator{
		NewSingleEliminationGenerator(),
		NewDoubleEliminationGenerator(),
		NewRoundRobinGenerator(),
	}
	for _, g := range gens {
		t.Run(g.GetName(), func(t *testing.T) {
			_, err := g.GenerateBracket(context.Background(), newParams(1, models.TournamentOptions{}))
			require.ErrorIs(t, err, ErrNotEnoughPlayers)
		})
	}
}

func TestMatchIDsAvoidExisting(t *testing.T) {
	params := newParams(2, models.TournamentOptions{})
	params.Tournament.AddMatch(models.NewMatch("m-1", 1, 1))
	matches, err := NewSingleEliminationGenerator().GenerateBracket(context.Background(), params)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "m-2", matches[0].ID)
}
