package standings

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/tournament-engine/models"
)

func newTournament(format models.Format, sorting models.Sorting, tbs []models.Tiebreaker) *models.Tournament {
	return models.NewTournament(models.TournamentOptions{
		ID:          "t",
		Format:      format,
		Sorting:     sorting,
		Tiebreakers: tbs,
	}, time.Unix(0, 0))
}

func record(t *models.Tournament, match string, round int, a, b string, outcome models.Outcome) {
	pa, _ := t.Player(a)
	pb, _ := t.Player(b)
	var pointsA, pointsB float64
	var back models.Outcome
	switch outcome {
	case models.OutcomeWin:
		pointsA, back = t.PointsForWin, models.OutcomeLoss
	case models.OutcomeDraw:
		pointsA, pointsB, back = t.PointsForDraw, t.PointsForDraw, models.OutcomeDraw
	}
	pa.Record(models.PlayerResult{Match: match, Round: round, Opponent: b, Outcome: outcome, MatchPoints: pointsA, GamePoints: pointsA, Games: 1})
	pb.Record(models.PlayerResult{Match: match, Round: round, Opponent: a, Outcome: back, MatchPoints: pointsB, GamePoints: pointsB, Games: 1})
}

func TestCompute(t *testing.T) {
	tour := newTournament(models.FormatSwiss, models.SortingNone, nil)
	for _, id := range []string{"a", "b", "c"} {
		tour.Players = append(tour.Players, models.NewPlayer(id, id, 0, 0))
	}
	record(tour, "m1", 1, "a", "b", models.OutcomeWin)
	record(tour, "m2", 2, "a", "c", models.OutcomeDraw)
	record(tour, "m3", 3, "b", "c", models.OutcomeWin)

	New().Compute(tour)

	a, _ := tour.Player("a")
	b, _ := tour.Player("b")
	c, _ := tour.Player("c")

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"a solkoff", a.Tiebreakers.Solkoff, 1.5},
		{"b solkoff", b.Tiebreakers.Solkoff, 2},
		{"c solkoff", c.Tiebreakers.Solkoff, 2.5},
		{"a sonneborn berger", a.Tiebreakers.SonnebornBerger, 1.25},
		{"b sonneborn berger", b.Tiebreakers.SonnebornBerger, 0.5},
		{"c sonneborn berger", c.Tiebreakers.SonnebornBerger, 0.75},
		{"a cumulative", a.Tiebreakers.Cumulative, 2.5},
		{"a match win pct", a.Tiebreakers.MatchWinPct, 0.75},
		{"c match win pct", c.Tiebreakers.MatchWinPct, 0.25},
		{"a median buchholz", a.Tiebreakers.MedianBuchholz, 1.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, tt.got, 1e-9)
		})
	}

	// c's 0.25 match win percentage is floored for a's average.
	assert.InDelta(t, (0.5+percentageFloor)/2, a.Tiebreakers.OppMatchWinPct, 1e-9)
}

func TestMedian(t *testing.T) {
	assert.Equal(t, 0.0, median(nil))
	assert.Equal(t, 3.0, median([]float64{1, 2}))
	assert.Equal(t, 2.0, median([]float64{1, 2, 3}))
	assert.Equal(t, 5.0, median([]float64{0, 2, 3, 9}))
}

func TestSort(t *testing.T) {
	t.Run("match points first", func(t *testing.T) {
		tour := newTournament(models.FormatSwiss, models.SortingNone, nil)
		for _, id := range []string{"c", "b", "a"} {
			tour.Players = append(tour.Players, models.NewPlayer(id, id, 0, 0))
		}
		record(tour, "m1", 1, "a", "b", models.OutcomeWin)
		record(tour, "m2", 2, "b", "c", models.OutcomeWin)
		record(tour, "m3", 3, "a", "c", models.OutcomeWin)
		calc := New()
		calc.Compute(tour)

		sorted := calc.Sort(tour.Players, tour)
		require.Len(t, sorted, 3)
		assert.Equal(t, []string{"a", "b", "c"}, ids(sorted))
		assert.Equal(t, "c", tour.Players[0].ID, "input order untouched")
	})

	t.Run("versus breaks a points tie", func(t *testing.T) {
		tour := newTournament(models.FormatRoundRobin, models.SortingNone, []models.Tiebreaker{models.TiebreakVersus})
		b := models.NewPlayer("b", "b", 0, 0)
		a := models.NewPlayer("a", "a", 0, 0)
		tour.Players = append(tour.Players, b, a)
		record(tour, "m1", 1, "a", "b", models.OutcomeWin)
		b.Record(models.PlayerResult{Match: "m2", Round: 2, Outcome: models.OutcomeBye, MatchPoints: 1, GamePoints: 1, Games: 1})

		sorted := New().Sort(tour.Players, tour)
		assert.Equal(t, []string{"a", "b"}, ids(sorted))
	})

	t.Run("seed follows sorting direction", func(t *testing.T) {
		for _, tt := range []struct {
			sorting models.Sorting
			want    []string
		}{
			{models.SortingAscending, []string{"s1", "s2", "s3"}},
			{models.SortingDescending, []string{"s3", "s2", "s1"}},
			{models.SortingNone, []string{"s3", "s1", "s2"}},
		} {
			tour := newTournament(models.FormatSwiss, tt.sorting, nil)
			tour.Players = []*models.Player{
				models.NewPlayer("s3", "", 3, 0),
				models.NewPlayer("s1", "", 1, 0),
				models.NewPlayer("s2", "", 2, 0),
			}
			assert.Equal(t, tt.want, ids(New().Sort(tour.Players, tour)), string(tt.sorting))
		}
	})
}

func ids(players []*models.Player) []string {
	out := make([]string, len(players))
	for i, p := range players {
		out[i] = p.ID
	}
	return out
}
