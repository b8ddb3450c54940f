package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Dosada05/tournament-engine/models"
)

func TestWriteStandings(t *testing.T) {
	tour := models.NewTournament(models.TournamentOptions{ID: "cup", Format: models.FormatRoundRobin}, time.Unix(0, 0))
	m := models.NewMatch("m1", 1, 1)
	m.Seat("ann")
	m.Seat("bob")
	tour.AddMatch(m)

	rows := []models.TournamentStanding{
		{TournamentID: "cup", Rank: 1, PlayerID: "ann", Alias: "Ann", Active: true, MatchCount: 1, Wins: 1},
		{TournamentID: "cup", Rank: 2, PlayerID: "bob", Alias: "Bob", Active: true, MatchCount: 1, Losses: 1},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteStandings(&buf, tour, rows))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{StandingsSheet, MatchesSheet}, f.GetSheetList())

	standings, err := f.GetRows(StandingsSheet)
	require.NoError(t, err)
	require.Len(t, standings, 3)
	// Versus has no per-player value and gets no column.
	assert.Equal(t, "sonneborn berger", standings[0][len(standings[0])-1])
	assert.Equal(t, []string{"1", "ann", "Ann"}, standings[1][:3])
	assert.Equal(t, []string{"2", "bob", "Bob"}, standings[2][:3])

	matches, err := f.GetRows(MatchesSheet)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, []string{"m1", "1", "1", "ann", "bob"}, matches[1][:5])
}
