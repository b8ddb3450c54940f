package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/Dosada05/tournament-engine/models"
)

const (
	StandingsSheet = "Standings"
	MatchesSheet   = "Matches"
)

// WriteStandings renders a standings table and the match list of t as an
// XLSX workbook. Tiebreaker columns follow the tournament's precedence list.
func WriteStandings(w io.Writer, t *models.Tournament, rows []models.TournamentStanding) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", StandingsSheet); err != nil {
		return fmt.Errorf("failed to name standings sheet: %w", err)
	}

	var tiebreakers []models.Tiebreaker
	for _, tb := range t.Tiebreakers {
		if tb != models.TiebreakVersus {
			tiebreakers = append(tiebreakers, tb)
		}
	}

	header := []interface{}{"Rank", "Player", "Alias", "Active", "Matches", "Wins", "Draws", "Losses", "Byes", "Match Points", "Game Points"}
	for _, tb := range tiebreakers {
		header = append(header, string(tb))
	}
	if err := setRow(f, StandingsSheet, 1, header); err != nil {
		return err
	}
	for i, s := range rows {
		row := []interface{}{s.Rank, s.PlayerID, s.Alias, s.Active, s.MatchCount, s.Wins, s.Draws, s.Losses, s.Byes, s.MatchPoints, s.GamePoints}
		for _, tb := range tiebreakers {
			row = append(row, s.Tiebreakers.Value(tb))
		}
		if err := setRow(f, StandingsSheet, i+2, row); err != nil {
			return err
		}
	}

	if _, err := f.NewSheet(MatchesSheet); err != nil {
		return fmt.Errorf("failed to add matches sheet: %w", err)
	}
	if err := setRow(f, MatchesSheet, 1, []interface{}{"Match", "Round", "Number", "Player One", "Player Two", "Active", "P1 Wins", "P2 Wins", "Draws"}); err != nil {
		return err
	}
	for i, m := range t.Matches {
		row := []interface{}{m.ID, m.Round, m.Number, m.PlayerOne, m.PlayerTwo, m.Active, m.Result.P1Wins, m.Result.P2Wins, m.Result.Draws}
		if err := setRow(f, MatchesSheet, i+2, row); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	axis, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, axis, &values); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", sheet, row, err)
	}
	return nil
}
