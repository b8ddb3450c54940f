package models

// TournamentStanding is one row of a rendered standings table.
type TournamentStanding struct {
	TournamentID string           `json:"tournament_id"`
	Rank         int              `json:"rank"`
	PlayerID     string           `json:"player_id"`
	Alias        string           `json:"alias"`
	Active       bool             `json:"active"`
	MatchCount   int              `json:"match_count"`
	Wins         int              `json:"wins"`
	Draws        int              `json:"draws"`
	Losses       int              `json:"losses"`
	Byes         int              `json:"byes"`
	MatchPoints  float64          `json:"match_points"`
	GamePoints   float64          `json:"game_points"`
	Tiebreakers  TiebreakerValues `json:"tiebreakers"`
}

// StandingsTable turns a sorted player list into ranked rows.
func StandingsTable(tournamentID string, players []*Player) []TournamentStanding {
	rows := make([]TournamentStanding, 0, len(players))
	for i, p := range players {
		row := TournamentStanding{
			TournamentID: tournamentID,
			Rank:         i + 1,
			PlayerID:     p.ID,
			Alias:        p.Alias,
			Active:       p.Active,
			MatchCount:   p.MatchCount,
			MatchPoints:  p.MatchPoints,
			GamePoints:   p.GamePoints,
			Tiebreakers:  p.Tiebreakers,
		}
		for _, r := range p.Results {
			switch r.Outcome {
			case OutcomeWin:
				row.Wins++
			case OutcomeDraw:
				row.Draws++
			case OutcomeLoss:
				row.Losses++
			case OutcomeBye:
				row.Byes++
			}
		}
		rows = append(rows, row)
	}
	return rows
}
