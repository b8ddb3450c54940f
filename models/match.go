package models

// MatchResult holds games won by each side and games drawn.
type MatchResult struct {
	P1Wins int `json:"p1_wins"`
	P2Wins int `json:"p2_wins"`
	Draws  int `json:"draws"`
}

// Match is a pairing inside a round or a node of an elimination bracket.
// Player and path fields hold ids; an empty string means unassigned (or bye)
// for players and bracket terminus for paths.
type Match struct {
	ID          string      `json:"id"`
	Round       int         `json:"round"`
	Number      int         `json:"match"`
	PlayerOne   string      `json:"player_one,omitempty"`
	PlayerTwo   string      `json:"player_two,omitempty"`
	Active      bool        `json:"active"`
	Result      MatchResult `json:"result"`
	WinnersPath string      `json:"winners_path,omitempty"`
	LosersPath  string      `json:"losers_path,omitempty"`
}

func NewMatch(id string, round, number int) *Match {
	return &Match{ID: id, Round: round, Number: number}
}

// Seated reports whether both slots hold a player.
func (m *Match) Seated() bool {
	return m.PlayerOne != "" && m.PlayerTwo != ""
}

// Has reports whether playerID occupies either slot.
func (m *Match) Has(playerID string) bool {
	return playerID != "" && (m.PlayerOne == playerID || m.PlayerTwo == playerID)
}

// Opponent returns the other occupant of a match that playerID is in.
func (m *Match) Opponent(playerID string) string {
	if m.PlayerOne == playerID {
		return m.PlayerTwo
	}
	return m.PlayerOne
}

// Seat puts playerID into the first open slot and activates the match once
// both slots are filled. It reports false when the match is already full.
func (m *Match) Seat(playerID string) bool {
	switch {
	case m.PlayerOne == "":
		m.PlayerOne = playerID
	case m.PlayerTwo == "":
		m.PlayerTwo = playerID
	default:
		return false
	}
	if m.Seated() {
		m.Active = true
	}
	return true
}

// Unseat clears playerID from whichever slot holds it and deactivates the
// match. It reports whether the player was seated.
func (m *Match) Unseat(playerID string) bool {
	switch {
	case playerID == "":
		return false
	case m.PlayerOne == playerID:
		m.PlayerOne = ""
	case m.PlayerTwo == playerID:
		m.PlayerTwo = ""
	default:
		return false
	}
	m.Active = false
	return true
}

// Resolved reports whether m is closed with a score on record. Reported
// results and draws count, and so do byes and forfeits.
func (m *Match) Resolved() bool {
	return !m.Active && m.Result != (MatchResult{})
}

// Winner and Loser read the recorded result. They are meaningful only for a
// resolved match with a winner.
func (m *Match) Winner() string {
	if m.Result.P1Wins > m.Result.P2Wins {
		return m.PlayerOne
	}
	return m.PlayerTwo
}

func (m *Match) Loser() string {
	if m.Result.P1Wins > m.Result.P2Wins {
		return m.PlayerTwo
	}
	return m.PlayerOne
}

// FeedsInto reports whether m routes a winner or loser into target.
func (m *Match) FeedsInto(target string) bool {
	return target != "" && (m.WinnersPath == target || m.LosersPath == target)
}
