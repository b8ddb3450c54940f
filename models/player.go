package models

// Outcome is how a single match ended for one player.
type Outcome string

const (
	OutcomeWin  Outcome = "win"
	OutcomeLoss Outcome = "loss"
	OutcomeDraw Outcome = "draw"
	OutcomeBye  Outcome = "bye"
)

// PlayerResult is one row of a player's match history. Opponent is empty for
// byes and assigned losses.
type PlayerResult struct {
	Match       string  `json:"match"`
	Round       int     `json:"round"`
	Opponent    string  `json:"opponent,omitempty"`
	Outcome     Outcome `json:"outcome"`
	MatchPoints float64 `json:"match_points"`
	GamePoints  float64 `json:"game_points"`
	Games       int     `json:"games"`
}

// TiebreakerValues holds the computed ranking metrics for a player.
type TiebreakerValues struct {
	MedianBuchholz    float64 `json:"median_buchholz"`
	Solkoff           float64 `json:"solkoff"`
	SonnebornBerger   float64 `json:"sonneborn_berger"`
	Cumulative        float64 `json:"cumulative"`
	OppCumulative     float64 `json:"opp_cumulative"`
	MatchWinPct       float64 `json:"match_win_pct"`
	OppMatchWinPct    float64 `json:"opp_match_win_pct"`
	OppOppMatchWinPct float64 `json:"opp_opp_match_win_pct"`
	GameWinPct        float64 `json:"game_win_pct"`
	OppGameWinPct     float64 `json:"opp_game_win_pct"`
}

// Value returns the metric named by tb. Versus is pairwise and has no
// per-player value, so it reports 0.
func (v TiebreakerValues) Value(tb Tiebreaker) float64 {
	switch tb {
	case TiebreakMedianBuchholz:
		return v.MedianBuchholz
	case TiebreakSolkoff:
		return v.Solkoff
	case TiebreakSonnebornBerger:
		return v.SonnebornBerger
	case TiebreakCumulative:
		return v.Cumulative
	case TiebreakOppCumulative:
		return v.OppCumulative
	case TiebreakMatchWinPct:
		return v.MatchWinPct
	case TiebreakOppMatchWinPct:
		return v.OppMatchWinPct
	case TiebreakOppOppMatchWinPct:
		return v.OppOppMatchWinPct
	case TiebreakGameWinPct:
		return v.GameWinPct
	case TiebreakOppGameWinPct:
		return v.OppGameWinPct
	}
	return 0
}

type Player struct {
	ID          string           `json:"id"`
	Alias       string           `json:"alias"`
	Seed        float64          `json:"seed"`
	InitialByes int              `json:"initial_byes"`
	PairingBye  bool             `json:"pairing_bye"`
	PairUpDown  bool             `json:"pair_up_down"`
	MatchCount  int              `json:"match_count"`
	MatchPoints float64          `json:"match_points"`
	GameCount   int              `json:"game_count"`
	GamePoints  float64          `json:"game_points"`
	BSN         int              `json:"bsn"`
	Active      bool             `json:"active"`
	Results     []PlayerResult   `json:"results"`
	Tiebreakers TiebreakerValues `json:"tiebreakers"`
}

// NewPlayer returns an active player with an empty history.
func NewPlayer(id, alias string, seed float64, initialByes int) *Player {
	return &Player{
		ID:          id,
		Alias:       alias,
		Seed:        seed,
		InitialByes: initialByes,
		Active:      true,
		Results:     []PlayerResult{},
	}
}

// Record appends a result row and adds it to the aggregates.
func (p *Player) Record(r PlayerResult) {
	p.Results = append(p.Results, r)
	p.MatchCount++
	p.MatchPoints += r.MatchPoints
	p.GameCount += r.Games
	p.GamePoints += r.GamePoints
}

// ResultFor returns the row recorded for matchID.
func (p *Player) ResultFor(matchID string) (PlayerResult, bool) {
	for _, r := range p.Results {
		if r.Match == matchID {
			return r, true
		}
	}
	return PlayerResult{}, false
}

// Forget removes the row recorded for matchID and subtracts it from the
// aggregates. It reports whether a row was found.
func (p *Player) Forget(matchID string) bool {
	for i, r := range p.Results {
		if r.Match != matchID {
			continue
		}
		p.MatchCount--
		p.MatchPoints -= r.MatchPoints
		p.GameCount -= r.Games
		p.GamePoints -= r.GamePoints
		p.Results = append(p.Results[:i], p.Results[i+1:]...)
		return true
	}
	return false
}

// Opponents lists the ids of every real opponent faced, in result order.
func (p *Player) Opponents() []string {
	opps := make([]string, 0, len(p.Results))
	for _, r := range p.Results {
		if r.Opponent != "" {
			opps = append(opps, r.Opponent)
		}
	}
	return opps
}

// HasPlayed reports whether p already met the player with id opponent.
func (p *Player) HasPlayed(opponent string) bool {
	for _, r := range p.Results {
		if r.Opponent == opponent {
			return true
		}
	}
	return false
}
