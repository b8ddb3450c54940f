package services

import (
	"fmt"

	"github.com/Dosada05/tournament-engine/models"
	"github.com/Dosada05/tournament-engine/utils"
)

// newPlayer validates and appends a player record.
func newPlayer(e *Event, opts PlayerOptions) (*models.Player, error) {
	t := e.t
	if t.PlayerLimit > 0 && len(t.Players) >= t.PlayerLimit {
		return nil, fmt.Errorf("%w: limit is %d", ErrCapacityExceeded, t.PlayerLimit)
	}
	switch {
	case t.Status == models.StatusPlayoffs || t.Status.Over():
		return nil, fmt.Errorf("%w: cannot add players while %s", ErrInvalidStatusForOperation, t.Status)
	case t.Status != models.StatusRegistration && t.Format != models.FormatSwiss:
		return nil, fmt.Errorf("%w: %s tournaments only take players during registration", ErrInvalidStatusForOperation, t.Format)
	}
	if opts.InitialByes < 0 {
		return nil, fmt.Errorf("%w: negative initial byes", ErrInvalidOptions)
	}

	id := opts.ID
	if id != "" {
		if _, taken := t.Player(id); taken {
			return nil, fmt.Errorf("%w: player %s", ErrDuplicateID, id)
		}
	} else {
		var err error
		id, err = utils.UniqueID(e.ids, func(candidate string) bool {
			_, taken := t.Player(candidate)
			return taken
		})
		if err != nil {
			return nil, fmt.Errorf("allocate player id: %w", err)
		}
	}
	alias := opts.Alias
	if alias == "" {
		alias = id
	}

	p := models.NewPlayer(id, alias, opts.Seed, opts.InitialByes)
	t.Players = append(t.Players, p)
	return p, nil
}

// standardRows builds the result rows for a win/draw/loss report.
func standardRows(t *models.Tournament, m *models.Match) (models.PlayerResult, models.PlayerResult) {
	r := m.Result
	games := r.P1Wins + r.P2Wins + r.Draws
	one := models.PlayerResult{
		Match:      m.ID,
		Round:      m.Round,
		Opponent:   m.PlayerTwo,
		GamePoints: float64(r.P1Wins)*t.PointsForWin + float64(r.Draws)*t.PointsForDraw,
		Games:      games,
	}
	two := models.PlayerResult{
		Match:      m.ID,
		Round:      m.Round,
		Opponent:   m.PlayerOne,
		GamePoints: float64(r.P2Wins)*t.PointsForWin + float64(r.Draws)*t.PointsForDraw,
		Games:      games,
	}
	switch {
	case r.P1Wins > r.P2Wins:
		one.Outcome, one.MatchPoints = models.OutcomeWin, t.PointsForWin
		two.Outcome = models.OutcomeLoss
	case r.P2Wins > r.P1Wins:
		two.Outcome, two.MatchPoints = models.OutcomeWin, t.PointsForWin
		one.Outcome = models.OutcomeLoss
	default:
		one.Outcome, one.MatchPoints = models.OutcomeDraw, t.PointsForDraw
		two.Outcome, two.MatchPoints = models.OutcomeDraw, t.PointsForDraw
	}
	return one, two
}

// eliminationRows builds the result rows for a bracket match. Draws do not
// count in elimination.
func eliminationRows(t *models.Tournament, m *models.Match) (models.PlayerResult, models.PlayerResult) {
	r := m.Result
	games := r.P1Wins + r.P2Wins
	one := models.PlayerResult{
		Match: m.ID, Round: m.Round, Opponent: m.PlayerTwo,
		Outcome: models.OutcomeLoss, GamePoints: float64(r.P1Wins) * t.PointsForWin, Games: games,
	}
	two := models.PlayerResult{
		Match: m.ID, Round: m.Round, Opponent: m.PlayerOne,
		Outcome: models.OutcomeLoss, GamePoints: float64(r.P2Wins) * t.PointsForWin, Games: games,
	}
	if r.P1Wins > r.P2Wins {
		one.Outcome, one.MatchPoints = models.OutcomeWin, t.PointsForWin
	} else {
		two.Outcome, two.MatchPoints = models.OutcomeWin, t.PointsForWin
	}
	return one, two
}

func (e *Event) recordRows(m *models.Match, one, two models.PlayerResult) error {
	p1, err := e.player(m.PlayerOne)
	if err != nil {
		return err
	}
	p2, err := e.player(m.PlayerTwo)
	if err != nil {
		return err
	}
	p1.Record(one)
	p2.Record(two)
	return nil
}

// forgetRows removes the rows of m from both seated players.
func (e *Event) forgetRows(m *models.Match) {
	for _, id := range []string{m.PlayerOne, m.PlayerTwo} {
		if p, ok := e.t.Player(id); ok {
			p.Forget(m.ID)
		}
	}
}

// standardResult records a win/draw/loss result without any routing.
func standardResult(e *Event, m *models.Match, p1Wins, p2Wins, draws int) error {
	if e.reported(m) {
		e.forgetRows(m)
	}
	for _, id := range []string{m.PlayerOne, m.PlayerTwo} {
		p, err := e.player(id)
		if err != nil {
			return err
		}
		p.Active = true
	}
	m.Result = models.MatchResult{P1Wins: p1Wins, P2Wins: p2Wins, Draws: draws}
	one, two := standardRows(e.t, m)
	if err := e.recordRows(m, one, two); err != nil {
		return err
	}
	m.Active = false
	return nil
}

// checkUnwind verifies that a reported bracket match can be taken back one
// hop: the former winner and loser must still sit, undecided, in the
// matches they were routed to.
func checkUnwind(e *Event, m *models.Match) error {
	hops := []struct {
		player string
		target string
	}{
		{m.Winner(), m.WinnersPath},
		{m.Loser(), m.LosersPath},
	}
	for _, hop := range hops {
		if hop.target == "" {
			continue
		}
		next, err := e.match(hop.target)
		if err != nil {
			return err
		}
		if !next.Has(hop.player) {
			return fmt.Errorf("%w: player %s no longer waits in match %s", ErrIllegalErase, hop.player, next.ID)
		}
		if next.Resolved() {
			return fmt.Errorf("%w: match %s has already been decided", ErrIllegalErase, next.ID)
		}
	}
	return nil
}

// unwind takes a reported bracket match back one hop: both players are
// reactivated and pulled out of the matches they were routed to, and their
// rows are forgotten. checkUnwind must have passed.
func unwind(e *Event, m *models.Match) error {
	hops := [][2]string{
		{m.Winner(), m.WinnersPath},
		{m.Loser(), m.LosersPath},
	}
	for _, hop := range hops {
		p, err := e.player(hop[0])
		if err != nil {
			return err
		}
		p.Active = true
		if hop[1] == "" {
			continue
		}
		next, err := e.match(hop[1])
		if err != nil {
			return err
		}
		next.Unseat(p.ID)
	}
	e.forgetRows(m)
	return nil
}

// eliminationResult records a bracket result and routes both players.
func eliminationResult(e *Event, m *models.Match, p1Wins, p2Wins int) error {
	if p1Wins == p2Wins {
		return fmt.Errorf("%w: elimination match %s needs a winner", ErrInvalidResult, m.ID)
	}
	if e.reported(m) {
		if err := checkUnwind(e, m); err != nil {
			return err
		}
		if err := unwind(e, m); err != nil {
			return err
		}
	}

	m.Result = models.MatchResult{P1Wins: p1Wins, P2Wins: p2Wins}
	one, two := eliminationRows(e.t, m)
	if err := e.recordRows(m, one, two); err != nil {
		return err
	}
	m.Active = false

	if err := advance(e, m.Winner(), m.WinnersPath); err != nil {
		return err
	}
	loser, err := e.player(m.Loser())
	if err != nil {
		return err
	}
	if m.LosersPath == "" {
		loser.Active = false
		return nil
	}
	next, err := e.match(m.LosersPath)
	if err != nil {
		return err
	}
	if !next.Seat(loser.ID) {
		return fmt.Errorf("match %s has no open slot for %s", next.ID, loser.ID)
	}
	return nil
}

// advance seats playerID in the match at path. An empty path means the
// player won a terminal match; the tournament finishes once nothing else is
// left to play.
func advance(e *Event, playerID, path string) error {
	if path == "" {
		if e.t.ActiveMatches() == 0 {
			return e.setStatus(models.StatusFinished)
		}
		return nil
	}
	next, err := e.match(path)
	if err != nil {
		return err
	}
	if !next.Seat(playerID) {
		return fmt.Errorf("match %s has no open slot for %s", next.ID, playerID)
	}
	return nil
}

// eraseResult reopens a reported match and takes back its rows.
func eraseResult(e *Event, m *models.Match) error {
	if m.Active {
		return fmt.Errorf("%w: match %s has not been reported", ErrIllegalErase, m.ID)
	}
	if !m.Seated() {
		return fmt.Errorf("%w: match %s is a bye or an assigned loss", ErrIllegalErase, m.ID)
	}
	if !e.reported(m) {
		return fmt.Errorf("%w: match %s has not been reported", ErrIllegalErase, m.ID)
	}
	e.forgetRows(m)
	m.Result = models.MatchResult{}
	m.Active = true
	return nil
}

// eliminationErase pulls both players back out of the bracket before the
// base erase.
func eliminationErase(e *Event, m *models.Match) error {
	if m.Active || !m.Seated() || !e.reported(m) {
		return eraseResult(e, m)
	}
	if err := checkUnwind(e, m); err != nil {
		return err
	}
	if err := unwind(e, m); err != nil {
		return err
	}
	m.Result = models.MatchResult{}
	m.Active = true
	return nil
}

// awardBye credits the single player of an unopposed match. Matches that
// are seated, empty or already credited are left alone.
func awardBye(e *Event, m *models.Match) {
	if m.Active || m.Seated() || m.Resolved() {
		return
	}
	id := m.PlayerOne
	if id == "" {
		id = m.PlayerTwo
	}
	p, ok := e.t.Player(id)
	if !ok {
		return
	}
	games := e.t.ByeGames()
	p.Record(models.PlayerResult{
		Match:       m.ID,
		Round:       m.Round,
		Outcome:     models.OutcomeBye,
		MatchPoints: e.t.PointsForBye,
		GamePoints:  float64(games) * e.t.PointsForBye,
		Games:       games,
	})
	p.PairingBye = true
	if m.PlayerOne != "" {
		m.Result = models.MatchResult{P1Wins: games}
	} else {
		m.Result = models.MatchResult{P2Wins: games}
	}
}

// forceLoss returns the score of a minimal loss for playerID in m: the
// opponent gets half a best-of series, rounded up.
func forceLoss(m *models.Match, playerID string, games int) (int, int) {
	if m.PlayerOne == playerID {
		return 0, games
	}
	return games, 0
}
