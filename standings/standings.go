// Package standings computes tiebreaker values and orders players.
package standings

import (
	"sort"

	"github.com/Dosada05/tournament-engine/models"
)

// percentageFloor is the lowest win percentage counted for an opponent.
const percentageFloor = 1.0 / 3.0

// Calculator is the default tiebreaker engine.
type Calculator struct{}

func New() Calculator {
	return Calculator{}
}

// Compute refreshes Tiebreakers on every player of t, removed players
// included.
func (Calculator) Compute(t *models.Tournament) {
	byID := make(map[string]*models.Player, len(t.Players))
	for _, p := range t.Players {
		byID[p.ID] = p
	}

	// First pass: values that depend on the player alone.
	for _, p := range t.Players {
		v := models.TiebreakerValues{}
		running := 0.0
		for _, r := range p.Results {
			running += r.MatchPoints
			v.Cumulative += running
		}
		v.MatchWinPct = ratio(p.MatchPoints, float64(p.MatchCount)*t.PointsForWin)
		v.GameWinPct = ratio(p.GamePoints, float64(p.GameCount)*t.PointsForWin)
		p.Tiebreakers = v
	}

	// Second pass: values over opponents.
	for _, p := range t.Players {
		v := &p.Tiebreakers
		var scores []float64
		var omw, ogw float64
		for _, r := range p.Results {
			opp, ok := byID[r.Opponent]
			if !ok {
				continue
			}
			scores = append(scores, opp.MatchPoints)
			v.Solkoff += opp.MatchPoints
			v.OppCumulative += opp.Tiebreakers.Cumulative
			omw += floor(opp.Tiebreakers.MatchWinPct)
			ogw += floor(opp.Tiebreakers.GameWinPct)
			switch r.Outcome {
			case models.OutcomeWin:
				v.SonnebornBerger += opp.MatchPoints
			case models.OutcomeDraw:
				v.SonnebornBerger += opp.MatchPoints / 2
			}
		}
		v.MedianBuchholz = median(scores)
		if n := len(scores); n > 0 {
			v.OppMatchWinPct = omw / float64(n)
			v.OppGameWinPct = ogw / float64(n)
		}
	}

	// Third pass: opponents' opponents.
	for _, p := range t.Players {
		var sum float64
		n := 0
		for _, r := range p.Results {
			opp, ok := byID[r.Opponent]
			if !ok {
				continue
			}
			sum += opp.Tiebreakers.OppMatchWinPct
			n++
		}
		if n > 0 {
			p.Tiebreakers.OppOppMatchWinPct = sum / float64(n)
		}
	}
}

// Sort returns players ordered by match points, then by t.Tiebreakers in
// precedence order, then by seed when t.Sorting asks for it. The input slice
// is not modified.
func (Calculator) Sort(players []*models.Player, t *models.Tournament) []*models.Player {
	out := append([]*models.Player(nil), players...)
	sort.SliceStable(out, func(i, j int) bool {
		return less(out[i], out[j], t)
	})
	return out
}

func less(a, b *models.Player, t *models.Tournament) bool {
	if a.MatchPoints != b.MatchPoints {
		return a.MatchPoints > b.MatchPoints
	}
	for _, tb := range t.Tiebreakers {
		if tb == models.TiebreakVersus {
			av, bv := headToHead(a, b), headToHead(b, a)
			if av != bv {
				return av > bv
			}
			continue
		}
		av, bv := a.Tiebreakers.Value(tb), b.Tiebreakers.Value(tb)
		if av != bv {
			return av > bv
		}
	}
	switch t.Sorting {
	case models.SortingAscending:
		return a.Seed < b.Seed
	case models.SortingDescending:
		return a.Seed > b.Seed
	}
	return false
}

// headToHead sums the match points a earned against b.
func headToHead(a, b *models.Player) float64 {
	total := 0.0
	for _, r := range a.Results {
		if r.Opponent == b.ID {
			total += r.MatchPoints
		}
	}
	return total
}

// median drops the highest and lowest score once there are at least three.
func median(scores []float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	sum, lo, hi := 0.0, scores[0], scores[0]
	for _, s := range scores {
		sum += s
		if s < lo {
			lo = s
		}
		if s > hi {
			hi = s
		}
	}
	if len(scores) >= 3 {
		sum -= lo + hi
	}
	return sum
}

func ratio(num, den float64) float64 {
	if den <= 0 {
		return 0
	}
	return num / den
}

func floor(pct float64) float64 {
	if pct < percentageFloor {
		return percentageFloor
	}
	return pct
}
