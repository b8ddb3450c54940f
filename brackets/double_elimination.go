package brackets

import (
	"context"

	"github.com/Dosada05/tournament-engine/models"
)

type DoubleEliminationGenerator struct {
}

func NewDoubleEliminationGenerator() BracketGenerator {
	return &DoubleEliminationGenerator{}
}

func (g *DoubleEliminationGenerator) GetName() string {
	return "DoubleElimination"
}

// GenerateBracket builds a winners bracket, a losers bracket fed by the
// winners bracket losers, and a grand final between the two bracket winners.
// Losers bracket matches that would be short of players because of byes are
// spliced out so that every generated match has two feeds.
func (g *DoubleEliminationGenerator) GenerateBracket(ctx context.Context, params GenerateBracketParams) ([]*models.Match, error) {
	if err := checkParams(ctx, params, 2); err != nil {
		return nil, err
	}
	tree, err := buildWinnersTree(params)
	if err != nil {
		return nil, err
	}
	k := len(tree.rounds)
	wbFinal := tree.rounds[k-1][0]

	if k == 1 {
		id, err := tree.nextID()
		if err != nil {
			return nil, err
		}
		grand := models.NewMatch(id, wbFinal.Round+1, 1)
		wbFinal.WinnersPath = grand.ID
		wbFinal.LosersPath = grand.ID
		return append(tree.flatten(), grand), nil
	}

	lbRounds := 2 * (k - 1)
	losers := make([][]*models.Match, lbRounds)
	for j := 1; j <= lbRounds; j++ {
		count := losersRoundSize(k, j)
		losers[j-1] = make([]*models.Match, count)
		for i := 0; i < count; i++ {
			id, err := tree.nextID()
			if err != nil {
				return nil, err
			}
			losers[j-1][i] = models.NewMatch(id, wbFinal.Round+j, i+1)
		}
	}
	id, err := tree.nextID()
	if err != nil {
		return nil, err
	}
	grand := models.NewMatch(id, wbFinal.Round+lbRounds+1, 1)

	// Losers bracket progression.
	for j := 1; j <= lbRounds; j++ {
		for i, m := range losers[j-1] {
			switch {
			case j == lbRounds:
				m.WinnersPath = grand.ID
			case j%2 == 1:
				m.WinnersPath = losers[j][i].ID
			default:
				m.WinnersPath = losers[j][i/2].ID
			}
		}
	}

	// Winners bracket drop-downs. Round one losers pair up in losers round
	// one; later losers meet a losers bracket survivor, alternating the
	// order to keep early rematches apart.
	for i, m := range tree.rounds[0] {
		if m != nil {
			m.LosersPath = losers[0][i/2].ID
		}
	}
	for r := 1; r < k; r++ {
		target := losers[2*r-1]
		for i, m := range tree.rounds[r] {
			idx := i
			if r%2 == 1 {
				idx = len(target) - 1 - i
			}
			m.LosersPath = target[idx].ID
		}
	}
	wbFinal.WinnersPath = grand.ID

	all := tree.flatten()
	for _, round := range losers {
		all = append(all, round...)
	}
	all = append(all, grand)
	return pruneLosersBracket(all, losers), nil
}

// losersRoundSize is the number of matches in losers round j of a bracket
// with k winners rounds.
func losersRoundSize(k, j int) int {
	switch {
	case j == 1:
		return 1 << uint(k-2)
	case j%2 == 0:
		return 1 << uint(k-1-j/2)
	default:
		return 1 << uint(k-2-(j-1)/2)
	}
}

// pruneLosersBracket removes losers bracket matches with fewer than two
// feeds. A lone feeder is rerouted to the removed match's winners path.
// Rounds are processed in order, so a removal is seen by the next round.
func pruneLosersBracket(all []*models.Match, losers [][]*models.Match) []*models.Match {
	removed := make(map[string]struct{})
	feeders := func(id string) []*models.Match {
		var out []*models.Match
		for _, m := range all {
			if _, gone := removed[m.ID]; gone {
				continue
			}
			if m.FeedsInto(id) {
				out = append(out, m)
			}
		}
		return out
	}

	for _, round := range losers {
		for _, m := range round {
			feeds := feeders(m.ID)
			if len(feeds) >= 2 {
				continue
			}
			for _, f := range feeds {
				if f.WinnersPath == m.ID {
					f.WinnersPath = m.WinnersPath
				}
				if f.LosersPath == m.ID {
					f.LosersPath = m.WinnersPath
				}
			}
			removed[m.ID] = struct{}{}
		}
	}

	out := make([]*models.Match, 0, len(all)-len(removed))
	numbers := make(map[int]int)
	for _, m := range all {
		if _, gone := removed[m.ID]; gone {
			continue
		}
		numbers[m.Round]++
		m.Number = numbers[m.Round]
		out = append(out, m)
	}
	return out
}
