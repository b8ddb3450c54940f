package brackets

import (
	"context"
	"math"

	"github.com/Dosada05/tournament-engine/models"
)

type SingleEliminationGenerator struct {
}

func NewSingleEliminationGenerator() BracketGenerator {
	return &SingleEliminationGenerator{}
}

func (g *SingleEliminationGenerator) GetName() string {
	return "SingleElimination"
}

// GenerateBracket builds a power-of-two bracket. Seeds that draw a bye skip
// the first round and are seated straight into their second-round match.
// With Consolation set, both semifinal losers are routed to a third-place
// match played alongside the final.
func (g *SingleEliminationGenerator) GenerateBracket(ctx context.Context, params GenerateBracketParams) ([]*models.Match, error) {
	if err := checkParams(ctx, params, 2); err != nil {
		return nil, err
	}
	tree, err := buildWinnersTree(params)
	if err != nil {
		return nil, err
	}

	if params.Tournament.Consolation && len(tree.rounds) >= 2 {
		semis := tree.rounds[len(tree.rounds)-2]
		if semis[0] != nil && semis[1] != nil {
			id, err := tree.nextID()
			if err != nil {
				return nil, err
			}
			final := tree.rounds[len(tree.rounds)-1][0]
			third := models.NewMatch(id, final.Round, 2)
			semis[0].LosersPath = third.ID
			semis[1].LosersPath = third.ID
			tree.rounds[len(tree.rounds)-1] = append(tree.rounds[len(tree.rounds)-1], third)
		}
	}

	return tree.flatten(), nil
}

// winnersTree is a bracket laid out by round. A nil entry in round one is a
// pairing that was absorbed by a bye.
type winnersTree struct {
	rounds [][]*models.Match
	nextID func() (string, error)
}

func bracketRounds(n int) int {
	return int(math.Ceil(math.Log2(float64(n))))
}

// seedOrder returns the standard bracket positions for size seeds, so that
// seed 1 and seed 2 can only meet in the final: 1,8,4,5,2,7,3,6 for eight.
func seedOrder(size int) []int {
	order := []int{1}
	for len(order) < size {
		next := make([]int, 0, len(order)*2)
		sum := len(order)*2 + 1
		for _, s := range order {
			next = append(next, s, sum-s)
		}
		order = next
	}
	return order
}

func buildWinnersTree(params GenerateBracketParams) (*winnersTree, error) {
	n := len(params.Players)
	numRounds := bracketRounds(n)
	size := 1 << uint(numRounds)
	order := seedOrder(size)

	tree := &winnersTree{
		rounds: make([][]*models.Match, numRounds),
		nextID: matchIDs(params),
	}

	// Later rounds always exist in full.
	for r := numRounds - 1; r >= 1; r-- {
		count := size >> uint(r+1)
		tree.rounds[r] = make([]*models.Match, count)
		for i := 0; i < count; i++ {
			id, err := tree.nextID()
			if err != nil {
				return nil, err
			}
			m := models.NewMatch(id, params.Round+r, i+1)
			if r+1 < numRounds {
				m.WinnersPath = tree.rounds[r+1][i/2].ID
			}
			tree.rounds[r][i] = m
		}
	}

	first := make([]*models.Match, size/2)
	number := 0
	for i := 0; i < size/2; i++ {
		a, b := order[2*i], order[2*i+1]
		var target *models.Match
		if numRounds > 1 {
			target = tree.rounds[1][i/2]
		}
		switch {
		case a > n:
			target.Seat(params.Players[b-1].ID)
		case b > n:
			target.Seat(params.Players[a-1].ID)
		default:
			id, err := tree.nextID()
			if err != nil {
				return nil, err
			}
			number++
			m := models.NewMatch(id, params.Round, number)
			m.Seat(params.Players[a-1].ID)
			m.Seat(params.Players[b-1].ID)
			if target != nil {
				m.WinnersPath = target.ID
			}
			first[i] = m
		}
	}
	tree.rounds[0] = first
	return tree, nil
}

func (t *winnersTree) flatten() []*models.Match {
	var out []*models.Match
	for _, round := range t.rounds {
		for _, m := range round {
			if m != nil {
				out = append(out, m)
			}
		}
	}
	return out
}
