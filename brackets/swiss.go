package brackets

import (
	"context"

	"github.com/Dosada05/tournament-engine/models"
)

// pairingBudget caps the rematch-avoiding search. Past it the generator
// falls back to pairing neighbours in standings order.
const pairingBudget = 200000

type SwissGenerator struct{}

func NewSwissGenerator() BracketGenerator {
	return &SwissGenerator{}
}

func (g *SwissGenerator) GetName() string {
	return "Swiss"
}

// GenerateBracket pairs one Swiss round. Players come ranked by current
// standings. Players still owed an initial bye get one; with an odd count
// left, the lowest ranked player who has not had a pairing bye sits out.
// The rest are paired top down, avoiding rematches where possible.
// Bye matches have a single player in slot one and are left inactive.
func (g *SwissGenerator) GenerateBracket(ctx context.Context, params GenerateBracketParams) ([]*models.Match, error) {
	if err := checkParams(ctx, params, 1); err != nil {
		return nil, err
	}
	nextID := matchIDs(params)

	var byes, pool []*models.Player
	for i, p := range params.Players {
		p.BSN = i + 1
		if p.InitialByes >= params.Round {
			byes = append(byes, p)
		} else {
			pool = append(pool, p)
		}
	}
	if len(pool)%2 == 1 {
		idx := len(pool) - 1
		for i := len(pool) - 1; i >= 0; i-- {
			if !pool[i].PairingBye {
				idx = i
				break
			}
		}
		byes = append(byes, pool[idx])
		pool = append(pool[:idx:idx], pool[idx+1:]...)
	}

	budget := pairingBudget
	pairs, ok := pairWithoutRematches(pool, &budget)
	if !ok {
		pairs = pairNeighbours(pool)
	}

	matches := make([]*models.Match, 0, len(pairs)+len(byes))
	number := 0
	for _, pair := range pairs {
		id, err := nextID()
		if err != nil {
			return nil, err
		}
		number++
		m := models.NewMatch(id, params.Round, number)
		m.Seat(pair[0].ID)
		m.Seat(pair[1].ID)
		if pair[0].MatchPoints != pair[1].MatchPoints {
			pair[0].PairUpDown = true
			pair[1].PairUpDown = true
		}
		matches = append(matches, m)
	}
	for _, p := range byes {
		id, err := nextID()
		if err != nil {
			return nil, err
		}
		number++
		m := models.NewMatch(id, params.Round, number)
		m.PlayerOne = p.ID
		matches = append(matches, m)
	}
	return matches, nil
}

// pairWithoutRematches pairs the first player with the highest ranked
// opponent they have not met and recurses, backtracking on dead ends.
func pairWithoutRematches(players []*models.Player, budget *int) ([][2]*models.Player, bool) {
	if len(players) == 0 {
		return nil, true
	}
	first := players[0]
	for i := 1; i < len(players); i++ {
		if *budget <= 0 {
			return nil, false
		}
		*budget--
		if first.HasPlayed(players[i].ID) {
			continue
		}
		rest := make([]*models.Player, 0, len(players)-2)
		rest = append(rest, players[1:i]...)
		rest = append(rest, players[i+1:]...)
		if pairs, ok := pairWithoutRematches(rest, budget); ok {
			return append([][2]*models.Player{{first, players[i]}}, pairs...), true
		}
	}
	return nil, false
}

func pairNeighbours(players []*models.Player) [][2]*models.Player {
	pairs := make([][2]*models.Player, 0, len(players)/2)
	for i := 0; i+1 < len(players); i += 2 {
		pairs = append(pairs, [2]*models.Player{players[i], players[i+1]})
	}
	return pairs
}
