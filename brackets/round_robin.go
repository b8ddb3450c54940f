package brackets

import (
	"context"

	"github.com/Dosada05/tournament-engine/models"
)

type RoundRobinGenerator struct{}

func NewRoundRobinGenerator() BracketGenerator {
	return &RoundRobinGenerator{}
}

func (g *RoundRobinGenerator) GetName() string {
	return "RoundRobin"
}

// GenerateBracket creates the whole schedule with the circle method.
// For a single round-robin, each player plays every other player once.
// For a double round-robin (Tournament.Double), they play each other twice,
// with seats swapped in the second cycle. An odd field gets a bye match per
// round with the player in slot one. Only the first round is active.
func (g *RoundRobinGenerator) GenerateBracket(ctx context.Context, params GenerateBracketParams) ([]*models.Match, error) {
	if err := checkParams(ctx, params, 2); err != nil {
		return nil, err
	}
	nextID := matchIDs(params)

	circle := make([]string, 0, len(params.Players)+1)
	for _, p := range params.Players {
		circle = append(circle, p.ID)
	}
	if len(circle)%2 == 1 {
		circle = append(circle, "")
	}
	n := len(circle)
	cycle := n - 1

	cycles := 1
	if params.Tournament.Double {
		cycles = 2
	}

	matches := make([]*models.Match, 0, cycles*cycle*n/2)
	for c := 0; c < cycles; c++ {
		rotation := append([]string(nil), circle...)
		for r := 0; r < cycle; r++ {
			round := params.Round + c*cycle + r
			number := 0
			var byes []*models.Match
			for i := 0; i < n/2; i++ {
				one, two := rotation[i], rotation[n-1-i]
				// Alternate who sits first for the fixed player.
				if i == 0 && r%2 == 1 {
					one, two = two, one
				}
				if c == 1 {
					one, two = two, one
				}
				if one == "" {
					one, two = two, ""
				}
				id, err := nextID()
				if err != nil {
					return nil, err
				}
				m := models.NewMatch(id, round, 0)
				m.PlayerOne, m.PlayerTwo = one, two
				m.Active = round == params.Round && m.Seated()
				if m.Seated() {
					number++
					m.Number = number
					matches = append(matches, m)
				} else {
					byes = append(byes, m)
				}
			}
			for _, m := range byes {
				number++
				m.Number = number
				matches = append(matches, m)
			}
			rotation = rotate(rotation)
		}
	}
	return matches, nil
}

// rotate keeps the first entry fixed and turns the rest one step clockwise.
func rotate(circle []string) []string {
	n := len(circle)
	out := make([]string, n)
	out[0] = circle[0]
	out[1] = circle[n-1]
	copy(out[2:], circle[1:n-1])
	return out
}
