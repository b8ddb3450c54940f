package brackets

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dosada05/tournament-engine/models"
	"github.com/Dosada05/tournament-engine/utils"
)

var ErrNotEnoughPlayers = errors.New("not enough players to generate pairings")

// GenerateBracketParams is the input of every generator. Players must be in
// seeding order (best first); Round is the number given to the first
// generated round.
type GenerateBracketParams struct {
	Tournament *models.Tournament
	Players    []*models.Player
	Round      int
	IDs        utils.IDAllocator
}

// BracketGenerator builds new matches for a tournament. Generators never
// touch t.Matches: the caller appends the returned matches itself.
type BracketGenerator interface {
	GenerateBracket(ctx context.Context, params GenerateBracketParams) ([]*models.Match, error)

	GetName() string
}

// matchIDs returns an allocator that avoids ids already used by the
// tournament or earlier in the same batch.
func matchIDs(params GenerateBracketParams) func() (string, error) {
	batch := make(map[string]struct{})
	return func() (string, error) {
		id, err := utils.UniqueID(params.IDs, func(id string) bool {
			if _, ok := batch[id]; ok {
				return true
			}
			return params.Tournament.HasMatch(id)
		})
		if err != nil {
			return "", fmt.Errorf("allocate match id: %w", err)
		}
		batch[id] = struct{}{}
		return id, nil
	}
}

func checkParams(ctx context.Context, params GenerateBracketParams, minPlayers int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if params.Tournament == nil || params.IDs == nil {
		return errors.New("generator called without tournament or id allocator")
	}
	if len(params.Players) < minPlayers {
		return fmt.Errorf("%w: found %d, need %d", ErrNotEnoughPlayers, len(params.Players), minPlayers)
	}
	return nil
}

// Engine bundles the default generators behind the pairing interface used by
// the tournament services.
type Engine struct {
	swiss             BracketGenerator
	roundRobin        BracketGenerator
	singleElimination BracketGenerator
	doubleElimination BracketGenerator
}

func NewEngine() *Engine {
	return &Engine{
		swiss:             NewSwissGenerator(),
		roundRobin:        NewRoundRobinGenerator(),
		singleElimination: NewSingleEliminationGenerator(),
		doubleElimination: NewDoubleEliminationGenerator(),
	}
}

func (e *Engine) GenerateSwissRound(ctx context.Context, params GenerateBracketParams) ([]*models.Match, error) {
	return e.swiss.GenerateBracket(ctx, params)
}

func (e *Engine) GenerateRoundRobinSchedule(ctx context.Context, params GenerateBracketParams) ([]*models.Match, error) {
	return e.roundRobin.GenerateBracket(ctx, params)
}

func (e *Engine) GenerateSingleElimination(ctx context.Context, params GenerateBracketParams) ([]*models.Match, error) {
	return e.singleElimination.GenerateBracket(ctx, params)
}

func (e *Engine) GenerateDoubleElimination(ctx context.Context, params GenerateBracketParams) ([]*models.Match, error) {
	return e.doubleElimination.GenerateBracket(ctx, params)
}
