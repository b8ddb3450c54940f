package services

import (
	"errors"
	"fmt"
)

// Errors returned by tournament operations. Callers match them with
// errors.Is; the returned errors wrap them with the ids involved.
var (
	ErrNotFound = errors.New("not found")

	ErrPlayerNotFound     = fmt.Errorf("player %w", ErrNotFound)
	ErrMatchNotFound      = fmt.Errorf("match %w", ErrNotFound)
	ErrTournamentNotFound = fmt.Errorf("tournament %w", ErrNotFound)

	ErrCapacityExceeded          = errors.New("tournament player limit reached")
	ErrInvalidStatusForOperation = errors.New("operation not allowed in the current tournament status")
	ErrNotEnoughPlayers          = fmt.Errorf("%w: not enough players", ErrInvalidStatusForOperation)
	ErrDuplicateID               = errors.New("id is already in use")
	ErrInvalidResult             = errors.New("invalid match result")
	ErrIllegalErase              = errors.New("match result cannot be erased")
	ErrUnknownFormat             = errors.New("unknown tournament format")
	ErrInvalidOptions            = errors.New("invalid tournament options")
)
