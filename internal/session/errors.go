package session

import (
	"errors"
	"fmt"

	"github.com/MediaComem/minesweeper/internal/game"
)

var (
	// ErrMoveInFlight: the click was dropped because another move is pending.
	ErrMoveInFlight = errors.New("a move is already in flight")
	// ErrNotPlayable: moves are only accepted while configured or ongoing.
	ErrNotPlayable = errors.New("no playable game")
	// ErrAlreadyRevealed: the target cell is no longer covered.
	ErrAlreadyRevealed = errors.New("cell already revealed")
	// ErrInvalidState: the operation is not allowed in the current lifecycle state.
	ErrInvalidState = errors.New("operation not allowed in current state")
	// ErrInvalidParams wraps a configuration rejected by game.Params.Validate.
	ErrInvalidParams = errors.New("invalid game parameters")
	// ErrAbandoned: the game was reset or reconfigured while the call was in flight;
	// the result was discarded.
	ErrAbandoned = errors.New("game abandoned while request was in flight")

	ErrOutOfBounds = game.ErrOutOfBounds
)

// MoveFailedError is returned when a move could not be applied because the
// game API failed or answered nonsense. The board is unchanged and the move
// gate is released, so the player can retry.
type MoveFailedError struct {
	Op  string // "start" or "uncover"
	Pos game.Coord
	Err error
}

func (e *MoveFailedError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Pos, e.Err)
}

func (e *MoveFailedError) Unwrap() error { return e.Err }
