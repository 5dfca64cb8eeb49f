package tictactoe

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrIllegalMove is matched by every IllegalMoveError
var ErrIllegalMove = errors.New("illegal move")

// IllegalMoveError is returned by Step when the target cell is occupied
// or outside the board. Callers are expected to check the move against
// AvailableActions first, so this error is a broken contract and not a
// game event.
type IllegalMoveError struct {
	Mark     Mark
	Position Position
	Occupant Mark
}

func (e *IllegalMoveError) Error() string {
	if !e.Position.valid() {
		return fmt.Sprintf("illegal move: %d plays %s outside the board", e.Mark, e.Position)
	}
	return fmt.Sprintf("illegal move: %d plays %s occupied by %d", e.Mark, e.Position, e.Occupant)
}

func (e *IllegalMoveError) Is(target error) bool {
	return target == ErrIllegalMove
}

// Env is the two player tic-tac-toe environment. It owns a single board
// that is reinitialized on every Reset.
type Env struct {
	board Board
	done  bool
}

func NewEnv() *Env {
	e := &Env{}
	e.Reset()
	return e
}

// Reset clears the board and the terminal flag
func (e *Env) Reset() Board {
	e.board = Board{}
	e.done = false
	return e.board
}

// Step places mark at pos and returns the new board, the reward for the mover
// and whether the game is over. A win rewards 1, a draw or an ongoing game 0.
func (e *Env) Step(mark Mark, pos Position) (Board, float64, bool, error) {
	if !pos.valid() {
		return e.board, 0, e.done, &IllegalMoveError{Mark: mark, Position: pos}
	}
	if occupant := e.board.At(pos); occupant != Empty {
		return e.board, 0, e.done, &IllegalMoveError{Mark: mark, Position: pos, Occupant: occupant}
	}

	e.board[pos.Row][pos.Col] = mark

	reward := 0.0
	switch {
	case e.board.Win():
		reward = 1
		e.done = true
	case e.board.Full():
		e.done = true
	default:
		e.done = false
	}
	return e.board, reward, e.done, nil
}

// Board returns a copy of the current board
func (e *Env) Board() Board {
	return e.board
}

func (e *Env) Done() bool {
	return e.done
}

func (e *Env) AvailableActions(b Board) []Position {
	return AvailableActions(b)
}
