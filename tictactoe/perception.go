package tictactoe

import (
	"github.com/pkg/errors"
)

// Encoding of a cell in a perceived state
const (
	PerceivedEmpty    uint8 = 0
	PerceivedOwn      uint8 = 1
	PerceivedOpponent uint8 = 2
)

// PerceivedState is the board as seen by one player: its own cells are 1,
// any other mark is 2 and empty cells are 0
type PerceivedState [Size][Size]uint8

// StateKey is the exact byte encoding of a perceived state, one ASCII
// digit per cell in row-major order. Equal states produce equal keys and
// different states never collide.
type StateKey string

// Perceive encodes the board from the point of view of mark
func Perceive(b Board, mark Mark) PerceivedState {
	var s PerceivedState
	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			switch b[row][col] {
			case Empty:
				s[row][col] = PerceivedEmpty
			case mark:
				s[row][col] = PerceivedOwn
			default:
				s[row][col] = PerceivedOpponent
			}
		}
	}
	return s
}

func (s PerceivedState) Key() StateKey {
	bs := make([]byte, Size*Size)
	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			bs[row*Size+col] = '0' + s[row][col]
		}
	}
	return StateKey(bs)
}

// ParseStateKey validates a key read back from storage or typed by a user
func ParseStateKey(key string) (StateKey, error) {
	if len(key) != Size*Size {
		return "", errors.Errorf("state key %q must have %d cells", key, Size*Size)
	}
	for i := 0; i < len(key); i++ {
		if key[i] < '0'+PerceivedEmpty || key[i] > '0'+PerceivedOpponent {
			return "", errors.Errorf("state key %q has invalid cell %q at %d", key, key[i], i)
		}
	}
	return StateKey(key), nil
}

// State decodes the key, the key must be valid
func (k StateKey) State() PerceivedState {
	var s PerceivedState
	for i := 0; i < len(k) && i < Size*Size; i++ {
		s[i/Size][i%Size] = k[i] - '0'
	}
	return s
}

// Board rebuilds a board where the perceiving player holds own and the opponent holds opponent
func (s PerceivedState) Board(own, opponent Mark) Board {
	var b Board
	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			switch s[row][col] {
			case PerceivedOwn:
				b[row][col] = own
			case PerceivedOpponent:
				b[row][col] = opponent
			}
		}
	}
	return b
}
