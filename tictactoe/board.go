package tictactoe

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Size of the board along each axis
const Size = 3

// Mark identifies the owner of a cell. Any distinct non-zero values
// can be used as player identities.
type Mark int

const (
	Empty   Mark = 0
	PlayerA Mark = 1
	PlayerB Mark = 2
	Human   Mark = 3
)

// Position of a cell on the board
type Position struct {
	Row int
	Col int
}

func (p Position) String() string {
	return fmt.Sprintf("(%d, %d)", p.Row, p.Col)
}

func (p Position) valid() bool {
	return p.Row >= 0 && p.Row < Size && p.Col >= 0 && p.Col < Size
}

// index of the position in row-major order
func (p Position) index() int {
	return p.Row*Size + p.Col
}

// MarshalText encodes the position as "r,c" so that it can be used as a JSON map key
func (p Position) MarshalText() ([]byte, error) {
	return []byte(strconv.Itoa(p.Row) + "," + strconv.Itoa(p.Col)), nil
}

func (p *Position) UnmarshalText(text []byte) error {
	parts := strings.Split(string(text), ",")
	if len(parts) != 2 {
		return errors.Errorf("invalid position %q", string(text))
	}
	row, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return errors.Wrapf(err, "invalid row in position %q", string(text))
	}
	col, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return errors.Wrapf(err, "invalid column in position %q", string(text))
	}
	pos := Position{Row: row, Col: col}
	if !pos.valid() {
		return errors.Errorf("position %q out of the board", string(text))
	}
	*p = pos
	return nil
}

// RowMajorLess orders positions row by row, the order actions are enumerated in
func RowMajorLess(a, b Position) bool {
	return a.index() < b.index()
}

// Board is the 3x3 grid of marks
type Board [Size][Size]Mark

// lines lists the 3 rows, 3 columns and 2 diagonals
var lines = [8][3]Position{
	{{0, 0}, {0, 1}, {0, 2}},
	{{1, 0}, {1, 1}, {1, 2}},
	{{2, 0}, {2, 1}, {2, 2}},
	{{0, 0}, {1, 0}, {2, 0}},
	{{0, 1}, {1, 1}, {2, 1}},
	{{0, 2}, {1, 2}, {2, 2}},
	{{0, 0}, {1, 1}, {2, 2}},
	{{0, 2}, {1, 1}, {2, 0}},
}

func (b *Board) At(p Position) Mark {
	return b[p.Row][p.Col]
}

// Win returns true if some line is non-empty and holds the same mark in all three cells
func (b *Board) Win() bool {
	_, ok := b.Winner()
	return ok
}

// Winner returns the mark owning a complete line, if any
func (b *Board) Winner() (Mark, bool) {
	for _, line := range lines {
		first := b.At(line[0])
		if first == Empty {
			continue
		}
		if first == b.At(line[1]) && first == b.At(line[2]) {
			return first, true
		}
	}
	return Empty, false
}

// Full returns true if no empty cell is left
func (b *Board) Full() bool {
	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			if b[row][col] == Empty {
				return false
			}
		}
	}
	return true
}

// Draw returns true if the board is full and nobody won
func (b *Board) Draw() bool {
	return !b.Win() && b.Full()
}

// Occupied counts the non-empty cells
func (b *Board) Occupied() int {
	count := 0
	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			if b[row][col] != Empty {
				count++
			}
		}
	}
	return count
}

func (b Board) String() string {
	var sb strings.Builder
	for row := 0; row < Size; row++ {
		sb.WriteString("[")
		for col := 0; col < Size; col++ {
			if col > 0 {
				sb.WriteString(" ")
			}
			sb.WriteString(strconv.Itoa(int(b[row][col])))
		}
		sb.WriteString("]\n")
	}
	return sb.String()
}

// AvailableActions lists the empty cells of the board in row-major order
func AvailableActions(b Board) []Position {
	actions := make([]Position, 0, Size*Size)
	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			if b[row][col] == Empty {
				actions = append(actions, Position{Row: row, Col: col})
			}
		}
	}
	return actions
}
