package tictactoe

import (
	"fmt"
	"strings"

	"github.com/logrusorgru/aurora"
)

// Renderer prints boards on a terminal
type Renderer struct {
	au      aurora.Aurora
	symbols map[Mark]string
}

// NewRenderer creates a renderer, colors can be disabled for non terminal outputs
func NewRenderer(colors bool) *Renderer {
	return &Renderer{
		au: aurora.NewAurora(colors),
		symbols: map[Mark]string{
			PlayerA: "X",
			PlayerB: "O",
			Human:   "H",
		},
	}
}

// SetSymbol changes the symbol used for mark
func (r *Renderer) SetSymbol(mark Mark, symbol string) {
	r.symbols[mark] = symbol
}

func (r *Renderer) cell(m Mark) string {
	if m == Empty {
		return r.au.Faint(".").String()
	}
	symbol, ok := r.symbols[m]
	if !ok {
		symbol = fmt.Sprintf("%d", m)
	}
	switch m {
	case PlayerA:
		return r.au.Blue(symbol).String()
	case PlayerB:
		return r.au.Red(symbol).String()
	default:
		return r.au.Green(symbol).String()
	}
}

// Render draws the board with row and column indices
func (r *Renderer) Render(b Board) string {
	var sb strings.Builder
	sb.WriteString("    0   1   2\n")
	for row := 0; row < Size; row++ {
		sb.WriteString(fmt.Sprintf("%d ", row))
		for col := 0; col < Size; col++ {
			sb.WriteString(" ")
			sb.WriteString(r.cell(b[row][col]))
			sb.WriteString(" ")
			if col < Size-1 {
				sb.WriteString(r.au.Gray(12, "|").String())
			}
		}
		sb.WriteString("\n")
		if row < Size-1 {
			sb.WriteString("  " + r.au.Gray(12, "---+---+---").String() + "\n")
		}
	}
	return sb.String()
}
