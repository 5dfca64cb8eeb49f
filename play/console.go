package play

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/zeu5/tictactoe-rl/policies"
	"github.com/zeu5/tictactoe-rl/tictactoe"
)

// Console runs games against a human on a text terminal
type Console struct {
	in       *bufio.Scanner
	out      io.Writer
	ai       *policies.TDAgent
	renderer *tictactoe.Renderer
	// pause before the computer moves
	Delay time.Duration
	// first game starts with the human, then the opener alternates
	HumanFirst bool
}

func NewConsole(in io.Reader, out io.Writer, ai *policies.TDAgent, renderer *tictactoe.Renderer) *Console {
	return &Console{
		in:         bufio.NewScanner(in),
		out:        out,
		ai:         ai,
		renderer:   renderer,
		HumanFirst: true,
	}
}

// ParseMove reads a move typed as "row col"
func ParseMove(line string) (tictactoe.Position, error) {
	fields := strings.Fields(strings.ReplaceAll(line, ",", " "))
	if len(fields) != 2 {
		return tictactoe.Position{}, errors.Wrapf(ErrInvalidMove, "expected two numbers, got %q", line)
	}
	row, err := strconv.Atoi(fields[0])
	if err != nil {
		return tictactoe.Position{}, errors.Wrapf(ErrInvalidMove, "invalid row %q", fields[0])
	}
	col, err := strconv.Atoi(fields[1])
	if err != nil {
		return tictactoe.Position{}, errors.Wrapf(ErrInvalidMove, "invalid column %q", fields[1])
	}
	return tictactoe.Position{Row: row, Col: col}, nil
}

// Run plays games until the input ends, the human types q or ctx is done.
// It returns the number of finished games.
func (c *Console) Run(ctx context.Context) (int, error) {
	played := 0
	humanFirst := c.HumanFirst
	for {
		select {
		case <-ctx.Done():
			return played, nil
		default:
		}

		fmt.Fprintln(c.out, "New Game:")
		game := NewGame(c.ai, humanFirst)
		finished, err := c.playGame(ctx, game)
		if err != nil || !finished {
			return played, err
		}
		played++
		humanFirst = !humanFirst
		fmt.Fprintln(c.out)
	}
}

func (c *Console) playGame(ctx context.Context, game *Game) (bool, error) {
	fmt.Fprint(c.out, c.renderer.Render(game.Board()))
	for !game.Over() {
		available := game.Available()
		if game.HumanTurn() {
			fmt.Fprintln(c.out, "Your turn:")
			fmt.Fprintf(c.out, "available moves: %s\n", formatPositions(available))
			pos, ok := c.readMove(game)
			if !ok {
				return false, nil
			}
			if err := game.HumanMove(pos); err != nil {
				return false, err
			}
		} else {
			fmt.Fprintln(c.out, "Computer's turn:")
			if c.Delay > 0 {
				select {
				case <-ctx.Done():
					return false, nil
				case <-time.After(c.Delay):
				}
			}
			pos, err := game.AIMove()
			if err != nil {
				return false, err
			}
			fmt.Fprintf(c.out, "Computer chose %s\n", pos)
		}
		fmt.Fprint(c.out, c.renderer.Render(game.Board()))
	}

	outcome, _ := game.Outcome()
	switch {
	case outcome.Draw:
		fmt.Fprintln(c.out, "Game is a draw!")
	case outcome.Winner == c.ai.ID():
		fmt.Fprintln(c.out, "Computer wins!")
	default:
		fmt.Fprintln(c.out, "You win!")
	}
	return true, nil
}

// readMove prompts until a legal move is typed, false on quit or end of input
func (c *Console) readMove(game *Game) (tictactoe.Position, bool) {
	for {
		fmt.Fprint(c.out, "Please make a move, e.g. enter 1 1 to choose (1, 1): ")
		if !c.in.Scan() {
			fmt.Fprintln(c.out)
			return tictactoe.Position{}, false
		}
		line := strings.TrimSpace(c.in.Text())
		if line == "q" || line == "quit" {
			return tictactoe.Position{}, false
		}
		pos, err := ParseMove(line)
		if err != nil {
			fmt.Fprintf(c.out, "%s\n", err)
			continue
		}
		for _, a := range game.Available() {
			if a == pos {
				return pos, true
			}
		}
		fmt.Fprintf(c.out, "%s is not available\n", pos)
	}
}

func formatPositions(positions []tictactoe.Position) string {
	parts := make([]string, len(positions))
	for i, p := range positions {
		parts[i] = p.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
