package play

import (
	"github.com/pkg/errors"
	"github.com/zeu5/tictactoe-rl/policies"
	"github.com/zeu5/tictactoe-rl/rl"
	"github.com/zeu5/tictactoe-rl/tictactoe"
)

// Rewards given to the AI at the end of a game against a human
const (
	WinReward  = 1.0
	LossReward = -1.0
	DrawReward = 0.0
)

var (
	ErrInvalidMove = errors.New("invalid move")
	ErrNotYourTurn = errors.New("not your turn")
	ErrGameOver    = errors.New("game is over")
)

// Game is a single game between the AI and a human. Human moves are
// checked against the available actions before reaching the environment.
type Game struct {
	env     *tictactoe.Env
	ai      *policies.TDAgent
	human   tictactoe.Mark
	board   tictactoe.Board
	turn    tictactoe.Mark
	moves   []rl.Move
	outcome *rl.Outcome
}

func NewGame(ai *policies.TDAgent, humanFirst bool) *Game {
	g := &Game{
		env:   tictactoe.NewEnv(),
		ai:    ai,
		human: tictactoe.Human,
		moves: make([]rl.Move, 0),
	}
	g.board = g.env.Reset()
	g.turn = ai.ID()
	if humanFirst {
		g.turn = g.human
	}
	return g
}

func (g *Game) Board() tictactoe.Board {
	return g.board
}

func (g *Game) Turn() tictactoe.Mark {
	return g.turn
}

func (g *Game) HumanTurn() bool {
	return g.outcome == nil && g.turn == g.human
}

func (g *Game) Available() []tictactoe.Position {
	if g.outcome != nil {
		return []tictactoe.Position{}
	}
	return g.env.AvailableActions(g.board)
}

func (g *Game) Moves() []rl.Move {
	return g.moves
}

func (g *Game) Over() bool {
	return g.outcome != nil
}

func (g *Game) Outcome() (rl.Outcome, bool) {
	if g.outcome == nil {
		return rl.Outcome{}, false
	}
	return *g.outcome, true
}

// HumanMove plays pos for the human if it is one of the available actions
func (g *Game) HumanMove(pos tictactoe.Position) error {
	if g.outcome != nil {
		return ErrGameOver
	}
	if g.turn != g.human {
		return ErrNotYourTurn
	}
	legal := false
	for _, a := range g.Available() {
		if a == pos {
			legal = true
			break
		}
	}
	if !legal {
		return errors.Wrapf(ErrInvalidMove, "%s is not available", pos)
	}
	return g.apply(g.human, pos)
}

// AIMove lets the agent choose and play its move
func (g *Game) AIMove() (tictactoe.Position, error) {
	if g.outcome != nil {
		return tictactoe.Position{}, ErrGameOver
	}
	if g.turn != g.ai.ID() {
		return tictactoe.Position{}, ErrNotYourTurn
	}
	pos, ok := g.ai.ChooseAction(g.board)
	if !ok {
		return pos, errors.Errorf("%s has no move on\n%s", g.ai.Name(), g.board)
	}
	return pos, g.apply(g.ai.ID(), pos)
}

func (g *Game) apply(mark tictactoe.Mark, pos tictactoe.Position) error {
	state := tictactoe.Perceive(g.board, mark).Key()
	board, reward, done, err := g.env.Step(mark, pos)
	if err != nil {
		return err
	}
	g.board = board
	g.moves = append(g.moves, rl.Move{Mover: mark, Position: pos, Board: board, Reward: reward, State: state})
	if !done {
		if mark == g.human {
			g.turn = g.ai.ID()
		} else {
			g.turn = g.human
		}
		return nil
	}

	switch {
	case reward == 1 && mark == g.ai.ID():
		g.ai.UpdatePreviousStateActionValue(WinReward, true)
		g.outcome = &rl.Outcome{Winner: mark}
	case reward == 1:
		g.ai.UpdatePreviousStateActionValue(LossReward, true)
		g.outcome = &rl.Outcome{Winner: mark}
	default:
		g.ai.UpdatePreviousStateActionValue(DrawReward, true)
		g.outcome = &rl.Outcome{Draw: true}
	}
	g.turn = tictactoe.Empty
	return nil
}
