package rl

import "github.com/zeu5/tictactoe-rl/tictactoe"

// Move is a single step of an episode
type Move struct {
	Mover    tictactoe.Mark     `json:"mover"`
	Position tictactoe.Position `json:"position"`
	Board    tictactoe.Board    `json:"board"`
	Reward   float64            `json:"reward"`
	// perceived state of the mover before the move
	State tictactoe.StateKey `json:"state"`
}

// Outcome of a finished episode
type Outcome struct {
	Winner tictactoe.Mark `json:"winner"`
	Draw   bool           `json:"draw"`
}

// Trace of an episode as the sequence of moves and its outcome
type Trace struct {
	Episode int     `json:"episode"`
	Moves   []Move  `json:"moves"`
	Outcome Outcome `json:"outcome"`
}

func NewTrace(episode int) *Trace {
	return &Trace{
		Episode: episode,
		Moves:   make([]Move, 0, tictactoe.Size*tictactoe.Size),
	}
}

func (t *Trace) Append(move Move) {
	t.Moves = append(t.Moves, move)
}

func (t *Trace) Len() int {
	return len(t.Moves)
}

func (t *Trace) Get(i int) (Move, bool) {
	if i < 0 || i >= len(t.Moves) {
		return Move{}, false
	}
	return t.Moves[i], true
}

func (t *Trace) Last() (Move, bool) {
	return t.Get(len(t.Moves) - 1)
}
