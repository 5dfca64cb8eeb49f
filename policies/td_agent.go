package policies

import (
	"fmt"

	"github.com/golang/glog"
	"github.com/zeu5/tictactoe-rl/tictactoe"
	"golang.org/x/exp/rand"
)

const (
	DefaultEpsilon = 0.35
	DefaultAlpha   = 0.1
)

type TDAgentConfig struct {
	// probability of a random move instead of the greedy one
	Epsilon float64
	// learning rate of the TD(0) update
	Alpha float64
	// source of randomness, a time seeded one is used if nil
	Source rand.Source
}

func DefaultTDAgentConfig() TDAgentConfig {
	return TDAgentConfig{
		Epsilon: DefaultEpsilon,
		Alpha:   DefaultAlpha,
	}
}

type stateAction struct {
	state  tictactoe.StateKey
	action tictactoe.Position
}

// TDAgent plays epsilon-greedy over a value table and updates the value of
// its previous decision with TD(0)
type TDAgent struct {
	id      tictactoe.Mark
	name    string
	table   *ValueTable
	epsilon float64
	alpha   float64
	sampler *sampler

	// last decision waiting for a value update, nil when idle
	previous *stateAction
}

func NewTDAgent(id tictactoe.Mark, table *ValueTable, config TDAgentConfig) *TDAgent {
	return &TDAgent{
		id:      id,
		name:    fmt.Sprintf("agent_%d", id),
		table:   table,
		epsilon: config.Epsilon,
		alpha:   config.Alpha,
		sampler: newSampler(config.Source),
	}
}

func (a *TDAgent) ID() tictactoe.Mark {
	return a.id
}

func (a *TDAgent) Name() string {
	return a.name
}

func (a *TDAgent) Table() *ValueTable {
	return a.table
}

func (a *TDAgent) Epsilon() float64 {
	return a.epsilon
}

func (a *TDAgent) SetEpsilon(epsilon float64) {
	a.epsilon = epsilon
}

func (a *TDAgent) Alpha() float64 {
	return a.alpha
}

// Pending returns the decision waiting for an update
func (a *TDAgent) Pending() (tictactoe.StateKey, tictactoe.Position, bool) {
	if a.previous == nil {
		return "", tictactoe.Position{}, false
	}
	return a.previous.state, a.previous.action, true
}

// ChooseAction picks the next move on board. Unseen states are added to the
// table with every available action at DefaultValue before the epsilon draw.
// A greedy move immediately updates the previous decision towards the value
// of the chosen action, an exploratory one does not. It returns false only
// when the board has no empty cell.
func (a *TDAgent) ChooseAction(board tictactoe.Board) (tictactoe.Position, bool) {
	state := tictactoe.Perceive(board, a.id).Key()
	available := tictactoe.AvailableActions(board)

	values, inserted := a.table.Ensure(state, available, DefaultValue)
	if inserted {
		glog.V(3).Infof("%s: new state %s with %d actions", a.name, state, len(available))
	}
	if len(values) == 0 {
		return tictactoe.Position{}, false
	}

	var action tictactoe.Position
	if a.sampler.Float64() >= a.epsilon {
		var value float64
		action, value, _ = values.Best()
		a.UpdatePreviousStateActionValue(value, false)
	} else {
		i, ok := a.sampler.Uniform(len(values))
		if !ok {
			return tictactoe.Position{}, false
		}
		action = values[i].Action
	}

	a.previous = &stateAction{state: state, action: action}
	return action, true
}

// UpdatePreviousStateActionValue moves the estimate of the previous decision
// towards target by alpha. The decision is forgotten when clear is set,
// which happens at the end of an episode.
func (a *TDAgent) UpdatePreviousStateActionValue(target float64, clear bool) {
	if a.previous == nil {
		return
	}
	old, ok := a.table.Get(a.previous.state, a.previous.action)
	if ok {
		updated := TDUpdate(old, target, a.alpha)
		a.table.Set(a.previous.state, a.previous.action, updated)
		if glog.V(4) {
			glog.Infof("%s: update %s at %s from %.4f to %.4f", a.name, a.previous.action, a.previous.state, old, updated)
		}
	}
	if clear {
		a.previous = nil
	}
}

// TDUpdate returns old moved towards target by rate alpha
func TDUpdate(old, target, alpha float64) float64 {
	return old + alpha*(target-old)
}
