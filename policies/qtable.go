package policies

import (
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/zeu5/tictactoe-rl/tictactoe"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// DefaultValue is the optimistic initial estimate of an unseen action
const DefaultValue = 0.5

// ActionValue is the estimate of a single action
type ActionValue struct {
	Action tictactoe.Position
	Value  float64
}

// ActionValues of a state, kept in row-major action order
type ActionValues []ActionValue

// Best returns the first action with the maximum value
func (av ActionValues) Best() (tictactoe.Position, float64, bool) {
	if len(av) == 0 {
		return tictactoe.Position{}, 0, false
	}
	best := av[0]
	for _, entry := range av[1:] {
		if entry.Value > best.Value {
			best = entry
		}
	}
	return best.Action, best.Value, true
}

func (av ActionValues) Actions() []tictactoe.Position {
	actions := make([]tictactoe.Position, len(av))
	for i, entry := range av {
		actions[i] = entry.Action
	}
	return actions
}

func (av ActionValues) Get(action tictactoe.Position) (float64, bool) {
	for _, entry := range av {
		if entry.Action == action {
			return entry.Value, true
		}
	}
	return 0, false
}

func (av ActionValues) Map() map[tictactoe.Position]float64 {
	out := make(map[tictactoe.Position]float64, len(av))
	for _, entry := range av {
		out[entry.Action] = entry.Value
	}
	return out
}

// ValueTable maps a perceived state to the estimates of its legal actions.
//
// Agents hold a reference to the same instance when learning by self-play,
// so that the experience of both players updates a single pooled policy.
// The table has no lock: training is strictly turn sequential and every
// read-modify-write completes before the next read.
type ValueTable struct {
	table map[tictactoe.StateKey]ActionValues
}

func NewValueTable() *ValueTable {
	return &ValueTable{
		table: make(map[tictactoe.StateKey]ActionValues),
	}
}

func (q *ValueTable) HasState(state tictactoe.StateKey) bool {
	_, ok := q.table[state]
	return ok
}

// Lookup returns a copy of the estimates of state
func (q *ValueTable) Lookup(state tictactoe.StateKey) (ActionValues, bool) {
	values, ok := q.table[state]
	if !ok {
		return nil, false
	}
	return slices.Clone(values), true
}

// Ensure inserts state with every action at def if the state is unseen.
// It returns the actions tracked for the state and whether it was inserted.
func (q *ValueTable) Ensure(state tictactoe.StateKey, actions []tictactoe.Position, def float64) (ActionValues, bool) {
	if values, ok := q.table[state]; ok {
		return slices.Clone(values), false
	}
	values := make(ActionValues, len(actions))
	for i, a := range actions {
		values[i] = ActionValue{Action: a, Value: def}
	}
	sortRowMajor(values)
	q.table[state] = values
	return slices.Clone(values), true
}

func (q *ValueTable) Get(state tictactoe.StateKey, action tictactoe.Position) (float64, bool) {
	values, ok := q.table[state]
	if !ok {
		return 0, false
	}
	return values.Get(action)
}

// Set overwrites the estimate of an existing action, unknown pairs are ignored
func (q *ValueTable) Set(state tictactoe.StateKey, action tictactoe.Position, val float64) bool {
	values, ok := q.table[state]
	if !ok {
		return false
	}
	for i := range values {
		if values[i].Action == action {
			values[i].Value = val
			return true
		}
	}
	return false
}

// Put replaces the whole entry of a state, used when loading persisted tables
func (q *ValueTable) Put(state tictactoe.StateKey, values map[tictactoe.Position]float64) {
	entry := make(ActionValues, 0, len(values))
	for a, v := range values {
		entry = append(entry, ActionValue{Action: a, Value: v})
	}
	sortRowMajor(entry)
	q.table[state] = entry
}

func (q *ValueTable) Len() int {
	return len(q.table)
}

// States returns the known states sorted
func (q *ValueTable) States() []tictactoe.StateKey {
	keys := maps.Keys(q.table)
	slices.Sort(keys)
	return keys
}

// Snapshot copies the table contents for persistence
func (q *ValueTable) Snapshot() map[tictactoe.StateKey]map[tictactoe.Position]float64 {
	out := make(map[tictactoe.StateKey]map[tictactoe.Position]float64, len(q.table))
	for state, values := range q.table {
		out[state] = values.Map()
	}
	return out
}

func (q *ValueTable) MarshalJSON() ([]byte, error) {
	return json.Marshal(q.Snapshot())
}

func (q *ValueTable) UnmarshalJSON(data []byte) error {
	raw := make(map[string]map[tictactoe.Position]float64)
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.Wrap(err, "failed to decode value table")
	}
	table := make(map[tictactoe.StateKey]ActionValues, len(raw))
	q.table = table
	for key, values := range raw {
		state, err := tictactoe.ParseStateKey(key)
		if err != nil {
			return err
		}
		q.Put(state, values)
	}
	return nil
}

func sortRowMajor(values ActionValues) {
	slices.SortFunc(values, func(a, b ActionValue) int {
		switch {
		case tictactoe.RowMajorLess(a.Action, b.Action):
			return -1
		case tictactoe.RowMajorLess(b.Action, a.Action):
			return 1
		}
		return 0
	})
}
