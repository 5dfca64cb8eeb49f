package rl

import (
	"bufio"
	"context"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/zeu5/tictactoe-rl/policies"
	"github.com/zeu5/tictactoe-rl/tictactoe"
)

type update struct {
	target float64
	clear  bool
}

// scriptedPlayer plays a fixed list of moves and records the updates it receives
type scriptedPlayer struct {
	id      tictactoe.Mark
	moves   []tictactoe.Position
	next    int
	updates []update
}

func (s *scriptedPlayer) ID() tictactoe.Mark { return s.id }
func (s *scriptedPlayer) Name() string       { return "scripted" }

func (s *scriptedPlayer) ChooseAction(_ tictactoe.Board) (tictactoe.Position, bool) {
	if s.next >= len(s.moves) {
		return tictactoe.Position{}, false
	}
	m := s.moves[s.next]
	s.next++
	return m, true
}

func (s *scriptedPlayer) UpdatePreviousStateActionValue(target float64, clear bool) {
	s.updates = append(s.updates, update{target, clear})
}

func TestWinRewardsMoverAndPenalisesOpponent(t *testing.T) {
	a := &scriptedPlayer{id: tictactoe.PlayerA, moves: []tictactoe.Position{{Row: 0, Col: 0}, {Row: 0, Col: 1}, {Row: 0, Col: 2}}}
	b := &scriptedPlayer{id: tictactoe.PlayerB, moves: []tictactoe.Position{{Row: 1, Col: 0}, {Row: 1, Col: 1}}}
	trainer := NewTrainer(&TrainerConfig{Episodes: 1}, a, b)

	trace, err := trainer.RunEpisode(0)
	if err != nil {
		t.Fatalf("episode failed: %s", err)
	}
	if trace.Outcome.Winner != tictactoe.PlayerA || trace.Outcome.Draw {
		t.Errorf("expected player A to win, got %+v", trace.Outcome)
	}
	if trace.Len() != 5 {
		t.Errorf("expected 5 moves, got %d", trace.Len())
	}
	if !reflect.DeepEqual(a.updates, []update{{WinReward, true}}) {
		t.Errorf("winner updates: %+v", a.updates)
	}
	if !reflect.DeepEqual(b.updates, []update{{LossReward, true}}) {
		t.Errorf("loser updates: %+v", b.updates)
	}
}

func TestDrawPenalisesBothPlayers(t *testing.T) {
	a := &scriptedPlayer{id: tictactoe.PlayerA, moves: []tictactoe.Position{{Row: 0, Col: 0}, {Row: 0, Col: 2}, {Row: 1, Col: 0}, {Row: 2, Col: 1}, {Row: 2, Col: 2}}}
	b := &scriptedPlayer{id: tictactoe.PlayerB, moves: []tictactoe.Position{{Row: 0, Col: 1}, {Row: 1, Col: 1}, {Row: 1, Col: 2}, {Row: 2, Col: 0}}}
	trainer := NewTrainer(&TrainerConfig{Episodes: 1}, a, b)

	trace, err := trainer.RunEpisode(0)
	if err != nil {
		t.Fatalf("episode failed: %s", err)
	}
	if !trace.Outcome.Draw {
		t.Errorf("expected a draw, got %+v", trace.Outcome)
	}
	if !reflect.DeepEqual(a.updates, []update{{DrawReward, true}}) {
		t.Errorf("last mover updates: %+v", a.updates)
	}
	if !reflect.DeepEqual(b.updates, []update{{DrawReward, true}}) {
		t.Errorf("other player updates: %+v", b.updates)
	}
}

func TestIllegalMoveStopsTraining(t *testing.T) {
	a := &scriptedPlayer{id: tictactoe.PlayerA, moves: []tictactoe.Position{{Row: 0, Col: 0}, {Row: 0, Col: 1}}}
	b := &scriptedPlayer{id: tictactoe.PlayerB, moves: []tictactoe.Position{{Row: 0, Col: 0}}}
	trainer := NewTrainer(&TrainerConfig{Episodes: 3}, a, b)
	summary, err := trainer.Run(context.Background())
	if err == nil {
		t.Fatalf("expected illegal move error")
	}
	if summary.Episodes != 0 {
		t.Errorf("no episode should complete, got %d", summary.Episodes)
	}
}

func newSelfPlay(epsilon float64, seed uint64, table *policies.ValueTable) (*policies.TDAgent, *policies.TDAgent) {
	a := policies.NewTDAgent(tictactoe.PlayerA, table, policies.TDAgentConfig{Epsilon: epsilon, Alpha: 0.1, Source: policies.NewSource(seed)})
	b := policies.NewTDAgent(tictactoe.PlayerB, table, policies.TDAgentConfig{Epsilon: epsilon, Alpha: 0.1, Source: policies.NewSource(seed + 1)})
	return a, b
}

func TestGreedyEpisodeIsReproducible(t *testing.T) {
	run := func() (*Trace, *policies.ValueTable) {
		table := policies.NewValueTable()
		a, b := newSelfPlay(0, 1, table)
		trace, err := NewTrainer(&TrainerConfig{Episodes: 1}, a, b).RunEpisode(0)
		if err != nil {
			t.Fatalf("episode failed: %s", err)
		}
		return trace, table
	}
	firstTrace, firstTable := run()
	secondTrace, secondTable := run()
	if !reflect.DeepEqual(firstTrace, secondTrace) {
		t.Errorf("greedy episodes differ")
	}
	if !reflect.DeepEqual(firstTable.Snapshot(), secondTable.Snapshot()) {
		t.Errorf("value tables differ after identical episodes")
	}

	// with all ties at 0.5 greedy play fills the board in row-major order
	expected := []tictactoe.Position{{Row: 0, Col: 0}, {Row: 0, Col: 1}, {Row: 0, Col: 2}, {Row: 1, Col: 0}, {Row: 1, Col: 1}, {Row: 1, Col: 2}, {Row: 2, Col: 0}}
	for i, pos := range expected {
		if m, _ := firstTrace.Get(i); m.Position != pos {
			t.Errorf("move %d: expected %s, got %s", i, pos, m.Position)
		}
	}
	if firstTrace.Outcome.Winner != tictactoe.PlayerA {
		t.Errorf("expected player A to win on the anti diagonal, got %+v", firstTrace.Outcome)
	}
}

func TestSelfPlayTerminalUpdatesOnSharedTable(t *testing.T) {
	table := policies.NewValueTable()
	a, b := newSelfPlay(0, 1, table)
	trace, err := NewTrainer(&TrainerConfig{Episodes: 1}, a, b).RunEpisode(0)
	if err != nil {
		t.Fatal(err)
	}

	winning, _ := trace.Last()
	if v, _ := table.Get(winning.State, winning.Position); math.Abs(v-policies.TDUpdate(policies.DefaultValue, WinReward, 0.1)) > 1e-12 {
		t.Errorf("winning move should be updated towards +1, got %v", v)
	}
	losing, _ := trace.Get(trace.Len() - 2)
	if v, _ := table.Get(losing.State, losing.Position); math.Abs(v-policies.TDUpdate(policies.DefaultValue, LossReward, 0.1)) > 1e-12 {
		t.Errorf("losing move should be updated towards -1, got %v", v)
	}
	if _, _, ok := a.Pending(); ok {
		t.Errorf("winner memory should be cleared")
	}
	if _, _, ok := b.Pending(); ok {
		t.Errorf("loser memory should be cleared")
	}
}

func TestRunCollectsAnalysesAndTraces(t *testing.T) {
	table := policies.NewValueTable()
	a, b := newSelfPlay(0.35, 11, table)
	tracesPath := filepath.Join(t.TempDir(), "traces", "run.jsonl")
	trainer := NewTrainer(&TrainerConfig{Episodes: 200, TracesPath: tracesPath}, a, b)

	outcomes := NewOutcomeAnalyzer(50, tictactoe.PlayerA, tictactoe.PlayerB)
	coverage := NewCoverageAnalyzer()
	var reported []string
	reporter := func(name string, _ DataSet) error {
		reported = append(reported, name)
		return nil
	}
	trainer.AddAnalysis("outcomes", outcomes, reporter)
	trainer.AddAnalysis("coverage", coverage, reporter)

	summary, err := trainer.Run(context.Background())
	if err != nil {
		t.Fatalf("training failed: %s", err)
	}
	if summary.Episodes != 200 {
		t.Errorf("expected 200 episodes, got %d", summary.Episodes)
	}
	total := summary.Draws
	for _, w := range summary.Wins {
		total += w
	}
	if total != 200 {
		t.Errorf("outcomes do not add up: %+v", summary)
	}
	if !reflect.DeepEqual(reported, []string{"outcomes", "coverage"}) {
		t.Errorf("unexpected reports %v", reported)
	}

	d := outcomes.DataSet().(*OutcomeDataSet)
	if len(d.DrawRates) != 4 || len(d.WinRates[tictactoe.PlayerA]) != 4 {
		t.Errorf("expected 4 windows, got %d", len(d.DrawRates))
	}
	for i := range d.DrawRates {
		sum := d.DrawRates[i] + d.WinRates[tictactoe.PlayerA][i] + d.WinRates[tictactoe.PlayerB][i]
		if math.Abs(sum-1) > 1e-9 {
			t.Errorf("window %d rates sum to %v", i, sum)
		}
	}
	if mean, _ := d.MeanLength(); mean < 5 || mean > 9 {
		t.Errorf("mean episode length %v out of range", mean)
	}

	states := coverage.DataSet().([]int)
	if len(states) != 200 || states[199] > table.Len() {
		t.Errorf("coverage %d does not match table size %d", states[len(states)-1], table.Len())
	}

	f, err := os.Open(tracesPath)
	if err != nil {
		t.Fatalf("traces not recorded: %s", err)
	}
	defer f.Close()
	lines := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		trace := &Trace{}
		if err := json.Unmarshal(scanner.Bytes(), trace); err != nil {
			t.Fatalf("invalid trace line: %s", err)
		}
		lines++
	}
	if lines != 200 {
		t.Errorf("expected 200 traces, got %d", lines)
	}
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	a, b := newSelfPlay(0.35, 3, policies.NewValueTable())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	summary, err := NewTrainer(&TrainerConfig{Episodes: 10}, a, b).Run(ctx)
	if err == nil || summary.Episodes != 0 {
		t.Errorf("cancelled run should stop before the first episode")
	}
}

func TestPlottersWritePNG(t *testing.T) {
	dir := t.TempDir()
	outcomes := NewOutcomeAnalyzer(2, tictactoe.PlayerA, tictactoe.PlayerB)
	coverage := NewCoverageAnalyzer()
	for i, o := range []Outcome{{Winner: tictactoe.PlayerA}, {Draw: true}, {Winner: tictactoe.PlayerB}, {Draw: true}} {
		trace := NewTrace(i)
		trace.Append(Move{State: tictactoe.StateKey("000000000")})
		trace.Outcome = o
		outcomes.Analyze(i, trace)
		coverage.Analyze(i, trace)
	}
	names := map[tictactoe.Mark]string{tictactoe.PlayerA: "agent_1", tictactoe.PlayerB: "agent_2"}
	if err := OutcomePlotter(filepath.Join(dir, "outcomes.png"), names)("outcomes", outcomes.DataSet()); err != nil {
		t.Fatalf("outcome plot failed: %s", err)
	}
	if err := CoveragePlotter(filepath.Join(dir, "coverage.png"))("coverage", coverage.DataSet()); err != nil {
		t.Fatalf("coverage plot failed: %s", err)
	}
	for _, name := range []string{"outcomes.png", "coverage.png"} {
		if info, err := os.Stat(filepath.Join(dir, name)); err != nil || info.Size() == 0 {
			t.Errorf("%s not written", name)
		}
	}
	if err := CoveragePlotter(filepath.Join(dir, "x.png"))("coverage", outcomes.DataSet()); err == nil {
		t.Errorf("expected error for a mismatched dataset")
	}
}

func TestPlotterCreatesOrReportsParentDir(t *testing.T) {
	dir := t.TempDir()
	coverage := NewCoverageAnalyzer()
	trace := NewTrace(0)
	trace.Append(Move{State: tictactoe.StateKey("000000000")})
	coverage.Analyze(0, trace)

	nested := filepath.Join(dir, "plots", "run1", "coverage.png")
	if err := CoveragePlotter(nested)("coverage", coverage.DataSet()); err != nil {
		t.Fatalf("plot in a missing directory failed: %s", err)
	}
	if _, err := os.Stat(nested); err != nil {
		t.Errorf("plot not written: %s", err)
	}

	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := CoveragePlotter(filepath.Join(blocker, "sub", "coverage.png"))("coverage", coverage.DataSet()); err == nil {
		t.Errorf("expected an error when the plot directory cannot be created")
	}
}
