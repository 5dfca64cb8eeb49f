package rl

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"github.com/zeu5/tictactoe-rl/tictactoe"
	"github.com/zeu5/tictactoe-rl/util"
)

// Terminal rewards applied to the pending decisions of both players.
// A draw is penalised for both sides so that draws are disfavoured.
const (
	WinReward  = 1.0
	LossReward = -1.0
	DrawReward = -0.5
)

// Player is a learning participant of a self-play episode
type Player interface {
	ID() tictactoe.Mark
	Name() string
	ChooseAction(tictactoe.Board) (tictactoe.Position, bool)
	UpdatePreviousStateActionValue(float64, bool)
}

type TrainerConfig struct {
	Episodes int
	// JSONL file receiving one trace per episode, disabled when empty
	TracesPath string
	// print a progress line every ProgressEvery episodes, disabled when 0
	ProgressEvery int
	Output        io.Writer
}

// Summary of a training run
type Summary struct {
	Episodes int
	Wins     map[tictactoe.Mark]int
	Draws    int
}

func newSummary() *Summary {
	return &Summary{Wins: make(map[tictactoe.Mark]int)}
}

func (s *Summary) record(o Outcome) {
	s.Episodes++
	if o.Draw {
		s.Draws++
		return
	}
	s.Wins[o.Winner]++
}

type analysis struct {
	name     string
	analyzer Analyzer
	reporter Reporter
}

// Trainer runs self-play episodes between two players sharing one value table
type Trainer struct {
	config   *TrainerConfig
	env      *tictactoe.Env
	first    Player
	second   Player
	analyses []analysis
}

// NewTrainer creates a trainer where first always opens the game
func NewTrainer(config *TrainerConfig, first, second Player) *Trainer {
	if config.Output == nil {
		config.Output = io.Discard
	}
	return &Trainer{
		config:   config,
		env:      tictactoe.NewEnv(),
		first:    first,
		second:   second,
		analyses: make([]analysis, 0),
	}
}

// AddAnalysis registers an analyzer fed with every trace, reporter is
// invoked with the resulting dataset at the end of Run and can be nil
func (t *Trainer) AddAnalysis(name string, analyzer Analyzer, reporter Reporter) {
	t.analyses = append(t.analyses, analysis{name: name, analyzer: analyzer, reporter: reporter})
}

// Run executes the configured number of episodes. Cancelling the context
// stops the run between two episodes.
func (t *Trainer) Run(ctx context.Context) (*Summary, error) {
	summary := newSummary()
	for _, a := range t.analyses {
		a.analyzer.Reset()
	}
	if t.config.TracesPath != "" {
		if err := util.EnsureParentDir(t.config.TracesPath); err != nil {
			return summary, err
		}
	}

	for i := 0; i < t.config.Episodes; i++ {
		select {
		case <-ctx.Done():
			glog.Warningf("training interrupted after %d episodes", i)
			return summary, ctx.Err()
		default:
		}

		trace, err := t.RunEpisode(i)
		if err != nil {
			return summary, errors.Wrapf(err, "episode %d", i)
		}
		summary.record(trace.Outcome)
		for _, a := range t.analyses {
			a.analyzer.Analyze(i, trace)
		}
		if t.config.TracesPath != "" {
			t.recordTrace(trace)
		}
		if t.config.ProgressEvery > 0 && ((i+1)%t.config.ProgressEvery == 0 || i+1 == t.config.Episodes) {
			t.printProgress(summary)
		}
	}
	if t.config.ProgressEvery > 0 {
		fmt.Fprintln(t.config.Output)
	}

	for _, a := range t.analyses {
		if a.reporter == nil {
			continue
		}
		if err := a.reporter(a.name, a.analyzer.DataSet()); err != nil {
			glog.Warningf("analysis %s: %s", a.name, err)
		}
	}
	return summary, nil
}

// RunEpisode plays a single game from an empty board to a terminal state
func (t *Trainer) RunEpisode(episode int) (*Trace, error) {
	trace := NewTrace(episode)
	board := t.env.Reset()
	current, other := t.first, t.second

	for {
		state := tictactoe.Perceive(board, current.ID()).Key()
		action, ok := current.ChooseAction(board)
		if !ok {
			return trace, errors.Errorf("%s has no action on a non terminal board\n%s", current.Name(), board)
		}
		next, reward, done, err := t.env.Step(current.ID(), action)
		if err != nil {
			return trace, errors.Wrapf(err, "%s chose %s", current.Name(), action)
		}
		trace.Append(Move{Mover: current.ID(), Position: action, Board: next, Reward: reward, State: state})

		if done {
			if reward == WinReward {
				// the opponent's last move allowed the win
				current.UpdatePreviousStateActionValue(WinReward, true)
				other.UpdatePreviousStateActionValue(LossReward, true)
				trace.Outcome = Outcome{Winner: current.ID()}
			} else {
				current.UpdatePreviousStateActionValue(DrawReward, true)
				other.UpdatePreviousStateActionValue(DrawReward, true)
				trace.Outcome = Outcome{Winner: tictactoe.Empty, Draw: true}
			}
			if glog.V(2) {
				glog.Infof("episode %d finished after %d moves: %+v", episode, trace.Len(), trace.Outcome)
			}
			return trace, nil
		}

		board = next
		current, other = other, current
	}
}

func (t *Trainer) recordTrace(trace *Trace) {
	bs, err := json.Marshal(trace)
	if err != nil {
		glog.Warningf("failed to encode trace of episode %d: %s", trace.Episode, err)
		return
	}
	if err := util.AppendToFile(t.config.TracesPath, string(bs)); err != nil {
		glog.Warningf("failed to record trace of episode %d: %s", trace.Episode, err)
	}
}

func (t *Trainer) printProgress(s *Summary) {
	episodesPadding := len(fmt.Sprintf("%d", t.config.Episodes))
	rate := func(count int) float64 {
		if s.Episodes == 0 {
			return 0
		}
		return float64(count) / float64(s.Episodes) * 100
	}
	fmt.Fprintf(t.config.Output, "\rEps:%*d/%d || %s:%*d [%5.1f%%], %s:%*d [%5.1f%%], Draws:%*d [%5.1f%%]",
		episodesPadding, s.Episodes, t.config.Episodes,
		t.first.Name(), episodesPadding, s.Wins[t.first.ID()], rate(s.Wins[t.first.ID()]),
		t.second.Name(), episodesPadding, s.Wins[t.second.ID()], rate(s.Wins[t.second.ID()]),
		episodesPadding, s.Draws, rate(s.Draws))
}
