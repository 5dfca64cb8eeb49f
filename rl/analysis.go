package rl

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/zeu5/tictactoe-rl/tictactoe"
	"github.com/zeu5/tictactoe-rl/util"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// Generic Dataset that contains information after processing the traces
type DataSet interface{}

// Analyzer compresses the information in the traces to a DataSet
type Analyzer interface {
	// episode, trace
	Analyze(int, *Trace)
	DataSet() DataSet
	Reset()
}

// Reporter consumes the dataset of a named analysis at the end of a run
type Reporter func(string, DataSet) error

// OutcomeDataSet holds the outcome rates of consecutive windows of episodes
type OutcomeDataSet struct {
	Window int
	// win rate per window, for each player
	WinRates map[tictactoe.Mark][]float64
	// draw rate per window
	DrawRates []float64
	// number of moves of every episode
	Lengths []float64
}

// MeanLength returns the mean and standard deviation of the episode lengths
func (d *OutcomeDataSet) MeanLength() (float64, float64) {
	if len(d.Lengths) == 0 {
		return 0, 0
	}
	return stat.MeanStdDev(d.Lengths, nil)
}

// FinalDrawRate is the draw rate of the last complete window
func (d *OutcomeDataSet) FinalDrawRate() float64 {
	if len(d.DrawRates) == 0 {
		return 0
	}
	return d.DrawRates[len(d.DrawRates)-1]
}

type OutcomeAnalyzer struct {
	window   int
	players  []tictactoe.Mark
	outcomes []Outcome
	lengths  []float64
}

var _ Analyzer = &OutcomeAnalyzer{}

func NewOutcomeAnalyzer(window int, players ...tictactoe.Mark) *OutcomeAnalyzer {
	if window <= 0 {
		window = 1
	}
	return &OutcomeAnalyzer{
		window:   window,
		players:  players,
		outcomes: make([]Outcome, 0),
		lengths:  make([]float64, 0),
	}
}

func (o *OutcomeAnalyzer) Analyze(_ int, trace *Trace) {
	o.outcomes = append(o.outcomes, trace.Outcome)
	o.lengths = append(o.lengths, float64(trace.Len()))
}

func (o *OutcomeAnalyzer) DataSet() DataSet {
	d := &OutcomeDataSet{
		Window:    o.window,
		WinRates:  make(map[tictactoe.Mark][]float64),
		DrawRates: make([]float64, 0),
		Lengths:   slices.Clone(o.lengths),
	}
	for _, p := range o.players {
		d.WinRates[p] = make([]float64, 0)
	}
	for start := 0; start+o.window <= len(o.outcomes); start += o.window {
		wins := make(map[tictactoe.Mark]int)
		draws := 0
		for _, outcome := range o.outcomes[start : start+o.window] {
			if outcome.Draw {
				draws++
			} else {
				wins[outcome.Winner]++
			}
		}
		for _, p := range o.players {
			d.WinRates[p] = append(d.WinRates[p], float64(wins[p])/float64(o.window))
		}
		d.DrawRates = append(d.DrawRates, float64(draws)/float64(o.window))
	}
	return d
}

func (o *OutcomeAnalyzer) Reset() {
	o.outcomes = make([]Outcome, 0)
	o.lengths = make([]float64, 0)
}

// CoverageAnalyzer counts the distinct perceived states visited so far after each episode
type CoverageAnalyzer struct {
	uniqueStates    map[tictactoe.StateKey]bool
	numUniqueStates []int
}

var _ Analyzer = &CoverageAnalyzer{}

func NewCoverageAnalyzer() *CoverageAnalyzer {
	return &CoverageAnalyzer{
		uniqueStates:    make(map[tictactoe.StateKey]bool),
		numUniqueStates: make([]int, 0),
	}
}

func (c *CoverageAnalyzer) Analyze(_ int, trace *Trace) {
	for _, m := range trace.Moves {
		c.uniqueStates[m.State] = true
	}
	c.numUniqueStates = append(c.numUniqueStates, len(c.uniqueStates))
}

func (c *CoverageAnalyzer) DataSet() DataSet {
	return slices.Clone(c.numUniqueStates)
}

func (c *CoverageAnalyzer) Reset() {
	c.uniqueStates = make(map[tictactoe.StateKey]bool)
	c.numUniqueStates = make([]int, 0)
}

// OutcomePlotter saves the win and draw rates per window as a PNG line plot
func OutcomePlotter(plotPath string, names map[tictactoe.Mark]string) Reporter {
	return func(name string, ds DataSet) error {
		d, ok := ds.(*OutcomeDataSet)
		if !ok {
			return errors.Errorf("unexpected dataset %T for %s", ds, name)
		}
		p := plot.New()
		p.Title.Text = name
		p.X.Label.Text = fmt.Sprintf("Episode (x%d)", d.Window)
		p.Y.Label.Text = "Rate"
		p.Y.Min = 0
		p.Y.Max = 1

		players := maps.Keys(d.WinRates)
		slices.Sort(players)
		i := 0
		for _, player := range players {
			label, ok := names[player]
			if !ok {
				label = fmt.Sprintf("%d", player)
			}
			if err := addLine(p, i, label+" wins", d.WinRates[player]); err != nil {
				return err
			}
			i++
		}
		if err := addLine(p, i, "draws", d.DrawRates); err != nil {
			return err
		}
		return savePlot(p, plotPath)
	}
}

// CoveragePlotter saves the number of distinct states after each episode as a PNG line plot
func CoveragePlotter(plotPath string) Reporter {
	return func(name string, ds DataSet) error {
		uniqueStates, ok := ds.([]int)
		if !ok {
			return errors.Errorf("unexpected dataset %T for %s", ds, name)
		}
		p := plot.New()
		p.Title.Text = name
		p.X.Label.Text = "Episode"
		p.Y.Label.Text = "States covered"
		values := make([]float64, len(uniqueStates))
		for i, v := range uniqueStates {
			values[i] = float64(v)
		}
		if err := addLine(p, 0, "states", values); err != nil {
			return err
		}
		return savePlot(p, plotPath)
	}
}

func addLine(p *plot.Plot, i int, label string, values []float64) error {
	points := make(plotter.XYs, len(values))
	for j, v := range values {
		points[j] = plotter.XY{
			X: float64(j),
			Y: v,
		}
	}
	line, err := plotter.NewLine(points)
	if err != nil {
		return errors.Wrapf(err, "failed to plot %s", label)
	}
	line.Color = plotutil.Color(i)
	p.Add(line)
	p.Legend.Add(label, line)
	return nil
}

func savePlot(p *plot.Plot, plotPath string) error {
	if err := util.EnsureParentDir(plotPath); err != nil {
		return err
	}
	return errors.Wrapf(p.Save(8*vg.Inch, 6*vg.Inch, plotPath), "failed to save plot %s", plotPath)
}
