package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/zeu5/tictactoe-rl/policies"
	"github.com/zeu5/tictactoe-rl/rl"
	"github.com/zeu5/tictactoe-rl/store"
	"github.com/zeu5/tictactoe-rl/tictactoe"
)

// Train runs the self-play phase on table. Both agents share the table.
func Train(ctx context.Context, table *policies.ValueTable, config *TrainConfig, out io.Writer) (*rl.Summary, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	agentA := policies.NewTDAgent(tictactoe.PlayerA, table, policies.TDAgentConfig{
		Epsilon: config.EpsilonA,
		Alpha:   config.Alpha,
		Source:  policies.NewSource(agentSeed(1)),
	})
	agentB := policies.NewTDAgent(tictactoe.PlayerB, table, policies.TDAgentConfig{
		Epsilon: config.EpsilonB,
		Alpha:   config.Alpha,
		Source:  policies.NewSource(agentSeed(2)),
	})

	progress := config.Episodes / 100
	if progress == 0 {
		progress = 1
	}
	trainer := rl.NewTrainer(&rl.TrainerConfig{
		Episodes:      config.Episodes,
		TracesPath:    config.TracesPath,
		ProgressEvery: progress,
		Output:        out,
	}, agentA, agentB)

	names := map[tictactoe.Mark]string{
		agentA.ID(): agentA.Name(),
		agentB.ID(): agentB.Name(),
	}
	trainer.AddAnalysis("Outcomes", rl.NewOutcomeAnalyzer(config.Window, agentA.ID(), agentB.ID()), outcomeReporter(out, config.PlotPath, names))
	if config.PlotPath != "" {
		trainer.AddAnalysis("Coverage", rl.NewCoverageAnalyzer(), rl.CoveragePlotter(coveragePlotPath(config.PlotPath)))
	}

	glog.Infof("training for %d episodes (epsilon %v/%v, alpha %v) on %d known states",
		config.Episodes, config.EpsilonA, config.EpsilonB, config.Alpha, table.Len())
	summary, err := trainer.Run(ctx)
	glog.Infof("value table has %d states after %d episodes", table.Len(), summary.Episodes)
	return summary, err
}

func outcomeReporter(out io.Writer, plotPath string, names map[tictactoe.Mark]string) rl.Reporter {
	return func(name string, ds rl.DataSet) error {
		d, ok := ds.(*rl.OutcomeDataSet)
		if !ok {
			return errors.Errorf("unexpected dataset %T for %s", ds, name)
		}
		mean, std := d.MeanLength()
		fmt.Fprintf(out, "Game length: %.2f (std %.2f), draw rate of the last %d episodes: %.2f\n",
			mean, std, d.Window, d.FinalDrawRate())
		if plotPath == "" {
			return nil
		}
		return rl.OutcomePlotter(plotPath, names)(name, ds)
	}
}

func coveragePlotPath(plotPath string) string {
	return strings.TrimSuffix(plotPath, ".png") + "_coverage.png"
}

// trainAndSave trains on table and saves it, also when the run is
// interrupted. The boolean reports whether every episode was played.
func trainAndSave(ctx context.Context, s store.Store, table *policies.ValueTable, config *TrainConfig, out io.Writer) (*rl.Summary, bool, error) {
	summary, err := Train(ctx, table, config, out)
	if err != nil && !errors.Is(err, context.Canceled) {
		return summary, false, err
	}
	if err := saveTable(context.Background(), s, table); err != nil {
		return summary, false, err
	}
	return summary, err == nil, nil
}

func saveTable(ctx context.Context, s store.Store, table *policies.ValueTable) error {
	if err := s.Save(ctx, table); err != nil {
		return errors.Wrapf(err, "failed to save the value table to %s", s)
	}
	glog.Infof("value table with %d states saved to %s", table.Len(), s)
	return nil
}

func TrainCommand() *cobra.Command {
	config := DefaultTrainConfig()
	var epsilon float64

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train two agents sharing one value table by self-play",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("epsilon-a") {
				config.EpsilonA = epsilon
			}
			if !cmd.Flags().Changed("epsilon-b") {
				config.EpsilonB = epsilon
			}
			if err := config.Validate(); err != nil {
				return err
			}
			s, err := openStore()
			if err != nil {
				return err
			}
			defer closeStore(s)

			ctx, cancel := signalContext()
			defer cancel()

			table := store.LoadOrEmpty(ctx, s)
			summary, _, err := trainAndSave(ctx, s, table, config, os.Stdout)
			if err != nil {
				return err
			}
			fmt.Printf("Episodes: %d, first player wins: %d, second player wins: %d, draws: %d\n",
				summary.Episodes, summary.Wins[tictactoe.PlayerA], summary.Wins[tictactoe.PlayerB], summary.Draws)
			return nil
		},
	}
	cmd.Flags().IntVarP(&config.Episodes, "episodes", "e", config.Episodes, "Number of self-play episodes")
	cmd.Flags().Float64Var(&epsilon, "epsilon", policies.DefaultEpsilon, "Exploration rate of both agents")
	cmd.Flags().Float64Var(&config.EpsilonA, "epsilon-a", policies.DefaultEpsilon, "Exploration rate of the first agent")
	cmd.Flags().Float64Var(&config.EpsilonB, "epsilon-b", policies.DefaultEpsilon, "Exploration rate of the second agent")
	cmd.Flags().Float64Var(&config.Alpha, "alpha", config.Alpha, "Learning rate")
	cmd.Flags().StringVar(&config.PlotPath, "plot", "", "Save the learning curve to this PNG file")
	cmd.Flags().IntVar(&config.Window, "window", config.Window, "Episodes per point of the learning curve")
	cmd.Flags().StringVar(&config.TracesPath, "traces", "", "Append the episode traces to this JSONL file")
	return cmd
}
