package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/zeu5/tictactoe-rl/play"
	"github.com/zeu5/tictactoe-rl/policies"
	"github.com/zeu5/tictactoe-rl/store"
	"github.com/zeu5/tictactoe-rl/tictactoe"
)

const PlayEpsilon = 0.01

// newAI creates the agent facing humans, it keeps learning from the games
func newAI(table *policies.ValueTable, epsilon, alpha float64) *policies.TDAgent {
	return policies.NewTDAgent(tictactoe.PlayerA, table, policies.TDAgentConfig{
		Epsilon: epsilon,
		Alpha:   alpha,
		Source:  policies.NewSource(agentSeed(3)),
	})
}

func PlayCommand() *cobra.Command {
	config := DefaultTrainConfig()
	var train bool
	var epsilon float64
	var persist bool
	var colors bool
	var humanFirst bool

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play against the trained agent on the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateEpsilon("epsilon", epsilon); err != nil {
				return err
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
			if train {
				_, completed, err := trainAndSave(ctx, s, table, config, os.Stdout)
				if err != nil || !completed {
					return err
				}
			}

			console := play.NewConsole(os.Stdin, os.Stdout, newAI(table, epsilon, config.Alpha), tictactoe.NewRenderer(colors))
			console.Delay = 300 * time.Millisecond
			console.HumanFirst = humanFirst
			played, err := console.Run(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Played %d games\n", played)
			if persist {
				return saveTable(context.Background(), s, table)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&train, "train", true, "Run a self-play training phase before playing")
	cmd.Flags().IntVarP(&config.Episodes, "episodes", "e", config.Episodes, "Number of self-play episodes of the training phase")
	cmd.Flags().Float64Var(&config.Alpha, "alpha", config.Alpha, "Learning rate")
	cmd.Flags().Float64Var(&epsilon, "epsilon", PlayEpsilon, "Exploration rate of the computer while playing")
	cmd.Flags().BoolVar(&persist, "persist", false, "Save what the computer learnt while playing")
	cmd.Flags().BoolVar(&colors, "colors", true, "Colored board")
	cmd.Flags().BoolVar(&humanFirst, "human-first", true, "Let the human open the first game")
	return cmd
}
