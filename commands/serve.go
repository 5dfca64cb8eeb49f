package commands

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/zeu5/tictactoe-rl/play"
	"github.com/zeu5/tictactoe-rl/policies"
	"github.com/zeu5/tictactoe-rl/store"
)

func ServeCommand() *cobra.Command {
	var port int
	var epsilon float64
	var alpha float64
	var persist bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve games against the trained agent over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validatePort(port); err != nil {
				return err
			}
			if err := validateEpsilon("epsilon", epsilon); err != nil {
				return err
			}
			if err := validateAlpha(alpha); err != nil {
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
			server := play.NewServer(ctx, port, table, policies.TDAgentConfig{
				Epsilon: epsilon,
				Alpha:   alpha,
				Source:  policies.NewSource(agentSeed(3)),
			})
			if err := server.Start(); err != nil {
				return err
			}
			if persist {
				return saveTable(context.Background(), s, table)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 8080, "Port of the play server")
	cmd.Flags().Float64Var(&epsilon, "epsilon", PlayEpsilon, "Exploration rate of the computer")
	cmd.Flags().Float64Var(&alpha, "alpha", policies.DefaultAlpha, "Learning rate")
	cmd.Flags().BoolVar(&persist, "persist", false, "Save what the computer learnt when the server stops")
	return cmd
}
