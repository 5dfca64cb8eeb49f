package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/zeu5/tictactoe-rl/policies"
	"github.com/zeu5/tictactoe-rl/tictactoe"
)

// Inspect prints the action values learnt for a state, seen by the player
// about to move (X) against its opponent (O)
func Inspect(out io.Writer, table *policies.ValueTable, key string) error {
	state, err := tictactoe.ParseStateKey(key)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Value table: %d states\n", table.Len())
	fmt.Fprint(out, tictactoe.NewRenderer(false).Render(state.State().Board(tictactoe.PlayerA, tictactoe.PlayerB)))

	values, ok := table.Lookup(state)
	if !ok {
		fmt.Fprintf(out, "State %s was never visited\n", state)
		return nil
	}
	best, _, _ := values.Best()
	for _, entry := range values {
		marker := ""
		if entry.Action == best {
			marker = " <- greedy"
		}
		fmt.Fprintf(out, "%s: %.4f%s\n", entry.Action, entry.Value, marker)
	}
	return nil
}

func InspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <state>",
		Short: "Print the learnt action values of a state given as 9 digits (0 empty, 1 own, 2 opponent)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore()
			if err != nil {
				return err
			}
			defer closeStore(s)

			table, err := s.Load(context.Background())
			if err != nil {
				return err
			}
			return Inspect(os.Stdout, table, args[0])
		},
	}
}
