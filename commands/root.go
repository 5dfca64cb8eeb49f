package commands

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/zeu5/tictactoe-rl/store"
)

var (
	tablePath string
	storeKind string
	redisAddr string
	redisKey  string
	seed      uint64
)

func GetRootCommand() *cobra.Command {
	rootCommand := &cobra.Command{
		Use:           "tictactoe",
		Short:         "Tabular TD(0) tic-tac-toe trainer and player",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCommand.PersistentFlags().StringVarP(&tablePath, "table", "t", "state_table.json", "File holding the value table")
	rootCommand.PersistentFlags().StringVar(&storeKind, "store", "file", "Where the value table is kept (file|redis)")
	rootCommand.PersistentFlags().StringVar(&redisAddr, "redis-addr", "127.0.0.1:6379", "Address of the redis server")
	rootCommand.PersistentFlags().StringVar(&redisKey, "redis-key", store.DefaultRedisKey, "Redis hash holding the value table")
	rootCommand.PersistentFlags().Uint64Var(&seed, "seed", 0, "Seed of the random sources, 0 picks a time based seed")
	// glog flags (-v, --logtostderr, ...)
	rootCommand.PersistentFlags().AddGoFlagSet(flag.CommandLine)

	rootCommand.AddCommand(TrainCommand())
	rootCommand.AddCommand(PlayCommand())
	rootCommand.AddCommand(ServeCommand())
	rootCommand.AddCommand(InspectCommand())
	return rootCommand
}

func openStore() (store.Store, error) {
	switch storeKind {
	case "file":
		return store.NewFileStore(tablePath), nil
	case "redis":
		return store.NewRedisStoreFromAddr(redisAddr, redisKey), nil
	default:
		return nil, errors.Errorf("unknown store %q, expected file or redis", storeKind)
	}
}

func closeStore(s store.Store) {
	if r, ok := s.(*store.RedisStore); ok {
		r.Close()
	}
}

// agentSeed derives distinct sources for the agents of one run
func agentSeed(offset uint64) uint64 {
	if seed == 0 {
		return 0
	}
	return seed + offset
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
