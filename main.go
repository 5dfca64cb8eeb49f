package main

import (
	"fmt"
	"os"

	"github.com/golang/glog"
	"github.com/zeu5/tictactoe-rl/commands"
)

func main() {
	rootCommand := commands.GetRootCommand()
	err := rootCommand.Execute()
	glog.Flush()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
