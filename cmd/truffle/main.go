package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/kolah/truffle/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd := cli.RootCmd()
	err := cmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Println(err.Error())
		stop()
		os.Exit(1)
	}
}
