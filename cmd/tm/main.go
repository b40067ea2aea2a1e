package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"task-manager/internal/cli"
	"task-manager/internal/config"
)

func main() {
	// Interrupts cancel the command context; serve drains and exits cleanly
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := cli.NewRootCommand(config.CreateRepository)
	if err := root.Execute(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(cli.ExitCode(err))
	}
}
