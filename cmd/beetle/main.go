package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/HenryZhang-ZHY/beetle/cmd/beetle/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.NewRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
