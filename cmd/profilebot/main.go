// Package main is the entrypoint for profilebot.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := execute(ctx, os.Args[1:])
	stop()
	os.Exit(exitCode)
}
