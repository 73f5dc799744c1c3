package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/riskibarqy/match-insights/internal/interfaces/cli"
)

// migration is kept as a standalone binary for deploy jobs; it runs the
// same commands as "insights migrate".
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Execute(ctx, append([]string{"migrate"}, os.Args[1:]...))
	stop()
	os.Exit(code)
}
