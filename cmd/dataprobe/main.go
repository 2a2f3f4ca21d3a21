package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/alexanderjulianmartinez/dataprobe/internal/cli"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return cli.Execute(ctx, args, os.Stdout, os.Stderr)
}
