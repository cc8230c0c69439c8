package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"
	"github.com/zizouhuweidi/trivia/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	r := &Runner{logger: logging.New(os.Stderr, "info")}

	app := &cli.Command{
		Name:   "trivia",
		Usage:  "Trivia quiz REST API",
		Flags:  []cli.Flag{configFlag()},
		Before: r.loadConfig,
		Action: r.Serve,
		Commands: []*cli.Command{
			serveCommand(r),
			migrateCommand(r),
			seedCommand(r),
		},
	}

	if err := app.Run(ctx, os.Args); err != nil {
		r.logger.Fatalf("application error: %v", err)
	}
}
