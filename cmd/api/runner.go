package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"
	"github.com/urfave/cli/v3"
	"github.com/zizouhuweidi/trivia/internal/config"
	"github.com/zizouhuweidi/trivia/internal/database"
	"github.com/zizouhuweidi/trivia/internal/logging"
	"github.com/zizouhuweidi/trivia/internal/repository"
	"github.com/zizouhuweidi/trivia/internal/server"
	"github.com/zizouhuweidi/trivia/internal/service"
)

// Runner carries the state shared by every command
type Runner struct {
	config *config.Config
	logger *log.Logger
}

func (r *Runner) loadConfig(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return ctx, err
	}
	r.config = cfg
	r.logger = logging.New(os.Stderr, cfg.Log.Level)
	return ctx, nil
}

func (r *Runner) openStore(ctx context.Context) (*repository.Store, error) {
	store, err := repository.Open(ctx, r.config.Database, r.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", r.config.Database.Driver, err)
	}
	return store, nil
}

// Serve starts the HTTP API and blocks until the process is interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	store, err := r.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	if cmd.Bool("migrate") {
		if _, err := store.Migrator.Up(ctx); err != nil {
			return err
		}
	}
	if cmd.Bool("seed") {
		if _, err := database.Seed(ctx, store.Categories, store.Questions, r.logger); err != nil {
			return err
		}
	}

	var rdb *redis.Client
	if r.config.Redis.Enabled {
		rdb, err = database.ConnectRedis(ctx, r.config.Redis)
		if err != nil {
			return err
		}
		defer rdb.Close()
		r.logger.Info("rate limits shared through redis", "addr", r.config.Redis.Addr())
	}

	triviaService := service.NewTriviaService(store.Categories, store.Questions)
	e := server.New(r.config, triviaService, rdb, r.logger)

	return server.Serve(ctx, e, r.config.Server.Addr, r.config.Server.ShutdownTimeout.Duration, r.logger)
}

// MigrateUp applies all pending migrations.
func (r *Runner) MigrateUp(ctx context.Context, cmd *cli.Command) error {
	store, err := r.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	n, err := store.Migrator.Up(ctx)
	if err != nil {
		return err
	}
	r.logger.Info("migrations applied", "count", n)
	return nil
}

// MigrateDown rolls back the most recent migration.
func (r *Runner) MigrateDown(ctx context.Context, cmd *cli.Command) error {
	store, err := r.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	version, err := store.Migrator.Down(ctx)
	if err != nil {
		return err
	}
	r.logger.Info("migration rolled back", "version", version)
	return nil
}

// MigrateVersion prints the current schema version.
func (r *Runner) MigrateVersion(ctx context.Context, cmd *cli.Command) error {
	store, err := r.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	version, err := store.Migrator.Version(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, version)
	return nil
}

// Seed loads the sample data.
func (r *Runner) Seed(ctx context.Context, cmd *cli.Command) error {
	store, err := r.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	result, err := database.Seed(ctx, store.Categories, store.Questions, r.logger)
	if err != nil {
		return err
	}
	r.logger.Info("seed finished", "categories", result.Categories, "questions", result.Questions)
	return nil
}
