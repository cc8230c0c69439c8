// Package repository opens the configured question store.
package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/zizouhuweidi/trivia/internal/config"
	"github.com/zizouhuweidi/trivia/internal/database"
	"github.com/zizouhuweidi/trivia/internal/domain"
	"github.com/zizouhuweidi/trivia/internal/repository/postgres"
	"github.com/zizouhuweidi/trivia/internal/repository/sqlite"
)

// Store bundles the repositories of one backend together with the handle used for migrations.
type Store struct {
	Categories domain.CategoryRepository
	Questions  domain.QuestionRepository
	Migrator   *database.Migrator

	close func()
}

// Open connects to the backend selected by cfg.Driver.
func Open(ctx context.Context, cfg config.DatabaseConfig, logger *log.Logger) (*Store, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		pool, err := database.ConnectPostgres(ctx, cfg.Postgres, cfg.MaxConns)
		if err != nil {
			return nil, err
		}
		db := stdlib.OpenDBFromPool(pool)
		return &Store{
			Categories: postgres.NewCategoryRepository(pool),
			Questions:  postgres.NewQuestionRepository(pool),
			Migrator:   database.NewMigrator(db, config.DriverPostgres, logger),
			close: func() {
				db.Close()
				pool.Close()
			},
		}, nil

	case config.DriverSQLite:
		db, err := database.OpenSQLite(cfg.SQLite.Path, cfg.MaxConns)
		if err != nil {
			return nil, err
		}
		return NewSQLiteStore(db, logger), nil

	default:
		return nil, fmt.Errorf("%w: unknown database driver %q", config.ErrInvalidConfig, cfg.Driver)
	}
}

// NewSQLiteStore wraps an open SQLite database.
func NewSQLiteStore(db *sql.DB, logger *log.Logger) *Store {
	return &Store{
		Categories: sqlite.NewCategoryRepository(db),
		Questions:  sqlite.NewQuestionRepository(db),
		Migrator:   database.NewMigrator(db, config.DriverSQLite, logger),
		close:      func() { db.Close() },
	}
}

// Close releases the underlying connections.
func (s *Store) Close() {
	if s.close != nil {
		s.close()
	}
}
