package database

import (
	"context"
	"errors"
	"testing"

	"github.com/zizouhuweidi/trivia/internal/logging"
)

func TestLoadMigrations(t *testing.T) {
	for _, dialect := range []string{"postgres", "sqlite"} {
		t.Run(dialect, func(t *testing.T) {
			migrations, err := loadMigrations(dialect)
			if err != nil {
				t.Fatalf("failed to load migrations: %v", err)
			}
			if len(migrations) == 0 {
				t.Fatal("expected at least one migration")
			}
			for i, m := range migrations {
				if m.Up == "" || m.Down == "" {
					t.Errorf("migration %d is incomplete", m.Version)
				}
				if i > 0 && migrations[i-1].Version >= m.Version {
					t.Errorf("migrations not sorted: %d before %d", migrations[i-1].Version, m.Version)
				}
			}
			if migrations[0].Name != "create_tables" {
				t.Errorf("expected first migration create_tables, got %s", migrations[0].Name)
			}
		})
	}

	t.Run("UnknownDialect", func(t *testing.T) {
		if _, err := loadMigrations("mysql"); err == nil {
			t.Fatal("expected error for unknown dialect")
		}
	})
}

func TestMigrator(t *testing.T) {
	ctx := context.Background()

	db, err := OpenSQLite(":memory:", 1)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	m := NewMigrator(db, "sqlite", logging.Discard())

	applied, err := m.Up(ctx)
	if err != nil {
		t.Fatalf("failed to migrate up: %v", err)
	}
	if applied == 0 {
		t.Fatal("expected migrations to be applied")
	}

	again, err := m.Up(ctx)
	if err != nil {
		t.Fatalf("second migrate up failed: %v", err)
	}
	if again != 0 {
		t.Errorf("expected no pending migrations, applied %d", again)
	}

	for _, table := range []string{"categories", "questions"} {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&name)
		if err != nil {
			t.Errorf("expected table %s to exist: %v", table, err)
		}
	}

	version, err := m.Version(ctx)
	if err != nil {
		t.Fatalf("failed to get version: %v", err)
	}

	rolledBack, err := m.Down(ctx)
	if err != nil {
		t.Fatalf("failed to migrate down: %v", err)
	}
	if rolledBack != version {
		t.Errorf("expected to roll back version %d, got %d", version, rolledBack)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'questions'").Scan(&count); err != nil {
		t.Fatalf("failed to query schema: %v", err)
	}
	if count != 0 {
		t.Error("questions table should be dropped after rollback")
	}

	if _, err := m.Down(ctx); !errors.Is(err, ErrNoMigrations) {
		t.Errorf("expected ErrNoMigrations, got %v", err)
	}
}

func TestOpenSQLiteEnforcesForeignKeys(t *testing.T) {
	db, err := OpenSQLite(":memory:", 4)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	var enabled int
	if err := db.QueryRow("PRAGMA foreign_keys").Scan(&enabled); err != nil {
		t.Fatalf("failed to read pragma: %v", err)
	}
	if enabled != 1 {
		t.Errorf("expected foreign keys on, got %d", enabled)
	}
}
