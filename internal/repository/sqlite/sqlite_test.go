package sqlite

import (
	"context"
	"database/sql"
	"testing"

	"github.com/zizouhuweidi/trivia/internal/database"
	"github.com/zizouhuweidi/trivia/internal/domain"
	"github.com/zizouhuweidi/trivia/internal/logging"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.OpenSQLite(":memory:", 1)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, err := database.NewMigrator(db, "sqlite", logging.Discard()).Up(context.Background()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func mustCreateCategory(t *testing.T, repo *CategoryRepository, name string) *domain.Category {
	t.Helper()
	category := &domain.Category{Type: name}
	if err := repo.Create(context.Background(), category); err != nil {
		t.Fatalf("failed to create category %s: %v", name, err)
	}
	return category
}

func mustCreateQuestion(t *testing.T, repo *QuestionRepository, text string, categoryID int) *domain.Question {
	t.Helper()
	question := &domain.Question{Text: text, Answer: "answer", Difficulty: 1, Category: categoryID}
	if err := repo.Create(context.Background(), question); err != nil {
		t.Fatalf("failed to create question %q: %v", text, err)
	}
	return question
}
