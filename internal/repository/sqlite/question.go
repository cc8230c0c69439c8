// Package sqlite implements the domain repositories on an embedded SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
	"github.com/zizouhuweidi/trivia/internal/domain"
	"github.com/zizouhuweidi/trivia/internal/validation"
)

const questionColumns = `id, question, answer, category, difficulty`

// QuestionRepository implements domain.QuestionRepository
type QuestionRepository struct {
	db *sql.DB
}

// NewQuestionRepository creates a new QuestionRepository with the given database connection
func NewQuestionRepository(db *sql.DB) *QuestionRepository {
	return &QuestionRepository{db: db}
}

// Create inserts a new question and sets its ID
func (r *QuestionRepository) Create(ctx context.Context, question *domain.Question) error {
	return insertQuestion(ctx, r.db, question)
}

// GetByID retrieves a question by ID
func (r *QuestionRepository) GetByID(ctx context.Context, id int) (*domain.Question, error) {
	query := `SELECT ` + questionColumns + ` FROM questions WHERE id = ?`

	question, err := scanQuestion(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	return question, nil
}

// Update modifies an existing question
func (r *QuestionRepository) Update(ctx context.Context, question *domain.Question) error {
	if err := question.Validate(); err != nil {
		return err
	}

	query := `
		UPDATE questions
		SET question = ?, answer = ?, category = ?, difficulty = ?
		WHERE id = ?
	`
	result, err := r.db.ExecContext(ctx, query,
		question.Text,
		question.Answer,
		question.Category,
		question.Difficulty,
		question.ID,
	)
	if err != nil {
		return translateWriteError("failed to update question", err)
	}
	return expectOneRow(result, domain.ErrQuestionNotFound)
}

// Delete removes a question by ID
func (r *QuestionRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM questions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete question: %w", err)
	}
	return expectOneRow(result, domain.ErrQuestionNotFound)
}

// List retrieves every question ordered by ID
func (r *QuestionRepository) List(ctx context.Context) ([]*domain.Question, error) {
	return r.query(ctx, `SELECT `+questionColumns+` FROM questions ORDER BY id`)
}

// ListPage retrieves one window of the ID-ordered question list
func (r *QuestionRepository) ListPage(ctx context.Context, limit, offset int) ([]*domain.Question, error) {
	return r.query(ctx, `SELECT `+questionColumns+` FROM questions ORDER BY id LIMIT ? OFFSET ?`, limit, offset)
}

// Count returns the total number of questions
func (r *QuestionRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM questions`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count questions: %w", err)
	}
	return count, nil
}

// ListByCategory retrieves all questions of a category
func (r *QuestionRepository) ListByCategory(ctx context.Context, categoryID int) ([]*domain.Question, error) {
	return r.query(ctx, `SELECT `+questionColumns+` FROM questions WHERE category = ? ORDER BY id`, categoryID)
}

// Search retrieves questions whose text contains term, ignoring case
func (r *QuestionRepository) Search(ctx context.Context, term string) ([]*domain.Question, error) {
	query := `SELECT ` + questionColumns + ` FROM questions WHERE ulower(question) LIKE ulower(?) ESCAPE '\' ORDER BY id`
	return r.query(ctx, query, validation.ContainsPattern(term))
}

// BulkCreate inserts all questions in one transaction
func (r *QuestionRepository) BulkCreate(ctx context.Context, questions []*domain.Question) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, question := range questions {
		if err := insertQuestion(ctx, tx, question); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertQuestion(ctx context.Context, db execer, question *domain.Question) error {
	if err := question.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO questions (question, answer, category, difficulty)
		VALUES (?, ?, ?, ?)
	`
	result, err := db.ExecContext(ctx, query,
		question.Text,
		question.Answer,
		question.Category,
		question.Difficulty,
	)
	if err != nil {
		return translateWriteError("failed to create question", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get question id: %w", err)
	}
	question.ID = int(id)
	return nil
}

func (r *QuestionRepository) query(ctx context.Context, query string, args ...any) ([]*domain.Question, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query questions: %w", err)
	}
	defer rows.Close()

	questions := []*domain.Question{}
	for rows.Next() {
		question, err := scanQuestion(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan question: %w", err)
		}
		questions = append(questions, question)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return questions, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanQuestion(row scanner) (*domain.Question, error) {
	var question domain.Question
	if err := row.Scan(
		&question.ID,
		&question.Text,
		&question.Answer,
		&question.Category,
		&question.Difficulty,
	); err != nil {
		return nil, err
	}
	return &question, nil
}

func expectOneRow(result sql.Result, notFound error) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return notFound
	}
	return nil
}

// translateWriteError maps a foreign key violation on questions.category to domain.ErrInvalidCategory
func translateWriteError(msg string, err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey {
		return fmt.Errorf("%s: %w", msg, domain.ErrInvalidCategory)
	}
	return fmt.Errorf("%s: %w", msg, err)
}
