package domain

import (
	"context"
	"errors"
)

// Common errors
var (
	ErrQuestionNotFound = errors.New("question not found")
	ErrInvalidQuestion  = errors.New("invalid question")
)

// QuestionRepository defines the interface for question-related operations
type QuestionRepository interface {
	// Create inserts a question and sets its ID
	Create(ctx context.Context, question *Question) error

	// GetByID retrieves a question by its ID
	GetByID(ctx context.Context, id int) (*Question, error)

	// Update updates an existing question
	Update(ctx context.Context, question *Question) error

	// Delete deletes a question
	Delete(ctx context.Context, id int) error

	// List retrieves every question ordered by ID
	List(ctx context.Context) ([]*Question, error)

	// ListPage retrieves at most limit questions ordered by ID, skipping offset
	ListPage(ctx context.Context, limit, offset int) ([]*Question, error)

	// Count returns the total number of questions
	Count(ctx context.Context) (int, error)

	// ListByCategory retrieves the questions of a single category
	ListByCategory(ctx context.Context, categoryID int) ([]*Question, error)

	// Search retrieves questions whose text contains term, ignoring case
	Search(ctx context.Context, term string) ([]*Question, error)

	// BulkCreate creates multiple questions in a single transaction
	BulkCreate(ctx context.Context, questions []*Question) error
}

// Question represents a trivia question
type Question struct {
	ID         int    `json:"id"`
	Text       string `json:"question"`
	Answer     string `json:"answer"`
	Category   int    `json:"category"`
	Difficulty int    `json:"difficulty"`
}

// Validate checks the fields a question needs before it is stored.
// The category reference is enforced by the store.
func (q *Question) Validate() error {
	if q.Text == "" {
		return errors.Join(ErrInvalidQuestion, errors.New("question text cannot be empty"))
	}
	if q.Answer == "" {
		return errors.Join(ErrInvalidQuestion, errors.New("question answer cannot be empty"))
	}
	return nil
}
