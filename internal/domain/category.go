package domain

import (
	"context"
	"errors"
)

// Common errors
var (
	ErrCategoryNotFound = errors.New("category not found")
	// ErrInvalidCategory is returned when a question references a category that does not exist.
	ErrInvalidCategory = errors.New("invalid category")
)

// Category groups questions by topic
type Category struct {
	ID   int    `json:"id"`
	Type string `json:"type"`
}

// CategoryRepository defines the interface for category-related operations
type CategoryRepository interface {
	// Create inserts a category and sets its ID
	Create(ctx context.Context, category *Category) error

	// GetByID retrieves a category by its ID
	GetByID(ctx context.Context, id int) (*Category, error)

	// List retrieves every category ordered by ID
	List(ctx context.Context) ([]*Category, error)

	// Delete deletes a category together with its questions
	Delete(ctx context.Context, id int) error
}
