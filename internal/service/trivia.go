package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/zizouhuweidi/trivia/internal/domain"
)

const (
	// QuestionsPerPage is the size of a question listing page
	QuestionsPerPage = 10

	// AllCategories selects every category when picking quiz questions
	AllCategories = 0

	// searchCategoryID is the category reported alongside every search result
	searchCategoryID = 1
)

// TriviaService implements the trivia operations on top of the repositories
type TriviaService struct {
	categories domain.CategoryRepository
	questions  domain.QuestionRepository
	shuffle    ShuffleFunc
}

// Option configures a TriviaService
type Option func(*TriviaService)

// WithShuffle replaces the random permutation used to pick quiz questions
func WithShuffle(shuffle ShuffleFunc) Option {
	return func(s *TriviaService) {
		s.shuffle = shuffle
	}
}

// NewTriviaService creates a new trivia service
func NewTriviaService(categories domain.CategoryRepository, questions domain.QuestionRepository, opts ...Option) *TriviaService {
	s := &TriviaService{
		categories: categories,
		questions:  questions,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// QuestionPage is one page of the question listing
type QuestionPage struct {
	Questions       []*domain.Question
	Total           int
	Categories      []string
	CurrentCategory string
}

// SearchResult holds the questions matching a search term
type SearchResult struct {
	Questions       []*domain.Question
	CurrentCategory *domain.Category
}

// CategoryQuestions holds the questions of one category
type CategoryQuestions struct {
	Questions []*domain.Question
	Category  *domain.Category
}

// Categories returns every category ordered by ID
func (s *TriviaService) Categories(ctx context.Context) ([]*domain.Category, error) {
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, internal(err)
	}
	return categories, nil
}

// QuestionPage returns the 1-indexed page of the ID-ordered question listing.
// A page past the last question, or any page when there are no questions, is not found.
func (s *TriviaService) QuestionPage(ctx context.Context, page int) (*QuestionPage, error) {
	total, err := s.questions.Count(ctx)
	if err != nil {
		return nil, internal(err)
	}

	pages := (total + QuestionsPerPage - 1) / QuestionsPerPage
	if page < 1 || page > pages {
		return nil, fmt.Errorf("%w: page %d of %d", ErrNotFound, page, pages)
	}

	questions, err := s.questions.ListPage(ctx, QuestionsPerPage, (page-1)*QuestionsPerPage)
	if err != nil {
		return nil, internal(err)
	}
	// Rows may have been deleted since the count.
	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: page %d is empty", ErrNotFound, page)
	}

	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, internal(err)
	}
	names := make([]string, 0, len(categories))
	for _, category := range categories {
		names = append(names, category.Type)
	}

	current, err := s.category(ctx, questions[0].Category)
	if err != nil {
		return nil, err
	}

	return &QuestionPage{
		Questions:       questions,
		Total:           total,
		Categories:      names,
		CurrentCategory: current.Type,
	}, nil
}

// DeleteQuestion deletes a question by ID
func (s *TriviaService) DeleteQuestion(ctx context.Context, id int) error {
	if err := s.questions.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrQuestionNotFound) {
			return fmt.Errorf("%w: %w", ErrNotFound, err)
		}
		return internal(err)
	}
	return nil
}

// CreateQuestion stores a new question and sets its ID.
// Missing text or answer is a bad request; anything the store rejects is unprocessable.
func (s *TriviaService) CreateQuestion(ctx context.Context, question *domain.Question) error {
	if err := question.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	if err := s.questions.Create(ctx, question); err != nil {
		return fmt.Errorf("%w: %w", ErrUnprocessable, err)
	}
	return nil
}

// SearchQuestions finds questions whose text contains term, ignoring case.
// CurrentCategory is always category 1, or nil when it does not exist.
func (s *TriviaService) SearchQuestions(ctx context.Context, term string) (*SearchResult, error) {
	questions, err := s.questions.Search(ctx, term)
	if err != nil {
		return nil, internal(err)
	}

	current, err := s.categories.GetByID(ctx, searchCategoryID)
	if err != nil && !errors.Is(err, domain.ErrCategoryNotFound) {
		return nil, internal(err)
	}

	return &SearchResult{
		Questions:       questions,
		CurrentCategory: current,
	}, nil
}

// QuestionsByCategory returns the questions of an existing category
func (s *TriviaService) QuestionsByCategory(ctx context.Context, categoryID int) (*CategoryQuestions, error) {
	category, err := s.category(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	questions, err := s.questions.ListByCategory(ctx, categoryID)
	if err != nil {
		return nil, internal(err)
	}

	return &CategoryQuestions{
		Questions: questions,
		Category:  category,
	}, nil
}

// NextQuizQuestion picks a random question of the category (or of all categories
// for AllCategories) that is not in previous. It returns nil, nil once every
// candidate has been asked.
func (s *TriviaService) NextQuizQuestion(ctx context.Context, previous []int, categoryID int) (*domain.Question, error) {
	var (
		pool []*domain.Question
		err  error
	)
	if categoryID == AllCategories {
		pool, err = s.questions.List(ctx)
	} else {
		pool, err = s.questions.ListByCategory(ctx, categoryID)
	}
	if err != nil {
		return nil, internal(err)
	}

	return pickUnseen(pool, previous, s.shuffle), nil
}

func (s *TriviaService) category(ctx context.Context, id int) (*domain.Category, error) {
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrCategoryNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrNotFound, err)
		}
		return nil, internal(err)
	}
	return category, nil
}

func internal(err error) error {
	return fmt.Errorf("%w: %w", ErrInternal, err)
}
