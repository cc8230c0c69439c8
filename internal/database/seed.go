package database

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/zizouhuweidi/trivia/internal/domain"
)

//go:embed seed.json
var seedData []byte

type seedFile struct {
	Categories []string `json:"categories"`
	Questions  []struct {
		Question   string `json:"question"`
		Answer     string `json:"answer"`
		Difficulty int    `json:"difficulty"`
		Category   string `json:"category"`
	} `json:"questions"`
}

// SeedResult reports what Seed inserted.
type SeedResult struct {
	Categories int
	Questions  int
}

// Seed loads the starter categories and questions into an empty store.
// It does nothing when any category already exists.
func Seed(ctx context.Context, categories domain.CategoryRepository, questions domain.QuestionRepository, logger *log.Logger) (SeedResult, error) {
	var result SeedResult

	existing, err := categories.List(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to list categories: %w", err)
	}
	if len(existing) > 0 {
		logger.Info("store already seeded", "categories", len(existing))
		return result, nil
	}

	var data seedFile
	if err := json.Unmarshal(seedData, &data); err != nil {
		return result, fmt.Errorf("failed to parse seed data: %w", err)
	}

	ids := make(map[string]int, len(data.Categories))
	for _, name := range data.Categories {
		category := &domain.Category{Type: name}
		if err := categories.Create(ctx, category); err != nil {
			return result, fmt.Errorf("failed to create category %s: %w", name, err)
		}
		ids[name] = category.ID
		result.Categories++
	}

	batch := make([]*domain.Question, 0, len(data.Questions))
	for _, q := range data.Questions {
		categoryID, ok := ids[q.Category]
		if !ok {
			return result, fmt.Errorf("seed question %q references unknown category %s", q.Question, q.Category)
		}
		batch = append(batch, &domain.Question{
			Text:       q.Question,
			Answer:     q.Answer,
			Difficulty: q.Difficulty,
			Category:   categoryID,
		})
	}

	if err := questions.BulkCreate(ctx, batch); err != nil {
		return result, fmt.Errorf("failed to create questions: %w", err)
	}
	result.Questions = len(batch)

	logger.Info("seeded store", "categories", result.Categories, "questions", result.Questions)
	return result, nil
}
