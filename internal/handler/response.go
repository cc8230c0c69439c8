package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/zizouhuweidi/trivia/internal/domain"
)

// CategoriesResponse lists every category
type CategoriesResponse struct {
	Success    bool        `json:"success"`
	Categories CategoryMap `json:"categories"`
}

// CategoryMap encodes categories as a JSON object from ID to type, keeping ID order
type CategoryMap []*domain.Category

// MarshalJSON implements json.Marshaler
func (m CategoryMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, category := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(`"` + strconv.Itoa(category.ID) + `":`)
		name, err := json.Marshal(category.Type)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// QuestionsResponse is one page of the question listing
type QuestionsResponse struct {
	Success         bool               `json:"success"`
	Questions       []*domain.Question `json:"questions"`
	TotalQuestions  int                `json:"total_questions"`
	Categories      []string           `json:"categories"`
	CurrentCategory string             `json:"current_category"`
}

// DeleteQuestionResponse confirms a deletion
type DeleteQuestionResponse struct {
	Success bool `json:"success"`
	ID      int  `json:"id"`
}

// CreateQuestionRequest represents the request to create a question
type CreateQuestionRequest struct {
	Question   string `json:"question" validate:"required"`
	Answer     string `json:"answer" validate:"required"`
	Difficulty int    `json:"difficulty"`
	Category   int    `json:"category"`
}

// CreateQuestionResponse carries the ID of a new question
type CreateQuestionResponse struct {
	Success    bool `json:"success"`
	QuestionID int  `json:"question_id"`
}

// SearchRequest represents a question search
type SearchRequest struct {
	SearchTerm string `json:"searchTerm"`
}

// SearchResponse lists the questions matching a search
type SearchResponse struct {
	Success         bool               `json:"success"`
	Questions       []*domain.Question `json:"questions"`
	TotalQuestions  int                `json:"total_questions"`
	CurrentCategory *domain.Category   `json:"current_category"`
}

// CategoryQuestionsResponse lists the questions of one category
type CategoryQuestionsResponse struct {
	Success         bool               `json:"success"`
	Questions       []*domain.Question `json:"questions"`
	TotalQuestions  int                `json:"total_questions"`
	CurrentCategory string             `json:"current_category"`
}

// QuizRequest asks for the next quiz question
type QuizRequest struct {
	PreviousQuestions []int         `json:"previous_questions"`
	QuizCategory      *QuizCategory `json:"quiz_category"`
}

// QuizCategory selects the quiz category; ID 0 means every category
type QuizCategory struct {
	ID   CategoryID `json:"id"`
	Type string     `json:"type,omitempty"`
}

// CategoryID accepts a JSON number or a numeric string
type CategoryID int

// UnmarshalJSON implements json.Unmarshaler
func (id *CategoryID) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" {
		*id = 0
		return nil
	}
	n, err := strconv.Atoi(strings.Trim(s, `"`))
	if err != nil {
		return fmt.Errorf("invalid category id %s", s)
	}
	*id = CategoryID(n)
	return nil
}

// QuizResponse carries the next quiz question, or null when the quiz is over
type QuizResponse struct {
	Success  bool             `json:"success"`
	Question *domain.Question `json:"question"`
}

// HealthResponse reports liveness
type HealthResponse struct {
	Status string `json:"status"`
}
