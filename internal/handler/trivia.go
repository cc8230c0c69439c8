package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/zizouhuweidi/trivia/internal/domain"
	"github.com/zizouhuweidi/trivia/internal/service"
)

// TriviaHandler handles the trivia HTTP requests
type TriviaHandler struct {
	triviaService *service.TriviaService
}

// NewTriviaHandler creates a new trivia handler
func NewTriviaHandler(triviaService *service.TriviaService) *TriviaHandler {
	return &TriviaHandler{
		triviaService: triviaService,
	}
}

// Register mounts the trivia routes on g
func (h *TriviaHandler) Register(g *echo.Group) {
	g.GET("/categories", h.GetCategories)
	g.GET("/categories/:category_id/questions", h.GetCategoryQuestions)
	g.GET("/questions", h.GetQuestions)
	g.POST("/questions", h.CreateQuestion)
	g.DELETE("/questions/:question_id", h.DeleteQuestion)
	g.POST("/questions/search", h.SearchQuestions)
	g.POST("/quizzes", h.PlayQuiz)
}

// GetCategories godoc
// @Summary List categories
// @Description Get every category as a map from ID to type
// @Tags categories
// @Produce json
// @Success 200 {object} CategoriesResponse
// @Failure 500 {object} ErrorResponse
// @Router /categories [get]
func (h *TriviaHandler) GetCategories(c echo.Context) error {
	categories, err := h.triviaService.Categories(c.Request().Context())
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, CategoriesResponse{
		Success:    true,
		Categories: categories,
	})
}

// GetQuestions godoc
// @Summary List questions
// @Description Get one page of ten questions ordered by ID
// @Tags questions
// @Produce json
// @Param page query int false "Page number" default(1)
// @Success 200 {object} QuestionsResponse
// @Failure 404 {object} ErrorResponse
// @Router /questions [get]
func (h *TriviaHandler) GetQuestions(c echo.Context) error {
	page, err := strconv.Atoi(c.QueryParam("page"))
	if err != nil {
		page = 1
	}

	result, err := h.triviaService.QuestionPage(c.Request().Context(), page)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, QuestionsResponse{
		Success:         true,
		Questions:       result.Questions,
		TotalQuestions:  result.Total,
		Categories:      result.Categories,
		CurrentCategory: result.CurrentCategory,
	})
}

// DeleteQuestion godoc
// @Summary Delete a question
// @Tags questions
// @Produce json
// @Param question_id path int true "Question ID"
// @Success 200 {object} DeleteQuestionResponse
// @Failure 404 {object} ErrorResponse
// @Router /questions/{question_id} [delete]
func (h *TriviaHandler) DeleteQuestion(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("question_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound).SetInternal(err)
	}

	if err := h.triviaService.DeleteQuestion(c.Request().Context(), id); err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, DeleteQuestionResponse{
		Success: true,
		ID:      id,
	})
}

// CreateQuestion godoc
// @Summary Create a question
// @Description Create a question with its answer, difficulty and category
// @Tags questions
// @Accept json
// @Produce json
// @Param question body CreateQuestionRequest true "Question data"
// @Success 200 {object} CreateQuestionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /questions [post]
func (h *TriviaHandler) CreateQuestion(c echo.Context) error {
	var req CreateQuestionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest).SetInternal(err)
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest).SetInternal(err)
	}

	question := &domain.Question{
		Text:       req.Question,
		Answer:     req.Answer,
		Difficulty: req.Difficulty,
		Category:   req.Category,
	}
	if err := h.triviaService.CreateQuestion(c.Request().Context(), question); err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, CreateQuestionResponse{
		Success:    true,
		QuestionID: question.ID,
	})
}

// SearchQuestions godoc
// @Summary Search questions
// @Description Find questions whose text contains the term, ignoring case
// @Tags questions
// @Accept json
// @Produce json
// @Param search body SearchRequest true "Search term"
// @Success 200 {object} SearchResponse
// @Router /questions/search [post]
func (h *TriviaHandler) SearchQuestions(c echo.Context) error {
	var req SearchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest).SetInternal(err)
	}

	result, err := h.triviaService.SearchQuestions(c.Request().Context(), req.SearchTerm)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, SearchResponse{
		Success:         true,
		Questions:       result.Questions,
		TotalQuestions:  len(result.Questions),
		CurrentCategory: result.CurrentCategory,
	})
}

// GetCategoryQuestions godoc
// @Summary List questions of a category
// @Tags categories
// @Produce json
// @Param category_id path int true "Category ID"
// @Success 200 {object} CategoryQuestionsResponse
// @Failure 404 {object} ErrorResponse
// @Router /categories/{category_id}/questions [get]
func (h *TriviaHandler) GetCategoryQuestions(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("category_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound).SetInternal(err)
	}

	result, err := h.triviaService.QuestionsByCategory(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, CategoryQuestionsResponse{
		Success:         true,
		Questions:       result.Questions,
		TotalQuestions:  len(result.Questions),
		CurrentCategory: result.Category.Type,
	})
}

// PlayQuiz godoc
// @Summary Next quiz question
// @Description Get a random question not asked yet, or null when the quiz is over
// @Tags quizzes
// @Accept json
// @Produce json
// @Param quiz body QuizRequest true "Asked questions and quiz category"
// @Success 200 {object} QuizResponse
// @Failure 400 {object} ErrorResponse
// @Router /quizzes [post]
func (h *TriviaHandler) PlayQuiz(c echo.Context) error {
	var req QuizRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest).SetInternal(err)
	}

	categoryID := service.AllCategories
	if req.QuizCategory != nil {
		categoryID = int(req.QuizCategory.ID)
	}

	question, err := h.triviaService.NextQuizQuestion(c.Request().Context(), req.PreviousQuestions, categoryID)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, QuizResponse{
		Success:  true,
		Question: question,
	})
}

// Health godoc
// @Summary Health check
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func Health(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}
