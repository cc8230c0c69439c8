package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/zizouhuweidi/trivia/internal/database"
	"github.com/zizouhuweidi/trivia/internal/logging"
	"github.com/zizouhuweidi/trivia/internal/repository"
	"github.com/zizouhuweidi/trivia/internal/service"
	"github.com/zizouhuweidi/trivia/internal/validation"
)

func setupEcho(t *testing.T) (*echo.Echo, *repository.Store) {
	t.Helper()
	ctx := context.Background()

	db, err := database.OpenSQLite(":memory:", 1)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	store := repository.NewSQLiteStore(db, logging.Discard())
	t.Cleanup(store.Close)

	if _, err := store.Migrator.Up(ctx); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	if _, err := database.Seed(ctx, store.Categories, store.Questions, logging.Discard()); err != nil {
		t.Fatalf("failed to seed: %v", err)
	}

	e := echo.New()
	e.HTTPErrorHandler = HTTPErrorHandler(logging.Discard())
	e.Validator = validation.NewRequestValidator()
	NewTriviaHandler(service.NewTriviaService(store.Categories, store.Questions)).Register(e.Group("/api"))

	return e, store
}

func do(t *testing.T, e *echo.Echo, method, target, body string) (int, map[string]any) {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var data map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &data); err != nil {
		t.Fatalf("response is not a JSON object: %v: %s", err, rec.Body.String())
	}
	return rec.Code, data
}

func assertError(t *testing.T, code int, data map[string]any, want int, message string) {
	t.Helper()
	if code != want {
		t.Fatalf("expected status %d, got %d", want, code)
	}
	if data["success"] != false {
		t.Errorf("expected success=false, got %v", data["success"])
	}
	if data["error"] != float64(want) {
		t.Errorf("expected error=%d, got %v", want, data["error"])
	}
	if data["message"] != message {
		t.Errorf("expected message %q, got %v", message, data["message"])
	}
}

func TestGetCategories(t *testing.T) {
	e, _ := setupEcho(t)

	req := httptest.NewRequest(http.MethodGet, "/api/categories", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	want := `{"success":true,"categories":{"1":"Science","2":"Art","3":"Geography","4":"History","5":"Entertainment","6":"Sports"}}`
	if got := strings.TrimSpace(rec.Body.String()); got != want {
		t.Errorf("unexpected body:\n got %s\nwant %s", got, want)
	}
}

func TestGetQuestions(t *testing.T) {
	e, _ := setupEcho(t)

	t.Run("FirstPage", func(t *testing.T) {
		code, data := do(t, e, http.MethodGet, "/api/questions", "")
		if code != http.StatusOK {
			t.Fatalf("expected 200, got %d", code)
		}
		if data["success"] != true {
			t.Error("expected success")
		}
		if n := len(data["questions"].([]any)); n != 10 {
			t.Errorf("expected 10 questions, got %d", n)
		}
		if data["total_questions"] != float64(19) {
			t.Errorf("expected 19 total questions, got %v", data["total_questions"])
		}
		if n := len(data["categories"].([]any)); n != 6 {
			t.Errorf("expected 6 categories, got %d", n)
		}
		if data["current_category"] != "History" {
			t.Errorf("expected current category History, got %v", data["current_category"])
		}
	})

	t.Run("SecondPage", func(t *testing.T) {
		code, data := do(t, e, http.MethodGet, "/api/questions?page=2", "")
		if code != http.StatusOK {
			t.Fatalf("expected 200, got %d", code)
		}
		if n := len(data["questions"].([]any)); n != 9 {
			t.Errorf("expected 9 questions, got %d", n)
		}
		if data["current_category"] != "Geography" {
			t.Errorf("expected current category Geography, got %v", data["current_category"])
		}
	})

	t.Run("InvalidPageFallsBack", func(t *testing.T) {
		code, data := do(t, e, http.MethodGet, "/api/questions?page=abc", "")
		if code != http.StatusOK {
			t.Fatalf("expected 200, got %d", code)
		}
		first := data["questions"].([]any)[0].(map[string]any)
		if first["id"] != float64(1) {
			t.Errorf("expected the first page, got question %v", first["id"])
		}
	})

	for _, page := range []string{"1000", "0", "-1"} {
		t.Run("OutOfRange"+page, func(t *testing.T) {
			code, data := do(t, e, http.MethodGet, "/api/questions?page="+page, "")
			assertError(t, code, data, http.StatusNotFound, "Resource not found!")
		})
	}
}

func TestDeleteQuestion(t *testing.T) {
	e, store := setupEcho(t)

	code, data := do(t, e, http.MethodDelete, "/api/questions/5", "")
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if data["success"] != true || data["id"] != float64(5) {
		t.Errorf("unexpected body: %v", data)
	}

	count, err := store.Questions.Count(context.Background())
	if err != nil {
		t.Fatalf("failed to count: %v", err)
	}
	if count != 18 {
		t.Errorf("expected 18 questions left, got %d", count)
	}

	for _, path := range []string{"/api/questions/5", "/api/questions/1000", "/api/questions/abc"} {
		code, data := do(t, e, http.MethodDelete, path, "")
		assertError(t, code, data, http.StatusNotFound, "Resource not found!")
	}
}

func TestCreateQuestion(t *testing.T) {
	e, store := setupEcho(t)

	t.Run("Created", func(t *testing.T) {
		body := `{"question":"Is this a question?","answer":"Yes","difficulty":2,"category":1}`
		code, data := do(t, e, http.MethodPost, "/api/questions", body)
		if code != http.StatusOK {
			t.Fatalf("expected 200, got %d", code)
		}
		id, ok := data["question_id"].(float64)
		if !ok || id <= 19 {
			t.Fatalf("expected a fresh question id, got %v", data["question_id"])
		}

		question, err := store.Questions.GetByID(context.Background(), int(id))
		if err != nil {
			t.Fatalf("created question not stored: %v", err)
		}
		if question.Text != "Is this a question?" || question.Category != 1 {
			t.Errorf("unexpected question: %+v", question)
		}
	})

	tests := []struct {
		name    string
		body    string
		code    int
		message string
	}{
		{"EmptyQuestion", `{"question":"","answer":"Yes","difficulty":2,"category":1}`, http.StatusBadRequest, "Bad request!"},
		{"MissingAnswer", `{"question":"Why?","difficulty":2,"category":1}`, http.StatusBadRequest, "Bad request!"},
		{"MalformedJSON", `{"question":`, http.StatusBadRequest, "Bad request!"},
		{"UnknownCategory", `{"question":"Why?","answer":"Because","difficulty":2,"category":1000}`, http.StatusUnprocessableEntity, "Unprocessable!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, data := do(t, e, http.MethodPost, "/api/questions", tt.body)
			assertError(t, code, data, tt.code, tt.message)
		})
	}
}

func TestSearchQuestions(t *testing.T) {
	e, _ := setupEcho(t)

	t.Run("Match", func(t *testing.T) {
		code, data := do(t, e, http.MethodPost, "/api/questions/search", `{"searchTerm":"TITLE"}`)
		if code != http.StatusOK {
			t.Fatalf("expected 200, got %d", code)
		}
		questions := data["questions"].([]any)
		if len(questions) != 2 || data["total_questions"] != float64(2) {
			t.Errorf("expected 2 matches, got %d (total %v)", len(questions), data["total_questions"])
		}
		current := data["current_category"].(map[string]any)
		if current["id"] != float64(1) || current["type"] != "Science" {
			t.Errorf("unexpected current category: %v", current)
		}
	})

	t.Run("NoMatch", func(t *testing.T) {
		code, data := do(t, e, http.MethodPost, "/api/questions/search", `{"searchTerm":"applejacks"}`)
		if code != http.StatusOK {
			t.Fatalf("expected 200, got %d", code)
		}
		if n := len(data["questions"].([]any)); n != 0 {
			t.Errorf("expected no matches, got %d", n)
		}
		if data["total_questions"] != float64(0) {
			t.Errorf("expected total 0, got %v", data["total_questions"])
		}
	})
}

func TestGetCategoryQuestions(t *testing.T) {
	e, _ := setupEcho(t)

	code, data := do(t, e, http.MethodGet, "/api/categories/1/questions", "")
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	questions := data["questions"].([]any)
	if len(questions) != 3 || data["total_questions"] != float64(3) {
		t.Errorf("expected 3 science questions, got %d", len(questions))
	}
	for _, q := range questions {
		if q.(map[string]any)["category"] != float64(1) {
			t.Errorf("question from another category: %v", q)
		}
	}
	if data["current_category"] != "Science" {
		t.Errorf("expected current category Science, got %v", data["current_category"])
	}

	for _, path := range []string{"/api/categories/1000/questions", "/api/categories/abc/questions"} {
		code, data := do(t, e, http.MethodGet, path, "")
		assertError(t, code, data, http.StatusNotFound, "Resource not found!")
	}
}

func TestPlayQuiz(t *testing.T) {
	e, _ := setupEcho(t)

	t.Run("Category", func(t *testing.T) {
		code, data := do(t, e, http.MethodPost, "/api/quizzes", `{"previous_questions":[16,17],"quiz_category":{"type":"Science","id":"1"}}`)
		if code != http.StatusOK {
			t.Fatalf("expected 200, got %d", code)
		}
		question := data["question"].(map[string]any)
		if question["id"] != float64(18) {
			t.Errorf("expected the only unseen science question 18, got %v", question["id"])
		}
	})

	t.Run("Exhausted", func(t *testing.T) {
		code, data := do(t, e, http.MethodPost, "/api/quizzes", `{"previous_questions":[16,17,18],"quiz_category":{"id":1}}`)
		if code != http.StatusOK {
			t.Fatalf("expected 200, got %d", code)
		}
		if data["success"] != true {
			t.Error("expected success")
		}
		if q, ok := data["question"]; !ok || q != nil {
			t.Errorf("expected null question, got %v", q)
		}
	})

	t.Run("AllCategories", func(t *testing.T) {
		code, data := do(t, e, http.MethodPost, "/api/quizzes", `{"previous_questions":[],"quiz_category":{"type":"click","id":0}}`)
		if code != http.StatusOK {
			t.Fatalf("expected 200, got %d", code)
		}
		if data["question"] == nil {
			t.Error("expected a question")
		}
	})

	t.Run("EmptyBody", func(t *testing.T) {
		code, data := do(t, e, http.MethodPost, "/api/quizzes", "")
		if code != http.StatusOK {
			t.Fatalf("expected 200, got %d", code)
		}
		if data["question"] == nil {
			t.Error("expected a question")
		}
	})

	t.Run("InvalidCategoryID", func(t *testing.T) {
		code, data := do(t, e, http.MethodPost, "/api/quizzes", `{"quiz_category":{"id":"science"}}`)
		assertError(t, code, data, http.StatusBadRequest, "Bad request!")
	})
}

func TestReadsAreRepeatable(t *testing.T) {
	e, _ := setupEcho(t)

	tests := []struct {
		name   string
		method string
		target string
		body   string
	}{
		{"Categories", http.MethodGet, "/api/categories", ""},
		{"FirstPage", http.MethodGet, "/api/questions", ""},
		{"SecondPage", http.MethodGet, "/api/questions?page=2", ""},
		{"Search", http.MethodPost, "/api/questions/search", `{"searchTerm":"who"}`},
		{"CategoryQuestions", http.MethodGet, "/api/categories/4/questions", ""},
	}

	serve := func(method, target, body string) (int, string) {
		req := httptest.NewRequest(method, target, strings.NewReader(body))
		if body != "" {
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		}
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec.Code, rec.Body.String()
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			firstCode, first := serve(tt.method, tt.target, tt.body)
			secondCode, second := serve(tt.method, tt.target, tt.body)

			if firstCode != http.StatusOK || secondCode != http.StatusOK {
				t.Fatalf("expected 200 twice, got %d and %d", firstCode, secondCode)
			}
			if first != second {
				t.Errorf("responses differ:\n first %s\nsecond %s", first, second)
			}
		})
	}
}

func TestHTTPErrorHandler(t *testing.T) {
	e, _ := setupEcho(t)

	code, data := do(t, e, http.MethodGet, "/api/nothing-here", "")
	assertError(t, code, data, http.StatusNotFound, "Resource not found!")

	code, data = do(t, e, http.MethodPut, "/api/categories", "")
	assertError(t, code, data, http.StatusMethodNotAllowed, "Method not allowed!")

	e.GET("/boom", func(c echo.Context) error {
		return httpError(service.ErrInternal)
	})
	code, data = do(t, e, http.MethodGet, "/boom", "")
	assertError(t, code, data, http.StatusInternalServerError, "Internal Server Error!")
}

func TestCategoriesStorageFailure(t *testing.T) {
	e, store := setupEcho(t)
	store.Close()

	code, data := do(t, e, http.MethodGet, "/api/categories", "")
	assertError(t, code, data, http.StatusInternalServerError, "Internal Server Error!")
}

func TestCategoryIDUnmarshal(t *testing.T) {
	tests := []struct {
		in      string
		want    CategoryID
		wantErr bool
	}{
		{`3`, 3, false},
		{`"3"`, 3, false},
		{`null`, 0, false},
		{`"x"`, 0, true},
		{`1.5`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var id CategoryID
			err := json.Unmarshal([]byte(tt.in), &id)
			if (err != nil) != tt.wantErr {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tt.wantErr && id != tt.want {
				t.Errorf("expected %d, got %d", tt.want, id)
			}
		})
	}
}
