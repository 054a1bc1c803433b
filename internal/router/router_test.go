package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ramgerassy/ace-ai-sub001/internal/config"
	"github.com/ramgerassy/ace-ai-sub001/internal/generator/generatortest"
	"github.com/ramgerassy/ace-ai-sub001/internal/handler"
	"github.com/ramgerassy/ace-ai-sub001/internal/middleware"
	"github.com/ramgerassy/ace-ai-sub001/internal/model"
	"github.com/ramgerassy/ace-ai-sub001/internal/scoring"
	"github.com/ramgerassy/ace-ai-sub001/internal/service"
	"github.com/ramgerassy/ace-ai-sub001/internal/validator"
	"github.com/rs/zerolog"
)

func init() {
	gin.SetMode(gin.TestMode)
	validator.Setup()
}

type allow struct{}

func (allow) Allow(context.Context, string) (bool, error) { return true, nil }

func testConfig() *config.Config {
	limit := config.RateLimit{Requests: 100, Window: time.Minute}
	return &config.Config{
		GinMode:           gin.TestMode,
		ServiceName:       "ace-ai-quiz",
		ServiceVersion:    "test",
		GlobalRateLimit:   limit,
		SubjectRateLimit:  limit,
		GenerateRateLimit: limit,
		ReviewRateLimit:   limit,
	}
}

func newTestRouter(gen *generatortest.Fake, limiters *Limiters) *gin.Engine {
	cfg := testConfig()
	if limiters == nil {
		limiters = &Limiters{Global: allow{}, SubjectVerification: allow{}, QuizGeneration: allow{}, QuizReview: allow{}}
	}
	svc := service.NewQuizService(gen, scoring.ExplainIncorrect, nil, time.Second, zerolog.Nop())
	return SetupRouter(&Handlers{
		Quiz:   handler.NewQuizHandler(svc),
		System: handler.NewSystemHandler(cfg, nil, false),
	}, limiters, cfg, zerolog.Nop())
}

func do(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if s, ok := body.(string); ok {
		buf.WriteString(s)
	} else if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return out
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	body := decode(t, w)
	if body["success"] != false {
		t.Errorf("success = %v, want false", body["success"])
	}
	e, _ := body["error"].(map[string]interface{})
	code, _ := e["code"].(string)
	return code
}

func reviewBody(user []int, n int) map[string]interface{} {
	answers := make([]map[string]interface{}, 0, n)
	for i := 1; i <= n; i++ {
		answers = append(answers, map[string]interface{}{
			"questionNum":     (i-1)%10 + 1,
			"question":        "What is the sample answer here?",
			"possibleAnswers": []string{"A", "B", "C", "D"},
			"correctAnswer":   []int{0},
			"userAnswer":      user,
		})
	}
	return map[string]interface{}{"userAnswers": answers}
}

func TestScenarioAGenerateQuiz(t *testing.T) {
	gen := generatortest.New()
	w := do(newTestRouter(gen, nil), http.MethodPost, "/api/generate-quiz", map[string]interface{}{
		"subject": "Mathematics", "subSubjects": []string{"Algebra", "Geometry"}, "level": "hard",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}

	body := decode(t, w)
	if body["success"] != true || len(body["questions"].([]interface{})) != 10 {
		t.Errorf("body = %v", body)
	}
	meta := body["metadata"].(map[string]interface{})
	if meta["level"] != "hard" || meta["subject"] != "Mathematics" || meta["generatedAt"] == "" {
		t.Errorf("metadata = %v", meta)
	}
	if got := gen.LastGenerate.SubSubjects; len(got) != 2 {
		t.Errorf("collaborator got subSubjects %v", got)
	}
}

func TestGenerateQuizDefaultsSubSubjects(t *testing.T) {
	w := do(newTestRouter(generatortest.New(), nil), http.MethodPost, "/api/generate-quiz", map[string]interface{}{
		"subject": "  Physics ", "level": "easy",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	meta := decode(t, w)["metadata"].(map[string]interface{})
	if subs, ok := meta["subSubjects"].([]interface{}); !ok || len(subs) != 0 {
		t.Errorf("subSubjects = %v, want []", meta["subSubjects"])
	}
	if meta["subject"] != "Physics" {
		t.Errorf("subject = %q, want trimmed", meta["subject"])
	}
}

func TestGenerateQuizValidationIsExhaustive(t *testing.T) {
	subs := make([]string, 11)
	for i := range subs {
		subs[i] = "Topic"
	}
	w := do(newTestRouter(generatortest.New(), nil), http.MethodPost, "/api/generate-quiz", map[string]interface{}{
		"subject": "M", "subSubjects": subs, "level": "expert",
	})
	if w.Code != http.StatusBadRequest || errorCode(t, w) != "VALIDATION_ERROR" {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}

	details := decode(t, w)["error"].(map[string]interface{})["details"].([]interface{})
	fields := map[string]bool{}
	for _, d := range details {
		fields[d.(map[string]interface{})["field"].(string)] = true
	}
	for _, f := range []string{"subject", "subSubjects", "level"} {
		if !fields[f] {
			t.Errorf("missing violation for %s in %v", f, details)
		}
	}
}

func TestGenerateQuizMalformedCollaboratorOutput(t *testing.T) {
	gen := generatortest.New()
	gen.Questions = generatortest.Questions(9)

	w := do(newTestRouter(gen, nil), http.MethodPost, "/api/generate-quiz", map[string]interface{}{
		"subject": "Mathematics", "level": "easy",
	})
	if w.Code != http.StatusBadGateway || errorCode(t, w) != "CONTENT_GENERATION_ERROR" {
		t.Errorf("status = %d body = %s", w.Code, w.Body.String())
	}
}

func TestScenarioBAllCorrect(t *testing.T) {
	w := do(newTestRouter(generatortest.New(), nil), http.MethodPost, "/api/review-quiz", reviewBody([]int{0}, 10))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}

	body := decode(t, w)
	if body["score"] != float64(100) || body["correctAnswers"] != float64(10) || body["totalQuestions"] != float64(10) {
		t.Errorf("body = %v", body)
	}
	reviews := body["questionReviews"].([]interface{})
	for i, r := range reviews {
		if r.(map[string]interface{})["questionNum"] != float64(i+1) {
			t.Errorf("review %d out of order: %v", i, r)
		}
	}
}

func TestScenarioCAllWrong(t *testing.T) {
	w := do(newTestRouter(generatortest.New(), nil), http.MethodPost, "/api/review-quiz", reviewBody([]int{1}, 10))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}
	body := decode(t, w)
	if body["score"] != float64(0) || body["correctAnswers"] != float64(0) {
		t.Errorf("body = %v", body)
	}
	first := body["questionReviews"].([]interface{})[0].(map[string]interface{})
	if first["isCorrect"] != false || first["explanation"] == nil {
		t.Errorf("first review = %v", first)
	}
}

func TestReviewRejectsWrongAnswerCount(t *testing.T) {
	for _, n := range []int{9, 11} {
		gen := generatortest.New()
		w := do(newTestRouter(gen, nil), http.MethodPost, "/api/review-quiz", reviewBody([]int{0}, n))
		if w.Code != http.StatusBadRequest || errorCode(t, w) != "VALIDATION_ERROR" {
			t.Errorf("n=%d: status = %d body = %s", n, w.Code, w.Body.String())
		}
		if gen.CallCount("Reflect") != 0 {
			t.Errorf("n=%d: collaborator must not be called for rejected input", n)
		}
	}
}

func TestReviewRejectsRepeatedQuestionNum(t *testing.T) {
	body := reviewBody([]int{0}, 10)
	answers := body["userAnswers"].([]map[string]interface{})
	answers[9]["questionNum"] = 1

	w := do(newTestRouter(generatortest.New(), nil), http.MethodPost, "/api/review-quiz", body)
	if w.Code != http.StatusBadRequest || errorCode(t, w) != "VALIDATION_ERROR" {
		t.Errorf("status = %d body = %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "unique_question_num") {
		t.Errorf("expected unique_question_num violation: %s", w.Body.String())
	}
}

func TestMalformedJSON(t *testing.T) {
	w := do(newTestRouter(generatortest.New(), nil), http.MethodPost, "/api/review-quiz", `{"userAnswers": [`)
	if w.Code != http.StatusBadRequest || errorCode(t, w) != "VALIDATION_ERROR" {
		t.Errorf("status = %d body = %s", w.Code, w.Body.String())
	}
}

func TestScenarioDInvalidSubject(t *testing.T) {
	w := do(newTestRouter(generatortest.New(), nil), http.MethodPost, "/api/verify-subject", map[string]string{"subject": "Astrolgy"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}

	body := decode(t, w)
	if body["success"] != true || body["valid"] != false {
		t.Errorf("body = %v", body)
	}
	if s := body["suggestions"].([]interface{}); len(s) != 5 {
		t.Errorf("suggestions = %v", s)
	}
	if _, ok := body["subject"]; ok {
		t.Error("invalid branch must not carry subject")
	}
}

func TestVerifySubjectValid(t *testing.T) {
	w := do(newTestRouter(generatortest.New(), nil), http.MethodPost, "/api/verify-subject", map[string]string{"subject": "Mathematics"})
	body := decode(t, w)
	if body["valid"] != true || body["subject"] != "Mathematics" {
		t.Errorf("body = %v", body)
	}
	if _, ok := body["suggestions"]; ok {
		t.Error("valid branch must not carry suggestions")
	}
}

func TestVerifySubjectRejectsCharset(t *testing.T) {
	w := do(newTestRouter(generatortest.New(), nil), http.MethodPost, "/api/verify-subject", map[string]string{"subject": "Math<script>"})
	if w.Code != http.StatusBadRequest || errorCode(t, w) != "VALIDATION_ERROR" {
		t.Errorf("status = %d body = %s", w.Code, w.Body.String())
	}
}

func TestVerifySubSubject(t *testing.T) {
	r := newTestRouter(generatortest.New(), nil)

	w := do(r, http.MethodPost, "/api/verify-sub-subject", map[string]string{"subject": "Mathematics", "subSubject": "Algebra"})
	body := decode(t, w)
	if body["valid"] != true || body["subSubject"] != "Algebra" {
		t.Errorf("valid body = %v", body)
	}

	w = do(r, http.MethodPost, "/api/verify-sub-subject", map[string]string{"subject": "Mathematics", "subSubject": "Poetry: Odes"})
	body = decode(t, w)
	if body["valid"] != false || len(body["suggestions"].([]interface{})) > 5 {
		t.Errorf("invalid body = %v", body)
	}
}

func TestCollaboratorFailure(t *testing.T) {
	gen := generatortest.New()
	gen.Err = context.Canceled
	w := do(newTestRouter(gen, nil), http.MethodPost, "/api/verify-subject", map[string]string{"subject": "Mathematics"})
	if w.Code != http.StatusBadGateway || errorCode(t, w) != "CONTENT_GENERATION_ERROR" {
		t.Errorf("status = %d body = %s", w.Code, w.Body.String())
	}
}

func TestRateLimitedRoute(t *testing.T) {
	limiters := &Limiters{
		Global:              allow{},
		SubjectVerification: allow{},
		QuizGeneration:      middleware.NewMemoryLimiter(1, time.Hour),
		QuizReview:          allow{},
	}
	r := newTestRouter(generatortest.New(), limiters)
	body := map[string]interface{}{"subject": "Mathematics", "level": "easy"}

	if w := do(r, http.MethodPost, "/api/generate-quiz", body); w.Code != http.StatusOK {
		t.Fatalf("first request status = %d", w.Code)
	}
	w := do(r, http.MethodPost, "/api/generate-quiz", body)
	if w.Code != http.StatusTooManyRequests || errorCode(t, w) != "RATE_LIMIT_EXCEEDED" {
		t.Errorf("status = %d body = %s", w.Code, w.Body.String())
	}

	// Other routes keep their own budget.
	if w := do(r, http.MethodPost, "/api/verify-subject", map[string]string{"subject": "Physics"}); w.Code != http.StatusOK {
		t.Errorf("verify-subject status = %d", w.Code)
	}
}

func TestNotFoundAndMethodNotAllowed(t *testing.T) {
	r := newTestRouter(generatortest.New(), nil)

	w := do(r, http.MethodGet, "/api/nope", nil)
	if w.Code != http.StatusNotFound || errorCode(t, w) != "NOT_FOUND" {
		t.Errorf("404: status = %d body = %s", w.Code, w.Body.String())
	}

	w = do(r, http.MethodGet, "/api/generate-quiz", nil)
	if w.Code != http.StatusMethodNotAllowed || errorCode(t, w) != "METHOD_NOT_ALLOWED" {
		t.Errorf("405: status = %d body = %s", w.Code, w.Body.String())
	}
}

func TestHealthEndpoints(t *testing.T) {
	r := newTestRouter(generatortest.New(), nil)

	w := do(r, http.MethodGet, "/api/health", nil)
	body := decode(t, w)
	if w.Code != http.StatusOK || body["service"] != "ace-ai-quiz" || len(body["endpoints"].([]interface{})) == 0 {
		t.Errorf("api health = %v", body)
	}

	w = do(r, http.MethodGet, "/health", nil)
	body = decode(t, w)
	if body["status"] != "ok" || body["memory"] == nil {
		t.Errorf("process health = %v", body)
	}
	deps := body["dependencies"].(map[string]interface{})
	if deps["redis"] != "disabled" {
		t.Errorf("dependencies = %v", deps)
	}
	if w.Header().Get("X-Request-ID") == "" || w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("global middleware headers missing")
	}
}

func TestLevelEnumAccepted(t *testing.T) {
	r := newTestRouter(generatortest.New(), nil)
	for _, level := range []model.DifficultyLevel{model.LevelEasy, model.LevelIntermediate, model.LevelHard} {
		w := do(r, http.MethodPost, "/api/generate-quiz", map[string]interface{}{"subject": "History", "level": level})
		if w.Code != http.StatusOK {
			t.Errorf("level %s: status = %d", level, w.Code)
		}
	}
}
