package response

import (
	"encoding/json"

	"github.com/gin-gonic/gin"
	"github.com/ramgerassy/ace-ai-sub001/internal/model"
)

// ErrorResponse is the uniform failure envelope for every endpoint.
type ErrorResponse struct {
	Success bool      `json:"success"`
	Error   ErrorBody `json:"error"`
}

// ErrorBody represents a structured error response.
type ErrorBody struct {
	Code    ErrCode     `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// ────────────────────────────────────────────────────────────────────────────
// Subject verification variants
// ────────────────────────────────────────────────────────────────────────────

// SubjectVerification is either ValidSubject or InvalidSubject.
type SubjectVerification interface {
	subjectVerification()
}

// ValidSubject confirms a recognised subject.
type ValidSubject struct {
	Subject string
	Message string
}

// InvalidSubject rejects a subject and offers alternatives.
type InvalidSubject struct {
	Suggestions []string
	Message     string
}

func (ValidSubject) subjectVerification()   {}
func (InvalidSubject) subjectVerification() {}

func (v ValidSubject) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Success bool   `json:"success"`
		Valid   bool   `json:"valid"`
		Subject string `json:"subject"`
		Message string `json:"message"`
	}{true, true, v.Subject, v.Message})
}

func (v InvalidSubject) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Success     bool     `json:"success"`
		Valid       bool     `json:"valid"`
		Suggestions []string `json:"suggestions"`
		Message     string   `json:"message"`
	}{true, false, nonNil(v.Suggestions), v.Message})
}

// NewSubjectVerification selects the variant from the verdict alone.
func NewSubjectVerification(v model.SubjectVerdict) SubjectVerification {
	if v.Valid {
		return ValidSubject{Subject: v.Subject, Message: v.Message}
	}
	return InvalidSubject{Suggestions: v.Suggestions, Message: v.Message}
}

// ────────────────────────────────────────────────────────────────────────────
// Sub-subject verification variants
// ────────────────────────────────────────────────────────────────────────────

// SubSubjectVerification is either ValidSubSubject or InvalidSubSubject.
type SubSubjectVerification interface {
	subSubjectVerification()
}

type ValidSubSubject struct {
	Subject    string
	SubSubject string
	Message    string
}

type InvalidSubSubject struct {
	Suggestions []string
	Message     string
}

func (ValidSubSubject) subSubjectVerification()   {}
func (InvalidSubSubject) subSubjectVerification() {}

func (v ValidSubSubject) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Success    bool   `json:"success"`
		Valid      bool   `json:"valid"`
		Subject    string `json:"subject"`
		SubSubject string `json:"subSubject"`
		Message    string `json:"message"`
	}{true, true, v.Subject, v.SubSubject, v.Message})
}

func (v InvalidSubSubject) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Success     bool     `json:"success"`
		Valid       bool     `json:"valid"`
		Suggestions []string `json:"suggestions"`
		Message     string   `json:"message"`
	}{true, false, nonNil(v.Suggestions), v.Message})
}

// NewSubSubjectVerification selects the variant from the verdict alone.
func NewSubSubjectVerification(v model.SubSubjectVerdict) SubSubjectVerification {
	if v.Valid {
		return ValidSubSubject{Subject: v.Subject, SubSubject: v.SubSubject, Message: v.Message}
	}
	return InvalidSubSubject{Suggestions: v.Suggestions, Message: v.Message}
}

// ────────────────────────────────────────────────────────────────────────────
// Quiz envelopes
// ────────────────────────────────────────────────────────────────────────────

// QuizGenerated is the success envelope of quiz generation.
type QuizGenerated struct {
	Success   bool               `json:"success"`
	Questions []model.Question   `json:"questions"`
	Metadata  model.QuizMetadata `json:"metadata"`
}

func NewQuizGenerated(q model.GeneratedQuiz) QuizGenerated {
	meta := q.Metadata
	meta.SubSubjects = nonNil(meta.SubSubjects)
	return QuizGenerated{Success: true, Questions: q.Questions, Metadata: meta}
}

// QuizReviewed is the success envelope of quiz review.
type QuizReviewed struct {
	Success         bool                   `json:"success"`
	Score           int                    `json:"score"`
	CorrectAnswers  int                    `json:"correctAnswers"`
	TotalQuestions  int                    `json:"totalQuestions"`
	Reflection      string                 `json:"reflection"`
	QuestionReviews []model.QuestionReview `json:"questionReviews"`
}

func NewQuizReviewed(r model.ReviewResult) QuizReviewed {
	return QuizReviewed{
		Success:         true,
		Score:           r.Score,
		CorrectAnswers:  r.CorrectAnswers,
		TotalQuestions:  r.TotalQuestions,
		Reflection:      r.Reflection,
		QuestionReviews: r.QuestionReviews,
	}
}

// ────────────────────────────────────────────────────────────────────────────
// Helper builders
// ────────────────────────────────────────────────────────────────────────────

// Success sends a success envelope with the given status code.
func Success(c *gin.Context, statusCode int, body interface{}) {
	c.JSON(statusCode, body)
}

// NewError builds the failure envelope. details may be nil.
func NewError(code ErrCode, details interface{}) ErrorResponse {
	return ErrorResponse{
		Success: false,
		Error:   ErrorBody{Code: code, Message: GetMessage(code), Details: details},
	}
}

// Fail sends an error response with an error code and no details.
func Fail(c *gin.Context, statusCode int, code ErrCode) {
	c.JSON(statusCode, NewError(code, nil))
}

// FailWithDetails sends an error response carrying a details payload.
func FailWithDetails(c *gin.Context, statusCode int, code ErrCode, details interface{}) {
	c.JSON(statusCode, NewError(code, details))
}

// AbortFail aborts the middleware chain and sends an error response.
func AbortFail(c *gin.Context, statusCode int, code ErrCode) {
	c.AbortWithStatusJSON(statusCode, NewError(code, nil))
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
