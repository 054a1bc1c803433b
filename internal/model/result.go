package model

import (
	"time"

	"github.com/ramgerassy/ace-ai-sub001/internal/validator"
)

// GeneratedQuiz is the collaborator's question set together with the request
// that produced it.
type GeneratedQuiz struct {
	Questions []Question   `json:"questions" binding:"required,len=10,dive"`
	Metadata  QuizMetadata `json:"metadata"`
}

// Check rejects question sets whose questionNum values repeat.
func (q GeneratedQuiz) Check() []validator.Violation {
	nums := make([]int, 0, len(q.Questions))
	for _, question := range q.Questions {
		nums = append(nums, question.QuestionNum)
	}
	return duplicateQuestionNums("questions", nums)
}

// QuizMetadata echoes the generation parameters.
type QuizMetadata struct {
	Subject     string          `json:"subject"`
	SubSubjects []string        `json:"subSubjects"`
	Level       DifficultyLevel `json:"level"`
	GeneratedAt time.Time       `json:"generatedAt"`
}

// QuestionReview is the verdict for one submitted answer.
type QuestionReview struct {
	QuestionNum int    `json:"questionNum"`
	IsCorrect   bool   `json:"isCorrect"`
	Explanation string `json:"explanation,omitempty" binding:"max=1000"`
}

// ReviewResult is the scored outcome of a complete answer set.
type ReviewResult struct {
	Score           int              `json:"score" binding:"min=0,max=100"`
	CorrectAnswers  int              `json:"correctAnswers" binding:"min=0,max=10"`
	TotalQuestions  int              `json:"totalQuestions" binding:"eq=10"`
	Reflection      string           `json:"reflection" binding:"required,min=100,max=1000"`
	QuestionReviews []QuestionReview `json:"questionReviews" binding:"len=10,dive"`
}

// SubjectVerdict is the collaborator's judgement of a subject. A valid
// verdict carries the canonical subject; an invalid one carries exactly
// five suggestions.
type SubjectVerdict struct {
	Valid       bool     `json:"valid"`
	Subject     string   `json:"subject,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
	Message     string   `json:"message" binding:"required,max=500"`
}

// WithDefaults keeps the submitted spelling on a valid verdict that names none.
func (v SubjectVerdict) WithDefaults(subject string) SubjectVerdict {
	if v.Valid && v.Subject == "" {
		v.Subject = subject
	}
	return v
}

// Check enforces the fields required by the selected branch.
func (v SubjectVerdict) Check() []validator.Violation {
	if v.Valid {
		return checkLength("subject", v.Subject, 2, 100)
	}
	return checkSuggestions(v.Suggestions, 5, 5)
}

// SubSubjectVerdict is the collaborator's judgement of a sub-subject within
// a subject. An invalid verdict carries up to five suggestions.
type SubSubjectVerdict struct {
	Valid       bool     `json:"valid"`
	Subject     string   `json:"subject,omitempty"`
	SubSubject  string   `json:"subSubject,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
	Message     string   `json:"message" binding:"required,max=500"`
}

func (v SubSubjectVerdict) WithDefaults(subject, subSubject string) SubSubjectVerdict {
	if !v.Valid {
		return v
	}
	if v.Subject == "" {
		v.Subject = subject
	}
	if v.SubSubject == "" {
		v.SubSubject = subSubject
	}
	return v
}

// Check enforces the fields required by the selected branch.
func (v SubSubjectVerdict) Check() []validator.Violation {
	if v.Valid {
		out := checkLength("subject", v.Subject, 2, 100)
		return append(out, checkLength("subSubject", v.SubSubject, 2, 150)...)
	}
	return checkSuggestions(v.Suggestions, 0, 5)
}
