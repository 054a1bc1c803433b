package model

import (
	"strings"

	"github.com/ramgerassy/ace-ai-sub001/internal/validator"
)

// VerifySubjectRequest is the payload for POST /api/verify-subject.
type VerifySubjectRequest struct {
	Subject string `json:"subject" binding:"required,min=2,max=100,subject_chars"`
}

func (r *VerifySubjectRequest) Normalize() {
	r.Subject = strings.TrimSpace(r.Subject)
}

// VerifySubSubjectRequest is the payload for POST /api/verify-sub-subject.
type VerifySubSubjectRequest struct {
	Subject    string `json:"subject" binding:"required,min=2,max=100,subject_chars"`
	SubSubject string `json:"subSubject" binding:"required,min=2,max=150,subsubject_chars"`
}

func (r *VerifySubSubjectRequest) Normalize() {
	r.Subject = strings.TrimSpace(r.Subject)
	r.SubSubject = strings.TrimSpace(r.SubSubject)
}

// GenerateQuizRequest is the payload for POST /api/generate-quiz.
// SubSubjects defaults to an empty list during Normalize and is never
// re-defaulted afterwards.
type GenerateQuizRequest struct {
	Subject     string          `json:"subject" binding:"required,min=2,max=100,subject_chars"`
	SubSubjects []string        `json:"subSubjects" binding:"max=10,dive,min=2,max=150,subsubject_chars"`
	Level       DifficultyLevel `json:"level" binding:"required,oneof=easy intermediate hard"`
}

func (r *GenerateQuizRequest) Normalize() {
	r.Subject = strings.TrimSpace(r.Subject)
	subs := make([]string, 0, len(r.SubSubjects))
	for _, s := range r.SubSubjects {
		subs = append(subs, strings.TrimSpace(s))
	}
	r.SubSubjects = subs
}

// QuizReviewRequest is the payload for POST /api/review-quiz.
type QuizReviewRequest struct {
	UserAnswers []UserAnswer `json:"userAnswers" binding:"required,len=10,dive"`
}

// Check rejects answer sets whose questionNum values repeat.
func (r QuizReviewRequest) Check() []validator.Violation {
	nums := make([]int, 0, len(r.UserAnswers))
	for _, a := range r.UserAnswers {
		nums = append(nums, a.QuestionNum)
	}
	return duplicateQuestionNums("userAnswers", nums)
}
