// Package generator is the content-generation collaborator: it produces
// question text, subject verdicts, explanations and reflections.
package generator

import (
	"context"

	"github.com/ramgerassy/ace-ai-sub001/internal/model"
	"github.com/ramgerassy/ace-ai-sub001/internal/scoring"
)

// Generator issues exactly one upstream call per method and never retries.
type Generator interface {
	VerifySubject(ctx context.Context, subject string) (model.SubjectVerdict, error)
	VerifySubSubject(ctx context.Context, subject, subSubject string) (model.SubSubjectVerdict, error)
	GenerateQuestions(ctx context.Context, req model.GenerateQuizRequest) ([]model.Question, error)
	// Explain returns explanation text keyed by questionNum.
	Explain(ctx context.Context, reqs []scoring.ExplanationRequest) (map[int]string, error)
	Reflect(ctx context.Context, facts scoring.ReflectionFacts) (string, error)
}
