// Package generatortest provides an in-memory Generator for tests.
package generatortest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/ramgerassy/ace-ai-sub001/internal/model"
	"github.com/ramgerassy/ace-ai-sub001/internal/scoring"
)

// Fake returns well-formed content unless a field overrides it.
type Fake struct {
	mu sync.Mutex

	KnownSubjects map[string]bool
	Questions     []model.Question
	Reflection    string
	Err           error

	// Calls counts invocations per method name.
	Calls        map[string]int
	LastExplain  []scoring.ExplanationRequest
	LastReflect  scoring.ReflectionFacts
	LastGenerate model.GenerateQuizRequest
}

func New() *Fake {
	return &Fake{
		KnownSubjects: map[string]bool{"mathematics": true, "physics": true},
		Reflection: strings.Repeat("Solid effort on this quiz. ", 5) +
			"Review the questions you missed and try again tomorrow.",
		Calls: map[string]int{},
	}
}

func (f *Fake) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls[name]++
}

// CallCount returns how often method name was invoked.
func (f *Fake) CallCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Calls[name]
}

func (f *Fake) VerifySubject(_ context.Context, subject string) (model.SubjectVerdict, error) {
	f.record("VerifySubject")
	if f.Err != nil {
		return model.SubjectVerdict{}, f.Err
	}
	if f.KnownSubjects[strings.ToLower(subject)] {
		return model.SubjectVerdict{Valid: true, Subject: subject, Message: "Great choice!"}, nil
	}
	return model.SubjectVerdict{
		Suggestions: []string{"Mathematics", "Physics", "Chemistry", "Biology", "History"},
		Message:     "We could not recognise that subject.",
	}, nil
}

func (f *Fake) VerifySubSubject(_ context.Context, subject, subSubject string) (model.SubSubjectVerdict, error) {
	f.record("VerifySubSubject")
	if f.Err != nil {
		return model.SubSubjectVerdict{}, f.Err
	}
	if strings.EqualFold(subSubject, "Algebra") {
		return model.SubSubjectVerdict{Valid: true, Subject: subject, SubSubject: subSubject, Message: "Looks good."}, nil
	}
	return model.SubSubjectVerdict{Suggestions: []string{"Algebra", "Geometry"}, Message: "Try one of these."}, nil
}

func (f *Fake) GenerateQuestions(_ context.Context, req model.GenerateQuizRequest) ([]model.Question, error) {
	f.record("GenerateQuestions")
	f.mu.Lock()
	f.LastGenerate = req
	f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	if f.Questions != nil {
		return f.Questions, nil
	}
	return Questions(model.QuestionsPerQuiz), nil
}

func (f *Fake) Explain(_ context.Context, reqs []scoring.ExplanationRequest) (map[int]string, error) {
	f.record("Explain")
	f.mu.Lock()
	f.LastExplain = reqs
	f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	out := make(map[int]string, len(reqs))
	for _, r := range reqs {
		out[r.QuestionNum] = fmt.Sprintf("Question %d: the correct options were %v.", r.QuestionNum, r.CorrectAnswer)
	}
	return out, nil
}

func (f *Fake) Reflect(_ context.Context, facts scoring.ReflectionFacts) (string, error) {
	f.record("Reflect")
	f.mu.Lock()
	f.LastReflect = facts
	f.mu.Unlock()
	if f.Err != nil {
		return "", f.Err
	}
	return f.Reflection, nil
}

// Questions builds n well-formed questions numbered from 1.
func Questions(n int) []model.Question {
	qs := make([]model.Question, 0, n)
	for i := 1; i <= n; i++ {
		qs = append(qs, model.Question{
			QuestionNum:     i,
			Question:        fmt.Sprintf("Sample question number %d?", i),
			PossibleAnswers: []string{"Alpha", "Beta", "Gamma", "Delta"},
			CorrectAnswer:   []int{0},
		})
	}
	return qs
}
