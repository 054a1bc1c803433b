// Package scoring turns a validated answer set into a score and a
// per-question review. Every function here is pure.
package scoring

import (
	"fmt"
	"sort"

	"github.com/ramgerassy/ace-ai-sub001/internal/model"
)

// ExplanationPolicy decides which reviewed questions warrant an explanation.
type ExplanationPolicy string

const (
	ExplainIncorrect ExplanationPolicy = "incorrect"
	ExplainAlways    ExplanationPolicy = "always"
	ExplainNever     ExplanationPolicy = "never"
)

// ParsePolicy maps a config string onto a policy.
func ParsePolicy(s string) (ExplanationPolicy, error) {
	switch p := ExplanationPolicy(s); p {
	case ExplainIncorrect, ExplainAlways, ExplainNever:
		return p, nil
	default:
		return "", fmt.Errorf("unknown explanation policy %q", s)
	}
}

func (p ExplanationPolicy) warrants(isCorrect bool) bool {
	switch p {
	case ExplainAlways:
		return true
	case ExplainIncorrect:
		return !isCorrect
	default:
		return false
	}
}

// ExplanationRequest is what the content collaborator needs to explain
// one question.
type ExplanationRequest struct {
	QuestionNum     int      `json:"questionNum"`
	Question        string   `json:"question"`
	PossibleAnswers []string `json:"possibleAnswers"`
	CorrectAnswer   []int    `json:"correctAnswer"`
	UserAnswer      []int    `json:"userAnswer"`
	IsCorrect       bool     `json:"isCorrect"`
}

// ReflectionFacts are the only inputs the reflection narrative is built from.
type ReflectionFacts struct {
	Score                 int   `json:"score"`
	CorrectAnswers        int   `json:"correctAnswers"`
	TotalQuestions        int   `json:"totalQuestions"`
	IncorrectQuestionNums []int `json:"incorrectQuestionNums"`
}

// Outcome is the engine's verdict before collaborator text is attached.
type Outcome struct {
	Reviews        []model.QuestionReview
	CorrectAnswers int
	TotalQuestions int
	Score          int
	// Explanations lists the questions the policy wants explained, in
	// review order.
	Explanations []ExplanationRequest
	Facts        ReflectionFacts
}

// Score reviews answers in ascending questionNum order. The input slice is
// left untouched.
func Score(answers []model.UserAnswer, policy ExplanationPolicy) Outcome {
	ordered := make([]model.UserAnswer, len(answers))
	copy(ordered, answers)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].QuestionNum < ordered[j].QuestionNum
	})

	out := Outcome{
		Reviews:        make([]model.QuestionReview, 0, len(ordered)),
		TotalQuestions: model.QuestionsPerQuiz,
	}
	incorrect := make([]int, 0)

	for _, a := range ordered {
		ok := IsCorrect(a.UserAnswer, a.CorrectAnswer)
		if ok {
			out.CorrectAnswers++
		} else {
			incorrect = append(incorrect, a.QuestionNum)
		}

		out.Reviews = append(out.Reviews, model.QuestionReview{
			QuestionNum: a.QuestionNum,
			IsCorrect:   ok,
		})

		if policy.warrants(ok) {
			out.Explanations = append(out.Explanations, ExplanationRequest{
				QuestionNum:     a.QuestionNum,
				Question:        a.Question,
				PossibleAnswers: append([]string(nil), a.PossibleAnswers...),
				CorrectAnswer:   append([]int(nil), a.CorrectAnswer...),
				UserAnswer:      append([]int{}, a.UserAnswer...),
				IsCorrect:       ok,
			})
		}
	}

	out.Score = Percentage(out.CorrectAnswers, out.TotalQuestions)
	out.Facts = ReflectionFacts{
		Score:                 out.Score,
		CorrectAnswers:        out.CorrectAnswers,
		TotalQuestions:        out.TotalQuestions,
		IncorrectQuestionNums: incorrect,
	}
	return out
}

// IsCorrect reports exact set equality between the selection and the key.
// Order and duplicates are ignored; an empty selection never matches a
// non-empty key.
func IsCorrect(userAnswer, correctAnswer []int) bool {
	user := toSet(userAnswer)
	correct := toSet(correctAnswer)
	if len(user) != len(correct) {
		return false
	}
	for k := range correct {
		if _, ok := user[k]; !ok {
			return false
		}
	}
	return true
}

// Percentage returns correct/total as a percentage rounded half up.
func Percentage(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return (correct*200 + total) / (2 * total)
}

// Result attaches collaborator text to the outcome. Explanations are keyed
// by questionNum and only land on questions listed in o.Explanations; any
// other entry is dropped.
func (o Outcome) Result(reflection string, explanations map[int]string) model.ReviewResult {
	warranted := make(map[int]struct{}, len(o.Explanations))
	for _, req := range o.Explanations {
		warranted[req.QuestionNum] = struct{}{}
	}

	reviews := make([]model.QuestionReview, len(o.Reviews))
	for i, r := range o.Reviews {
		r.Explanation = ""
		if _, ok := warranted[r.QuestionNum]; ok {
			r.Explanation = explanations[r.QuestionNum]
		}
		reviews[i] = r
	}

	return model.ReviewResult{
		Score:           o.Score,
		CorrectAnswers:  o.CorrectAnswers,
		TotalQuestions:  o.TotalQuestions,
		Reflection:      reflection,
		QuestionReviews: reviews,
	}
}

func toSet(xs []int) map[int]struct{} {
	s := make(map[int]struct{}, len(xs))
	for _, x := range xs {
		s[x] = struct{}{}
	}
	return s
}
