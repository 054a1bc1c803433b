package model

import (
	"fmt"
	"sort"

	"github.com/ramgerassy/ace-ai-sub001/internal/validator"
)

const (
	// QuestionsPerQuiz is the fixed size of every quiz and answer set.
	QuestionsPerQuiz = 10
	// OptionsPerQuestion is the fixed number of possible answers.
	OptionsPerQuestion = 4
)

// DifficultyLevel is the requested quiz difficulty.
type DifficultyLevel string

const (
	LevelEasy         DifficultyLevel = "easy"
	LevelIntermediate DifficultyLevel = "intermediate"
	LevelHard         DifficultyLevel = "hard"
)

// Question is a single multiple-choice item. CorrectAnswer holds 1-4
// distinct indices into PossibleAnswers.
type Question struct {
	QuestionNum     int      `json:"questionNum" binding:"required,min=1,max=10"`
	Question        string   `json:"question" binding:"required,min=10,max=500"`
	PossibleAnswers []string `json:"possibleAnswers" binding:"required,len=4,dive,required"`
	CorrectAnswer   []int    `json:"correctAnswer" binding:"required,min=1,max=4,unique,dive,min=0,max=3"`
}

// UserAnswer is a Question together with the learner's selection, which may
// be empty.
type UserAnswer struct {
	QuestionNum     int      `json:"questionNum" binding:"required,min=1,max=10"`
	Question        string   `json:"question" binding:"required,min=10,max=500"`
	PossibleAnswers []string `json:"possibleAnswers" binding:"required,len=4,dive,required"`
	CorrectAnswer   []int    `json:"correctAnswer" binding:"required,min=1,max=4,unique,dive,min=0,max=3"`
	UserAnswer      []int    `json:"userAnswer" binding:"max=4,dive,min=0,max=3"`
}

// AsQuestion projects the answer back onto the question it answers.
func (a UserAnswer) AsQuestion() Question {
	return Question{
		QuestionNum:     a.QuestionNum,
		Question:        a.Question,
		PossibleAnswers: append([]string(nil), a.PossibleAnswers...),
		CorrectAnswer:   append([]int(nil), a.CorrectAnswer...),
	}
}

// IsStructurallyValid reports whether q satisfies every question constraint.
func IsStructurallyValid(q Question) bool {
	return validator.Validate(&q) == nil
}

// IsCompleteAnswerSet reports whether answers has exactly QuestionsPerQuiz
// entries.
func IsCompleteAnswerSet(answers []UserAnswer) bool {
	return len(answers) == QuestionsPerQuiz
}

// duplicateQuestionNums returns one violation per questionNum that appears
// more than once, in ascending order.
func duplicateQuestionNums(field string, nums []int) []validator.Violation {
	seen := make(map[int]int, len(nums))
	for _, n := range nums {
		seen[n]++
	}

	var dups []int
	for n, count := range seen {
		if count > 1 {
			dups = append(dups, n)
		}
	}
	sort.Ints(dups)

	out := make([]validator.Violation, 0, len(dups))
	for _, n := range dups {
		out = append(out, validator.Violation{
			Field:   field,
			Rule:    "unique_question_num",
			Param:   fmt.Sprint(n),
			Message: fmt.Sprintf("questionNum %d appears more than once", n),
		})
	}
	return out
}
