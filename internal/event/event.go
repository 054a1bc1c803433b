// Package event publishes quiz domain events to a message broker.
package event

import (
	"time"

	"github.com/google/uuid"
	"github.com/ramgerassy/ace-ai-sub001/internal/config"
	"github.com/ramgerassy/ace-ai-sub001/internal/model"
)

// Event is the envelope written to the exchange. Type doubles as the
// routing key.
type Event struct {
	ID         string      `json:"id"`
	Type       string      `json:"type"`
	OccurredAt time.Time   `json:"occurredAt"`
	Payload    interface{} `json:"payload"`
}

// QuizGeneratedPayload summarises a generated quiz. Question text is not
// included.
type QuizGeneratedPayload struct {
	Subject       string                `json:"subject"`
	SubSubjects   []string              `json:"subSubjects"`
	Level         model.DifficultyLevel `json:"level"`
	QuestionCount int                   `json:"questionCount"`
}

// QuizReviewedPayload summarises a scored review.
type QuizReviewedPayload struct {
	Score          int   `json:"score"`
	CorrectAnswers int   `json:"correctAnswers"`
	TotalQuestions int   `json:"totalQuestions"`
	IncorrectNums  []int `json:"incorrectQuestionNums"`
}

func newEvent(typ string, at time.Time, payload interface{}) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       typ,
		OccurredAt: at.UTC(),
		Payload:    payload,
	}
}

// QuizGenerated builds the event emitted after a successful generation.
func QuizGenerated(q model.GeneratedQuiz) Event {
	subs := q.Metadata.SubSubjects
	if subs == nil {
		subs = []string{}
	}
	return newEvent(config.EventKey.QuizGenerated, q.Metadata.GeneratedAt, QuizGeneratedPayload{
		Subject:       q.Metadata.Subject,
		SubSubjects:   subs,
		Level:         q.Metadata.Level,
		QuestionCount: len(q.Questions),
	})
}

// QuizReviewed builds the event emitted after a successful review.
func QuizReviewed(r model.ReviewResult, at time.Time) Event {
	incorrect := make([]int, 0)
	for _, qr := range r.QuestionReviews {
		if !qr.IsCorrect {
			incorrect = append(incorrect, qr.QuestionNum)
		}
	}
	return newEvent(config.EventKey.QuizReviewed, at, QuizReviewedPayload{
		Score:          r.Score,
		CorrectAnswers: r.CorrectAnswers,
		TotalQuestions: r.TotalQuestions,
		IncorrectNums:  incorrect,
	})
}
