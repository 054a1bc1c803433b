package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ramgerassy/ace-ai-sub001/internal/event"
	"github.com/ramgerassy/ace-ai-sub001/internal/generator"
	"github.com/ramgerassy/ace-ai-sub001/internal/metrics"
	"github.com/ramgerassy/ace-ai-sub001/internal/model"
	"github.com/ramgerassy/ace-ai-sub001/internal/scoring"
	"github.com/ramgerassy/ace-ai-sub001/internal/validator"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// ErrContentGeneration marks any failure of the content collaborator,
// including output that does not satisfy the quiz contract.
var ErrContentGeneration = errors.New("content generation failed")

// EventQueue accepts domain events without blocking.
type EventQueue interface {
	Enqueue(e event.Event) bool
}

type QuizService struct {
	gen     generator.Generator
	policy  scoring.ExplanationPolicy
	events  EventQueue
	timeout time.Duration
	log     zerolog.Logger
	now     func() time.Time
}

func NewQuizService(
	gen generator.Generator,
	policy scoring.ExplanationPolicy,
	events EventQueue,
	timeout time.Duration,
	log zerolog.Logger,
) *QuizService {
	return &QuizService{
		gen:     gen,
		policy:  policy,
		events:  events,
		timeout: timeout,
		log:     log.With().Str("component", "quiz_service").Logger(),
		now:     time.Now,
	}
}

// VerifySubject asks the collaborator whether subject is quiz-worthy.
// A valid verdict without a canonical spelling keeps the submitted one.
func (s *QuizService) VerifySubject(ctx context.Context, req model.VerifySubjectRequest) (model.SubjectVerdict, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	v, err := s.gen.VerifySubject(ctx, req.Subject)
	if err != nil {
		return model.SubjectVerdict{}, s.fail("verify_subject", err)
	}
	v = v.WithDefaults(req.Subject)
	if err := validator.Validate(v); err != nil {
		return model.SubjectVerdict{}, s.fail("verify_subject", err)
	}
	return v, nil
}

// VerifySubSubject asks the collaborator whether subSubject belongs to subject.
func (s *QuizService) VerifySubSubject(ctx context.Context, req model.VerifySubSubjectRequest) (model.SubSubjectVerdict, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	v, err := s.gen.VerifySubSubject(ctx, req.Subject, req.SubSubject)
	if err != nil {
		return model.SubSubjectVerdict{}, s.fail("verify_sub_subject", err)
	}
	v = v.WithDefaults(req.Subject, req.SubSubject)
	if err := validator.Validate(v); err != nil {
		return model.SubSubjectVerdict{}, s.fail("verify_sub_subject", err)
	}
	return v, nil
}

// GenerateQuiz obtains ten questions and stamps them with the request
// parameters. The collaborator's questions are passed through unchanged.
func (s *QuizService) GenerateQuiz(ctx context.Context, req model.GenerateQuizRequest) (model.GeneratedQuiz, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	questions, err := s.gen.GenerateQuestions(ctx, req)
	if err != nil {
		return model.GeneratedQuiz{}, s.fail("generate_quiz", err)
	}

	quiz := model.GeneratedQuiz{
		Questions: questions,
		Metadata: model.QuizMetadata{
			Subject:     req.Subject,
			SubSubjects: req.SubSubjects,
			Level:       req.Level,
			GeneratedAt: s.now().UTC(),
		},
	}
	if err := validator.Validate(quiz); err != nil {
		return model.GeneratedQuiz{}, s.fail("generate_quiz", err)
	}

	s.log.Info().
		Str("subject", req.Subject).
		Str("level", string(req.Level)).
		Int("sub_subjects", len(req.SubSubjects)).
		Msg("Quiz generated")
	s.publish(event.QuizGenerated(quiz))
	return quiz, nil
}

// ReviewQuiz scores a validated answer set and attaches collaborator text.
// Explanations and the reflection are requested concurrently; either
// failing fails the review.
func (s *QuizService) ReviewQuiz(ctx context.Context, req model.QuizReviewRequest) (model.ReviewResult, error) {
	outcome := scoring.Score(req.UserAnswers, s.policy)

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var (
		explanations = map[int]string{}
		reflection   string
	)
	g, gctx := errgroup.WithContext(ctx)
	if len(outcome.Explanations) > 0 {
		g.Go(func() error {
			out, err := s.gen.Explain(gctx, outcome.Explanations)
			if err != nil {
				return fmt.Errorf("explain: %w", err)
			}
			explanations = out
			return nil
		})
	}
	g.Go(func() error {
		out, err := s.gen.Reflect(gctx, outcome.Facts)
		if err != nil {
			return fmt.Errorf("reflect: %w", err)
		}
		reflection = out
		return nil
	})
	if err := g.Wait(); err != nil {
		return model.ReviewResult{}, s.fail("review_quiz", err)
	}

	result := outcome.Result(reflection, explanations)
	if err := validator.Validate(result); err != nil {
		return model.ReviewResult{}, s.fail("review_quiz", err)
	}

	metrics.ReviewScored(result.Score)
	s.log.Info().
		Int("score", result.Score).
		Int("correct", result.CorrectAnswers).
		Int("explanations", len(outcome.Explanations)).
		Msg("Quiz reviewed")
	s.publish(event.QuizReviewed(result, s.now()))
	return result, nil
}

func (s *QuizService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *QuizService) fail(op string, err error) error {
	metrics.GenerationFailed(op)
	s.log.Error().Err(err).Str("operation", op).Msg("Content generation failed")
	return fmt.Errorf("%w: %w", ErrContentGeneration, err)
}

func (s *QuizService) publish(e event.Event) {
	if s.events == nil {
		return
	}
	s.events.Enqueue(e)
}
