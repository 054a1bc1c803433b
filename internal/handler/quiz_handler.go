package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ramgerassy/ace-ai-sub001/internal/model"
	"github.com/ramgerassy/ace-ai-sub001/internal/response"
	"github.com/ramgerassy/ace-ai-sub001/internal/service"
	"github.com/ramgerassy/ace-ai-sub001/internal/validator"
)

type QuizHandler struct {
	quizService *service.QuizService
}

func NewQuizHandler(quizService *service.QuizService) *QuizHandler {
	return &QuizHandler{quizService: quizService}
}

// VerifySubject godoc
// POST /api/verify-subject
func (h *QuizHandler) VerifySubject(c *gin.Context) {
	var req model.VerifySubjectRequest
	if !bind(c, &req) {
		return
	}

	verdict, err := h.quizService.VerifySubject(c.Request.Context(), req)
	if err != nil {
		failGeneration(c, err)
		return
	}
	response.Success(c, http.StatusOK, response.NewSubjectVerification(verdict))
}

// VerifySubSubject godoc
// POST /api/verify-sub-subject
func (h *QuizHandler) VerifySubSubject(c *gin.Context) {
	var req model.VerifySubSubjectRequest
	if !bind(c, &req) {
		return
	}

	verdict, err := h.quizService.VerifySubSubject(c.Request.Context(), req)
	if err != nil {
		failGeneration(c, err)
		return
	}
	response.Success(c, http.StatusOK, response.NewSubSubjectVerification(verdict))
}

// GenerateQuiz godoc
// POST /api/generate-quiz
func (h *QuizHandler) GenerateQuiz(c *gin.Context) {
	var req model.GenerateQuizRequest
	if !bind(c, &req) {
		return
	}

	quiz, err := h.quizService.GenerateQuiz(c.Request.Context(), req)
	if err != nil {
		failGeneration(c, err)
		return
	}
	response.Success(c, http.StatusOK, response.NewQuizGenerated(quiz))
}

// ReviewQuiz godoc
// POST /api/review-quiz
func (h *QuizHandler) ReviewQuiz(c *gin.Context) {
	var req model.QuizReviewRequest
	if !bind(c, &req) {
		return
	}

	result, err := h.quizService.ReviewQuiz(c.Request.Context(), req)
	if err != nil {
		failGeneration(c, err)
		return
	}
	response.Success(c, http.StatusOK, response.NewQuizReviewed(result))
}

// bind decodes and validates the body, writing a VALIDATION_ERROR
// envelope on failure.
func bind(c *gin.Context, dst interface{}) bool {
	err := validator.Bind(c, dst)
	if err == nil {
		return true
	}

	var verr *validator.ValidationError
	if errors.As(err, &verr) {
		response.FailWithDetails(c, http.StatusBadRequest, response.ErrValidation, verr.Violations)
	} else {
		response.Fail(c, http.StatusBadRequest, response.ErrValidation)
	}
	return false
}

// failGeneration maps service errors onto the error envelope. Malformed
// collaborator output carries its violations as details.
func failGeneration(c *gin.Context, err error) {
	_ = c.Error(err)

	if !errors.Is(err, service.ErrContentGeneration) {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	status := http.StatusBadGateway
	if errors.Is(err, context.DeadlineExceeded) {
		status = http.StatusGatewayTimeout
	}

	var verr *validator.ValidationError
	if errors.As(err, &verr) {
		response.FailWithDetails(c, status, response.ErrContentGeneration, verr.Violations)
		return
	}
	response.Fail(c, status, response.ErrContentGeneration)
}
