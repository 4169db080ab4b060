package handler

import (
	"errors"
	"net/http"

	"github.com/careprep/careprep-backend/internal/middleware"
	"github.com/careprep/careprep-backend/internal/model"
	"github.com/careprep/careprep-backend/internal/response"
	"github.com/careprep/careprep-backend/internal/service"
	"github.com/careprep/careprep-backend/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ExamHandler handles the learner exam flow: start, in-session state and
// capture, and submission.
type ExamHandler struct {
	sessionService *service.SessionService
}

// NewExamHandler creates a new ExamHandler.
func NewExamHandler(sessionService *service.SessionService) *ExamHandler {
	return &ExamHandler{sessionService: sessionService}
}

// StartExam godoc
// POST /api/v1/learner/exams/start
// Resolves the eligible pool for the learner's grade and requested scope and
// opens a fresh session.
func (h *ExamHandler) StartExam(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.StartExamRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	grade := claims.Grade
	session, paper, err := h.sessionService.Start(c.Request.Context(), claims.UserID, claims.Email, &grade, req.Scope)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidScope):
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidScope)
		case errors.Is(err, service.ErrNoQuestionsAvailable):
			response.Fail(c, http.StatusNotFound, response.ErrNoQuestionsAvailable)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"session": session,
		"paper":   paper,
	})
}

// GetPaper godoc
// GET /api/v1/learner/sessions/:session_id/paper
// Returns the session's ordered questions, without correct answers.
func (h *ExamHandler) GetPaper(c *gin.Context) {
	claims, sessionID, ok := h.sessionParams(c)
	if !ok {
		return
	}

	paper, err := h.sessionService.GetPaper(c.Request.Context(), claims.UserID, sessionID)
	if err != nil {
		h.failSession(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"paper": paper})
}

// GetState godoc
// GET /api/v1/learner/sessions/:session_id/state
// Returns captured answers, flags, and remaining seconds, for reloads.
func (h *ExamHandler) GetState(c *gin.Context) {
	claims, sessionID, ok := h.sessionParams(c)
	if !ok {
		return
	}

	state, err := h.sessionService.GetState(c.Request.Context(), claims.UserID, sessionID)
	if err != nil {
		h.failSession(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"state": state})
}

// CaptureAnswer godoc
// PUT /api/v1/learner/sessions/:session_id/answers
// Upserts the learner's current choice for one question.
func (h *ExamHandler) CaptureAnswer(c *gin.Context) {
	claims, sessionID, ok := h.sessionParams(c)
	if !ok {
		return
	}

	var req model.CaptureAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	questionID, err := uuid.Parse(req.QuestionID)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.sessionService.CaptureAnswer(c.Request.Context(), claims.UserID, sessionID, questionID, req.Label); err != nil {
		h.failSession(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}

// ToggleFlag godoc
// PUT /api/v1/learner/sessions/:session_id/flags
// Flips the review flag on one question.
func (h *ExamHandler) ToggleFlag(c *gin.Context) {
	claims, sessionID, ok := h.sessionParams(c)
	if !ok {
		return
	}

	var req model.ToggleFlagRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	questionID, err := uuid.Parse(req.QuestionID)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	flagged, err := h.sessionService.ToggleFlag(c.Request.Context(), claims.UserID, sessionID, questionID)
	if err != nil {
		h.failSession(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"flagged": flagged})
}

// SubmitExam godoc
// POST /api/v1/learner/sessions/:session_id/submit
// Scores the final snapshot and completes the session atomically.
func (h *ExamHandler) SubmitExam(c *gin.Context) {
	claims, sessionID, ok := h.sessionParams(c)
	if !ok {
		return
	}

	result, err := h.sessionService.Submit(c.Request.Context(), claims.UserID, sessionID)
	if err != nil {
		h.failSession(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"result": result})
}

func (h *ExamHandler) sessionParams(c *gin.Context) (*service.Claims, uuid.UUID, bool) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return nil, uuid.Nil, false
	}

	sessionID, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return nil, uuid.Nil, false
	}

	return claims, sessionID, true
}

func (h *ExamHandler) failSession(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrSessionNotFound)
	case errors.Is(err, service.ErrSessionCompleted):
		response.Fail(c, http.StatusConflict, response.ErrSessionCompleted)
	case errors.Is(err, service.ErrNoQuestionsAvailable):
		response.Fail(c, http.StatusNotFound, response.ErrNoQuestionsAvailable)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
