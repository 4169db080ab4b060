package handler

import (
	"errors"
	"net/http"

	"github.com/careprep/careprep-backend/internal/middleware"
	"github.com/careprep/careprep-backend/internal/response"
	"github.com/careprep/careprep-backend/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ResultHandler handles the learner-facing result endpoints.
type ResultHandler struct {
	resultService *service.ResultService
}

// NewResultHandler creates a new ResultHandler.
func NewResultHandler(resultService *service.ResultService) *ResultHandler {
	return &ResultHandler{resultService: resultService}
}

// ListResults godoc
// GET /api/v1/learner/results
// Returns the learner's completed attempts, newest first.
func (h *ResultHandler) ListResults(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	results, err := h.resultService.ListForLearner(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"results": results})
}

// GetResult godoc
// GET /api/v1/learner/results/:session_id
// Returns one result with its per-category breakdown.
func (h *ResultHandler) GetResult(c *gin.Context) {
	claims, sessionID, ok := h.resultParams(c)
	if !ok {
		return
	}

	detail, err := h.resultService.GetDetail(c.Request.Context(), claims.UserID, sessionID)
	if err != nil {
		h.failResult(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"result":     detail.Result,
		"categories": detail.Categories,
	})
}

// GetReview godoc
// GET /api/v1/learner/results/:session_id/review
// Returns per-question review with correct answers and explanations. Only
// available after completion.
func (h *ResultHandler) GetReview(c *gin.Context) {
	claims, sessionID, ok := h.resultParams(c)
	if !ok {
		return
	}

	items, err := h.resultService.GetReview(c.Request.Context(), claims.UserID, sessionID)
	if err != nil {
		h.failResult(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"review": items})
}

func (h *ResultHandler) resultParams(c *gin.Context) (*service.Claims, uuid.UUID, bool) {
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

func (h *ResultHandler) failResult(c *gin.Context, err error) {
	if errors.Is(err, service.ErrResultNotFound) {
		response.Fail(c, http.StatusNotFound, response.ErrResultNotFound)
		return
	}
	response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
}
