package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/careprep/careprep-backend/internal/model"
	"github.com/careprep/careprep-backend/internal/repository"
	"github.com/careprep/careprep-backend/internal/response"
	"github.com/careprep/careprep-backend/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// StaffHandler serves the staff surface: cross-learner results and the
// platform dashboard.
type StaffHandler struct {
	resultService    *service.ResultService
	dashboardService *service.DashboardService
	authService      *service.AuthService
}

// NewStaffHandler creates a new StaffHandler.
func NewStaffHandler(
	resultService *service.ResultService,
	dashboardService *service.DashboardService,
	authService *service.AuthService,
) *StaffHandler {
	return &StaffHandler{
		resultService:    resultService,
		dashboardService: dashboardService,
		authService:      authService,
	}
}

// ListResults godoc
// GET /api/v1/staff/results?page=&per_page=&grade=&passed=&scope=
// Paginated results across all learners with optional filters.
func (h *StaffHandler) ListResults(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	var filter repository.ResultFilter
	if gradeStr := c.Query("grade"); gradeStr != "" {
		grade := model.Grade(gradeStr)
		if !grade.Valid() {
			response.Fail(c, http.StatusBadRequest, response.ErrValidation)
			return
		}
		filter.Grade = &grade
	}
	if passedStr := c.Query("passed"); passedStr != "" {
		passed, err := strconv.ParseBool(passedStr)
		if err != nil {
			response.Fail(c, http.StatusBadRequest, response.ErrValidation)
			return
		}
		filter.Passed = &passed
	}
	if scopeStr := c.Query("scope"); scopeStr != "" {
		scope, err := service.ParseScope(scopeStr)
		if err != nil {
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidScope)
			return
		}
		filter.Scope = &scope
	}

	rows, total, err := h.resultService.List(c.Request.Context(), page, perPage, filter)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	totalPages := int(total) / perPage
	if int(total)%perPage != 0 {
		totalPages++
	}
	response.SuccessWithPagination(c, http.StatusOK, gin.H{"results": rows}, &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: int(total),
		TotalPages: totalPages,
	})
}

// GetResult godoc
// GET /api/v1/staff/results/:session_id
// Any learner's result with its category breakdown.
func (h *StaffHandler) GetResult(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	detail, err := h.resultService.GetDetail(c.Request.Context(), 0, sessionID)
	if err != nil {
		if errors.Is(err, service.ErrResultNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrResultNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"result":     detail.Result,
		"categories": detail.Categories,
	})
}

// GetDashboard godoc
// GET /api/v1/staff/dashboard
// Platform-wide learner, session, and score aggregates.
func (h *StaffHandler) GetDashboard(c *gin.Context) {
	stats, err := h.dashboardService.GetStats(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"stats": stats})
}

// ResetLearnerLogin godoc
// POST /api/v1/staff/learners/:id/reset-login
// Clears a learner's single-device login so they can sign in again.
func (h *StaffHandler) ResetLearnerLogin(c *gin.Context) {
	learnerID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.authService.ResetLearnerLogin(c.Request.Context(), learnerID); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}
