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
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService    *service.AuthService
	learnerService *service.LearnerService
	staffService   *service.StaffService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(
	authService *service.AuthService,
	learnerService *service.LearnerService,
	staffService *service.StaffService,
) *AuthHandler {
	return &AuthHandler{
		authService:    authService,
		learnerService: learnerService,
		staffService:   staffService,
	}
}

// LearnerLogin godoc
// POST /api/v1/auth/learner/login
// Validates email + password, rejects if another login is active, returns JWT.
func (h *AuthHandler) LearnerLogin(c *gin.Context) {
	var req model.LearnerLoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	learner, err := h.learnerService.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
		return
	}

	if err := h.authService.CheckPassword(learner.PasswordHash, req.Password); err != nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
		return
	}

	token, err := h.authService.GenerateLearnerToken(c.Request.Context(), learner)
	if err != nil {
		if errors.Is(err, service.ErrLoginAlreadyActive) {
			response.Fail(c, http.StatusConflict, response.ErrLoginAlreadyActive)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"token": token,
		"learner": gin.H{
			"id":    learner.ID,
			"email": learner.Email,
			"name":  learner.Name,
			"grade": learner.Grade,
		},
	})
}

// StaffLogin godoc
// POST /api/v1/auth/staff/login
// Validates email + password, returns JWT.
func (h *AuthHandler) StaffLogin(c *gin.Context) {
	var req model.StaffLoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	staff, err := h.staffService.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
		return
	}

	if err := h.authService.CheckPassword(staff.PasswordHash, req.Password); err != nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
		return
	}

	token, err := h.authService.GenerateStaffToken(staff)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"token": token,
		"staff": gin.H{
			"id":    staff.ID,
			"email": staff.Email,
			"name":  staff.Name,
		},
	})
}

// GetLearnerProfile godoc
// GET /api/v1/auth/learner/me
// Returns the profile of the currently authenticated learner.
func (h *AuthHandler) GetLearnerProfile(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	learner, err := h.learnerService.GetByID(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"learner": gin.H{
			"id":    learner.ID,
			"email": learner.Email,
			"name":  learner.Name,
			"grade": learner.Grade,
		},
	})
}

// LearnerLogout godoc
// POST /api/v1/auth/learner/logout
// Releases the learner's single-device login.
func (h *AuthHandler) LearnerLogout(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	if err := h.authService.ResetLearnerLogin(c.Request.Context(), claims.UserID); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}
