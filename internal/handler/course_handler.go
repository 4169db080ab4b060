package handler

import (
	"net/http"

	"github.com/careprep/careprep-backend/internal/middleware"
	"github.com/careprep/careprep-backend/internal/response"
	"github.com/careprep/careprep-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// CourseHandler serves the course catalog learners pick scopes from.
type CourseHandler struct {
	courseService *service.CourseService
}

// NewCourseHandler creates a new CourseHandler.
func NewCourseHandler(courseService *service.CourseService) *CourseHandler {
	return &CourseHandler{courseService: courseService}
}

// ListCourses godoc
// GET /api/v1/learner/courses
// Returns the active courses visible to the learner's grade.
func (h *CourseHandler) ListCourses(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	grade := claims.Grade
	courses, err := h.courseService.ListForGrade(c.Request.Context(), &grade)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"courses": courses})
}
