package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/careprep/careprep-backend/internal/model"
	"github.com/google/uuid"
)

// ErrCourseNotFound is returned when a course does not exist or is inactive.
var ErrCourseNotFound = errors.New("course not found")

// CourseStore is the persistence contract for the course catalog.
type CourseStore interface {
	ListForGrade(ctx context.Context, grade *model.Grade) ([]model.Course, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Course, error)
}

// CourseService serves the course catalog learners pick exam scopes from.
type CourseService struct {
	courses CourseStore
}

// NewCourseService creates a new CourseService.
func NewCourseService(courses CourseStore) *CourseService {
	return &CourseService{courses: courses}
}

// ListForGrade returns the active courses visible to a grade. Courses with
// no grade restriction are visible to everyone.
func (s *CourseService) ListForGrade(ctx context.Context, grade *model.Grade) ([]model.Course, error) {
	courses, err := s.courses.ListForGrade(ctx, grade)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

// GetByID returns one active course.
func (s *CourseService) GetByID(ctx context.Context, id uuid.UUID) (*model.Course, error) {
	course, err := s.courses.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCourseNotFound, err)
	}
	if !course.Active {
		return nil, ErrCourseNotFound
	}
	return course, nil
}
