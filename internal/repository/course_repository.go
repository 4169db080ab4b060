package repository

import (
	"context"

	"github.com/careprep/careprep-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CourseRepository reads the course catalog. Courses only label exam scopes
// here; catalog authoring is an external collaborator.
type CourseRepository struct {
	pool *pgxpool.Pool
}

// NewCourseRepository creates a new CourseRepository.
func NewCourseRepository(pool *pgxpool.Pool) *CourseRepository {
	return &CourseRepository{pool: pool}
}

// ListForGrade retrieves active courses visible to a grade. A course with
// NULL grade is visible to every grade; grade == nil applies no filter.
func (r *CourseRepository) ListForGrade(ctx context.Context, grade *model.Grade) ([]model.Course, error) {
	query := `SELECT id, title, description, grade, active, created_at, updated_at
		 FROM courses WHERE active = TRUE`
	args := []any{}

	if grade != nil {
		args = append(args, *grade)
		query += " AND (grade IS NULL OR grade = $1)"
	}
	query += " ORDER BY title"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var courses []model.Course
	for rows.Next() {
		var c model.Course
		if err := rows.Scan(&c.ID, &c.Title, &c.Description, &c.Grade, &c.Active, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

// GetByID retrieves a course.
func (r *CourseRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Course, error) {
	c := &model.Course{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, title, description, grade, active, created_at, updated_at
		 FROM courses WHERE id = $1`, id,
	).Scan(&c.ID, &c.Title, &c.Description, &c.Grade, &c.Active, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}
