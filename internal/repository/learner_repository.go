package repository

import (
	"context"

	"github.com/careprep/careprep-backend/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

// LearnerRepository handles learner account data access. Account
// provisioning lives in an external collaborator; the engine only needs
// lookups for login and identity resolution.
type LearnerRepository struct {
	pool *pgxpool.Pool
}

// NewLearnerRepository creates a new LearnerRepository.
func NewLearnerRepository(pool *pgxpool.Pool) *LearnerRepository {
	return &LearnerRepository{pool: pool}
}

// GetByEmail retrieves a learner by email for authentication.
func (r *LearnerRepository) GetByEmail(ctx context.Context, email string) (*model.Learner, error) {
	l := &model.Learner{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, email, name, grade, password_hash, created_at, updated_at
		 FROM learners WHERE email = $1`, email,
	).Scan(&l.ID, &l.Email, &l.Name, &l.Grade, &l.PasswordHash, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return l, nil
}

// GetByID retrieves a learner by ID.
func (r *LearnerRepository) GetByID(ctx context.Context, id int) (*model.Learner, error) {
	l := &model.Learner{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, email, name, grade, password_hash, created_at, updated_at
		 FROM learners WHERE id = $1`, id,
	).Scan(&l.ID, &l.Email, &l.Name, &l.Grade, &l.PasswordHash, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return l, nil
}
