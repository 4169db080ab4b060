package service

import (
	"context"
	"fmt"

	"github.com/careprep/careprep-backend/internal/model"
	"github.com/careprep/careprep-backend/internal/repository"
)

// LearnerService reads learner accounts. Provisioning happens in an external
// collaborator, so there is no create path here.
type LearnerService struct {
	repo *repository.LearnerRepository
}

// NewLearnerService creates a new LearnerService.
func NewLearnerService(repo *repository.LearnerRepository) *LearnerService {
	return &LearnerService{repo: repo}
}

// GetByEmail returns a learner by email.
func (s *LearnerService) GetByEmail(ctx context.Context, email string) (*model.Learner, error) {
	learner, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("get learner by email: %w", err)
	}
	return learner, nil
}

// GetByID returns a learner by ID.
func (s *LearnerService) GetByID(ctx context.Context, id int) (*model.Learner, error) {
	learner, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get learner: %w", err)
	}
	return learner, nil
}
