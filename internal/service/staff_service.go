package service

import (
	"context"
	"fmt"

	"github.com/careprep/careprep-backend/internal/model"
	"github.com/careprep/careprep-backend/internal/repository"
)

// StaffService reads staff accounts.
type StaffService struct {
	repo *repository.StaffRepository
}

// NewStaffService creates a new StaffService.
func NewStaffService(repo *repository.StaffRepository) *StaffService {
	return &StaffService{repo: repo}
}

// GetByEmail returns a staff member by email.
func (s *StaffService) GetByEmail(ctx context.Context, email string) (*model.Staff, error) {
	staff, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("get staff by email: %w", err)
	}
	return staff, nil
}

// GetByID returns a staff member by ID.
func (s *StaffService) GetByID(ctx context.Context, id int) (*model.Staff, error) {
	staff, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get staff: %w", err)
	}
	return staff, nil
}
