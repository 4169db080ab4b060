package service

import (
	"context"
	"fmt"

	"github.com/careprep/careprep-backend/internal/repository"
)

// DashboardService aggregates platform-wide numbers for the staff overview.
type DashboardService struct {
	stats *repository.DashboardRepository
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(stats *repository.DashboardRepository) *DashboardService {
	return &DashboardService{stats: stats}
}

// GetStats returns learner, session, and score aggregates in one shot.
func (s *DashboardService) GetStats(ctx context.Context) (*repository.DashboardStats, error) {
	stats, err := s.stats.GetStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("dashboard stats: %w", err)
	}
	return stats, nil
}
