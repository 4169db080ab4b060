package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DashboardStats aggregates platform-wide exam activity for instructors.
type DashboardStats struct {
	TotalLearners      int64    `json:"total_learners"`
	SessionsInProgress int64    `json:"sessions_in_progress"`
	SessionsCompleted  int64    `json:"sessions_completed"`
	PassRatePercent    *float64 `json:"pass_rate_percent"`
	AvgScorePercent    *float64 `json:"avg_score_percent"`
}

// DashboardRepository computes instructor dashboard aggregates.
type DashboardRepository struct {
	pool *pgxpool.Pool
}

// NewDashboardRepository creates a new DashboardRepository.
func NewDashboardRepository(pool *pgxpool.Pool) *DashboardRepository {
	return &DashboardRepository{pool: pool}
}

// GetStats runs the aggregate queries in one round trip.
func (r *DashboardRepository) GetStats(ctx context.Context) (*DashboardStats, error) {
	stats := &DashboardStats{}
	err := r.pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM learners),
			(SELECT COUNT(*) FROM exam_sessions WHERE status = 'IN_PROGRESS'),
			(SELECT COUNT(*) FROM exam_sessions WHERE status = 'COMPLETED'),
			(SELECT 100.0 * COUNT(*) FILTER (WHERE passed) / NULLIF(COUNT(*), 0) FROM exam_results),
			(SELECT AVG(score_percent) FROM exam_results)
	`).Scan(
		&stats.TotalLearners,
		&stats.SessionsInProgress,
		&stats.SessionsCompleted,
		&stats.PassRatePercent,
		&stats.AvgScorePercent,
	)
	if err != nil {
		return nil, err
	}
	return stats, nil
}
