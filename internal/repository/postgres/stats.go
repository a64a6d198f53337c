package postgres

import (
	"context"
	"database/sql"

	"memberhub-backend/internal/domain"
	"memberhub-backend/internal/repository"
)

type statsRepository struct {
	db *sql.DB
}

func NewStatsRepository(db *sql.DB) repository.StatsRepository {
	return &statsRepository{db: db}
}

// MembershipStats computes all dashboard counters in one round-trip.
func (r *statsRepository) MembershipStats(ctx context.Context) (*domain.MembershipStats, error) {
	query := `SELECT COUNT(*),
	          COUNT(*) FILTER (WHERE role NOT IN ('alumni', 'guest') AND profile_status = 'active'),
	          COUNT(*) FILTER (WHERE role = 'alumni'),
	          COUNT(*) FILTER (WHERE is_verified AND application_status = 'pending')
	          FROM users`
	stats := &domain.MembershipStats{}
	err := r.db.QueryRowContext(ctx, query).Scan(
		&stats.TotalMembers,
		&stats.TotalActiveMembers,
		&stats.TotalAlumni,
		&stats.PendingApplications,
	)
	if err != nil {
		return nil, err
	}
	return stats, nil
}
