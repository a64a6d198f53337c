package service

import (
	"context"
	"time"

	"memberhub-backend/internal/domain"
	"memberhub-backend/internal/repository"
)

type dashboardService struct {
	users    repository.UserRepository
	stats    repository.StatsRepository
	dailyCap int32
}

func NewDashboardService(users repository.UserRepository, stats repository.StatsRepository, dailyCap int) DashboardService {
	return &dashboardService{users: users, stats: stats, dailyCap: int32(dailyCap)}
}

func (s *dashboardService) AdminStats(ctx context.Context) (*domain.MembershipStats, error) {
	return s.stats.MembershipStats(ctx)
}

func (s *dashboardService) MemberDashboard(ctx context.Context, userID int32) (*domain.MemberDashboard, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	// The persisted counter is only meaningful for the day it was written;
	// show zero once the calendar date has rolled over.
	requestsToday := user.RequestedFastVerificationCount
	if user.LastFastVerificationRequest == nil || !sameDate(*user.LastFastVerificationRequest, time.Now()) {
		requestsToday = 0
	}

	return &domain.MemberDashboard{
		ProfileStatus:     user.ProfileStatus,
		ApplicationStatus: user.ApplicationStatus,
		IsVerified:        user.IsVerified,
		Role:              user.Role,
		FastVerification: domain.FastVerification{
			RequestsToday: requestsToday,
			DailyCap:      s.dailyCap,
		},
	}, nil
}
