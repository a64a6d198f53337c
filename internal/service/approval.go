package service

import (
	"context"
	"time"

	"memberhub-backend/internal/domain"
	"memberhub-backend/internal/logger"
	"memberhub-backend/internal/repository"
)

type adminService struct {
	users repository.UserRepository
	email EmailService
}

func NewAdminService(users repository.UserRepository, email EmailService) AdminService {
	return &adminService{users: users, email: email}
}

func (s *adminService) Approve(ctx context.Context, adminID, userID int32) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsVerified {
		return nil, domain.InvalidState("user has not verified their email yet")
	}

	now := time.Now()
	user.ApplicationStatus = domain.ApplicationApproved
	user.ApprovedBy = &adminID
	user.ApprovedAt = &now
	user.RejectionReason = ""
	user.Role = promoteRole(user)

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	logger.InfoContext(ctx, "Application approved",
		"user_id", userID, "admin_id", adminID, "role", user.Role)

	if err := s.email.SendStatusNotification(ctx, user.Email, user.FullName, domain.ApplicationApproved, ""); err != nil {
		logger.ErrorContext(ctx, "Approval notification delivery failed",
			"user_id", userID, "error", err)
	}
	return user, nil
}

// promoteRole decides the post-approval role. Graduates become alumni and
// fresh guests become members; anyone already holding an elevated role keeps
// it so re-approval cannot demote a moderator or admin.
func promoteRole(user *domain.User) domain.Role {
	if user.IsGraduated {
		return domain.RoleAlumni
	}
	if user.Role == domain.RoleGuest {
		return domain.RoleMember
	}
	return user.Role
}

func (s *adminService) Reject(ctx context.Context, adminID, userID int32, reason string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsVerified {
		return nil, domain.InvalidState("user has not verified their email yet")
	}

	if reason == "" {
		reason = "Rejected by admin"
	}
	now := time.Now()
	user.ApplicationStatus = domain.ApplicationRejected
	user.ApprovedBy = &adminID
	user.ApprovedAt = &now
	user.RejectionReason = reason

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	logger.InfoContext(ctx, "Application rejected", "user_id", userID, "admin_id", adminID)

	if err := s.email.SendStatusNotification(ctx, user.Email, user.FullName, domain.ApplicationRejected, reason); err != nil {
		logger.ErrorContext(ctx, "Rejection notification delivery failed",
			"user_id", userID, "error", err)
	}
	return user, nil
}

func (s *adminService) ListPendingApplications(ctx context.Context) ([]domain.User, error) {
	return s.users.ListPendingApplications(ctx)
}

func (s *adminService) ListMembers(ctx context.Context) ([]domain.User, error) {
	return s.users.ListMembers(ctx)
}
