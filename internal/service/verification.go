package service

import (
	"context"
	"fmt"
	"time"

	"memberhub-backend/internal/domain"
	"memberhub-backend/internal/logger"
	"memberhub-backend/internal/repository"
)

type verificationService struct {
	users       repository.UserRepository
	email       EmailService
	frontendURL string
	adminEmails []string
	limiter     *fastVerifyLimiter
}

func NewVerificationService(
	users repository.UserRepository,
	email EmailService,
	frontendURL string,
	adminEmails []string,
	dailyCap int,
	cooldown time.Duration,
) VerificationService {
	return &verificationService{
		users:       users,
		email:       email,
		frontendURL: frontendURL,
		adminEmails: adminEmails,
		limiter:     newFastVerifyLimiter(dailyCap, cooldown),
	}
}

func (s *verificationService) VerifyByToken(ctx context.Context, email, token string) (*domain.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if domain.IsKind(err, domain.KindNotFound) {
			return nil, domain.InvalidState("invalid or expired verification link")
		}
		return nil, err
	}
	if user.VerificationToken == nil || *user.VerificationToken != domain.HashToken(token) {
		return nil, domain.InvalidState("invalid or expired verification link")
	}
	if user.VerificationTokenExpiry == nil || time.Now().After(*user.VerificationTokenExpiry) {
		return nil, domain.InvalidState("invalid or expired verification link")
	}
	return s.markVerified(ctx, user, false)
}

func (s *verificationService) VerifyByCode(ctx context.Context, email, code string) (*domain.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if domain.IsKind(err, domain.KindNotFound) {
			return nil, domain.InvalidState("invalid or expired verification code")
		}
		return nil, err
	}
	if user.VerificationCode == nil || *user.VerificationCode != code {
		return nil, domain.InvalidState("invalid or expired verification code")
	}
	if user.VerificationTokenExpiry == nil || time.Now().After(*user.VerificationTokenExpiry) {
		return nil, domain.InvalidState("invalid or expired verification code")
	}
	return s.markVerified(ctx, user, true)
}

// markVerified flips the verification flag and clears both channels. The code
// channel additionally alerts admins with an applicant snapshot, since code
// entry usually means the person is waiting at the front desk.
func (s *verificationService) markVerified(ctx context.Context, user *domain.User, alertAdmins bool) (*domain.User, error) {
	if user.IsVerified {
		return nil, domain.InvalidState("email is already verified")
	}

	now := time.Now()
	user.IsVerified = true
	user.EmailVerifiedAt = &now
	user.ApplicationStatus = domain.ApplicationPending
	user.ClearEmailVerification()

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	logger.InfoContext(ctx, "Email verified", "user_id", user.ID, "email", user.Email)

	if alertAdmins {
		s.notifyAdmins(ctx, user, "A member verified via code entry and is awaiting review.")
	}
	return user, nil
}

func (s *verificationService) notifyAdmins(ctx context.Context, user *domain.User, reason string) {
	recipients, err := s.users.ListAdminEmails(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to look up admin recipients", "error", err)
	}
	recipients = mergeRecipients(recipients, s.adminEmails)
	if len(recipients) == 0 {
		return
	}
	alert := ApplicantAlert{
		FullName:      user.FullName,
		Email:         user.Email,
		StudentID:     user.StudentID,
		Session:       user.Session,
		Batch:         user.Batch,
		Department:    user.Department,
		ContactNumber: user.ContactNumber,
		ImageURL:      user.ImageURL,
		ProfileLink:   fmt.Sprintf("%s/admin/applications/%d", s.frontendURL, user.ID),
		Reason:        reason,
	}
	if err := s.email.SendApplicantAlert(ctx, recipients, alert); err != nil {
		logger.ErrorContext(ctx, "Applicant alert delivery failed",
			"user_id", user.ID, "error", err)
	}
}

func mergeRecipients(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	var out []string
	for _, addr := range append(a, b...) {
		if addr == "" || seen[addr] {
			continue
		}
		seen[addr] = true
		out = append(out, addr)
	}
	return out
}

func (s *verificationService) RequestFastVerification(ctx context.Context, userID int32) (*domain.User, error) {
	// Serialize per user so the check-then-record pair cannot interleave
	// for concurrent requests from the same account.
	unlock := s.limiter.lock(userID)
	defer unlock()

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsVerified {
		return nil, domain.InvalidState("verify your email before requesting fast verification")
	}
	if user.ApplicationStatus != domain.ApplicationPending {
		return nil, domain.InvalidState("application is already %s", user.ApplicationStatus)
	}

	now := time.Now()
	count, err := s.limiter.admit(user, now)
	if err != nil {
		return nil, err
	}

	if err := s.users.RecordFastVerification(ctx, userID, count, now); err != nil {
		return nil, err
	}
	user.RequestedFastVerificationCount = count
	user.LastFastVerificationRequest = &now

	s.notifyAdmins(ctx, user, "A member requested fast verification of their application.")
	logger.InfoContext(ctx, "Fast verification requested",
		"user_id", userID, "requests_today", count)
	return user, nil
}
