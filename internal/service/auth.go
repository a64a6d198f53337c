package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"memberhub-backend/internal/domain"
	"memberhub-backend/internal/logger"
	"memberhub-backend/internal/repository"
	"memberhub-backend/internal/security"

	"golang.org/x/crypto/bcrypt"
)

type authService struct {
	users       repository.UserRepository
	email       EmailService
	tokens      security.TokenManager
	frontendURL string
	resetTTL    time.Duration
}

func NewAuthService(
	users repository.UserRepository,
	email EmailService,
	tokens security.TokenManager,
	frontendURL string,
	resetTTL time.Duration,
) AuthService {
	return &authService{
		users:       users,
		email:       email,
		tokens:      tokens,
		frontendURL: frontendURL,
		resetTTL:    resetTTL,
	}
}

func (s *authService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if domain.IsKind(err, domain.KindNotFound) {
			return nil, "", domain.Unauthorized("invalid email or password")
		}
		return nil, "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, "", domain.Unauthorized("invalid email or password")
	}

	// Credential success is not enough: the account must have cleared email
	// verification and admin review. The user is returned with the error so
	// the handler can tell the caller which gate they are stuck at.
	if user.ProfileStatus == domain.ProfileBanned || user.ProfileStatus == domain.ProfileDeleted {
		return user, "", domain.Forbidden("this account is %s", user.ProfileStatus)
	}
	if !user.IsVerified {
		return user, "", domain.Unauthorized("email not verified; check your inbox for the verification link")
	}
	switch user.ApplicationStatus {
	case domain.ApplicationRejected:
		return user, "", domain.Unauthorized("your application was rejected")
	case domain.ApplicationPending:
		return user, "", domain.Unauthorized("your application is awaiting admin approval")
	}

	token, err := s.tokens.GenerateAuthToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, "", err
	}

	now := time.Now()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		logger.ErrorContext(ctx, "Failed to record last login", "user_id", user.ID, "error", err)
	}
	user.LastLogin = &now

	logger.InfoContext(ctx, "User logged in", "user_id", user.ID, "email", user.Email)
	return user, token, nil
}

func (s *authService) SessionUser(ctx context.Context, claims *security.Claims) (*domain.User, string, bool, error) {
	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if domain.IsKind(err, domain.KindNotFound) {
			return nil, "", false, domain.Unauthorized("account no longer exists")
		}
		return nil, "", false, err
	}
	if user.ProfileStatus == domain.ProfileBanned || user.ProfileStatus == domain.ProfileDeleted {
		return nil, "", false, domain.Forbidden("this account is %s", user.ProfileStatus)
	}

	// Role drift: an admin promotion or demotion after the token was minted
	// takes effect mid-session by reissuing the cookie.
	if user.Role != claims.Role {
		fresh, err := s.tokens.GenerateAuthToken(user.ID, user.Email, user.Role)
		if err != nil {
			return nil, "", false, err
		}
		logger.InfoContext(ctx, "Auth token reissued after role change",
			"user_id", user.ID, "token_role", claims.Role, "current_role", user.Role)
		return user, fresh, true, nil
	}
	return user, "", false, nil
}

func (s *authService) ChangePassword(ctx context.Context, userID int32, current, next string) error {
	if len(next) < 8 {
		return domain.Validation("password must be at least 8 characters",
			map[string]string{"new_password": "too short"})
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)) != nil {
		return domain.Unauthorized("current password is incorrect")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHash = string(hash)
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}
	logger.InfoContext(ctx, "Password changed", "user_id", userID)
	return nil
}

func (s *authService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if domain.IsKind(err, domain.KindNotFound) {
			// Do not reveal whether an account exists.
			logger.InfoContext(ctx, "Password reset requested for unknown email", "email", email)
			return nil
		}
		return err
	}

	token, code, err := user.GeneratePasswordReset(s.resetTTL)
	if err != nil {
		return err
	}
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}

	link := fmt.Sprintf("%s/reset-password?email=%s&token=%s", s.frontendURL, user.Email, token)
	if err := s.email.SendPasswordReset(ctx, user.Email, user.FullName, link, code); err != nil {
		return fmt.Errorf("failed to send password reset email: %w", err)
	}
	logger.InfoContext(ctx, "Password reset issued", "user_id", user.ID)
	return nil
}

func (s *authService) ResetPassword(ctx context.Context, email, tokenOrCode, newPassword string) error {
	if len(newPassword) < 8 {
		return domain.Validation("password must be at least 8 characters",
			map[string]string{"new_password": "too short"})
	}
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if domain.IsKind(err, domain.KindNotFound) {
			return domain.InvalidState("invalid or expired reset token")
		}
		return err
	}

	if !resetMatches(user, tokenOrCode) {
		return domain.InvalidState("invalid or expired reset token")
	}
	if user.PasswordResetExpiry == nil || time.Now().After(*user.PasswordResetExpiry) {
		return domain.InvalidState("invalid or expired reset token")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHash = string(hash)
	user.ClearPasswordReset()
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}
	logger.InfoContext(ctx, "Password reset completed", "user_id", user.ID)
	return nil
}

// resetMatches accepts either channel: the 6-digit code as issued, or the
// long token compared through its stored hash.
func resetMatches(user *domain.User, tokenOrCode string) bool {
	if len(tokenOrCode) == 6 && isAllDigits(tokenOrCode) {
		return user.PasswordResetCode != nil && *user.PasswordResetCode == tokenOrCode
	}
	return user.PasswordResetToken != nil && *user.PasswordResetToken == domain.HashToken(tokenOrCode)
}
