package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"memberhub-backend/internal/domain"
	"memberhub-backend/internal/logger"
	"memberhub-backend/internal/repository"
	"memberhub-backend/internal/security"
)

const maxCodeMintAttempts = 5

type invitationService struct {
	invites     repository.InvitationRepository
	users       repository.UserRepository
	email       EmailService
	tokens      security.TokenManager
	frontendURL string
	inviteTTL   time.Duration
	promoCode   string
}

func NewInvitationService(
	invites repository.InvitationRepository,
	users repository.UserRepository,
	email EmailService,
	tokens security.TokenManager,
	frontendURL string,
	inviteTTL time.Duration,
	promoCode string,
) InvitationService {
	return &invitationService{
		invites:     invites,
		users:       users,
		email:       email,
		tokens:      tokens,
		frontendURL: frontendURL,
		inviteTTL:   inviteTTL,
		promoCode:   promoCode,
	}
}

func (s *invitationService) Issue(ctx context.Context, in IssueInvitationInput) (*IssueInvitationResult, error) {
	email := strings.TrimSpace(strings.ToLower(in.Email))
	if email == "" {
		return nil, domain.Validation("email is required", map[string]string{"email": "required"})
	}
	role := in.Role
	if role == "" {
		role = domain.RoleMember
	}
	if !domain.ValidRole(role) {
		return nil, domain.Validation("invalid role", map[string]string{"role": "unknown role"})
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, domain.Conflict("a user with this email already exists")
	} else if !domain.IsKind(err, domain.KindNotFound) {
		return nil, err
	}

	if existing, err := s.invites.GetByEmail(ctx, email); err == nil {
		if !existing.Terminal() {
			return nil, domain.Conflict("a consumable invitation already exists for this email")
		}
	} else if !domain.IsKind(err, domain.KindNotFound) {
		return nil, err
	}

	inv, err := s.mint(ctx, email, role, in.FormID)
	if err != nil {
		return nil, err
	}

	link := fmt.Sprintf("%s/register?code=%s", s.frontendURL, inv.Code)
	delivered := true
	if err := s.email.SendInvitation(ctx, email, inv.Code, link); err != nil {
		logger.ErrorContext(ctx, "Invitation email delivery failed",
			"email", email, "code", inv.Code, "error", err)
		delivered = false
	}

	return &IssueInvitationResult{Invitation: inv, EmailDelivered: delivered}, nil
}

// mint generates a code and inserts it, retrying on code-uniqueness races.
// An email-uniqueness violation is a real conflict and is returned as-is.
func (s *invitationService) mint(ctx context.Context, email string, role domain.Role, formID string) (*domain.InvitationCode, error) {
	for attempt := 0; attempt < maxCodeMintAttempts; attempt++ {
		code, err := domain.NewInviteCode()
		if err != nil {
			return nil, err
		}
		inv := &domain.InvitationCode{
			Code:      code,
			Email:     email,
			Role:      role,
			Kind:      domain.InvitationStandard,
			Status:    domain.InvitationConsumable,
			FormID:    formID,
			ExpiresAt: time.Now().Add(s.inviteTTL),
		}
		err = s.invites.Create(ctx, inv)
		if err == nil {
			return inv, nil
		}
		if errors.Is(err, repository.ErrDuplicateInviteCode) {
			logger.Warn("Invitation code collision, retrying", "attempt", attempt+1)
			continue
		}
		return nil, err
	}
	return nil, fmt.Errorf("failed to mint a unique invitation code after %d attempts", maxCodeMintAttempts)
}

func (s *invitationService) Verify(ctx context.Context, code string) (*VerifyInvitationResult, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, domain.Validation("invitation code is required", map[string]string{"code": "required"})
	}

	if code == s.promoCode && s.promoCode != "" {
		gate, err := s.tokens.GenerateFormGateToken(code, "")
		if err != nil {
			return nil, err
		}
		return &VerifyInvitationResult{
			Role:      domain.RoleGuest,
			Status:    domain.InvitationConsumable,
			GateToken: gate,
		}, nil
	}

	inv, err := s.invites.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	// Terminal status takes precedence over wall-clock expiry: a consumed
	// code that is also past its date reports consumed, not expired.
	if inv.Terminal() {
		return nil, domain.InvalidState("invitation code is %s", inv.Status)
	}
	if time.Now().After(inv.ExpiresAt) {
		if _, err := s.invites.UpdateStatus(ctx, inv.ID,
			[]domain.InvitationStatus{domain.InvitationConsumable}, domain.InvitationExpired); err != nil {
			logger.ErrorContext(ctx, "Failed to mark invitation expired", "code", code, "error", err)
		}
		return nil, domain.Expired("invitation code has expired")
	}

	gate, err := s.tokens.GenerateFormGateToken(inv.Code, inv.Email)
	if err != nil {
		return nil, err
	}
	return &VerifyInvitationResult{
		Email:     inv.Email,
		Role:      inv.Role,
		FormID:    inv.FormID,
		Status:    inv.Status,
		GateToken: gate,
	}, nil
}

func (s *invitationService) Cancel(ctx context.Context, code string) (*domain.InvitationCode, error) {
	inv, err := s.invites.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	ok, err := s.invites.UpdateStatus(ctx, inv.ID,
		[]domain.InvitationStatus{domain.InvitationConsumable}, domain.InvitationCancelled)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Lost a race or the code was already terminal; report its state.
		if fresh, err := s.invites.GetByCode(ctx, code); err == nil {
			inv = fresh
		}
		return nil, domain.InvalidState("only consumable codes can be cancelled; code is %s", inv.Status)
	}
	inv.Status = domain.InvitationCancelled
	return inv, nil
}

func (s *invitationService) Get(ctx context.Context, code string) (*domain.InvitationCode, error) {
	return s.invites.GetByCode(ctx, code)
}
