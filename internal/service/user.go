package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"memberhub-backend/internal/domain"
	"memberhub-backend/internal/logger"
	"memberhub-backend/internal/repository"
	"memberhub-backend/internal/storage"

	"golang.org/x/crypto/bcrypt"
)

type userService struct {
	users           repository.UserRepository
	invites         repository.InvitationRepository
	email           EmailService
	files           storage.Storage
	frontendURL     string
	promoCode       string
	verificationTTL time.Duration
}

func NewUserService(
	users repository.UserRepository,
	invites repository.InvitationRepository,
	email EmailService,
	files storage.Storage,
	frontendURL string,
	promoCode string,
	verificationTTL time.Duration,
) UserService {
	return &userService{
		users:           users,
		invites:         invites,
		email:           email,
		files:           files,
		frontendURL:     frontendURL,
		promoCode:       promoCode,
		verificationTTL: verificationTTL,
	}
}

func (s *userService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	if err := validateRegistration(in); err != nil {
		return nil, err
	}
	email := strings.TrimSpace(strings.ToLower(in.Email))

	// Resolve the invitation before any side effects. The promotional code
	// bypasses lookup entirely and never changes state.
	var inv *domain.InvitationCode
	if in.InvitationCode != s.promoCode || s.promoCode == "" {
		found, err := s.invites.GetByCode(ctx, in.InvitationCode)
		if err != nil {
			return nil, err
		}
		if found.Terminal() {
			return nil, domain.InvalidState("invitation code is %s", found.Status)
		}
		if time.Now().After(found.ExpiresAt) {
			if _, err := s.invites.UpdateStatus(ctx, found.ID,
				[]domain.InvitationStatus{domain.InvitationConsumable}, domain.InvitationExpired); err != nil {
				logger.ErrorContext(ctx, "Failed to mark invitation expired", "code", found.Code, "error", err)
			}
			return nil, domain.Expired("invitation code has expired")
		}
		if !strings.EqualFold(found.Email, email) {
			return nil, domain.Forbidden("invitation code was issued for a different email")
		}
		inv = found
	}

	// Image upload precedes user creation so a stored user always has a
	// resolvable image URL.
	stored, err := s.files.Upload(ctx, in.ImageFilename, in.ImageContentType, in.Image)
	if err != nil {
		return nil, domain.Validation("profile image upload failed: "+err.Error(),
			map[string]string{"image": "upload failed"})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		Email:             email,
		PasswordHash:      string(hash),
		FullName:          strings.TrimSpace(in.FullName),
		StudentID:         strings.TrimSpace(in.StudentID),
		Session:           strings.TrimSpace(in.Session),
		Batch:             strings.TrimSpace(in.Batch),
		Department:        strings.TrimSpace(in.Department),
		IsGraduated:       in.IsGraduated,
		PassingYear:       in.PassingYear,
		ContactNumber:     strings.TrimSpace(in.ContactNumber),
		Address:           strings.TrimSpace(in.Address),
		Bio:               strings.TrimSpace(in.Bio),
		ImageURL:          stored.URL,
		ImagePublicID:     stored.PublicID,
		SocialLinks:       in.SocialLinks,
		Role:              domain.RoleGuest,
		ApplicationStatus: domain.ApplicationPending,
	}
	user.ProfileStatus = domain.EvaluateProfile(domain.ViewOf(user))

	token, code, err := user.GenerateEmailVerification(s.verificationTTL)
	if err != nil {
		return nil, err
	}

	if err := s.users.Create(ctx, user); err != nil {
		if derr := s.files.Delete(ctx, stored.PublicID); derr != nil {
			logger.ErrorContext(ctx, "Failed to remove orphaned profile image",
				"public_id", stored.PublicID, "error", derr)
		}
		return nil, err
	}

	if inv != nil {
		ok, err := s.invites.UpdateStatus(ctx, inv.ID,
			[]domain.InvitationStatus{domain.InvitationConsumable}, domain.InvitationConsumed)
		if err != nil || !ok {
			// The user exists, so the code is unusable anyway; the nightly
			// reconcile sweep picks up the mismatch.
			logger.ErrorContext(ctx, "Failed to consume invitation after registration",
				"code", inv.Code, "user_id", user.ID, "error", err)
		}
	}

	link := fmt.Sprintf("%s/verify-email?email=%s&token=%s", s.frontendURL, email, token)
	if err := s.email.SendVerification(ctx, email, user.FullName, link, code); err != nil {
		logger.ErrorContext(ctx, "Verification email delivery failed",
			"email", email, "user_id", user.ID, "error", err)
	}

	logger.InfoContext(ctx, "User registered", "user_id", user.ID, "email", email)
	return user, nil
}

func validateRegistration(in RegisterInput) error {
	fields := map[string]string{}
	if strings.TrimSpace(in.Email) == "" {
		fields["email"] = "required"
	}
	if len(in.Password) < 8 {
		fields["password"] = "must be at least 8 characters"
	}
	if strings.TrimSpace(in.FullName) == "" {
		fields["full_name"] = "required"
	}
	if strings.TrimSpace(in.StudentID) == "" {
		fields["student_id"] = "required"
	}
	if strings.TrimSpace(in.Session) == "" {
		fields["session"] = "required"
	}
	if strings.TrimSpace(in.Department) == "" {
		fields["department"] = "required"
	}
	if strings.TrimSpace(in.ContactNumber) == "" {
		fields["contact_number"] = "required"
	}
	if in.InvitationCode == "" {
		fields["invitation_code"] = "required"
	}
	if in.Image == nil {
		fields["image"] = "profile image is required"
	}
	if in.IsGraduated && in.PassingYear == nil {
		fields["passing_year"] = "required for graduates"
	}
	if len(fields) > 0 {
		return domain.Validation("registration payload is incomplete", fields)
	}
	return nil
}

func (s *userService) GetProfile(ctx context.Context, identifier string) (*domain.User, error) {
	identifier = strings.TrimSpace(identifier)
	switch {
	case identifier == "":
		return nil, domain.Validation("identifier is required", nil)
	case strings.Contains(identifier, "@"):
		return s.users.GetByEmail(ctx, identifier)
	case isAllDigits(identifier):
		var id int32
		fmt.Sscanf(identifier, "%d", &id)
		return s.users.GetByID(ctx, id)
	default:
		return s.users.GetByStudentID(ctx, identifier)
	}
}

func (s *userService) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

// Fields an owner may patch on their own profile. Admins may additionally
// patch the admin-only set. Everything else is either protected (403) or
// unknown (400).
var (
	ownerPatchable = map[string]bool{
		"full_name":      true,
		"session":        true,
		"batch":          true,
		"department":     true,
		"is_graduated":   true,
		"passing_year":   true,
		"contact_number": true,
		"address":        true,
		"bio":            true,
		"social_links":   true,
	}
	adminPatchable = map[string]bool{
		"student_id":     true,
		"profile_status": true,
	}
	protectedFields = map[string]bool{
		"id":                 true,
		"email":              true,
		"password":           true,
		"password_hash":      true,
		"role":               true,
		"is_verified":        true,
		"application_status": true,
		"image_url":          true,
	}
)

func (s *userService) Patch(ctx context.Context, actor Actor, userID int32, updates map[string]any) (*domain.User, error) {
	if actor.ID != userID && !actor.IsAdmin() {
		return nil, domain.Forbidden("you may only update your own profile")
	}

	unknown := map[string]string{}
	for key := range updates {
		if protectedFields[key] {
			return nil, domain.Forbidden("field %q cannot be updated through this endpoint", key)
		}
		if ownerPatchable[key] {
			continue
		}
		if adminPatchable[key] {
			if !actor.IsAdmin() {
				return nil, domain.Forbidden("field %q requires admin privileges", key)
			}
			continue
		}
		unknown[key] = "unknown field"
	}
	if len(unknown) > 0 {
		return nil, domain.Validation("unknown fields in update", unknown)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := applyProfilePatch(user, updates); err != nil {
		return nil, err
	}

	// Re-derive completion from the merged document. A direct banned or
	// deleted assignment sticks; the evaluator never lifts those.
	user.ProfileStatus = domain.EvaluateProfile(domain.ViewOf(user))

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func applyProfilePatch(u *domain.User, updates map[string]any) error {
	fields := map[string]string{}
	for key, raw := range updates {
		switch key {
		case "full_name":
			setString(&u.FullName, raw, key, fields)
		case "session":
			setString(&u.Session, raw, key, fields)
		case "batch":
			setString(&u.Batch, raw, key, fields)
		case "department":
			setString(&u.Department, raw, key, fields)
		case "contact_number":
			setString(&u.ContactNumber, raw, key, fields)
		case "address":
			setString(&u.Address, raw, key, fields)
		case "bio":
			setString(&u.Bio, raw, key, fields)
		case "student_id":
			setString(&u.StudentID, raw, key, fields)
		case "is_graduated":
			if b, ok := raw.(bool); ok {
				u.IsGraduated = b
			} else {
				fields[key] = "must be a boolean"
			}
		case "passing_year":
			switch v := raw.(type) {
			case nil:
				u.PassingYear = nil
			case float64:
				year := int32(v)
				u.PassingYear = &year
			default:
				fields[key] = "must be a number"
			}
		case "social_links":
			links, ok := raw.(map[string]any)
			if !ok {
				fields[key] = "must be an object"
				continue
			}
			if v, present := links["facebook"]; present {
				setString(&u.SocialLinks.Facebook, v, "social_links.facebook", fields)
			}
			if v, present := links["github"]; present {
				setString(&u.SocialLinks.GitHub, v, "social_links.github", fields)
			}
			if v, present := links["linkedin"]; present {
				setString(&u.SocialLinks.LinkedIn, v, "social_links.linkedin", fields)
			}
		case "profile_status":
			status, ok := raw.(string)
			if !ok || (domain.ProfileStatus(status) != domain.ProfileBanned &&
				domain.ProfileStatus(status) != domain.ProfileDeleted) {
				fields[key] = "may only be set to banned or deleted"
				continue
			}
			u.ProfileStatus = domain.ProfileStatus(status)
		}
	}
	if len(fields) > 0 {
		return domain.Validation("invalid field values", fields)
	}
	return nil
}

func setString(dst *string, raw any, key string, fields map[string]string) {
	s, ok := raw.(string)
	if !ok {
		fields[key] = "must be a string"
		return
	}
	*dst = strings.TrimSpace(s)
}

func (s *userService) UpdateImage(ctx context.Context, actor Actor, userID int32, filename, contentType string, r io.Reader) (*domain.User, error) {
	if actor.ID != userID && !actor.IsAdmin() {
		return nil, domain.Forbidden("you may only update your own profile image")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	stored, err := s.files.Upload(ctx, filename, contentType, r)
	if err != nil {
		return nil, domain.Validation("profile image upload failed: "+err.Error(),
			map[string]string{"image": "upload failed"})
	}

	oldID := user.ImagePublicID
	user.ImageURL = stored.URL
	user.ImagePublicID = stored.PublicID
	user.ProfileStatus = domain.EvaluateProfile(domain.ViewOf(user))

	if err := s.users.Update(ctx, user); err != nil {
		if derr := s.files.Delete(ctx, stored.PublicID); derr != nil {
			logger.ErrorContext(ctx, "Failed to remove orphaned profile image",
				"public_id", stored.PublicID, "error", derr)
		}
		return nil, err
	}

	if oldID != "" {
		if err := s.files.Delete(ctx, oldID); err != nil {
			logger.ErrorContext(ctx, "Failed to delete replaced profile image",
				"public_id", oldID, "user_id", userID, "error", err)
		}
	}
	return user, nil
}

func (s *userService) UpdateRole(ctx context.Context, userID int32, role domain.Role) (*domain.User, error) {
	if !domain.ValidRole(role) {
		return nil, domain.Validation("invalid role", map[string]string{"role": "unknown role"})
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Role = role
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	logger.InfoContext(ctx, "User role updated", "user_id", userID, "role", role)
	return user, nil
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
