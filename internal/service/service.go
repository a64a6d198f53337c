package service

import (
	"context"
	"io"

	"memberhub-backend/internal/domain"
	"memberhub-backend/internal/security"
)

// Actor identifies who is performing an operation, used for ownership and
// role checks on profile mutations.
type Actor struct {
	ID   int32
	Role domain.Role
}

func (a Actor) IsAdmin() bool {
	return a.Role == domain.RoleAdmin
}

// IssueInvitationInput carries the admin request to mint a new code.
type IssueInvitationInput struct {
	Email  string
	Role   domain.Role
	FormID string
}

// IssueInvitationResult reports the minted code. EmailDelivered is false when
// the code was persisted but the invitation email could not be sent; the code
// remains usable and can be re-sent out of band.
type IssueInvitationResult struct {
	Invitation     *domain.InvitationCode
	EmailDelivered bool
}

// VerifyInvitationResult is returned to the public verification endpoint. The
// gate token authorizes access to the registration form for a short window.
type VerifyInvitationResult struct {
	Email     string                  `json:"email"`
	Role      domain.Role             `json:"role"`
	FormID    string                  `json:"form_id,omitempty"`
	Status    domain.InvitationStatus `json:"status"`
	GateToken string                  `json:"-"`
}

// RegisterInput is the registration form payload plus the profile image
// stream. Image upload happens before the user row is created.
type RegisterInput struct {
	InvitationCode string
	Email          string
	Password       string
	FullName       string
	StudentID      string
	Session        string
	Batch          string
	Department     string
	IsGraduated    bool
	PassingYear    *int32
	ContactNumber  string
	Address        string
	Bio            string
	SocialLinks    domain.SocialLinks

	ImageFilename    string
	ImageContentType string
	Image            io.Reader
}

type InvitationService interface {
	Issue(ctx context.Context, in IssueInvitationInput) (*IssueInvitationResult, error)
	// Verify checks a code for the public registration gate. Terminal status
	// wins over wall-clock expiry when both apply.
	Verify(ctx context.Context, code string) (*VerifyInvitationResult, error)
	Cancel(ctx context.Context, code string) (*domain.InvitationCode, error)
	Get(ctx context.Context, code string) (*domain.InvitationCode, error)
}

type UserService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	// GetProfile resolves by numeric ID, email, or student ID depending on
	// the identifier's shape.
	GetProfile(ctx context.Context, identifier string) (*domain.User, error)
	GetByID(ctx context.Context, id int32) (*domain.User, error)
	// Patch applies an allow-listed partial update. Owners and admins have
	// different allow-lists; protected fields are rejected outright.
	Patch(ctx context.Context, actor Actor, userID int32, updates map[string]any) (*domain.User, error)
	UpdateImage(ctx context.Context, actor Actor, userID int32, filename, contentType string, r io.Reader) (*domain.User, error)
	UpdateRole(ctx context.Context, userID int32, role domain.Role) (*domain.User, error)
}

type VerificationService interface {
	VerifyByToken(ctx context.Context, email, token string) (*domain.User, error)
	VerifyByCode(ctx context.Context, email, code string) (*domain.User, error)
	// RequestFastVerification asks admins to expedite approval, limited to a
	// small daily quota with a cooldown between requests.
	RequestFastVerification(ctx context.Context, userID int32) (*domain.User, error)
}

type AuthService interface {
	// Login returns the user and a signed auth token. On a gate failure
	// (unverified, pending, rejected) the user is returned alongside the
	// error so handlers can shape the response.
	Login(ctx context.Context, email, password string) (*domain.User, string, error)
	// SessionUser resolves the current user from validated claims. When the
	// persisted role differs from the token's, a fresh token is returned and
	// reissued must be honored by the transport.
	SessionUser(ctx context.Context, claims *security.Claims) (user *domain.User, freshToken string, reissued bool, err error)
	ChangePassword(ctx context.Context, userID int32, current, next string) error
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, email, tokenOrCode, newPassword string) error
}

type AdminService interface {
	Approve(ctx context.Context, adminID, userID int32) (*domain.User, error)
	Reject(ctx context.Context, adminID, userID int32, reason string) (*domain.User, error)
	ListPendingApplications(ctx context.Context) ([]domain.User, error)
	ListMembers(ctx context.Context) ([]domain.User, error)
}

type DashboardService interface {
	AdminStats(ctx context.Context) (*domain.MembershipStats, error)
	MemberDashboard(ctx context.Context, userID int32) (*domain.MemberDashboard, error)
}

// ApplicantAlert is the snapshot mailed to admins when someone verifies via
// the numeric code channel or requests fast verification.
type ApplicantAlert struct {
	FullName      string
	Email         string
	StudentID     string
	Session       string
	Batch         string
	Department    string
	ContactNumber string
	ImageURL      string
	ProfileLink   string
	Reason        string
}

type EmailService interface {
	SendInvitation(ctx context.Context, to string, code string, link string) error
	SendVerification(ctx context.Context, to, name, link, code string) error
	SendPasswordReset(ctx context.Context, to, name, link, code string) error
	SendStatusNotification(ctx context.Context, to, name string, status domain.ApplicationStatus, reason string) error
	SendApplicantAlert(ctx context.Context, to []string, alert ApplicantAlert) error
}
