package domain

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
	"time"
)

type Role string

const (
	RoleGuest     Role = "guest"
	RoleMember    Role = "member"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
	RoleAlumni    Role = "alumni"
)

// ValidRole reports whether r is one of the known roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleGuest, RoleMember, RoleModerator, RoleAdmin, RoleAlumni:
		return true
	}
	return false
}

type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "pending"
	ApplicationApproved ApplicationStatus = "approved"
	ApplicationRejected ApplicationStatus = "rejected"
)

type ProfileStatus string

const (
	ProfileIncomplete ProfileStatus = "incomplete"
	ProfileActive     ProfileStatus = "active"
	ProfileDeleted    ProfileStatus = "deleted"
	ProfileBanned     ProfileStatus = "banned"
)

type SocialLinks struct {
	Facebook string `json:"facebook"`
	GitHub   string `json:"github"`
	LinkedIn string `json:"linkedin"`
}

// User is a club member at any stage of the application pipeline, from
// unverified registration through admin approval.
type User struct {
	ID           int32  `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`

	// Email verification channels. The token is stored as its sha256 hex;
	// the numeric code is stored as issued. Both share one expiry and are
	// cleared together on success.
	IsVerified              bool       `json:"is_verified"`
	VerificationToken       *string    `json:"-"`
	VerificationCode        *string    `json:"-"`
	VerificationTokenExpiry *time.Time `json:"-"`
	EmailVerifiedAt         *time.Time `json:"email_verified_at,omitempty"`

	PasswordResetToken  *string    `json:"-"`
	PasswordResetCode   *string    `json:"-"`
	PasswordResetExpiry *time.Time `json:"-"`

	FullName      string `json:"full_name"`
	StudentID     string `json:"student_id"`
	Session       string `json:"session"`
	Batch         string `json:"batch"`
	Department    string `json:"department"`
	IsGraduated   bool   `json:"is_graduated"`
	PassingYear   *int32 `json:"passing_year,omitempty"`
	ContactNumber string `json:"contact_number"`
	Address       string `json:"address"`
	Bio           string `json:"bio"`
	ImageURL      string `json:"image_url"`
	ImagePublicID string `json:"-"`

	SocialLinks SocialLinks `json:"social_links"`

	Role              Role              `json:"role"`
	ApplicationStatus ApplicationStatus `json:"application_status"`
	ProfileStatus     ProfileStatus     `json:"profile_status"`

	ApprovedBy      *int32     `json:"approved_by,omitempty"`
	ApprovedAt      *time.Time `json:"approved_at,omitempty"`
	RejectionReason string     `json:"rejection_reason,omitempty"`

	RequestedFastVerificationCount int32      `json:"-"`
	LastFastVerificationRequest    *time.Time `json:"-"`

	LastLogin *time.Time `json:"last_login,omitempty"`
	CreatedOn time.Time  `json:"created_on"`
	UpdatedOn time.Time  `json:"updated_on"`
}

// GenerateEmailVerification arms both verification channels: a high-entropy
// token (returned in plaintext, persisted as sha256 hex) and an independent
// 6-digit numeric code. Both share a single expiry window.
func (u *User) GenerateEmailVerification(ttl time.Duration) (token, code string, err error) {
	token, hashed, err := newSecretToken()
	if err != nil {
		return "", "", err
	}
	code, err = NumericCode()
	if err != nil {
		return "", "", err
	}
	expiry := time.Now().Add(ttl)
	u.VerificationToken = &hashed
	u.VerificationCode = &code
	u.VerificationTokenExpiry = &expiry
	return token, code, nil
}

// GeneratePasswordReset arms the reset channels, mirroring the verification
// layout: hashed token plus numeric code under one expiry.
func (u *User) GeneratePasswordReset(ttl time.Duration) (token, code string, err error) {
	token, hashed, err := newSecretToken()
	if err != nil {
		return "", "", err
	}
	code, err = NumericCode()
	if err != nil {
		return "", "", err
	}
	expiry := time.Now().Add(ttl)
	u.PasswordResetToken = &hashed
	u.PasswordResetCode = &code
	u.PasswordResetExpiry = &expiry
	return token, code, nil
}

// ClearEmailVerification unsets both verification channels. Using either
// channel successfully invalidates the other.
func (u *User) ClearEmailVerification() {
	u.VerificationToken = nil
	u.VerificationCode = nil
	u.VerificationTokenExpiry = nil
}

// ClearPasswordReset unsets all password-reset artifacts.
func (u *User) ClearPasswordReset() {
	u.PasswordResetToken = nil
	u.PasswordResetCode = nil
	u.PasswordResetExpiry = nil
}

// HashToken returns the sha256 hex of a plaintext token, the form in which
// verification and reset tokens are persisted.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// NumericCode returns a random 6-digit code in the 100000-999999 range.
func NumericCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

func newSecretToken() (plain, hashed string, err error) {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "", "", err
	}
	plain = hex.EncodeToString(buf)
	return plain, HashToken(plain), nil
}
