package service

import (
	"context"
	"testing"
	"time"

	"memberhub-backend/internal/domain"
	"memberhub-backend/internal/security"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"golang.org/x/crypto/bcrypt"
)

func newAuthFixture() (*MockUserRepo, *MockEmailService, AuthService) {
	users := new(MockUserRepo)
	email := new(MockEmailService)
	svc := NewAuthService(users, email, newTestTokenManager(),
		"http://localhost:3000", 30*time.Minute)
	return users, email, svc
}

func approvedUser(password string) *domain.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	return &domain.User{
		ID:                3,
		Email:             "m@x.com",
		FullName:          "Mori",
		PasswordHash:      string(hash),
		IsVerified:        true,
		Role:              domain.RoleMember,
		ApplicationStatus: domain.ApplicationApproved,
		ProfileStatus:     domain.ProfileActive,
	}
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		users, _, svc := newAuthFixture()
		user := approvedUser("hunter2-hunter2")
		users.On("GetByEmail", ctx, "m@x.com").Return(user, nil)
		users.On("UpdateLastLogin", ctx, int32(3), mock.AnythingOfType("time.Time")).Return(nil)

		got, token, err := svc.Login(ctx, "m@x.com", "hunter2-hunter2")
		assert.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.NotNil(t, got.LastLogin)

		claims, err := newTestTokenManager().ValidateToken(token)
		assert.NoError(t, err)
		assert.Equal(t, security.TokenTypeAuth, claims.Type)
		assert.Equal(t, int32(3), claims.UserID)
		assert.Equal(t, domain.RoleMember, claims.Role)
	})

	t.Run("UnknownEmail", func(t *testing.T) {
		users, _, svc := newAuthFixture()
		users.On("GetByEmail", ctx, "ghost@x.com").Return(nil, domain.NotFound("user not found"))

		user, _, err := svc.Login(ctx, "ghost@x.com", "whatever-pass")
		assert.True(t, domain.IsKind(err, domain.KindUnauthorized))
		assert.Nil(t, user)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		users, _, svc := newAuthFixture()
		users.On("GetByEmail", ctx, "m@x.com").Return(approvedUser("hunter2-hunter2"), nil)

		user, _, err := svc.Login(ctx, "m@x.com", "wrong-password")
		assert.True(t, domain.IsKind(err, domain.KindUnauthorized))
		assert.Nil(t, user)
	})

	t.Run("UnverifiedGate", func(t *testing.T) {
		users, _, svc := newAuthFixture()
		user := approvedUser("hunter2-hunter2")
		user.IsVerified = false
		users.On("GetByEmail", ctx, "m@x.com").Return(user, nil)

		got, token, err := svc.Login(ctx, "m@x.com", "hunter2-hunter2")
		assert.True(t, domain.IsKind(err, domain.KindUnauthorized))
		assert.Contains(t, err.Error(), "not verified")
		assert.Empty(t, token)
		assert.NotNil(t, got, "gate failures return the user for the response payload")
	})

	t.Run("RejectedGate", func(t *testing.T) {
		users, _, svc := newAuthFixture()
		user := approvedUser("hunter2-hunter2")
		user.ApplicationStatus = domain.ApplicationRejected
		user.RejectionReason = "incomplete profile"
		users.On("GetByEmail", ctx, "m@x.com").Return(user, nil)

		got, _, err := svc.Login(ctx, "m@x.com", "hunter2-hunter2")
		assert.True(t, domain.IsKind(err, domain.KindUnauthorized))
		assert.Contains(t, err.Error(), "rejected")
		assert.NotNil(t, got)
	})

	t.Run("PendingGate", func(t *testing.T) {
		users, _, svc := newAuthFixture()
		user := approvedUser("hunter2-hunter2")
		user.ApplicationStatus = domain.ApplicationPending
		users.On("GetByEmail", ctx, "m@x.com").Return(user, nil)

		_, _, err := svc.Login(ctx, "m@x.com", "hunter2-hunter2")
		assert.True(t, domain.IsKind(err, domain.KindUnauthorized))
		assert.Contains(t, err.Error(), "awaiting")
	})

	t.Run("BannedGate", func(t *testing.T) {
		users, _, svc := newAuthFixture()
		user := approvedUser("hunter2-hunter2")
		user.ProfileStatus = domain.ProfileBanned
		users.On("GetByEmail", ctx, "m@x.com").Return(user, nil)

		_, _, err := svc.Login(ctx, "m@x.com", "hunter2-hunter2")
		assert.True(t, domain.IsKind(err, domain.KindForbidden))
	})
}

func TestAuthService_SessionUser(t *testing.T) {
	ctx := context.Background()
	tm := newTestTokenManager()

	t.Run("RoleMatches", func(t *testing.T) {
		users, _, svc := newAuthFixture()
		user := approvedUser("x")
		users.On("GetByID", ctx, int32(3)).Return(user, nil)

		got, fresh, reissued, err := svc.SessionUser(ctx, &security.Claims{
			UserID: 3, Role: domain.RoleMember, Type: security.TokenTypeAuth,
		})
		assert.NoError(t, err)
		assert.False(t, reissued)
		assert.Empty(t, fresh)
		assert.Equal(t, user, got)
	})

	t.Run("RoleDriftReissues", func(t *testing.T) {
		users, _, svc := newAuthFixture()
		user := approvedUser("x")
		user.Role = domain.RoleAdmin
		users.On("GetByID", ctx, int32(3)).Return(user, nil)

		got, fresh, reissued, err := svc.SessionUser(ctx, &security.Claims{
			UserID: 3, Role: domain.RoleMember, Type: security.TokenTypeAuth,
		})
		assert.NoError(t, err)
		assert.True(t, reissued)
		assert.Equal(t, domain.RoleAdmin, got.Role)

		claims, err := tm.ValidateToken(fresh)
		assert.NoError(t, err)
		assert.Equal(t, domain.RoleAdmin, claims.Role)
	})

	t.Run("DeletedAccount", func(t *testing.T) {
		users, _, svc := newAuthFixture()
		user := approvedUser("x")
		user.ProfileStatus = domain.ProfileDeleted
		users.On("GetByID", ctx, int32(3)).Return(user, nil)

		_, _, _, err := svc.SessionUser(ctx, &security.Claims{
			UserID: 3, Role: domain.RoleMember, Type: security.TokenTypeAuth,
		})
		assert.True(t, domain.IsKind(err, domain.KindForbidden))
	})

	t.Run("VanishedAccount", func(t *testing.T) {
		users, _, svc := newAuthFixture()
		users.On("GetByID", ctx, int32(3)).Return(nil, domain.NotFound("user not found"))

		_, _, _, err := svc.SessionUser(ctx, &security.Claims{
			UserID: 3, Role: domain.RoleMember, Type: security.TokenTypeAuth,
		})
		assert.True(t, domain.IsKind(err, domain.KindUnauthorized))
	})
}

func TestAuthService_PasswordReset(t *testing.T) {
	ctx := context.Background()

	t.Run("RequestUnknownEmailSilent", func(t *testing.T) {
		users, email, svc := newAuthFixture()
		users.On("GetByEmail", ctx, "ghost@x.com").Return(nil, domain.NotFound("user not found"))

		err := svc.RequestPasswordReset(ctx, "ghost@x.com")
		assert.NoError(t, err)
		email.AssertNotCalled(t, "SendPasswordReset",
			ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("RequestArmsChannelsAndSends", func(t *testing.T) {
		users, email, svc := newAuthFixture()
		user := approvedUser("x")
		users.On("GetByEmail", ctx, "m@x.com").Return(user, nil)
		users.On("Update", ctx, user).Return(nil)
		email.On("SendPasswordReset", ctx, "m@x.com", "Mori", mock.Anything, mock.Anything).Return(nil)

		err := svc.RequestPasswordReset(ctx, "m@x.com")
		assert.NoError(t, err)
		assert.NotNil(t, user.PasswordResetToken)
		assert.NotNil(t, user.PasswordResetCode)
		assert.NotNil(t, user.PasswordResetExpiry)
	})

	t.Run("ResetByCode", func(t *testing.T) {
		users, _, svc := newAuthFixture()
		user := approvedUser("old-password-1")
		code := "246810"
		expiry := time.Now().Add(10 * time.Minute)
		user.PasswordResetCode = &code
		user.PasswordResetExpiry = &expiry
		users.On("GetByEmail", ctx, "m@x.com").Return(user, nil)
		users.On("Update", ctx, user).Return(nil)

		err := svc.ResetPassword(ctx, "m@x.com", "246810", "new-password-1")
		assert.NoError(t, err)
		assert.Nil(t, user.PasswordResetCode)
		assert.NoError(t, bcrypt.CompareHashAndPassword(
			[]byte(user.PasswordHash), []byte("new-password-1")))
	})

	t.Run("ResetByToken", func(t *testing.T) {
		users, _, svc := newAuthFixture()
		user := approvedUser("old-password-1")
		hashed := domain.HashToken("plain-reset-token")
		expiry := time.Now().Add(10 * time.Minute)
		user.PasswordResetToken = &hashed
		user.PasswordResetExpiry = &expiry
		users.On("GetByEmail", ctx, "m@x.com").Return(user, nil)
		users.On("Update", ctx, user).Return(nil)

		err := svc.ResetPassword(ctx, "m@x.com", "plain-reset-token", "new-password-1")
		assert.NoError(t, err)
	})

	t.Run("ExpiredReset", func(t *testing.T) {
		users, _, svc := newAuthFixture()
		user := approvedUser("old-password-1")
		code := "246810"
		expiry := time.Now().Add(-time.Minute)
		user.PasswordResetCode = &code
		user.PasswordResetExpiry = &expiry
		users.On("GetByEmail", ctx, "m@x.com").Return(user, nil)

		err := svc.ResetPassword(ctx, "m@x.com", "246810", "new-password-1")
		assert.True(t, domain.IsKind(err, domain.KindInvalidState))
	})
}

func TestAuthService_ChangePassword(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		users, _, svc := newAuthFixture()
		user := approvedUser("current-pass-1")
		users.On("GetByID", ctx, int32(3)).Return(user, nil)
		users.On("Update", ctx, user).Return(nil)

		err := svc.ChangePassword(ctx, 3, "current-pass-1", "next-password-1")
		assert.NoError(t, err)
		assert.NoError(t, bcrypt.CompareHashAndPassword(
			[]byte(user.PasswordHash), []byte("next-password-1")))
	})

	t.Run("WrongCurrentPassword", func(t *testing.T) {
		users, _, svc := newAuthFixture()
		users.On("GetByID", ctx, int32(3)).Return(approvedUser("current-pass-1"), nil)

		err := svc.ChangePassword(ctx, 3, "nope", "next-password-1")
		assert.True(t, domain.IsKind(err, domain.KindUnauthorized))
	})

	t.Run("ShortNewPassword", func(t *testing.T) {
		_, _, svc := newAuthFixture()
		err := svc.ChangePassword(ctx, 3, "current-pass-1", "short")
		assert.True(t, domain.IsKind(err, domain.KindValidation))
	})
}
