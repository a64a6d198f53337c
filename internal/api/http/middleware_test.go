package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"memberhub-backend/internal/domain"
	"memberhub-backend/internal/security"
	"memberhub-backend/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	args := m.Called(ctx, email, password)
	var user *domain.User
	if u := args.Get(0); u != nil {
		user = u.(*domain.User)
	}
	return user, args.String(1), args.Error(2)
}

func (m *MockAuthService) SessionUser(ctx context.Context, claims *security.Claims) (*domain.User, string, bool, error) {
	args := m.Called(ctx, claims)
	var user *domain.User
	if u := args.Get(0); u != nil {
		user = u.(*domain.User)
	}
	return user, args.String(1), args.Bool(2), args.Error(3)
}

func (m *MockAuthService) ChangePassword(ctx context.Context, userID int32, current, next string) error {
	args := m.Called(ctx, userID, current, next)
	return args.Error(0)
}

func (m *MockAuthService) RequestPasswordReset(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func (m *MockAuthService) ResetPassword(ctx context.Context, email, tokenOrCode, newPassword string) error {
	args := m.Called(ctx, email, tokenOrCode, newPassword)
	return args.Error(0)
}

var _ service.AuthService = (*MockAuthService)(nil)

func testTokenManager() security.TokenManager {
	return security.NewTokenManager(
		"0123456789abcdef0123456789abcdef", time.Hour, 30*time.Minute)
}

func testMiddleware(auth *MockAuthService) *Middleware {
	tm := testTokenManager()
	cookies := &cookieWriter{secure: false, authTTL: tm.AuthTTL(), gateTTL: tm.GateTTL()}
	return NewMiddleware(auth, tm, cookies)
}

func okHandler() (http.Handler, *bool) {
	called := false
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}), &called
}

func TestMiddleware_Authenticate(t *testing.T) {
	tm := testTokenManager()

	t.Run("NoCookie", func(t *testing.T) {
		mw := testMiddleware(new(MockAuthService))
		next, called := okHandler()
		rec := httptest.NewRecorder()

		mw.Authenticate(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.False(t, *called)
	})

	t.Run("GateTokenRejected", func(t *testing.T) {
		mw := testMiddleware(new(MockAuthService))
		next, called := okHandler()
		gate, _ := tm.GenerateFormGateToken("ABC234", "a@x.com")
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: authCookieName, Value: gate})
		rec := httptest.NewRecorder()

		mw.Authenticate(next).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.False(t, *called)
	})

	t.Run("ValidSession", func(t *testing.T) {
		auth := new(MockAuthService)
		mw := testMiddleware(auth)
		user := &domain.User{ID: 3, Role: domain.RoleMember}
		auth.On("SessionUser", mock.Anything, mock.AnythingOfType("*security.Claims")).
			Return(user, "", false, nil)

		var seen *domain.User
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = CurrentUser(r)
		})

		token, _ := tm.GenerateAuthToken(3, "m@x.com", domain.RoleMember)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: authCookieName, Value: token})
		rec := httptest.NewRecorder()

		mw.Authenticate(next).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, user, seen)
	})

	t.Run("RoleDriftReissuesCookies", func(t *testing.T) {
		auth := new(MockAuthService)
		mw := testMiddleware(auth)
		user := &domain.User{ID: 3, Role: domain.RoleAdmin}
		fresh, _ := tm.GenerateAuthToken(3, "m@x.com", domain.RoleAdmin)
		auth.On("SessionUser", mock.Anything, mock.AnythingOfType("*security.Claims")).
			Return(user, fresh, true, nil)

		next, _ := okHandler()
		token, _ := tm.GenerateAuthToken(3, "m@x.com", domain.RoleMember)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: authCookieName, Value: token})
		rec := httptest.NewRecorder()

		mw.Authenticate(next).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)

		cookies := rec.Result().Cookies()
		var gotAuth, gotRole *http.Cookie
		for _, c := range cookies {
			switch c.Name {
			case authCookieName:
				gotAuth = c
			case roleCookieName:
				gotRole = c
			}
		}
		if assert.NotNil(t, gotAuth) {
			assert.Equal(t, fresh, gotAuth.Value)
			assert.True(t, gotAuth.HttpOnly)
		}
		if assert.NotNil(t, gotRole) {
			assert.Equal(t, "admin", gotRole.Value)
			assert.True(t, gotRole.HttpOnly)
		}
	})

	t.Run("BannedAccountBlocked", func(t *testing.T) {
		auth := new(MockAuthService)
		mw := testMiddleware(auth)
		auth.On("SessionUser", mock.Anything, mock.AnythingOfType("*security.Claims")).
			Return(nil, "", false, domain.Forbidden("this account is banned"))

		next, called := okHandler()
		token, _ := tm.GenerateAuthToken(3, "m@x.com", domain.RoleMember)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: authCookieName, Value: token})
		rec := httptest.NewRecorder()

		mw.Authenticate(next).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.False(t, *called)
	})
}

func TestMiddleware_RequireRoles(t *testing.T) {
	mw := testMiddleware(new(MockAuthService))

	serve := func(role domain.Role) *httptest.ResponseRecorder {
		next, _ := okHandler()
		handler := mw.RequireRoles(domain.RoleAdmin)(next)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		ctx := context.WithValue(req.Context(), userContextKey, &domain.User{ID: 1, Role: role})
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req.WithContext(ctx))
		return rec
	}

	assert.Equal(t, http.StatusOK, serve(domain.RoleAdmin).Code)
	assert.Equal(t, http.StatusForbidden, serve(domain.RoleMember).Code)
}

func TestMiddleware_RequireGate(t *testing.T) {
	tm := testTokenManager()
	mw := testMiddleware(new(MockAuthService))

	t.Run("NoGateCookie", func(t *testing.T) {
		next, called := okHandler()
		rec := httptest.NewRecorder()
		mw.RequireGate(next).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/register", nil))
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.False(t, *called)
	})

	t.Run("AuthTokenIsNotAGate", func(t *testing.T) {
		next, called := okHandler()
		token, _ := tm.GenerateAuthToken(3, "m@x.com", domain.RoleMember)
		req := httptest.NewRequest(http.MethodPost, "/register", nil)
		req.AddCookie(&http.Cookie{Name: gateCookieName, Value: token})
		rec := httptest.NewRecorder()

		mw.RequireGate(next).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.False(t, *called)
	})

	t.Run("ValidGate", func(t *testing.T) {
		var seen *security.Claims
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = GateClaims(r)
		})
		gate, _ := tm.GenerateFormGateToken("ABC234", "a@x.com")
		req := httptest.NewRequest(http.MethodPost, "/register", nil)
		req.AddCookie(&http.Cookie{Name: gateCookieName, Value: gate})
		rec := httptest.NewRecorder()

		mw.RequireGate(next).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.NotNil(t, seen)
		assert.Equal(t, "ABC234", seen.Code)
	})
}

func TestStatusOf(t *testing.T) {
	cases := map[error]int{
		domain.Validation("v", nil):     http.StatusBadRequest,
		domain.InvalidState("s"):        http.StatusBadRequest,
		domain.Conflict("c"):            http.StatusBadRequest,
		domain.Unauthorized("u"):        http.StatusUnauthorized,
		domain.Forbidden("f"):           http.StatusForbidden,
		domain.NotFound("n"):            http.StatusNotFound,
		domain.Expired("e"):             http.StatusGone,
		domain.RateLimited("r"):         http.StatusTooManyRequests,
		assert.AnError:                  http.StatusInternalServerError,
	}
	for err, want := range cases {
		assert.Equal(t, want, statusOf(err), err.Error())
	}
}
