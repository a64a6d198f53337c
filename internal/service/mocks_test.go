package service

import (
	"context"
	"io"
	"time"

	"memberhub-backend/internal/domain"
	"memberhub-backend/internal/storage"

	"github.com/stretchr/testify/mock"
)

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserRepo) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	args := m.Called(ctx, id)
	if u := args.Get(0); u != nil {
		return u.(*domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if u := args.Get(0); u != nil {
		return u.(*domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepo) GetByStudentID(ctx context.Context, studentID string) (*domain.User, error) {
	args := m.Called(ctx, studentID)
	if u := args.Get(0); u != nil {
		return u.(*domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepo) Update(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserRepo) UpdateLastLogin(ctx context.Context, id int32, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *MockUserRepo) RecordFastVerification(ctx context.Context, id int32, count int32, at time.Time) error {
	args := m.Called(ctx, id, count, at)
	return args.Error(0)
}

func (m *MockUserRepo) ListMembers(ctx context.Context) ([]domain.User, error) {
	args := m.Called(ctx)
	if u := args.Get(0); u != nil {
		return u.([]domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepo) ListPendingApplications(ctx context.Context) ([]domain.User, error) {
	args := m.Called(ctx)
	if u := args.Get(0); u != nil {
		return u.([]domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepo) ListAdminEmails(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if e := args.Get(0); e != nil {
		return e.([]string), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockInviteRepo struct {
	mock.Mock
}

func (m *MockInviteRepo) Create(ctx context.Context, inv *domain.InvitationCode) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}

func (m *MockInviteRepo) GetByCode(ctx context.Context, code string) (*domain.InvitationCode, error) {
	args := m.Called(ctx, code)
	if inv := args.Get(0); inv != nil {
		return inv.(*domain.InvitationCode), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockInviteRepo) GetByEmail(ctx context.Context, email string) (*domain.InvitationCode, error) {
	args := m.Called(ctx, email)
	if inv := args.Get(0); inv != nil {
		return inv.(*domain.InvitationCode), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockInviteRepo) UpdateStatus(ctx context.Context, id int32, from []domain.InvitationStatus, to domain.InvitationStatus) (bool, error) {
	args := m.Called(ctx, id, from, to)
	return args.Bool(0), args.Error(1)
}

func (m *MockInviteRepo) ExpireOverdue(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInviteRepo) ListConsumedWithoutUser(ctx context.Context) ([]domain.InvitationCode, error) {
	args := m.Called(ctx)
	if inv := args.Get(0); inv != nil {
		return inv.([]domain.InvitationCode), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockInviteRepo) PurgeTerminalBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

type MockStatsRepo struct {
	mock.Mock
}

func (m *MockStatsRepo) MembershipStats(ctx context.Context) (*domain.MembershipStats, error) {
	args := m.Called(ctx)
	if s := args.Get(0); s != nil {
		return s.(*domain.MembershipStats), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendInvitation(ctx context.Context, to, code, link string) error {
	args := m.Called(ctx, to, code, link)
	return args.Error(0)
}

func (m *MockEmailService) SendVerification(ctx context.Context, to, name, link, code string) error {
	args := m.Called(ctx, to, name, link, code)
	return args.Error(0)
}

func (m *MockEmailService) SendPasswordReset(ctx context.Context, to, name, link, code string) error {
	args := m.Called(ctx, to, name, link, code)
	return args.Error(0)
}

func (m *MockEmailService) SendStatusNotification(ctx context.Context, to, name string, status domain.ApplicationStatus, reason string) error {
	args := m.Called(ctx, to, name, status, reason)
	return args.Error(0)
}

func (m *MockEmailService) SendApplicantAlert(ctx context.Context, to []string, alert ApplicantAlert) error {
	args := m.Called(ctx, to, alert)
	return args.Error(0)
}

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Upload(ctx context.Context, filename, contentType string, r io.Reader) (*storage.StoredFile, error) {
	args := m.Called(ctx, filename, contentType, r)
	if f := args.Get(0); f != nil {
		return f.(*storage.StoredFile), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStorage) Delete(ctx context.Context, publicID string) error {
	args := m.Called(ctx, publicID)
	return args.Error(0)
}

func (m *MockStorage) Open(publicID string) (io.ReadCloser, error) {
	args := m.Called(publicID)
	if f := args.Get(0); f != nil {
		return f.(io.ReadCloser), args.Error(1)
	}
	return nil, args.Error(1)
}
