package repository

import (
	"context"
	"time"

	"memberhub-backend/internal/domain"
)

// Duplicate-key sentinels surfaced by implementations when a storage-level
// unique constraint fires. Callers distinguish retryable code collisions from
// genuine conflicts with errors.Is.
var (
	ErrDuplicateInviteCode  = domain.Conflict("invitation code already exists")
	ErrDuplicateInviteEmail = domain.Conflict("an invitation already exists for this email")
	ErrDuplicateUserEmail   = domain.Conflict("email already registered")
	ErrDuplicateStudentID   = domain.Conflict("student ID already registered")
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int32) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByStudentID(ctx context.Context, studentID string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	UpdateLastLogin(ctx context.Context, id int32, at time.Time) error
	// RecordFastVerification persists the limiter state in one statement.
	RecordFastVerification(ctx context.Context, id int32, count int32, at time.Time) error
	ListMembers(ctx context.Context) ([]domain.User, error)
	ListPendingApplications(ctx context.Context) ([]domain.User, error)
	ListAdminEmails(ctx context.Context) ([]string, error)
}

type InvitationRepository interface {
	Create(ctx context.Context, invite *domain.InvitationCode) error
	GetByCode(ctx context.Context, code string) (*domain.InvitationCode, error)
	GetByEmail(ctx context.Context, email string) (*domain.InvitationCode, error)
	// UpdateStatus transitions a code; the WHERE clause guards the allowed
	// source statuses so concurrent transitions cannot revert a terminal one.
	UpdateStatus(ctx context.Context, id int32, from []domain.InvitationStatus, to domain.InvitationStatus) (bool, error)
	// ExpireOverdue flips past-expiry consumable codes and reports how many.
	ExpireOverdue(ctx context.Context, now time.Time) (int64, error)
	// ListConsumedWithoutUser returns consumed codes with no matching user,
	// the orphans left by a registration that failed after consumption.
	ListConsumedWithoutUser(ctx context.Context) ([]domain.InvitationCode, error)
	// PurgeTerminalBefore physically deletes expired/cancelled rows older
	// than the cutoff (the relational stand-in for a TTL index).
	PurgeTerminalBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type StatsRepository interface {
	MembershipStats(ctx context.Context) (*domain.MembershipStats, error)
}
