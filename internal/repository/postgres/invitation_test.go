package postgres_test

import (
	"context"
	"testing"
	"time"

	"memberhub-backend/internal/domain"
	"memberhub-backend/internal/repository"
	"memberhub-backend/internal/repository/postgres"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

var invitationTestColumns = []string{
	"id", "code", "email", "role", "kind", "status", "form_id",
	"expires_at", "created_on", "updated_on",
}

func TestInvitationRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := postgres.NewInvitationRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO invitation_codes").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))

		inv := &domain.InvitationCode{
			Code:      "ABC234",
			Email:     "a@x.com",
			Role:      domain.RoleMember,
			Kind:      domain.InvitationStandard,
			Status:    domain.InvitationConsumable,
			ExpiresAt: time.Now().Add(time.Hour),
		}
		err := repo.Create(ctx, inv)
		assert.NoError(t, err)
		assert.Equal(t, int32(3), inv.ID)
	})

	t.Run("DuplicateCode", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO invitation_codes").
			WillReturnError(&pq.Error{Code: "23505", Constraint: "invitation_codes_code_key"})

		err := repo.Create(ctx, &domain.InvitationCode{Code: "ABC234"})
		assert.ErrorIs(t, err, repository.ErrDuplicateInviteCode)
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO invitation_codes").
			WillReturnError(&pq.Error{Code: "23505", Constraint: "invitation_codes_email_consumable_key"})

		err := repo.Create(ctx, &domain.InvitationCode{Code: "XYZ789", Email: "a@x.com"})
		assert.ErrorIs(t, err, repository.ErrDuplicateInviteEmail)
	})
}

func TestInvitationRepository_GetByCode(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := postgres.NewInvitationRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		now := time.Now()
		rows := sqlmock.NewRows(invitationTestColumns).
			AddRow(1, "ABC234", "a@x.com", "member", "standard", "consumable", "",
				now.Add(time.Hour), now, now)
		mock.ExpectQuery("SELECT (.+) FROM invitation_codes WHERE code = \\$1").
			WithArgs("ABC234").
			WillReturnRows(rows)

		inv, err := repo.GetByCode(ctx, "ABC234")
		assert.NoError(t, err)
		assert.Equal(t, domain.InvitationConsumable, inv.Status)
		assert.Equal(t, domain.InvitationStandard, inv.Kind)
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM invitation_codes WHERE code = \\$1").
			WithArgs("NOPE22").
			WillReturnRows(sqlmock.NewRows(invitationTestColumns))

		inv, err := repo.GetByCode(ctx, "NOPE22")
		assert.True(t, domain.IsKind(err, domain.KindNotFound))
		assert.Nil(t, inv)
	})
}

func TestInvitationRepository_UpdateStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := postgres.NewInvitationRepository(db)
	ctx := context.Background()
	from := []domain.InvitationStatus{domain.InvitationConsumable}

	t.Run("GuardPasses", func(t *testing.T) {
		mock.ExpectExec("UPDATE invitation_codes SET status").
			WillReturnResult(sqlmock.NewResult(0, 1))

		ok, err := repo.UpdateStatus(ctx, 1, from, domain.InvitationConsumed)
		assert.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("GuardBlocksTerminalRow", func(t *testing.T) {
		// Row exists but is no longer in the allowed source set.
		mock.ExpectExec("UPDATE invitation_codes SET status").
			WillReturnResult(sqlmock.NewResult(0, 0))

		ok, err := repo.UpdateStatus(ctx, 1, from, domain.InvitationCancelled)
		assert.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestInvitationRepository_Sweeps(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := postgres.NewInvitationRepository(db)
	ctx := context.Background()

	t.Run("ExpireOverdue", func(t *testing.T) {
		now := time.Now()
		mock.ExpectExec("UPDATE invitation_codes SET status='expired'").
			WithArgs(now).
			WillReturnResult(sqlmock.NewResult(0, 4))

		n, err := repo.ExpireOverdue(ctx, now)
		assert.NoError(t, err)
		assert.Equal(t, int64(4), n)
	})

	t.Run("ListConsumedWithoutUser", func(t *testing.T) {
		now := time.Now()
		rows := sqlmock.NewRows(invitationTestColumns).
			AddRow(9, "ORPH22", "gone@x.com", "member", "standard", "consumed", "",
				now, now, now)
		mock.ExpectQuery("SELECT (.+) FROM invitation_codes ic\\s+LEFT JOIN users u").
			WillReturnRows(rows)

		orphans, err := repo.ListConsumedWithoutUser(ctx)
		assert.NoError(t, err)
		assert.Len(t, orphans, 1)
		assert.Equal(t, "ORPH22", orphans[0].Code)
	})

	t.Run("PurgeTerminalBefore", func(t *testing.T) {
		cutoff := time.Now().Add(-90 * 24 * time.Hour)
		mock.ExpectExec("DELETE FROM invitation_codes").
			WithArgs(cutoff).
			WillReturnResult(sqlmock.NewResult(0, 2))

		n, err := repo.PurgeTerminalBefore(ctx, cutoff)
		assert.NoError(t, err)
		assert.Equal(t, int64(2), n)
	})
}
