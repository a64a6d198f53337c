package postgres

import (
	"context"
	"database/sql"
	"time"

	"memberhub-backend/internal/domain"
	"memberhub-backend/internal/repository"

	"github.com/lib/pq"
)

type invitationRepository struct {
	db *sql.DB
}

func NewInvitationRepository(db *sql.DB) repository.InvitationRepository {
	return &invitationRepository{db: db}
}

const invitationColumns = `id, code, email, role, kind, status, COALESCE(form_id, ''), expires_at, created_on, updated_on`

func scanInvitation(row interface{ Scan(...any) error }) (*domain.InvitationCode, error) {
	inv := &domain.InvitationCode{}
	err := row.Scan(&inv.ID, &inv.Code, &inv.Email, &inv.Role, &inv.Kind, &inv.Status,
		&inv.FormID, &inv.ExpiresAt, &inv.CreatedOn, &inv.UpdatedOn)
	if err != nil {
		return nil, err
	}
	return inv, nil
}

func (r *invitationRepository) Create(ctx context.Context, inv *domain.InvitationCode) error {
	query := `INSERT INTO invitation_codes (code, email, role, kind, status, form_id, expires_at, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`
	now := time.Now()
	inv.CreatedOn = now
	inv.UpdatedOn = now
	err := r.db.QueryRowContext(ctx, query, inv.Code, inv.Email, inv.Role, inv.Kind, inv.Status,
		nullIfEmpty(inv.FormID), inv.ExpiresAt, inv.CreatedOn, inv.UpdatedOn).Scan(&inv.ID)
	if err != nil {
		if constraintContains(err, "code") {
			return repository.ErrDuplicateInviteCode
		}
		if constraintContains(err, "email") {
			return repository.ErrDuplicateInviteEmail
		}
		return err
	}
	return nil
}

func (r *invitationRepository) GetByCode(ctx context.Context, code string) (*domain.InvitationCode, error) {
	query := `SELECT ` + invitationColumns + ` FROM invitation_codes WHERE code = $1`
	inv, err := scanInvitation(r.db.QueryRowContext(ctx, query, code))
	if err == sql.ErrNoRows {
		return nil, domain.NotFound("invalid invitation code")
	}
	return inv, err
}

func (r *invitationRepository) GetByEmail(ctx context.Context, email string) (*domain.InvitationCode, error) {
	query := `SELECT ` + invitationColumns + ` FROM invitation_codes WHERE LOWER(email) = LOWER($1)`
	inv, err := scanInvitation(r.db.QueryRowContext(ctx, query, email))
	if err == sql.ErrNoRows {
		return nil, domain.NotFound("no invitation for this email")
	}
	return inv, err
}

func (r *invitationRepository) UpdateStatus(ctx context.Context, id int32, from []domain.InvitationStatus, to domain.InvitationStatus) (bool, error) {
	fromStrs := make([]string, len(from))
	for i, s := range from {
		fromStrs[i] = string(s)
	}
	query := `UPDATE invitation_codes SET status=$1, updated_on=$2 WHERE id=$3 AND status = ANY($4)`
	res, err := r.db.ExecContext(ctx, query, to, time.Now(), id, pq.Array(fromStrs))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *invitationRepository) ExpireOverdue(ctx context.Context, now time.Time) (int64, error) {
	query := `UPDATE invitation_codes SET status='expired', updated_on=$1
	          WHERE status='consumable' AND kind='standard' AND expires_at < $1`
	res, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *invitationRepository) ListConsumedWithoutUser(ctx context.Context) ([]domain.InvitationCode, error) {
	query := `SELECT ` + invitationColumnsPrefixed("ic") + ` FROM invitation_codes ic
	          LEFT JOIN users u ON LOWER(u.email) = LOWER(ic.email)
	          WHERE ic.status = 'consumed' AND u.id IS NULL`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invites []domain.InvitationCode
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, err
		}
		invites = append(invites, *inv)
	}
	return invites, rows.Err()
}

func (r *invitationRepository) PurgeTerminalBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM invitation_codes
	          WHERE status IN ('expired', 'cancelled') AND updated_on < $1`
	res, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func invitationColumnsPrefixed(alias string) string {
	return alias + `.id, ` + alias + `.code, ` + alias + `.email, ` + alias + `.role, ` +
		alias + `.kind, ` + alias + `.status, COALESCE(` + alias + `.form_id, ''), ` +
		alias + `.expires_at, ` + alias + `.created_on, ` + alias + `.updated_on`
}
