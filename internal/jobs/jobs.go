package jobs

import (
	"context"
	"time"

	"memberhub-backend/internal/domain"
	"memberhub-backend/internal/logger"
	"memberhub-backend/internal/repository"
)

// Runner executes the recurring maintenance jobs. Each job is safe to run
// concurrently with live traffic: every mutation goes through the same
// guarded status transitions the request path uses.
type Runner struct {
	invites   repository.InvitationRepository
	retention time.Duration
}

func NewRunner(invites repository.InvitationRepository, retention time.Duration) *Runner {
	return &Runner{invites: invites, retention: retention}
}

// ExpireInvitations flips consumable standard codes whose expiry has passed.
// Request-path checks already treat such codes as expired, so this sweep only
// keeps the stored status in line with what callers observe.
func (r *Runner) ExpireInvitations(ctx context.Context) {
	r.runWithRecovery(ctx, "expire_invitations", func(ctx context.Context) error {
		n, err := r.invites.ExpireOverdue(ctx, time.Now())
		if err != nil {
			return err
		}
		if n > 0 {
			logger.Info("Expired overdue invitation codes", "count", n)
		}
		return nil
	})
}

// ReconcileOrphanedCodes re-opens consumed codes that have no matching user,
// the leftover of a registration that consumed its code but failed to create
// the account (or the reverse ordering failure).
func (r *Runner) ReconcileOrphanedCodes(ctx context.Context) {
	r.runWithRecovery(ctx, "reconcile_orphaned_codes", func(ctx context.Context) error {
		orphans, err := r.invites.ListConsumedWithoutUser(ctx)
		if err != nil {
			return err
		}
		for _, inv := range orphans {
			ok, err := r.invites.UpdateStatus(ctx, inv.ID,
				[]domain.InvitationStatus{domain.InvitationConsumed}, domain.InvitationConsumable)
			if err != nil {
				logger.Error("Failed to reconcile orphaned code",
					"code", inv.Code, "error", err)
				continue
			}
			if ok {
				logger.Info("Re-opened orphaned invitation code",
					"code", inv.Code, "email", inv.Email)
			}
		}
		return nil
	})
}

// PurgeExpiredInvitations deletes terminal codes past the retention window.
func (r *Runner) PurgeExpiredInvitations(ctx context.Context) {
	r.runWithRecovery(ctx, "purge_invitations", func(ctx context.Context) error {
		n, err := r.invites.PurgeTerminalBefore(ctx, time.Now().Add(-r.retention))
		if err != nil {
			return err
		}
		if n > 0 {
			logger.Info("Purged terminal invitation codes", "count", n)
		}
		return nil
	})
}

func (r *Runner) runWithRecovery(ctx context.Context, name string, job func(context.Context) error) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("Job panicked", "job", name, "panic", rec)
		}
	}()

	start := time.Now()
	logger.Info("Job started", "job", name)
	if err := job(ctx); err != nil {
		logger.Error("Job failed", "job", name, "error", err, "duration", time.Since(start))
		return
	}
	logger.Info("Job finished", "job", name, "duration", time.Since(start))
}
