package postgres

import (
	"database/sql"
	"errors"
	"strings"

	"memberhub-backend/internal/repository"

	"github.com/lib/pq"
)

// Store aggregates all repository implementations over one connection pool.
type Store struct {
	UserRepository       repository.UserRepository
	InvitationRepository repository.InvitationRepository
	StatsRepository      repository.StatsRepository
}

// NewStore creates a new store with all repositories initialized
func NewStore(db *sql.DB) *Store {
	return &Store{
		UserRepository:       NewUserRepository(db),
		InvitationRepository: NewInvitationRepository(db),
		StatsRepository:      NewStatsRepository(db),
	}
}

// uniqueViolation is the Postgres error code for duplicate keys. Uniqueness
// races (codes, emails, student IDs) are resolved here, not by pre-checks.
const uniqueViolation = "23505"

// violatedConstraint returns the name of the violated unique constraint, or
// "" when err is not a unique violation.
func violatedConstraint(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
		return pqErr.Constraint
	}
	return ""
}

// constraintContains reports whether the violated constraint name mentions
// the given column.
func constraintContains(err error, column string) bool {
	return strings.Contains(violatedConstraint(err), column)
}
