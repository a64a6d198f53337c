package domain

import (
	"crypto/rand"
	"math/big"
	"time"
)

type InvitationStatus string

const (
	InvitationConsumable InvitationStatus = "consumable"
	InvitationConsumed   InvitationStatus = "consumed"
	InvitationExpired    InvitationStatus = "expired"
	InvitationCancelled  InvitationStatus = "cancelled"
)

type InvitationKind string

const (
	// InvitationStandard codes are single-use and bound to one email.
	InvitationStandard InvitationKind = "standard"
	// InvitationPromotional codes are accepted for registration without a
	// prior issue step and never transition out of consumable.
	InvitationPromotional InvitationKind = "promotional"
)

// InvitationCode is a one-time credential gating registration, bound to a
// single target email. Status only moves consumable -> {consumed, expired,
// cancelled}; once non-consumable it never reverts.
type InvitationCode struct {
	ID        int32            `json:"id"`
	Code      string           `json:"code"`
	Email     string           `json:"email"`
	Role      Role             `json:"role"`
	Kind      InvitationKind   `json:"kind"`
	Status    InvitationStatus `json:"status"`
	FormID    string           `json:"form_id,omitempty"`
	ExpiresAt time.Time        `json:"expires_at"`
	CreatedOn time.Time        `json:"created_on"`
	UpdatedOn time.Time        `json:"updated_on"`
}

// Terminal reports whether the code has left the consumable state.
func (c *InvitationCode) Terminal() bool {
	return c.Status != InvitationConsumable
}

const inviteCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// NewInviteCode returns a random 6-character code. The alphabet omits easily
// confused glyphs (0/O, 1/I). Uniqueness is enforced by the storage layer;
// callers retry on conflict.
func NewInviteCode() (string, error) {
	buf := make([]byte, 6)
	max := big.NewInt(int64(len(inviteCodeAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = inviteCodeAlphabet[n.Int64()]
	}
	return string(buf), nil
}
