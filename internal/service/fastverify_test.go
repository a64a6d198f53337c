package service

import (
	"testing"
	"time"

	"memberhub-backend/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestFastVerifyLimiter_Admit(t *testing.T) {
	limiter := newFastVerifyLimiter(2, 30*time.Minute)
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	t.Run("FirstEver", func(t *testing.T) {
		user := &domain.User{}
		count, err := limiter.admit(user, now)
		assert.NoError(t, err)
		assert.Equal(t, int32(1), count)
	})

	t.Run("SecondAfterCooldown", func(t *testing.T) {
		last := now.Add(-45 * time.Minute)
		user := &domain.User{
			RequestedFastVerificationCount: 1,
			LastFastVerificationRequest:    &last,
		}
		count, err := limiter.admit(user, now)
		assert.NoError(t, err)
		assert.Equal(t, int32(2), count)
	})

	t.Run("WithinCooldown", func(t *testing.T) {
		last := now.Add(-29 * time.Minute)
		user := &domain.User{
			RequestedFastVerificationCount: 1,
			LastFastVerificationRequest:    &last,
		}
		_, err := limiter.admit(user, now)
		assert.True(t, domain.IsKind(err, domain.KindRateLimited))
		assert.Contains(t, err.Error(), "30 minutes")
	})

	t.Run("CapReached", func(t *testing.T) {
		last := now.Add(-2 * time.Hour)
		user := &domain.User{
			RequestedFastVerificationCount: 2,
			LastFastVerificationRequest:    &last,
		}
		_, err := limiter.admit(user, now)
		assert.True(t, domain.IsKind(err, domain.KindRateLimited))
		assert.Contains(t, err.Error(), "daily limit")
	})

	t.Run("CalendarDateReset", func(t *testing.T) {
		// Yesterday's count does not carry over, even at two requests.
		last := now.Add(-13 * time.Hour) // 23:00 the previous day
		user := &domain.User{
			RequestedFastVerificationCount: 2,
			LastFastVerificationRequest:    &last,
		}
		count, err := limiter.admit(user, now)
		assert.NoError(t, err)
		assert.Equal(t, int32(1), count)
	})

	t.Run("CooldownSpansMidnight", func(t *testing.T) {
		// The date boundary resets the count but not the spacing rule.
		midnight := time.Date(2026, 3, 10, 0, 5, 0, 0, time.UTC)
		last := midnight.Add(-15 * time.Minute) // 23:50 previous day
		user := &domain.User{
			RequestedFastVerificationCount: 2,
			LastFastVerificationRequest:    &last,
		}
		_, err := limiter.admit(user, midnight)
		assert.True(t, domain.IsKind(err, domain.KindRateLimited))
		assert.Contains(t, err.Error(), "30 minutes")
	})
}

func TestFastVerifyLimiter_Lock(t *testing.T) {
	limiter := newFastVerifyLimiter(2, 30*time.Minute)

	unlock := limiter.lock(1)
	done := make(chan struct{})
	go func() {
		u := limiter.lock(1)
		u()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("second lock acquired while first was held")
	case <-time.After(50 * time.Millisecond):
	}

	unlock()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("second lock never acquired after release")
	}
}
