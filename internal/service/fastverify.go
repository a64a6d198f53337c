package service

import (
	"sync"
	"time"

	"memberhub-backend/internal/domain"
)

// fastVerifyLimiter enforces the fast-verification quota: a small daily cap
// that resets at the calendar-date boundary plus a cooldown between
// consecutive requests. Persisted counters live on the user row; the limiter
// only supplies per-user serialization and the admission decision.
type fastVerifyLimiter struct {
	dailyCap int32
	cooldown time.Duration
	// locks holds one *sync.Mutex per user ID for the life of the process;
	// entries are never evicted, so the map grows with the number of users
	// that have requested fast verification. Naive eviction on unlock would
	// let two goroutines hold distinct mutexes for the same user, so removal
	// requires reference counting.
	locks sync.Map // int32 -> *sync.Mutex
}

func newFastVerifyLimiter(dailyCap int, cooldown time.Duration) *fastVerifyLimiter {
	return &fastVerifyLimiter{
		dailyCap: int32(dailyCap),
		cooldown: cooldown,
	}
}

func (l *fastVerifyLimiter) lock(userID int32) func() {
	mu, _ := l.locks.LoadOrStore(userID, &sync.Mutex{})
	m := mu.(*sync.Mutex)
	m.Lock()
	return m.Unlock
}

// admit decides whether a request at now is allowed and returns the new
// request count to persist. The count restarts on the first request of each
// calendar date; the cooldown applies even across the date boundary.
func (l *fastVerifyLimiter) admit(user *domain.User, now time.Time) (int32, error) {
	count := user.RequestedFastVerificationCount
	last := user.LastFastVerificationRequest

	if last == nil || !sameDate(*last, now) {
		count = 0
	}
	if count >= l.dailyCap {
		return 0, domain.RateLimited(
			"you have reached the daily limit of %d fast verification requests; try again tomorrow", l.dailyCap)
	}
	if last != nil && now.Sub(*last) < l.cooldown {
		return 0, domain.RateLimited(
			"please wait %d minutes between fast verification requests", int(l.cooldown.Minutes()))
	}
	return count + 1, nil
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
