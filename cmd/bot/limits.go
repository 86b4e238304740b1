package main

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// limiterIdleTTL is how long an unused limiter is kept.
	limiterIdleTTL = 10 * time.Minute

	// limiterSweepSize is how many limiters are kept before idle ones are removed.
	limiterSweepSize = 1024
)

type userLimit struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// userLimiter rate limits each user separately.
type userLimiter struct {
	mut sync.Mutex

	limit rate.Limit
	burst int
	users map[string]*userLimit

	now func() time.Time
}

// newUserLimiter allows each user burst events at once and then one event every interval.
func newUserLimiter(interval time.Duration, burst int) *userLimiter {
	return &userLimiter{
		limit: rate.Every(interval),
		burst: burst,
		users: make(map[string]*userLimit),
		now:   time.Now,
	}
}

// Allow reports whether the user may act now.
func (u *userLimiter) Allow(userID string) bool {
	u.mut.Lock()
	defer u.mut.Unlock()

	now := u.now()
	if len(u.users) >= limiterSweepSize {
		u.sweep(now)
	}

	ul, ok := u.users[userID]
	if !ok {
		ul = &userLimit{limiter: rate.NewLimiter(u.limit, u.burst)}
		u.users[userID] = ul
	}
	ul.lastSeen = now
	return ul.limiter.AllowN(now, 1)
}

func (u *userLimiter) sweep(now time.Time) {
	for id, ul := range u.users {
		if now.Sub(ul.lastSeen) > limiterIdleTTL {
			delete(u.users, id)
		}
	}
}
