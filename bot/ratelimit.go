/* ratelimit.go
 * Contains the per user command limiter. Every discord account gets its own token bucket
 */

package bot

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	commandRate  = rate.Limit(0.5) // one command every two seconds
	commandBurst = 3
	// limiters of users that have been quiet this long are dropped
	limiterIdle = 30 * time.Minute
)

type userBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type userLimiter struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	buckets map[string]*userBucket
	now     func() time.Time
}

func newUserLimiter(limit rate.Limit, burst int) *userLimiter {
	return &userLimiter{
		limit:   limit,
		burst:   burst,
		buckets: make(map[string]*userBucket),
		now:     time.Now,
	}
}

// Allow reports whether userID may run a command now, consuming a token if so
func (l *userLimiter) Allow(userID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for id, b := range l.buckets {
		if now.Sub(b.lastSeen) > limiterIdle {
			delete(l.buckets, id)
		}
	}

	b, ok := l.buckets[userID]
	if !ok {
		b = &userBucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[userID] = b
	}
	b.lastSeen = now
	return b.limiter.AllowN(now, 1)
}
