/* ratelimit.go
 * Contains the per IP limiter guarding register and login
 */

package web

import (
	"net"
	"net/http"
	"sync"
	"time"

	"bolao-bot/api/shared"

	"golang.org/x/time/rate"
)

const (
	authRate  = rate.Limit(1) // one attempt per second
	authBurst = 5
	// the map is only pruned once it holds this many addresses
	pruneThreshold = 500
	ipIdle         = 10 * time.Minute
)

type ipEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type ipLimiter struct {
	mu    sync.Mutex
	ips   map[string]*ipEntry
	limit rate.Limit
	burst int
	now   func() time.Time
}

func newIPLimiter(limit rate.Limit, burst int) *ipLimiter {
	return &ipLimiter{
		ips:   make(map[string]*ipEntry),
		limit: limit,
		burst: burst,
		now:   time.Now,
	}
}

// Allow reports whether ip may make another attempt now
func (l *ipLimiter) Allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if len(l.ips) > pruneThreshold {
		for k, e := range l.ips {
			if now.Sub(e.lastSeen) > ipIdle {
				delete(l.ips, k)
			}
		}
	}

	e, ok := l.ips[ip]
	if !ok {
		e = &ipEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.ips[ip] = e
	}
	e.lastSeen = now
	return e.limiter.AllowN(now, 1)
}

func clientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// limitByIP answers 429 once the caller's address runs out of attempts
func (s *Server) limitByIP(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.authLimiter.Allow(clientIP(r)) {
			w.Header().Set("Retry-After", "1")
			writeJSON(w, http.StatusTooManyRequests, envelope{Messages: []shared.Message{}, Error: "too many attempts, try again shortly"})
			return
		}
		next(w, r)
	}
}
