package httpserver

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/yndnr/tokcodec-go/internal/core/domain"
)

// bucketTTL is how long an idle client keeps its bucket.
const bucketTTL = 3 * time.Minute

// RateLimit answers 429 once a client exceeds rps requests per second,
// allowing bursts of up to burst requests.
func RateLimit(rps float64, burst int) Middleware {
	buckets := newBucketSet(rate.Limit(rps), burst, bucketTTL)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if buckets.take(clientIP(r), time.Now()) {
				next.ServeHTTP(w, r)
				return
			}
			w.Header().Set("Retry-After", "1")
			writeError(w, r, domain.ErrRateLimited)
		})
	}
}

// bucketSet holds one token bucket per client. Buckets idle for longer
// than ttl are dropped on the next sweep.
type bucketSet struct {
	limit rate.Limit
	burst int
	ttl   time.Duration

	mu        sync.Mutex
	buckets   map[string]*bucket
	nextSweep time.Time
}

type bucket struct {
	*rate.Limiter
	seen time.Time
}

func newBucketSet(limit rate.Limit, burst int, ttl time.Duration) *bucketSet {
	return &bucketSet{
		limit:     limit,
		burst:     burst,
		ttl:       ttl,
		buckets:   make(map[string]*bucket),
		nextSweep: time.Now().Add(ttl),
	}
}

// take reports whether client may proceed at now.
func (s *bucketSet) take(client string, now time.Time) bool {
	s.mu.Lock()
	if now.After(s.nextSweep) {
		s.sweep(now)
	}
	b := s.buckets[client]
	if b == nil {
		b = &bucket{Limiter: rate.NewLimiter(s.limit, s.burst)}
		s.buckets[client] = b
	}
	b.seen = now
	s.mu.Unlock()

	return b.AllowN(now, 1)
}

func (s *bucketSet) sweep(now time.Time) {
	cutoff := now.Add(-s.ttl)
	for client, b := range s.buckets {
		if b.seen.Before(cutoff) {
			delete(s.buckets, client)
		}
	}
	s.nextSweep = now.Add(s.ttl)
}

func (s *bucketSet) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buckets)
}

// clientIP identifies the caller, preferring proxy headers over the
// socket address.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
