package middleware

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"
)

const uploadLimiterIdleTTL = 10 * time.Minute

type uploadLimiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// uploadLimiterStore holds one token bucket per client IP. Entries idle
// longer than the TTL are evicted on the next lookup, keeping the map bounded
// by the set of recently active clients.
type uploadLimiterStore struct {
	mu      sync.Mutex
	rps     rate.Limit
	burst   int
	entries map[string]*uploadLimiterEntry
}

func newUploadLimiterStore(rps rate.Limit, burst int) *uploadLimiterStore {
	return &uploadLimiterStore{
		rps:     rps,
		burst:   burst,
		entries: make(map[string]*uploadLimiterEntry),
	}
}

func (s *uploadLimiterStore) get(ip string, now time.Time) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, entry := range s.entries {
		if now.Sub(entry.lastSeen) > uploadLimiterIdleTTL {
			delete(s.entries, key)
		}
	}

	entry, ok := s.entries[ip]
	if !ok {
		entry = &uploadLimiterEntry{limiter: rate.NewLimiter(s.rps, s.burst)}
		s.entries[ip] = entry
	}
	entry.lastSeen = now
	return entry.limiter
}

func (s *uploadLimiterStore) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// NewUploadLimiter returns a per-client rate limiter for the import upload
// endpoint. Imports are heavy (object store upload plus one large
// transaction), so each client IP gets a small token bucket instead of the
// global app limit.
func NewUploadLimiter(rps rate.Limit, burst int) fiber.Handler {
	store := newUploadLimiterStore(rps, burst)

	return func(c *fiber.Ctx) error {
		if !store.get(c.IP(), time.Now()).Allow() {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"message": "Too many import requests, slow down",
			})
		}
		return c.Next()
	}
}
