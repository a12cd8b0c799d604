package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/yshengliao/turbohttp/core/types"
	"github.com/yshengliao/turbohttp/response"
)

// RateLimiter defines the interface for rate limiting
type RateLimiter interface {
	// Allow checks if a request is allowed
	Allow(key string) bool

	// AllowN checks if n requests are allowed
	AllowN(key string, n int) bool

	// Reset resets the rate limiter for a key
	Reset(key string)
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	// Rate is the number of requests per second
	Rate int

	// Burst is the maximum burst size
	Burst int

	// KeyFunc extracts the key from the request
	KeyFunc func(req *types.Request) string

	// Skipper determines if rate limiting should be skipped
	Skipper func(req *types.Request) bool

	// RetryAfter is sent in the Retry-After header of rejected requests, in seconds
	RetryAfter int

	// Store is the rate limiter implementation
	Store RateLimiter
}

// DefaultRateLimitConfig returns a default rate limit configuration
func DefaultRateLimitConfig() *RateLimitConfig {
	return &RateLimitConfig{
		Rate:       10,
		Burst:      20,
		KeyFunc:    func(req *types.Request) string { return req.RealIP() },
		Skipper:    DefaultSkipper,
		RetryAfter: 1,
	}
}

// limiterEntry holds a rate limiter and its last access time
type limiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// MemoryStore is an in-memory rate limiter store
type MemoryStore struct {
	rate     int
	burst    int
	limiters map[string]*limiterEntry
	mu       sync.RWMutex
	cleanup  *time.Ticker
	ttl      time.Duration
	stopped  chan struct{}
	stopOnce sync.Once
}

// MemoryStoreConfig holds configuration for MemoryStore
type MemoryStoreConfig struct {
	Rate            int
	Burst           int
	CleanupInterval time.Duration
	TTL             time.Duration
}

// DefaultMemoryStoreConfig returns default configuration
func DefaultMemoryStoreConfig() *MemoryStoreConfig {
	return &MemoryStoreConfig{
		Rate:            10,
		Burst:           20,
		CleanupInterval: 1 * time.Minute,
		TTL:             10 * time.Minute,
	}
}

// NewMemoryStore creates a new in-memory rate limiter store
func NewMemoryStore(r int, b int) *MemoryStore {
	config := DefaultMemoryStoreConfig()
	config.Rate = r
	config.Burst = b
	return NewMemoryStoreWithConfig(config)
}

// NewMemoryStoreWithConfig creates a new in-memory rate limiter store with config.
// Call Stop to release the cleanup goroutine.
func NewMemoryStoreWithConfig(config *MemoryStoreConfig) *MemoryStore {
	store := &MemoryStore{
		rate:     config.Rate,
		burst:    config.Burst,
		limiters: make(map[string]*limiterEntry),
		cleanup:  time.NewTicker(config.CleanupInterval),
		ttl:      config.TTL,
		stopped:  make(chan struct{}),
	}

	go store.cleanupRoutine()

	return store
}

// Allow checks if a request is allowed
func (s *MemoryStore) Allow(key string) bool {
	return s.AllowN(key, 1)
}

// AllowN checks if n requests are allowed
func (s *MemoryStore) AllowN(key string, n int) bool {
	now := time.Now()

	s.mu.Lock()
	entry, exists := s.limiters[key]
	if !exists {
		entry = &limiterEntry{limiter: rate.NewLimiter(rate.Limit(s.rate), s.burst)}
		s.limiters[key] = entry
	}
	entry.lastAccess = now
	s.mu.Unlock()

	return entry.limiter.AllowN(now, n)
}

// Reset resets the rate limiter for a key
func (s *MemoryStore) Reset(key string) {
	s.mu.Lock()
	delete(s.limiters, key)
	s.mu.Unlock()
}

func (s *MemoryStore) cleanupRoutine() {
	for {
		select {
		case <-s.cleanup.C:
			s.performCleanup()
		case <-s.stopped:
			return
		}
	}
}

func (s *MemoryStore) performCleanup() {
	now := time.Now()
	var expired []string

	s.mu.RLock()
	for key, entry := range s.limiters {
		if now.Sub(entry.lastAccess) > s.ttl {
			expired = append(expired, key)
		}
	}
	s.mu.RUnlock()

	if len(expired) == 0 {
		return
	}

	s.mu.Lock()
	for _, key := range expired {
		// may have been touched since the read pass
		if entry, ok := s.limiters[key]; ok && now.Sub(entry.lastAccess) > s.ttl {
			delete(s.limiters, key)
		}
	}
	s.mu.Unlock()
}

// Size returns the current number of limiters in the store
func (s *MemoryStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.limiters)
}

// Stop stops the cleanup routine
func (s *MemoryStore) Stop() {
	s.stopOnce.Do(func() {
		s.cleanup.Stop()
		close(s.stopped)
	})
}

type rateLimit struct {
	Base
	config *RateLimitConfig
}

// RateLimit creates a rate limiting middleware. Rejected requests get a
// 429 response and are not dispatched.
func RateLimit(config *RateLimitConfig) Middleware {
	if config == nil {
		config = DefaultRateLimitConfig()
	}
	if config.KeyFunc == nil {
		config.KeyFunc = DefaultRateLimitConfig().KeyFunc
	}
	if config.Skipper == nil {
		config.Skipper = DefaultSkipper
	}
	if config.Store == nil {
		config.Store = NewMemoryStore(config.Rate, config.Burst)
	}
	return &rateLimit{config: config}
}

// RateLimitByIP creates a rate limiter keyed by client IP
func RateLimitByIP(rate, burst int) Middleware {
	config := DefaultRateLimitConfig()
	config.Rate = rate
	config.Burst = burst
	return RateLimit(config)
}

// RateLimitByPath creates a rate limiter keyed by client IP and path
func RateLimitByPath(rate, burst int) Middleware {
	config := DefaultRateLimitConfig()
	config.Rate = rate
	config.Burst = burst
	config.KeyFunc = func(req *types.Request) string {
		return req.RealIP() + ":" + req.Path()
	}
	return RateLimit(config)
}

// Admit consults the store for the request's key
func (m *rateLimit) Admit(req *types.Request, resp *response.Response) bool {
	if m.config.Skipper(req) {
		return true
	}
	if m.config.Store.Allow(m.config.KeyFunc(req)) {
		return true
	}

	if m.config.RetryAfter > 0 {
		resp.Header().Set("Retry-After", strconv.Itoa(m.config.RetryAfter))
	}
	resp.SetStatus(http.StatusTooManyRequests)
	resp.SetText(http.StatusText(http.StatusTooManyRequests))
	return false
}
