package auth

import (
	"sync"
	"time"
)

// RateLimiter blocks a client after repeated requests with a rejected admin
// token. Strikes are counted per client key (the remote IP) inside a fixed
// window that opens on the first strike. Reaching MaxAttempts blocks the
// client for LockoutDuration; an accepted token clears its strikes.
type RateLimiter struct {
	cfg RateLimitConfig
	now func() time.Time

	mu      sync.Mutex
	clients map[string]*strikes

	stop     chan struct{}
	stopOnce sync.Once
}

type strikes struct {
	count        int
	windowStart  time.Time
	blockedUntil time.Time
}

func (s *strikes) blocked(at time.Time) bool {
	return at.Before(s.blockedUntil)
}

// RateLimitConfig tunes the token rate limiter. Zero values fall back to
// DefaultRateLimitConfig.
type RateLimitConfig struct {
	MaxAttempts     int           // rejected tokens tolerated per window
	WindowDuration  time.Duration // strike counting window
	LockoutDuration time.Duration // block length once MaxAttempts is reached
	CleanupInterval time.Duration // how often idle clients are forgotten
}

func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		MaxAttempts:     5,
		WindowDuration:  15 * time.Minute,
		LockoutDuration: 30 * time.Minute,
		CleanupInterval: 5 * time.Minute,
	}
}

func (c RateLimitConfig) withDefaults() RateLimitConfig {
	d := DefaultRateLimitConfig()
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = d.MaxAttempts
	}
	if c.WindowDuration <= 0 {
		c.WindowDuration = d.WindowDuration
	}
	if c.LockoutDuration <= 0 {
		c.LockoutDuration = d.LockoutDuration
	}
	if c.CleanupInterval <= 0 {
		c.CleanupInterval = d.CleanupInterval
	}
	return c
}

// NewRateLimiter starts a limiter and its background cleanup. Call Stop to
// release the goroutine.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	rl := &RateLimiter{
		cfg:     cfg.withDefaults(),
		now:     time.Now,
		clients: make(map[string]*strikes),
		stop:    make(chan struct{}),
	}
	go rl.cleanupLoop()
	return rl
}

// Stop ends the cleanup goroutine. It is safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

// Allow reports whether key may present a token now. When it may not, the
// returned duration is how long the block still lasts.
func (rl *RateLimiter) Allow(key string) (bool, time.Duration) {
	at := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	s, ok := rl.clients[key]
	switch {
	case !ok:
		return true, 0
	case s.blocked(at):
		return false, s.blockedUntil.Sub(at)
	case at.Sub(s.windowStart) > rl.cfg.WindowDuration:
		return true, 0
	case s.count >= rl.cfg.MaxAttempts:
		return false, rl.cfg.LockoutDuration
	}
	return true, 0
}

// RecordFailure adds a strike for key and reports whether key is now blocked.
func (rl *RateLimiter) RecordFailure(key string) (bool, time.Duration) {
	at := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	s, ok := rl.clients[key]
	if !ok || at.Sub(s.windowStart) > rl.cfg.WindowDuration {
		s = &strikes{windowStart: at}
		rl.clients[key] = s
	}
	s.count++

	if s.count < rl.cfg.MaxAttempts {
		return false, 0
	}
	s.blockedUntil = at.Add(rl.cfg.LockoutDuration)
	return true, rl.cfg.LockoutDuration
}

// RecordSuccess forgets every strike of key.
func (rl *RateLimiter) RecordSuccess(key string) {
	rl.mu.Lock()
	delete(rl.clients, key)
	rl.mu.Unlock()
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.cfg.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.forgetIdle()
		case <-rl.stop:
			return
		}
	}
}

// forgetIdle drops clients whose window has closed and who are not blocked.
func (rl *RateLimiter) forgetIdle() int {
	at := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	dropped := 0
	for key, s := range rl.clients {
		if at.Sub(s.windowStart) > rl.cfg.WindowDuration && !s.blocked(at) {
			delete(rl.clients, key)
			dropped++
		}
	}
	return dropped
}
