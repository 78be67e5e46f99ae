// FILE: logscribe/src/internal/limit/ratelimiter.go
package limit

import (
	"net"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const defaultCleanupInterval = 60 * time.Second

// RateLimiter provides per-client rate limiting for ingest sources
type RateLimiter struct {
	clients         sync.Map // map[string]*clientLimiter
	requestsPerSec  float64
	burstSize       int
	cleanupInterval time.Duration
	done            chan struct{}
	stopOnce        sync.Once
}

type clientLimiter struct {
	limiter  *rate.Limiter
	mu       sync.Mutex
	lastSeen time.Time
}

// NewRateLimiter creates a limiter and starts its cleanup routine.
// A burst below one is raised to one.
func NewRateLimiter(requestsPerSec float64, burstSize int64, cleanupInterval time.Duration) *RateLimiter {
	if burstSize < 1 {
		burstSize = 1
	}
	if cleanupInterval <= 0 {
		cleanupInterval = defaultCleanupInterval
	}

	rl := &RateLimiter{
		requestsPerSec:  requestsPerSec,
		burstSize:       int(burstSize),
		cleanupInterval: cleanupInterval,
		done:            make(chan struct{}),
	}

	go rl.cleanup()

	return rl
}

// Allow reports whether the client identified by remoteAddr may proceed.
// Ports are stripped so all connections from one host share a bucket.
func (rl *RateLimiter) Allow(remoteAddr string) bool {
	return rl.getLimiter(clientKey(remoteAddr)).Allow()
}

func clientKey(remoteAddr string) string {
	if host, _, err := net.SplitHostPort(remoteAddr); err == nil {
		return host
	}
	return remoteAddr
}

// getLimiter returns the rate limiter for a client
func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	now := time.Now()
	if val, ok := rl.clients.Load(key); ok {
		client := val.(*clientLimiter)
		client.mu.Lock()
		client.lastSeen = now
		client.mu.Unlock()
		return client.limiter
	}

	client := &clientLimiter{
		limiter:  rate.NewLimiter(rate.Limit(rl.requestsPerSec), rl.burstSize),
		lastSeen: now,
	}
	actual, _ := rl.clients.LoadOrStore(key, client)
	return actual.(*clientLimiter).limiter
}

// cleanup removes old client limiters
func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(rl.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
			rl.removeOldClients(time.Now())
		}
	}
}

// removeOldClients removes limiters that haven't been seen for two cleanup intervals
func (rl *RateLimiter) removeOldClients(now time.Time) {
	threshold := now.Add(-rl.cleanupInterval * 2)

	rl.clients.Range(func(key, value any) bool {
		client := value.(*clientLimiter)
		client.mu.Lock()
		stale := client.lastSeen.Before(threshold)
		client.mu.Unlock()
		if stale {
			rl.clients.Delete(key)
		}
		return true
	})
}

// Stop shuts down the cleanup routine. Safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.done) })
}

// ActiveClients returns the number of tracked clients
func (rl *RateLimiter) ActiveClients() int {
	count := 0
	rl.clients.Range(func(_, _ any) bool {
		count++
		return true
	})
	return count
}

// GetStats returns current rate limiter statistics
func (rl *RateLimiter) GetStats() map[string]any {
	return map[string]any{
		"requests_per_second": rl.requestsPerSec,
		"burst_size":          rl.burstSize,
		"active_clients":      rl.ActiveClients(),
	}
}
