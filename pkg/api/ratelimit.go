package api

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// RateLimiter provides IP-based request rate limiting with sliding
// per-second and per-minute windows and background cleanup of idle clients.
// Safe for concurrent use.
type RateLimiter struct {
	clients map[string]*clientLimiter
	mu      sync.Mutex
	config  RateLimitConfig
	cleanup *time.Ticker
	done    chan struct{}
}

// RateLimitConfig holds rate limiting thresholds.
type RateLimitConfig struct {
	RequestsPerSecond int
	RequestsPerMinute int
	CleanupInterval   time.Duration
}

// DefaultRateLimitConfig matches the documented service limits: bursts of
// 30 requests per second, 600 per minute sustained.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond: 30,
		RequestsPerMinute: 600,
		CleanupInterval:   5 * time.Minute,
	}
}

// clientLimiter tracks request counts for one client IP.
type clientLimiter struct {
	requestsThisSecond int
	requestsThisMinute int
	lastRequest        time.Time
	lastSecond         time.Time
	lastMinute         time.Time
}

// NewRateLimiter creates a rate limiter and starts its cleanup goroutine.
// Call Shutdown to release it.
func NewRateLimiter(config RateLimitConfig) *RateLimiter {
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = 5 * time.Minute
	}
	rl := &RateLimiter{
		clients: make(map[string]*clientLimiter),
		config:  config,
		done:    make(chan struct{}),
	}
	rl.cleanup = time.NewTicker(config.CleanupInterval)
	go rl.cleanupLoop()
	return rl
}

// Allow reports whether a request from the client behind r fits within the
// configured limits, counting it if so.
func (rl *RateLimiter) Allow(r *http.Request) bool {
	ip := clientIP(r)
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	client, ok := rl.clients[ip]
	if !ok {
		client = &clientLimiter{lastSecond: now, lastMinute: now}
		rl.clients[ip] = client
	}

	if now.Sub(client.lastSecond) >= time.Second {
		client.requestsThisSecond = 0
		client.lastSecond = now
	}
	if now.Sub(client.lastMinute) >= time.Minute {
		client.requestsThisMinute = 0
		client.lastMinute = now
	}

	if client.requestsThisSecond >= rl.config.RequestsPerSecond {
		return false
	}
	if client.requestsThisMinute >= rl.config.RequestsPerMinute {
		return false
	}

	client.requestsThisSecond++
	client.requestsThisMinute++
	client.lastRequest = now
	return true
}

// Middleware rejects over-limit requests with 429 and the error envelope.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.Allow(r) {
			writeError(w, http.StatusTooManyRequests, "Too Many Requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) cleanupLoop() {
	for {
		select {
		case <-rl.cleanup.C:
			rl.cleanupOldClients()
		case <-rl.done:
			return
		}
	}
}

// cleanupOldClients drops clients idle for more than an hour so the client
// map stays bounded on long-running services.
func (rl *RateLimiter) cleanupOldClients() {
	cutoff := time.Now().Add(-time.Hour)

	rl.mu.Lock()
	defer rl.mu.Unlock()
	for ip, client := range rl.clients {
		if client.lastRequest.Before(cutoff) {
			delete(rl.clients, ip)
		}
	}
}

// Shutdown stops the background cleanup goroutine. Idempotent-enough for
// use in deferred teardown; the limiter keeps working afterwards.
func (rl *RateLimiter) Shutdown() {
	rl.cleanup.Stop()
	select {
	case <-rl.done:
	default:
		close(rl.done)
	}
}

// clientIP extracts the real client IP, honoring proxy headers in order of
// reliability: X-Forwarded-For, X-Real-IP, then the socket address.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		for _, ip := range strings.Split(xff, ",") {
			ip = strings.TrimSpace(ip)
			if ip != "" && net.ParseIP(ip) != nil {
				return ip
			}
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
