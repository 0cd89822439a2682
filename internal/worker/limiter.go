package worker

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter enforces a minimum interval between requests to the same host.
// Hosts are independent; a slow host never delays another.
type Limiter struct {
	limiters        map[string]*rate.Limiter
	mu              sync.RWMutex
	defaultInterval time.Duration
}

// NewLimiter creates a limiter with the given default per-host interval.
// A non-positive interval disables limiting for hosts without an override.
func NewLimiter(minInterval time.Duration) *Limiter {
	return &Limiter{
		limiters:        make(map[string]*rate.Limiter),
		defaultInterval: minInterval,
	}
}

// Wait blocks until a request to rawURL's host is allowed
func (l *Limiter) Wait(ctx context.Context, rawURL string) error {
	host, err := extractHost(rawURL)
	if err != nil {
		return err
	}

	return l.getLimiter(host).Wait(ctx)
}

// Allow reports whether a request is allowed now, consuming the slot if so
func (l *Limiter) Allow(rawURL string) bool {
	host, err := extractHost(rawURL)
	if err != nil {
		return false
	}

	return l.getLimiter(host).Allow()
}

// getLimiter returns the rate limiter for a host
func (l *Limiter) getLimiter(host string) *rate.Limiter {
	l.mu.RLock()
	limiter, exists := l.limiters[host]
	l.mu.RUnlock()

	if exists {
		return limiter
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Double-check after acquiring write lock
	if limiter, exists := l.limiters[host]; exists {
		return limiter
	}

	limiter = newIntervalLimiter(l.defaultInterval)
	l.limiters[host] = limiter

	return limiter
}

// SetHostInterval overrides the minimum interval for one host
func (l *Limiter) SetHostInterval(host string, minInterval time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.limiters[strings.ToLower(host)] = newIntervalLimiter(minInterval)
}

// SetURLInterval overrides the interval for the host of a base URL
func (l *Limiter) SetURLInterval(rawURL string, minInterval time.Duration) error {
	host, err := extractHost(rawURL)
	if err != nil {
		return err
	}
	l.SetHostInterval(host, minInterval)
	return nil
}

func newIntervalLimiter(minInterval time.Duration) *rate.Limiter {
	if minInterval <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(minInterval), 1)
}

// extractHost extracts the lowercased host (with port) from a URL
func extractHost(rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	if parsed.Host == "" {
		return "", fmt.Errorf("no host in url: %q", rawURL)
	}
	return strings.ToLower(parsed.Host), nil
}
