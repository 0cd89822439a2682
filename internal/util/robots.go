package util

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	gocache "github.com/patrickmn/go-cache"
	"github.com/temoto/robotstxt"
)

// unreachableTTL bounds how long a host whose robots.txt could not be read
// is treated as allow-all before it is asked again
const unreachableTTL = 10 * time.Minute

// RobotsChecker checks robots.txt compliance. Policies are kept for the
// lifetime of the process; page content is never cached.
type RobotsChecker struct {
	policies  *gocache.Cache
	client    *resty.Client
	userAgent string
}

// NewRobotsChecker creates a checker that fetches robots.txt with client
func NewRobotsChecker(client *resty.Client, userAgent string) *RobotsChecker {
	return &RobotsChecker{
		policies:  gocache.New(gocache.NoExpiration, time.Hour),
		client:    client,
		userAgent: NormalizeUserAgent(userAgent),
	}
}

// CanFetch reports whether rawURL may be fetched and the host's crawl delay.
// An unreachable or broken robots.txt allows the fetch.
func (r *RobotsChecker) CanFetch(ctx context.Context, rawURL string) (bool, time.Duration, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false, 0, fmt.Errorf("parse URL: %w", err)
	}

	group := r.policy(ctx, parsed)
	if group == nil {
		return true, 0, nil
	}

	path := parsed.EscapedPath()
	if path == "" {
		path = "/"
	}
	if parsed.RawQuery != "" {
		path += "?" + parsed.RawQuery
	}

	return group.Test(path), group.CrawlDelay, nil
}

// IsAllowed is a convenience method that returns only the allowed status
func (r *RobotsChecker) IsAllowed(ctx context.Context, rawURL string) bool {
	allowed, _, _ := r.CanFetch(ctx, rawURL)
	return allowed
}

// policy returns the matching robots.txt group for the URL's host, fetching
// it on first use
func (r *RobotsChecker) policy(ctx context.Context, u *url.URL) *robotstxt.Group {
	key := u.Scheme + "://" + strings.ToLower(u.Host)
	if cached, ok := r.policies.Get(key); ok {
		return cached.(*robotstxt.Group)
	}

	robotsURL := key + "/robots.txt"
	resp, err := r.client.R().
		SetContext(ctx).
		SetHeader("User-Agent", r.userAgent).
		Get(robotsURL)
	if err != nil {
		slog.DebugContext(ctx, "robots.txt unreachable", "url", robotsURL, "error", err)
		r.policies.Set(key, (*robotstxt.Group)(nil), unreachableTTL)
		return nil
	}

	if resp.StatusCode() >= http.StatusInternalServerError {
		slog.DebugContext(ctx, "robots.txt server error", "url", robotsURL, "status", resp.StatusCode())
		r.policies.Set(key, (*robotstxt.Group)(nil), unreachableTTL)
		return nil
	}

	data, err := robotstxt.FromStatusAndBytes(resp.StatusCode(), resp.Body())
	if err != nil {
		slog.DebugContext(ctx, "robots.txt unparseable", "url", robotsURL, "error", err)
		r.policies.Set(key, (*robotstxt.Group)(nil), unreachableTTL)
		return nil
	}

	group := data.FindGroup(r.userAgent)
	r.policies.Set(key, group, gocache.NoExpiration)
	return group
}

// Clear drops all remembered policies
func (r *RobotsChecker) Clear() {
	r.policies.Flush()
}

// NormalizeUserAgent returns the product token of a user agent string,
// which is what robots.txt groups match against
func NormalizeUserAgent(ua string) string {
	parts := strings.Fields(ua)
	if len(parts) > 0 {
		return strings.Split(parts[0], "/")[0]
	}
	return ua
}
