package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/ppiankov/lepidex/internal/metrics"
	"github.com/ppiankov/lepidex/internal/model"
	"github.com/ppiankov/lepidex/internal/util"
	"github.com/ppiankov/lepidex/internal/worker"
)

const defaultAccept = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"

// Auth describes how a request carries an API key
type Auth struct {
	Header   string // Header name, e.g. Ocp-Apim-Subscription-Key
	Param    string // Query parameter name, used when Header is empty
	Key      string
	Required bool // Fail with KindAuth without a request when Key is empty
}

// Request is one GET to perform
type Request struct {
	URL     string
	Headers map[string]string
	Query   map[string]string
	Auth    Auth
	Timeout time.Duration // Overrides the client default when > 0
	Accept  string
}

// Document is a successful response
type Document struct {
	URL         string // Requested URL
	FinalURL    string // URL after redirects
	StatusCode  int
	ContentType string
	Body        []byte
}

// Options configures a Client
type Options struct {
	Timeout       time.Duration
	UserAgent     string
	MaxBodyBytes  int64
	Proxy         string
	RespectRobots bool
	Retry         RetryPolicy
	Limiter       *worker.Limiter // Optional per-host politeness
}

// OptionsFromConfig builds client options from configuration
func OptionsFromConfig(cfg *model.Config, limiter *worker.Limiter) Options {
	return Options{
		Timeout:       cfg.HTTP.Timeout,
		UserAgent:     cfg.HTTP.UserAgent,
		MaxBodyBytes:  cfg.HTTP.MaxBodyBytes,
		Proxy:         cfg.HTTP.Proxy,
		RespectRobots: cfg.HTTP.RespectRobots,
		Retry: RetryPolicy{
			MaxAttempts: cfg.Retry.MaxAttempts,
			BaseDelay:   cfg.Retry.BaseDelay,
			MaxDelay:    cfg.Retry.MaxDelay,
		},
		Limiter: limiter,
	}
}

// Client performs GET requests with retry, politeness and error
// classification. It is safe for concurrent use.
type Client struct {
	http    *resty.Client
	robots  *util.RobotsChecker
	opts    Options
	timeout time.Duration
}

// NewClient creates a client over a shared resty connection pool
func NewClient(opts Options) (*Client, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = 20 * time.Second
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 5 * 1024 * 1024
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "lepidex"
	}
	opts.Retry = opts.Retry.withDefaults()

	rc := resty.New()
	rc.SetRedirectPolicy(resty.FlexibleRedirectPolicy(3))
	rc.SetHeader("User-Agent", opts.UserAgent)

	proxy, err := util.NewProxyFunc(opts.Proxy)
	if err != nil {
		return nil, err
	}
	if transport, err := rc.Transport(); err == nil {
		transport.Proxy = proxy
	}

	if opts.Limiter != nil {
		limiter := opts.Limiter
		rc.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			if isRobotsURL(req.URL) {
				return nil
			}
			return limiter.Wait(req.Context(), req.URL)
		})
	}

	c := &Client{
		http:    rc,
		opts:    opts,
		timeout: opts.Timeout,
	}
	if opts.RespectRobots {
		c.robots = util.NewRobotsChecker(rc, opts.UserAgent)
	}
	return c, nil
}

// isRobotsURL reports whether rawURL is a robots.txt file, which does not
// take a politeness slot from the host's page fetches
func isRobotsURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	return err == nil && u.Path == "/robots.txt"
}

// Resty exposes the underlying HTTP client for collaborators that speak
// other protocols over the same connection pool
func (c *Client) Resty() *resty.Client {
	return c.http
}

// Fetch performs req, retrying transient failures. Failures are returned as
// *Error.
func (c *Client) Fetch(ctx context.Context, req Request) (*Document, error) {
	if req.Auth.Required && req.Auth.Key == "" {
		return nil, &Error{Kind: KindAuth, URL: req.URL, Err: errors.New("api key not configured")}
	}

	parsed, err := url.Parse(req.URL)
	if err != nil || parsed.Host == "" {
		return nil, &Error{Kind: KindNotFound, URL: req.URL, Err: fmt.Errorf("invalid url: %q", req.URL)}
	}

	timeout := c.timeout
	if req.Timeout > 0 {
		timeout = req.Timeout
	}

	if c.robots != nil && !c.allowedByRobots(ctx, req.URL, timeout) {
		return nil, &Error{Kind: KindDisallowed, URL: req.URL, Err: errors.New("disallowed by robots.txt")}
	}

	host := strings.ToLower(parsed.Host)
	policy := c.opts.Retry

	for attempt := 1; ; attempt++ {
		doc, retryAfter, err := c.attempt(ctx, req, timeout)
		if err == nil {
			metrics.IncFetchAttempt(host, "ok")
			slog.DebugContext(ctx, "fetched", "url", req.URL, "status", doc.StatusCode, "bytes", len(doc.Body), "attempt", attempt)
			return doc, nil
		}

		var fe *Error
		retryable := errors.As(err, &fe) && fe.Kind == KindTransient && ctx.Err() == nil &&
			(fe.StatusCode == 0 || isRetryableStatus(fe.StatusCode))
		if !retryable || attempt >= policy.MaxAttempts {
			metrics.IncFetchAttempt(host, "error")
			return nil, err
		}

		delay := policy.backoff(attempt, retryAfter)
		metrics.IncFetchAttempt(host, "retry")
		slog.WarnContext(ctx, "retrying fetch", "url", req.URL, "attempt", attempt, "delay", delay, "error", err)

		if err := sleepFunc(ctx, delay); err != nil {
			return nil, &Error{Kind: KindTransient, URL: req.URL, Err: err}
		}
	}
}

func (c *Client) allowedByRobots(ctx context.Context, rawURL string, timeout time.Duration) bool {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return c.robots.IsAllowed(ctx, rawURL)
}

// attempt performs a single request bounded by timeout. retryAfter is set
// from a Retry-After header on 429/503.
func (c *Client) attempt(ctx context.Context, req Request, timeout time.Duration) (*Document, time.Duration, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	r := c.http.R().
		SetContext(ctx).
		SetDoNotParseResponse(true)

	accept := req.Accept
	if accept == "" {
		accept = defaultAccept
	}
	r.SetHeader("Accept", accept)
	r.SetHeader("Accept-Language", "en-US,en;q=0.9,sv;q=0.8")
	r.SetHeaders(req.Headers)
	r.SetQueryParams(req.Query)

	if req.Auth.Key != "" {
		switch {
		case req.Auth.Header != "":
			r.SetHeader(req.Auth.Header, req.Auth.Key)
		case req.Auth.Param != "":
			r.SetQueryParam(req.Auth.Param, req.Auth.Key)
		}
	}

	resp, err := r.Get(req.URL)
	if err != nil {
		if ctx.Err() != nil {
			err = ctx.Err()
		}
		return nil, 0, &Error{Kind: KindTransient, URL: req.URL, Err: err}
	}

	body := resp.RawBody()
	defer func() { _ = body.Close() }()

	status := resp.StatusCode()
	if status < 200 || status >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(body, 64*1024))
		return nil, parseRetryAfter(resp.Header().Get("Retry-After")), &Error{
			Kind:       classifyStatus(status),
			StatusCode: status,
			URL:        req.URL,
		}
	}

	data, err := io.ReadAll(io.LimitReader(body, c.opts.MaxBodyBytes))
	if err != nil {
		if ctx.Err() != nil {
			err = ctx.Err()
		}
		return nil, 0, &Error{Kind: KindTransient, URL: req.URL, Err: fmt.Errorf("read body: %w", err)}
	}

	finalURL := req.URL
	if raw := resp.RawResponse; raw != nil && raw.Request != nil && raw.Request.URL != nil {
		finalURL = raw.Request.URL.String()
	}

	return &Document{
		URL:         req.URL,
		FinalURL:    finalURL,
		StatusCode:  status,
		ContentType: resp.Header().Get("Content-Type"),
		Body:        data,
	}, 0, nil
}
