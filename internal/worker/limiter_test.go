package worker

import (
	"context"
	"testing"
	"time"
)

func TestLimiter_Wait(t *testing.T) {
	limiter := NewLimiter(10 * time.Millisecond)
	ctx := context.Background()

	if err := limiter.Wait(ctx, "http://example.com/foo"); err != nil {
		t.Errorf("wait failed: %v", err)
	}

	// Different host should also work
	if err := limiter.Wait(ctx, "http://other.org"); err != nil {
		t.Errorf("wait failed: %v", err)
	}
}

func TestLimiter_MinInterval(t *testing.T) {
	limiter := NewLimiter(50 * time.Millisecond)
	ctx := context.Background()
	url := "http://example.com/a"

	start := time.Now()
	if err := limiter.Wait(ctx, url); err != nil {
		t.Fatalf("first wait failed: %v", err)
	}
	if err := limiter.Wait(ctx, "http://example.com/b"); err != nil {
		t.Fatalf("second wait failed: %v", err)
	}

	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Errorf("expected second request to wait ~50ms, waited %v", elapsed)
	}
}

func TestLimiter_HostsIndependent(t *testing.T) {
	limiter := NewLimiter(time.Hour)

	if !limiter.Allow("http://example.com") {
		t.Errorf("first request should pass")
	}
	if limiter.Allow("http://example.com/other") {
		t.Errorf("expected second request to same host to be refused")
	}
	if !limiter.Allow("http://other.com") {
		t.Errorf("expected allow for other host")
	}
}

func TestLimiter_ZeroIntervalDisables(t *testing.T) {
	limiter := NewLimiter(0)
	for i := 0; i < 5; i++ {
		if !limiter.Allow("http://example.com") {
			t.Fatalf("request %d refused with limiting disabled", i)
		}
	}
}

func TestLimiter_SetHostInterval(t *testing.T) {
	limiter := NewLimiter(0)
	limiter.SetHostInterval("Slow.com", time.Hour)

	if !limiter.Allow("http://slow.com") {
		t.Errorf("first request should pass")
	}
	if limiter.Allow("http://slow.com") {
		t.Errorf("second request should fail")
	}
	if !limiter.Allow("http://fast.com") || !limiter.Allow("http://fast.com") {
		t.Errorf("other host should pass")
	}
}

func TestLimiter_SetURLInterval(t *testing.T) {
	limiter := NewLimiter(0)
	if err := limiter.SetURLInterval("https://ukmoths.org.uk/species/", time.Hour); err != nil {
		t.Fatalf("SetURLInterval failed: %v", err)
	}
	limiter.Allow("https://ukmoths.org.uk/x")
	if limiter.Allow("https://ukmoths.org.uk/y") {
		t.Errorf("expected override to apply to host")
	}

	if err := limiter.SetURLInterval("not a url", time.Second); err == nil {
		t.Errorf("expected error for url without host")
	}
}

func TestLimiter_WaitCancelled(t *testing.T) {
	limiter := NewLimiter(time.Hour)
	limiter.Allow("http://example.com")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if err := limiter.Wait(ctx, "http://example.com"); err == nil {
		t.Errorf("expected wait to fail when it cannot finish before the deadline")
	}
}

func TestExtractHost(t *testing.T) {
	host, err := extractHost("http://Example.com:8080/foo")
	if err != nil {
		t.Fatalf("extractHost failed: %v", err)
	}
	if host != "example.com:8080" {
		t.Errorf("expected example.com:8080, got %s", host)
	}

	_, err = extractHost("::invalid")
	if err == nil {
		t.Errorf("expected error for invalid URL")
	}
}
