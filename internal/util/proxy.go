package util

import (
	"fmt"
	"net/http"
	"net/url"
)

// NewProxyFunc returns a transport proxy function. An empty proxyURL falls
// back to the HTTP_PROXY/HTTPS_PROXY/NO_PROXY environment variables.
func NewProxyFunc(proxyURL string) (func(*http.Request) (*url.URL, error), error) {
	if proxyURL == "" {
		return http.ProxyFromEnvironment, nil
	}

	parsed, err := url.Parse(proxyURL)
	if err != nil {
		return nil, fmt.Errorf("parse proxy url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("proxy url needs scheme and host: %q", proxyURL)
	}

	return http.ProxyURL(parsed), nil
}
