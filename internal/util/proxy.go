package util

import (
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// NewProxyFunc creates a proxy function for outbound model calls.
// An empty proxyURL falls back to HTTP_PROXY, HTTPS_PROXY and NO_PROXY.
func NewProxyFunc(proxyURL string) (func(*http.Request) (*url.URL, error), error) {
	if proxyURL == "" {
		return http.ProxyFromEnvironment, nil
	}

	parsed, err := url.Parse(proxyURL)
	if err != nil {
		return nil, fmt.Errorf("parse proxy url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("parse proxy url: %q has no scheme or host", proxyURL)
	}

	return http.ProxyURL(parsed), nil
}

// NewHTTPClient creates a client with the given timeout routed through proxyURL.
// A zero timeout means no client-side limit; callers then rely on contexts.
func NewHTTPClient(timeout time.Duration, proxyURL string) (*http.Client, error) {
	proxyFunc, err := NewProxyFunc(proxyURL)
	if err != nil {
		return nil, err
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = proxyFunc

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}, nil
}
