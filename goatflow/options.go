package goatflow

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Option configures a Client.
type Option func(*clientOptions)

// clientOptions holds configuration resolved at construction time. Timeouts
// are configuration, not negotiated at runtime: the dispatch call and a
// triggered refresh each have their own budget.
type clientOptions struct {
	httpClient     *http.Client
	timeout        time.Duration
	refreshTimeout time.Duration
	expiryMargin   time.Duration
	userAgent      string
	logger         zerolog.Logger
}

func defaultOptions() *clientOptions {
	return &clientOptions{
		timeout:        30 * time.Second,
		refreshTimeout: 10 * time.Second,
		expiryMargin:   DefaultExpiryMargin,
		userAgent:      "goatflow-go/" + Version,
		logger:         zerolog.Nop(),
	}
}

func resolveOptions(opts []Option) *clientOptions {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	if o.httpClient == nil {
		o.httpClient = &http.Client{Timeout: o.timeout}
	}
	return o
}

// WithHTTPClient supplies a custom HTTP client, e.g. for connection pooling
// or proxy settings. Its own timeout takes precedence over WithTimeout.
func WithHTTPClient(client *http.Client) Option {
	return func(o *clientOptions) {
		o.httpClient = client
	}
}

// WithTimeout sets the per-dispatch deadline.
func WithTimeout(timeout time.Duration) Option {
	return func(o *clientOptions) {
		if timeout > 0 {
			o.timeout = timeout
		}
	}
}

// WithRefreshTimeout sets the deadline for a token refresh exchange.
func WithRefreshTimeout(timeout time.Duration) Option {
	return func(o *clientOptions) {
		if timeout > 0 {
			o.refreshTimeout = timeout
		}
	}
}

// WithExpiryMargin sets how long before its stated expiry a token is already
// treated as expired.
func WithExpiryMargin(margin time.Duration) Option {
	return func(o *clientOptions) {
		if margin >= 0 {
			o.expiryMargin = margin
		}
	}
}

// WithUserAgent sets a custom User-Agent string.
func WithUserAgent(userAgent string) Option {
	return func(o *clientOptions) {
		o.userAgent = userAgent
	}
}

// WithLogger attaches a zerolog logger; the default discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *clientOptions) {
		o.logger = logger
	}
}
