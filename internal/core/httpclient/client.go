// Package httpclient builds the outbound HTTP client used by remote adapters.
package httpclient

import (
	"net/http"
	"time"

	"dockload/internal/core/logger"

	"go.uber.org/zap"
)

// LoggingRoundTripper logs every exchange and attaches credentials.
type LoggingRoundTripper struct {
	// Proxied is the underlying RoundTripper to execute the request.
	Proxied http.RoundTripper
	// Token is sent as a bearer token when set.
	Token string
	log   *zap.Logger
}

// RoundTrip executes the request and logs details. The URL is logged with
// credentials redacted and the Authorization header is never logged.
func (lrt *LoggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if lrt.Token != "" {
		req = req.Clone(req.Context())
		req.Header.Set("Authorization", "Bearer "+lrt.Token)
	}

	start := time.Now()
	target := req.URL.Redacted()

	resp, err := lrt.Proxied.RoundTrip(req)
	duration := time.Since(start)

	if err != nil {
		lrt.log.Warn("HTTP request failed",
			zap.String("method", req.Method),
			zap.String("url", target),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return nil, err
	}

	level := zap.DebugLevel
	if resp.StatusCode >= http.StatusBadRequest {
		level = zap.WarnLevel
	}
	lrt.log.Log(level, "HTTP request completed",
		zap.String("method", req.Method),
		zap.String("url", target),
		zap.Int("status_code", resp.StatusCode),
		zap.Duration("duration", duration),
	)

	return resp, nil
}

// Option customizes the client built by NewClient.
type Option func(*LoggingRoundTripper)

// WithBearerToken authenticates every request with token. An empty token is ignored.
func WithBearerToken(token string) Option {
	return func(lrt *LoggingRoundTripper) {
		lrt.Token = token
	}
}

// WithTransport replaces http.DefaultTransport.
func WithTransport(rt http.RoundTripper) Option {
	return func(lrt *LoggingRoundTripper) {
		lrt.Proxied = rt
	}
}

// NewClient returns an http.Client with logging middleware.
func NewClient(timeout time.Duration, opts ...Option) *http.Client {
	lrt := &LoggingRoundTripper{
		Proxied: http.DefaultTransport,
		log:     logger.Named("httpclient"),
	}
	for _, opt := range opts {
		opt(lrt)
	}

	return &http.Client{
		Transport: lrt,
		Timeout:   timeout,
	}
}
