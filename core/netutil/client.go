package netutil

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/m3rciful/vedbot/core/logger"
)

// ClientOptions tunes an outbound HTTP client. Zero values fall back to
// defaults; a negative timeout disables it.
type ClientOptions struct {
	// Name labels retry logs, e.g. "telegram" or "gemini".
	Name            string
	Timeout         time.Duration
	ResponseTimeout time.Duration
	Retries         int
	Backoff         time.Duration
}

const (
	defaultDialTimeout       = 5 * time.Second
	defaultTLSHandshake      = 5 * time.Second
	defaultIdleConnTimeout   = 30 * time.Second
	defaultResponseTimeout   = 5 * time.Second
	defaultClientTimeout     = 30 * time.Second
	defaultKeepAliveInterval = 30 * time.Second
	defaultRetryBackoff      = 2 * time.Second
)

// BuildHTTPClient returns a pooled HTTP client that retries transient
// transport failures up to opts.Retries times with linear backoff.
func BuildHTTPClient(opts ClientOptions) *http.Client {
	switch {
	case opts.ResponseTimeout == 0:
		opts.ResponseTimeout = defaultResponseTimeout
	case opts.ResponseTimeout < 0:
		opts.ResponseTimeout = 0
	}
	if opts.Backoff <= 0 {
		opts.Backoff = defaultRetryBackoff
	}
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: defaultDialTimeout, KeepAlive: defaultKeepAliveInterval}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       defaultIdleConnTimeout,
		TLSHandshakeTimeout:   defaultTLSHandshake,
		ResponseHeaderTimeout: opts.ResponseTimeout,
		ExpectContinueTimeout: 1 * time.Second,
	}

	var rt http.RoundTripper = transport
	if opts.Retries > 0 {
		rt = &retryTransport{
			base:       transport,
			name:       opts.Name,
			maxRetries: opts.Retries,
			backoff:    opts.Backoff,
		}
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = defaultClientTimeout
	}
	if timeout < 0 {
		timeout = 0
	}
	return &http.Client{Timeout: timeout, Transport: rt}
}

type retryTransport struct {
	base       http.RoundTripper
	name       string
	maxRetries int
	backoff    time.Duration
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	for attempt := 1; ; attempt++ {
		resp, err := t.base.RoundTrip(req)
		if err == nil || attempt > t.maxRetries || !ShouldRetry(err) {
			return resp, err
		}
		next, ok := rewind(req)
		if !ok {
			return nil, err
		}

		delay := t.backoff * time.Duration(attempt)
		logger.Warn(ctx, "net", "http.retry",
			slog.String("client", t.name),
			slog.String("host", req.URL.Host),
			slog.Int("attempts", attempt),
			slog.Duration("backoff", delay),
			slog.String("err", err.Error()),
		)
		if err := sleep(ctx, delay); err != nil {
			return nil, err
		}
		req = next
	}
}

// rewind clones req with a fresh body. Requests whose body cannot be
// replayed are not retried.
func rewind(req *http.Request) (*http.Request, bool) {
	clone := req.Clone(req.Context())
	if req.Body == nil || req.Body == http.NoBody {
		return clone, true
	}
	if req.GetBody == nil {
		return nil, false
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, false
	}
	clone.Body = body
	return clone, true
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
