package utils

import (
	"net/http"
	"time"
)

// HTTPClientConfig controls the shared outbound HTTP client.
// Keep it config-driven; defaults should be safe and conservative.
type HTTPClientConfig struct {
	Timeout time.Duration

	// MaxAttempts caps total tries (first attempt included).
	MaxAttempts int

	// RetryWait is the flat pause between attempts.
	RetryWait time.Duration
}

func (c HTTPClientConfig) withDefaults() HTTPClientConfig {
	out := c
	if out.Timeout <= 0 {
		out.Timeout = 15 * time.Second
	}
	if out.MaxAttempts <= 0 {
		out.MaxAttempts = 3
	}
	if out.RetryWait < 0 {
		out.RetryWait = 0
	}
	return out
}

// NewHTTPClient returns a client that retries transport failures and
// 5xx responses up to MaxAttempts. Only requests with a rewindable body
// (req.GetBody set, which stdlib request constructors provide for
// buffered bodies) are retried after the first attempt.
func NewHTTPClient(cfg HTTPClientConfig) *http.Client {
	cfg = cfg.withDefaults()
	return &http.Client{
		Timeout: cfg.Timeout,
		Transport: &retryTransport{
			next:        http.DefaultTransport,
			maxAttempts: cfg.MaxAttempts,
			wait:        cfg.RetryWait,
		},
	}
}

type retryTransport struct {
	next        http.RoundTripper
	maxAttempts int
	wait        time.Duration
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var resp *http.Response
	var err error

	for attempt := 1; attempt <= t.maxAttempts; attempt++ {
		// RoundTrippers must not modify the caller's request, so each
		// retry runs on a clone with a fresh body.
		attemptReq := req
		if attempt > 1 {
			if req.Body != nil {
				if req.GetBody == nil {
					// Cannot safely replay the body; surface the last outcome.
					return resp, err
				}
				body, bodyErr := req.GetBody()
				if bodyErr != nil {
					return resp, err
				}
				attemptReq = req.Clone(req.Context())
				attemptReq.Body = body
			}
			if t.wait > 0 {
				select {
				case <-req.Context().Done():
					return nil, req.Context().Err()
				case <-time.After(t.wait):
				}
			}
		}

		resp, err = t.next.RoundTrip(attemptReq)
		if err != nil {
			if req.Context().Err() != nil {
				return nil, err
			}
			continue
		}
		if resp.StatusCode < http.StatusInternalServerError {
			return resp, nil
		}
		if attempt < t.maxAttempts {
			_ = resp.Body.Close()
		}
	}
	return resp, err
}
