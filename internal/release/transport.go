package release

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/traiproject/setup-same/internal/retry"
)

// retryBackoffUnit is the base of the transport backoff: 10ms, 20ms, 40ms.
const retryBackoffUnit = 5 * time.Millisecond

// retryTransport re-issues idempotent requests that fail with a gateway
// status (502, 503, 504) or a transient network error.
type retryTransport struct {
	base   http.RoundTripper
	policy retry.Policy
}

func newRetryTransport(base http.RoundTripper, maxRetries int) *retryTransport {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &retryTransport{
		base: base,
		policy: retry.Policy{
			Attempts:  maxRetries + 1,
			Delay:     retry.Exponential(retryBackoffUnit),
			Retryable: isTransient,
		},
	}
}

// gatewayStatusError marks a response worth retrying.
type gatewayStatusError struct {
	code int
}

func (e *gatewayStatusError) Error() string {
	return fmt.Sprintf("gateway status %d", e.code)
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if !replayable(req) {
		return t.base.RoundTrip(req)
	}

	var resp *http.Response
	err := retry.Run(req.Context(), t.policy, func(ctx context.Context, attempt int) error {
		if resp != nil {
			discard(resp)
			resp = nil
		}

		r, err := t.base.RoundTrip(req)
		if err != nil {
			return err
		}
		resp = r

		switch r.StatusCode {
		case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return &gatewayStatusError{code: r.StatusCode}
		}
		return nil
	})

	var gw *gatewayStatusError
	if errors.As(err, &gw) && resp != nil {
		// out of retries: hand the last gateway response to the caller
		return resp, nil
	}
	if err != nil {
		if resp != nil {
			discard(resp)
		}
		return nil, err
	}
	return resp, nil
}

// replayable reports whether req can be sent more than once.
func replayable(req *http.Request) bool {
	switch req.Method {
	case http.MethodGet, http.MethodHead:
	default:
		return false
	}
	return req.Body == nil || req.Body == http.NoBody
}

func isTransient(err error) bool {
	var gw *gatewayStatusError
	if errors.As(err, &gw) {
		return true
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// discard drains and closes a response so its connection can be reused.
func discard(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	_ = resp.Body.Close()
}
