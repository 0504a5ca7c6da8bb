package release

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// RateLimitError reports an exhausted GitHub API rate limit.
type RateLimitError struct {
	// ResetAt is when the limit resets; zero when the header was missing.
	ResetAt time.Time
}

func (e *RateLimitError) Error() string {
	reset := "unknown"
	if !e.ResetAt.IsZero() {
		reset = e.ResetAt.UTC().Format(time.RFC3339)
	}
	return fmt.Sprintf("GitHub API rate limit exceeded. Rate limit resets at %s. "+
		"Provide a github-token input to increase the rate limit.", reset)
}

// RegistryError reports an unexpected registry response.
type RegistryError struct {
	StatusCode int
	Message    string
}

func (e *RegistryError) Error() string {
	return e.Message
}

// ParseError reports a registry response body that is not valid JSON.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("Failed to parse GitHub API response: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// rateLimitErrorFromResponse returns a RateLimitError when resp is a 403
// whose X-RateLimit-Remaining header is "0", nil otherwise.
func rateLimitErrorFromResponse(resp *http.Response) *RateLimitError {
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		return nil
	}
	if strings.TrimSpace(resp.Header.Get("X-RateLimit-Remaining")) != "0" {
		return nil
	}

	rl := &RateLimitError{}
	if reset, err := strconv.ParseInt(strings.TrimSpace(resp.Header.Get("X-RateLimit-Reset")), 10, 64); err == nil {
		rl.ResetAt = time.Unix(reset, 0)
	}
	return rl
}
