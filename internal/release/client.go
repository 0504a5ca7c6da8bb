// Package release talks to the GitHub release registry that publishes same:
// it looks up the latest release tag and builds artifact download URLs.
package release

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultRepository is the owner/name of the same repository.
	DefaultRepository = "traiproject/same"
	// DefaultServerURL hosts release artifacts.
	DefaultServerURL = "https://github.com"
	// DefaultAPIURL serves release metadata.
	DefaultAPIURL = "https://api.github.com"
	// DefaultTimeout bounds a registry request.
	DefaultTimeout = 30 * time.Second
	// DefaultMaxRetries is the number of transport-level retries for
	// gateway errors.
	DefaultMaxRetries = 3
	// UserAgent is sent with every request.
	UserAgent = "setup-same"

	maxBodyExcerpt = 200
)

// Options configures a Client.
type Options struct {
	APIURL     string
	Repository string
	Timeout    time.Duration
	MaxRetries int
	// Transport overrides the underlying round tripper (tests).
	Transport http.RoundTripper
}

// Client queries the release registry.
type Client struct {
	apiURL     string
	repository string
	http       *http.Client
}

type latestReleaseResponse struct {
	TagName interface{} `json:"tag_name"`
}

// NewClient creates a registry client. Zero option fields take defaults.
func NewClient(opts Options) *Client {
	if opts.APIURL == "" {
		opts.APIURL = DefaultAPIURL
	}
	if opts.Repository == "" {
		opts.Repository = DefaultRepository
	}
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = DefaultMaxRetries
	}

	base := opts.Transport
	if base == nil {
		base = &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   opts.Timeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:        10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
		}
	}

	return &Client{
		apiURL:     strings.TrimRight(opts.APIURL, "/"),
		repository: opts.Repository,
		http: &http.Client{
			Timeout:   opts.Timeout,
			Transport: newRetryTransport(base, opts.MaxRetries),
		},
	}
}

// LatestReleaseURL returns the registry endpoint for the latest release.
func (c *Client) LatestReleaseURL() string {
	return fmt.Sprintf("%s/repos/%s/releases/latest", c.apiURL, c.repository)
}

// LatestTag returns the raw tag_name of the latest release. token is sent as
// an Authorization header when non-empty.
func (c *Client) LatestTag(ctx context.Context, token string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.LatestReleaseURL(), nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", UserAgent)
	if token != "" {
		req.Header.Set("Authorization", "token "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch latest release: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read latest release response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if rl := rateLimitErrorFromResponse(resp); rl != nil {
			return "", rl
		}
		return "", &RegistryError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("Failed to fetch latest release: %d %s", resp.StatusCode, excerpt(body)),
		}
	}

	var payload latestReleaseResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", &ParseError{Err: err}
	}

	tag, ok := payload.TagName.(string)
	if !ok || strings.TrimSpace(tag) == "" {
		return "", &RegistryError{
			StatusCode: resp.StatusCode,
			Message:    "No valid tag_name found in GitHub API response",
		}
	}

	return tag, nil
}

// excerpt trims a response body to at most maxBodyExcerpt characters.
func excerpt(body []byte) string {
	s := strings.TrimSpace(string(body))
	runes := []rune(s)
	if len(runes) > maxBodyExcerpt {
		return string(runes[:maxBodyExcerpt])
	}
	return s
}
