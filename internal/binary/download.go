package binary

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/fatih/color"

	"github.com/traiproject/setup-same/internal/logging"
)

// DefaultUserAgent is the User-Agent header sent with requests
const DefaultUserAgent = "setup-same"

// DownloaderOptions configures an HTTPDownloader.
type DownloaderOptions struct {
	// TempDir receives downloaded files. Empty means os.TempDir().
	TempDir string
	// Timeout bounds a whole request. Zero means no limit.
	Timeout time.Duration
	// Client overrides the HTTP client; Timeout is ignored when set.
	Client *http.Client
	// Progress forces the progress bar on or off. Nil shows it when stderr
	// is a terminal.
	Progress *bool
}

// HTTPDownloader downloads artifacts over HTTP with a single attempt per call.
// Retries are the caller's concern.
type HTTPDownloader struct {
	client    *http.Client
	tempDir   string
	userAgent string
	progress  bool
}

// NewHTTPDownloader creates a new downloader
func NewHTTPDownloader(opts DownloaderOptions) *HTTPDownloader {
	client := opts.Client
	if client == nil {
		client = &http.Client{
			Timeout: opts.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				// Release assets redirect to object storage
				if len(via) >= 10 {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		}
	}

	showProgress := logging.IsTerminal(os.Stderr)
	if opts.Progress != nil {
		showProgress = *opts.Progress
	}

	return &HTTPDownloader{
		client:    client,
		tempDir:   opts.TempDir,
		userAgent: DefaultUserAgent,
		progress:  showProgress,
	}
}

// Download fetches url into a new temporary file and returns its path. The
// token, when non-empty, is sent as "Authorization: token <token>". Any
// non-200 response is a *DownloadError carrying the status code.
func (d *HTTPDownloader) Download(ctx context.Context, url, token string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", &DownloadError{URL: url, Err: fmt.Errorf("create request: %w", err)}
	}

	req.Header.Set("User-Agent", d.userAgent)
	req.Header.Set("Accept", "application/octet-stream")
	if token != "" {
		req.Header.Set("Authorization", "token "+token)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return "", &DownloadError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return "", &DownloadError{URL: url, StatusCode: resp.StatusCode}
	}

	tmpFile, err := os.CreateTemp(d.tempDir, "same-download-*")
	if err != nil {
		return "", &DownloadError{URL: url, Err: fmt.Errorf("create temp file: %w", err)}
	}
	tmpPath := tmpFile.Name()

	// Track whether we need to clean up the temp file
	cleanupNeeded := true
	defer func() {
		tmpFile.Close()
		if cleanupNeeded {
			os.Remove(tmpPath)
		}
	}()

	body, finish := io.Reader(resp.Body), func() {}
	if d.progress && resp.ContentLength > 0 {
		body, finish = progress(resp.Body, resp.ContentLength)
	}

	_, err = io.Copy(tmpFile, body)
	finish()
	if err != nil {
		return "", &DownloadError{URL: url, Err: fmt.Errorf("copy response body: %w", err)}
	}

	if err := tmpFile.Close(); err != nil {
		return "", &DownloadError{URL: url, Err: fmt.Errorf("close temp file: %w", err)}
	}

	cleanupNeeded = false
	return tmpPath, nil
}

// progress wraps reader with a terminal progress bar. The returned function
// finalizes the bar.
func progress(reader io.Reader, size int64) (io.Reader, func()) {
	bar := pb.
		New64(size).
		SetTemplate(
			pb.ProgressBarTemplate(
				color.New(color.FgHiBlack).Sprint(
					`   └ {{counters . }} {{bar . "[" "=" ">" " " "]" }} {{percent . }} {{speed . }}`,
				),
			),
		).
		SetRefreshRate(time.Second / 30).
		SetMaxWidth(100).
		SetWriter(os.Stderr).
		Start()

	return bar.NewProxyReader(reader), func() { bar.Finish() }
}
