package binary

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/traiproject/setup-same/internal/logging"
	"github.com/traiproject/setup-same/internal/platform"
	"github.com/traiproject/setup-same/internal/release"
	"github.com/traiproject/setup-same/internal/retry"
)

const (
	// DefaultAttempts is the number of download attempts per install
	DefaultAttempts = 3
	// DefaultBackoffUnit waits 2s after the first failed download and 4s
	// after the second
	DefaultBackoffUnit = time.Second
)

// Installer orchestrates cache lookup, download, verification, extraction
// and PATH publication of the same binary.
type Installer struct {
	serverURL  string
	repository string
	hostOS     string

	downloader Downloader
	extractor  Extractor
	cache      CacheStore
	publisher  PathPublisher
	verifier   Verifier
	logger     logging.Logger

	attempts int
	backoff  time.Duration
	sleep    func(ctx context.Context, d time.Duration) error
}

// Config holds configuration for the installer
type Config struct {
	// ServerURL is the GitHub web root (default: https://github.com)
	ServerURL string
	// Repository is the owner/name release source (default: traiproject/same)
	Repository string
	// HostOS is the raw host OS identifier, used for the binary name and chmod
	HostOS string

	Downloader Downloader
	Extractor  Extractor
	Cache      CacheStore
	Publisher  PathPublisher
	// Verifier is optional
	Verifier Verifier
	Logger   logging.Logger

	// Attempts defaults to DefaultAttempts
	Attempts int
	// BackoffUnit defaults to DefaultBackoffUnit
	BackoffUnit time.Duration
	// Sleep overrides the wait between download attempts (for testing only)
	Sleep func(ctx context.Context, d time.Duration) error
}

// NewInstaller creates a new installer
func NewInstaller(config Config) (*Installer, error) {
	if config.Downloader == nil {
		return nil, fmt.Errorf("Downloader is required")
	}
	if config.Extractor == nil {
		return nil, fmt.Errorf("Extractor is required")
	}
	if config.Cache == nil {
		return nil, fmt.Errorf("Cache is required")
	}
	if config.Publisher == nil {
		return nil, fmt.Errorf("Publisher is required")
	}

	serverURL := config.ServerURL
	if serverURL == "" {
		serverURL = release.DefaultServerURL
	}
	repository := config.Repository
	if repository == "" {
		repository = release.DefaultRepository
	}
	attempts := config.Attempts
	if attempts == 0 {
		attempts = DefaultAttempts
	}
	backoff := config.BackoffUnit
	if backoff == 0 {
		backoff = DefaultBackoffUnit
	}

	return &Installer{
		serverURL:  serverURL,
		repository: repository,
		hostOS:     config.HostOS,
		downloader: config.Downloader,
		extractor:  config.Extractor,
		cache:      config.Cache,
		publisher:  config.Publisher,
		verifier:   config.Verifier,
		logger:     logging.OrNoop(config.Logger),
		attempts:   attempts,
		backoff:    backoff,
		sleep:      config.Sleep,
	}, nil
}

// BinaryName returns the executable name for a raw host OS identifier.
func BinaryName(hostOS string) string {
	if isWindows(hostOS) {
		return release.ToolName + ".exe"
	}
	return release.ToolName
}

func isWindows(hostOS string) bool {
	host := platform.HostInfo{OS: hostOS}
	return host.IsWindows()
}

// Install makes version of same for d available and published on PATH.
// A cache hit performs no network access. On a miss the archive is
// downloaded (with retries), validated, extracted and registered in the
// cache. Errors from collaborators are returned unchanged.
func (i *Installer) Install(ctx context.Context, version string, d platform.Descriptor, token string) (*InstallResult, error) {
	cacheKey := d.Tag()

	if hit := i.cache.Find(release.ToolName, version, cacheKey); hit != "" {
		i.logger.Info("Found same in tool cache", "version", version, "path", hit)
		if err := i.publisher.Publish(hit); err != nil {
			return nil, err
		}
		return &InstallResult{CachedPath: hit, CacheHit: true}, nil
	}

	url := release.DownloadURL(i.serverURL, i.repository, release.ToolName, version, d)
	i.logger.Info("Downloading same", "version", version, "platform", d.String(), "url", url)

	archive, err := i.download(ctx, url, token)
	if err != nil {
		return nil, err
	}
	defer os.Remove(archive)

	info, err := os.Stat(archive)
	if err != nil {
		return nil, fmt.Errorf("stat downloaded archive: %w", err)
	}
	if info.Size() == 0 {
		return nil, ErrEmptyArtifact
	}

	if i.verifier != nil {
		i.logger.Info("Verifying archive integrity")
		if err := i.verifier.Verify(ctx, archive, url, token); err != nil {
			return nil, err
		}
	}

	i.logger.Info("Extracting archive")
	extracted, err := i.extractor.Extract(archive)
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(extracted)

	i.logger.Info("Adding same to tool cache")
	cachedDir, err := i.cache.Store(extracted, release.ToolName, version, cacheKey)
	if err != nil {
		return nil, err
	}

	binaryPath := filepath.Join(cachedDir, BinaryName(i.hostOS))
	if _, err := os.Stat(binaryPath); err != nil {
		return nil, &BinaryNotFoundError{Path: binaryPath}
	}

	if !isWindows(i.hostOS) {
		if err := SetExecutable(binaryPath); err != nil {
			return nil, err
		}
	}

	if err := i.publisher.Publish(cachedDir); err != nil {
		return nil, err
	}

	i.logger.Info("Installed same", "version", version, "path", cachedDir)
	return &InstallResult{CachedPath: cachedDir, CacheHit: false}, nil
}

func (i *Installer) download(ctx context.Context, url, token string) (string, error) {
	policy := retry.Policy{
		Attempts: i.attempts,
		Delay:    retry.Exponential(i.backoff),
		Sleep:    i.sleep,
		OnRetry: func(attempt int, err error, delay time.Duration) {
			i.logger.Warn(fmt.Sprintf("Download attempt %d failed: %v. Retrying in %s", attempt, err, delay))
		},
	}

	return retry.Do(ctx, policy, func(ctx context.Context, attempt int) (string, error) {
		i.logger.Info(fmt.Sprintf("Download attempt %d/%d", attempt, i.attempts))
		return i.downloader.Download(ctx, url, token)
	})
}
