package binary

import (
	"context"
	"errors"
	"fmt"
)

// InstallResult describes a completed install.
type InstallResult struct {
	// CachedPath is the tool cache directory holding the binary.
	CachedPath string
	// CacheHit reports whether the binary was already cached.
	CacheHit bool
}

// ErrEmptyArtifact is returned when the downloaded archive has zero bytes.
var ErrEmptyArtifact = errors.New("Downloaded file is empty") //nolint:staticcheck // surfaced verbatim to the workflow log

// DownloadError reports a failed artifact download.
type DownloadError struct {
	URL        string
	StatusCode int // zero when no response was received
	Err        error
}

func (e *DownloadError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("Failed to download %s: HTTP %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("Failed to download %s: %v", e.URL, e.Err)
}

func (e *DownloadError) Unwrap() error {
	return e.Err
}

// ExtractError reports a failure to unpack the release archive.
type ExtractError struct {
	Archive string
	Err     error
}

func (e *ExtractError) Error() string {
	return fmt.Sprintf("Failed to extract %s: %v", e.Archive, e.Err)
}

func (e *ExtractError) Unwrap() error {
	return e.Err
}

// BinaryNotFoundError reports that the archive did not contain the binary.
type BinaryNotFoundError struct {
	Path string
}

func (e *BinaryNotFoundError) Error() string {
	return fmt.Sprintf("Binary not found at %s after extraction", e.Path)
}

// VerificationMethod indicates how an archive was verified
type VerificationMethod int

const (
	// VerificationNone indicates no verification was configured
	VerificationNone VerificationMethod = iota
	// VerificationGPG indicates a detached OpenPGP signature check
	VerificationGPG
	// VerificationSHA256 indicates a SHA256 digest check
	VerificationSHA256
)

// String returns the string representation of the verification method
func (v VerificationMethod) String() string {
	switch v {
	case VerificationGPG:
		return "GPG"
	case VerificationSHA256:
		return "SHA256"
	case VerificationNone:
		return "None"
	default:
		return "Unknown"
	}
}

// VerificationError reports an archive that failed an integrity check.
type VerificationError struct {
	Method VerificationMethod
	Err    error
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("%s verification failed: %v", e.Method, e.Err)
}

func (e *VerificationError) Unwrap() error {
	return e.Err
}

// Downloader fetches a single artifact into a temporary file.
// Implementations make exactly one attempt per call.
type Downloader interface {
	Download(ctx context.Context, url, token string) (string, error)
}

// Extractor unpacks an archive into a fresh directory and returns it.
type Extractor interface {
	Extract(archivePath string) (string, error)
}

// CacheStore is the tool cache as seen by the Installer.
type CacheStore interface {
	Find(tool, version, platformTag string) string
	Store(sourceDir, tool, version, platformTag string) (string, error)
}

// PathPublisher makes a directory visible on PATH for later steps.
type PathPublisher interface {
	Publish(dir string) error
}

// Verifier checks a downloaded archive before it is extracted.
type Verifier interface {
	Verify(ctx context.Context, archivePath, url, token string) error
}
