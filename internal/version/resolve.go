// Package version validates requested same versions and resolves "latest"
// to a concrete release.
//
// A resolved version is embedded verbatim into a download URL and a tool
// cache path, so the semantic version grammar check here is what keeps
// values such as "../../etc/passwd" out of both.
package version

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/traiproject/setup-same/internal/logging"
	"github.com/traiproject/setup-same/internal/release"
)

// Latest is the symbolic version resolved through the release registry.
const Latest = "latest"

var semverPattern = regexp.MustCompile(`^\d+\.\d+\.\d+(-[A-Za-z0-9.-]+)?$`)

// InvalidError reports a version token that cannot be used.
type InvalidError struct {
	Message string
}

func (e *InvalidError) Error() string {
	return e.Message
}

// LatestTagFetcher looks up the tag of the latest release.
type LatestTagFetcher interface {
	LatestTag(ctx context.Context, token string) (string, error)
}

// Resolver turns user version tokens into concrete versions.
type Resolver struct {
	fetcher LatestTagFetcher
	logger  logging.Logger
}

// NewResolver creates a resolver. logger may be nil.
func NewResolver(fetcher LatestTagFetcher, logger logging.Logger) *Resolver {
	return &Resolver{
		fetcher: fetcher,
		logger:  logging.OrNoop(logger),
	}
}

// Validate trims input, strips one leading "v" and checks the grammar. It
// returns either Latest or a bare semantic version and never touches the
// network.
func Validate(input string) (string, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return "", &InvalidError{Message: "Version cannot be empty"}
	}

	token := strings.TrimPrefix(trimmed, "v")
	if token == "" {
		return "", &InvalidError{Message: `Invalid version: input was "v" with no version number`}
	}

	if token != Latest && !semverPattern.MatchString(token) {
		return "", &InvalidError{Message: fmt.Sprintf(
			"Invalid version format: %s. Expected semver format (e.g., 1.0.0) or 'latest'", token)}
	}

	return token, nil
}

// Resolve returns the concrete version for input. Literal versions are
// returned without network access; "latest" costs exactly one registry query.
func (r *Resolver) Resolve(ctx context.Context, input, token string) (string, error) {
	v, err := Validate(input)
	if err != nil {
		return "", err
	}

	if v != Latest {
		r.logPrerelease(v)
		return v, nil
	}

	if r.fetcher == nil {
		return "", fmt.Errorf("resolve latest version: no release registry configured")
	}

	r.logger.Info("Resolving latest same release")
	tag, err := r.fetcher.LatestTag(ctx, token)
	if err != nil {
		return "", err
	}

	resolved := strings.TrimPrefix(tag, "v")
	if !semverPattern.MatchString(resolved) {
		return "", &release.RegistryError{
			StatusCode: 200,
			Message:    fmt.Sprintf("Latest release tag %s is not a valid semantic version", tag),
		}
	}

	r.logger.Info("Resolved latest version", "version", resolved)
	r.logPrerelease(resolved)
	return resolved, nil
}

func (r *Resolver) logPrerelease(v string) {
	if pre := semver.Prerelease("v" + v); pre != "" {
		r.logger.Warn("Using a prerelease version of same", "version", v, "prerelease", strings.TrimPrefix(pre, "-"))
	}
}
