package release

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/traiproject/setup-same/internal/platform"
)

// ToolName is the name of the released binary.
const ToolName = "same"

var repositoryPattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+/[A-Za-z0-9_.-]+$`)

// ValidateRepository checks that repo has the "owner/name" form and contains
// no path traversal segments.
func ValidateRepository(repo string) error {
	if !repositoryPattern.MatchString(repo) {
		return fmt.Errorf("invalid repository %q: expected owner/name", repo)
	}
	for _, part := range strings.Split(repo, "/") {
		if part == "." || part == ".." {
			return fmt.Errorf("invalid repository %q: expected owner/name", repo)
		}
	}
	return nil
}

// AssetName returns the archive name for a version and platform, e.g.
// same_1.0.0_linux_x86_64.tar.gz.
func AssetName(tool, version string, d platform.Descriptor) string {
	return fmt.Sprintf("%s_%s_%s_%s.tar.gz", tool, version, d.OS, d.Arch)
}

// DownloadURL returns the release artifact URL:
// {serverURL}/{repo}/releases/download/v{version}/{asset}.
func DownloadURL(serverURL, repo, tool, version string, d platform.Descriptor) string {
	if serverURL == "" {
		serverURL = DefaultServerURL
	}
	return fmt.Sprintf("%s/%s/releases/download/v%s/%s",
		strings.TrimRight(serverURL, "/"), repo, version, AssetName(tool, version, d))
}
