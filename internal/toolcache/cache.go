// Package toolcache stores extracted tool directories keyed by tool name,
// version and platform tag, in the directory layout used by the GitHub
// Actions runner tool cache:
//
//	{root}/{tool}/{version}/{platformTag}/
//	{root}/{tool}/{version}/{platformTag}.complete
//
// An entry only counts as present once its .complete marker exists.
package toolcache

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	"golang.org/x/mod/semver"
)

// EnvRunnerToolCache names the runner tool cache root.
const EnvRunnerToolCache = "RUNNER_TOOL_CACHE"

// StoreError reports a failure to register a directory in the cache.
type StoreError struct {
	Path string
	Err  error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("cache %s: %v", e.Path, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Cache is an on-disk tool cache rooted at a directory.
type Cache struct {
	root string
}

// New creates a cache rooted at root.
func New(root string) *Cache {
	return &Cache{root: root}
}

// DefaultRoot returns $RUNNER_TOOL_CACHE, or ~/.cache/setup-same/tool-cache
// outside of a runner.
func DefaultRoot(getenv func(string) string) (string, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	if root := strings.TrimSpace(getenv(EnvRunnerToolCache)); root != "" {
		return root, nil
	}

	home, err := homedir.Dir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".cache", "setup-same", "tool-cache"), nil
}

// Root returns the cache root directory.
func (c *Cache) Root() string {
	return c.root
}

// Find returns the cached directory for (tool, version, platformTag), or ""
// when there is no complete entry. version must be an explicit semantic
// version; ranges and aliases never match. Versions the release grammar
// accepts but strict semver does not (leading zeros such as 01.2.3 or
// 1.0.0-rc.01, empty prerelease identifiers such as 1.0.0-a..b) can be stored
// but are never found, so they are downloaded again on every run. This is the
// same rule as isExplicitVersion in @actions/tool-cache.
func (c *Cache) Find(tool, version, platformTag string) string {
	if tool == "" || platformTag == "" || !semver.IsValid("v"+version) {
		return ""
	}

	dir := c.entryDir(tool, version, platformTag)
	if !exists(dir + ".complete") {
		return ""
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return ""
	}
	return dir
}

// Store copies the contents of sourceDir into the cache entry for
// (tool, version, platformTag) and marks it complete. Any existing entry is
// replaced. It returns the canonical cached directory.
func (c *Cache) Store(sourceDir, tool, version, platformTag string) (string, error) {
	dir := c.entryDir(tool, version, platformTag)
	marker := dir + ".complete"

	info, err := os.Stat(sourceDir)
	if err != nil {
		return "", &StoreError{Path: dir, Err: fmt.Errorf("stat source: %w", err)}
	}
	if !info.IsDir() {
		return "", &StoreError{Path: dir, Err: fmt.Errorf("source %s is not a directory", sourceDir)}
	}

	if err := os.RemoveAll(marker); err != nil {
		return "", &StoreError{Path: dir, Err: fmt.Errorf("remove marker: %w", err)}
	}
	if err := os.RemoveAll(dir); err != nil {
		return "", &StoreError{Path: dir, Err: fmt.Errorf("remove stale entry: %w", err)}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", &StoreError{Path: dir, Err: fmt.Errorf("create entry: %w", err)}
	}

	if err := copyTree(sourceDir, dir); err != nil {
		return "", &StoreError{Path: dir, Err: err}
	}

	if err := os.WriteFile(marker, nil, 0o644); err != nil {
		return "", &StoreError{Path: dir, Err: fmt.Errorf("write marker: %w", err)}
	}

	return dir, nil
}

func (c *Cache) entryDir(tool, version, platformTag string) string {
	return filepath.Join(c.root, tool, version, platformTag)
}

// copyTree copies the contents of src into dst, preserving file modes and
// symlinks.
func copyTree(src, dst string) error {
	return filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return fmt.Errorf("relative path for %s: %w", path, err)
		}
		if rel == "." {
			return nil
		}
		target := filepath.Join(dst, rel)

		switch {
		case info.Mode()&os.ModeSymlink != 0:
			link, err := os.Readlink(path)
			if err != nil {
				return fmt.Errorf("read symlink %s: %w", path, err)
			}
			if err := os.Symlink(link, target); err != nil {
				return fmt.Errorf("create symlink %s: %w", target, err)
			}

		case info.IsDir():
			if err := os.MkdirAll(target, info.Mode().Perm()|0o700); err != nil {
				return fmt.Errorf("create directory %s: %w", target, err)
			}

		case info.Mode().IsRegular():
			if err := copyFile(path, target, info.Mode().Perm()); err != nil {
				return err
			}
		}

		return nil
	})
}

func copyFile(src, dst string, perm os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("create file %s: %w", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("write file %s: %w", dst, err)
	}

	if err := out.Close(); err != nil {
		return fmt.Errorf("close file %s: %w", dst, err)
	}
	return nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
