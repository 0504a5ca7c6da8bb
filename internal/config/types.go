package config

import (
	"fmt"
	"strings"

	"github.com/traiproject/setup-same/internal/release"
)

// DefaultVersion is used when no source names a version.
const DefaultVersion = "latest"

// File is the content of the optional Lua config file.
type File struct {
	Version    string
	Repository string
	SHA256     string
	GPGKeyFile string
}

// Values is one layer of user supplied settings. Empty fields are unset.
type Values struct {
	Version    string
	Token      string
	ConfigFile string
	Repository string
	SHA256     string
	GPGKeyFile string
}

// Config is the effective setup-same configuration after merging every
// source.
type Config struct {
	// Version is the requested version token, "latest" or a semantic version
	Version string
	// Token authenticates registry queries and downloads (may be empty)
	Token string
	// ConfigFile is the Lua file that contributed settings (may be empty)
	ConfigFile string
	// Repository is the owner/name release source
	Repository string
	// SHA256 is the expected archive digest (optional)
	SHA256 string
	// GPGKeyFile is the OpenPGP keyring used to check release signatures (optional)
	GPGKeyFile string

	// ServerURL is the GitHub web root used for release downloads
	ServerURL string
	// APIURL is the GitHub REST API root
	APIURL string
	// ToolCacheRoot is the tool cache directory
	ToolCacheRoot string
	// TempDir receives downloads and extracted archives
	TempDir string
}

// Validate checks fields that are not validated by their consumers.
func (c *Config) Validate() error {
	if err := release.ValidateRepository(c.Repository); err != nil {
		return err
	}

	for name, u := range map[string]string{"server URL": c.ServerURL, "API URL": c.APIURL} {
		if !strings.HasPrefix(u, "https://") && !strings.HasPrefix(u, "http://") {
			return fmt.Errorf("invalid GitHub %s %q: must use http:// or https://", name, u)
		}
	}

	if c.ToolCacheRoot == "" {
		return fmt.Errorf("tool cache root is required")
	}

	return nil
}

// first returns the first non-empty value.
func first(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
