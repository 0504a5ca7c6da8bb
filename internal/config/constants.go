package config

import "time"

// Lua schema field names and globals
const (
	luaGlobalSame      = "same"
	luaFieldVersion    = "version"
	luaFieldRepository = "repository"
	luaFieldSHA256     = "sha256"
	luaFieldGPGKeyFile = "gpg_key_file"
)

// Resource limits for config files
const (
	// MaxConfigSize is the largest config file accepted
	MaxConfigSize = 1 << 20
	// ParseTimeout bounds the execution of a config file
	ParseTimeout = 5 * time.Second

	luaCallStackSize = 256
	luaRegistrySize  = 1024 * 8
)

// Environment variables consulted while loading
const (
	EnvGitHubToken     = "GITHUB_TOKEN"
	EnvGitHubServerURL = "GITHUB_SERVER_URL"
	EnvGitHubAPIURL    = "GITHUB_API_URL"
	EnvRunnerTemp      = "RUNNER_TEMP"
)
