package config

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/traiproject/setup-same/internal/logging"
	"github.com/traiproject/setup-same/internal/release"
	"github.com/traiproject/setup-same/internal/toolcache"
)

// Sources lists every place settings come from, highest precedence first:
// command line flags, action inputs, the Lua config file, then defaults.
type Sources struct {
	Flags  Values
	Inputs Values

	// Getenv reads the runner environment. Nil means os.Getenv.
	Getenv func(string) string
	// Parser evaluates the config file. Nil means a parser without a
	// platform table.
	Parser *Parser
	Logger logging.Logger
}

// Load merges all sources into an effective configuration.
func Load(ctx context.Context, src Sources) (*Config, error) {
	getenv := src.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	logger := logging.OrNoop(src.Logger)

	configFile := first(src.Flags.ConfigFile, src.Inputs.ConfigFile)

	var file File
	if configFile != "" {
		parsed, err := loadFile(ctx, src.Parser, configFile, logger)
		if err != nil {
			return nil, err
		}
		file = *parsed
	}

	// Key paths in the config file are relative to the file itself
	fileKey := file.GPGKeyFile
	if fileKey != "" && !filepath.IsAbs(fileKey) {
		fileKey = filepath.Join(filepath.Dir(configFile), fileKey)
	}

	cfg := &Config{
		Version:    first(src.Flags.Version, src.Inputs.Version, file.Version, DefaultVersion),
		Token:      first(src.Flags.Token, src.Inputs.Token, getenv(EnvGitHubToken)),
		ConfigFile: configFile,
		Repository: first(src.Flags.Repository, src.Inputs.Repository, file.Repository, release.DefaultRepository),
		SHA256:     first(src.Flags.SHA256, src.Inputs.SHA256, file.SHA256),
		GPGKeyFile: first(src.Flags.GPGKeyFile, src.Inputs.GPGKeyFile, fileKey),
		ServerURL:  strings.TrimRight(first(getenv(EnvGitHubServerURL), release.DefaultServerURL), "/"),
		APIURL:     strings.TrimRight(first(getenv(EnvGitHubAPIURL), release.DefaultAPIURL), "/"),
		TempDir:    first(getenv(EnvRunnerTemp), os.TempDir()),
	}

	root, err := toolcache.DefaultRoot(getenv)
	if err != nil {
		return nil, fmt.Errorf("resolve tool cache root: %w", err)
	}
	cfg.ToolCacheRoot = root

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger.Debug("Loaded configuration",
		"version", cfg.Version,
		"repository", cfg.Repository,
		"config_file", cfg.ConfigFile,
		"tool_cache", cfg.ToolCacheRoot,
	)

	return cfg, nil
}

func loadFile(ctx context.Context, parser *Parser, path string, logger logging.Logger) (*File, error) {
	if parser == nil {
		parser = NewParser(nil)
	}

	data, err := readConfigFile(path)
	if err != nil {
		return nil, err
	}

	if secrets := ScanSecrets(data); len(secrets) > 0 {
		logger.Warn(SecretsWarning(secrets), "file", path)
	}

	logger.Info("Reading config file", "path", path)
	return parser.ParseString(ctx, data)
}

func readConfigFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", &ParseError{Message: "cannot read config file", Detail: err.Error()}
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxConfigSize+1))
	if err != nil {
		return "", &ParseError{Message: "cannot read config file", Detail: err.Error()}
	}
	if len(data) > MaxConfigSize {
		return "", &ParseError{
			Message: "config file too large",
			Detail:  fmt.Sprintf("%s exceeds %d bytes", path, MaxConfigSize),
		}
	}

	return string(data), nil
}
