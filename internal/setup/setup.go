// Package setup runs the setup-same action: it reads the inputs, detects the
// platform, resolves the requested version, installs same and records the
// step outputs.
package setup

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/traiproject/setup-same/internal/actions"
	"github.com/traiproject/setup-same/internal/binary"
	"github.com/traiproject/setup-same/internal/config"
	"github.com/traiproject/setup-same/internal/logging"
	"github.com/traiproject/setup-same/internal/platform"
	"github.com/traiproject/setup-same/internal/release"
	"github.com/traiproject/setup-same/internal/toolcache"
	"github.com/traiproject/setup-same/internal/version"
)

// Runtime is the part of the Actions runner the action talks to.
type Runtime interface {
	Input(name string) string
	SetOutput(name, value string)
	Mask(secret string)
}

// Options wires the collaborators of Run. Runtime, Publisher and Detector are
// required.
type Options struct {
	// Flags override action inputs
	Flags config.Values

	Runtime   Runtime
	Publisher binary.PathPublisher
	Detector  platform.Detector
	Logger    logging.Logger

	// Getenv reads the runner environment. Nil means os.Getenv.
	Getenv func(string) string
	// Transport overrides HTTP transport for registry and downloads (tests).
	Transport http.RoundTripper
	// Sleep overrides the wait between download attempts (tests).
	Sleep func(ctx context.Context, d time.Duration) error
	// Progress forces the download progress bar on or off.
	Progress *bool
}

// Result is what a successful run reports.
type Result struct {
	Version  string
	Platform platform.Descriptor
	Path     string
	CacheHit bool
}

// Run performs one setup. Every failure is returned as is so that its message
// can be reported verbatim.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.Runtime == nil || opts.Publisher == nil || opts.Detector == nil {
		return nil, fmt.Errorf("setup: Runtime, Publisher and Detector are required")
	}
	logger := logging.OrNoop(opts.Logger)
	rt := opts.Runtime

	inputs := config.Values{
		Version:    rt.Input(actions.InputVersion),
		Token:      rt.Input(actions.InputGitHubToken),
		ConfigFile: rt.Input(actions.InputConfigFile),
		Repository: rt.Input(actions.InputRepository),
		SHA256:     rt.Input(actions.InputSHA256),
		GPGKeyFile: rt.Input(actions.InputGPGKeyFile),
	}

	host, err := opts.Detector.Host(ctx)
	if err != nil {
		return nil, err
	}
	desc, err := platform.Detect(host)
	if err != nil {
		return nil, err
	}
	logger.Info("Detected platform", "platform", desc.String(), "distro", host.Distro)

	cfg, err := config.Load(ctx, config.Sources{
		Flags:  opts.Flags,
		Inputs: inputs,
		Getenv: opts.Getenv,
		Parser: config.NewParser(platform.Fixed(host)),
		Logger: logger,
	})
	if err != nil {
		return nil, err
	}

	rt.Mask(cfg.Token)
	logger.Info("Version requested", "version", cfg.Version)
	logger.Info("GitHub token provided", "provided", strconv.FormatBool(cfg.Token != ""))

	registry := release.NewClient(release.Options{
		APIURL:     cfg.APIURL,
		Repository: cfg.Repository,
		Transport:  opts.Transport,
	})
	resolved, err := version.NewResolver(registry, logger).Resolve(ctx, cfg.Version, cfg.Token)
	if err != nil {
		return nil, err
	}

	installer, err := newInstaller(cfg, host, opts, logger)
	if err != nil {
		return nil, err
	}

	installed, err := installer.Install(ctx, resolved, desc, cfg.Token)
	if err != nil {
		return nil, err
	}

	rt.SetOutput(actions.OutputVersion, resolved)
	rt.SetOutput(actions.OutputCacheHit, strconv.FormatBool(installed.CacheHit))
	rt.SetOutput(actions.OutputPath, installed.CachedPath)

	logger.Info("setup-same completed successfully", "version", resolved, "cache_hit", installed.CacheHit)

	return &Result{
		Version:  resolved,
		Platform: desc,
		Path:     installed.CachedPath,
		CacheHit: installed.CacheHit,
	}, nil
}

func newInstaller(cfg *config.Config, host platform.HostInfo, opts Options, logger logging.Logger) (*binary.Installer, error) {
	dlOpts := binary.DownloaderOptions{TempDir: cfg.TempDir, Progress: opts.Progress}
	if opts.Transport != nil {
		dlOpts.Client = &http.Client{Transport: opts.Transport}
	}
	downloader := binary.NewHTTPDownloader(dlOpts)

	installCfg := binary.Config{
		ServerURL:  cfg.ServerURL,
		Repository: cfg.Repository,
		HostOS:     host.OS,
		Downloader: downloader,
		Extractor:  binary.NewExtractor(cfg.TempDir),
		Cache:      toolcache.New(cfg.ToolCacheRoot),
		Publisher:  opts.Publisher,
		Logger:     logger,
		Sleep:      opts.Sleep,
	}

	verifier, err := binary.NewVerifier(binary.VerifierOptions{
		SHA256:      cfg.SHA256,
		KeyRingPath: cfg.GPGKeyFile,
		Downloader:  downloader,
	})
	if err != nil {
		return nil, err
	}
	// A nil *IntegrityVerifier must not become a non-nil interface
	if verifier != nil {
		installCfg.Verifier = verifier
	}

	return binary.NewInstaller(installCfg)
}
