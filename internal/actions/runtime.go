// Package actions adapts the GitHub Actions runner protocol (inputs, outputs,
// PATH and masking file commands) for setup-same.
package actions

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sethvargo/go-githubactions"
)

// Input names declared in action.yml.
const (
	InputVersion     = "version"
	InputGitHubToken = "github-token"
	InputConfigFile  = "config-file"
	InputSHA256      = "sha256"
	InputGPGKeyFile  = "gpg-key-file"
	InputRepository  = "repository"
)

// Output names declared in action.yml.
const (
	OutputVersion  = "version"
	OutputCacheHit = "cache-hit"
	OutputPath     = "path"
)

// Options configures a Runtime. Zero values use the process environment and
// stdout.
type Options struct {
	Writer io.Writer
	Getenv func(string) string
	Setenv func(key, value string) error
}

// Runtime is the action's view of the runner.
type Runtime struct {
	action *githubactions.Action
	getenv func(string) string
	setenv func(key, value string) error
}

// New creates a runtime.
func New(opts Options) *Runtime {
	getenv := opts.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	setenv := opts.Setenv
	if setenv == nil {
		setenv = os.Setenv
	}

	actionOpts := []githubactions.Option{githubactions.WithGetenv(getenv)}
	if opts.Writer != nil {
		actionOpts = append(actionOpts, githubactions.WithWriter(opts.Writer))
	}

	return &Runtime{
		action: githubactions.New(actionOpts...),
		getenv: getenv,
		setenv: setenv,
	}
}

// Action exposes the underlying workflow command writer.
func (r *Runtime) Action() *githubactions.Action {
	return r.action
}

// Input returns the trimmed value of an action input, "" when unset.
func (r *Runtime) Input(name string) string {
	return strings.TrimSpace(r.action.GetInput(name))
}

// SetOutput records a step output.
func (r *Runtime) SetOutput(name, value string) {
	r.action.SetOutput(name, value)
}

// Mask hides secret from subsequent log output. Empty secrets are ignored.
func (r *Runtime) Mask(secret string) {
	if secret == "" {
		return
	}
	r.action.AddMask(secret)
}

// Fail reports err as an error annotation. The caller decides the exit code.
func (r *Runtime) Fail(err error) {
	if err == nil {
		return
	}
	r.action.Errorf("%s", err.Error())
}

// PathPublisher returns a publisher bound to this runtime.
func (r *Runtime) PathPublisher() *PathPublisher {
	return &PathPublisher{runtime: r}
}

// PathPublisher adds directories to PATH for this process and every later
// step of the job.
type PathPublisher struct {
	runtime *Runtime
}

// Publish prepends dir to PATH.
func (p *PathPublisher) Publish(dir string) error {
	if dir == "" {
		return fmt.Errorf("publish path: directory is empty")
	}

	p.runtime.action.AddPath(dir)

	current := p.runtime.getenv("PATH")
	updated := dir
	if current != "" {
		updated = dir + string(os.PathListSeparator) + current
	}
	if err := p.runtime.setenv("PATH", updated); err != nil {
		return fmt.Errorf("update PATH: %w", err)
	}
	return nil
}
