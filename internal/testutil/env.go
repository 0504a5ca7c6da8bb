// Package testutil provides utilities for running setup-same in isolation.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// RunnerEnv is a fake GitHub Actions runner environment rooted in a temporary
// directory. Tests pass Getenv wherever the code reads the environment, so the
// real tool cache and the job's GITHUB_* files are never touched.
type RunnerEnv struct {
	ToolCache  string
	Temp       string
	OutputFile string
	PathFile   string

	vars map[string]string
}

// NewRunnerEnv creates the runner directories and files for one test.
// The cleanup is handled by t.TempDir().
func NewRunnerEnv(t *testing.T) *RunnerEnv {
	t.Helper()

	tmpDir := t.TempDir()
	env := &RunnerEnv{
		ToolCache:  filepath.Join(tmpDir, "toolcache"),
		Temp:       filepath.Join(tmpDir, "temp"),
		OutputFile: filepath.Join(tmpDir, "github_output"),
		PathFile:   filepath.Join(tmpDir, "github_path"),
	}

	for _, dir := range []string{env.ToolCache, env.Temp} {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			t.Fatalf("failed to create test directory %s: %v", dir, err)
		}
	}
	for _, file := range []string{env.OutputFile, env.PathFile} {
		if err := os.WriteFile(file, nil, 0o600); err != nil {
			t.Fatalf("failed to create test file %s: %v", file, err)
		}
	}

	env.vars = map[string]string{
		"RUNNER_TOOL_CACHE": env.ToolCache,
		"RUNNER_TEMP":       env.Temp,
		"GITHUB_OUTPUT":     env.OutputFile,
		"GITHUB_PATH":       env.PathFile,
	}
	return env
}

// Set overrides a variable. An empty value unsets it.
func (e *RunnerEnv) Set(key, value string) {
	if value == "" {
		delete(e.vars, key)
		return
	}
	e.vars[key] = value
}

// Getenv reads a variable; it has the signature of os.Getenv.
func (e *RunnerEnv) Getenv(key string) string {
	return e.vars[key]
}

// SetupRunnerEnv is NewRunnerEnv plus t.Setenv for every variable, for code
// that reads the process environment directly. GITHUB_TOKEN and RUNNER_DEBUG
// are cleared so the developer's shell does not leak into the test.
func SetupRunnerEnv(t *testing.T) *RunnerEnv {
	t.Helper()

	env := NewRunnerEnv(t)
	for key, value := range env.vars {
		t.Setenv(key, value)
	}
	t.Setenv("GITHUB_TOKEN", "")
	t.Setenv("RUNNER_DEBUG", "")
	return env
}
