package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/traiproject/setup-same/internal/actions"
	"github.com/traiproject/setup-same/internal/config"
	"github.com/traiproject/setup-same/internal/logging"
	"github.com/traiproject/setup-same/internal/platform"
	"github.com/traiproject/setup-same/internal/setup"
)

type rootOptions struct {
	flags        config.Values
	printVersion bool
	verbose      bool
}

func newRootCmd(getenv func(string) string) *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "setup-same",
		Short:         "Install the same CLI on a GitHub Actions runner",
		Long:          "setup-same resolves a same release, installs it into the runner tool cache and adds it to PATH.\nFlags override the action inputs of the same name.",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.printVersion {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "setup-same %s\n", Version)
				return nil
			}
			return runSetup(cmd, opts, getenv)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.flags.Version, actions.InputVersion, "", "same version to install (semver or 'latest')")
	f.StringVar(&opts.flags.Token, actions.InputGitHubToken, "", "token for the GitHub API and release downloads")
	f.StringVar(&opts.flags.ConfigFile, actions.InputConfigFile, "", "path to a Lua config file defining a 'same' table")
	f.StringVar(&opts.flags.Repository, actions.InputRepository, "", "owner/name of the repository publishing same releases")
	f.StringVar(&opts.flags.SHA256, actions.InputSHA256, "", "expected SHA256 digest of the release archive")
	f.StringVar(&opts.flags.GPGKeyFile, actions.InputGPGKeyFile, "", "OpenPGP public keyring used to verify the archive signature")
	f.BoolVar(&opts.printVersion, "print-version", false, "print the setup-same version and exit")
	f.BoolVarP(&opts.verbose, "verbose", "v", getenv("RUNNER_DEBUG") == "1", "report full config errors including Lua tracebacks")

	return cmd
}

func runSetup(cmd *cobra.Command, opts *rootOptions, getenv func(string) string) error {
	rt := actions.New(actions.Options{Writer: cmd.OutOrStdout(), Getenv: getenv})
	logger := logging.NewActionsLogger(rt.Action(), logging.WriterIsTerminal(cmd.OutOrStdout()))

	_, err := setup.Run(cmdContext(cmd), setup.Options{
		Flags:     opts.flags,
		Runtime:   rt,
		Publisher: rt.PathPublisher(),
		Detector:  platform.NewHostDetector(),
		Logger:    logger,
		Getenv:    getenv,
	})
	if err != nil {
		rt.Fail(errors.New(config.FormatError(err, opts.verbose)))
		return &ExitError{Code: 1}
	}
	return nil
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
