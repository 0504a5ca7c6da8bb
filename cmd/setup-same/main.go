package main

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// Version will be set at build time via -ldflags
var Version = "dev"

func main() {
	runMain(os.Args, os.Stdout, os.Stderr, os.Exit)
}

// ExitError carries an exit code for a failure that was already reported.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit %d", e.Code)
}

// execute runs the root command with the given args and output writers.
func execute(args []string, stdout, stderr io.Writer) error {
	cmd := newRootCmd(os.Getenv)
	if len(args) > 1 {
		cmd.SetArgs(args[1:])
	} else {
		cmd.SetArgs([]string{})
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	return cmd.Execute()
}

func runMain(args []string, stdout, stderr io.Writer, exit func(int)) {
	err := execute(args, stdout, stderr)
	if err == nil {
		return
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		exit(exitErr.Code)
		return
	}
	_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
	exit(1)
}
