// Package logging defines the structured logger used across setup-same and
// its GitHub Actions backed implementation.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/sethvargo/go-githubactions"
)

// Logger provides structured logging.
// This interface allows callers to plug in their own logging implementation.
type Logger interface {
	// Debug logs debug-level messages with optional key-value pairs.
	Debug(msg string, keysAndValues ...interface{})

	// Info logs info-level messages with optional key-value pairs.
	Info(msg string, keysAndValues ...interface{})

	// Warn logs warning-level messages with optional key-value pairs.
	Warn(msg string, keysAndValues ...interface{})

	// Error logs error-level messages with optional key-value pairs.
	Error(msg string, keysAndValues ...interface{})
}

// noopLogger is a Logger implementation that does nothing.
type noopLogger struct{}

func (n *noopLogger) Debug(msg string, keysAndValues ...interface{}) {}
func (n *noopLogger) Info(msg string, keysAndValues ...interface{})  {}
func (n *noopLogger) Warn(msg string, keysAndValues ...interface{})  {}
func (n *noopLogger) Error(msg string, keysAndValues ...interface{}) {}

// Noop returns a logger that discards everything.
func Noop() Logger {
	return &noopLogger{}
}

// OrNoop returns l, or a no-op logger when l is nil.
func OrNoop(l Logger) Logger {
	if l == nil {
		return Noop()
	}
	return l
}

// ActionsLogger writes log lines as GitHub Actions workflow commands.
// Warnings, errors and debug lines become ::warning::, ::error:: and ::debug::
// annotations; info lines are printed as is.
type ActionsLogger struct {
	action *githubactions.Action
	fields *color.Color
}

// NewActionsLogger creates a logger bound to the given action. Key/value pairs
// on info lines are dimmed only when colored is set.
func NewActionsLogger(action *githubactions.Action, colored bool) *ActionsLogger {
	l := &ActionsLogger{action: action}
	if colored {
		l.fields = color.New(color.FgHiBlack)
		l.fields.EnableColor()
	}
	return l
}

func (l *ActionsLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.action.Debugf("%s", formatLine(msg, keysAndValues, nil))
}

func (l *ActionsLogger) Info(msg string, keysAndValues ...interface{}) {
	l.action.Infof("%s", formatLine(msg, keysAndValues, l.fields))
}

func (l *ActionsLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.action.Warningf("%s", formatLine(msg, keysAndValues, nil))
}

func (l *ActionsLogger) Error(msg string, keysAndValues ...interface{}) {
	l.action.Errorf("%s", formatLine(msg, keysAndValues, nil))
}

// formatLine appends key=value pairs to msg. A trailing key without a value
// is rendered with an empty value. Annotations are never colored because the
// runner parses them.
func formatLine(msg string, keysAndValues []interface{}, c *color.Color) string {
	if len(keysAndValues) == 0 {
		return msg
	}

	pairs := make([]string, 0, (len(keysAndValues)+1)/2)
	for i := 0; i < len(keysAndValues); i += 2 {
		var value interface{} = ""
		if i+1 < len(keysAndValues) {
			value = keysAndValues[i+1]
		}
		pairs = append(pairs, fmt.Sprintf("%v=%v", keysAndValues[i], value))
	}

	suffix := strings.Join(pairs, " ")
	if c != nil {
		suffix = c.Sprint(suffix)
	}
	return msg + " " + suffix
}

// IsTerminal reports whether f is attached to an interactive terminal.
func IsTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// WriterIsTerminal is IsTerminal for writers; anything but an *os.File is
// not a terminal.
func WriterIsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && IsTerminal(f)
}
