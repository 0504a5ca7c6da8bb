package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sethvargo/go-githubactions"
)

func newTestLogger(t *testing.T) (*ActionsLogger, *bytes.Buffer) {
	t.Helper()

	var buf bytes.Buffer
	action := githubactions.New(githubactions.WithWriter(&buf))
	return NewActionsLogger(action, false), &buf
}

func TestActionsLogger_Levels(t *testing.T) {
	tests := []struct {
		name string
		log  func(l *ActionsLogger)
		want string
	}{
		{
			name: "info_plain",
			log:  func(l *ActionsLogger) { l.Info("Downloading same", "version", "1.0.0") },
			want: "Downloading same version=1.0.0",
		},
		{
			name: "warning_annotation",
			log:  func(l *ActionsLogger) { l.Warn("Download failed, retrying", "delay", "2s") },
			want: "::warning::Download failed, retrying delay=2s",
		},
		{
			name: "error_annotation",
			log:  func(l *ActionsLogger) { l.Error("Version cannot be empty") },
			want: "::error::Version cannot be empty",
		},
		{
			name: "debug_annotation",
			log:  func(l *ActionsLogger) { l.Debug("cache probe", "tag", "linux_x86_64") },
			want: "::debug::cache probe tag=linux_x86_64",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, buf := newTestLogger(t)
			tt.log(l)

			if got := strings.TrimSpace(buf.String()); got != tt.want {
				t.Errorf("output = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatLine_OddKeyValues(t *testing.T) {
	got := formatLine("msg", []interface{}{"a", 1, "dangling"}, nil)
	if got != "msg a=1 dangling=" {
		t.Errorf("formatLine() = %q", got)
	}
}

func TestOrNoop(t *testing.T) {
	if OrNoop(nil) == nil {
		t.Fatal("OrNoop(nil) returned nil")
	}

	l, _ := newTestLogger(t)
	if OrNoop(l) != l {
		t.Error("OrNoop() should return the given logger")
	}

	// must not panic
	Noop().Info("ignored", "k", "v")
}

func TestActionsLogger_Colored(t *testing.T) {
	var buf bytes.Buffer
	l := NewActionsLogger(githubactions.New(githubactions.WithWriter(&buf)), true)

	l.Info("Installed same", "version", "1.0.0")
	if !strings.Contains(buf.String(), "\x1b[") {
		t.Errorf("info line not colored: %q", buf.String())
	}

	buf.Reset()
	l.Warn("Retrying", "attempt", 1)
	if strings.Contains(buf.String(), "\x1b[") {
		t.Errorf("annotation must not be colored: %q", buf.String())
	}
}

func TestWriterIsTerminal(t *testing.T) {
	if WriterIsTerminal(&bytes.Buffer{}) {
		t.Error("a buffer is not a terminal")
	}

	f, err := os.Create(filepath.Join(t.TempDir(), "log"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if WriterIsTerminal(f) {
		t.Error("a regular file is not a terminal")
	}
}
