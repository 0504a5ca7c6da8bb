package config

import (
	"context"
	"fmt"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/traiproject/setup-same/internal/platform"
)

// Parser evaluates Lua config files with the current platform exposed as a
// read-only "platform" table.
type Parser struct {
	detector platform.Detector
}

// NewParser creates a new config parser with the given host detector. A nil
// detector leaves the platform table undefined.
func NewParser(detector platform.Detector) *Parser {
	return &Parser{detector: detector}
}

// ParseFile reads and parses a Lua config file.
func (p *Parser) ParseFile(ctx context.Context, path string) (*File, error) {
	data, err := readConfigFile(path)
	if err != nil {
		return nil, err
	}
	return p.ParseString(ctx, data)
}

// ParseString parses a Lua config from a string.
func (p *Parser) ParseString(ctx context.Context, luaCode string) (*File, error) {
	L := newSandboxedVM()
	defer L.Close()

	if p.detector != nil {
		host, err := p.detector.Host(ctx)
		if err != nil {
			return nil, fmt.Errorf("platform detection failed: %w", err)
		}
		desc, err := platform.Detect(host)
		if err != nil {
			return nil, err
		}
		if err := platform.InjectPlatformTable(L, desc, host); err != nil {
			return nil, fmt.Errorf("inject platform table: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, ParseTimeout)
	defer cancel()
	L.SetContext(ctx)

	if err := L.DoString(luaCode); err != nil {
		if ctx.Err() != nil {
			return nil, &ParseError{Message: "config evaluation timed out", Detail: err.Error()}
		}
		return nil, &ParseError{
			Message: "Lua syntax error",
			Detail:  err.Error(),
		}
	}

	return extractFile(L)
}

// ParseError represents a config parsing error with friendly message.
type ParseError struct {
	Message string // User-friendly message
	Detail  string // Technical details (raw Lua error)
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Message, e.Detail)
}

// extractFile reads the global "same" table.
func extractFile(L *lua.LState) (*File, error) {
	value := L.GetGlobal(luaGlobalSame)
	table, ok := value.(*lua.LTable)
	if !ok {
		return nil, &ParseError{
			Message: "missing or invalid 'same' table",
			Detail:  fmt.Sprintf("expected table, got %s", value.Type()),
		}
	}

	file := &File{}
	fields := []struct {
		name string
		dest *string
	}{
		{luaFieldVersion, &file.Version},
		{luaFieldRepository, &file.Repository},
		{luaFieldSHA256, &file.SHA256},
		{luaFieldGPGKeyFile, &file.GPGKeyFile},
	}

	for _, field := range fields {
		s, err := stringField(table, field.name)
		if err != nil {
			return nil, err
		}
		*field.dest = s
	}

	return file, nil
}

// stringField returns a string field, "" when it is nil. Numbers are
// rejected so that version = 1.10 is not silently read as "1.1".
func stringField(table *lua.LTable, name string) (string, error) {
	value := table.RawGetString(name)
	switch value.Type() {
	case lua.LTNil:
		return "", nil
	case lua.LTString:
		return strings.TrimSpace(value.String()), nil
	default:
		return "", &ParseError{
			Message: fmt.Sprintf("invalid field 'same.%s'", name),
			Detail:  fmt.Sprintf("expected string, got %s", value.Type()),
		}
	}
}

// FormatError formats a ParseError for user display.
// In verbose mode, show the raw Lua error. Otherwise, show friendly message.
func FormatError(err error, verbose bool) string {
	if parseErr, ok := err.(*ParseError); ok {
		if verbose {
			return fmt.Sprintf("%s\n\nDetails:\n%s", parseErr.Message, parseErr.Detail)
		}
		// Extract the most relevant part of the error
		detail := parseErr.Detail
		if idx := strings.Index(detail, "stack traceback"); idx > 0 {
			detail = strings.TrimSpace(detail[:idx])
		}
		return fmt.Sprintf("%s: %s", parseErr.Message, detail)
	}
	return err.Error()
}
