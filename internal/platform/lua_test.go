package platform

import (
	"strings"
	"testing"

	lua "github.com/yuin/gopher-lua"
)

// newPlatformState returns a Lua state with the platform table for d and h.
func newPlatformState(t *testing.T, d Descriptor, h HostInfo) *lua.LState {
	t.Helper()

	L := lua.NewState()
	t.Cleanup(L.Close)

	if err := InjectPlatformTable(L, d, h); err != nil {
		t.Fatalf("InjectPlatformTable() error = %v", err)
	}
	return L
}

// luaString evaluates expr and renders the result with tostring, so nil and
// booleans compare as text.
func luaString(t *testing.T, L *lua.LState, expr string) string {
	t.Helper()

	if err := L.DoString("return tostring(" + expr + ")"); err != nil {
		t.Fatalf("eval %q: %v", expr, err)
	}
	defer L.Pop(1)
	return L.Get(-1).String()
}

func TestInjectPlatformTable_Fields(t *testing.T) {
	ubuntu := HostInfo{OS: "linux", Arch: "amd64", Distro: "ubuntu", Family: FamilyDebian, DistroVersion: "22.04"}

	tests := []struct {
		name string
		desc Descriptor
		host HostInfo
		want map[string]string
	}{
		{
			name: "linux_x86_64_ubuntu",
			desc: Descriptor{OS: OSLinux, Arch: ArchX86_64},
			host: ubuntu,
			want: map[string]string{
				"platform.os":             "linux",
				"platform.arch":           "x86_64",
				"platform.tag":            "linux_x86_64",
				"platform.is_linux":       "true",
				"platform.is_macos":       "false",
				"platform.is_x86_64":      "true",
				"platform.is_arm64":       "false",
				"platform.distro.id":      "ubuntu",
				"platform.distro.family":  "debian",
				"platform.distro.version": "22.04",
			},
		},
		{
			name: "linux_arm64_unknown_distro",
			desc: Descriptor{OS: OSLinux, Arch: ArchARM64},
			host: HostInfo{OS: "linux", Arch: "aarch64"},
			want: map[string]string{
				"platform.tag":      "linux_arm64",
				"platform.is_arm64": "true",
				"platform.distro":   "nil",
			},
		},
		{
			name: "macos_arm64",
			desc: Descriptor{OS: OSMacOS, Arch: ArchARM64},
			host: HostInfo{OS: "darwin", Arch: "arm64"},
			want: map[string]string{
				"platform.os":       "macOS",
				"platform.tag":      "macOS_arm64",
				"platform.is_macos": "true",
				"platform.is_linux": "false",
				"platform.distro":   "nil",
			},
		},
		{
			// A stray distro on a non-Linux host is not exposed
			name: "macos_ignores_distro",
			desc: Descriptor{OS: OSMacOS, Arch: ArchX86_64},
			host: HostInfo{OS: "darwin", Arch: "amd64", Distro: "darwin"},
			want: map[string]string{"platform.distro": "nil"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			L := newPlatformState(t, tt.desc, tt.host)

			for expr, want := range tt.want {
				if got := luaString(t, L, expr); got != want {
					t.Errorf("%s = %q, want %q", expr, got, want)
				}
			}
		})
	}
}

func TestInjectPlatformTable_RejectsWrites(t *testing.T) {
	L := newPlatformState(t, Descriptor{OS: OSLinux, Arch: ArchARM64}, HostInfo{})

	for _, code := range []string{
		`platform.os = "windows"`,
		`platform.extra = "value"`,
		`platform.is_linux = false`,
		`setmetatable(platform, nil)`,
	} {
		err := L.DoString(code)
		if err == nil {
			t.Errorf("%s: expected an error", code)
			continue
		}
		if strings.HasPrefix(code, "platform.") && !strings.Contains(err.Error(), "read-only") {
			t.Errorf("%s: error = %v, want read-only error", code, err)
		}
	}

	if got := luaString(t, L, "platform.os"); got != "linux" {
		t.Errorf("platform.os changed to %q", got)
	}
}

func TestInjectPlatformTable_When(t *testing.T) {
	L := newPlatformState(t, Descriptor{OS: OSLinux, Arch: ArchX86_64}, HostInfo{})

	tests := []struct {
		expr string
		want string
	}{
		{`platform.when(true, "1.2.0")`, "1.2.0"},
		{`platform.when(false, "1.2.0")`, "nil"},
		{`platform.when(platform.is_linux, "linux")`, "linux"},
		{`platform.when(platform.is_macos, "1.1.0") or "1.0.0"`, "1.0.0"},
	}

	for _, tt := range tests {
		if got := luaString(t, L, tt.expr); got != tt.want {
			t.Errorf("%s = %q, want %q", tt.expr, got, tt.want)
		}
	}

	if err := L.DoString(`return platform.when("yes", 1)`); err == nil {
		t.Error("when() with a non-boolean condition should fail")
	}
}
