// Package platform maps host operating system and CPU architecture
// identifiers to the naming scheme used by same release artifacts.
//
// Detection is split in two: HostDetector introspects the running host into a
// HostInfo value, and Detect is a pure function from HostInfo to Descriptor.
// Callers and tests can therefore build a HostInfo by hand.
package platform

import (
	"context"
	"fmt"
)

// OS is an operating system name as used in release artifact names.
type OS string

// Arch is a CPU architecture name as used in release artifact names.
type Arch string

const (
	// OSLinux is the Linux artifact name.
	OSLinux OS = "linux"
	// OSMacOS is the macOS artifact name.
	OSMacOS OS = "macOS"

	// ArchX86_64 is the 64-bit x86 artifact name.
	ArchX86_64 Arch = "x86_64"
	// ArchARM64 is the 64-bit ARM artifact name.
	ArchARM64 Arch = "arm64"
)

// Linux distribution family constants.
const (
	FamilyDebian  = "debian"  // Debian, Ubuntu, Linux Mint
	FamilyRHEL    = "rhel"    // RHEL, CentOS, Rocky Linux, AlmaLinux
	FamilyFedora  = "fedora"  // Fedora
	FamilySUSE    = "suse"    // openSUSE, SLES
	FamilyArch    = "arch"    // Arch Linux, Manjaro
	FamilyAlpine  = "alpine"  // Alpine Linux
	FamilyGentoo  = "gentoo"  // Gentoo
	FamilyUnknown = "unknown" // Unrecognized distributions
)

// Descriptor identifies the release artifact flavor for a host.
type Descriptor struct {
	OS   OS
	Arch Arch
}

// Tag returns the "{os}_{arch}" string used in artifact names and cache keys.
func (d Descriptor) Tag() string {
	return fmt.Sprintf("%s_%s", d.OS, d.Arch)
}

// String implements fmt.Stringer.
func (d Descriptor) String() string {
	return fmt.Sprintf("%s/%s", d.OS, d.Arch)
}

// HostInfo is the raw host introspection result.
type HostInfo struct {
	OS   string // "linux", "darwin", "windows" (Go) or "win32" (runner)
	Arch string // "amd64", "arm64" (Go) or "x64", "x86_64", "aarch64"

	// Linux only, empty when unknown.
	Distro        string // distro ID, e.g. "ubuntu"
	Family        string // canonical family, e.g. "debian"
	DistroVersion string // e.g. "22.04"
}

// IsWindows reports whether the host runs Windows.
func (h HostInfo) IsWindows() bool {
	return h.OS == "windows" || h.OS == "win32"
}

// Detector introspects the running host.
type Detector interface {
	Host(ctx context.Context) (HostInfo, error)
}

// UnsupportedError reports a host the tool has no release artifacts for.
type UnsupportedError struct {
	Message string
}

func (e *UnsupportedError) Error() string {
	return e.Message
}
