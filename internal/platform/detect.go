package platform

import (
	"context"
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/v4/host"
)

// Detect maps host identifiers to a release Descriptor.
// It performs no I/O.
func Detect(h HostInfo) (Descriptor, error) {
	os, err := mapOS(h.OS)
	if err != nil {
		return Descriptor{}, err
	}

	arch, err := mapArch(h.Arch)
	if err != nil {
		return Descriptor{}, err
	}

	return Descriptor{OS: os, Arch: arch}, nil
}

// HostDetector implements Detector for the running process.
type HostDetector struct {
	goos   string
	goarch string
	distro func(ctx context.Context) (string, string, string, error)
}

// NewHostDetector creates a detector for the current host.
func NewHostDetector() *HostDetector {
	return &HostDetector{
		goos:   runtime.GOOS,
		goarch: runtime.GOARCH,
		distro: host.PlatformInformationWithContext,
	}
}

// Host returns the host OS and architecture and, on Linux, the distribution
// reported by gopsutil.
//
// If distribution detection fails the distro fields stay empty; they are only
// used for diagnostics and config files. A cancelled context is a hard
// failure.
func (d *HostDetector) Host(ctx context.Context) (HostInfo, error) {
	info := HostInfo{
		OS:   d.goos,
		Arch: d.goarch,
	}

	if d.goos != "linux" || d.distro == nil {
		return info, nil
	}

	id, family, version, err := d.distro(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return HostInfo{}, fmt.Errorf("host detection cancelled: %w", ctx.Err())
		}
		return info, nil
	}

	id = normalizePlatform(id)
	if id != "" {
		info.Distro = id
		info.Family = mapFamily(family)
		info.DistroVersion = normalizePlatform(version)
	}

	return info, nil
}

// FixedDetector reports a host that was detected earlier.
type FixedDetector struct {
	info HostInfo
}

// Fixed returns a detector that always reports h.
func Fixed(h HostInfo) *FixedDetector {
	return &FixedDetector{info: h}
}

// Host returns the fixed host.
func (d *FixedDetector) Host(ctx context.Context) (HostInfo, error) {
	return d.info, nil
}
