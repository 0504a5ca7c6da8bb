package platform

import (
	"fmt"
	"strings"
)

// familyMap maps distribution names to their canonical family names.
var familyMap = map[string]string{
	"debian":   FamilyDebian,
	"ubuntu":   FamilyDebian, // gopsutil might return ubuntu as family
	"rhel":     FamilyRHEL,
	"centos":   FamilyRHEL,
	"rocky":    FamilyRHEL,
	"fedora":   FamilyFedora,
	"suse":     FamilySUSE,
	"opensuse": FamilySUSE,
	"arch":     FamilyArch,
	"manjaro":  FamilyArch,
	"alpine":   FamilyAlpine,
	"gentoo":   FamilyGentoo,
}

// mapOS converts a host OS identifier to the artifact OS name.
func mapOS(value string) (OS, error) {
	switch value {
	case "linux":
		return OSLinux, nil
	case "darwin":
		return OSMacOS, nil
	case "win32", "windows":
		return "", &UnsupportedError{Message: "Windows is not supported"}
	default:
		return "", &UnsupportedError{Message: fmt.Sprintf("Unsupported OS: %s", value)}
	}
}

// mapArch converts a host architecture identifier to the artifact arch name.
// Go, Node and kernel spellings are all accepted.
func mapArch(value string) (Arch, error) {
	switch value {
	case "x64", "amd64", "x86_64":
		return ArchX86_64, nil
	case "arm64", "aarch64":
		return ArchARM64, nil
	default:
		return "", &UnsupportedError{Message: fmt.Sprintf("Unsupported architecture: %s", value)}
	}
}

// normalizePlatform converts platform IDs to lowercase for consistency.
func normalizePlatform(platform string) string {
	return strings.ToLower(strings.TrimSpace(platform))
}

// mapFamily maps distribution family strings to canonical family names.
func mapFamily(family string) string {
	normalized := strings.ToLower(strings.TrimSpace(family))
	if canonical, ok := familyMap[normalized]; ok {
		return canonical
	}

	return FamilyUnknown
}
