package version

import (
	"github.com/Masterminds/semver/v3"
)

// Release channels reported by Channel.
const (
	ChannelDev        = "dev"
	ChannelPrerelease = "prerelease"
	ChannelStable     = "stable"
)

var (
	parsedVersion  *semver.Version
	parseAttempted bool
)

// resetParsedVersion clears the cached parsed version for testing.
func resetParsedVersion() {
	parsedVersion = nil
	parseAttempted = false
}

// Parsed returns the parsed semantic version, or nil if unparseable.
// This is computed lazily on first call and cached.
func Parsed() *semver.Version {
	if parsedVersion != nil || parseAttempted {
		return parsedVersion
	}
	parseAttempted = true

	v, err := semver.NewVersion(Version)
	if err != nil {
		return nil
	}
	parsedVersion = v
	return parsedVersion
}

// IsPrerelease returns true if the current version is a pre-release.
// Returns false for unparseable versions (like "dev").
func IsPrerelease() bool {
	v := Parsed()
	if v == nil {
		return false
	}
	return v.Prerelease() != ""
}

// IsDevBuild returns true if this is a development build (no valid semver).
func IsDevBuild() bool {
	return Parsed() == nil
}

// Channel classifies the running build.
func Channel() string {
	switch {
	case IsDevBuild():
		return ChannelDev
	case IsPrerelease():
		return ChannelPrerelease
	default:
		return ChannelStable
	}
}

// Compare compares the current version to another version string.
// Returns: -1 if current < other, 0 if equal, 1 if current > other.
// Returns 0 if either version is unparseable.
func Compare(other string) int {
	current := Parsed()
	if current == nil {
		return 0
	}

	otherV, err := semver.NewVersion(other)
	if err != nil {
		return 0
	}

	return current.Compare(otherV)
}

// NewerThanCurrent reports whether other is a valid version newer than the
// running build. Dev builds never see anything as newer.
func NewerThanCurrent(other string) bool {
	return Compare(other) < 0
}
