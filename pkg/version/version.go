// Package version provides build version information.
package version

import (
	"fmt"
	"runtime"
)

// These are set via ldflags at build time.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// Info returns formatted version information.
func Info() string {
	return fmt.Sprintf(
		"pantry %s (%s, %s) built on %s with %s",
		Version,
		shortCommit(),
		Channel(),
		BuildDate,
		runtime.Version(),
	)
}

// Short returns just the version number.
func Short() string {
	return Version
}

// Full returns all version details.
func Full() string {
	return fmt.Sprintf("Version: %s\nChannel: %s\nCommit: %s\nBuild Date: %s\nGo Version: %s\nOS/Arch: %s/%s",
		Version,
		Channel(),
		Commit,
		BuildDate,
		runtime.Version(),
		runtime.GOOS,
		runtime.GOARCH,
	)
}

// UserAgent returns the User-Agent sent to remote APIs, e.g. "pantry/1.2.0 (linux/amd64)".
// Development builds report "pantry/dev".
func UserAgent() string {
	v := "dev"
	if p := Parsed(); p != nil {
		v = p.String()
	}
	return fmt.Sprintf("pantry/%s (%s/%s)", v, runtime.GOOS, runtime.GOARCH)
}

func shortCommit() string {
	if len(Commit) > 7 {
		return Commit[:7]
	}
	return Commit
}
