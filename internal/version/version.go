// Package version exposes build information set through ldflags.
package version

import "fmt"

// Build-time variables injected via ldflags.
var (
	Release   = "dev"
	GitCommit = "unknown"
	GOOS      = "unknown"
	GOARCH    = "unknown"
)

// Full returns the version string in the format "release (commit: sha)".
func Full() string {
	return fmt.Sprintf("%s (commit: %s)", Release, GitCommit)
}

// FullWithPlatform returns the version string with platform information.
func FullWithPlatform() string {
	return fmt.Sprintf("%s (commit: %s, %s/%s)", Release, GitCommit, GOOS, GOARCH)
}

// UserAgent is sent by the http transport.
func UserAgent() string {
	return "counterpush/" + Release
}
