// Package buildinfo holds the release identity stamped into the binary.
package buildinfo

import "fmt"

// Set with -ldflags "-X github.com/cleared-dev/finreport/internal/buildinfo.Version=...".
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// String describes the build for --version output.
func String() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date)
}
