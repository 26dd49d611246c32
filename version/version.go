// Package version holds build-time version information, printed by each
// command's --version flag.
package version

import "fmt"

var (
	// Version is the semantic version, set via -ldflags at build time.
	Version = "dev"
	// Commit is the git commit hash, set via -ldflags at build time.
	Commit = "none"
	// BuildDate is the build timestamp, set via -ldflags at build time.
	BuildDate = "unknown"
)

// Print returns a human readable banner for the named program.
func Print(program string) string {
	return fmt.Sprintf("%s version %s (commit %s, built %s)", program, Version, Commit, BuildDate)
}
