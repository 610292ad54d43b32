// Package version holds build version information.
package version

import (
	"fmt"
	"runtime"
)

// Version is the release version. Set via ldflags at build time:
// -X github.com/secwise/kbsearch/pkg/version.Version=...
var Version = "dev"

// Commit is the git commit hash, set via ldflags.
var Commit = "unknown"

// Full returns the full version string including commit and runtime.
func Full() string {
	return fmt.Sprintf("kbsearch %s (%s, %s, %s/%s)",
		Version, Commit, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
