// Package version holds build metadata stamped via ldflags.
package version

// Overridden at build time with
// -ldflags "-X .../internal/version.Version=... -X .../internal/version.Commit=...".
var (
	Version = "dev"
	Commit  = "unknown"
)
