// Package version holds the build version, overridden at link time via
// -ldflags "-X transitatlas/pkg/version.Version=...".
package version

// Version is the current build version.
var Version = "0.1.0-dev"
