// Package version reports build metadata stamped in with -ldflags
package version

import "fmt"

// BuildInfo holds version information about the binary
type BuildInfo struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Info returns the build information. Set the variables below with
//
//	-ldflags "-X 'evqmigrate/internal/core/version.version=v0.1.0'
//	          -X 'evqmigrate/internal/core/version.commit=abcd'
//	          -X 'evqmigrate/internal/core/version.date=2026-10-18'"
func Info() BuildInfo {
	return BuildInfo{
		Service: "evqmigrate",
		Version: version,
		Commit:  commit,
		Date:    date,
	}
}

// String renders the info on one line for --version
func (b BuildInfo) String() string {
	return fmt.Sprintf("%s %s (commit %s, built %s)", b.Service, b.Version, b.Commit, b.Date)
}

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)
