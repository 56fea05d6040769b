// Package version exposes build information populated via -ldflags.
package version

import "fmt"

var (
	version = "0.0.1-SNAPSHOT"
	commit  = "unknown"
	date    = "unknown"
)

// Version returns the application version.
func Version() string { return version }

// Info returns version, commit and build date.
func Info() (v, c, d string) { return version, commit, date }

func String() string {
	return fmt.Sprintf("version=%s commit=%s date=%s", version, commit, date)
}
