// Package settings provides build metadata and the per-run options shared by
// the xmltab CLI and the library packages it drives.
package settings

import (
	"fmt"
	"runtime"
)

// CliBinaryName is the canonical binary name for this tool.
const CliBinaryName = "xmltab"

// VersionInformation is populated at build time via ldflags and holds the
// commit hash, semantic version, and build timestamp of the running binary.
var VersionInformation = VersionInfo{
	Commit:       "unknown",
	BuildVersion: "v0.0.0-nightly",
	BuildTime:    "unknown",
}

// VersionInfo holds metadata about the build.
type VersionInfo struct {
	Commit       string `json:"commit" yaml:"commit"`
	BuildVersion string `json:"version" yaml:"version"`
	BuildTime    string `json:"buildTime" yaml:"buildTime"`
}

// String renders a one-line version banner.
func (v VersionInfo) String() string {
	return fmt.Sprintf("%s %s (commit %s, built %s, %s %s/%s)",
		CliBinaryName, v.BuildVersion, v.Commit, v.BuildTime,
		runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// InputSettings describes where the XML report came from.
type InputSettings struct {
	// Path is the file path, or "" when read from stdin.
	Path string
	// Name is the display name used in status lines and export file names.
	Name      string
	FromStdin bool
}

// Run holds configuration settings for a single execution of the application.
type Run struct {
	MinLogLevel int8
	Input       InputSettings
	Interactive bool
	NoColor     bool
	ExitOnError bool
}

// NewCliParams returns the defaults for a CLI run.
func NewCliParams() *Run {
	return &Run{
		MinLogLevel: 0,
		ExitOnError: true,
	}
}
