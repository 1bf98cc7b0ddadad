// Package waypoint is a debugger UI binding layer for terminal editors:
// gutter breakpoint markers, click-to-toggle breakpoints, current-line
// highlighting, and a breakpoints panel, wired to a debug service.
//
// See the binding, debug, panel, textview, and remote packages.
package waypoint

import (
	_ "embed"
	"strings"
)

//go:embed VERSION
var embeddedVersion string

// Version returns the library version in SemVer form, without the
// leading "v".
func Version() string {
	return strings.TrimSpace(embeddedVersion)
}

// VersionTag returns the git tag form of Version.
func VersionTag() string {
	return "v" + Version()
}
