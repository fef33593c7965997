// Package version exposes the build version embedded from the VERSION
// file at compile time.
package version

import (
	_ "embed"
	"strings"
)

//go:embed VERSION
var raw string

// Get returns the version string, trimmed of surrounding whitespace.
func Get() string {
	return strings.TrimSpace(raw)
}
