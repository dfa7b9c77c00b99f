// Package build holds values injected at build time with -ldflags.
package build

var (
	Name    = "isorted"
	Version = "v0.0.0+dev"
)
