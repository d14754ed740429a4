// Package version exposes build metadata for the project.
//
// Variables Version, Commit, and BuildTime are injected at build time via
// Go ldflags. Version doubles as the nativefier version written into each
// packaged app.
package version
