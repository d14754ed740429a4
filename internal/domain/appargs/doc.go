// Package appargs defines the snapshot of build options that travels inside
// the packaged app and is read by it at startup.
//
// Select is the only way to build a Snapshot from options: it copies an
// explicit allow-list of fields by value, so host-only build settings like the
// output directory or injected file paths never leak into the bundle.
package appargs
