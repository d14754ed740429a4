// Package host answers questions about the machine the packager runs on:
// which platform it is, whether a cross-building tool is installed and
// whether a given executable is currently running.
package host
