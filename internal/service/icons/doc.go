// Package icons prepares the app icon in the format each target platform
// expects: .ico for Windows, .png for Linux and .icns for macOS.
//
// Conversion relies on tools installed on the host (ImageMagick, or sips on
// macOS). When no tool can do the job the original icon is kept and a
// warning is logged; a missing icon never fails the build on its own.
package icons
