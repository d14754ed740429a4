// Package naming derives the package identifier written into the staged app.
//
// The identifier combines a normalized form of the display name with a short
// digest of the target URL, so two apps sharing a display name but pointing
// at different sites never collide on disk or in the Electron user data dir.
package naming
