// Package snapshot implements persistence for the app args snapshot.
//
// The FileRepository stores and loads the snapshot as JSON inside an app
// directory (nativefier.json) and exposes a Repository interface that the
// staging step depends on.
package snapshot
