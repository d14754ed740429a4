// Package packager turns a web app URL into a desktop bundle.
//
// Run drives five stages in order (inferring, copying, icons, packaging,
// finalizing): it resolves the options, stages a scratch copy of the app
// template with the persisted app args, prepares the icon, strips options
// the host cannot honour, invokes the packaging engine and places the icon
// into the produced bundle.
package packager
