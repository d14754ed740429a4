// Package engine drives the external packaging engine, electron-packager,
// which turns a prepared app directory into a platform bundle.
package engine
