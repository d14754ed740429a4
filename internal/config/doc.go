// Package config defines the build options of a packaging run and provides
// helpers to load, validate and save them in YAML format.
//
// The Options type is the single configuration value handed from the CLI to
// the packager; every stage works on its own deep copy obtained with Clone.
package config
