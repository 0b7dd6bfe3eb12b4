// Package config defines station settings used by the controller binaries
// and provides helpers to load, validate and save them in YAML format.
//
// The Config type holds the backend base URL, the local journal path and
// timing parameters for backend calls.
package config
