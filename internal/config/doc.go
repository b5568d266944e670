// Package config provides the runtime configuration for auditprint.
// It defines defaults, validation, the optional .auditprint YAML file,
// and the XDG directories used for the history database.
package config
