// Package config handles application configuration loading and validation.
//
// Configuration is loaded from a YAML file and validated using struct tags.
// Load returns an explicit value; there is no package-level state.
package config
