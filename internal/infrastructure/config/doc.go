// Package config handles loading and validating tabletop-core configuration.
//
// Configuration is loaded once at startup in three layers: hardcoded
// defaults, then the YAML file, then TABLETOP_* environment variables.
// Sensitive values (the JWT secret, the admin seed password) should be
// supplied through the environment rather than the file.
package config
