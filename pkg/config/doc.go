// Package config defines the Castellan configuration model and its loading
// pipeline.
//
// Configuration is read from a YAML file, defaults are applied for missing
// values, environment variables prefixed with CASTELLAN_ override file
// values, and the final result is validated before use.
package config
