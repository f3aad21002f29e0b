// Package file implements the configuration store as a TOML file under the
// evisync config directory.
package file
