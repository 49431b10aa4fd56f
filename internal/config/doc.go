// Package config loads, normalizes, and validates ecufiler configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type centralizes the monitored
// folder, the filing destination, watch timing, and logging so the daemon and
// CLI discover every setting in one pass.
//
// Always obtain settings through this package so downstream code receives
// absolute paths, canonical extensions, and clear validation errors.
package config
