// Package config manages syncvault's persisted configuration using Viper.
//
// The configuration is a versioned, strongly-typed structure stored as YAML
// (by default under ~/.config/syncvault/config.yaml). It owns everything a
// backup run reads: sources, destination, backup type, compression
// settings, worker count, exclusion patterns, the schedule, and the
// append-only history of completed runs.
//
// Loading an older persisted shape goes through an explicit migration step
// that fills in fields added since the config was written, rather than
// ad hoc default-filling at each call site. Saving is atomic.
package config
