// Package config loads, normalizes, and validates botanize configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment overrides such as
// PLANTNET_API_KEY and BOTANIZE_TIER. The Config type centralizes the scoring
// constants, the free-tier quota, the taxonomy data location, and the
// recognition service credentials so the CLI and the HTTP API agree on them.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths and clear validation errors.
package config
