// Package config handles configuration loading, parsing, and validation
// from various sources (flags, environment variables, .env and config files).
// It provides type-safe access to the settings needed by the workflow while
// keeping configuration details separate from the mutual-pair and delivery logic.
package config
