// Package testutils holds helpers shared by the package tests, currently a
// memory-backed slog handler used to assert on what a component logged.
package testutils
