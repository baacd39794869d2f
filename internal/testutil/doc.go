// Package testutil holds shared fixtures for package tests: a temp SQLite
// store with deterministic IDs, a pinned clock, and golden-file assertions.
//
// Only _test.go files import this package.
package testutil
