// Package mocks provides centralized mock implementations for testing.
//
// Instead of defining inline mocks in individual test files, these
// standardized mock implementations can be reused across test packages.
// Each mock exposes function fields to override individual methods plus a
// simple in-memory default implementation where that is useful.
package mocks
