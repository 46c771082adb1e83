//go:build tools

// Package tools documents development tool dependencies.
// These tools are run with `go run` at pinned versions and are not tracked in go.mod.
package tools

// Development tools:
//
// mockgen - regenerates internal/mocks from the auth ports
//   Run: go generate ./internal/mocks
//   Version: go.uber.org/mock/mockgen@v0.6.0 (matches the go.uber.org/mock runtime in go.mod)
//
// Air - live reload for local development
//   Install: go install github.com/air-verse/air@v1.63.0
//   Docs: https://github.com/air-verse/air
