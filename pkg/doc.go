// Package pkg provides shared utilities for the iclickerpoll stack.
//
// This package contains common functionality used across the base-station,
// protocol, and polling layers, including:
//
//   - Structured logging via Go's standard [log/slog] package
//   - Sentinel error types for base-station protocol errors
//   - Component identifiers for log filtering
//
// # Logging
//
// The logging subsystem wraps [log/slog] with clicker-specific context:
//
//	pkg.SetLogLevel(slog.LevelDebug)
//	pkg.LogInfo(pkg.ComponentBase, "base station initialized", "frequency", "aa")
//
// # Errors
//
// Common protocol errors are defined as sentinel values:
//
//	if errors.Is(err, pkg.ErrTimeout) {
//	    // Nothing to read right now
//	}
package pkg
