// Package shared provides common utilities and test helpers used across the
// FinBoard codebase. It serves as a central location for shared functionality
// that doesn't belong to any specific domain or architectural layer.
//
// # Structure
//
// The package is organized into the following components:
//
// - testutil: Testing utilities, currently the buffered slog handler
//
// # Usage Guidelines
//
// This package should only contain:
//
// 1. Test utilities used by multiple packages
// 2. Generic helper functions with no domain-specific logic
//
// It should NOT contain:
//
// 1. Business logic or domain-specific code
// 2. Circular dependencies with other internal packages
//
// # Test Utilities
//
// The testutil subpackage provides a slog.Handler that captures log
// records in memory so tests can assert on messages and attributes:
//
//	func TestSomething(t *testing.T) {
//	    logger, handler := testutil.NewTestLogger(t)
//	    svc := NewService(logger)
//	    svc.Do()
//	    testutil.AssertLogContains(t, handler, slog.LevelInfo, "did the thing")
//	}
package shared
