//go:build !debug

package check

// Assert is a no-op in release builds; the condition is not evaluated
// beyond what the call site already computed.
func Assert(_ bool, _ string) {}

// Assertf is a no-op in release builds.
func Assertf(_ bool, _ string, _ ...any) {}
