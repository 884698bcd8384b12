package testutil

// FixedRunID returns the same run ID on every call.
//
// Unlike engine.FixedGenerator, which hands out IDs in sequence and panics
// when exhausted, FixedRunID never runs out. Useful when a test only cares
// that log lines and errors carry a known ID.
//
// Thread-safety: stateless and safe for concurrent use.
type FixedRunID string

// Generate returns the fixed ID, or "test-run" if empty.
// Implements engine.RunIDGenerator.
func (id FixedRunID) Generate() string {
	if id == "" {
		return "test-run"
	}
	return string(id)
}
