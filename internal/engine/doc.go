// Package engine executes statements against a graph store session.
//
// A Session is supplied and owned by the caller; the engine never opens,
// pools or closes one. Statements run in one of two modes:
//
// Single shot:
// The query runs exactly once and the raw Result is handed back. Store
// errors propagate unchanged.
//
// Iterative (batched):
// Large deletes and updates must not run as one unbounded transaction.
// The query caps its work per call with $LIMIT_SIZE and reports how many
// rows it touched as TotalCompleted. The engine repeats it with a fixed
// delay (25ms) until TotalCompleted is 0, bounded by a wall-clock budget
// (1200s) measured from the first attempt:
//
//	RUNNING --TotalCompleted==0--> DONE
//	RUNNING --malformed result---> FAULTED   (RunError PROTOCOL_FAULT)
//	RUNNING --budget elapsed-----> EXHAUSTED (RunError RETRY_BUDGET_EXCEEDED)
//	RUNNING --ctx cancelled------> CANCELLED (RunError CANCELLED)
//
// Execution is synchronous: Run blocks for each store call and each delay.
// Time is read through a Clock so tests can drive the budget without
// sleeping.
package engine
