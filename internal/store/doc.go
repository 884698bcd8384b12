// Package store provides a SQLite-backed property graph that satisfies
// engine.Session.
//
// # Data Model
//
//   - nodes: id, label, JSON properties, lastupdated tag
//   - relationships: typed edges between nodes, cascading on node delete
//
// # Execution
//
// Statement parameters bind by name, so query text may reference them as
// $NAME, :NAME or @NAME. A statement that yields columns returns its rows.
// A statement that yields none (INSERT, UPDATE, DELETE) returns a single
// record {"TotalCompleted": changes()}, which lets plain DML drive the
// iterative protocol:
//
//	DELETE FROM nodes WHERE id IN (
//	    SELECT id FROM nodes WHERE lastupdated <> $UPDATE_TAG LIMIT $LIMIT_SIZE
//	)
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Relationship cascades
package store
