// Package statement defines the Statement value object: a graph query, its
// parameters and its iteration policy.
//
// Statements are built directly with New or hydrated from a Document, which
// is the on-disk form (JSON, YAML or CUE):
//
//	{
//	  "query": "MATCH (n:Node) WHERE n.lastupdated <> $UPDATE_TAG WITH n LIMIT $LIMIT_SIZE DETACH DELETE n RETURN COUNT(*) AS TotalCompleted",
//	  "parameters": {"UPDATE_TAG": 1700000000},
//	  "iterative": true,
//	  "iterationsize": 100
//	}
//
// The batch size is always mirrored into Parameters[LimitSizeKey] so query
// text can reference it. Execution lives in package engine.
package statement
