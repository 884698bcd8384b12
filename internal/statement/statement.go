package statement

// LimitSizeKey is the reserved parameter that carries the batch size.
// Queries reference it (e.g. "LIMIT $LIMIT_SIZE") to cap the work done by
// a single call.
const LimitSizeKey = "LIMIT_SIZE"

// Statement is a query against the graph store together with its parameters
// and iteration policy.
//
// Query text is opaque: it is never parsed or validated here.
//
// Thread-safety: a Statement is NOT safe for concurrent Run/MergeParameters
// calls. Parameter replacement is unsynchronized.
type Statement struct {
	// Query is the store query text.
	Query string

	// Parameters maps parameter names to store-defined values.
	// Always contains LimitSizeKey after construction.
	Parameters map[string]any

	// Iterative selects the batched execution protocol.
	Iterative bool

	// BatchSize is injected as Parameters[LimitSizeKey].
	BatchSize int
}

// New creates a Statement. The params map is copied; nil means empty.
//
// Parameters[LimitSizeKey] is always set to batchSize, overriding any
// caller-supplied value under that key.
func New(query string, params map[string]any, iterative bool, batchSize int) *Statement {
	p := make(map[string]any, len(params)+1)
	for k, v := range params {
		p[k] = v
	}
	p[LimitSizeKey] = batchSize

	return &Statement{
		Query:      query,
		Parameters: p,
		Iterative:  iterative,
		BatchSize:  batchSize,
	}
}

// MergeParameters overlays extra onto the current parameters. Keys in extra
// win on conflict. The parameter map is replaced, not mutated in place.
//
// LimitSizeKey is not re-injected here: a LIMIT_SIZE in extra survives until
// the next iterative run refreshes it.
func (s *Statement) MergeParameters(extra map[string]any) {
	merged := make(map[string]any, len(s.Parameters)+len(extra))
	for k, v := range s.Parameters {
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = v
	}
	s.Parameters = merged
}

// InjectBatchSize refreshes Parameters[LimitSizeKey] from BatchSize.
// The engine calls this on entry to every iterative run.
func (s *Statement) InjectBatchSize() {
	if s.Parameters == nil {
		s.Parameters = make(map[string]any, 1)
	}
	s.Parameters[LimitSizeKey] = s.BatchSize
}

// Clone returns a copy with its own parameter map.
// Parameter values themselves are shared.
func (s *Statement) Clone() *Statement {
	c := *s
	c.Parameters = make(map[string]any, len(s.Parameters))
	for k, v := range s.Parameters {
		c.Parameters[k] = v
	}
	return &c
}
