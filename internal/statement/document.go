package statement

// Document is the serialized form of a Statement.
//
// Absent fields decode to their zero values, which are also the documented
// defaults: "", {}, false, 0.
type Document struct {
	Query      string         `json:"query" yaml:"query"`
	Parameters map[string]any `json:"parameters" yaml:"parameters"`
	Iterative  bool           `json:"iterative" yaml:"iterative"`
	BatchSize  int            `json:"iterationsize" yaml:"iterationsize"`
}

// ToDocument converts the statement to its document form.
// The returned parameter map is a copy.
func (s *Statement) ToDocument() Document {
	params := make(map[string]any, len(s.Parameters))
	for k, v := range s.Parameters {
		params[k] = v
	}
	return Document{
		Query:      s.Query,
		Parameters: params,
		Iterative:  s.Iterative,
		BatchSize:  s.BatchSize,
	}
}

// FromDocument hydrates a Statement from a document.
func FromDocument(doc Document) *Statement {
	return New(doc.Query, doc.Parameters, doc.Iterative, doc.BatchSize)
}
