package statement

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"
)

// Format identifies the encoding of a statement document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatCUE  Format = "cue"
)

// FormatForPath picks a format from the file extension.
// Unknown extensions fall back to JSON.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".cue":
		return FormatCUE
	default:
		return FormatJSON
	}
}

// LoadErrorKind distinguishes unreadable sources from malformed ones.
type LoadErrorKind string

const (
	// ErrKindIO indicates the source could not be read.
	ErrKindIO LoadErrorKind = "IO_ERROR"

	// ErrKindParse indicates the source is not a well-formed document.
	ErrKindParse LoadErrorKind = "PARSE_ERROR"
)

// LoadError is returned when a statement cannot be hydrated from a source.
type LoadError struct {
	Kind   LoadErrorKind
	Source string // file path or "<reader>"
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Source, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// IsParseError reports whether err is a LoadError of kind ErrKindParse.
func IsParseError(err error) bool {
	var le *LoadError
	return errors.As(err, &le) && le.Kind == ErrKindParse
}

// IsIOError reports whether err is a LoadError of kind ErrKindIO.
func IsIOError(err error) bool {
	var le *LoadError
	return errors.As(err, &le) && le.Kind == ErrKindIO
}

// LoadFile reads a statement document from path. The format is chosen by
// extension (see FormatForPath).
func LoadFile(path string) (*Statement, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Kind: ErrKindIO, Source: path, Err: err}
	}
	return decode(data, FormatForPath(path), path)
}

// Load reads a statement document of the given format from r.
func Load(r io.Reader, format Format) (*Statement, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &LoadError{Kind: ErrKindIO, Source: "<reader>", Err: err}
	}
	return decode(data, format, "<reader>")
}

// Decode hydrates a statement from an in-memory document.
func Decode(data []byte, format Format) (*Statement, error) {
	return decode(data, format, "<bytes>")
}

func decode(data []byte, format Format, source string) (*Statement, error) {
	var doc Document
	var err error

	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &doc)
	case FormatYAML:
		err = yaml.Unmarshal(data, &doc)
	case FormatCUE:
		err = decodeCUE(data, source, &doc)
	default:
		err = fmt.Errorf("unsupported format %q", format)
	}
	if err != nil {
		return nil, &LoadError{Kind: ErrKindParse, Source: source, Err: err}
	}

	if doc.BatchSize < 0 {
		return nil, &LoadError{
			Kind:   ErrKindParse,
			Source: source,
			Err:    fmt.Errorf("iterationsize must be non-negative, got %d", doc.BatchSize),
		}
	}

	return FromDocument(doc), nil
}

// decodeCUE evaluates a CUE document and decodes it into doc.
// The value must be concrete; open definitions are rejected.
func decodeCUE(data []byte, source string, doc *Document) error {
	ctx := cuecontext.New()
	value := ctx.CompileBytes(data, cue.Filename(source))
	if err := value.Err(); err != nil {
		return fmt.Errorf("compile CUE: %w", err)
	}
	if err := value.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("validate CUE: %w", err)
	}
	if err := value.Decode(doc); err != nil {
		return fmt.Errorf("decode CUE: %w", err)
	}
	return nil
}
