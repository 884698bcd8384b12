package cli

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/graphstmt/internal/engine"
	"github.com/roach88/graphstmt/internal/statement"
)

func TestLoadStatements_Order(t *testing.T) {
	dir := t.TempDir()
	a := writeStatement(t, dir, "a.json", `{"query": "A"}`)
	b := writeStatement(t, dir, "b.cue", `query: "B"`)

	loaded, err := LoadStatements([]string{b, a})
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "B", loaded[0].Statement.Query)
	assert.Equal(t, "A", loaded[1].Statement.Query)
	assert.NotEqual(t, loaded[0].Fingerprint, loaded[1].Fingerprint)
}

func TestLoadStatements_StopsAtFirstFailure(t *testing.T) {
	dir := t.TempDir()
	good := writeStatement(t, dir, "good.json", `{}`)
	bad := writeStatement(t, dir, "bad.yaml", "query: [")

	_, err := LoadStatements([]string{good, bad, filepath.Join(dir, "missing.json")})
	require.Error(t, err)

	var le *LoadError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, ErrCodeParseFailed, le.Code)
	assert.Equal(t, bad, le.Path)
	assert.True(t, statement.IsParseError(err))
}

func TestLoadStatements_YAMLTimestampParameter(t *testing.T) {
	path := writeStatement(t, t.TempDir(), "since.yaml",
		"query: DELETE FROM nodes WHERE lastupdated < $SINCE\nparameters: {SINCE: 2024-01-01}\n")

	loaded, err := LoadStatements([]string{path})
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), loaded[0].Statement.Parameters["SINCE"])
	assert.Len(t, loaded[0].Fingerprint, 64)
}

func TestLoadedStatement_WithParams(t *testing.T) {
	path := writeStatement(t, t.TempDir(), "cleanup.json", cleanupJSON)
	loaded, err := LoadStatements([]string{path})
	require.NoError(t, err)
	l := loaded[0]

	first := l.WithParams(map[string]any{"UPDATE_TAG": 1})
	second := l.WithParams(map[string]any{"UPDATE_TAG": 2})

	assert.Equal(t, 1, first.Parameters["UPDATE_TAG"])
	assert.Equal(t, 2, second.Parameters["UPDATE_TAG"])
	assert.NotContains(t, l.Statement.Parameters, "UPDATE_TAG", "loaded statement must stay untouched")
	assert.Equal(t, 2, first.Parameters[statement.LimitSizeKey])
}

func TestMapRunErrorToCode(t *testing.T) {
	assert.Equal(t, ErrCodeExecution, MapRunErrorToCode(errors.New("syntax error")))
	assert.Equal(t, ErrCodeProtocol, MapRunErrorToCode(&engine.RunError{Code: engine.ErrCodeProtocolFault}))
	assert.Equal(t, ErrCodeBudgetExceeded, MapRunErrorToCode(&engine.RunError{Code: engine.ErrCodeBudgetExceeded}))
	assert.Equal(t, ErrCodeCancelled, MapRunErrorToCode(&engine.RunError{Code: engine.ErrCodeCancelled, Err: context.Canceled}))
}

func TestShortQuery(t *testing.T) {
	assert.Equal(t, "MATCH (n) RETURN n", shortQuery("MATCH (n)\n\t RETURN n"))

	long := shortQuery("SELECT id FROM nodes WHERE lastupdated <> $UPDATE_TAG AND label = 'AWSAccount' LIMIT 5")
	assert.Len(t, long, 60)
	assert.Contains(t, long, "...")

	wide := shortQuery("MATCH (n) WHERE n.name = '" + strings.Repeat("\u00e9", 80) + "' RETURN n")
	assert.True(t, utf8.ValidString(wide))
	assert.Equal(t, 60, utf8.RuneCountInString(wide))
}
