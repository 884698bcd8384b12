package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/graphstmt/internal/statement"
)

// StatementSummary describes one validated statement document.
type StatementSummary struct {
	Path        string             `json:"path"`
	Fingerprint string             `json:"fingerprint"`
	Document    statement.Document `json:"document"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <file>...",
		Short: "Check that statement documents load",
		Long: `Load statement documents (.json, .yaml, .yml or .cue) without
touching a database and print their hydrated form and fingerprint.

Query text is not validated: it is only checked by the store at run time.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, paths []string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	loaded, err := LoadStatements(paths)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			_ = formatter.Error(le.Code, le.Message, map[string]string{"path": le.Path})
			return NewExitError(ExitCommandError, le.Error())
		}
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "validate failed", err)
	}

	summaries := make([]StatementSummary, len(loaded))
	var text strings.Builder
	for i, l := range loaded {
		formatter.VerboseLog("Loaded %s", l.Path)
		summaries[i] = StatementSummary{
			Path:        l.Path,
			Fingerprint: l.Fingerprint,
			Document:    l.Statement.ToDocument(),
		}
		fmt.Fprintf(&text, "✓ %s (%s) %s\n  %s\n", l.Path, describe(l.Statement), l.Fingerprint[:12], shortQuery(l.Statement.Query))
	}
	fmt.Fprintf(&text, "%d statement(s) valid", len(loaded))

	return formatter.Success(summaries, text.String())
}
