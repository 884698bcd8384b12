package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/graphstmt/internal/engine"
	"github.com/roach88/graphstmt/internal/neo4jstore"
	"github.com/roach88/graphstmt/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Database     string
	Neo4j        neo4jstore.Config
	Params       string
	RepeatDelay  time.Duration
	MaxRetryTime time.Duration

	// RunIDs overrides the run ID generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	RunIDs engine.RunIDGenerator
}

// RunSummary reports one executed statement.
type RunSummary struct {
	Path           string `json:"path"`
	RunID          string `json:"run_id"`
	Iterative      bool   `json:"iterative"`
	Attempts       int    `json:"attempts"`
	TotalCompleted int64  `json:"total_completed"`
	Records        int    `json:"records"`
	ElapsedMS      int64  `json:"elapsed_ms"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <file>...",
		Short: "Execute statement documents against a graph database",
		Long: `Execute statement documents in order against a SQLite graph database
(--db, created if it doesn't exist) or a Neo4j server (--neo4j-uri).
Execution stops at the first failure.

The Neo4j password is read from --neo4j-password or $NEO4J_PASSWORD.

Iterative statements repeat every --repeat-delay until the store reports
TotalCompleted = 0, giving up after --max-retry-time.

Example:
  graphstmt run --db ./graph.db cleanup/*.json
  graphstmt run --db ./graph.db --params '{"UPDATE_TAG": 1700000000}' cleanup.yaml
  graphstmt run --neo4j-uri neo4j://localhost:7687 --neo4j-user neo4j cleanup.json`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatements(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite graph database")
	cmd.Flags().StringVar(&opts.Neo4j.URI, "neo4j-uri", "", "Neo4j server URI (neo4j:// or bolt://)")
	cmd.Flags().StringVar(&opts.Neo4j.Username, "neo4j-user", "neo4j", "Neo4j username")
	cmd.Flags().StringVar(&opts.Neo4j.Password, "neo4j-password", "", "Neo4j password (default $NEO4J_PASSWORD)")
	cmd.Flags().StringVar(&opts.Neo4j.Database, "neo4j-database", "", "Neo4j database (default: server default)")
	cmd.Flags().StringVar(&opts.Params, "params", "{}", "JSON object merged into every statement's parameters")
	cmd.Flags().DurationVar(&opts.RepeatDelay, "repeat-delay", engine.DefaultRepeatDelay, "delay between batches of an iterative statement")
	cmd.Flags().DurationVar(&opts.MaxRetryTime, "max-retry-time", engine.DefaultMaxRetryTime, "time budget for one iterative statement")
	cmd.MarkFlagsOneRequired("db", "neo4j-uri")
	cmd.MarkFlagsMutuallyExclusive("db", "neo4j-uri")

	return cmd
}

func runStatements(opts *RunOptions, paths []string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: logLevel,
	}))

	var params map[string]any
	if err := json.Unmarshal([]byte(opts.Params), &params); err != nil {
		_ = formatter.Error(ErrCodeInvalidParams, fmt.Sprintf("--params must be a JSON object: %v", err), nil)
		return WrapExitError(ExitCommandError, "invalid --params", err)
	}

	loaded, err := LoadStatements(paths)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			_ = formatter.Error(le.Code, le.Message, map[string]string{"path": le.Path})
		}
		return WrapExitError(ExitCommandError, "failed to load statements", err)
	}
	logger.Info("statements loaded", "count", len(loaded))

	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("received signal, stopping after current attempt", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	sess, closeSession, err := openSession(ctx, opts, logger)
	if err != nil {
		_ = formatter.Error(ErrCodeOpenFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer func() {
		if closeErr := closeSession(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()

	execOpts := []engine.Option{
		engine.WithLogger(logger),
		engine.WithRepeatDelay(opts.RepeatDelay),
		engine.WithMaxRetryTime(opts.MaxRetryTime),
	}
	if opts.RunIDs != nil {
		execOpts = append(execOpts, engine.WithRunIDGenerator(opts.RunIDs))
	}
	exec := engine.NewExecutor(execOpts...)

	summaries := make([]RunSummary, 0, len(loaded))
	var text strings.Builder
	for _, l := range loaded {
		stmt := l.WithParams(params)
		formatter.VerboseLog("Running %s (%s)", l.Path, describe(stmt))

		out, err := exec.Execute(ctx, sess, stmt)
		if err != nil {
			code := MapRunErrorToCode(err)
			_ = formatter.Error(code, err.Error(), map[string]any{
				"path":      l.Path,
				"completed": summaries,
			})
			return WrapExitError(ExitFailure, fmt.Sprintf("%s: %s", code, l.Path), err)
		}

		summary := RunSummary{
			Path:           l.Path,
			RunID:          out.RunID,
			Iterative:      stmt.Iterative,
			Attempts:       out.Attempts,
			TotalCompleted: out.TotalCompleted,
			ElapsedMS:      out.Elapsed.Milliseconds(),
		}
		if records, ok := out.Result.(engine.Records); ok {
			summary.Records = len(records)
		}
		summaries = append(summaries, summary)

		if stmt.Iterative {
			fmt.Fprintf(&text, "✓ %s: %d row(s) in %d batch(es)\n", l.Path, out.TotalCompleted, out.Attempts)
		} else {
			fmt.Fprintf(&text, "✓ %s: %d record(s)\n", l.Path, summary.Records)
		}
	}
	fmt.Fprintf(&text, "%d statement(s) executed", len(summaries))

	return formatter.Success(summaries, text.String())
}

// openSession connects to the store selected by --db or --neo4j-uri.
func openSession(ctx context.Context, opts *RunOptions, logger *slog.Logger) (engine.Session, func() error, error) {
	if opts.Neo4j.URI == "" {
		logger.Info("opening database", "path", opts.Database)
		st, err := store.Open(opts.Database)
		if err != nil {
			return nil, nil, err
		}
		return st, st.Close, nil
	}

	cfg := opts.Neo4j
	if cfg.Password == "" {
		cfg.Password = os.Getenv("NEO4J_PASSWORD")
	}
	logger.Info("connecting to neo4j", "uri", cfg.URI, "database", cfg.Database)
	st, err := neo4jstore.Open(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return st, func() error { return st.Close(context.Background()) }, nil
}
