package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/roach88/graphstmt/internal/statement"
)

const (
	// DefaultRepeatDelay is the fixed pause between iterative attempts.
	DefaultRepeatDelay = 25 * time.Millisecond

	// DefaultMaxRetryTime bounds the whole iterative loop.
	DefaultMaxRetryTime = 1200 * time.Second
)

// Executor runs statements against a Session.
//
// An Executor holds configuration only. It is safe to share between
// goroutines as long as each goroutine runs its own Statement.
type Executor struct {
	repeatDelay  time.Duration
	maxRetryTime time.Duration
	clock        Clock
	logger       *slog.Logger
	runIDs       RunIDGenerator
}

// Option configures an Executor.
type Option func(*Executor)

// WithRepeatDelay sets the fixed delay between iterative attempts.
func WithRepeatDelay(d time.Duration) Option {
	return func(e *Executor) {
		e.repeatDelay = d
	}
}

// WithMaxRetryTime sets the wall-clock budget of an iterative run,
// measured from the first attempt.
func WithMaxRetryTime(d time.Duration) Option {
	return func(e *Executor) {
		e.maxRetryTime = d
	}
}

// WithClock replaces the system clock. Used by tests.
func WithClock(c Clock) Option {
	return func(e *Executor) {
		e.clock = c
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Executor) {
		e.logger = l
	}
}

// WithRunIDGenerator replaces the UUIDv7 run ID generator.
func WithRunIDGenerator(g RunIDGenerator) Option {
	return func(e *Executor) {
		e.runIDs = g
	}
}

// NewExecutor creates an Executor with the given options applied over the
// defaults (25ms delay, 1200s budget, system clock, UUIDv7 run IDs).
func NewExecutor(opts ...Option) *Executor {
	e := &Executor{
		repeatDelay:  DefaultRepeatDelay,
		maxRetryTime: DefaultMaxRetryTime,
		clock:        SystemClock{},
		logger:       slog.Default(),
		runIDs:       UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes the statement with a default Executor.
func Run(ctx context.Context, sess Session, st *statement.Statement) (Result, error) {
	return NewExecutor().Run(ctx, sess, st)
}

// Outcome summarizes a successful run.
type Outcome struct {
	RunID string

	// Result is the raw result of the last store call.
	Result Result

	// Attempts is the number of store calls made.
	Attempts int

	// TotalCompleted sums TotalCompleted over all iterative attempts.
	// Always 0 for non-iterative statements.
	TotalCompleted int64

	Elapsed time.Duration
}

// Run executes st against sess and returns the raw result of the last
// store call.
//
// Non-iterative statements are executed exactly once. Iterative statements
// are repeated until the store reports TotalCompleted == 0; see Execute.
func (e *Executor) Run(ctx context.Context, sess Session, st *statement.Statement) (Result, error) {
	out, err := e.Execute(ctx, sess, st)
	if err != nil {
		return nil, err
	}
	return out.Result, nil
}

// Execute is Run with run statistics.
//
// Store errors are returned unchanged. Iterative runs additionally fail with
// a *RunError on a malformed result (ErrCodeProtocolFault), when the retry
// budget elapses (ErrCodeBudgetExceeded) or when ctx is cancelled between
// attempts (ErrCodeCancelled).
func (e *Executor) Execute(ctx context.Context, sess Session, st *statement.Statement) (*Outcome, error) {
	runID := e.runIDs.Generate()
	logger := e.logger.With("run_id", runID)

	if !st.Iterative {
		return e.executeOnce(ctx, sess, st, runID, logger)
	}
	return e.executeIterative(ctx, sess, st, runID, logger)
}

func (e *Executor) executeOnce(ctx context.Context, sess Session, st *statement.Statement, runID string, logger *slog.Logger) (*Outcome, error) {
	start := e.clock.Now()
	logger.Debug("executing statement")

	res, err := sess.Execute(ctx, st.Query, st.Parameters)
	if err != nil {
		return nil, err
	}

	return &Outcome{
		RunID:    runID,
		Result:   res,
		Attempts: 1,
		Elapsed:  e.clock.Now().Sub(start),
	}, nil
}

// executeIterative repeats the statement until the store reports that the
// last batch touched nothing. Each call is expected to cap its own work
// with $LIMIT_SIZE, so the delay between calls is fixed rather than
// growing.
func (e *Executor) executeIterative(ctx context.Context, sess Session, st *statement.Statement, runID string, logger *slog.Logger) (*Outcome, error) {
	st.InjectBatchSize()

	start := e.clock.Now()
	out := &Outcome{RunID: runID}
	var last int64

	fail := func(code RunErrorCode, msg string, cause error) error {
		return &RunError{
			Code:          code,
			Message:       msg,
			RunID:         runID,
			Attempts:      out.Attempts,
			LastCompleted: last,
			Elapsed:       e.clock.Now().Sub(start),
			Err:           cause,
		}
	}

	logger.Debug("starting batched statement",
		"batch_size", st.BatchSize,
		"max_retry_time", e.maxRetryTime,
		"repeat_delay", e.repeatDelay,
	)

	for {
		if err := ctx.Err(); err != nil {
			return nil, fail(ErrCodeCancelled, "batched statement cancelled", err)
		}

		res, err := sess.Execute(ctx, st.Query, st.Parameters)
		out.Attempts++
		if err != nil {
			return nil, err
		}

		rec, err := res.Single()
		if err != nil {
			return nil, fail(ErrCodeProtocolFault, "batched statement must return exactly one record", err)
		}
		raw, ok := rec.Get(TotalCompletedKey)
		if !ok {
			return nil, fail(ErrCodeProtocolFault, fmt.Sprintf("record has no %s field", TotalCompletedKey), nil)
		}
		n, err := toCount(raw)
		if err != nil {
			return nil, fail(ErrCodeProtocolFault, fmt.Sprintf("invalid %s value", TotalCompletedKey), err)
		}

		last = n
		out.TotalCompleted += n
		out.Result = res
		logger.Debug("batch completed", "attempt", out.Attempts, "total_completed", n)

		if n == 0 {
			out.Elapsed = e.clock.Now().Sub(start)
			logger.Info("batched statement converged",
				"attempts", out.Attempts,
				"total_completed", out.TotalCompleted,
				"elapsed", out.Elapsed,
			)
			return out, nil
		}

		if e.clock.Now().Sub(start) >= e.maxRetryTime {
			logger.Warn("batched statement exceeded retry budget",
				"attempts", out.Attempts,
				"last_completed", last,
				"max_retry_time", e.maxRetryTime,
			)
			return nil, fail(ErrCodeBudgetExceeded,
				fmt.Sprintf("store still reporting affected rows after %s", e.maxRetryTime), nil)
		}

		if err := e.clock.Sleep(ctx, e.repeatDelay); err != nil {
			return nil, fail(ErrCodeCancelled, "batched statement cancelled", err)
		}
	}
}

// toCount converts a store-reported counter to int64. Drivers differ in
// the numeric type they surface; fractional and non-numeric values are
// rejected.
func toCount(v any) (int64, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int8:
		return int64(n), nil
	case int16:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case uint:
		return int64(n), nil
	case uint8:
		return int64(n), nil
	case uint16:
		return int64(n), nil
	case uint32:
		return int64(n), nil
	case uint64:
		if n > math.MaxInt64 {
			return 0, fmt.Errorf("count %d overflows int64", n)
		}
		return int64(n), nil
	case float32:
		return floatCount(float64(n))
	case float64:
		return floatCount(n)
	case json.Number:
		return n.Int64()
	default:
		return 0, fmt.Errorf("non-numeric count of type %T", v)
	}
}

func floatCount(f float64) (int64, error) {
	if f != math.Trunc(f) || math.IsInf(f, 0) || math.Abs(f) > math.MaxInt64 {
		return 0, fmt.Errorf("count %v is not an integer", f)
	}
	return int64(f), nil
}
