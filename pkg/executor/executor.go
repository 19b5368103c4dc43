package executor

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"io"
	"log/slog"
	"net"
	"syscall"
	"time"

	"github.com/cespare/xxhash"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/pseudomuto/bulkloader/pkg/batch"
	"github.com/pseudomuto/bulkloader/pkg/statement"
)

// ErrConnectionLost is returned by Execute when the target became unreachable
// part way through a load. The partial LoadResult is returned alongside it.
var ErrConnectionLost = errors.New("connection to execution target lost")

type (
	// Runner is the execution service statements are sent to. Run must block
	// until the target has accepted or rejected the statement.
	Runner interface {
		Run(context.Context, string) error
	}

	// Reporter receives every outcome as soon as it is recorded.
	Reporter func(Outcome)

	// Executor drives a load: it executes schema statements first, then data
	// statements, splitting oversized INSERTs on the way.
	//
	// Statements are sent one at a time and the executor waits for each to
	// finish before sending the next. A failing statement never stops the
	// load; only errors classified as fatal (a lost connection, by default)
	// end it early.
	//
	// Example usage:
	//
	//	exec := executor.New(executor.Config{
	//		Runner:          client,
	//		MaxRowsPerBatch: 500,
	//	})
	//
	//	result, err := exec.Execute(ctx, script.Statements)
	//	if err != nil {
	//		log.Fatal(err)
	//	}
	//
	//	fmt.Printf("%d/%d succeeded\n", result.Succeeded, result.Succeeded+result.Failed)
	Executor struct {
		runner   Runner
		maxRows  int
		logger   *slog.Logger
		reporter Reporter
		isFatal  func(error) bool
	}

	// Config contains configuration options for creating a new Executor.
	Config struct {
		// Runner executes individual statements. Required.
		Runner Runner

		// MaxRowsPerBatch is the largest number of value groups sent in a
		// single INSERT. Zero or less disables splitting.
		MaxRowsPerBatch int

		// Logger receives progress and failure logs. Defaults to slog.Default().
		Logger *slog.Logger

		// Reporter, if set, is called after each executed statement.
		Reporter Reporter

		// IsFatal decides whether an error ends the load. Defaults to
		// IsConnectionError.
		IsFatal func(error) bool
	}

	// Pass identifies which of the two ordered passes a statement ran in.
	Pass int

	// Tolerance is how seriously a failure of a given kind is taken. Neither
	// level stops the load.
	Tolerance int

	// ExecutionStatus represents the outcome of executing one statement.
	ExecutionStatus string

	// Outcome is the result of sending a single statement to the Runner.
	Outcome struct {
		// Statement is the SQL that was executed. For a split INSERT this is
		// one batch; Ordinal is always that of the original statement.
		Statement statement.Statement

		// Kind of the original statement.
		Kind statement.Kind

		// Pass the statement ran in.
		Pass Pass

		// Batch is the 1-based batch index and Batches the batch count of the
		// original statement. Both are 1 for statements that were not split.
		Batch   int
		Batches int

		// Status of the execution.
		Status ExecutionStatus

		// Tolerance applied to a failure, and a hint describing the likely
		// cause. Only meaningful when Error is set.
		Tolerance Tolerance
		Hint      string

		// Error returned by the Runner, if any.
		Error error

		// Digest is the xxhash of the executed SQL.
		Digest uint64

		// ExecutionTime records how long the Runner took.
		ExecutionTime time.Duration
	}

	policy struct {
		tolerance Tolerance
		hint      string
	}
)

const (
	// SchemaPass executes zone, table and index creation and drops.
	SchemaPass Pass = iota + 1
	// DataPass executes inserts and every other statement.
	DataPass
)

const (
	// Soft failures are expected in re-runs, e.g. an object that already exists.
	Soft Tolerance = iota
	// Hard failures are reported as errors.
	Hard
)

const (
	// StatusSuccess indicates the statement was accepted.
	StatusSuccess ExecutionStatus = "success"

	// StatusFailed indicates the statement was rejected.
	StatusFailed ExecutionStatus = "failed"

	// StatusWarning indicates the statement was rejected but the failure is
	// tolerated by policy.
	StatusWarning ExecutionStatus = "warning"
)

var policies = map[statement.Kind]policy{
	statement.ZoneCreate:  {tolerance: Soft, hint: "zone may already exist"},
	statement.Drop:        {tolerance: Soft, hint: "object may not exist or has dependents"},
	statement.IndexCreate: {tolerance: Soft, hint: "index may already exist"},
	statement.TableCreate: {tolerance: Hard, hint: "table could not be created"},
	statement.Insert:      {tolerance: Hard, hint: "rows were rejected"},
	statement.OtherDml:    {tolerance: Hard, hint: "data modification was rejected"},
	statement.Unknown:     {tolerance: Hard, hint: "unrecognized statement was rejected"},
}

// New creates a new Executor with the provided configuration.
func New(config Config) *Executor {
	e := &Executor{
		runner:   config.Runner,
		maxRows:  config.MaxRowsPerBatch,
		logger:   config.Logger,
		reporter: config.Reporter,
		isFatal:  config.IsFatal,
	}

	if e.logger == nil {
		e.logger = slog.Default()
	}

	if e.isFatal == nil {
		e.isFatal = IsConnectionError
	}

	return e
}

// Execute runs the given statements against the Runner in two passes.
//
// Pass one executes every schema statement (see statement.Kind.IsSchema) in
// file order; pass two executes the remaining statements in file order. The
// executor does not reorder statements within a pass, so the script must
// already create zones before the tables that use them, and tables before
// their indexes.
//
// INSERT statements with more than MaxRowsPerBatch value groups are split and
// each batch is executed, and recorded, on its own.
//
// Failed statements are recorded and the load continues. Execute returns an
// error only when a failure is fatal; the error then wraps ErrConnectionLost
// and the returned LoadResult covers everything executed up to that point.
func (e *Executor) Execute(ctx context.Context, stmts []statement.Statement) (*LoadResult, error) {
	startTime := time.Now()
	result := &LoadResult{
		RunID: uuid.NewString(),
		Total: len(stmts),
	}

	schema, data := statement.Partition(stmts)
	e.logger.Info("Starting load",
		"run_id", result.RunID,
		"statements", len(stmts),
		"schema", len(schema),
		"data", len(data),
		"max_rows_per_batch", e.maxRows,
	)

	passes := []struct {
		pass  Pass
		stmts []statement.Statement
	}{
		{pass: SchemaPass, stmts: schema},
		{pass: DataPass, stmts: data},
	}

	for _, p := range passes {
		for _, stmt := range p.stmts {
			if err := e.executeStatement(ctx, p.pass, stmt, result); err != nil {
				result.ExecutionTime = time.Since(startTime)
				return result, err
			}
		}
	}

	result.ExecutionTime = time.Since(startTime)

	e.logger.Info("Load finished",
		"run_id", result.RunID,
		"total", result.Total,
		"succeeded", result.Succeeded,
		"failed", result.Failed,
		"warnings", result.Warnings,
		"elapsed", result.ExecutionTime,
	)

	return result, nil
}

func (e *Executor) executeStatement(ctx context.Context, pass Pass, stmt statement.Statement, result *LoadResult) error {
	kind := stmt.Kind()

	parts := []statement.Statement{stmt}
	if pass == DataPass && kind == statement.Insert {
		parts = batch.Split(stmt, e.maxRows)
	}

	if len(parts) > 1 {
		e.logger.Debug("Split insert into batches",
			"statement", stmt.Ordinal,
			"batches", len(parts),
		)
	}

	for i, part := range parts {
		outcome := e.run(ctx, pass, kind, part)
		outcome.Batch = i + 1
		outcome.Batches = len(parts)

		result.record(outcome)
		e.log(outcome)

		if e.reporter != nil {
			e.reporter(outcome)
		}

		if outcome.Error != nil && e.isFatal(outcome.Error) {
			return errors.Wrapf(ErrConnectionLost, "statement %d: %v", stmt.Ordinal, outcome.Error)
		}
	}

	return nil
}

func (e *Executor) run(ctx context.Context, pass Pass, kind statement.Kind, stmt statement.Statement) Outcome {
	startTime := time.Now()
	err := e.runner.Run(ctx, stmt.Text)

	outcome := Outcome{
		Statement:     stmt,
		Kind:          kind,
		Pass:          pass,
		Status:        StatusSuccess,
		Digest:        xxhash.Sum64String(stmt.Text),
		ExecutionTime: time.Since(startTime),
	}

	if err == nil {
		return outcome
	}

	p := policyFor(kind)
	outcome.Error = err
	outcome.Tolerance = p.tolerance
	outcome.Hint = p.hint
	outcome.Status = StatusFailed
	if p.tolerance == Soft {
		outcome.Status = StatusWarning
	}

	return outcome
}

func (e *Executor) log(o Outcome) {
	attrs := []any{
		"statement", o.Statement.Ordinal,
		"kind", o.Kind.String(),
		"pass", int(o.Pass),
	}

	if o.Batches > 1 {
		attrs = append(attrs, "batch", o.Batch, "batches", o.Batches)
	}

	switch o.Status {
	case StatusSuccess:
		e.logger.Debug("Statement executed", append(attrs, "elapsed", o.ExecutionTime)...)
	case StatusWarning:
		e.logger.Warn("Statement failed (tolerated)", append(attrs, "hint", o.Hint, "err", o.Error)...)
	default:
		e.logger.Error("Statement failed", append(attrs, "hint", o.Hint, "err", o.Error)...)
	}
}

func policyFor(kind statement.Kind) policy {
	if p, ok := policies[kind]; ok {
		return p
	}

	return policies[statement.Unknown]
}

// IsConnectionError reports whether err indicates that the execution target
// itself is gone, as opposed to a rejected statement. It is the default fatal
// error classifier.
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}

	fatal := []error{
		driver.ErrBadConn,
		sql.ErrConnDone,
		io.EOF,
		io.ErrUnexpectedEOF,
		net.ErrClosed,
		syscall.ECONNRESET,
		syscall.ECONNREFUSED,
		syscall.EPIPE,
		context.Canceled,
		context.DeadlineExceeded,
	}

	for _, target := range fatal {
		if errors.Is(err, target) {
			return true
		}
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}

// String returns a short name for the pass.
func (p Pass) String() string {
	switch p {
	case SchemaPass:
		return "schema"
	case DataPass:
		return "data"
	default:
		return "unknown"
	}
}

// String returns "soft" or "hard".
func (t Tolerance) String() string {
	if t == Soft {
		return "soft"
	}

	return "hard"
}
