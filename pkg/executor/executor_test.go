package executor_test

import (
	"context"
	"database/sql/driver"
	"fmt"
	"io"
	"net"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	. "github.com/pseudomuto/bulkloader/pkg/executor"
	"github.com/pseudomuto/bulkloader/pkg/statement"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRunner struct {
	runFunc func(context.Context, string) error
	execs   []string
}

func (m *mockRunner) Run(ctx context.Context, query string) error {
	m.execs = append(m.execs, query)
	if m.runFunc != nil {
		return m.runFunc(ctx, query)
	}
	return nil
}

func failWhen(prefix string, err error) func(context.Context, string) error {
	return func(_ context.Context, query string) error {
		if strings.HasPrefix(query, prefix) {
			return err
		}
		return nil
	}
}

func stmts(sqls ...string) []statement.Statement {
	out := make([]statement.Statement, len(sqls))
	for i, s := range sqls {
		out[i] = statement.New(s, i+1)
	}
	return out
}

func TestExecute_PassOrdering(t *testing.T) {
	runner := &mockRunner{}
	exec := New(Config{Runner: runner, MaxRowsPerBatch: 10})

	result, err := exec.Execute(context.Background(), stmts(
		"INSERT INTO t VALUES (1)",
		"CREATE TABLE t (a INT)",
		"CREATE ZONE z",
	))
	require.NoError(t, err)

	require.Equal(t, []string{
		"CREATE TABLE t (a INT)",
		"CREATE ZONE z",
		"INSERT INTO t VALUES (1)",
	}, runner.execs)

	require.Equal(t, 3, result.Total)
	require.Equal(t, 3, result.Succeeded)
	require.Zero(t, result.Failed)
	require.True(t, result.OK())

	require.Equal(t, SchemaPass, result.Outcomes[0].Pass)
	require.Equal(t, SchemaPass, result.Outcomes[1].Pass)
	require.Equal(t, DataPass, result.Outcomes[2].Pass)
}

func TestExecute_MixedScriptKeepsFileOrderWithinPasses(t *testing.T) {
	runner := &mockRunner{}
	exec := New(Config{Runner: runner})

	_, err := exec.Execute(context.Background(), stmts(
		"DROP TABLE IF EXISTS old",
		"INSERT INTO a VALUES (1)",
		"CREATE ZONE z",
		"UPDATE a SET x = 1",
		"CREATE TABLE a (x INT)",
		"SELECT 1",
		"CREATE INDEX i ON a (x)",
	))
	require.NoError(t, err)

	require.Equal(t, []string{
		"DROP TABLE IF EXISTS old",
		"CREATE ZONE z",
		"CREATE TABLE a (x INT)",
		"CREATE INDEX i ON a (x)",
		"INSERT INTO a VALUES (1)",
		"UPDATE a SET x = 1",
		"SELECT 1",
	}, runner.execs)
}

func TestExecute_TolerantContinuation(t *testing.T) {
	runner := &mockRunner{
		runFunc: failWhen("CREATE ZONE", errors.New("zone people_zone already exists")),
	}
	exec := New(Config{Runner: runner})

	result, err := exec.Execute(context.Background(), stmts(
		"CREATE ZONE people_zone",
		"CREATE TABLE people (id INT)",
		"INSERT INTO people VALUES (1)",
	))
	require.NoError(t, err)

	require.Len(t, runner.execs, 3)
	require.Equal(t, 3, result.Total)
	require.Equal(t, 2, result.Succeeded)
	require.Equal(t, 1, result.Failed)
	require.Equal(t, 1, result.Warnings)
	require.False(t, result.OK())

	failures := result.Failures()
	require.Len(t, failures, 1)
	require.Equal(t, StatusWarning, failures[0].Status)
	require.Equal(t, Soft, failures[0].Tolerance)
	require.Equal(t, "zone may already exist", failures[0].Hint)
	require.Equal(t, statement.ZoneCreate, failures[0].Kind)
}

func TestExecute_TolerancePolicy(t *testing.T) {
	tests := []struct {
		sql       string
		status    ExecutionStatus
		tolerance Tolerance
	}{
		{sql: "CREATE ZONE z", status: StatusWarning, tolerance: Soft},
		{sql: "DROP TABLE t", status: StatusWarning, tolerance: Soft},
		{sql: "CREATE INDEX i ON t (a)", status: StatusWarning, tolerance: Soft},
		{sql: "CREATE TABLE t (a INT)", status: StatusFailed, tolerance: Hard},
		{sql: "INSERT INTO t VALUES (1)", status: StatusFailed, tolerance: Hard},
		{sql: "DELETE FROM t", status: StatusFailed, tolerance: Hard},
		{sql: "GRANT ALL ON t TO u", status: StatusFailed, tolerance: Hard},
	}

	for _, tt := range tests {
		t.Run(tt.sql, func(t *testing.T) {
			runner := &mockRunner{
				runFunc: func(context.Context, string) error { return errors.New("rejected") },
			}

			result, err := New(Config{Runner: runner}).Execute(context.Background(), stmts(tt.sql, "SELECT 1"))
			require.NoError(t, err, "statement failures are not fatal")
			require.Len(t, runner.execs, 2)

			require.Equal(t, tt.status, result.Outcomes[0].Status)
			require.Equal(t, tt.tolerance, result.Outcomes[0].Tolerance)
			require.NotEmpty(t, result.Outcomes[0].Hint)
			require.EqualError(t, result.Outcomes[0].Error, "rejected")
		})
	}
}

func TestExecute_SplitsOversizedInserts(t *testing.T) {
	runner := &mockRunner{}
	exec := New(Config{Runner: runner, MaxRowsPerBatch: 2})

	result, err := exec.Execute(context.Background(), stmts(
		"INSERT INTO t (a) VALUES (1), (2), (3), (4), (5)",
		"CREATE TABLE t (a INT)",
		"INSERT INTO t (a) VALUES (6)",
	))
	require.NoError(t, err)

	require.Equal(t, []string{
		"CREATE TABLE t (a INT)",
		"INSERT INTO t (a) VALUES (1), (2)",
		"INSERT INTO t (a) VALUES (3), (4)",
		"INSERT INTO t (a) VALUES (5)",
		"INSERT INTO t (a) VALUES (6)",
	}, runner.execs)

	require.Equal(t, 3, result.Total, "total counts statements before splitting")
	require.Equal(t, 5, result.Succeeded)

	for i, o := range result.Outcomes[1:4] {
		assert.Equal(t, 1, o.Statement.Ordinal)
		assert.Equal(t, i+1, o.Batch)
		assert.Equal(t, 3, o.Batches)
	}

	statements := result.Statements()
	require.Len(t, statements, 3)
	require.Equal(t, StatementResult{
		Ordinal:   1,
		Kind:      statement.Insert,
		Batches:   3,
		Succeeded: 3,
		Status:    StatusSuccess,
	}, statements[1])
}

func TestExecute_SplitBatchFailuresAreIndividual(t *testing.T) {
	rejected := errors.New("duplicate key")
	runner := &mockRunner{
		runFunc: failWhen("INSERT INTO t (a) VALUES (3)", rejected),
	}
	exec := New(Config{Runner: runner, MaxRowsPerBatch: 2})

	result, err := exec.Execute(context.Background(), stmts(
		"INSERT INTO t (a) VALUES (1), (2), (3), (4), (5)",
	))
	require.NoError(t, err)

	require.Len(t, runner.execs, 3)
	require.Equal(t, 1, result.Total)
	require.Equal(t, 2, result.Succeeded)
	require.Equal(t, 1, result.Failed)

	statements := result.Statements()
	require.Len(t, statements, 1)
	require.Equal(t, StatusFailed, statements[0].Status)
	require.Equal(t, 2, statements[0].Succeeded)
	require.Equal(t, 1, statements[0].Failed)
	require.Equal(t, []error{rejected}, statements[0].Errors)
}

func TestExecute_SchemaInsertsAreNotSplitInSchemaPass(t *testing.T) {
	runner := &mockRunner{}
	_, err := New(Config{Runner: runner, MaxRowsPerBatch: 1}).Execute(context.Background(), stmts(
		"CREATE TABLE t (a INT, b INT)",
	))
	require.NoError(t, err)
	require.Equal(t, []string{"CREATE TABLE t (a INT, b INT)"}, runner.execs)
}

func TestExecute_FatalErrorStopsLoad(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "bad connection", err: driver.ErrBadConn},
		{name: "wrapped eof", err: errors.Wrap(io.EOF, "read: connection closed")},
		{name: "net op error", err: &net.OpError{Op: "write", Net: "tcp", Err: errors.New("broken pipe")}},
		{name: "context canceled", err: context.Canceled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &mockRunner{runFunc: failWhen("INSERT INTO t VALUES (2)", tt.err)}
			exec := New(Config{Runner: runner})

			result, err := exec.Execute(context.Background(), stmts(
				"CREATE TABLE t (a INT)",
				"INSERT INTO t VALUES (1)",
				"INSERT INTO t VALUES (2)",
				"INSERT INTO t VALUES (3)",
			))
			require.Error(t, err)
			require.ErrorIs(t, err, ErrConnectionLost)
			require.Contains(t, err.Error(), "statement 3")

			require.NotNil(t, result)
			require.Len(t, runner.execs, 3)
			require.Len(t, result.Outcomes, 3)
			require.Equal(t, 4, result.Total)
			require.Equal(t, 2, result.Succeeded)
			require.Equal(t, 1, result.Failed)
		})
	}
}

func TestExecute_CustomFatalClassifier(t *testing.T) {
	runner := &mockRunner{runFunc: failWhen("CREATE TABLE", errors.New("syntax error"))}
	exec := New(Config{
		Runner:  runner,
		IsFatal: func(error) bool { return true },
	})

	_, err := exec.Execute(context.Background(), stmts("CREATE TABLE t (", "INSERT INTO t VALUES (1)"))
	require.ErrorIs(t, err, ErrConnectionLost)
	require.Len(t, runner.execs, 1)
}

func TestExecute_Reporter(t *testing.T) {
	var reported []Outcome
	exec := New(Config{
		Runner:          &mockRunner{},
		MaxRowsPerBatch: 1,
		Reporter:        func(o Outcome) { reported = append(reported, o) },
	})

	result, err := exec.Execute(context.Background(), stmts("INSERT INTO t VALUES (1), (2)", "CREATE TABLE t (a INT)"))
	require.NoError(t, err)
	require.Equal(t, result.Outcomes, reported)
	require.Len(t, reported, 3)
}

func TestExecute_ResultMetadata(t *testing.T) {
	result, err := New(Config{Runner: &mockRunner{}}).Execute(context.Background(), stmts(
		"CREATE TABLE t (a INT)",
		"CREATE TABLE t (a INT)",
	))
	require.NoError(t, err)

	_, err = uuid.Parse(result.RunID)
	require.NoError(t, err)

	require.NotZero(t, result.Outcomes[0].Digest)
	require.Equal(t, result.Outcomes[0].Digest, result.Outcomes[1].Digest)
	require.Equal(t, 1, result.Outcomes[0].Batch)
	require.Equal(t, 1, result.Outcomes[0].Batches)
}

func TestExecute_Empty(t *testing.T) {
	runner := &mockRunner{}
	result, err := New(Config{Runner: runner}).Execute(context.Background(), nil)
	require.NoError(t, err)
	require.Empty(t, runner.execs)
	require.Zero(t, result.Total)
	require.True(t, result.OK())
}

func TestIsConnectionError(t *testing.T) {
	tests := []struct {
		err      error
		expected bool
	}{
		{err: nil, expected: false},
		{err: errors.New("table already exists"), expected: false},
		{err: fmt.Errorf("exec: %w", driver.ErrBadConn), expected: true},
		{err: errors.Wrap(io.ErrUnexpectedEOF, "read"), expected: true},
		{err: context.DeadlineExceeded, expected: true},
		{err: &net.DNSError{Err: "no such host", Name: "db"}, expected: true},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%v", tt.err), func(t *testing.T) {
			require.Equal(t, tt.expected, IsConnectionError(tt.err))
		})
	}
}
