// Package executor loads a scanned SQL script into an execution target.
//
// The executor runs statements in two strictly ordered passes. The schema pass
// executes zone, table and index creation and drops; the data pass executes
// inserts and everything else. Within a pass statements keep their file order.
// Oversized INSERT statements are split by the batch package before they are
// sent, and every executed batch is recorded individually.
//
// # Core Components
//
//   - Executor: drives the two passes against a Runner
//   - Config: configuration options for executor creation
//   - LoadResult: counts and per-statement outcomes of a load
//   - Outcome: the result of a single executed statement
//
// # Usage Example
//
//	script, err := scanner.Scan(f)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	exec := executor.New(executor.Config{
//		Runner:          client,
//		MaxRowsPerBatch: 500,
//	})
//
//	result, err := exec.Execute(ctx, script.Statements)
//	if err != nil {
//		// the connection went away; result holds what ran before that
//		log.Fatal(err)
//	}
//
//	for _, o := range result.Failures() {
//		fmt.Printf("✗ statement %d (%s): %v\n", o.Statement.Ordinal, o.Hint, o.Error)
//	}
//
// # Error Tolerance
//
// Each statement kind maps to a tolerance level. Failures of CREATE ZONE,
// CREATE INDEX and DROP are soft: they are typical when re-running a script
// against an existing schema and are reported as warnings. All other failures
// are hard and reported as errors. Neither level aborts the load.
//
// The only failures that end a load early are those for which Config.IsFatal
// returns true. The default, IsConnectionError, treats broken connections and
// context cancellation as fatal. Execute then returns an error wrapping
// ErrConnectionLost together with the partial LoadResult.
//
// # Concurrency
//
// An Executor sends one statement at a time and waits for it to complete. A
// single Execute call owns its LoadResult; concurrent Execute calls on the
// same Executor are safe as long as the Runner is.
package executor
