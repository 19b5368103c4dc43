package executor

import (
	"time"

	"github.com/pseudomuto/bulkloader/pkg/statement"
)

type (
	// LoadResult summarizes a completed (or aborted) load.
	//
	// Total counts the statements passed to Execute, before any splitting.
	// Succeeded and Failed count executed statements, so a split INSERT
	// contributes one to either counter per batch. Soft failures are counted as
	// failed and additionally as warnings. Every executed statement has an
	// entry in Outcomes, in execution order.
	LoadResult struct {
		// RunID uniquely identifies this load in logs.
		RunID string

		Total     int
		Succeeded int
		Failed    int
		Warnings  int

		Outcomes []Outcome

		// ExecutionTime records how long the whole load took.
		ExecutionTime time.Duration
	}

	// StatementResult aggregates the outcomes of one original statement.
	StatementResult struct {
		Ordinal   int
		Kind      statement.Kind
		Batches   int
		Succeeded int
		Failed    int

		// Status is StatusSuccess when every batch succeeded, StatusWarning
		// when all failures were tolerated, and StatusFailed otherwise.
		Status ExecutionStatus

		// Errors holds the errors of the failed batches, in batch order.
		Errors []error
	}
)

// OK reports whether every executed statement succeeded.
func (r *LoadResult) OK() bool {
	return r.Failed == 0
}

// Failures returns the outcomes of all failed statements, tolerated ones
// included, in execution order.
func (r *LoadResult) Failures() []Outcome {
	var failed []Outcome
	for _, o := range r.Outcomes {
		if o.Status != StatusSuccess {
			failed = append(failed, o)
		}
	}

	return failed
}

// Statements aggregates outcomes per original statement, in execution order.
// A statement split into several batches is reported once.
func (r *LoadResult) Statements() []StatementResult {
	var (
		results []StatementResult
		index   = make(map[int]int)
	)

	for _, o := range r.Outcomes {
		i, ok := index[o.Statement.Ordinal]
		if !ok {
			i = len(results)
			index[o.Statement.Ordinal] = i
			results = append(results, StatementResult{
				Ordinal: o.Statement.Ordinal,
				Kind:    o.Kind,
				Batches: o.Batches,
				Status:  StatusSuccess,
			})
		}

		sr := &results[i]
		if o.Status == StatusSuccess {
			sr.Succeeded++
			continue
		}

		sr.Failed++
		sr.Errors = append(sr.Errors, o.Error)
		if o.Status == StatusFailed || sr.Status == StatusFailed {
			sr.Status = StatusFailed
		} else {
			sr.Status = StatusWarning
		}
	}

	return results
}

func (r *LoadResult) record(o Outcome) {
	r.Outcomes = append(r.Outcomes, o)

	switch o.Status {
	case StatusSuccess:
		r.Succeeded++
	case StatusWarning:
		r.Failed++
		r.Warnings++
	default:
		r.Failed++
	}
}
