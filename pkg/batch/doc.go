// Package batch re-batches oversized bulk INSERT statements.
//
// A statement such as
//
//	INSERT INTO people (id, name) VALUES (1, 'a'), (2, 'b'), (3, 'c')
//
// is decomposed into a prefix ("INSERT INTO people (id, name) VALUES") and its
// top-level value groups. Split then renders consecutive runs of at most
// maxRows groups back into standalone INSERT statements:
//
//	stmts := batch.Split(stmt, 2)
//	// INSERT INTO people (id, name) VALUES (1, 'a'), (2, 'b')
//	// INSERT INTO people (id, name) VALUES (3, 'c')
//
// Groups are found with a parenthesis depth counter that ignores anything
// inside single-quoted literals, so values containing function calls or
// nested parentheses stay intact. Batching never drops, duplicates or
// reorders a group.
package batch
