// Package statement defines the units a SQL script is broken into and the
// classifier that tags each of them.
//
// A Statement is one trimmed, delimiter-free piece of SQL together with its
// 1-based position in the script. Classify inspects the leading keywords of a
// statement (case-insensitively, ignoring comments) and returns a Kind:
//
//	CREATE ZONE ...          -> ZoneCreate
//	CREATE TABLE ...         -> TableCreate
//	CREATE [UNIQUE] INDEX .. -> IndexCreate
//	DROP ...                 -> Drop
//	INSERT INTO t ...        -> Insert
//	UPDATE / DELETE / ...    -> OtherDml
//	anything else            -> Unknown
//
// ZoneCreate, TableCreate, IndexCreate and Drop are schema kinds. Everything
// else is data. Classification is a pure function of the text, so calling it
// twice always yields the same Kind.
//
// TargetName extracts the object a statement acts upon, which is used for
// logging and for picking the tables to verify after a load:
//
//	target, ok := statement.TargetName("CREATE INDEX idx_name ON people (name)")
//	// target.Name == "people", target.Index == "idx_name", ok == true
package statement
