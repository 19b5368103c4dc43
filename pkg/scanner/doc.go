// Package scanner splits a flat SQL script into individually executable
// statements.
//
// The scanner understands just enough SQL to find statement boundaries: line
// comments, block comments and single-quoted literals. It does not validate
// the statements it emits. Input that is malformed in a way the scanner can
// recover from is reported through Script.Irregularities rather than as an
// error, so a data file with minor defects still loads as far as possible.
//
// Statements can be dropped by pattern, which is useful for session commands
// a target does not support:
//
//	script, err := scanner.Scan(f, scanner.WithIgnore(regexp.MustCompile(`(?i)^SET\s`)))
package scanner
