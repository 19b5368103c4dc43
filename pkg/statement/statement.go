package statement

import (
	"strings"
)

type (
	// Statement is a single executable unit of SQL produced by the scanner.
	//
	// Text never contains the terminating delimiter and has no leading or
	// trailing whitespace. Ordinal is the 1-based position of the statement in
	// the script it was read from.
	Statement struct {
		Text    string
		Ordinal int
	}

	// Kind is the category a statement falls into.
	Kind int
)

const (
	// Unknown is used for statements that match no other category. They are
	// executed in the data pass like OtherDml but reported separately.
	Unknown Kind = iota
	// ZoneCreate is a CREATE ZONE statement.
	ZoneCreate
	// TableCreate is a CREATE TABLE statement.
	TableCreate
	// IndexCreate is a CREATE INDEX statement.
	IndexCreate
	// Drop is any DROP statement.
	Drop
	// Insert is an INSERT INTO statement, the only kind that gets batched.
	Insert
	// OtherDml covers UPDATE, DELETE and similar row mutations.
	OtherDml
)

var kindNames = map[Kind]string{
	Unknown:     "unknown",
	ZoneCreate:  "zone-create",
	TableCreate: "table-create",
	IndexCreate: "index-create",
	Drop:        "drop",
	Insert:      "insert",
	OtherDml:    "other-dml",
}

// New returns a Statement for the given text and ordinal. The text is trimmed
// and a single trailing delimiter is removed.
func New(text string, ordinal int) Statement {
	text = strings.TrimSpace(text)
	text = strings.TrimSpace(strings.TrimSuffix(text, ";"))

	return Statement{Text: text, Ordinal: ordinal}
}

// Kind classifies the statement. See Classify.
func (s Statement) Kind() Kind {
	return Classify(s.Text)
}

// String renders the statement back into script form, delimiter included.
func (s Statement) String() string {
	return s.Text + ";"
}

// Abbrev returns the statement text truncated to at most n bytes, with an
// ellipsis marking the cut. Used for progress and error output.
func (s Statement) Abbrev(n int) string {
	if n <= 3 || len(s.Text) <= n {
		return s.Text
	}

	return s.Text[:n-3] + "..."
}

// String returns the kebab-case name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}

	return kindNames[Unknown]
}

// IsSchema reports whether statements of this kind run in the schema pass.
func (k Kind) IsSchema() bool {
	switch k {
	case ZoneCreate, TableCreate, IndexCreate, Drop:
		return true
	default:
		return false
	}
}

// Partition splits stmts into schema and data statements, keeping the
// relative order of each group.
func Partition(stmts []Statement) (schema, data []Statement) {
	for _, stmt := range stmts {
		if stmt.Kind().IsSchema() {
			schema = append(schema, stmt)
			continue
		}

		data = append(data, stmt)
	}

	return schema, data
}
