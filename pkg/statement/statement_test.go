package statement_test

import (
	"testing"

	. "github.com/pseudomuto/bulkloader/pkg/statement"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	stmt := New("  CREATE TABLE t (a INT);  ", 3)
	require.Equal(t, "CREATE TABLE t (a INT)", stmt.Text)
	require.Equal(t, 3, stmt.Ordinal)
	require.Equal(t, "CREATE TABLE t (a INT);", stmt.String())
	require.Equal(t, TableCreate, stmt.Kind())
}

func TestAbbrev(t *testing.T) {
	stmt := New("INSERT INTO people VALUES (1, 'a'), (2, 'b')", 1)

	require.Equal(t, stmt.Text, stmt.Abbrev(100))
	require.Equal(t, "INSERT INTO...", stmt.Abbrev(14))
	require.Len(t, stmt.Abbrev(20), 20)
}

func TestPartition(t *testing.T) {
	stmts := []Statement{
		New("INSERT INTO t VALUES (1)", 1),
		New("CREATE TABLE t (a INT)", 2),
		New("UPDATE t SET a = 2", 3),
		New("CREATE ZONE z", 4),
		New("SELECT 1", 5),
	}

	schema, data := Partition(stmts)
	require.Equal(t, []Statement{stmts[1], stmts[3]}, schema)
	require.Equal(t, []Statement{stmts[0], stmts[2], stmts[4]}, data)
}

func TestKindString(t *testing.T) {
	require.Equal(t, "zone-create", ZoneCreate.String())
	require.Equal(t, "insert", Insert.String())
	require.Equal(t, "unknown", Kind(99).String())
}
