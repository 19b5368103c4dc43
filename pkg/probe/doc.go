// Package probe verifies a load by counting the rows of the loaded tables.
//
// Verification is purely diagnostic: a table that cannot be counted is
// reported as unknown, and nothing in this package affects the result of the
// load itself.
//
//	counts := probe.Verify(ctx, client, probe.TablesFrom(script.Statements))
//	for _, c := range counts {
//		fmt.Printf("%s: %d rows\n", c.Table, c.Rows)
//	}
package probe
