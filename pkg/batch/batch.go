package batch

import (
	"slices"
	"strings"

	"github.com/pseudomuto/bulkloader/pkg/statement"
)

const valuesKeyword = "VALUES"

// Insert is an INSERT statement broken into the parts needed to re-batch it.
type Insert struct {
	// Prefix is everything up to and including the VALUES keyword, e.g.
	// "INSERT INTO people (id, name) VALUES".
	Prefix string

	// Groups are the top-level parenthesized row tuples, in order.
	Groups []string

	// Suffix is trailing text after the last tuple that is not itself a
	// tuple, such as "ON CONFLICT DO NOTHING". It is repeated on every batch.
	Suffix string
}

// Parse breaks an INSERT statement into prefix, value groups and suffix. The
// second return value is false when text is not an INSERT, has no VALUES
// keyword, has no recognizable groups, or ends with an unbalanced group.
//
// Example:
//
//	ins, ok := batch.Parse("INSERT INTO t (a, b) VALUES (1, 'x'), (2, f(3))")
//	// ins.Prefix == "INSERT INTO t (a, b) VALUES"
//	// ins.Groups == []string{"(1, 'x')", "(2, f(3))"}
func Parse(text string) (*Insert, bool) {
	if statement.Classify(text) != statement.Insert {
		return nil, false
	}

	at := findValues(text)
	if at < 0 {
		return nil, false
	}

	end := at + len(valuesKeyword)
	ins := &Insert{Prefix: strings.TrimSpace(text[:end])}

	groups, suffix, ok := scanGroups(text[end:])
	if !ok || len(groups) == 0 {
		return nil, false
	}

	ins.Groups = groups
	ins.Suffix = suffix
	return ins, true
}

// CountGroups returns the number of top-level value groups in an INSERT
// statement, or 0 if the statement cannot be parsed.
func CountGroups(text string) int {
	ins, ok := Parse(text)
	if !ok {
		return 0
	}

	return len(ins.Groups)
}

// Split decomposes an INSERT whose value list exceeds maxRows groups into
// consecutive INSERTs of at most maxRows groups each. Order is preserved and
// every group appears in exactly one batch. All returned statements keep the
// ordinal of stmt.
//
// Statements that are not INSERTs, that cannot be parsed, or that have at
// most maxRows groups are returned unchanged as a single element. A maxRows
// of zero or less disables splitting.
func Split(stmt statement.Statement, maxRows int) []statement.Statement {
	if maxRows <= 0 {
		return []statement.Statement{stmt}
	}

	ins, ok := Parse(stmt.Text)
	if !ok || len(ins.Groups) <= maxRows {
		return []statement.Statement{stmt}
	}

	out := make([]statement.Statement, 0, (len(ins.Groups)+maxRows-1)/maxRows)
	for groups := range slices.Chunk(ins.Groups, maxRows) {
		out = append(out, statement.Statement{
			Text:    ins.Render(groups),
			Ordinal: stmt.Ordinal,
		})
	}

	return out
}

// Render builds a single INSERT statement from the prefix, the given groups and
// the suffix.
func (i *Insert) Render(groups []string) string {
	var sb strings.Builder
	sb.WriteString(i.Prefix)
	sb.WriteString(" ")
	sb.WriteString(strings.Join(groups, ", "))

	if i.Suffix != "" {
		sb.WriteString(" ")
		sb.WriteString(i.Suffix)
	}

	return sb.String()
}

// findValues returns the offset of the first VALUES keyword that sits outside
// quotes and parentheses, or -1.
func findValues(text string) int {
	var (
		depth int
		quote byte
	)

	for i := 0; i < len(text); i++ {
		c := text[i]

		if quote != 0 {
			if c == quote && !escaped(text, i) {
				quote = 0
			}
			continue
		}

		switch c {
		case '\'', '"', '`':
			if !escaped(text, i) {
				quote = c
			}
		case '(':
			depth++
		case ')':
			depth--
		case 'v', 'V':
			if depth == 0 && isKeywordAt(text, i, valuesKeyword) {
				return i
			}
		}
	}

	return -1
}

// scanGroups walks the text following VALUES and collects each balanced
// parenthesized span at depth zero. Scanning stops at the first depth-zero
// span that is preceded by anything other than separators; from there on the
// text is returned as suffix. ok is false when the body ends inside a literal
// or an open group.
func scanGroups(body string) (groups []string, suffix string, ok bool) {
	var (
		depth  int
		quoted bool
		start  int // end of the previous group
		open   int // offset of the current group's opening paren
	)

	for i := 0; i < len(body); i++ {
		c := body[i]

		if quoted {
			if c == '\'' && !escaped(body, i) {
				quoted = false
			}
			continue
		}

		switch c {
		case '\'':
			if !escaped(body, i) {
				quoted = true
			}
		case '(':
			if depth == 0 {
				if !separators(body[start:i]) {
					return groups, trimSuffix(body[start:]), true
				}
				open = i
			}
			depth++
		case ')':
			if depth == 0 {
				return groups, trimSuffix(body[start:]), true
			}

			depth--
			if depth == 0 {
				groups = append(groups, body[open:i+1])
				start = i + 1
			}
		}
	}

	if quoted || depth != 0 {
		return nil, "", false
	}

	return groups, trimSuffix(body[start:]), true
}

func separators(s string) bool {
	return strings.Trim(s, ", \t\r\n") == ""
}

func trimSuffix(s string) string {
	return strings.TrimSpace(strings.TrimLeft(s, ", \t\r\n"))
}

func isKeywordAt(text string, i int, kw string) bool {
	if i+len(kw) > len(text) || !strings.EqualFold(text[i:i+len(kw)], kw) {
		return false
	}

	if i > 0 && isWordByte(text[i-1]) {
		return false
	}

	end := i + len(kw)
	return end == len(text) || !isWordByte(text[end])
}

func isWordByte(c byte) bool {
	return c == '_' || c == '$' || c == '.' ||
		('a' <= c && c <= 'z') ||
		('A' <= c && c <= 'Z') ||
		('0' <= c && c <= '9')
}

func escaped(text string, i int) bool {
	return i > 0 && text[i-1] == '\\'
}
