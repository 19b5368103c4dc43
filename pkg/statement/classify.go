package statement

import (
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
	"github.com/xwb1989/sqlparser"
)

// headTokens is how many significant tokens are lexed from the start of a
// statement. The longest prefix inspected is
// CREATE UNIQUE INDEX IF NOT EXISTS s.idx ON s.tbl.
const headTokens = 16

var (
	sqlLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Comment", Pattern: `--[^\r\n]*`},
		{Name: "MultilineComment", Pattern: `/\*[^*]*\*+([^/*][^*]*\*+)*/`},
		{Name: "String", Pattern: `'([^'\\]|\\.)*'`},
		{Name: "QuotedIdent", Pattern: `"([^"\\]|\\.)*"`},
		{Name: "BacktickIdent", Pattern: "`([^`\\\\]|\\\\.)*`"},
		{Name: "Number", Pattern: `\d+(\.\d*)?`},
		{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_$]*`},
		{Name: "Punct", Pattern: `[(),.;=+\-*/%<>\[\]!:]`},
		{Name: "Whitespace", Pattern: `\s+`},
		{Name: "Other", Pattern: `.`},
	})

	symbols = sqlLexer.Symbols()

	elided = map[lexer.TokenType]bool{
		symbols["Comment"]:          true,
		symbols["MultilineComment"]: true,
		symbols["Whitespace"]:       true,
	}

	nameTypes = map[lexer.TokenType]bool{
		symbols["Ident"]:         true,
		symbols["QuotedIdent"]:   true,
		symbols["BacktickIdent"]: true,
	}

	// Leading keywords of row mutations the sqlparser preview doesn't know.
	dmlKeywords = map[string]bool{
		"MERGE":    true,
		"UPSERT":   true,
		"TRUNCATE": true,
		"COPY":     true,
	}

	// Words that may sit between CREATE and the object type.
	createModifiers = map[string]bool{
		"OR":        true,
		"REPLACE":   true,
		"UNIQUE":    true,
		"TEMPORARY": true,
		"TEMP":      true,
		"GLOBAL":    true,
		"LOCAL":     true,
	}
)

type (
	// Target identifies the object a statement acts upon.
	Target struct {
		// Name is the table (or zone) name, as written in the statement.
		Name string

		// Index is the index name for IndexCreate statements.
		Index string
	}

	head []lexer.Token
)

// Classify determines the Kind of a statement from its leading keywords.
func Classify(text string) Kind {
	h := lexHead(text)

	switch h.keyword(0) {
	case "CREATE":
		i := h.skipWords(1, createModifiers)
		switch h.keyword(i) {
		case "ZONE":
			return ZoneCreate
		case "TABLE":
			return TableCreate
		case "INDEX":
			return IndexCreate
		}
		return Unknown
	case "DROP":
		return Drop
	case "INSERT":
		return Insert
	case "":
		return Unknown
	}

	switch sqlparser.Preview(text) {
	case sqlparser.StmtUpdate, sqlparser.StmtDelete, sqlparser.StmtReplace:
		return OtherDml
	}

	if dmlKeywords[h.keyword(0)] {
		return OtherDml
	}

	return Unknown
}

// TargetName extracts the object name a statement refers to. The second
// return value is false when the statement kind carries no target or the name
// could not be located.
func TargetName(text string) (Target, bool) {
	h := lexHead(text)

	switch Classify(text) {
	case ZoneCreate, TableCreate:
		i := h.skipWords(1, createModifiers) + 1
		name, _ := h.name(h.skipIfExists(i))
		return Target{Name: name}, name != ""
	case IndexCreate:
		i := h.skipWords(1, createModifiers) + 1
		index, next := h.name(h.skipIfExists(i))
		if h.keyword(next) != "ON" {
			return Target{Index: index}, false
		}

		table, _ := h.name(next + 1)
		return Target{Name: table, Index: index}, table != ""
	case Drop:
		i := 2
		if h.keyword(1) == "MATERIALIZED" {
			i++
		}
		name, _ := h.name(h.skipIfExists(i))
		return Target{Name: name}, name != ""
	case Insert:
		i := 1
		if h.keyword(i) == "INTO" {
			i++
		}
		name, _ := h.name(i)
		return Target{Name: name}, name != ""
	}

	return Target{}, false
}

func lexHead(text string) head {
	lex, err := sqlLexer.LexString("", text)
	if err != nil {
		return nil
	}

	h := make(head, 0, headTokens)
	for len(h) < headTokens {
		tok, err := lex.Next()
		if err != nil || tok.EOF() {
			break
		}

		if elided[tok.Type] {
			continue
		}

		h = append(h, tok)
	}

	return h
}

// keyword returns the upper-cased identifier at i, or "" when i is out of
// range or not a bare identifier.
func (h head) keyword(i int) string {
	if i < 0 || i >= len(h) || h[i].Type != symbols["Ident"] {
		return ""
	}

	return strings.ToUpper(h[i].Value)
}

func (h head) skipWords(i int, words map[string]bool) int {
	for words[h.keyword(i)] {
		i++
	}

	return i
}

func (h head) skipIfExists(i int) int {
	if h.keyword(i) != "IF" {
		return i
	}

	j := i + 1
	if h.keyword(j) == "NOT" {
		j++
	}

	if h.keyword(j) == "EXISTS" {
		return j + 1
	}

	return i
}

// name reads a possibly qualified identifier starting at i and returns it
// along with the index of the first token after it.
func (h head) name(i int) (string, int) {
	var sb strings.Builder
	for i < len(h) && nameTypes[h[i].Type] {
		sb.WriteString(h[i].Value)
		i++

		if i+1 < len(h) && h[i].Value == "." && nameTypes[h[i+1].Type] {
			sb.WriteString(".")
			i++
			continue
		}

		break
	}

	return sb.String(), i
}
