package scanner

import (
	"bufio"
	"io"
	"regexp"
	"strings"

	"github.com/pkg/errors"
	"github.com/pseudomuto/bulkloader/pkg/statement"
)

const (
	normal state = iota
	inBlockComment
	inQuotedString
)

type (
	state int

	// Script is the result of scanning a SQL script.
	Script struct {
		// Statements in the order they appear in the script.
		Statements []statement.Statement

		// Irregularities found while scanning. These never stop a scan.
		Irregularities []Irregularity
	}

	// Irregularity describes malformed or ignored input the scanner tolerated.
	Irregularity struct {
		// Line is the 1-based line number the problem was detected on.
		Line int

		// Reason is a short human readable description.
		Reason string
	}

	// Option customizes a scan.
	Option func(*scanner)

	scanner struct {
		ignore []*regexp.Regexp
		script *Script

		state   state
		buf     strings.Builder
		line    int
		opened  int // line the current quote or block comment was opened on
		ordinal int
	}
)

// WithIgnore drops every statement matching one of the given patterns. Dropped
// statements are reported as irregularities and do not consume an ordinal.
func WithIgnore(patterns ...*regexp.Regexp) Option {
	return func(s *scanner) {
		s.ignore = append(s.ignore, patterns...)
	}
}

// Scan reads a SQL script from r and splits it into statements.
//
// The script is processed one line at a time. Lines starting with `--` are
// skipped, `/* ... */` comments are removed (including those spanning lines),
// and `;` terminates a statement unless it appears inside a single-quoted
// literal. A quote preceded by a backslash does not toggle quoting. Physical
// lines are joined with a single space and runs of whitespace outside literals
// collapse into one.
//
// Malformed input, such as a literal that is never closed, does not fail the
// scan: whatever was accumulated is emitted as the final statement and the
// problem is recorded in Script.Irregularities. Only read errors from r are
// returned.
//
// Example:
//
//	script, err := scanner.Scan(strings.NewReader(`
//		-- schema
//		CREATE TABLE people (id INT, name VARCHAR);
//		INSERT INTO people VALUES (1, 'a;b');
//	`))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	for _, stmt := range script.Statements {
//		fmt.Println(stmt.Ordinal, stmt.Kind(), stmt.Text)
//	}
func Scan(r io.Reader, opts ...Option) (*Script, error) {
	s := &scanner{script: &Script{}}
	for _, opt := range opts {
		opt(s)
	}

	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if len(line) > 0 {
			s.line++
			s.scanLine(strings.TrimRight(line, "\r\n"))
		}

		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, errors.Wrapf(err, "failed to read script at line %d", s.line+1)
		}
	}

	s.finish()
	return s.script, nil
}

// ScanString is a convenience wrapper around Scan for in-memory scripts.
func ScanString(sql string, opts ...Option) (*Script, error) {
	return Scan(strings.NewReader(sql), opts...)
}

func (s *scanner) scanLine(line string) {
	if s.state == inBlockComment {
		end := strings.Index(line, "*/")
		if end < 0 {
			return
		}

		line = line[end+2:]
		s.state = normal
	}

	switch s.state {
	case inQuotedString:
		// the line break belongs to the literal
		s.buf.WriteByte(' ')
	default:
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "--") {
			return
		}
		s.space()
	}

	for i := 0; i < len(line); i++ {
		c := line[i]

		if s.state == inQuotedString {
			s.buf.WriteByte(c)
			if c == '\'' && !escaped(line, i) {
				s.state = normal
			}
			continue
		}

		switch {
		case c == '\'' && !escaped(line, i):
			s.state = inQuotedString
			s.opened = s.line
			s.buf.WriteByte(c)
		case c == '-' && next(line, i) == '-':
			return
		case c == '/' && next(line, i) == '*':
			end := strings.Index(line[i+2:], "*/")
			if end < 0 {
				s.state = inBlockComment
				s.opened = s.line
				return
			}

			i += end + 3
			s.space()
		case c == ';':
			s.emit()
		case isSpace(c):
			s.space()
		default:
			s.buf.WriteByte(c)
		}
	}
}

func (s *scanner) finish() {
	switch s.state {
	case inQuotedString:
		s.irregular(s.opened, "unterminated quoted string")
	case inBlockComment:
		s.irregular(s.opened, "unterminated block comment")
	}

	s.emit()
}

func (s *scanner) emit() {
	text := strings.TrimSpace(s.buf.String())
	s.buf.Reset()

	if text == "" {
		return
	}

	for _, re := range s.ignore {
		if re.MatchString(text) {
			s.irregular(s.line, "statement ignored by pattern "+re.String())
			return
		}
	}

	s.ordinal++
	s.script.Statements = append(s.script.Statements, statement.Statement{
		Text:    text,
		Ordinal: s.ordinal,
	})
}

// space writes a single separator unless the buffer is empty or already ends
// in one.
func (s *scanner) space() {
	str := s.buf.String()
	if len(str) == 0 || str[len(str)-1] == ' ' {
		return
	}

	s.buf.WriteByte(' ')
}

func (s *scanner) irregular(line int, reason string) {
	s.script.Irregularities = append(s.script.Irregularities, Irregularity{
		Line:   line,
		Reason: reason,
	})
}

func escaped(line string, i int) bool {
	return i > 0 && line[i-1] == '\\'
}

func next(line string, i int) byte {
	if i+1 < len(line) {
		return line[i+1]
	}

	return 0
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\v', '\f', '\r':
		return true
	default:
		return false
	}
}
